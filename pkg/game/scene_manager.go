package game

import (
	"fmt"
	"log"
	"time"

	"github.com/decker502/casefile/pkg/scheduler"
	"github.com/decker502/casefile/pkg/utils"
)

// DefaultFadeDuration 淡出/淡入各自的时长
const DefaultFadeDuration = 400 * time.Millisecond

// DefaultPlayerStart 场景未指定初始位置时的玩家位置（视口百分比）
var DefaultPlayerStart = Point{X: 50, Y: 85}

// SceneManager 场景生命周期控制器
//
// 负责场景注册、进入/离开钩子和切换动画的时序。
//
// 同一时刻只有一个切换在进行：切换过程中再次调用 LoadScene 时，
// 取消尚未完成的切换并以最新的请求为准。同一次停留中离开钩子最多执行一次。
type SceneManager struct {
	engine *Engine
	scenes map[string]*Scene

	current     *Scene
	visible     []*Hotspot
	playerStart Point

	fadeDuration  time.Duration
	generation    uint64
	pending       scheduler.Handle
	transitioning bool
	exitDone      bool
}

// NewSceneManager 创建场景管理器
func NewSceneManager(e *Engine) *SceneManager {
	return &SceneManager{
		engine:       e,
		scenes:       make(map[string]*Scene),
		playerStart:  DefaultPlayerStart,
		fadeDuration: DefaultFadeDuration,
	}
}

// SetFadeDuration 设置淡入淡出时长（0 表示不播放动画）
func (sm *SceneManager) SetFadeDuration(d time.Duration) {
	if d < 0 {
		d = 0
	}
	sm.fadeDuration = d
}

// RegisterScene 注册场景，同 ID 的旧注册被覆盖
func (sm *SceneManager) RegisterScene(s *Scene) error {
	if err := s.Validate(); err != nil {
		log.Printf("[SceneManager] 错误: 场景注册失败: %v", err)
		return err
	}
	if _, exists := sm.scenes[s.ID]; exists {
		log.Printf("[SceneManager] 覆盖已注册的场景: %s", s.ID)
	}
	sm.scenes[s.ID] = s
	if sm.current != nil && sm.current.ID == s.ID {
		sm.current = s
		sm.RefreshHotspots()
	}
	return nil
}

// RegisterSceneData 以纯数据形式注册场景
func (sm *SceneManager) RegisterSceneData(id string, data SceneData) error {
	s, err := data.ToScene(id)
	if err != nil {
		log.Printf("[SceneManager] 错误: 场景数据无效: %v", err)
		return err
	}
	return sm.RegisterScene(s)
}

// Scene 按 ID 查找已注册的场景
func (sm *SceneManager) Scene(id string) (*Scene, bool) {
	s, ok := sm.scenes[id]
	return s, ok
}

// Count 返回已注册场景数量
func (sm *SceneManager) Count() int {
	return len(sm.scenes)
}

// Current 返回当前场景，没有时返回 nil
func (sm *SceneManager) Current() *Scene {
	return sm.current
}

// CurrentID 返回当前场景 ID
func (sm *SceneManager) CurrentID() string {
	if sm.current == nil {
		return ""
	}
	return sm.current.ID
}

// VisibleHotspots 返回当前可见的热点（声明顺序）
func (sm *SceneManager) VisibleHotspots() []*Hotspot {
	return sm.visible
}

// PlayerStart 返回当前场景解析出的玩家初始位置
func (sm *SceneManager) PlayerStart() Point {
	return sm.playerStart
}

// Transitioning 是否有场景切换在进行（从离开钩子开始到淡入结束）
// 期间热点不响应
func (sm *SceneManager) Transitioning() bool {
	return sm.transitioning
}

// LoadScene 切换到指定场景
//
// 流程：
//  1. 场景未注册：记录日志并返回 ErrUnregisteredScene，不发通知
//  2. 同步执行当前场景的离开钩子（此时仍能观察到旧场景的状态）
//  3. 可选淡出，然后切换场景、应用背景、重建热点、解析玩家位置、执行进入钩子
//  4. 可选淡入
//  5. 把新场景 ID 发布给导航协作者
//
// 缺少背景挂载点时记录日志，并降级为无动画的立即切换。
func (sm *SceneManager) LoadScene(id string, kind TransitionKind) error {
	target, ok := sm.scenes[id]
	if !ok {
		log.Printf("[SceneManager] 错误: 未注册的场景: %s", id)
		return fmt.Errorf("%w: %s", ErrUnregisteredScene, id)
	}
	log.Printf("[SceneManager] 加载场景: %s (%s)", id, kind)

	e := sm.engine
	sm.generation++
	gen := sm.generation
	if sm.pending != 0 {
		e.sched.Cancel(sm.pending)
		sm.pending = 0
		log.Printf("[SceneManager] 取消进行中的切换")
	}

	sm.transitioning = true
	if sm.current != nil && !sm.exitDone {
		sm.exitDone = true
		old := sm.current
		if old.OnExit != nil {
			utils.SafeCall("SceneManager", "exit hook of "+old.ID, func() { old.OnExit(e) })
		}
		if old.Ambience != "" && e.ambience != nil {
			utils.SafeCall("SceneManager", "Ambience.Stop", e.ambience.Stop)
		}
		// 离开钩子中又发起了切换
		if gen != sm.generation {
			return nil
		}
	}

	fade := kind == TransitionFade && sm.fadeDuration > 0
	if fade && !e.renderer.HasMount(MountBackground) {
		log.Printf("[SceneManager] Warning: 缺少背景挂载点，降级为立即切换")
		fade = false
	}

	if !fade {
		sm.transitioning = false
		sm.swap(target, gen, false)
		return nil
	}

	sm.transitioning = true
	e.renderer.BeginFade(true, sm.fadeDuration)
	sm.pending = e.sched.After(sm.fadeDuration, func() {
		sm.pending = 0
		sm.swap(target, gen, true)
	})
	return nil
}

// swap 切换到目标场景并执行进入钩子
func (sm *SceneManager) swap(target *Scene, gen uint64, fade bool) {
	if gen != sm.generation {
		return
	}
	e := sm.engine

	sm.current = target
	sm.exitDone = false
	e.state.CurrentScene = target.ID

	if target.Background != "" {
		e.renderer.SetBackground(target.Background)
	}
	sm.RefreshHotspots()

	sm.playerStart = DefaultPlayerStart
	if target.Start != nil {
		sm.playerStart = *target.Start
	}
	if e.mover != nil {
		start := sm.playerStart
		utils.SafeCall("SceneManager", "Movement.SetPosition", func() { e.mover.SetPosition(start) })
	}
	if target.Ambience != "" && e.ambience != nil {
		ref := target.Ambience
		utils.SafeCall("SceneManager", "Ambience.Play", func() { e.ambience.Play(ref) })
	}

	if target.OnEnter != nil {
		utils.SafeCall("SceneManager", "enter hook of "+target.ID, func() { target.OnEnter(e) })
	}
	// 进入钩子中又发起了切换
	if gen != sm.generation {
		return
	}

	if !fade {
		sm.transitioning = false
		sm.publish(target.ID)
		return
	}
	e.renderer.BeginFade(false, sm.fadeDuration)
	sm.pending = e.sched.After(sm.fadeDuration, func() {
		sm.pending = 0
		if gen != sm.generation {
			return
		}
		sm.transitioning = false
		sm.publish(target.ID)
	})
}

func (sm *SceneManager) publish(id string) {
	e := sm.engine
	log.Printf("[SceneManager] 成功切换到场景: %s", id)
	if e.navigator != nil {
		utils.SafeCall("SceneManager", "Navigator.Publish", func() { e.navigator.Publish(id) })
	}
}

// RefreshHotspots 重新计算可见热点并刷新热点层
// 状态变化（标记、物品、任务）后调用
func (sm *SceneManager) RefreshHotspots() {
	if sm.current == nil {
		return
	}
	e := sm.engine
	visible := make([]*Hotspot, 0, len(sm.current.Hotspots))
	views := make([]HotspotView, 0, len(sm.current.Hotspots))
	for _, h := range sm.current.Hotspots {
		if !h.Visible.Eval(e) {
			continue
		}
		visible = append(visible, h)
		views = append(views, HotspotView{ID: h.ID, Name: h.Name, Rect: h.Rect})
	}
	sm.visible = visible
	e.renderer.ShowHotspots(views)
}
