package game

import (
	"log"
	"time"

	"github.com/decker502/casefile/pkg/scheduler"
	"github.com/decker502/casefile/pkg/utils"
)

// DefaultNavigationDelay 热点跳转的延迟
// 同一动作中打开的对话/谜题先显示，再发生跳转
const DefaultNavigationDelay = 150 * time.Millisecond

// HotspotPipeline 热点交互管线
//
// 指针/触摸输入 → 命中测试 → 模式门控 → 条件检查 → 走近 → 执行动作。
type HotspotPipeline struct {
	engine *Engine

	// approach 每次点击递增，角色到达时用于判断是否已被新的点击取代
	approach   uint64
	pendingNav scheduler.Handle
	navDelay   time.Duration
}

// NewHotspotPipeline 创建热点交互管线
func NewHotspotPipeline(e *Engine) *HotspotPipeline {
	return &HotspotPipeline{engine: e, navDelay: DefaultNavigationDelay}
}

// SetNavigationDelay 设置跳转延迟
func (p *HotspotPipeline) SetNavigationDelay(d time.Duration) {
	if d < 0 {
		d = 0
	}
	p.navDelay = d
}

// HandlePointer 处理像素坐标输入（鼠标或触摸）
//
// 参数：
//   - x, y: 视口内像素坐标
//   - width, height: 视口尺寸
func (p *HotspotPipeline) HandlePointer(x, y, width, height int) bool {
	px, py, ok := utils.NormalizePointer(x, y, width, height)
	if !ok {
		return false
	}
	return p.HandleClick(Point{X: px, Y: py})
}

// HitTest 返回包含该点的最上层（最后声明的）可见热点
func (p *HotspotPipeline) HitTest(pt Point) *Hotspot {
	visible := p.engine.scenes.VisibleHotspots()
	for i := len(visible) - 1; i >= 0; i-- {
		h := visible[i]
		if h.Rect.Contains(pt) && h.Visible.Eval(p.engine) {
			return h
		}
	}
	return nil
}

// HandleClick 处理视口百分比坐标的点击
// 返回是否命中并分派了热点
func (p *HotspotPipeline) HandleClick(pt Point) bool {
	if !p.ready() {
		return false
	}
	h := p.HitTest(pt)
	if h == nil {
		return false
	}
	return p.dispatch(h)
}

// Interact 按 ID 与当前场景中的可见热点交互（键盘/无障碍/桥接输入使用）
func (p *HotspotPipeline) Interact(id string) bool {
	if !p.ready() {
		return false
	}
	for _, h := range p.engine.scenes.VisibleHotspots() {
		if h.ID == id {
			return p.dispatch(h)
		}
	}
	log.Printf("[Hotspot] 当前场景没有可见热点: %s", id)
	return false
}

// ready 只在探索模式且没有场景切换进行时分派热点
// 旧场景的离开钩子执行后，它的热点不再响应
func (p *HotspotPipeline) ready() bool {
	return p.engine.Mode() == ModeExploration && !p.engine.scenes.Transitioning()
}

func (p *HotspotPipeline) dispatch(h *Hotspot) bool {
	e := p.engine
	p.approach++
	gen := p.approach

	if !h.Condition.Eval(e) {
		log.Printf("[Hotspot] %s: 条件不满足", h.ID)
		if h.FailMessage != "" {
			e.Think(h.FailMessage)
		}
		return true
	}

	if h.SkipApproach || e.mover == nil {
		p.execute(h)
		return true
	}

	sceneID := e.scenes.CurrentID()
	target := h.Rect.Center()
	utils.SafeCall("Hotspot", "Movement.WalkTo", func() {
		e.mover.WalkTo(target, func() {
			// 被更新的点击取代、场景已切换或已进入模态时放弃
			if gen != p.approach || e.scenes.CurrentID() != sceneID || !p.ready() {
				return
			}
			p.execute(h)
		})
	})
	return true
}

// execute 按固定顺序执行热点动作，各步骤互相独立
func (p *HotspotPipeline) execute(h *Hotspot) {
	e := p.engine
	log.Printf("[Hotspot] 执行: %s", h.ID)

	if h.Look != "" {
		e.Notify(h.Look, 0)
	}
	if h.Action != nil {
		utils.SafeCall("Hotspot", "action of "+h.ID, func() { h.Action(e) })
	}
	if h.Target != "" {
		p.scheduleNavigation(h.Target)
	}
	if h.GiveItem != nil {
		e.AddItem(*h.GiveItem)
	}
	if len(h.Dialogue) > 0 {
		e.StartDialogue(h.Dialogue)
	}
	if h.Puzzle != nil {
		if err := e.StartPuzzle(h.Puzzle); err != nil {
			log.Printf("[Hotspot] %s: 无法打开谜题: %v", h.ID, err)
		}
	}
	if h.Feature != nil {
		_ = e.ShowFeature(h.Feature.Module, h.Feature.Config)
	}
}

// scheduleNavigation 延迟跳转，新的跳转请求会取代尚未执行的旧请求
func (p *HotspotPipeline) scheduleNavigation(target string) {
	e := p.engine
	p.CancelNavigation()
	p.pendingNav = e.sched.After(p.navDelay, func() {
		p.pendingNav = 0
		if err := e.LoadScene(target, TransitionFade); err != nil {
			log.Printf("[Hotspot] 跳转失败: %v", err)
		}
	})
}

// CancelNavigation 取消尚未执行的跳转
func (p *HotspotPipeline) CancelNavigation() bool {
	if p.pendingNav == 0 {
		return false
	}
	ok := p.engine.sched.Cancel(p.pendingNav)
	p.pendingNav = 0
	return ok
}

// NavigationPending 是否有尚未执行的跳转
func (p *HotspotPipeline) NavigationPending() bool {
	return p.pendingNav != 0
}
