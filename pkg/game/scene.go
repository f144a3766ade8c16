package game

import (
	"fmt"

	"github.com/decker502/casefile/pkg/dialogue"
	"github.com/decker502/casefile/pkg/puzzle"
)

// TransitionKind 场景切换动画
type TransitionKind int

const (
	// TransitionNone 立即切换
	TransitionNone TransitionKind = iota
	// TransitionFade 淡出 → 切换 → 淡入
	TransitionFade
)

// String 返回 TransitionKind 的字符串表示
func (k TransitionKind) String() string {
	if k == TransitionFade {
		return "fade"
	}
	return "none"
}

// Hook 场景进入/离开钩子
type Hook func(e *Engine)

// Scene 一个地点
//
// 由 SceneManager 按 ID 持有。注册后不可修改，只能通过重新注册整体替换。
type Scene struct {
	ID         string
	Name       string
	Background string
	Ambience   string
	Hotspots   []*Hotspot

	// Start 玩家初始位置，nil 时使用 DefaultPlayerStart
	Start *Point

	OnEnter Hook
	OnExit  Hook
}

// FeatureRequest 打开可选功能模块的请求
type FeatureRequest struct {
	Module string            `yaml:"module"`
	Config map[string]string `yaml:"config,omitempty"`
}

// Hotspot 场景中的可点击区域
//
// 动作执行顺序：Look → Action → 延迟跳转 Target → 获得 GiveItem →
// 开始 Dialogue → 打开 Puzzle → 打开 Feature。各步骤互相独立。
type Hotspot struct {
	ID   string
	Name string
	Rect Rect

	// Visible 为假时热点不出现在热点层，也不参与命中测试
	Visible *Predicate
	// Condition 为假时只显示 FailMessage，不执行任何动作
	Condition   *Predicate
	FailMessage string

	Look     string
	Action   func(e *Engine)
	Target   string
	GiveItem *InventoryItem
	Dialogue []dialogue.Line
	Puzzle   *puzzle.Config
	Feature  *FeatureRequest

	// SkipApproach 为真时不等角色走到热点，立即执行
	SkipApproach bool
}

// Validate 检查场景定义
func (s *Scene) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil scene", ErrInvalidScene)
	}
	if s.ID == "" {
		return fmt.Errorf("%w: scene id is required", ErrInvalidScene)
	}
	seen := make(map[string]bool, len(s.Hotspots))
	for i, h := range s.Hotspots {
		if h == nil {
			return fmt.Errorf("%w: scene %s: hotspot %d is nil", ErrInvalidScene, s.ID, i)
		}
		if h.ID == "" {
			return fmt.Errorf("%w: scene %s: hotspot %d has no id", ErrInvalidScene, s.ID, i)
		}
		if seen[h.ID] {
			return fmt.Errorf("%w: scene %s: duplicate hotspot id %s", ErrInvalidScene, s.ID, h.ID)
		}
		seen[h.ID] = true
		if !h.Rect.Valid() {
			return fmt.Errorf("%w: scene %s: hotspot %s has an empty rect", ErrInvalidScene, s.ID, h.ID)
		}
	}
	return nil
}

// Hotspot 按 ID 查找热点
func (s *Scene) Hotspot(id string) *Hotspot {
	for _, h := range s.Hotspots {
		if h.ID == id {
			return h
		}
	}
	return nil
}

// SceneData 纯数据形式的场景定义（来自 YAML 内容文件）
//
// 条件以字符串表达式给出，见 ParseCondition。
type SceneData struct {
	Name       string        `yaml:"name"`
	Background string        `yaml:"background,omitempty"`
	Ambience   string        `yaml:"ambience,omitempty"`
	Start      *Point        `yaml:"start,omitempty"`
	Hotspots   []HotspotData `yaml:"hotspots"`
}

// HotspotData 纯数据形式的热点定义
type HotspotData struct {
	ID           string          `yaml:"id"`
	Name         string          `yaml:"name,omitempty"`
	Rect         Rect            `yaml:"rect"`
	Visible      string          `yaml:"visible,omitempty"`
	Condition    string          `yaml:"condition,omitempty"`
	FailMessage  string          `yaml:"failMessage,omitempty"`
	Look         string          `yaml:"look,omitempty"`
	Target       string          `yaml:"target,omitempty"`
	Item         *InventoryItem  `yaml:"item,omitempty"`
	Dialogue     []dialogue.Line `yaml:"dialogue,omitempty"`
	Puzzle       *puzzle.Config  `yaml:"puzzle,omitempty"`
	Feature      *FeatureRequest `yaml:"feature,omitempty"`
	SkipApproach bool            `yaml:"skipApproach,omitempty"`
	SetFlags     map[string]any  `yaml:"setFlags,omitempty"`
	Quest        string          `yaml:"quest,omitempty"`    // 激活目录中的任务
	Progress     string          `yaml:"progress,omitempty"` // 为 Quest 追加进度步骤
}

// ToScene 转换为 Scene
// SetFlags 被转换为一个设置标记的 Action
func (d SceneData) ToScene(id string) (*Scene, error) {
	s := &Scene{
		ID:         id,
		Name:       d.Name,
		Background: d.Background,
		Ambience:   d.Ambience,
		Hotspots:   make([]*Hotspot, 0, len(d.Hotspots)),
	}
	if d.Start != nil {
		start := *d.Start
		s.Start = &start
	}
	for _, hd := range d.Hotspots {
		visible, err := ParseCondition(hd.Visible)
		if err != nil {
			return nil, fmt.Errorf("%w: scene %s: hotspot %s: %v", ErrInvalidScene, id, hd.ID, err)
		}
		cond, err := ParseCondition(hd.Condition)
		if err != nil {
			return nil, fmt.Errorf("%w: scene %s: hotspot %s: %v", ErrInvalidScene, id, hd.ID, err)
		}
		h := &Hotspot{
			ID:           hd.ID,
			Name:         hd.Name,
			Rect:         hd.Rect,
			Visible:      visible,
			Condition:    cond,
			FailMessage:  hd.FailMessage,
			Look:         hd.Look,
			Target:       hd.Target,
			GiveItem:     hd.Item,
			Dialogue:     hd.Dialogue,
			Puzzle:       hd.Puzzle,
			Feature:      hd.Feature,
			SkipApproach: hd.SkipApproach,
		}
		if len(hd.SetFlags) > 0 || hd.Quest != "" {
			flags, quest, step := hd.SetFlags, hd.Quest, hd.Progress
			h.Action = func(e *Engine) {
				for name, v := range flags {
					e.SetFlag(name, v)
				}
				if quest == "" {
					return
				}
				e.ActivateQuestByID(quest)
				if step != "" {
					e.UpdateQuestProgress(quest, step)
				}
			}
		}
		s.Hotspots = append(s.Hotspots, h)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
