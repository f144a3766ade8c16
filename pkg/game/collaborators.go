package game

import (
	"log"
	"time"

	"github.com/decker502/casefile/pkg/dialogue"
	"github.com/decker502/casefile/pkg/puzzle"
	"github.com/decker502/casefile/pkg/utils"
)

// Mount 表现层挂载点名称
type Mount string

const (
	MountBackground    Mount = "scene-background"
	MountHotspots      Mount = "hotspot-layer"
	MountDialogue      Mount = "dialogue-box"
	MountInventory     Mount = "inventory-panel"
	MountQuests        Mount = "quest-panel"
	MountPuzzle        Mount = "puzzle-overlay"
	MountNotifications Mount = "notification-area"
)

// AllMounts 引擎会写入的全部挂载点
var AllMounts = []Mount{
	MountBackground, MountHotspots, MountDialogue, MountInventory,
	MountQuests, MountPuzzle, MountNotifications,
}

// HotspotView 热点层中的一个可点击区域
type HotspotView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Rect Rect   `json:"rect"`
}

// ItemView 物品栏中的一项
type ItemView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// QuestEntry 任务面板中的一项
type QuestEntry struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Progress    []string `json:"progress"`
	Completed   bool     `json:"completed"`
}

// NotificationView 通知区域中的一条通知
type NotificationView struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Renderer 表现层协作者
//
// 引擎只负责各挂载点的内容，不关心样式和布局。
type Renderer interface {
	dialogue.Surface
	puzzle.Overlay

	// HasMount 挂载点是否存在
	HasMount(m Mount) bool
	SetBackground(ref string)
	// BeginFade 开始淡出（out=true）或淡入动画
	BeginFade(out bool, d time.Duration)
	ShowHotspots(hotspots []HotspotView)
	RenderInventory(items []ItemView)
	RenderQuests(quests []QuestEntry)
	ShowNotification(n NotificationView)
	DismissNotification(id string)
}

// Movement 角色移动协作者（可选）
type Movement interface {
	// WalkTo 走向目标点，到达后调用 onArrive
	WalkTo(p Point, onArrive func())
	SetPosition(p Point)
	Show()
	Hide()
	Think(text string)
}

// Navigator 导航同步协作者（可选），用于深链接/历史记录
type Navigator interface {
	Publish(sceneID string)
}

// Ambience 环境音协作者（可选）
type Ambience interface {
	Play(ref string)
	Stop()
}

// mountGuard 包装 Renderer：调用前检查挂载点
// 缺失的挂载点只记录一次日志，之后对应调用变为空操作
type mountGuard struct {
	inner  Renderer
	warned map[Mount]bool
}

func newMountGuard(r Renderer) *mountGuard {
	return &mountGuard{inner: r, warned: make(map[Mount]bool)}
}

func (g *mountGuard) ok(m Mount) bool {
	has := false
	utils.SafeCall("Renderer", "HasMount", func() { has = g.inner.HasMount(m) })
	if has {
		return true
	}
	if !g.warned[m] {
		g.warned[m] = true
		log.Printf("[Renderer] Warning: %v: %s", ErrMissingMount, m)
	}
	return false
}

func (g *mountGuard) call(m Mount, what string, fn func()) {
	if g.ok(m) {
		utils.SafeCall("Renderer", what, fn)
	}
}

func (g *mountGuard) HasMount(m Mount) bool { return g.ok(m) }

func (g *mountGuard) SetBackground(ref string) {
	g.call(MountBackground, "SetBackground", func() { g.inner.SetBackground(ref) })
}

func (g *mountGuard) BeginFade(out bool, d time.Duration) {
	g.call(MountBackground, "BeginFade", func() { g.inner.BeginFade(out, d) })
}

func (g *mountGuard) ShowHotspots(hs []HotspotView) {
	g.call(MountHotspots, "ShowHotspots", func() { g.inner.ShowHotspots(hs) })
}

func (g *mountGuard) RenderInventory(items []ItemView) {
	g.call(MountInventory, "RenderInventory", func() { g.inner.RenderInventory(items) })
}

func (g *mountGuard) RenderQuests(qs []QuestEntry) {
	g.call(MountQuests, "RenderQuests", func() { g.inner.RenderQuests(qs) })
}

func (g *mountGuard) ShowNotification(n NotificationView) {
	g.call(MountNotifications, "ShowNotification", func() { g.inner.ShowNotification(n) })
}

func (g *mountGuard) DismissNotification(id string) {
	g.call(MountNotifications, "DismissNotification", func() { g.inner.DismissNotification(id) })
}

func (g *mountGuard) ShowDialogue(line dialogue.Line) {
	g.call(MountDialogue, "ShowDialogue", func() { g.inner.ShowDialogue(line) })
}

func (g *mountGuard) SetDialogueText(text string) {
	g.call(MountDialogue, "SetDialogueText", func() { g.inner.SetDialogueText(text) })
}

func (g *mountGuard) HideDialogue() {
	g.call(MountDialogue, "HideDialogue", g.inner.HideDialogue)
}

func (g *mountGuard) ShowPuzzle(v puzzle.View) {
	g.call(MountPuzzle, "ShowPuzzle", func() { g.inner.ShowPuzzle(v) })
}

func (g *mountGuard) UpdatePuzzle(v puzzle.View) {
	g.call(MountPuzzle, "UpdatePuzzle", func() { g.inner.UpdatePuzzle(v) })
}

func (g *mountGuard) HidePuzzle() {
	g.call(MountPuzzle, "HidePuzzle", g.inner.HidePuzzle)
}

// NopRenderer 不显示任何内容的表现层（所有挂载点都存在）
type NopRenderer struct{}

func (NopRenderer) HasMount(Mount) bool                 { return true }
func (NopRenderer) SetBackground(string)                {}
func (NopRenderer) BeginFade(bool, time.Duration)       {}
func (NopRenderer) ShowHotspots([]HotspotView)          {}
func (NopRenderer) RenderInventory([]ItemView)          {}
func (NopRenderer) RenderQuests([]QuestEntry)           {}
func (NopRenderer) ShowNotification(NotificationView)   {}
func (NopRenderer) DismissNotification(string)          {}
func (NopRenderer) ShowDialogue(dialogue.Line)          {}
func (NopRenderer) SetDialogueText(string)              {}
func (NopRenderer) HideDialogue()                       {}
func (NopRenderer) ShowPuzzle(puzzle.View)              {}
func (NopRenderer) UpdatePuzzle(puzzle.View)            {}
func (NopRenderer) HidePuzzle()                         {}
