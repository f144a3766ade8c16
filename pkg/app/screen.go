package app

import (
	"math"
	"time"

	"github.com/decker502/casefile/pkg/dialogue"
	"github.com/decker502/casefile/pkg/game"
	"github.com/decker502/casefile/pkg/modules"
	"github.com/decker502/casefile/pkg/puzzle"
	"github.com/decker502/casefile/pkg/utils"
)

const (
	// DefaultWalkSpeed 角色行走速度（视口百分比/秒）
	DefaultWalkSpeed = 45.0

	// thoughtDuration 角色心声气泡的显示时长
	thoughtDuration = 2500 * time.Millisecond
)

// Screen 本地窗口的表现层状态
//
// 引擎通过 Renderer/Movement/modules.Display 接口写入状态，
// Tick 推进淡入淡出和行走动画，Draw 只读取状态。
// 所有方法都在 ebiten 的 Update 线程上调用。
type Screen struct {
	background string

	fadeOut      bool
	fadeElapsed  time.Duration
	fadeDuration time.Duration

	hotspots      []game.HotspotView
	inventory     []game.ItemView
	quests        []game.QuestEntry
	notifications []game.NotificationView

	line        *dialogue.Line
	lineText    string
	puzzleView  *puzzle.View
	puzzleInput string
	panel       *modules.Panel

	// 角色
	charVisible bool
	charPos     game.Point
	walkTarget  *game.Point
	onArrive    func()
	walkSpeed   float64
	thought     string
	thoughtLeft time.Duration
}

// NewScreen 创建表现层状态
func NewScreen() *Screen {
	return &Screen{
		charPos:   game.Point{X: 50, Y: 80},
		walkSpeed: DefaultWalkSpeed,
	}
}

// Tick 推进动画
func (s *Screen) Tick(dt time.Duration) {
	if s.fadeDuration > 0 && s.fadeElapsed < s.fadeDuration {
		s.fadeElapsed += dt
		if s.fadeElapsed > s.fadeDuration {
			s.fadeElapsed = s.fadeDuration
		}
	}
	if s.thoughtLeft > 0 {
		s.thoughtLeft -= dt
		if s.thoughtLeft <= 0 {
			s.thought = ""
		}
	}
	s.stepWalk(dt)
}

// stepWalk 沿直线走向目标，到达后执行回调
func (s *Screen) stepWalk(dt time.Duration) {
	if s.walkTarget == nil {
		return
	}
	dx := s.walkTarget.X - s.charPos.X
	dy := s.walkTarget.Y - s.charPos.Y
	dist := math.Hypot(dx, dy)
	step := s.walkSpeed * dt.Seconds()
	if dist > step && step > 0 {
		s.charPos.X += dx / dist * step
		s.charPos.Y += dy / dist * step
		return
	}
	s.charPos = *s.walkTarget
	s.walkTarget = nil
	fn := s.onArrive
	s.onArrive = nil
	if fn != nil {
		fn()
	}
}

// FadeAlpha 当前遮罩不透明度 0~1（三次方缓入缓出）
func (s *Screen) FadeAlpha() float64 {
	if s.fadeDuration <= 0 {
		if s.fadeOut {
			return 1
		}
		return 0
	}
	p := utils.EaseInOutCubic(float64(s.fadeElapsed) / float64(s.fadeDuration))
	if s.fadeOut {
		return p
	}
	return 1 - p
}

// --- game.Renderer ---

// HasMount 本地窗口提供全部挂载点
func (s *Screen) HasMount(game.Mount) bool { return true }

func (s *Screen) SetBackground(ref string) { s.background = ref }

func (s *Screen) BeginFade(out bool, d time.Duration) {
	s.fadeOut = out
	s.fadeElapsed = 0
	s.fadeDuration = d
}

func (s *Screen) ShowHotspots(hs []game.HotspotView) {
	s.hotspots = append(s.hotspots[:0], hs...)
}

func (s *Screen) RenderInventory(items []game.ItemView) {
	s.inventory = append(s.inventory[:0], items...)
}

func (s *Screen) RenderQuests(qs []game.QuestEntry) {
	s.quests = append(s.quests[:0], qs...)
}

func (s *Screen) ShowNotification(n game.NotificationView) {
	s.notifications = append(s.notifications, n)
}

func (s *Screen) DismissNotification(id string) {
	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

func (s *Screen) ShowDialogue(l dialogue.Line) {
	s.line = &l
	s.lineText = ""
}

func (s *Screen) SetDialogueText(text string) { s.lineText = text }

func (s *Screen) HideDialogue() {
	s.line = nil
	s.lineText = ""
}

func (s *Screen) ShowPuzzle(v puzzle.View) {
	s.puzzleView = &v
	s.puzzleInput = ""
}

func (s *Screen) UpdatePuzzle(v puzzle.View) { s.puzzleView = &v }

func (s *Screen) HidePuzzle() {
	s.puzzleView = nil
	s.puzzleInput = ""
}

// --- game.Movement ---

// WalkTo 新的目标取代尚未到达的目标，旧的回调不再执行
func (s *Screen) WalkTo(p game.Point, onArrive func()) {
	s.walkTarget = &p
	s.onArrive = onArrive
}

func (s *Screen) SetPosition(p game.Point) {
	s.charPos = p
	s.walkTarget = nil
	s.onArrive = nil
}

func (s *Screen) Show() { s.charVisible = true }
func (s *Screen) Hide() { s.charVisible = false }

func (s *Screen) Think(text string) {
	s.thought = text
	s.thoughtLeft = thoughtDuration
}

// --- modules.Display ---

func (s *Screen) ShowPanel(p modules.Panel) { s.panel = &p }

func (s *Screen) HidePanel(module string) {
	if s.panel != nil && s.panel.Module == module {
		s.panel = nil
	}
}

// PanelOpen 是否有功能面板打开
func (s *Screen) PanelOpen() bool { return s.panel != nil }

var (
	_ game.Renderer   = (*Screen)(nil)
	_ game.Movement   = (*Screen)(nil)
	_ modules.Display = (*Screen)(nil)
)
