package game

import (
	"time"

	"github.com/decker502/casefile/pkg/dialogue"
	"github.com/decker502/casefile/pkg/persistence"
	"github.com/decker502/casefile/pkg/puzzle"
	"github.com/decker502/casefile/pkg/scheduler"
)

// recordingRenderer 记录所有表现层调用
// missing 中的挂载点视为不存在
type recordingRenderer struct {
	missing map[Mount]bool

	backgrounds   []string
	fades         []bool
	hotspots      [][]HotspotView
	inventory     [][]ItemView
	quests        [][]QuestEntry
	notifications []NotificationView
	dismissed     []string
	lines         []dialogue.Line
	texts         []string
	dialogHidden  int
	puzzles       []puzzle.View
	puzzleHidden  int
}

func (r *recordingRenderer) HasMount(m Mount) bool { return !r.missing[m] }
func (r *recordingRenderer) SetBackground(ref string) {
	r.backgrounds = append(r.backgrounds, ref)
}
func (r *recordingRenderer) BeginFade(out bool, _ time.Duration) { r.fades = append(r.fades, out) }
func (r *recordingRenderer) ShowHotspots(hs []HotspotView)      { r.hotspots = append(r.hotspots, hs) }
func (r *recordingRenderer) RenderInventory(items []ItemView)   { r.inventory = append(r.inventory, items) }
func (r *recordingRenderer) RenderQuests(qs []QuestEntry)       { r.quests = append(r.quests, qs) }
func (r *recordingRenderer) ShowNotification(n NotificationView) {
	r.notifications = append(r.notifications, n)
}
func (r *recordingRenderer) DismissNotification(id string) { r.dismissed = append(r.dismissed, id) }
func (r *recordingRenderer) ShowDialogue(l dialogue.Line)  { r.lines = append(r.lines, l) }
func (r *recordingRenderer) SetDialogueText(t string)      { r.texts = append(r.texts, t) }
func (r *recordingRenderer) HideDialogue()                 { r.dialogHidden++ }
func (r *recordingRenderer) ShowPuzzle(v puzzle.View)      { r.puzzles = append(r.puzzles, v) }
func (r *recordingRenderer) UpdatePuzzle(puzzle.View)      {}
func (r *recordingRenderer) HidePuzzle()                   { r.puzzleHidden++ }

func (r *recordingRenderer) messages() []string {
	out := make([]string, 0, len(r.notifications))
	for _, n := range r.notifications {
		out = append(out, n.Message)
	}
	return out
}

// fakeMover 记录移动请求，到达回调由测试手动触发
type fakeMover struct {
	walks     []Point
	arrivals  []func()
	positions []Point
	thoughts  []string
}

func (m *fakeMover) WalkTo(p Point, onArrive func()) {
	m.walks = append(m.walks, p)
	m.arrivals = append(m.arrivals, onArrive)
}
func (m *fakeMover) SetPosition(p Point) { m.positions = append(m.positions, p) }
func (m *fakeMover) Show()               {}
func (m *fakeMover) Hide()               {}
func (m *fakeMover) Think(text string)   { m.thoughts = append(m.thoughts, text) }

func (m *fakeMover) arrive(i int) { m.arrivals[i]() }

type fakeNavigator struct{ published []string }

func (n *fakeNavigator) Publish(id string) { n.published = append(n.published, id) }

type fakeAmbience struct{ calls []string }

func (a *fakeAmbience) Play(ref string) { a.calls = append(a.calls, "play:"+ref) }
func (a *fakeAmbience) Stop()           { a.calls = append(a.calls, "stop") }

// testEngine 测试用引擎及其协作者
type testEngine struct {
	*Engine
	sched    *scheduler.Scheduler
	renderer *recordingRenderer
	nav      *fakeNavigator
	store    *persistence.MemoryStore
}

// newTestEngine 创建没有角色协作者、对话立即显示的引擎
func newTestEngine() *testEngine {
	return newTestEngineWith(nil, persistence.NewMemoryStore())
}

func newTestEngineWith(mover Movement, store *persistence.MemoryStore) *testEngine {
	if store == nil {
		store = persistence.NewMemoryStore()
	}
	sched := scheduler.New()
	r := &recordingRenderer{}
	nav := &fakeNavigator{}
	settings := DefaultSettings()
	settings.TextSpeedMs = 0
	e := NewEngine(Options{
		Renderer:  r,
		Movement:  mover,
		Navigator: nav,
		Store:     store,
		Scheduler: sched,
		Settings:  settings,
	})
	return &testEngine{Engine: e, sched: sched, renderer: r, nav: nav, store: store}
}

func rect(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }
