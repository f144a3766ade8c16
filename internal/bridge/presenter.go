package bridge

import (
	"math"
	"time"

	"github.com/decker502/casefile/pkg/dialogue"
	"github.com/decker502/casefile/pkg/game"
	"github.com/decker502/casefile/pkg/modules"
	"github.com/decker502/casefile/pkg/puzzle"
)

// 出站消息类型
const (
	MsgBackground   = "background"
	MsgFade         = "fade"
	MsgHotspots     = "hotspots"
	MsgInventory    = "inventory"
	MsgQuests       = "quests"
	MsgNotify       = "notify"
	MsgDismiss      = "dismiss"
	MsgDialogue     = "dialogue"
	MsgDialogueText = "dialogueText"
	MsgDialogueHide = "dialogueHide"
	MsgPuzzle       = "puzzle"
	MsgPuzzleHide   = "puzzleHide"
	MsgSpeak        = "speak"
	MsgSpeakStop    = "speakStop"
	MsgWalk         = "walk"
	MsgPosition     = "position"
	MsgCharacter    = "character"
	MsgThink        = "think"
	MsgNavigate     = "navigate"
	MsgAmbience     = "ambience"
	MsgPanel        = "panel"
	MsgPanelHide    = "panelHide"
)

type fadePayload struct {
	Out        bool  `json:"out"`
	DurationMs int64 `json:"durationMs"`
}

type linePayload struct {
	Speaker  string `json:"speaker"`
	Text     string `json:"text"`
	Portrait string `json:"portrait,omitempty"`
}

type puzzlePayload struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Title       string  `json:"title,omitempty"`
	Prompt      string  `json:"prompt,omitempty"`
	Remaining   int     `json:"remaining"`
	Exhausted   bool    `json:"exhausted,omitempty"`
	Hint        string  `json:"hint,omitempty"`
	Message     string  `json:"message,omitempty"`
	Continuous  bool    `json:"continuous,omitempty"`
	Value       float64 `json:"value,omitempty"`
	Min         float64 `json:"min,omitempty"`
	Max         float64 `json:"max,omitempty"`
	Signal      float64 `json:"signal,omitempty"`
	HintVisible bool    `json:"hintVisible,omitempty"`
}

func toPuzzlePayload(v puzzle.View) puzzlePayload {
	p := puzzlePayload{
		ID:          v.ID,
		Type:        string(v.Type),
		Title:       v.Title,
		Prompt:      v.Prompt,
		Remaining:   v.Remaining,
		Exhausted:   v.Exhausted,
		Message:     v.Message,
		HintVisible: v.HintVisible,
		Continuous:  v.Continuous,
		Value:       v.Value,
		Signal:      v.Signal,
	}
	if v.HintVisible {
		p.Hint = v.Hint
	}
	// JSON 不能编码无穷大，不限范围时省略
	if v.Continuous && v.Max > v.Min && !math.IsInf(v.Min, 0) && !math.IsInf(v.Max, 0) {
		p.Min, p.Max = v.Min, v.Max
	}
	return p
}

type pointPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// --- game.Renderer ---

// HasMount 客户端未声明挂载点时视为全部存在
func (h *Hub) HasMount(m game.Mount) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.mounts == nil {
		return true
	}
	return h.mounts[m]
}

func (h *Hub) SetBackground(ref string) {
	h.broadcast(MsgBackground, MsgBackground, map[string]string{"ref": ref})
}

func (h *Hub) BeginFade(out bool, d time.Duration) {
	h.broadcast(MsgFade, "", fadePayload{Out: out, DurationMs: d.Milliseconds()})
}

func (h *Hub) ShowHotspots(hs []game.HotspotView) {
	if hs == nil {
		hs = []game.HotspotView{}
	}
	h.broadcast(MsgHotspots, MsgHotspots, hs)
}

func (h *Hub) RenderInventory(items []game.ItemView) {
	if items == nil {
		items = []game.ItemView{}
	}
	h.broadcast(MsgInventory, MsgInventory, items)
}

func (h *Hub) RenderQuests(qs []game.QuestEntry) {
	if qs == nil {
		qs = []game.QuestEntry{}
	}
	h.broadcast(MsgQuests, MsgQuests, qs)
}

func (h *Hub) ShowNotification(n game.NotificationView) {
	h.broadcast(MsgNotify, "", n)
}

func (h *Hub) DismissNotification(id string) {
	h.broadcast(MsgDismiss, "", map[string]string{"id": id})
}

func (h *Hub) ShowDialogue(l dialogue.Line) {
	h.broadcast(MsgDialogue, MsgDialogue, linePayload{Speaker: l.Speaker, Text: "", Portrait: l.Portrait})
}

func (h *Hub) SetDialogueText(text string) {
	h.broadcast(MsgDialogueText, "", map[string]string{"text": text})
}

func (h *Hub) HideDialogue() {
	h.forget(MsgDialogue)
	h.broadcast(MsgDialogueHide, "", nil)
}

func (h *Hub) ShowPuzzle(v puzzle.View) {
	h.broadcast(MsgPuzzle, MsgPuzzle, toPuzzlePayload(v))
}

func (h *Hub) UpdatePuzzle(v puzzle.View) {
	h.broadcast(MsgPuzzle, MsgPuzzle, toPuzzlePayload(v))
}

func (h *Hub) HidePuzzle() {
	h.forget(MsgPuzzle)
	h.broadcast(MsgPuzzleHide, "", nil)
}

// --- game.Movement ---

// WalkTo 请求客户端移动角色，客户端回报 arrived 后在 Poll 中执行回调
// 新的请求取代尚未到达的请求；没有客户端时立即到达
func (h *Hub) WalkTo(p game.Point, onArrive func()) {
	h.walking++
	if h.Clients() == 0 {
		h.arrival = nil
		if onArrive != nil {
			onArrive()
		}
		return
	}
	h.arrival = onArrive
	h.broadcast(MsgWalk, "", map[string]any{"x": p.X, "y": p.Y, "seq": h.walking})
}

func (h *Hub) SetPosition(p game.Point) {
	h.broadcast(MsgPosition, MsgPosition, pointPayload{X: p.X, Y: p.Y})
}

func (h *Hub) Show() {
	h.broadcast(MsgCharacter, MsgCharacter, map[string]bool{"visible": true})
}

func (h *Hub) Hide() {
	h.broadcast(MsgCharacter, MsgCharacter, map[string]bool{"visible": false})
}

func (h *Hub) Think(text string) {
	h.broadcast(MsgThink, "", map[string]string{"text": text})
}

// --- game.Navigator ---

func (h *Hub) Publish(sceneID string) {
	h.broadcast(MsgNavigate, MsgNavigate, map[string]string{"scene": sceneID})
}

// --- dialogue.Voice / game.Ambience ---
// 两者都有 Stop()，分别通过适配器提供

type voice struct{ h *Hub }

func (v voice) Speak(text, speaker string) {
	v.h.broadcast(MsgSpeak, "", map[string]string{"text": text, "speaker": speaker})
}

func (v voice) Stop() { v.h.broadcast(MsgSpeakStop, "", nil) }

// Voice 返回语音侧通道
func (h *Hub) Voice() dialogue.Voice { return voice{h} }

type ambience struct{ h *Hub }

func (a ambience) Play(ref string) {
	a.h.broadcast(MsgAmbience, MsgAmbience, map[string]any{"ref": ref, "playing": true})
}

func (a ambience) Stop() {
	a.h.broadcast(MsgAmbience, MsgAmbience, map[string]any{"playing": false})
}

// Ambience 返回环境音协作者
func (h *Hub) Ambience() game.Ambience { return ambience{h} }

// --- modules.Display ---

func (h *Hub) ShowPanel(p modules.Panel) {
	h.broadcast(MsgPanel, MsgPanel, p)
}

func (h *Hub) HidePanel(module string) {
	h.forget(MsgPanel)
	h.broadcast(MsgPanelHide, "", map[string]string{"module": module})
}

var (
	_ game.Renderer   = (*Hub)(nil)
	_ game.Movement   = (*Hub)(nil)
	_ game.Navigator  = (*Hub)(nil)
	_ modules.Display = (*Hub)(nil)
)
