// Package dialogue 实现模态对话播放
//
// Sequencer 按 FIFO 顺序播放一组对话行，每行以逐字显示效果呈现，
// 并可选地通过语音侧通道朗读。状态机：
//
//	Idle → Showing → (Advancing ⇄ Showing) → Idle
//
// 逐字显示是协作式的：每个字符之后向调度器注册下一步，
// 每一步执行前检查取消令牌；Advance/End 会同时取消令牌和已注册的下一步。
package dialogue

import (
	"log"
	"time"

	"github.com/decker502/casefile/pkg/scheduler"
	"github.com/decker502/casefile/pkg/utils"
)

// DefaultCharDelay 默认逐字显示间隔
const DefaultCharDelay = 30 * time.Millisecond

// State 对话会话状态
type State int

const (
	// StateIdle 没有对话会话
	StateIdle State = iota
	// StateShowing 正在显示（或已显示完）队首对话行
	StateShowing
	// StateAdvancing 正在从当前行切换到下一行
	StateAdvancing
)

// String 返回 State 的字符串表示
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateShowing:
		return "Showing"
	case StateAdvancing:
		return "Advancing"
	default:
		return "Unknown"
	}
}

// Line 一行对话（不可变值对象）
type Line struct {
	Speaker  string `yaml:"speaker"`
	Text     string `yaml:"text"`
	Portrait string `yaml:"portrait,omitempty"`

	// OnShow 该行开始显示时调用的副作用回调（可选）
	OnShow func() `yaml:"-"`
}

// Surface 对话显示面（由表现层实现）
type Surface interface {
	// ShowDialogue 显示对话框并切换到新的一行（说话人、头像）
	ShowDialogue(line Line)
	// SetDialogueText 更新当前已显示的文本
	SetDialogueText(text string)
	// HideDialogue 隐藏对话框
	HideDialogue()
}

// Voice 语音侧通道（可选协作者）
type Voice interface {
	Speak(text, speaker string)
	Stop()
}

// Sequencer 对话播放器，同一时刻只有一个会话
type Sequencer struct {
	sched     *scheduler.Scheduler
	surface   Surface
	voice     Voice
	charDelay time.Duration

	state State
	queue []Line

	// 当前行逐字显示状态
	token     *scheduler.Token
	step      scheduler.Handle
	runes     []rune
	pos       int
	revealing bool

	onEnd []func()
}

// NewSequencer 创建对话播放器
//
// 参数：
//   - sched: 调度器（必需）
//   - surface: 对话显示面，可为 nil（无界面运行）
//   - voice: 语音侧通道，可为 nil（静默降级）
func NewSequencer(sched *scheduler.Scheduler, surface Surface, voice Voice) *Sequencer {
	return &Sequencer{
		sched:     sched,
		surface:   surface,
		voice:     voice,
		charDelay: DefaultCharDelay,
		state:     StateIdle,
	}
}

// SetCharDelay 设置逐字显示间隔，<= 0 表示整行立即显示
func (s *Sequencer) SetCharDelay(d time.Duration) {
	s.charDelay = d
}

// SetVoice 替换语音侧通道，nil 表示关闭语音
func (s *Sequencer) SetVoice(v Voice) {
	s.voice = v
}

// OnEnd 注册会话结束监听器
func (s *Sequencer) OnEnd(fn func()) {
	s.onEnd = append(s.onEnd, fn)
}

// State 返回当前状态
func (s *Sequencer) State() State {
	return s.state
}

// Active 是否有对话会话正在进行
func (s *Sequencer) Active() bool {
	return s.state != StateIdle
}

// Current 返回队首对话行
func (s *Sequencer) Current() (Line, bool) {
	if len(s.queue) == 0 {
		return Line{}, false
	}
	return s.queue[0], true
}

// Remaining 返回队列中剩余的行数（包括当前行）
func (s *Sequencer) Remaining() int {
	return len(s.queue)
}

// Revealed 返回当前行已显示的文本
func (s *Sequencer) Revealed() string {
	return string(s.runes[:s.pos])
}

// Revealing 当前行是否仍在逐字显示
func (s *Sequencer) Revealing() bool {
	return s.revealing
}

// Start 开始新的对话会话
//
// 已有会话时直接替换其队列（不合并），旧行的显示和语音会先被取消。
// lines 为空时不开始会话并返回 false。
func (s *Sequencer) Start(lines []Line) bool {
	if len(lines) == 0 {
		log.Printf("[Dialogue] Warning: 没有台词，忽略 Start")
		return false
	}

	if s.state != StateIdle {
		log.Printf("[Dialogue] 替换进行中的对话（剩余 %d 行）", len(s.queue))
		s.cancelReveal()
		s.stopVoice()
	}

	s.queue = make([]Line, len(lines))
	copy(s.queue, lines)
	s.state = StateShowing

	log.Printf("[Dialogue] 对话开始: %d 行", len(s.queue))
	s.showHead()
	return true
}

// Advance 推进到下一行
//
// 取消当前行的逐字显示和语音，弹出队首；队列为空时结束会话。
// Idle 状态下调用为空操作。
func (s *Sequencer) Advance() {
	if s.state == StateIdle {
		return
	}

	s.state = StateAdvancing
	s.cancelReveal()
	s.stopVoice()

	if len(s.queue) > 0 {
		s.queue = s.queue[1:]
	}
	if len(s.queue) == 0 {
		s.End()
		return
	}

	s.state = StateShowing
	s.showHead()
}

// Complete 立即显示当前行的剩余文本（不弹出队首）
func (s *Sequencer) Complete() {
	if s.state == StateIdle || !s.revealing {
		return
	}
	s.cancelReveal()
	s.pos = len(s.runes)
	s.setText(string(s.runes))
}

// End 结束会话：清空队列、取消令牌、隐藏对话框
func (s *Sequencer) End() {
	if s.state == StateIdle && len(s.queue) == 0 {
		return
	}
	s.queue = nil
	s.cancelReveal()
	s.stopVoice()
	s.state = StateIdle
	s.runes = nil
	s.pos = 0

	if s.surface != nil {
		utils.SafeCall("Dialogue", "HideDialogue", s.surface.HideDialogue)
	}
	log.Printf("[Dialogue] 对话结束")

	for _, fn := range s.onEnd {
		utils.SafeCall("Dialogue", "end listener", fn)
	}
}

// showHead 显示队首对话行并开始逐字显示
func (s *Sequencer) showHead() {
	line := s.queue[0]
	token := scheduler.NewToken()
	s.token = token
	s.runes = []rune(line.Text)
	s.pos = 0
	s.revealing = len(s.runes) > 0

	if s.surface != nil {
		utils.SafeCall("Dialogue", "ShowDialogue", func() { s.surface.ShowDialogue(line) })
	}
	s.setText("")

	if s.voice != nil {
		v := s.voice
		utils.SafeCall("Dialogue", "voice Speak", func() { v.Speak(line.Text, line.Speaker) })
	}

	utils.SafeCall("Dialogue", "line OnShow", line.OnShow)

	// OnShow 可能已经推进或结束了会话
	if token.Cancelled() || s.token != token {
		return
	}

	if s.charDelay <= 0 {
		s.pos = len(s.runes)
		s.revealing = false
		s.setText(string(s.runes))
		return
	}
	s.scheduleStep(token)
}

// scheduleStep 注册逐字显示的下一步
func (s *Sequencer) scheduleStep(token *scheduler.Token) {
	if !s.revealing {
		return
	}
	s.step = s.sched.After(s.charDelay, func() {
		if token.Cancelled() {
			return
		}
		s.step = 0
		s.pos++
		s.setText(string(s.runes[:s.pos]))
		if s.pos >= len(s.runes) {
			s.revealing = false
			return
		}
		s.scheduleStep(token)
	})
}

// cancelReveal 取消当前行的逐字显示
func (s *Sequencer) cancelReveal() {
	s.token.Cancel()
	if s.step != 0 {
		s.sched.Cancel(s.step)
		s.step = 0
	}
	s.revealing = false
}

func (s *Sequencer) stopVoice() {
	if s.voice != nil {
		utils.SafeCall("Dialogue", "voice Stop", s.voice.Stop)
	}
}

func (s *Sequencer) setText(text string) {
	if s.surface != nil {
		utils.SafeCall("Dialogue", "SetDialogueText", func() { s.surface.SetDialogueText(text) })
	}
}
