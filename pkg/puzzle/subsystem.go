package puzzle

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/decker502/casefile/pkg/scheduler"
	"github.com/decker502/casefile/pkg/utils"
)

// DefaultPollInterval 连续参数谜题的反馈轮询间隔
const DefaultPollInterval = 100 * time.Millisecond

// session 一次激活的谜题
type session struct {
	cfg         *Config
	presenter   Presenter
	remaining   int // -1 表示不限
	exhausted   bool
	hintVisible bool
	message     string

	poll       scheduler.Handle
	lastSignal float64
}

// Subsystem 谜题子系统，同一时刻最多一个激活谜题
type Subsystem struct {
	sched   *scheduler.Scheduler
	overlay Overlay
	ledger  Ledger

	strings      Strings
	factories    map[Type]Factory
	active       *session
	pollInterval time.Duration
	onClose      []func(id string, solved bool)
}

// NewSubsystem 创建谜题子系统，并注册内置类型（cipher/password/frequency）
//
// 参数：
//   - sched: 调度器（用于连续参数谜题的反馈轮询）
//   - overlay: 谜题覆盖层，可为 nil
//   - ledger: 成功时写入标记和完成任务，可为 nil
func NewSubsystem(sched *scheduler.Scheduler, overlay Overlay, ledger Ledger) *Subsystem {
	s := &Subsystem{
		sched:        sched,
		overlay:      overlay,
		ledger:       ledger,
		factories:    make(map[Type]Factory),
		pollInterval: DefaultPollInterval,
	}
	s.Register(TypeCipher, NewTextPresenter)
	s.Register(TypePassword, NewTextPresenter)
	s.Register(TypeFrequency, NewContinuousPresenter)
	return s
}

// Register 注册（或覆盖）谜题类型
func (s *Subsystem) Register(t Type, f Factory) {
	s.factories[t] = f
}

// SetStrings 设置提示文本来源，nil 使用内置文本
func (s *Subsystem) SetStrings(st Strings) {
	s.strings = st
}

// Registered 检查谜题类型是否已注册
func (s *Subsystem) Registered(t Type) bool {
	_, ok := s.factories[t]
	return ok
}

// SetPollInterval 设置反馈轮询间隔，<= 0 关闭轮询
func (s *Subsystem) SetPollInterval(d time.Duration) {
	s.pollInterval = d
}

// OnClose 注册谜题关闭监听器（解开或取消都会触发，被新谜题替换时不触发）
func (s *Subsystem) OnClose(fn func(id string, solved bool)) {
	s.onClose = append(s.onClose, fn)
}

// Active 是否有激活的谜题
func (s *Subsystem) Active() bool {
	return s.active != nil
}

// ActiveID 返回激活谜题的 ID
func (s *Subsystem) ActiveID() string {
	if s.active == nil {
		return ""
	}
	return s.active.cfg.ID
}

// Remaining 返回剩余尝试次数（-1 表示不限，无激活谜题时为 0）
func (s *Subsystem) Remaining() int {
	if s.active == nil {
		return 0
	}
	return s.active.remaining
}

// View 返回当前谜题的显示数据
func (s *Subsystem) View() (View, bool) {
	if s.active == nil {
		return View{}, false
	}
	return s.view(s.active), true
}

// Start 打开谜题
//
// 按 cfg.Type 分派到对应 Presenter；类型未知时记录日志并返回 ErrUnknownPuzzleType，
// 不打开任何谜题。已有激活谜题时直接替换（不触发旧谜题的回调）。
func (s *Subsystem) Start(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		log.Printf("[Puzzle] Warning: %v", err)
		return err
	}

	factory, ok := s.factories[cfg.Type]
	if !ok {
		err := fmt.Errorf("%w: %q (puzzle %s)", ErrUnknownPuzzleType, cfg.Type, cfg.ID)
		log.Printf("[Puzzle] Warning: %v", err)
		return err
	}

	presenter, err := factory(cfg)
	if err != nil {
		log.Printf("[Puzzle] Warning: 无法创建谜题 %s 的判定器: %v", cfg.ID, err)
		return err
	}

	if s.active != nil {
		log.Printf("[Puzzle] 用 %[2]s 替换激活中的谜题 %[1]s", s.active.cfg.ID, cfg.ID)
		s.teardown(s.active)
	}

	sess := &session{
		cfg:       cfg,
		presenter: presenter,
		remaining: cfg.MaxAttempts,
	}
	if cfg.MaxAttempts == 0 {
		sess.remaining = -1
	}
	s.active = sess

	if s.overlay != nil {
		v := s.view(sess)
		utils.SafeCall("Puzzle", "ShowPuzzle", func() { s.overlay.ShowPuzzle(v) })
	}
	if c, ok := presenter.(Continuous); ok {
		sess.lastSignal = c.Signal()
		s.schedulePoll(sess)
	}

	log.Printf("[Puzzle] 打开谜题: %s (type=%s, attempts=%d)", cfg.ID, cfg.Type, cfg.MaxAttempts)
	return nil
}

// Submit 提交一次答案
//
// 返回：
//   - bool: 是否解开
//   - error: 没有激活谜题时返回 ErrNoActivePuzzle
func (s *Subsystem) Submit(input string) (bool, error) {
	sess := s.active
	if sess == nil {
		return false, ErrNoActivePuzzle
	}
	if sess.exhausted {
		sess.message = s.text(MsgNoAttempts)
		s.update(sess)
		return false, nil
	}

	res := sess.presenter.Check(input)
	if !res.Counted {
		sess.message = s.text(res.Message)
		s.update(sess)
		return false, nil
	}
	if res.Solved {
		s.succeed(sess)
		return true, nil
	}
	s.fail(sess, res.Message)
	return false, nil
}

// SubmitValue 设置连续参数谜题的值并提交
func (s *Subsystem) SubmitValue(v float64) (bool, error) {
	if err := s.SetValue(v); err != nil {
		return false, err
	}
	return s.Submit("")
}

// SetValue 设置连续参数谜题的实时值
func (s *Subsystem) SetValue(v float64) error {
	c, err := s.continuous()
	if err != nil {
		return err
	}
	c.Set(v)
	return nil
}

// Adjust 调节连续参数谜题的实时值
func (s *Subsystem) Adjust(delta float64) error {
	c, err := s.continuous()
	if err != nil {
		return err
	}
	c.Adjust(delta)
	return nil
}

// ToggleHint 切换提示可见性（与尝试次数无关）
// 返回切换后的可见性；没有提示或没有激活谜题时返回 false
func (s *Subsystem) ToggleHint() bool {
	sess := s.active
	if sess == nil || sess.cfg.Hint == "" {
		return false
	}
	sess.hintVisible = !sess.hintVisible
	s.update(sess)
	return sess.hintVisible
}

// Cancel 放弃当前谜题（不触发成功/失败回调）
func (s *Subsystem) Cancel() {
	if s.active == nil {
		return
	}
	log.Printf("[Puzzle] 取消谜题: %s", s.active.cfg.ID)
	s.close(s.active, false)
}

// succeed 公共成功流程：标记已解开 → 完成任务 → 成功回调 → 关闭
func (s *Subsystem) succeed(sess *session) {
	cfg := sess.cfg
	log.Printf("[Puzzle] 谜题已解开: %s", cfg.ID)

	if s.ledger != nil {
		s.ledger.SetFlag(SolvedFlag(cfg.ID), true)
		if cfg.QuestID != "" {
			s.ledger.CompleteQuest(cfg.QuestID)
		}
	}
	utils.SafeCall("Puzzle", "OnSuccess", cfg.OnSuccess)

	// 回调中可能已经打开了新的谜题
	if s.active == sess {
		s.close(sess, true)
	}
}

// fail 公共失败流程：扣减尝试次数 → 提示 → 次数用尽时回调一次
func (s *Subsystem) fail(sess *session, message string) {
	cfg := sess.cfg
	if sess.remaining > 0 {
		sess.remaining--
	}

	message = s.text(message)
	switch {
	case sess.remaining == 0:
		sess.message = strings.TrimSpace(message + " " + s.text(MsgNoAttempts))
	case sess.remaining > 0:
		sess.message = strings.TrimSpace(message + " " + fmt.Sprintf(s.text(MsgAttemptsLeft), sess.remaining))
	default:
		sess.message = message
	}
	log.Printf("[Puzzle] 答案错误: %s (remaining=%d)", cfg.ID, sess.remaining)

	remaining := sess.remaining
	utils.SafeCall("Puzzle", "OnFailure", func() {
		if cfg.OnFailure != nil {
			cfg.OnFailure(remaining)
		}
	})

	if sess.remaining == 0 && !sess.exhausted {
		sess.exhausted = true
		log.Printf("[Puzzle] 尝试次数用尽: %s", cfg.ID)
		utils.SafeCall("Puzzle", "OnMaxAttempts", cfg.OnMaxAttempts)
	}

	if s.active == sess {
		s.update(sess)
	}
}

// close 关闭谜题并通知监听器
func (s *Subsystem) close(sess *session, solved bool) {
	s.teardown(sess)
	id := sess.cfg.ID
	for _, fn := range s.onClose {
		utils.SafeCall("Puzzle", "close listener", func() { fn(id, solved) })
	}
}

// teardown 停止轮询、隐藏覆盖层并清除激活状态
func (s *Subsystem) teardown(sess *session) {
	if sess.poll != 0 {
		s.sched.Cancel(sess.poll)
		sess.poll = 0
	}
	if s.active == sess {
		s.active = nil
	}
	if s.overlay != nil {
		utils.SafeCall("Puzzle", "HidePuzzle", s.overlay.HidePuzzle)
	}
}

// schedulePoll 注册反馈轮询，信号变化时刷新覆盖层
func (s *Subsystem) schedulePoll(sess *session) {
	if s.pollInterval <= 0 || s.sched == nil {
		return
	}
	sess.poll = s.sched.After(s.pollInterval, func() {
		sess.poll = 0
		if s.active != sess {
			return
		}
		if c, ok := sess.presenter.(Continuous); ok {
			if sig := c.Signal(); sig != sess.lastSignal {
				sess.lastSignal = sig
				s.update(sess)
			}
		}
		s.schedulePoll(sess)
	})
}

func (s *Subsystem) continuous() (Continuous, error) {
	if s.active == nil {
		return nil, ErrNoActivePuzzle
	}
	c, ok := s.active.presenter.(Continuous)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotContinuous, s.active.cfg.ID)
	}
	return c, nil
}

func (s *Subsystem) update(sess *session) {
	if s.overlay == nil {
		return
	}
	v := s.view(sess)
	utils.SafeCall("Puzzle", "UpdatePuzzle", func() { s.overlay.UpdatePuzzle(v) })
}

func (s *Subsystem) view(sess *session) View {
	cfg := sess.cfg
	v := View{
		ID:          cfg.ID,
		Type:        cfg.Type,
		Title:       cfg.Title,
		Prompt:      cfg.Prompt,
		Remaining:   sess.remaining,
		Exhausted:   sess.exhausted,
		HintVisible: sess.hintVisible,
		Message:     sess.message,
	}
	if sess.hintVisible {
		v.Hint = cfg.Hint
	}
	sess.presenter.Fill(&v)
	return v
}
