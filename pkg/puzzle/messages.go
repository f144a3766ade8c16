package puzzle

// 覆盖层提示文本的键
//
// Presenter 在 Result.Message 中返回这些键，Subsystem 通过 Strings 取出文本。
// 不在此列的 Message 按原文显示（自定义 Presenter 可以直接返回文本）。
const (
	MsgWrongAnswer  = "PUZZLE_WRONG_ANSWER"
	MsgAccessDenied = "PUZZLE_ACCESS_DENIED"
	MsgEmptyInput   = "PUZZLE_EMPTY_INPUT"
	MsgNotANumber   = "PUZZLE_NOT_A_NUMBER"
	MsgSignalClose  = "PUZZLE_SIGNAL_CLOSE"
	MsgSignalFaint  = "PUZZLE_SIGNAL_FAINT"
	MsgSignalNone   = "PUZZLE_SIGNAL_NONE"
	MsgNoAttempts   = "PUZZLE_NO_ATTEMPTS"
	MsgAttemptsLeft = "PUZZLE_ATTEMPTS_LEFT" // 参数：剩余次数
)

// DefaultMessages 内置的提示文本
var DefaultMessages = map[string]string{
	MsgWrongAnswer:  "That doesn't seem right.",
	MsgAccessDenied: "Access denied.",
	MsgEmptyInput:   "Type something first.",
	MsgNotANumber:   "Enter a number.",
	MsgSignalClose:  "Almost there, the signal is nearly clear.",
	MsgSignalFaint:  "Something is coming through the static.",
	MsgSignalNone:   "Only static.",
	MsgNoAttempts:   "No attempts left.",
	MsgAttemptsLeft: "%d attempts left.",
}

// MessageKeys 返回全部提示文本键
func MessageKeys() []string {
	return []string{
		MsgWrongAnswer, MsgAccessDenied, MsgEmptyInput, MsgNotANumber,
		MsgSignalClose, MsgSignalFaint, MsgSignalNone, MsgNoAttempts, MsgAttemptsLeft,
	}
}

// Strings 提示文本来源（通常是游戏的文本表）
type Strings interface {
	Get(key string) string
}

// text 把提示键翻译为文本
func (s *Subsystem) text(key string) string {
	def, known := DefaultMessages[key]
	if !known {
		return key
	}
	if s.strings != nil {
		return s.strings.Get(key)
	}
	return def
}
