// Package puzzle 实现小游戏谜题框架
//
// 同一时刻只有一个谜题处于激活状态。Subsystem 按 Config.Type 从注册表中
// 选择 Presenter，成功/失败的公共流程（标记已解开、完成任务、尝试次数、
// 提示开关）由 Subsystem 统一处理，Presenter 只负责判定输入。
package puzzle

import (
	"errors"
	"fmt"
)

// Type 谜题类型标签
type Type string

const (
	// TypeCipher 密文破译：输入解码后的明文
	TypeCipher Type = "cipher"
	// TypePassword 共享口令：输入约定的暗号
	TypePassword Type = "password"
	// TypeFrequency 频率调谐：把连续值调到隐藏目标附近
	TypeFrequency Type = "frequency"
)

var (
	// ErrUnknownPuzzleType 谜题类型未注册
	ErrUnknownPuzzleType = errors.New("unknown puzzle type")
	// ErrNoActivePuzzle 当前没有激活的谜题
	ErrNoActivePuzzle = errors.New("no active puzzle")
	// ErrNotContinuous 当前谜题不是连续参数谜题
	ErrNotContinuous = errors.New("puzzle is not continuous")
	// ErrInvalidConfig 谜题配置不完整
	ErrInvalidConfig = errors.New("invalid puzzle config")
)

// DefaultTolerance 连续参数谜题的默认容差
const DefaultTolerance = 0.5

// Config 谜题配置
type Config struct {
	ID     string            `yaml:"id"`
	Type   Type              `yaml:"type"`
	Title  string            `yaml:"title,omitempty"`
	Prompt string            `yaml:"prompt,omitempty"`
	Params map[string]string `yaml:"params,omitempty"`

	// 文本类谜题
	Answers   []string `yaml:"answers,omitempty"`   // 可接受的答案（大小写、重音不敏感）
	MinPrefix int      `yaml:"minPrefix,omitempty"` // >0 时允许输入答案的前缀（至少 MinPrefix 个字符）

	// 连续参数类谜题
	Target    float64 `yaml:"target,omitempty"`
	Tolerance float64 `yaml:"tolerance,omitempty"` // 0 表示使用 DefaultTolerance
	Min       float64 `yaml:"min,omitempty"`
	Max       float64 `yaml:"max,omitempty"` // Max <= Min 表示不限制范围
	Initial   float64 `yaml:"initial,omitempty"`
	Step      float64 `yaml:"step,omitempty"`

	Hint        string `yaml:"hint,omitempty"`
	MaxAttempts int    `yaml:"maxAttempts,omitempty"` // 0 表示不限次数
	QuestID     string `yaml:"quest,omitempty"`       // 解开后完成的任务（可选）

	OnSuccess     func()              `yaml:"-"`
	OnFailure     func(remaining int) `yaml:"-"`
	OnMaxAttempts func()              `yaml:"-"`
}

// Validate 检查配置是否可用
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	if c.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidConfig)
	}
	if c.MaxAttempts < 0 {
		return fmt.Errorf("%w: puzzle %s has negative maxAttempts", ErrInvalidConfig, c.ID)
	}
	return nil
}

// SolvedFlag 返回记录谜题已解开的标记名
func SolvedFlag(id string) string {
	return "puzzle_" + id + "_solved"
}

// View 谜题覆盖层的显示数据
type View struct {
	ID     string
	Type   Type
	Title  string
	Prompt string

	// Remaining 剩余尝试次数，-1 表示不限
	Remaining int
	Exhausted bool

	Hint        string
	HintVisible bool
	Message     string

	// 连续参数谜题
	Continuous bool
	Value      float64
	Min        float64
	Max        float64
	Signal     float64 // 反馈信号 (0, 1]，越接近目标越大
}

// Overlay 谜题覆盖层（由表现层实现）
type Overlay interface {
	ShowPuzzle(v View)
	UpdatePuzzle(v View)
	HidePuzzle()
}

// Ledger 谜题成功时需要写入的游戏状态
type Ledger interface {
	SetFlag(name string, value any)
	CompleteQuest(id string) bool
}

// Result 单次提交的判定结果
type Result struct {
	Solved bool
	// Counted 为 false 表示输入无效（如非数字），不消耗尝试次数
	Counted bool
	Message string
}

// Presenter 具体类型的谜题判定器
type Presenter interface {
	Check(input string) Result
	Fill(v *View)
}

// Continuous 连续参数谜题额外提供的实时调节能力
type Continuous interface {
	Presenter
	Set(value float64)
	Adjust(delta float64)
	Value() float64
	Signal() float64
}

// Factory 根据配置创建 Presenter
type Factory func(cfg *Config) (Presenter, error)
