package puzzle

import (
	"math"
	"strconv"
	"strings"
)

// continuousPresenter 连续参数谜题（如频率调谐）
//
// 维护一个实时标量，夹在 [min, max] 内；反馈信号是到目标距离的单调递减函数，
// 距离不超过容差即判定成功。
type continuousPresenter struct {
	target    float64
	tolerance float64
	min, max  float64
	step      float64
	value     float64
}

// NewContinuousPresenter 创建连续参数谜题判定器
func NewContinuousPresenter(cfg *Config) (Presenter, error) {
	p := &continuousPresenter{
		target:    cfg.Target,
		tolerance: cfg.Tolerance,
		min:       cfg.Min,
		max:       cfg.Max,
		step:      cfg.Step,
	}
	if p.tolerance <= 0 {
		p.tolerance = DefaultTolerance
	}
	if p.max <= p.min {
		p.min = math.Inf(-1)
		p.max = math.Inf(1)
	}
	if p.step <= 0 {
		p.step = 0.1
	}
	p.Set(cfg.Initial)
	return p, nil
}

// Set 设置当前值（夹到范围内）
func (p *continuousPresenter) Set(v float64) {
	if math.IsNaN(v) {
		return
	}
	p.value = math.Max(p.min, math.Min(p.max, v))
}

// Adjust 在当前值基础上调节
func (p *continuousPresenter) Adjust(delta float64) {
	p.Set(p.value + delta)
}

// Value 返回当前值
func (p *continuousPresenter) Value() float64 {
	return p.value
}

// Distance 返回当前值到目标的距离
func (p *continuousPresenter) Distance() float64 {
	return math.Abs(p.value - p.target)
}

// Signal 返回反馈信号：1/(1+距离)，在目标处为 1
func (p *continuousPresenter) Signal() float64 {
	return 1 / (1 + p.Distance())
}

// Check 提交数值；input 为空时提交当前实时值
func (p *continuousPresenter) Check(input string) Result {
	input = strings.TrimSpace(input)
	if input != "" {
		v, err := strconv.ParseFloat(input, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return Result{Counted: false, Message: MsgNotANumber}
		}
		p.Set(v)
	}

	d := p.Distance()
	if d <= p.tolerance {
		return Result{Solved: true, Counted: true}
	}
	return Result{Counted: true, Message: feedbackMessage(d, p.tolerance)}
}

// Fill 写入连续参数谜题的显示数据
func (p *continuousPresenter) Fill(v *View) {
	v.Continuous = true
	v.Value = p.value
	// 无范围限制时 Min/Max 留 0，避免表现层拿到无穷大
	if !math.IsInf(p.min, 0) {
		v.Min = p.min
		v.Max = p.max
	}
	v.Signal = p.Signal()
}

// feedbackMessage 根据距离选择上下文提示键
func feedbackMessage(distance, tolerance float64) string {
	switch {
	case distance <= tolerance*4:
		return MsgSignalClose
	case distance <= tolerance*20:
		return MsgSignalFaint
	default:
		return MsgSignalNone
	}
}
