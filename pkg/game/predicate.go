package game

import (
	"fmt"
	"strings"

	"github.com/decker502/casefile/pkg/utils"
)

// PredicateKind 谓词种类
type PredicateKind int

const (
	PredAlways PredicateKind = iota
	PredFlagSet
	PredFlagUnset
	PredHasItem
	PredQuestActive
	PredQuestCompleted
	PredFunc
	PredAll
)

// Predicate 热点可见性/启用条件
//
// 显式的标签联合，由场景脚本或 YAML 条件表达式构造。nil 谓词恒为真。
type Predicate struct {
	Kind  PredicateKind
	Name  string
	Value bool
	Fn    func(e *Engine) bool
	Parts []*Predicate
}

// Always 常量谓词
func Always(v bool) *Predicate { return &Predicate{Kind: PredAlways, Value: v} }

// FlagSet 标记为真
func FlagSet(name string) *Predicate { return &Predicate{Kind: PredFlagSet, Name: name} }

// FlagUnset 标记未设置或为假
func FlagUnset(name string) *Predicate { return &Predicate{Kind: PredFlagUnset, Name: name} }

// HasItem 持有物品
func HasItem(id string) *Predicate { return &Predicate{Kind: PredHasItem, Name: id} }

// IsQuestActive 任务进行中
func IsQuestActive(id string) *Predicate { return &Predicate{Kind: PredQuestActive, Name: id} }

// QuestDone 任务已完成
func QuestDone(id string) *Predicate { return &Predicate{Kind: PredQuestCompleted, Name: id} }

// Func 自定义谓词（只应读取状态）
func Func(fn func(e *Engine) bool) *Predicate { return &Predicate{Kind: PredFunc, Fn: fn} }

// All 所有子谓词都为真
func All(parts ...*Predicate) *Predicate { return &Predicate{Kind: PredAll, Parts: parts} }

// Eval 对引擎状态求值
// 自定义谓词发生 panic 时记录日志并视为假
func (p *Predicate) Eval(e *Engine) bool {
	if p == nil {
		return true
	}
	st := e.state
	switch p.Kind {
	case PredAlways:
		return p.Value
	case PredFlagSet:
		return st.FlagTrue(p.Name)
	case PredFlagUnset:
		return !st.FlagTrue(p.Name)
	case PredHasItem:
		return st.HasItem(p.Name)
	case PredQuestActive:
		return st.activeQuest(p.Name) != nil
	case PredQuestCompleted:
		return st.QuestCompleted(p.Name)
	case PredFunc:
		if p.Fn == nil {
			return true
		}
		result := false
		utils.SafeCall("Predicate", "condition", func() { result = p.Fn(e) })
		return result
	case PredAll:
		for _, part := range p.Parts {
			if !part.Eval(e) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// ParseCondition 解析 YAML 中的条件表达式
//
// 语法（以 && 连接多个子句）：
//
//	flagX          标记为真
//	!flagX         标记未设置或为假
//	item:key       持有物品
//	quest:find     任务进行中
//	done:find      任务已完成
//	true / false   常量
//
// 空字符串返回 nil（恒为真）
func ParseCondition(expr string) (*Predicate, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	clauses := strings.Split(expr, "&&")
	parts := make([]*Predicate, 0, len(clauses))
	for _, c := range clauses {
		p, err := parseClause(strings.TrimSpace(c))
		if err != nil {
			return nil, fmt.Errorf("condition %q: %w", expr, err)
		}
		parts = append(parts, p)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return All(parts...), nil
}

func parseClause(c string) (*Predicate, error) {
	if c == "" {
		return nil, fmt.Errorf("empty clause")
	}
	switch c {
	case "true":
		return Always(true), nil
	case "false":
		return Always(false), nil
	}
	if strings.HasPrefix(c, "!") {
		name := strings.TrimSpace(c[1:])
		if name == "" {
			return nil, fmt.Errorf("missing flag after '!'")
		}
		return FlagUnset(name), nil
	}
	if prefix, arg, ok := strings.Cut(c, ":"); ok {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			return nil, fmt.Errorf("missing argument in %q", c)
		}
		switch strings.TrimSpace(prefix) {
		case "item":
			return HasItem(arg), nil
		case "quest":
			return IsQuestActive(arg), nil
		case "done":
			return QuestDone(arg), nil
		default:
			return nil, fmt.Errorf("unknown clause prefix %q", prefix)
		}
	}
	return FlagSet(c), nil
}
