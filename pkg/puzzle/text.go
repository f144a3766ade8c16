package puzzle

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// textPresenter 精确/近似文本匹配谜题（密文破译、共享口令）
type textPresenter struct {
	kind      Type
	answers   []string // 已归一化
	minPrefix int
	encoded   string // 密文（仅 cipher）
	wrongMsg  string // 提示键
}

// NewTextPresenter 创建文本匹配谜题判定器
func NewTextPresenter(cfg *Config) (Presenter, error) {
	if len(cfg.Answers) == 0 {
		return nil, fmt.Errorf("%w: puzzle %s has no answers", ErrInvalidConfig, cfg.ID)
	}

	p := &textPresenter{
		kind:      cfg.Type,
		minPrefix: cfg.MinPrefix,
		wrongMsg:  MsgWrongAnswer,
	}
	for _, a := range cfg.Answers {
		if n := Normalize(a); n != "" {
			p.answers = append(p.answers, n)
		}
	}
	if len(p.answers) == 0 {
		return nil, fmt.Errorf("%w: puzzle %s has only blank answers", ErrInvalidConfig, cfg.ID)
	}

	if cfg.Type == TypePassword {
		p.wrongMsg = MsgAccessDenied
	}
	if cfg.Type == TypeCipher {
		p.encoded = cfg.Params["ciphertext"]
		if p.encoded == "" {
			shift, err := strconv.Atoi(cfg.Params["shift"])
			if err != nil {
				shift = 3
			}
			p.encoded = CaesarShift(cfg.Answers[0], shift)
		}
	}
	return p, nil
}

// Check 比较归一化后的输入与可接受答案
func (p *textPresenter) Check(input string) Result {
	n := Normalize(input)
	if n == "" {
		return Result{Counted: false, Message: MsgEmptyInput}
	}
	for _, a := range p.answers {
		if n == a {
			return Result{Solved: true, Counted: true}
		}
		if p.minPrefix > 0 && len([]rune(n)) >= p.minPrefix && strings.HasPrefix(a, n) {
			return Result{Solved: true, Counted: true}
		}
	}
	return Result{Counted: true, Message: p.wrongMsg}
}

// Fill 写入文本谜题的显示数据
func (p *textPresenter) Fill(v *View) {
	if p.encoded != "" {
		if v.Prompt == "" {
			v.Prompt = p.encoded
		} else {
			v.Prompt = v.Prompt + "\n" + p.encoded
		}
	}
}

// Normalize 归一化玩家输入：去除重音、大小写折叠、合并空白
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = cases.Fold().String(out)
	return strings.Join(strings.Fields(out), " ")
}

// CaesarShift 对 ASCII 字母做凯撒移位，其他字符保持不变
func CaesarShift(s string, shift int) string {
	shift = ((shift % 26) + 26) % 26
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune('a' + (r-'a'+rune(shift))%26)
		case r >= 'A' && r <= 'Z':
			b.WriteRune('A' + (r-'A'+rune(shift))%26)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
