package utils

import (
	"strings"
	"unicode/utf8"

	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// WrapText 把文本按最大宽度折行
//
// 参数：
//   - s: 要折行的文本，其中的 "\n" 总是产生新行
//   - measure: 返回一段文本的像素宽度
//   - maxWidth: 最大宽度（像素），<= 0 时只按 "\n" 分行
//
// 规则：优先在空格处断行；单个单词超宽时按字符强制断行。
func WrapText(s string, measure func(string) float64, maxWidth float64) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		if maxWidth <= 0 || measure(para) <= maxWidth {
			lines = append(lines, para)
			continue
		}
		lines = append(lines, wrapParagraph(para, measure, maxWidth)...)
	}
	return lines
}

func wrapParagraph(para string, measure func(string) float64, maxWidth float64) []string {
	var lines []string
	current := ""
	for _, word := range strings.Fields(para) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if measure(candidate) <= maxWidth {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
		}
		// 单词本身超宽时按字符断开，剩余部分作为当前行继续
		current = ""
		for measure(word) > maxWidth {
			head := breakWord(word, measure, maxWidth)
			lines = append(lines, head)
			word = word[len(head):]
		}
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// breakWord 返回 word 中不超过 maxWidth 的最长前缀（至少一个字符）
func breakWord(word string, measure func(string) float64, maxWidth float64) string {
	end := 0
	for end < len(word) {
		_, size := utf8.DecodeRuneInString(word[end:])
		if end > 0 && measure(word[:end+size]) > maxWidth {
			break
		}
		end += size
	}
	return word[:end]
}

// WrapFace 使用字体度量折行
func WrapFace(s string, face text.Face, maxWidth float64) []string {
	return WrapText(s, func(str string) float64 {
		w, _ := text.Measure(str, face, 0)
		return w
	}, maxWidth)
}
