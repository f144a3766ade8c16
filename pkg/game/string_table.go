package game

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/decker502/casefile/pkg/embedded"
	"github.com/decker502/casefile/pkg/puzzle"
)

// 面向玩家的文本键
const (
	StrNoSave             = "NO_SAVE_FOUND"
	StrGameSaved          = "GAME_SAVED"
	StrSaveFailed         = "SAVE_FAILED"
	StrItemAdded          = "ITEM_ADDED"
	StrQuestStarted       = "QUEST_STARTED"
	StrQuestCompleted     = "QUEST_COMPLETED"
	StrFeatureUnavailable = "FEATURE_UNAVAILABLE"
	StrFeatureFailed      = "FEATURE_FAILED"

	// 本地窗口界面标签
	StrUIInventory    = "UI_INVENTORY"
	StrUIQuests       = "UI_QUESTS"
	StrUITuner        = "UI_TUNER"
	StrUITunerHelp    = "UI_TUNER_HELP"
	StrUIAttemptsLeft = "UI_ATTEMPTS_LEFT"
	StrUIHint         = "UI_HINT"
	StrUICloseHelp    = "UI_CLOSE_HELP"
)

// defaultStringsText 内置的默认文本（格式与 data/strings.txt 相同）
const defaultStringsText = `
[NO_SAVE_FOUND]
No save file found

[GAME_SAVED]
Game saved

[SAVE_FAILED]
Could not save the game

[ITEM_ADDED]
Added to inventory: %s

[QUEST_STARTED]
New lead: %s

[QUEST_COMPLETED]
Case closed: %s

[FEATURE_UNAVAILABLE]
%s unavailable

[FEATURE_FAILED]
Cannot display %s

[PUZZLE_WRONG_ANSWER]
That doesn't seem right.

[PUZZLE_ACCESS_DENIED]
Access denied.

[PUZZLE_EMPTY_INPUT]
Type something first.

[PUZZLE_NOT_A_NUMBER]
Enter a number.

[PUZZLE_SIGNAL_CLOSE]
Almost there, the signal is nearly clear.

[PUZZLE_SIGNAL_FAINT]
Something is coming through the static.

[PUZZLE_SIGNAL_NONE]
Only static.

[PUZZLE_NO_ATTEMPTS]
No attempts left.

[PUZZLE_ATTEMPTS_LEFT]
%d attempts left.

[UI_INVENTORY]
Inventory

[UI_QUESTS]
Quests

[UI_TUNER]
Value: %.1f   Signal: %.0f%%

[UI_TUNER_HELP]
Left/Right to tune, Enter to lock in

[UI_ATTEMPTS_LEFT]
Attempts left: %d

[UI_HINT]
Hint: %s

[UI_CLOSE_HELP]
Esc to close
`

// StringTable 面向玩家的文本表
// 从 strings.txt 加载，缺失的键回退到内置默认文本
type StringTable struct {
	strings map[string]string // 键 -> 文本映射
}

// DefaultStringTable 只包含内置默认文本的文本表
func DefaultStringTable() *StringTable {
	st, _ := ParseStringTable(strings.NewReader(defaultStringsText))
	return st
}

// LoadStringTable 从嵌入资源加载文本表
//
// 参数：
//   - filePath: 文本文件路径（通常为 "data/strings.txt"）
//
// 文件格式：
//
//	[KEY]
//	文本内容
func LoadStringTable(filePath string) (*StringTable, error) {
	file, err := embedded.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open strings file %s: %w", filePath, err)
	}
	defer file.Close()

	st, err := ParseStringTable(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read strings file %s: %w", filePath, err)
	}
	return st, nil
}

// ParseStringTable 解析 [KEY]\n文本 格式的文本表
func ParseStringTable(r io.Reader) (*StringTable, error) {
	st := &StringTable{strings: make(map[string]string)}

	scanner := bufio.NewScanner(r)
	var currentKey string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentKey = strings.TrimSpace(line[1 : len(line)-1])
			continue
		}
		if currentKey != "" {
			st.strings[currentKey] = line
			currentKey = ""
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return st, nil
}

// Get 根据键获取文本
// 键不存在时先查内置默认文本，仍不存在则返回 "[key]"（调试用）
func (st *StringTable) Get(key string) string {
	if st != nil {
		if text, ok := st.strings[key]; ok {
			return text
		}
	}
	if text, ok := defaultStrings.strings[key]; ok {
		return text
	}
	return "[" + key + "]"
}

// Format 获取文本并按 fmt 格式化
func (st *StringTable) Format(key string, args ...any) string {
	return fmt.Sprintf(st.Get(key), args...)
}

// Has 文本表本身是否包含该键（不含内置默认文本）
func (st *StringTable) Has(key string) bool {
	if st == nil {
		return false
	}
	_, ok := st.strings[key]
	return ok
}

// RequiredStrings 引擎会用到的全部文本键（含谜题提示）
func RequiredStrings() []string {
	keys := []string{
		StrNoSave, StrGameSaved, StrSaveFailed, StrItemAdded,
		StrQuestStarted, StrQuestCompleted, StrFeatureUnavailable, StrFeatureFailed,
		StrUIInventory, StrUIQuests, StrUITuner, StrUITunerHelp,
		StrUIAttemptsLeft, StrUIHint, StrUICloseHelp,
	}
	return append(keys, puzzle.MessageKeys()...)
}

// Len 返回已加载的键数量
func (st *StringTable) Len() int {
	if st == nil {
		return 0
	}
	return len(st.strings)
}

var defaultStrings = DefaultStringTable()
