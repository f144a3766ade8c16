package game

import (
	"fmt"
	"sort"
)

// GameState 存储全局游戏状态，是引擎唯一的数据源
//
// 由 Engine 持有（不再是全局单例），所有组件在同一逻辑线程上同步修改它。
// 这也是存档的基本单位。
type GameState struct {
	CurrentScene string

	Inventory []InventoryItem
	Flags     map[string]any

	// 任务账本：同一任务 ID 不会同时出现在两个集合中
	ActiveQuests    []*Quest
	QuestsCompleted []string

	StoryPart int
	Clock     Clock
}

// NewGameState 创建初始游戏状态（第 1 天 08:00）
func NewGameState() *GameState {
	return &GameState{
		Inventory: []InventoryItem{},
		Flags:     make(map[string]any),
		Clock:     NewClock(1, 8, 0),
	}
}

// --- 标记 ---

// SetFlag 设置标记
// 值按存档往返后的类型保存，读档前后结构相等
func (gs *GameState) SetFlag(name string, value any) {
	if gs.Flags == nil {
		gs.Flags = make(map[string]any)
	}
	gs.Flags[name] = normalizeFlag(value)
}

// Flag 读取标记
func (gs *GameState) Flag(name string) (any, bool) {
	v, ok := gs.Flags[name]
	return v, ok
}

// FlagTrue 标记是否为"真"：true、非零数字、非空字符串
// 未设置的标记为假
func (gs *GameState) FlagTrue(name string) bool {
	v, ok := gs.Flags[name]
	if !ok {
		return false
	}
	return truthy(v)
}

// ClearFlag 删除标记
func (gs *GameState) ClearFlag(name string) {
	delete(gs.Flags, name)
}

// FlagNames 返回已设置的标记名（排序后）
func (gs *GameState) FlagNames() []string {
	names := make([]string, 0, len(gs.Flags))
	for name := range gs.Flags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int64:
		return t != 0
	case uint64:
		return t != 0
	case float64:
		return t != 0
	case float32:
		return t != 0
	default:
		return fmt.Sprint(t) != ""
	}
}

// --- 物品栏（集合语义） ---

// AddItem 添加物品，ID 已存在时不做任何修改并返回 false
func (gs *GameState) AddItem(item InventoryItem) bool {
	if gs.HasItem(item.ID) {
		return false
	}
	gs.Inventory = append(gs.Inventory, item)
	return true
}

// RemoveItem 按 ID 移除物品，返回是否存在
func (gs *GameState) RemoveItem(id string) bool {
	kept := gs.Inventory[:0]
	removed := false
	for _, it := range gs.Inventory {
		if it.ID == id {
			removed = true
			continue
		}
		kept = append(kept, it)
	}
	gs.Inventory = kept
	return removed
}

// HasItem 物品是否在物品栏中
func (gs *GameState) HasItem(id string) bool {
	_, ok := gs.Item(id)
	return ok
}

// Item 按 ID 查找物品
func (gs *GameState) Item(id string) (InventoryItem, bool) {
	for _, it := range gs.Inventory {
		if it.ID == id {
			return it, true
		}
	}
	return InventoryItem{}, false
}

// --- 任务账本 ---

// ActivateQuest 激活任务
// 任务已激活或已完成时为空操作，返回 false
func (gs *GameState) ActivateQuest(q *Quest) bool {
	if q == nil || q.ID == "" {
		return false
	}
	if gs.activeQuest(q.ID) != nil || gs.QuestCompleted(q.ID) {
		return false
	}
	q.Status = QuestActive
	if q.Progress == nil {
		q.Progress = []string{}
	}
	gs.ActiveQuests = append(gs.ActiveQuests, q)
	return true
}

// UpdateQuestProgress 为激活中的任务追加进度步骤（幂等）
// 返回 true 表示步骤被新加入
func (gs *GameState) UpdateQuestProgress(id, step string) bool {
	q := gs.activeQuest(id)
	if q == nil {
		return false
	}
	for _, s := range q.Progress {
		if s == step {
			return false
		}
	}
	q.Progress = append(q.Progress, step)
	return true
}

// CompleteQuest 将激活中的任务移到已完成集合
// 任务未激活时为空操作，返回 nil
func (gs *GameState) CompleteQuest(id string) *Quest {
	for i, q := range gs.ActiveQuests {
		if q.ID != id {
			continue
		}
		gs.ActiveQuests = append(gs.ActiveQuests[:i], gs.ActiveQuests[i+1:]...)
		q.Status = QuestCompleted
		gs.QuestsCompleted = append(gs.QuestsCompleted, id)
		return q
	}
	return nil
}

// QuestCompleted 任务是否已完成
func (gs *GameState) QuestCompleted(id string) bool {
	for _, c := range gs.QuestsCompleted {
		if c == id {
			return true
		}
	}
	return false
}

func (gs *GameState) activeQuest(id string) *Quest {
	for _, q := range gs.ActiveQuests {
		if q.ID == id {
			return q
		}
	}
	return nil
}
