package game

// InventoryItem 物品（以 ID 为唯一键）
type InventoryItem struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Icon        string `yaml:"icon,omitempty"`

	// OnUse 使用物品时的回调（不进入存档，读档后从物品目录重新挂接）
	OnUse func(e *Engine) `yaml:"-"`
}

// QuestStatus 任务生命周期
type QuestStatus int

const (
	// QuestActive 进行中
	QuestActive QuestStatus = iota
	// QuestCompleted 已完成（单向、幂等）
	QuestCompleted
)

// String 返回 QuestStatus 的字符串表示
func (s QuestStatus) String() string {
	switch s {
	case QuestActive:
		return "active"
	case QuestCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Quest 任务
type Quest struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Progress    []string    `yaml:"progress"`
	Status      QuestStatus `yaml:"-"`

	// OnComplete 完成时回调（不进入存档）
	OnComplete func(e *Engine) `yaml:"-"`
}

// HasStep 进度中是否包含步骤
func (q *Quest) HasStep(step string) bool {
	for _, s := range q.Progress {
		if s == step {
			return true
		}
	}
	return false
}

// clone 复制任务（进度切片独立）
func (q *Quest) clone() *Quest {
	c := *q
	c.Progress = append([]string(nil), q.Progress...)
	return &c
}

// QuestView 提供给场景脚本的只读任务视图
//
// 场景脚本只能通过 Engine 的 ActivateQuest / UpdateQuestProgress / CompleteQuest
// 三个动词修改任务账本。
type QuestView struct {
	state *GameState
}

// IsActive 任务是否进行中
func (v QuestView) IsActive(id string) bool {
	return v.state.activeQuest(id) != nil
}

// IsCompleted 任务是否已完成
func (v QuestView) IsCompleted(id string) bool {
	return v.state.QuestCompleted(id)
}

// HasQuest 任务是否进行中或已完成
func (v QuestView) HasQuest(id string) bool {
	return v.IsActive(id) || v.IsCompleted(id)
}

// GetProgress 返回任务进度副本；任务不在进行中时返回 nil
func (v QuestView) GetProgress(id string) []string {
	q := v.state.activeQuest(id)
	if q == nil {
		return nil
	}
	return append([]string(nil), q.Progress...)
}

// Active 返回进行中任务的 ID（按激活顺序）
func (v QuestView) Active() []string {
	ids := make([]string, 0, len(v.state.ActiveQuests))
	for _, q := range v.state.ActiveQuests {
		ids = append(ids, q.ID)
	}
	return ids
}

// Completed 返回已完成任务的 ID
func (v QuestView) Completed() []string {
	return append([]string(nil), v.state.QuestsCompleted...)
}
