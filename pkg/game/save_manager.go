package game

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/decker502/casefile/pkg/persistence"
)

// DefaultSaveSlot 默认存档槽位名
const DefaultSaveSlot = "casefile"

// SaveData 存档文档
//
// 格式：
//
//	currentScene: harbor
//	inventory: [{id: key, name: Brass key}]
//	gameState:
//	  flags: {a: 1, b: t}
//	  activeQuests: [...]
//	  questsCompleted: [...]
//	  storyPart: 2
//	  time: "08:30"
//	  day: 1
//	timestamp: 2026-01-02T15:04:05Z
type SaveData struct {
	CurrentScene string          `yaml:"currentScene"`
	Inventory    []InventoryItem `yaml:"inventory"`
	GameState    SavedGameState  `yaml:"gameState"`
	Timestamp    string          `yaml:"timestamp"`
	SessionID    string          `yaml:"sessionId,omitempty"`
}

// SavedGameState 存档中的状态部分
type SavedGameState struct {
	Flags           map[string]any `yaml:"flags"`
	ActiveQuests    []*Quest       `yaml:"activeQuests"`
	QuestsCompleted []string       `yaml:"questsCompleted"`
	StoryPart       int            `yaml:"storyPart"`
	Time            string         `yaml:"time"`
	Day             int            `yaml:"day"`
}

// SaveManager 存档管理器
//
// 职责：
//   - 把 GameState 编码为 YAML 写入单个存档槽位（覆盖旧存档）
//   - 读档时整体替换状态（不合并），重新挂接物品/任务回调，刷新界面并进入存档中的场景
//
// 槽位为空或内容无法解析时一律按"没有存档"处理，通知玩家而不是报错中断。
type SaveManager struct {
	engine    *Engine
	store     persistence.Store
	slot      string
	sessionID string
	now       func() time.Time
}

// NewSaveManager 创建存档管理器
//
// 参数：
//   - e: 引擎
//   - store: 存档存储后端
//   - slot: 槽位名，为空时使用 DefaultSaveSlot
func NewSaveManager(e *Engine, store persistence.Store, slot string) *SaveManager {
	if slot == "" {
		slot = DefaultSaveSlot
	}
	return &SaveManager{
		engine:    e,
		store:     store,
		slot:      slot,
		sessionID: uuid.NewString(),
		now:       time.Now,
	}
}

// Slot 返回槽位名
func (sm *SaveManager) Slot() string {
	return sm.slot
}

// Save 保存当前状态
func (sm *SaveManager) Save() error {
	e := sm.engine
	data, err := yaml.Marshal(sm.snapshot())
	if err != nil {
		log.Printf("[SaveManager] 错误: 序列化失败: %v", err)
		e.Notify(e.strings.Get(StrSaveFailed), 0)
		return fmt.Errorf("failed to marshal save data: %w", err)
	}
	if err := sm.store.Write(sm.slot, data); err != nil {
		log.Printf("[SaveManager] 错误: 写入失败: %v", err)
		e.Notify(e.strings.Get(StrSaveFailed), 0)
		return fmt.Errorf("failed to write save: %w", err)
	}
	log.Printf("[SaveManager] 已保存到槽位 %s", sm.slot)
	e.Notify(e.strings.Get(StrGameSaved), 0)
	return nil
}

// snapshot 把当前状态复制为存档文档
func (sm *SaveManager) snapshot() *SaveData {
	st := sm.engine.state
	doc := &SaveData{
		CurrentScene: st.CurrentScene,
		Inventory:    append([]InventoryItem{}, st.Inventory...),
		GameState: SavedGameState{
			Flags:           make(map[string]any, len(st.Flags)),
			ActiveQuests:    make([]*Quest, 0, len(st.ActiveQuests)),
			QuestsCompleted: append([]string{}, st.QuestsCompleted...),
			StoryPart:       st.StoryPart,
			Time:            st.Clock.String(),
			Day:             st.Clock.Day,
		},
		Timestamp: sm.now().UTC().Format(time.RFC3339),
		SessionID: sm.sessionID,
	}
	for k, v := range st.Flags {
		doc.GameState.Flags[k] = encodeFlag(v)
	}
	for _, q := range st.ActiveQuests {
		doc.GameState.ActiveQuests = append(doc.GameState.ActiveQuests, q.clone())
	}
	return doc
}

// Load 读档
//
// 返回：
//   - nil: 读档成功
//   - ErrNoSave: 槽位为空或存档损坏（损坏时同时满足 errors.Is(err, ErrMalformedSave)）
func (sm *SaveManager) Load() error {
	e := sm.engine
	raw, err := sm.store.Read(sm.slot)
	if err != nil {
		if !errors.Is(err, persistence.ErrNotFound) {
			log.Printf("[SaveManager] Warning: 读取存档失败: %v", err)
		}
		e.Notify(e.strings.Get(StrNoSave), 0)
		return fmt.Errorf("%w: %v", ErrNoSave, err)
	}

	st, doc, err := decodeSave(raw)
	if err != nil {
		log.Printf("[SaveManager] Warning: %v", err)
		e.Notify(e.strings.Get(StrNoSave), 0)
		return fmt.Errorf("%w: %w", ErrNoSave, err)
	}

	e.resetModes()
	sm.reattach(st)
	*e.state = *st
	e.RefreshUI()
	log.Printf("[SaveManager] 已读取槽位 %s (保存于 %s)", sm.slot, doc.Timestamp)

	if doc.CurrentScene != "" {
		if err := e.LoadScene(doc.CurrentScene, TransitionFade); err != nil {
			log.Printf("[SaveManager] Warning: 存档中的场景无法进入: %v", err)
		}
	}
	return nil
}

// decodeSave 解析并校验存档
func decodeSave(raw []byte) (*GameState, *SaveData, error) {
	var doc SaveData
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedSave, err)
	}

	clock := NewClock(1, 8, 0)
	if doc.GameState.Time != "" || doc.GameState.Day != 0 {
		c, err := ParseClock(doc.GameState.Day, doc.GameState.Time)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrMalformedSave, err)
		}
		clock = c
	}

	st := NewGameState()
	st.CurrentScene = doc.CurrentScene
	st.StoryPart = doc.GameState.StoryPart
	st.Clock = clock
	for k, v := range doc.GameState.Flags {
		st.SetFlag(k, v)
	}
	for _, it := range doc.Inventory {
		if it.ID == "" {
			return nil, nil, fmt.Errorf("%w: inventory item without id", ErrMalformedSave)
		}
		st.AddItem(it)
	}
	for _, id := range doc.GameState.QuestsCompleted {
		if !st.QuestCompleted(id) {
			st.QuestsCompleted = append(st.QuestsCompleted, id)
		}
	}
	for _, q := range doc.GameState.ActiveQuests {
		if q == nil || q.ID == "" {
			return nil, nil, fmt.Errorf("%w: quest without id", ErrMalformedSave)
		}
		// 已完成集合优先，保证同一任务不会同时出现在两个集合中
		st.ActivateQuest(q)
	}
	return st, &doc, nil
}

// reattach 从目录中为读出的物品和任务重新挂接回调
func (sm *SaveManager) reattach(st *GameState) {
	e := sm.engine
	for i := range st.Inventory {
		if cat, ok := e.itemCatalog[st.Inventory[i].ID]; ok {
			st.Inventory[i].OnUse = cat.OnUse
		}
	}
	for _, q := range st.ActiveQuests {
		if cat, ok := e.questCatalog[q.ID]; ok {
			q.OnComplete = cat.OnComplete
		}
	}
}

// HasSave 槽位中是否有存档
func (sm *SaveManager) HasSave() bool {
	_, err := sm.store.Read(sm.slot)
	return err == nil
}

// DeleteSave 删除存档
func (sm *SaveManager) DeleteSave() error {
	if err := sm.store.Delete(sm.slot); err != nil {
		return fmt.Errorf("failed to delete save: %w", err)
	}
	log.Printf("[SaveManager] 已删除槽位 %s", sm.slot)
	return nil
}
