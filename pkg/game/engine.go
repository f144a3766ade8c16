package game

import (
	"fmt"
	"log"
	"time"

	"github.com/decker502/casefile/pkg/dialogue"
	"github.com/decker502/casefile/pkg/persistence"
	"github.com/decker502/casefile/pkg/puzzle"
	"github.com/decker502/casefile/pkg/scheduler"
	"github.com/decker502/casefile/pkg/utils"
)

// Mode 引擎当前的交互模式，任一时刻恰好处于其中之一
type Mode int

const (
	// ModeExploration 自由探索，热点可以点击
	ModeExploration Mode = iota
	// ModeDialogue 对话进行中
	ModeDialogue
	// ModePuzzle 谜题打开中
	ModePuzzle
)

// String 返回 Mode 的字符串表示
func (m Mode) String() string {
	switch m {
	case ModeExploration:
		return "exploration"
	case ModeDialogue:
		return "dialogue"
	case ModePuzzle:
		return "puzzle"
	default:
		return "unknown"
	}
}

// Feature 可选功能模块（证物查看器、聊天记录、密码输入等）
type Feature interface {
	Name() string
	Show(cfg map[string]string) error
}

// Options 引擎的协作者与参数
// 除 Renderer 外都可以为 nil
type Options struct {
	Renderer  Renderer
	Voice     dialogue.Voice
	Movement  Movement
	Navigator Navigator
	Ambience  Ambience

	Store    persistence.Store
	SaveSlot string

	Scheduler *scheduler.Scheduler
	Settings  *GameSettings
	Strings   *StringTable
}

// pendingRequest 因模式互斥而排队的对话或谜题
type pendingRequest struct {
	lines  []dialogue.Line
	puzzle *puzzle.Config
}

// Engine 叙事游戏运行时引擎
//
// 所有方法都必须在同一逻辑线程上调用（宿主循环或测试）。
// 延时行为通过 Scheduler 推进，引擎自身不启动 goroutine。
type Engine struct {
	sched     *scheduler.Scheduler
	renderer  Renderer
	mover     Movement
	navigator Navigator
	ambience  Ambience
	strings   *StringTable
	settings  *GameSettings

	state *GameState

	scenes   *SceneManager
	hotspots *HotspotPipeline
	dialogue *dialogue.Sequencer
	puzzles  *puzzle.Subsystem
	notifier *Notifier
	saves    *SaveManager

	features     map[string]Feature
	itemCatalog  map[string]InventoryItem
	questCatalog map[string]*Quest

	pending []pendingRequest
	warned  map[string]bool
}

// NewEngine 创建引擎
func NewEngine(opts Options) *Engine {
	e := &Engine{
		navigator:    opts.Navigator,
		ambience:     opts.Ambience,
		mover:        opts.Movement,
		strings:      opts.Strings,
		settings:     opts.Settings,
		state:        NewGameState(),
		features:     make(map[string]Feature),
		itemCatalog:  make(map[string]InventoryItem),
		questCatalog: make(map[string]*Quest),
		warned:       make(map[string]bool),
	}

	e.sched = opts.Scheduler
	if e.sched == nil {
		e.sched = scheduler.New()
	}
	if e.settings == nil {
		e.settings = DefaultSettings()
	}
	if e.strings == nil {
		e.strings = DefaultStringTable()
	}

	var r Renderer = opts.Renderer
	if r == nil {
		e.warnMissing("Renderer")
		r = NopRenderer{}
	}
	e.renderer = newMountGuard(r)

	if e.mover == nil {
		e.warnMissing("Movement")
	}
	if e.navigator == nil {
		e.warnMissing("Navigator")
	}

	var voice dialogue.Voice
	if opts.Voice == nil {
		e.warnMissing("Voice")
	} else if e.settings.VoiceEnabled {
		voice = opts.Voice
	}

	e.notifier = NewNotifier(e.sched, e.renderer)
	e.notifier.SetDefaultDuration(e.settings.NotificationDuration())

	e.dialogue = dialogue.NewSequencer(e.sched, e.renderer, voice)
	e.dialogue.SetCharDelay(e.settings.CharDelay())
	e.dialogue.OnEnd(e.onModeEnded)

	e.puzzles = puzzle.NewSubsystem(e.sched, e.renderer, e)
	e.puzzles.SetStrings(e.strings)
	e.puzzles.OnClose(func(string, bool) { e.onModeEnded() })

	e.scenes = NewSceneManager(e)
	e.hotspots = NewHotspotPipeline(e)

	store := opts.Store
	if store == nil {
		e.warnMissing("Store")
		store = persistence.NewMemoryStore()
	}
	e.saves = NewSaveManager(e, store, opts.SaveSlot)
	return e
}

// warnMissing 每个缺失的协作者只记录一次日志
func (e *Engine) warnMissing(name string) {
	if e.warned[name] {
		return
	}
	e.warned[name] = true
	log.Printf("[Engine] Warning: %v: %s (dependent calls become no-ops)", ErrMissingCollaborator, name)
}

// --- 组件访问 ---

func (e *Engine) Scheduler() *scheduler.Scheduler { return e.sched }
func (e *Engine) State() *GameState              { return e.state }
func (e *Engine) Scenes() *SceneManager          { return e.scenes }
func (e *Engine) Hotspots() *HotspotPipeline     { return e.hotspots }
func (e *Engine) Dialogue() *dialogue.Sequencer  { return e.dialogue }
func (e *Engine) Puzzles() *puzzle.Subsystem     { return e.puzzles }
func (e *Engine) Notifier() *Notifier            { return e.notifier }
func (e *Engine) Saves() *SaveManager            { return e.saves }
func (e *Engine) Strings() *StringTable          { return e.strings }
func (e *Engine) Settings() *GameSettings        { return e.settings }

// Mode 由对话和谜题的活动状态推导出当前模式
func (e *Engine) Mode() Mode {
	if e.puzzles.Active() {
		return ModePuzzle
	}
	if e.dialogue.Active() {
		return ModeDialogue
	}
	return ModeExploration
}

// Update 推进引擎时间（宿主循环每帧调用）
func (e *Engine) Update(dt time.Duration) {
	e.sched.Advance(dt)
}

// --- 输入 ---

// HandleClick 处理视口百分比坐标的点击
func (e *Engine) HandleClick(p Point) bool {
	return e.hotspots.HandleClick(p)
}

// AdvanceDialogue 推进对话，不在对话中时返回 false
func (e *Engine) AdvanceDialogue() bool {
	if !e.dialogue.Active() {
		return false
	}
	e.dialogue.Advance()
	return true
}

// SubmitPuzzle 向当前谜题提交输入
func (e *Engine) SubmitPuzzle(input string) (bool, error) {
	return e.puzzles.Submit(input)
}

// --- 场景 ---

// RegisterScene 注册场景
func (e *Engine) RegisterScene(s *Scene) error {
	return e.scenes.RegisterScene(s)
}

// RegisterSceneData 以纯数据形式注册场景
func (e *Engine) RegisterSceneData(id string, data SceneData) error {
	return e.scenes.RegisterSceneData(id, data)
}

// LoadScene 切换场景，会取代尚未执行的热点跳转
func (e *Engine) LoadScene(id string, kind TransitionKind) error {
	return e.scenes.LoadScene(id, kind)
}

// --- 标记 ---

// SetFlag 设置标记并刷新热点可见性
func (e *Engine) SetFlag(name string, value any) {
	e.state.SetFlag(name, value)
	e.scenes.RefreshHotspots()
}

// Flag 读取标记
func (e *Engine) Flag(name string) (any, bool) {
	return e.state.Flag(name)
}

// FlagTrue 标记是否为真
func (e *Engine) FlagTrue(name string) bool {
	return e.state.FlagTrue(name)
}

// --- 物品栏 ---

// RegisterItem 把物品加入目录，读档后据此重新挂接 OnUse
func (e *Engine) RegisterItem(item InventoryItem) {
	e.itemCatalog[item.ID] = item
}

// AddItem 获得物品，已持有时为空操作
func (e *Engine) AddItem(item InventoryItem) bool {
	if item.ID == "" {
		log.Printf("[Inventory] Warning: 忽略没有 ID 的物品")
		return false
	}
	if cat, ok := e.itemCatalog[item.ID]; ok {
		if item.OnUse == nil {
			item.OnUse = cat.OnUse
		}
		// 只给出 ID 的物品使用目录中的名称和描述
		if item.Name == "" {
			item.Name, item.Description, item.Icon = cat.Name, cat.Description, cat.Icon
		}
	}
	if !e.state.AddItem(item) {
		return false
	}
	log.Printf("[Inventory] 获得物品: %s", item.ID)
	e.renderInventory()
	e.Notify(e.strings.Format(StrItemAdded, displayName(item.Name, item.ID)), 0)
	e.scenes.RefreshHotspots()
	return true
}

// RemoveItem 移除物品
func (e *Engine) RemoveItem(id string) bool {
	if !e.state.RemoveItem(id) {
		return false
	}
	e.renderInventory()
	e.scenes.RefreshHotspots()
	return true
}

// HasItem 是否持有物品
func (e *Engine) HasItem(id string) bool {
	return e.state.HasItem(id)
}

// UseItem 使用物品，执行其 OnUse 回调
func (e *Engine) UseItem(id string) bool {
	item, ok := e.state.Item(id)
	if !ok {
		return false
	}
	if item.OnUse == nil {
		log.Printf("[Inventory] %s 没有使用效果", id)
		return false
	}
	return utils.SafeCall("Inventory", "use "+id, func() { item.OnUse(e) })
}

// --- 任务账本 ---

// RegisterQuest 把任务加入目录，读档后据此重新挂接 OnComplete
func (e *Engine) RegisterQuest(q *Quest) {
	if q == nil || q.ID == "" {
		return
	}
	e.questCatalog[q.ID] = q
}

// Quests 返回只读任务视图
func (e *Engine) Quests() QuestView {
	return QuestView{state: e.state}
}

// ActivateQuest 激活任务（已激活或已完成时为空操作）
// 传入的任务被复制，调用方保留的对象不会被引擎修改
func (e *Engine) ActivateQuest(q *Quest) bool {
	if q == nil {
		return false
	}
	c := q.clone()
	if c.OnComplete == nil {
		if cat, ok := e.questCatalog[c.ID]; ok {
			c.OnComplete = cat.OnComplete
		}
	}
	if !e.state.ActivateQuest(c) {
		return false
	}
	log.Printf("[Quest] 激活任务: %s", c.ID)
	e.renderQuests()
	e.Notify(e.strings.Format(StrQuestStarted, displayName(c.Name, c.ID)), 0)
	e.scenes.RefreshHotspots()
	return true
}

// ActivateQuestByID 按目录中的定义激活任务
func (e *Engine) ActivateQuestByID(id string) bool {
	q, ok := e.questCatalog[id]
	if !ok {
		log.Printf("[Quest] Warning: 目录中没有任务: %s", id)
		return false
	}
	return e.ActivateQuest(q)
}

// UpdateQuestProgress 为任务追加进度步骤（幂等）
func (e *Engine) UpdateQuestProgress(id, step string) bool {
	if !e.state.UpdateQuestProgress(id, step) {
		return false
	}
	e.renderQuests()
	e.scenes.RefreshHotspots()
	return true
}

// CompleteQuest 完成任务
// 只有进行中的任务会被完成；完成回调恰好执行一次
func (e *Engine) CompleteQuest(id string) bool {
	q := e.state.CompleteQuest(id)
	if q == nil {
		return false
	}
	log.Printf("[Quest] 完成任务: %s", id)
	if q.OnComplete != nil {
		utils.SafeCall("Quest", "completion of "+id, func() { q.OnComplete(e) })
	}
	e.renderQuests()
	e.Notify(e.strings.Format(StrQuestCompleted, displayName(q.Name, q.ID)), 0)
	e.scenes.RefreshHotspots()
	return true
}

// --- 通知与角色 ---

// Notify 显示通知，d<=0 时使用默认时长
func (e *Engine) Notify(message string, d time.Duration) string {
	return e.notifier.Show(message, d)
}

// Think 角色内心独白，没有角色协作者时退化为通知
func (e *Engine) Think(text string) {
	if e.mover == nil {
		e.Notify(text, 0)
		return
	}
	if !utils.SafeCall("Engine", "Movement.Think", func() { e.mover.Think(text) }) {
		e.Notify(text, 0)
	}
}

// AdvanceClock 推进游戏内时钟
func (e *Engine) AdvanceClock(minutes int) {
	e.state.Clock.Advance(minutes)
}

// --- 对话与谜题（模式互斥） ---

// StartDialogue 开始对话
//
// 谜题打开时对话排队，谜题关闭后开始；
// 已在对话中时直接替换当前队列。
func (e *Engine) StartDialogue(lines []dialogue.Line) bool {
	if len(lines) == 0 {
		return false
	}
	if e.puzzles.Active() {
		log.Printf("[Engine] 谜题进行中，对话排队")
		e.pending = append(e.pending, pendingRequest{lines: append([]dialogue.Line(nil), lines...)})
		return true
	}
	return e.dialogue.Start(lines)
}

// StartPuzzle 打开谜题
//
// 对话进行中时谜题排队，对话结束后打开；
// 未知类型立即返回错误，不会排队。
func (e *Engine) StartPuzzle(cfg *puzzle.Config) error {
	if e.dialogue.Active() {
		if err := cfg.Validate(); err != nil {
			return err
		}
		if !e.puzzles.Registered(cfg.Type) {
			log.Printf("[Puzzle] %v: %s", ErrUnknownPuzzleType, cfg.Type)
			return fmt.Errorf("%w: %s", ErrUnknownPuzzleType, cfg.Type)
		}
		log.Printf("[Engine] 对话进行中，谜题 %s 排队", cfg.ID)
		e.pending = append(e.pending, pendingRequest{puzzle: cfg})
		return nil
	}
	return e.puzzles.Start(cfg)
}

// PendingRequests 排队中的对话/谜题数量
func (e *Engine) PendingRequests() int {
	return len(e.pending)
}

// onModeEnded 对话结束或谜题关闭后：刷新热点，依次打开排队的请求
func (e *Engine) onModeEnded() {
	e.scenes.RefreshHotspots()
	for len(e.pending) > 0 && e.Mode() == ModeExploration {
		req := e.pending[0]
		e.pending = e.pending[1:]
		if req.puzzle != nil {
			if err := e.puzzles.Start(req.puzzle); err != nil {
				log.Printf("[Engine] 排队的谜题无法打开: %v", err)
			}
			continue
		}
		e.dialogue.Start(req.lines)
	}
}

// resetModes 结束对话、关闭谜题并清空排队（读档和新游戏使用）
func (e *Engine) resetModes() {
	e.pending = nil
	e.hotspots.CancelNavigation()
	e.dialogue.End()
	e.puzzles.Cancel()
}

// --- 功能模块 ---

// RegisterFeature 注册可选功能模块
func (e *Engine) RegisterFeature(f Feature) {
	if f == nil {
		return
	}
	e.features[f.Name()] = f
	log.Printf("[Engine] 检测到功能模块: %s", f.Name())
}

// HasFeature 功能模块是否已注册
func (e *Engine) HasFeature(name string) bool {
	_, ok := e.features[name]
	return ok
}

// ShowFeature 打开功能模块
// 模块不存在时记录日志并通知"<name> unavailable"
func (e *Engine) ShowFeature(name string, cfg map[string]string) error {
	f, ok := e.features[name]
	if !ok {
		log.Printf("[Engine] Warning: %v: feature %s", ErrMissingCollaborator, name)
		e.Notify(e.strings.Format(StrFeatureUnavailable, name), 0)
		return fmt.Errorf("%w: %s", ErrMissingCollaborator, name)
	}
	var err error
	if !utils.SafeCall("Engine", "feature "+name, func() { err = f.Show(cfg) }) {
		err = fmt.Errorf("feature %s failed", name)
	}
	if err != nil {
		log.Printf("[Engine] Warning: %s: %v", name, err)
		e.Notify(e.strings.Format(StrFeatureFailed, name), 0)
		return err
	}
	return nil
}

// --- 存档 ---

// Save 保存到存档槽位
func (e *Engine) Save() error {
	return e.saves.Save()
}

// Load 从存档槽位读取
func (e *Engine) Load() error {
	return e.saves.Load()
}

// HasSave 槽位中是否有存档
func (e *Engine) HasSave() bool {
	return e.saves.HasSave()
}

// NewGame 重置为初始状态并进入起始场景
func (e *Engine) NewGame(startScene string) error {
	e.resetModes()
	e.notifier.Clear()
	*e.state = *NewGameState()
	e.RefreshUI()
	if startScene == "" {
		return nil
	}
	return e.LoadScene(startScene, TransitionFade)
}

// --- 界面刷新 ---

// RefreshUI 刷新物品栏、任务面板和热点层
func (e *Engine) RefreshUI() {
	e.renderInventory()
	e.renderQuests()
	e.scenes.RefreshHotspots()
}

func (e *Engine) renderInventory() {
	items := make([]ItemView, 0, len(e.state.Inventory))
	for _, it := range e.state.Inventory {
		items = append(items, ItemView{ID: it.ID, Name: it.Name, Description: it.Description, Icon: it.Icon})
	}
	e.renderer.RenderInventory(items)
}

func (e *Engine) renderQuests() {
	entries := make([]QuestEntry, 0, len(e.state.ActiveQuests)+len(e.state.QuestsCompleted))
	for _, q := range e.state.ActiveQuests {
		entries = append(entries, QuestEntry{
			ID:          q.ID,
			Name:        q.Name,
			Description: q.Description,
			Progress:    append([]string(nil), q.Progress...),
		})
	}
	for _, id := range e.state.QuestsCompleted {
		entry := QuestEntry{ID: id, Name: id, Completed: true}
		if cat, ok := e.questCatalog[id]; ok {
			entry.Name = cat.Name
			entry.Description = cat.Description
		}
		entries = append(entries, entry)
	}
	e.renderer.RenderQuests(entries)
}

func displayName(name, id string) string {
	if name != "" {
		return name
	}
	return id
}
