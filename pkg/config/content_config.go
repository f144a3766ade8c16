package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/decker502/casefile/pkg/embedded"
	"github.com/decker502/casefile/pkg/game"
	"github.com/decker502/casefile/pkg/modules"
	"github.com/decker502/casefile/pkg/puzzle"
)

// Content 一个内容文件（或多个文件合并后）的数据
//
// 文件格式：
//
//	startScene: office
//	items:
//	  - {id: badge, name: Police badge}
//	quests:
//	  - {id: missing_cat, name: The missing cat}
//	puzzles:
//	  - {id: safe, type: password, answers: ["1947"]}
//	evidence:
//	  - {id: letter, title: Anonymous letter, body: "..."}
//	chats:
//	  informant:
//	    - {from: Rosa, text: "Pier 9. Midnight.", at: "23:10"}
//	scenes:
//	  office:
//	    name: Detective's office
//	    background: bg/office.png
//	    hotspots:
//	      - id: door
//	        rect: {x: 80, y: 20, w: 15, h: 60}
//	        target: street
type Content struct {
	StartScene string                    `yaml:"startScene,omitempty"`
	Items      []game.InventoryItem      `yaml:"items,omitempty"`
	Quests     []game.Quest              `yaml:"quests,omitempty"`
	Puzzles    []puzzle.Config           `yaml:"puzzles,omitempty"`
	Scenes     map[string]game.SceneData `yaml:"scenes"`

	// 功能模块内容
	Evidence []modules.Document               `yaml:"evidence,omitempty"`
	Chats    map[string][]modules.ChatMessage `yaml:"chats,omitempty"`
}

// LoadContent 加载单个内容文件
//
// 参数：
//   - path: 以 "data/" 开头时从嵌入资源（及其覆盖目录）读取，否则从磁盘读取
//
// 加载流程：严格解析（拒绝未知字段）→ 应用默认值 → 验证
func LoadContent(path string) (*Content, error) {
	data, err := readContentFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content file %s: %w", path, err)
	}

	content, err := ParseContent(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse content YAML from %s: %w", path, err)
	}

	applyDefaults(content)

	if err := validateContent(content, false); err != nil {
		return nil, fmt.Errorf("invalid content in %s: %w", path, err)
	}
	return content, nil
}

// LoadContentDir 加载目录下所有 *.yaml 内容文件并合并
// 文件按名称排序加载；场景、物品、任务、谜题 ID 在文件之间不能重复
func LoadContentDir(dir string) (*Content, error) {
	paths, err := globContent(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list content dir %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no content files found in %s", dir)
	}

	merged := &Content{Scenes: make(map[string]game.SceneData)}
	for _, p := range paths {
		c, err := LoadContent(p)
		if err != nil {
			return nil, err
		}
		if err := merged.Merge(c); err != nil {
			return nil, fmt.Errorf("merge %s: %w", p, err)
		}
		log.Printf("[Config] 加载内容文件 %s (%d 个场景)", p, len(c.Scenes))
	}

	if err := validateContent(merged, true); err != nil {
		return nil, fmt.Errorf("invalid content in %s: %w", dir, err)
	}
	return merged, nil
}

// ParseContent 严格解析内容 YAML（未知字段报错）
func ParseContent(r io.Reader) (*Content, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var content Content
	if err := dec.Decode(&content); err != nil {
		if errors.Is(err, io.EOF) {
			return &Content{Scenes: make(map[string]game.SceneData)}, nil
		}
		return nil, err
	}
	if content.Scenes == nil {
		content.Scenes = make(map[string]game.SceneData)
	}
	return &content, nil
}

// Merge 把另一份内容并入
func (c *Content) Merge(other *Content) error {
	if other.StartScene != "" {
		if c.StartScene != "" && c.StartScene != other.StartScene {
			return fmt.Errorf("conflicting startScene %q and %q", c.StartScene, other.StartScene)
		}
		c.StartScene = other.StartScene
	}
	for id, s := range other.Scenes {
		if _, dup := c.Scenes[id]; dup {
			return fmt.Errorf("duplicate scene %q", id)
		}
		c.Scenes[id] = s
	}
	for _, it := range other.Items {
		if c.Item(it.ID) != nil {
			return fmt.Errorf("duplicate item %q", it.ID)
		}
		c.Items = append(c.Items, it)
	}
	for _, q := range other.Quests {
		if c.Quest(q.ID) != nil {
			return fmt.Errorf("duplicate quest %q", q.ID)
		}
		c.Quests = append(c.Quests, q)
	}
	for _, p := range other.Puzzles {
		if c.Puzzle(p.ID) != nil {
			return fmt.Errorf("duplicate puzzle %q", p.ID)
		}
		c.Puzzles = append(c.Puzzles, p)
	}
	c.Evidence = append(c.Evidence, other.Evidence...)
	for thread, msgs := range other.Chats {
		if _, dup := c.Chats[thread]; dup {
			return fmt.Errorf("duplicate chat thread %q", thread)
		}
		if c.Chats == nil {
			c.Chats = make(map[string][]modules.ChatMessage)
		}
		c.Chats[thread] = msgs
	}
	return nil
}

// Item 按 ID 查找物品定义
func (c *Content) Item(id string) *game.InventoryItem {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return &c.Items[i]
		}
	}
	return nil
}

// Quest 按 ID 查找任务定义
func (c *Content) Quest(id string) *game.Quest {
	for i := range c.Quests {
		if c.Quests[i].ID == id {
			return &c.Quests[i]
		}
	}
	return nil
}

// Puzzle 按 ID 查找谜题定义（返回副本）
func (c *Content) Puzzle(id string) *puzzle.Config {
	for i := range c.Puzzles {
		if c.Puzzles[i].ID == id {
			cfg := c.Puzzles[i]
			return &cfg
		}
	}
	return nil
}

// SceneIDs 返回排序后的场景 ID
func (c *Content) SceneIDs() []string {
	ids := make([]string, 0, len(c.Scenes))
	for id := range c.Scenes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Unreachable 返回从起始场景出发无法通过热点跳转到达的场景（排序）
// 没有起始场景时返回 nil
func (c *Content) Unreachable() []string {
	if _, ok := c.Scenes[c.StartScene]; !ok {
		return nil
	}
	seen := map[string]bool{c.StartScene: true}
	queue := []string{c.StartScene}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, h := range c.Scenes[id].Hotspots {
			if h.Target == "" || seen[h.Target] {
				continue
			}
			if _, ok := c.Scenes[h.Target]; ok {
				seen[h.Target] = true
				queue = append(queue, h.Target)
			}
		}
	}

	var out []string
	for _, id := range c.SceneIDs() {
		if !seen[id] {
			out = append(out, id)
		}
	}
	return out
}

// Apply 把内容注册到引擎：物品目录、任务目录、场景
func (c *Content) Apply(e *game.Engine) error {
	for _, it := range c.Items {
		e.RegisterItem(it)
	}
	for i := range c.Quests {
		q := c.Quests[i]
		e.RegisterQuest(&q)
	}
	for _, id := range c.SceneIDs() {
		if err := e.RegisterSceneData(id, c.Scenes[id]); err != nil {
			return err
		}
	}
	log.Printf("[Config] 已注册 %d 个场景, %d 个物品, %d 个任务", len(c.Scenes), len(c.Items), len(c.Quests))
	return nil
}

// ApplyModules 把证物、聊天记录和密码谜题填入功能模块
func (c *Content) ApplyModules(set *modules.Set) {
	if set == nil {
		return
	}
	set.Evidence.Register(c.Evidence...)
	threads := make([]string, 0, len(c.Chats))
	for thread := range c.Chats {
		threads = append(threads, thread)
	}
	sort.Strings(threads)
	for _, thread := range threads {
		for _, m := range c.Chats[thread] {
			set.Chat.AddMessage(thread, m)
		}
	}
	set.Password.Register(c.Puzzles...)
}

// applyDefaults 为缺失的可选字段设置默认值
func applyDefaults(c *Content) {
	for id, s := range c.Scenes {
		// 场景名默认为场景 ID
		if s.Name == "" {
			s.Name = id
		}
		for i := range s.Hotspots {
			h := &s.Hotspots[i]
			if h.Name == "" {
				h.Name = h.ID
			}
			// 热点内联谜题的 ID 默认为 <场景>_<热点>
			if h.Puzzle != nil && h.Puzzle.ID == "" {
				h.Puzzle.ID = id + "_" + h.ID
			}
			if h.Item != nil && h.Item.Name == "" {
				if def := c.Item(h.Item.ID); def != nil {
					*h.Item = *def
				}
			}
		}
		c.Scenes[id] = s
	}
	for i := range c.Quests {
		if c.Quests[i].Name == "" {
			c.Quests[i].Name = c.Quests[i].ID
		}
	}
}

// validateContent 验证内容的完整性
// complete 为 true 时还检查跨文件引用（跳转目标、起始场景）
func validateContent(c *Content, complete bool) error {
	seen := make(map[string]bool)
	for _, it := range c.Items {
		if it.ID == "" {
			return fmt.Errorf("item without id")
		}
		if seen["item:"+it.ID] {
			return fmt.Errorf("duplicate item %q", it.ID)
		}
		seen["item:"+it.ID] = true
	}
	for _, q := range c.Quests {
		if q.ID == "" {
			return fmt.Errorf("quest without id")
		}
		if seen["quest:"+q.ID] {
			return fmt.Errorf("duplicate quest %q", q.ID)
		}
		seen["quest:"+q.ID] = true
	}
	for i := range c.Puzzles {
		if err := validatePuzzle(&c.Puzzles[i]); err != nil {
			return err
		}
	}
	for _, d := range c.Evidence {
		if d.ID == "" {
			return fmt.Errorf("evidence document without id")
		}
		if seen["evidence:"+d.ID] {
			return fmt.Errorf("duplicate evidence %q", d.ID)
		}
		seen["evidence:"+d.ID] = true
	}

	for _, id := range c.SceneIDs() {
		s := c.Scenes[id]
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("scene without id")
		}
		// 结构检查（热点 ID、矩形、条件语法）复用场景自身的校验
		scene, err := s.ToScene(id)
		if err != nil {
			return err
		}
		if err := scene.Validate(); err != nil {
			return err
		}
		for _, h := range s.Hotspots {
			if h.Puzzle != nil {
				if err := validatePuzzle(h.Puzzle); err != nil {
					return fmt.Errorf("scene %s: hotspot %s: %w", id, h.ID, err)
				}
			}
			if h.Feature != nil && h.Feature.Module == "" {
				return fmt.Errorf("scene %s: hotspot %s: feature without module", id, h.ID)
			}
			if complete && h.Target != "" {
				if _, ok := c.Scenes[h.Target]; !ok {
					return fmt.Errorf("scene %s: hotspot %s: unknown target scene %q", id, h.ID, h.Target)
				}
			}
		}
	}

	if complete && c.StartScene != "" {
		if _, ok := c.Scenes[c.StartScene]; !ok {
			return fmt.Errorf("unknown startScene %q", c.StartScene)
		}
	}
	return nil
}

// validatePuzzle 谜题配置必须能被内置类型打开
func validatePuzzle(cfg *puzzle.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	switch cfg.Type {
	case puzzle.TypeCipher, puzzle.TypePassword:
		if len(cfg.Answers) == 0 {
			return fmt.Errorf("%w: puzzle %s has no answers", puzzle.ErrInvalidConfig, cfg.ID)
		}
	case puzzle.TypeFrequency:
	default:
		return fmt.Errorf("%w: %q (puzzle %s)", puzzle.ErrUnknownPuzzleType, cfg.Type, cfg.ID)
	}
	return nil
}

// readContentFile data/ 开头的路径走嵌入资源，其余走磁盘
func readContentFile(path string) ([]byte, error) {
	if isEmbeddedPath(path) {
		return embedded.ReadFile(path)
	}
	return os.ReadFile(path)
}

func globContent(dir string) ([]string, error) {
	pattern := strings.TrimSuffix(filepath.ToSlash(dir), "/") + "/*.yaml"
	var (
		paths []string
		err   error
	)
	if isEmbeddedPath(dir) {
		paths, err = embedded.Glob(pattern)
	} else {
		paths, err = filepath.Glob(filepath.FromSlash(pattern))
	}
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

func isEmbeddedPath(path string) bool {
	p := strings.TrimPrefix(filepath.ToSlash(path), "./")
	return p == "data" || strings.HasPrefix(p, "data/")
}
