package modules

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/decker502/casefile/pkg/game"
)

// Document 一份证物文档
type Document struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	Body  string `yaml:"body,omitempty"`
	Image string `yaml:"image,omitempty"`
}

// EvidenceViewer 证物查看器
//
// Show 的 cfg：
//   - id: 文档 ID（必填），先在目录中查找
//   - title/body/image: 目录中没有该文档时直接使用这些字段
//
// 已查看的文档记录为标记 evidence_<id>_viewed。
type EvidenceViewer struct {
	engine  *game.Engine
	display Display
	docs    map[string]Document
}

// NewEvidenceViewer 创建证物查看器
func NewEvidenceViewer(e *game.Engine, d Display) *EvidenceViewer {
	return &EvidenceViewer{engine: e, display: d, docs: make(map[string]Document)}
}

// Name 实现 game.Feature
func (v *EvidenceViewer) Name() string { return EvidenceModule }

// Register 把文档加入目录
func (v *EvidenceViewer) Register(docs ...Document) {
	for _, d := range docs {
		if d.ID == "" {
			continue
		}
		v.docs[d.ID] = d
	}
}

// Show 打开文档并记为已查看
func (v *EvidenceViewer) Show(cfg map[string]string) error {
	id := cfg["id"]
	if id == "" {
		return fmt.Errorf("evidence: missing document id")
	}
	doc, ok := v.docs[id]
	if !ok {
		if cfg["title"] == "" && cfg["body"] == "" {
			return fmt.Errorf("evidence: unknown document %q", id)
		}
		doc = Document{ID: id, Title: cfg["title"], Body: cfg["body"], Image: cfg["image"]}
	}

	if !showPanel(v.display, Panel{Module: EvidenceModule, ID: doc.ID, Title: doc.Title, Body: doc.Body, Image: doc.Image}) {
		return fmt.Errorf("evidence: no display for %q", id)
	}
	if !v.HasViewed(id) {
		log.Printf("[Evidence] 首次查看: %s", id)
		v.engine.SetFlag(viewedFlag(id), true)
	}
	return nil
}

// Hide 关闭查看器
func (v *EvidenceViewer) Hide() {
	hidePanel(v.display, EvidenceModule)
}

// HasViewed 文档是否已查看过
func (v *EvidenceViewer) HasViewed(id string) bool {
	return v.engine.FlagTrue(viewedFlag(id))
}

// Viewed 返回已查看文档的 ID（排序）
func (v *EvidenceViewer) Viewed() []string {
	var ids []string
	for _, name := range v.engine.State().FlagNames() {
		if !strings.HasPrefix(name, "evidence_") || !strings.HasSuffix(name, "_viewed") {
			continue
		}
		if !v.engine.FlagTrue(name) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(strings.TrimPrefix(name, "evidence_"), "_viewed"))
	}
	sort.Strings(ids)
	return ids
}

func viewedFlag(id string) string {
	return "evidence_" + id + "_viewed"
}
