// Package modules 可选功能模块（证物查看器、聊天记录、密码输入）
//
// 每个模块实现 game.Feature，由热点的 feature 字段或场景脚本通过
// Engine.ShowFeature 打开。模块状态（已查看、已解开）记录在游戏标记中，
// 随存档一起保存。
package modules

import (
	"github.com/decker502/casefile/pkg/utils"
)

// 模块名（game.Feature.Name）
const (
	EvidenceModule = "evidence"
	ChatModule     = "chat"
	PasswordModule = "password"
)

// Panel 功能模块面板的显示数据
type Panel struct {
	Module string   `json:"module"`
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Body   string   `json:"body,omitempty"`
	Image  string   `json:"image,omitempty"`
	Lines  []string `json:"lines,omitempty"`
}

// Display 功能模块的表现层（由宿主或桥接实现）
type Display interface {
	ShowPanel(p Panel)
	HidePanel(module string)
}

// showPanel 调用表现层，display 为 nil 或发生 panic 时返回 false
func showPanel(d Display, p Panel) bool {
	if d == nil {
		return false
	}
	return utils.SafeCall("Modules", "ShowPanel", func() { d.ShowPanel(p) })
}

func hidePanel(d Display, module string) {
	if d == nil {
		return
	}
	utils.SafeCall("Modules", "HidePanel", func() { d.HidePanel(module) })
}
