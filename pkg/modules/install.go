package modules

import (
	"github.com/decker502/casefile/pkg/game"
)

// Set 内置功能模块集合
type Set struct {
	Evidence *EvidenceViewer
	Chat     *ChatTranscript
	Password *Password
}

// Install 创建内置模块并注册到引擎
// display 为 nil 时证物和聊天模块打开会失败（引擎会通知玩家），密码模块不受影响
func Install(e *game.Engine, d Display) *Set {
	s := &Set{
		Evidence: NewEvidenceViewer(e, d),
		Chat:     NewChatTranscript(e, d),
		Password: NewPassword(e),
	}
	e.RegisterFeature(s.Evidence)
	e.RegisterFeature(s.Chat)
	e.RegisterFeature(s.Password)
	return s
}
