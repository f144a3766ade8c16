package modules

import (
	"fmt"

	"github.com/decker502/casefile/pkg/game"
)

// ChatMessage 聊天记录中的一条消息
type ChatMessage struct {
	From string `yaml:"from"`
	Text string `yaml:"text"`
	At   string `yaml:"at,omitempty"` // 显示用时间，如 "21:40"
}

// ChatTranscript 聊天记录查看器
// Show 的 cfg：thread（必填）。打开过的会话记为标记 chat_<thread>_read。
type ChatTranscript struct {
	engine  *game.Engine
	display Display
	threads map[string][]ChatMessage
}

// NewChatTranscript 创建聊天记录查看器
func NewChatTranscript(e *game.Engine, d Display) *ChatTranscript {
	return &ChatTranscript{engine: e, display: d, threads: make(map[string][]ChatMessage)}
}

func (c *ChatTranscript) Name() string { return ChatModule }

// AddMessage 向会话追加消息
func (c *ChatTranscript) AddMessage(thread string, msg ChatMessage) {
	c.threads[thread] = append(c.threads[thread], msg)
}

// Messages 返回会话中的消息（副本）
func (c *ChatTranscript) Messages(thread string) []ChatMessage {
	return append([]ChatMessage(nil), c.threads[thread]...)
}

func (c *ChatTranscript) Show(cfg map[string]string) error {
	thread := cfg["thread"]
	msgs, ok := c.threads[thread]
	if !ok {
		return fmt.Errorf("chat: unknown thread %q", thread)
	}

	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		line := m.From + ": " + m.Text
		if m.At != "" {
			line = "[" + m.At + "] " + line
		}
		lines = append(lines, line)
	}
	title := cfg["title"]
	if title == "" {
		title = thread
	}
	if !showPanel(c.display, Panel{Module: ChatModule, ID: thread, Title: title, Lines: lines}) {
		return fmt.Errorf("chat: no display for %q", thread)
	}
	c.engine.SetFlag(readFlag(thread), true)
	return nil
}

// Hide 关闭聊天记录
func (c *ChatTranscript) Hide() {
	hidePanel(c.display, ChatModule)
}

// HasRead 会话是否打开过
func (c *ChatTranscript) HasRead(thread string) bool {
	return c.engine.FlagTrue(readFlag(thread))
}

func readFlag(thread string) string {
	return "chat_" + thread + "_read"
}
