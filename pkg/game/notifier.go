package game

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/decker502/casefile/pkg/scheduler"
)

// DefaultNotificationDuration 通知默认显示时长
const DefaultNotificationDuration = 3 * time.Second

// Notification 一条正在显示的通知
type Notification struct {
	ID      string
	Message string
	handle  scheduler.Handle
}

// Notifier 通知调度器
//
// 通知可以同时显示多条（堆叠，不是严格的 FIFO），
// 每条在各自的时长到期后由调度器自动移除。
type Notifier struct {
	sched           *scheduler.Scheduler
	renderer        Renderer
	active          []*Notification
	defaultDuration time.Duration
}

// NewNotifier 创建通知调度器
func NewNotifier(sched *scheduler.Scheduler, renderer Renderer) *Notifier {
	return &Notifier{
		sched:           sched,
		renderer:        renderer,
		defaultDuration: DefaultNotificationDuration,
	}
}

// SetDefaultDuration 设置默认时长（<=0 时恢复为 DefaultNotificationDuration）
func (n *Notifier) SetDefaultDuration(d time.Duration) {
	if d <= 0 {
		d = DefaultNotificationDuration
	}
	n.defaultDuration = d
}

// Show 显示通知
//
// 参数：
//   - message: 通知文本
//   - d: 显示时长，<=0 时使用默认时长
//
// 返回：
//   - string: 通知 ID，可用于提前 Dismiss
func (n *Notifier) Show(message string, d time.Duration) string {
	if d <= 0 {
		d = n.defaultDuration
	}
	note := &Notification{ID: uuid.NewString(), Message: message}
	n.active = append(n.active, note)
	n.renderer.ShowNotification(NotificationView{ID: note.ID, Message: message})
	log.Printf("[Notifier] %s", message)

	id := note.ID
	note.handle = n.sched.After(d, func() { n.Dismiss(id) })
	return id
}

// Dismiss 移除通知，返回是否存在
func (n *Notifier) Dismiss(id string) bool {
	for i, note := range n.active {
		if note.ID != id {
			continue
		}
		n.sched.Cancel(note.handle)
		n.active = append(n.active[:i], n.active[i+1:]...)
		n.renderer.DismissNotification(id)
		return true
	}
	return false
}

// Active 返回当前显示中的通知（按显示顺序）
func (n *Notifier) Active() []Notification {
	out := make([]Notification, 0, len(n.active))
	for _, note := range n.active {
		out = append(out, Notification{ID: note.ID, Message: note.Message})
	}
	return out
}

// Clear 移除所有通知
func (n *Notifier) Clear() {
	for len(n.active) > 0 {
		n.Dismiss(n.active[0].ID)
	}
}
