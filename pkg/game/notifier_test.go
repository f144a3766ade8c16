package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/decker502/casefile/pkg/scheduler"
)

func TestNotificationsStackAndExpireIndependently(t *testing.T) {
	sched := scheduler.New()
	r := &recordingRenderer{}
	n := NewNotifier(sched, r)

	first := n.Show("first", time.Second)
	second := n.Show("second", 0)
	assert.NotEqual(t, first, second)
	assert.Len(t, n.Active(), 2)

	sched.Advance(time.Second)
	assert.Equal(t, []string{first}, r.dismissed)
	if assert.Len(t, n.Active(), 1) {
		assert.Equal(t, "second", n.Active()[0].Message)
	}

	sched.Advance(DefaultNotificationDuration)
	assert.Empty(t, n.Active())
	assert.Equal(t, []string{first, second}, r.dismissed)
}

func TestNotificationDismissEarly(t *testing.T) {
	sched := scheduler.New()
	r := &recordingRenderer{}
	n := NewNotifier(sched, r)
	n.SetDefaultDuration(500 * time.Millisecond)

	id := n.Show("hello", 0)
	assert.True(t, n.Dismiss(id))
	assert.False(t, n.Dismiss(id))
	assert.Equal(t, 0, sched.Pending())

	sched.Advance(time.Second)
	assert.Equal(t, []string{id}, r.dismissed, "cancelled timer must not dismiss again")
}

func TestNotificationClear(t *testing.T) {
	sched := scheduler.New()
	r := &recordingRenderer{}
	n := NewNotifier(sched, r)
	n.Show("a", 0)
	n.Show("b", 0)
	n.Clear()
	assert.Empty(t, n.Active())
	assert.Len(t, r.dismissed, 2)
}

func TestNotificationDefaultDurationFromSettings(t *testing.T) {
	sched := scheduler.New()
	r := &recordingRenderer{}
	settings := DefaultSettings()
	settings.NotificationMs = 1000
	e := NewEngine(Options{Renderer: r, Scheduler: sched, Settings: settings})

	e.Notify("short", 0)
	sched.Advance(999 * time.Millisecond)
	assert.Len(t, e.Notifier().Active(), 1)
	sched.Advance(time.Millisecond)
	assert.Empty(t, e.Notifier().Active())
}

func TestMissingNotificationMountIsTolerated(t *testing.T) {
	te := newTestEngine()
	te.renderer.missing = map[Mount]bool{MountNotifications: true}
	assert.NotPanics(t, func() { te.Notify("quiet", 0) })
	assert.Empty(t, te.renderer.notifications)
	assert.Len(t, te.Notifier().Active(), 1)
}
