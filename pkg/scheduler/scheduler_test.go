package scheduler

import (
	"testing"
	"time"
)

func TestSchedulerRunsTasksInDueOrder(t *testing.T) {
	s := New()
	var order []string

	s.After(30*time.Millisecond, func() { order = append(order, "c") })
	s.After(10*time.Millisecond, func() { order = append(order, "a") })
	s.After(10*time.Millisecond, func() { order = append(order, "b") })

	s.Advance(5 * time.Millisecond)
	if len(order) != 0 {
		t.Fatalf("Expected no tasks after 5ms, got %v", order)
	}

	s.Advance(25 * time.Millisecond)
	want := []string{"a", "b", "c"}
	if len(order) != len(want) {
		t.Fatalf("Expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
	if s.Now() != 30*time.Millisecond {
		t.Errorf("Expected Now() = 30ms, got %v", s.Now())
	}
}

func TestSchedulerCancel(t *testing.T) {
	s := New()
	ran := false
	h := s.After(10*time.Millisecond, func() { ran = true })

	if !s.Scheduled(h) {
		t.Error("Expected task to be scheduled")
	}
	if !s.Cancel(h) {
		t.Error("Cancel should return true for a pending task")
	}
	if s.Cancel(h) {
		t.Error("Cancel should return false the second time")
	}
	s.Advance(time.Second)
	if ran {
		t.Error("Cancelled task must not run")
	}
	if s.Cancel(0) {
		t.Error("Cancel(0) should return false")
	}
}

func TestSchedulerNestedTasksRunWithinSameAdvance(t *testing.T) {
	s := New()
	var at []time.Duration

	s.After(10*time.Millisecond, func() {
		at = append(at, s.Now())
		s.After(10*time.Millisecond, func() {
			at = append(at, s.Now())
		})
	})

	s.Advance(25 * time.Millisecond)
	if len(at) != 2 {
		t.Fatalf("Expected 2 executions, got %d", len(at))
	}
	if at[0] != 10*time.Millisecond || at[1] != 20*time.Millisecond {
		t.Errorf("Unexpected execution times: %v", at)
	}
}

func TestSchedulerZeroDelayRunsOnFlush(t *testing.T) {
	s := New()
	ran := 0
	s.After(0, func() { ran++ })
	s.After(-time.Second, func() { ran++ })
	s.Flush()
	if ran != 2 {
		t.Errorf("Expected 2 runs, got %d", ran)
	}
	if s.Pending() != 0 {
		t.Errorf("Expected no pending tasks, got %d", s.Pending())
	}
}

func TestSchedulerSurvivesPanickingTask(t *testing.T) {
	s := New()
	after := false
	s.After(time.Millisecond, func() { panic("boom") })
	s.After(2*time.Millisecond, func() { after = true })

	s.Advance(5 * time.Millisecond)
	if !after {
		t.Error("Task after a panicking task should still run")
	}
}

func TestSchedulerClear(t *testing.T) {
	s := New()
	s.After(time.Millisecond, func() { t.Error("cleared task ran") })
	s.Clear()
	s.Advance(time.Second)
	if s.Pending() != 0 {
		t.Errorf("Expected 0 pending, got %d", s.Pending())
	}
}

func TestToken(t *testing.T) {
	var nilToken *Token
	if nilToken.Cancelled() {
		t.Error("nil token must never be cancelled")
	}
	nilToken.Cancel() // 不应 panic

	tok := NewToken()
	if tok.Cancelled() {
		t.Error("new token must not be cancelled")
	}
	tok.Cancel()
	tok.Cancel()
	if !tok.Cancelled() {
		t.Error("token should be cancelled")
	}
}
