// Package scheduler 提供单线程协作式延迟任务调度
//
// 引擎的所有"挂起"（场景淡入淡出、逐字显示、谜题反馈轮询、延迟导航）
// 都通过 Scheduler 表达：任务注册后由宿主循环调用 Advance 推进时间，
// 到期任务在调用者所在的线程上按 (到期时间, 注册顺序) 依次执行。
//
// Scheduler 不是并发安全的，也不需要是：引擎只在一个逻辑线程上运行。
package scheduler

import (
	"log"
	"time"
)

// Handle 延迟任务句柄，0 表示无效句柄
type Handle uint64

// task 单个延迟任务
type task struct {
	handle Handle
	due    time.Duration // 到期的调度器时间
	seq    uint64        // 注册顺序，同一时刻到期时先注册先执行
	fn     func()
}

// Scheduler 延迟任务调度器
type Scheduler struct {
	now   time.Duration
	next  Handle
	seq   uint64
	tasks map[Handle]*task
}

// New 创建调度器，时间从 0 开始
func New() *Scheduler {
	return &Scheduler{
		tasks: make(map[Handle]*task),
	}
}

// Now 返回调度器当前时间（自创建以来推进的总时长）
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// After 在 d 之后执行 fn
//
// d <= 0 的任务会在下一次 Advance（包括当前正在进行的 Advance）中执行。
func (s *Scheduler) After(d time.Duration, fn func()) Handle {
	if d < 0 {
		d = 0
	}
	s.next++
	s.seq++
	t := &task{
		handle: s.next,
		due:    s.now + d,
		seq:    s.seq,
		fn:     fn,
	}
	s.tasks[t.handle] = t
	return t.handle
}

// Cancel 取消尚未执行的任务
// 返回 true 表示任务被取消；任务已执行或句柄无效时返回 false
func (s *Scheduler) Cancel(h Handle) bool {
	if h == 0 {
		return false
	}
	if _, ok := s.tasks[h]; !ok {
		return false
	}
	delete(s.tasks, h)
	return true
}

// Scheduled 检查任务是否仍在等待执行
func (s *Scheduler) Scheduled(h Handle) bool {
	_, ok := s.tasks[h]
	return ok
}

// Pending 返回等待执行的任务数量
func (s *Scheduler) Pending() int {
	return len(s.tasks)
}

// Advance 推进调度器时间 d，并执行期间到期的全部任务
//
// 任务执行时 Now() 返回该任务的到期时间，因此任务内部再注册的延迟任务
// 以任务自身的到期时间为基准；若新任务也在本次推进范围内，会在本次 Advance 中执行。
func (s *Scheduler) Advance(d time.Duration) {
	if d < 0 {
		d = 0
	}
	target := s.now + d
	for {
		t := s.popDue(target)
		if t == nil {
			break
		}
		if t.due > s.now {
			s.now = t.due
		}
		s.run(t)
	}
	s.now = target
}

// Flush 立即执行所有已到期（due <= Now）的任务，不推进时间
func (s *Scheduler) Flush() {
	s.Advance(0)
}

// Clear 丢弃所有等待中的任务
func (s *Scheduler) Clear() {
	s.tasks = make(map[Handle]*task)
}

// popDue 取出最早到期且不晚于 target 的任务
func (s *Scheduler) popDue(target time.Duration) *task {
	var best *task
	for _, t := range s.tasks {
		if t.due > target {
			continue
		}
		if best == nil || t.due < best.due || (t.due == best.due && t.seq < best.seq) {
			best = t
		}
	}
	if best != nil {
		delete(s.tasks, best.handle)
	}
	return best
}

// run 执行任务，任务内的 panic 被记录后吞掉，调度器保持可用
func (s *Scheduler) run(t *task) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Scheduler] Warning: 任务 %d 发生 panic: %v", t.handle, r)
		}
	}()
	if t.fn != nil {
		t.fn()
	}
}
