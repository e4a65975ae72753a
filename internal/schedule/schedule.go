// Package schedule provides cancellable delayed tasks.
package schedule

import (
	"sort"
	"sync"
	"time"
)

// Handle refers to a scheduled task
type Handle interface {
	// Cancel stops the task if it has not run yet and reports whether it did
	Cancel() bool
}

// Scheduler runs task once after delay
type Scheduler interface {
	Schedule(delay time.Duration, task func()) Handle
}

// Reschedule cancels h (if any) and schedules task anew
func Reschedule(s Scheduler, h Handle, delay time.Duration, task func()) Handle {
	if h != nil {
		h.Cancel()
	}
	return s.Schedule(delay, task)
}

// Timer is the real-time Scheduler. Tasks run on their own goroutine.
type Timer struct{}

// Schedule implements Scheduler with time.AfterFunc
func (Timer) Schedule(delay time.Duration, task func()) Handle {
	return timerHandle{time.AfterFunc(delay, task)}
}

type timerHandle struct {
	t *time.Timer
}

func (h timerHandle) Cancel() bool {
	return h.t.Stop()
}

// Manual is a Scheduler driven by Advance, for tests.
// Tasks run synchronously inside Advance, in due-time order.
type Manual struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	m         *Manual
	due       time.Duration
	seq       int
	task      func()
	cancelled bool
	done      bool
}

// NewManual creates a manual clock at time zero
func NewManual() *Manual {
	return &Manual{}
}

// Schedule implements Scheduler
func (m *Manual) Schedule(delay time.Duration, task func()) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTask{m: m, due: m.now + delay, seq: m.seq, task: task}
	m.tasks = append(m.tasks, t)
	return t
}

// Advance moves the clock forward by d and runs every task that became due
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.nextDue(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = next.due
		next.done = true
		m.mu.Unlock()

		next.task()
	}
}

// Pending returns the number of tasks that have neither run nor been cancelled
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.done && !t.cancelled {
			n++
		}
	}
	return n
}

// Now returns the elapsed manual time
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) nextDue(target time.Duration) *manualTask {
	live := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.done && !t.cancelled {
			live = append(live, t)
		}
	}
	m.tasks = live
	sort.SliceStable(m.tasks, func(i, j int) bool {
		if m.tasks[i].due == m.tasks[j].due {
			return m.tasks[i].seq < m.tasks[j].seq
		}
		return m.tasks[i].due < m.tasks[j].due
	})
	if len(m.tasks) == 0 || m.tasks[0].due > target {
		return nil
	}
	return m.tasks[0]
}

func (t *manualTask) Cancel() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.done || t.cancelled {
		return false
	}
	t.cancelled = true
	return true
}
