package game

import (
	"sync"
	"time"
)

// manualScheduler holds callbacks until the test fires them.
type manualScheduler struct {
	mu      sync.Mutex
	pending []*manualTask
	stopped int
}

type manualTask struct {
	s       *manualScheduler
	f       func()
	stopped bool
	fired   bool
}

func (m *manualScheduler) AfterFunc(_ time.Duration, f func()) Canceler {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTask{s: m, f: f}
	m.pending = append(m.pending, t)
	return t
}

func (t *manualTask) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	t.s.stopped++
	return true
}

// fire runs every live callback scheduled so far. It reports how many ran.
func (m *manualScheduler) fire() int {
	m.mu.Lock()
	tasks := m.pending
	m.pending = nil
	var live []*manualTask
	for _, t := range tasks {
		if !t.stopped && !t.fired {
			t.fired = true
			live = append(live, t)
		}
	}
	m.mu.Unlock()

	for _, t := range live {
		t.f()
	}
	return len(live)
}

// fireStale runs a callback even if it was stopped, the way a timer that
// already started can still run after Stop.
func (m *manualScheduler) fireStale(t *manualTask) {
	t.f()
}

func (m *manualScheduler) last() *manualTask {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pending) == 0 {
		return nil
	}
	return m.pending[len(m.pending)-1]
}

func (m *manualScheduler) live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.pending {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}
