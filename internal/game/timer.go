package game

import (
	"fmt"
	"strings"
	"time"

	"quizboard-service/internal/domain"
)

// TimerPolicy maps a question to its countdown length in seconds.
type TimerPolicy interface {
	Duration(q domain.Question) int
}

// ExactPolicy matches the five canonical point values and gives every other
// value 30 seconds.
type ExactPolicy struct{}

func (ExactPolicy) Duration(q domain.Question) int {
	if q.TimerDuration > 0 {
		return q.TimerDuration
	}
	points, _ := q.Points.Number()
	switch points {
	case 200:
		return 45
	case 300:
		return 50
	case 400:
		return 55
	case 500:
		return 60
	default:
		return 30
	}
}

// ThresholdPolicy buckets numeric points by upper bound. Text labels fall into
// the top bucket.
type ThresholdPolicy struct{}

func (ThresholdPolicy) Duration(q domain.Question) int {
	if q.TimerDuration > 0 {
		return q.TimerDuration
	}
	points, ok := q.Points.Number()
	switch {
	case !ok:
		return 60
	case points < 200:
		return 30
	case points < 300:
		return 45
	case points < 400:
		return 50
	case points < 500:
		return 55
	default:
		return 60
	}
}

// PolicyByName resolves a configured policy. An empty name selects "exact".
func PolicyByName(name string) (TimerPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "exact":
		return ExactPolicy{}, nil
	case "threshold":
		return ThresholdPolicy{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTimerPolicy, name)
	}
}

// Timer is the countdown of one opened question. A new Timer is made for
// every opening; it never resumes once expired or revealed.
type Timer struct {
	duration  int
	remaining int
	state     domain.TimerState
}

func NewTimer(seconds int) *Timer {
	t := &Timer{duration: seconds, remaining: seconds, state: domain.TimerRunning}
	if seconds <= 0 {
		t.remaining = 0
		t.state = domain.TimerExpired
	}
	return t
}

// Tick counts down one second. It reports whether the timer changed.
func (t *Timer) Tick() bool {
	if t.state != domain.TimerRunning {
		return false
	}
	t.remaining--
	if t.remaining <= 0 {
		t.remaining = 0
		t.state = domain.TimerExpired
	}
	return true
}

// Reveal freezes the timer for good.
func (t *Timer) Reveal() {
	t.state = domain.TimerRevealed
}

func (t *Timer) State() domain.TimerState { return t.state }
func (t *Timer) Remaining() int           { return t.remaining }
func (t *Timer) Duration() int            { return t.duration }
func (t *Timer) Revealed() bool           { return t.state == domain.TimerRevealed }

// Canceler stops a scheduled callback.
type Canceler interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Canceler
}

// WallClock schedules on real time.
type WallClock struct{}

func (WallClock) AfterFunc(d time.Duration, f func()) Canceler {
	return time.AfterFunc(d, f)
}
