// Package testutil contains helpers shared by package tests.
package testutil

import (
	"slices"
	"sync"
	"time"

	"github.com/ghettovoice/siptx/internal/timeutil"
)

// ManualScheduler is a [timeutil.Scheduler] driven by virtual time.
// Timers fire only when [ManualScheduler.Advance] moves the clock past their deadline.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []*ManualTimer
}

// NewManualScheduler creates a scheduler with the virtual clock set to start.
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start}
}

// Now returns the virtual time.
func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// AfterFunc implements [timeutil.Scheduler].
func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) timeutil.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	t := &ManualTimer{
		sched:    s,
		seq:      s.seq,
		start:    s.now,
		duration: d,
		deadline: s.now.Add(d),
		callback: f,
		state:    timeutil.TimerStateRunning,
	}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the virtual clock by d and fires due timers in deadline order.
// Timers armed by fired callbacks fire within the same call if they are due.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	for {
		s.mu.Lock()
		t := s.nextDue(target)
		if t == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		s.now = t.deadline
		t.state = timeutil.TimerStateExpired
		t.stopTime = t.deadline
		s.timers = slices.DeleteFunc(s.timers, func(v *ManualTimer) bool { return v == t })
		s.mu.Unlock()

		t.callback()
	}
}

func (s *ManualScheduler) nextDue(target time.Time) *ManualTimer {
	var next *ManualTimer
	for _, t := range s.timers {
		if t.deadline.After(target) {
			continue
		}
		if next == nil || t.deadline.Before(next.deadline) ||
			(t.deadline.Equal(next.deadline) && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

// Pending returns durations of the running timers in arm order.
func (s *ManualScheduler) Pending() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]time.Duration, 0, len(s.timers))
	for _, t := range s.timers {
		out = append(out, t.duration)
	}
	return out
}

// Len returns the number of running timers.
func (s *ManualScheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// ManualTimer is a timer armed by [ManualScheduler].
type ManualTimer struct {
	sched    *ManualScheduler
	seq      uint64
	start    time.Time
	stopTime time.Time
	duration time.Duration
	deadline time.Time
	callback func()
	state    timeutil.TimerState
}

// Stop implements [timeutil.Timer].
func (t *ManualTimer) Stop() bool {
	s := t.sched
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.state != timeutil.TimerStateRunning {
		return false
	}
	t.state = timeutil.TimerStateStopped
	t.stopTime = s.now
	s.timers = slices.DeleteFunc(s.timers, func(v *ManualTimer) bool { return v == t })
	return true
}

// Duration implements [timeutil.Timer].
func (t *ManualTimer) Duration() time.Duration { return t.duration }

// Left implements [timeutil.Timer].
func (t *ManualTimer) Left() time.Duration {
	s := t.sched
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.state != timeutil.TimerStateRunning {
		return 0
	}
	return t.deadline.Sub(s.now)
}

// Snapshot implements [timeutil.Timer].
func (t *ManualTimer) Snapshot() *timeutil.TimerSnapshot {
	s := t.sched
	s.mu.Lock()
	defer s.mu.Unlock()

	return &timeutil.TimerSnapshot{
		StartTime: t.start,
		Duration:  t.duration,
		State:     t.state,
		StopTime:  t.stopTime,
	}
}
