package timeutil

import (
	"encoding/json"
	"sync"
	"time"

	"braces.dev/errtrace"
)

// Timer is a handle of an armed one-shot timer.
type Timer interface {
	// Stop cancels the timer. It returns false if the timer has already expired or been stopped.
	Stop() bool
	// Duration returns the interval the timer was armed with.
	Duration() time.Duration
	// Left returns the time remaining until the timer expires.
	Left() time.Duration
	// Snapshot returns a serializable view of the timer.
	Snapshot() *TimerSnapshot
}

// Scheduler arms timers.
type Scheduler interface {
	// AfterFunc arms a timer that calls f in its own goroutine after d elapses.
	AfterFunc(d time.Duration, f func()) Timer
}

// SchedulerFunc is an adapter to allow the use of ordinary functions as [Scheduler].
type SchedulerFunc func(d time.Duration, f func()) Timer

// AfterFunc implements [Scheduler].
func (fn SchedulerFunc) AfterFunc(d time.Duration, f func()) Timer { return fn(d, f) }

// RealScheduler arms wall-clock timers.
type RealScheduler struct{}

// AfterFunc implements [Scheduler].
func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer { return AfterFunc(d, f) }

// TimerState represents the current state of a serializable timer.
type TimerState string

const (
	// TimerStateRunning indicates the timer is currently running.
	TimerStateRunning TimerState = "running"
	// TimerStateStopped indicates the timer was stopped before expiration.
	TimerStateStopped TimerState = "stopped"
	// TimerStateExpired indicates the timer has expired.
	TimerStateExpired TimerState = "expired"
)

// SerializableTimer is a wall-clock timer that tracks its start time, duration and state
// and can export them as a [TimerSnapshot].
type SerializableTimer struct {
	mu        sync.Mutex
	startTime time.Time
	stopTime  time.Time
	duration  time.Duration
	state     TimerState
	callback  func()
	realTimer *time.Timer
}

// AfterFunc creates a new running [SerializableTimer] that calls f in its own goroutine
// after d elapses.
func AfterFunc(d time.Duration, f func()) *SerializableTimer {
	t := &SerializableTimer{
		startTime: time.Now(),
		duration:  d,
		state:     TimerStateRunning,
		callback:  f,
	}
	t.realTimer = time.AfterFunc(d, t.expire)
	return t
}

func (t *SerializableTimer) expire() {
	t.mu.Lock()
	if t.state != TimerStateRunning {
		t.mu.Unlock()
		return
	}
	t.state = TimerStateExpired
	t.stopTime = time.Now()
	cb := t.callback
	t.callback = nil
	t.realTimer = nil
	t.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// State returns the current timer state.
func (t *SerializableTimer) State() TimerState {
	if t == nil {
		return ""
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// StartTime returns the timer's start time.
func (t *SerializableTimer) StartTime() time.Time {
	if t == nil {
		return time.Time{}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.startTime
}

// Duration returns the timer's duration.
func (t *SerializableTimer) Duration() time.Duration {
	if t == nil {
		return 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.duration
}

// Left returns the time remaining until the timer expires.
// Returns 0 if the timer is expired or stopped.
func (t *SerializableTimer) Left() time.Duration {
	if t == nil {
		return 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != TimerStateRunning {
		return 0
	}
	return max(t.duration-time.Since(t.startTime), 0)
}

// Stop stops the timer. The callback will not be executed after Stop returns true.
func (t *SerializableTimer) Stop() bool {
	if t == nil {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != TimerStateRunning {
		return false
	}

	t.state = TimerStateStopped
	t.stopTime = time.Now()
	t.callback = nil
	if t.realTimer != nil {
		t.realTimer.Stop()
		t.realTimer = nil
	}
	return true
}

// TimerSnapshot represents a serializable view of a timer.
type TimerSnapshot struct {
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
	State     TimerState    `json:"state"`
	StopTime  time.Time     `json:"stop_time,omitzero"`
}

// ExpiresAt returns the time the timer expires or expired at.
func (s *TimerSnapshot) ExpiresAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.StartTime.Add(s.Duration)
}

// Snapshot returns an immutable representation of the timer state.
func (t *SerializableTimer) Snapshot() *TimerSnapshot {
	if t == nil {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return &TimerSnapshot{
		StartTime: t.startTime,
		Duration:  t.duration,
		State:     t.state,
		StopTime:  t.stopTime,
	}
}

var jsonNull = []byte("null")

// MarshalJSON implements [json.Marshaler].
func (t *SerializableTimer) MarshalJSON() ([]byte, error) {
	if t == nil {
		return jsonNull, nil
	}
	return errtrace.Wrap2(json.Marshal(t.Snapshot()))
}
