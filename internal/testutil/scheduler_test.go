package testutil_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ghettovoice/siptx/internal/testutil"
)

func TestManualScheduler_Advance(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	sched := testutil.NewManualScheduler(start)

	var fired []time.Duration
	record := func() { fired = append(fired, sched.Now().Sub(start)) }

	sched.AfterFunc(3*time.Second, record)
	stopped := sched.AfterFunc(2*time.Second, record)
	sched.AfterFunc(time.Second, func() {
		record()
		sched.AfterFunc(time.Second, record)
	})

	if !stopped.Stop() {
		t.Fatal("stopped.Stop() = false, want true")
	}
	if stopped.Stop() {
		t.Fatal("stopped.Stop() again = true, want false")
	}

	sched.Advance(2500 * time.Millisecond)
	if diff := cmp.Diff([]time.Duration{time.Second, 2 * time.Second}, fired); diff != "" {
		t.Fatalf("fired mismatch (-want +got):\n%s", diff)
	}
	if got, want := sched.Now().Sub(start), 2500*time.Millisecond; got != want {
		t.Fatalf("sched.Now() = +%v, want +%v", got, want)
	}
	if got, want := sched.Len(), 1; got != want {
		t.Fatalf("sched.Len() = %d, want %d", got, want)
	}

	sched.Advance(time.Second)
	if diff := cmp.Diff([]time.Duration{time.Second, 2 * time.Second, 3 * time.Second}, fired); diff != "" {
		t.Errorf("fired mismatch (-want +got):\n%s", diff)
	}
	if got := sched.Pending(); len(got) != 0 {
		t.Errorf("sched.Pending() = %v, want empty", got)
	}
}

func TestManualTimer_Snapshot(t *testing.T) {
	t.Parallel()

	sched := testutil.NewManualScheduler(time.Unix(0, 0))
	tmr := sched.AfterFunc(time.Second, func() {})

	sched.Advance(400 * time.Millisecond)
	if got, want := tmr.Left(), 600*time.Millisecond; got != want {
		t.Errorf("tmr.Left() = %v, want %v", got, want)
	}
	if got, want := tmr.Duration(), time.Second; got != want {
		t.Errorf("tmr.Duration() = %v, want %v", got, want)
	}

	sched.Advance(time.Second)
	snap := tmr.Snapshot()
	if got, want := snap.StopTime, time.Unix(1, 0); !got.Equal(want) {
		t.Errorf("snap.StopTime = %v, want %v", got, want)
	}
	if tmr.Left() != 0 {
		t.Errorf("tmr.Left() = %v, want 0", tmr.Left())
	}
}
