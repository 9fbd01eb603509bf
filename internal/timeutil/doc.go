// Package timeutil provides the timer service used by SIP transactions.
//
// A [Scheduler] arms one-shot timers that invoke a callback on expiry. The default
// scheduler, [RealScheduler], produces [*SerializableTimer] values backed by [time.AfterFunc]
// that also expose a JSON-friendly [TimerSnapshot] for diagnostics:
//
//	timer := timeutil.AfterFunc(500*time.Millisecond, func() {
//	    log.Println("retransmit")
//	})
//	snap := timer.Snapshot()
//	data, _ := json.Marshal(snap)
//
// Tests substitute their own [Scheduler] to drive virtual time.
//
// All timer operations are thread-safe and can be called concurrently from multiple goroutines.
package timeutil
