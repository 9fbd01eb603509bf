package sip

import (
	"time"

	"braces.dev/errtrace"

	"github.com/ghettovoice/siptx/internal/timeutil"
)

// Scheduler arms transaction timers.
// See [timeutil.Scheduler].
type Scheduler = timeutil.Scheduler

// Timer is a handle of an armed transaction timer.
// See [timeutil.Timer].
type Timer = timeutil.Timer

// TimerSnapshot is a serializable view of a transaction timer.
type TimerSnapshot = timeutil.TimerSnapshot

// txTimings are timer values resolved for a single transaction.
type txTimings struct {
	a, b, d    time.Duration
	e, f, k    time.Duration
	t2         time.Duration
	cancel     time.Duration
	reflect    time.Duration
	overridden bool
}

func timingsFromConfig(cfg TimingConfig) txTimings {
	return txTimings{
		a:       cfg.TimeA(),
		b:       cfg.TimeB(),
		d:       cfg.TimeD(),
		e:       cfg.TimeE(),
		f:       cfg.TimeF(),
		k:       cfg.TimeK(),
		t2:      cfg.T2(),
		cancel:  cfg.TimeCancel(),
		reflect: cfg.TimeReflect(),
	}
}

// resolveTimings resolves transaction timer values and detaches the timer override header.
// It returns a copy of the request without the X-Timers header, the original is left untouched.
// Overrides are honored only for headers created by the application: A and B for INVITE,
// E, F and T2 for other methods.
// A malformed header yields the config defaults together with an error wrapping [ErrMalformedTimers].
func resolveTimings(req *Request, cfg TimingConfig) (txTimings, *Request, error) {
	tt := timingsFromConfig(cfg)

	detached := req.Clone()
	detached.Headers.Del("X-Timers")

	hdr, ok := req.Headers.Timers()
	if !ok || !hdr.AppCreated {
		return tt, detached, nil
	}

	vals, err := hdr.Values()
	if err != nil {
		return tt, detached, errtrace.Wrap(err)
	}

	if req.Method.Equal(RequestMethodInvite) {
		tt.overridden = applyOverride(&tt.a, vals.A) || tt.overridden
		tt.overridden = applyOverride(&tt.b, vals.B) || tt.overridden
	} else {
		tt.overridden = applyOverride(&tt.e, vals.E) || tt.overridden
		tt.overridden = applyOverride(&tt.f, vals.F) || tt.overridden
		tt.overridden = applyOverride(&tt.t2, vals.T2) || tt.overridden
	}
	return tt, detached, nil
}

func applyOverride(dst *time.Duration, v time.Duration) bool {
	if v <= 0 {
		return false
	}
	*dst = v
	return true
}
