package sip

import (
	"encoding/json"
	"time"

	"braces.dev/errtrace"
)

// Default values for SIP timers as described in RFC 3261.
const (
	// T1 is the message RTT estimate.
	T1 = 500 * time.Millisecond
	// T2 is the maximum retransmit interval for non-INVITE requests.
	T2 = 4 * time.Second
	// T4 is the maximum duration a message will remain in the network.
	T4 = 5 * time.Second
	// TimeD is the wait duration for response retransmits via unreliable transport.
	TimeD = 32 * time.Second
	// TimeCancel is the wait duration for the final response after the INVITE was cancelled.
	TimeCancel = 32 * time.Second
	// TimeReflect is the grace period a terminated transaction stays retrievable.
	TimeReflect = 32 * time.Second
)

// TimingConfig represents SIP timing config.
// Zero value uses default base values [T1], [T2], [T4], [TimeD], [TimeCancel], [TimeReflect].
// All other timings are calculated based on these base values.
type TimingConfig struct {
	t1, t2, t4,
	timeD,
	timeCancel,
	timeReflect time.Duration
}

var defTimingCfg TimingConfig

// NewTimings creates a new SIP timing config with specified base values.
// Zero values fall back to defaults.
func NewTimings(t1, t2, t4, timeD time.Duration) TimingConfig {
	return TimingConfig{t1: t1, t2: t2, t4: t4, timeD: timeD}
}

// WithTimeCancel returns a copy of the config with the CANCEL guard duration set.
func (c TimingConfig) WithTimeCancel(d time.Duration) TimingConfig {
	c.timeCancel = d
	return c
}

// WithTimeReflect returns a copy of the config with the reflection grace period set.
func (c TimingConfig) WithTimeReflect(d time.Duration) TimingConfig {
	c.timeReflect = d
	return c
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// T1 is the message RTT estimate.
// It is equal to [T1] if not specified.
func (c TimingConfig) T1() time.Duration { return orDefault(c.t1, T1) }

// T2 is the maximum retransmit interval for non-INVITE requests.
// It is equal to [T2] if not specified.
func (c TimingConfig) T2() time.Duration { return orDefault(c.t2, T2) }

// T4 is the maximum duration a message will remain in the network.
// It is equal to [T4] if not specified.
func (c TimingConfig) T4() time.Duration { return orDefault(c.t4, T4) }

// TimeA returns initial INVITE request retransmit interval for unreliable transport.
// It is equal to [TimingConfig.T1].
func (c TimingConfig) TimeA() time.Duration { return c.T1() }

// TimeB returns INVITE client transaction timeout.
// It is equal to 64*[TimingConfig.T1].
func (c TimingConfig) TimeB() time.Duration { return 64 * c.T1() }

// TimeD is the wait duration for response retransmits via unreliable transport.
// It is equal to [TimeD] if not specified.
func (c TimingConfig) TimeD() time.Duration { return orDefault(c.timeD, TimeD) }

// TimeE returns initial non-INVITE request retransmit interval for unreliable transport.
// It is equal to [TimingConfig.T1].
func (c TimingConfig) TimeE() time.Duration { return c.T1() }

// TimeF returns non-INVITE client transaction timeout.
// It is equal to 64*[TimingConfig.T1].
func (c TimingConfig) TimeF() time.Duration { return 64 * c.T1() }

// TimeK returns wait duration for response retransmits via unreliable transport.
// It is equal to [TimingConfig.T4].
func (c TimingConfig) TimeK() time.Duration { return c.T4() }

// TimeCancel returns the wait duration for the final response after the INVITE was cancelled.
// It is equal to [TimeCancel] if not specified.
func (c TimingConfig) TimeCancel() time.Duration { return orDefault(c.timeCancel, TimeCancel) }

// TimeReflect returns the grace period a terminated transaction stays retrievable.
// It is equal to [TimeReflect] if not specified.
func (c TimingConfig) TimeReflect() time.Duration { return orDefault(c.timeReflect, TimeReflect) }

// IsZero reports whether all base values are defaults.
func (c TimingConfig) IsZero() bool { return c == defTimingCfg }

type timingConfData struct {
	T1          time.Duration `json:"t1,omitempty"`
	T2          time.Duration `json:"t2,omitempty"`
	T4          time.Duration `json:"t4,omitempty"`
	TimeD       time.Duration `json:"time_d,omitempty"`
	TimeCancel  time.Duration `json:"time_cancel,omitempty"`
	TimeReflect time.Duration `json:"time_reflect,omitempty"`
}

// MarshalJSON implements [json.Marshaler].
func (c TimingConfig) MarshalJSON() ([]byte, error) {
	return errtrace.Wrap2(json.Marshal(timingConfData{
		T1:          c.t1,
		T2:          c.t2,
		T4:          c.t4,
		TimeD:       c.timeD,
		TimeCancel:  c.timeCancel,
		TimeReflect: c.timeReflect,
	}))
}

// UnmarshalJSON implements [json.Unmarshaler].
func (c *TimingConfig) UnmarshalJSON(data []byte) error {
	var d timingConfData
	if err := json.Unmarshal(data, &d); err != nil {
		return errtrace.Wrap(err)
	}
	*c = TimingConfig{
		t1:          d.T1,
		t2:          d.T2,
		t4:          d.T4,
		timeD:       d.TimeD,
		timeCancel:  d.TimeCancel,
		timeReflect: d.TimeReflect,
	}
	return nil
}
