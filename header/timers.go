package header

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"braces.dev/errtrace"

	"github.com/ghettovoice/siptx/internal/errorutil"
	"github.com/ghettovoice/siptx/internal/util"
)

// ErrMalformedTimers is returned when the timer override header cannot be parsed.
const ErrMalformedTimers Error = "malformed timers header"

// Timers represents the X-Timers header that overrides transaction timer values
// for a single request, e.g. "a=250;b=16000;t2=2000". Values are in milliseconds.
//
// Only headers marked as created by the application are honored by client transactions.
type Timers struct {
	Value      string
	AppCreated bool
}

// CanonicName returns the canonical name of the header.
func (*Timers) CanonicName() Name { return "X-Timers" }

// RenderValue returns the header value without the name prefix.
func (hdr *Timers) RenderValue() string {
	if hdr == nil {
		return ""
	}
	return hdr.Value
}

// Clone returns a copy of the header.
func (hdr *Timers) Clone() Header {
	if hdr == nil {
		return nil
	}
	hdr2 := *hdr
	return &hdr2
}

// TimerValues holds the parsed overrides, zero means "not overridden".
type TimerValues struct {
	A, B, E, F, T2 time.Duration
}

// Values parses the header value.
// Unknown keys are ignored; a key with an empty, non-numeric or non-positive value
// makes the whole header malformed.
func (hdr *Timers) Values() (TimerValues, error) {
	var tv TimerValues
	if hdr == nil {
		return tv, nil
	}

	val := util.TrimSP(hdr.Value)
	if val == "" {
		return tv, errtrace.Wrap(errorutil.NewWrapperError(ErrMalformedTimers, "empty value"))
	}

	for kv := range strings.SplitSeq(val, ";") {
		kv = util.TrimSP(kv)
		if kv == "" {
			continue
		}
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return TimerValues{}, errtrace.Wrap(errorutil.NewWrapperError(ErrMalformedTimers, fmt.Sprintf("missing value of %q", kv)))
		}

		var dst *time.Duration
		switch util.LCase(util.TrimSP(k)) {
		case "a":
			dst = &tv.A
		case "b":
			dst = &tv.B
		case "e":
			dst = &tv.E
		case "f":
			dst = &tv.F
		case "t2":
			dst = &tv.T2
		default:
			continue
		}

		ms, err := strconv.ParseInt(util.TrimSP(v), 10, 64)
		if err != nil || ms <= 0 {
			return TimerValues{}, errtrace.Wrap(errorutil.NewWrapperError(ErrMalformedTimers, fmt.Sprintf("invalid value of %q", kv)))
		}
		*dst = time.Duration(ms) * time.Millisecond
	}
	return tv, nil
}
