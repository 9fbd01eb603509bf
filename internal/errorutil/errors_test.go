package errorutil_test

import (
	"errors"
	"io"
	"testing"

	"github.com/ghettovoice/siptx/internal/errorutil"
)

const errSentinel errorutil.Error = "sentinel"

func TestNewWrapperError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		args    []any
		wantMsg string
		wantIs  []error
	}{
		{"no args", nil, "sentinel", []error{errSentinel}},
		{"error", []any{io.EOF}, "sentinel: EOF", []error{errSentinel, io.EOF}},
		{"already wrapped", []any{errorutil.NewWrapperError(errSentinel, io.EOF)}, "sentinel: EOF", []error{errSentinel, io.EOF}},
		{"message", []any{"bad value"}, "sentinel: bad value", []error{errSentinel}},
		{"format", []any{"bad value %d", 42}, "sentinel: bad value 42", []error{errSentinel}},
		{"unsupported", []any{42}, "sentinel", []error{errSentinel}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			err := errorutil.NewWrapperError(errSentinel, c.args...)
			if got := err.Error(); got != c.wantMsg {
				t.Errorf("err.Error() = %q, want %q", got, c.wantMsg)
			}
			for _, target := range c.wantIs {
				if !errors.Is(err, target) {
					t.Errorf("errors.Is(err, %v) = false, want true", target)
				}
			}
		})
	}
}

func TestJoinPrefix(t *testing.T) {
	t.Parallel()

	if err := errorutil.JoinPrefix("close:", nil, nil); err != nil {
		t.Fatalf("errorutil.JoinPrefix(nil, nil) = %v, want nil", err)
	}

	err := errorutil.JoinPrefix("close:", io.EOF)
	if got, want := err.Error(), "close: EOF"; got != want {
		t.Errorf("err.Error() = %q, want %q", got, want)
	}

	err = errorutil.JoinPrefix("close:", io.EOF, nil, io.ErrClosedPipe)
	if got, want := err.Error(), "close:\n  - EOF\n  - io: read/write on closed pipe"; got != want {
		t.Errorf("err.Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("errors.Is(err, io.ErrClosedPipe) = false, want true")
	}
}
