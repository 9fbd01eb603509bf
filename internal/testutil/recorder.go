package testutil

import (
	"context"
	"sync"
	"time"

	"braces.dev/errtrace"

	"github.com/ghettovoice/siptx/sip"
)

// SentRequest is a request passed to [RecordingTransport].
type SentRequest struct {
	At      time.Time
	Hop     sip.Hop
	Request *sip.Request
}

// RecordingTransport is a [sip.ClientTransport] that records sent requests.
type RecordingTransport struct {
	now func() time.Time

	mu   sync.Mutex
	sent []SentRequest
	fail func(req *sip.Request) error
}

// NewRecordingTransport creates a transport that stamps requests with the time returned by now.
// If now is nil, [time.Now] is used.
func NewRecordingTransport(now func() time.Time) *RecordingTransport {
	if now == nil {
		now = time.Now
	}
	return &RecordingTransport{now: now}
}

// SendRequest implements [sip.ClientTransport].
func (tp *RecordingTransport) SendRequest(_ context.Context, hop sip.Hop, req *sip.Request) error {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	if tp.fail != nil {
		if err := tp.fail(req); err != nil {
			return errtrace.Wrap(err)
		}
	}
	tp.sent = append(tp.sent, SentRequest{tp.now(), hop, req})
	return nil
}

// FailWith makes subsequent sends fail with the error returned by fn.
// A nil error lets the request through.
func (tp *RecordingTransport) FailWith(fn func(req *sip.Request) error) {
	tp.mu.Lock()
	tp.fail = fn
	tp.mu.Unlock()
}

// Sent returns the recorded requests.
func (tp *RecordingTransport) Sent() []SentRequest {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	return append([]SentRequest(nil), tp.sent...)
}

// SentMethods returns the methods of the recorded requests.
func (tp *RecordingTransport) SentMethods() []sip.RequestMethod {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	out := make([]sip.RequestMethod, len(tp.sent))
	for i, s := range tp.sent {
		out[i] = s.Request.Method
	}
	return out
}

// DeliveredEvent is an event passed to [RecordingTransactionUser].
type DeliveredEvent struct {
	At    time.Time
	Event *sip.TransactionEvent
	// Tx is the transaction found in the delivery context.
	Tx *sip.ClientTransaction
}

// RecordingTransactionUser is a [sip.TransactionUser] that records delivered events.
type RecordingTransactionUser struct {
	now func() time.Time

	mu     sync.Mutex
	events []DeliveredEvent
}

// NewRecordingTransactionUser creates a transaction user that stamps events with the time returned by now.
// If now is nil, [time.Now] is used.
func NewRecordingTransactionUser(now func() time.Time) *RecordingTransactionUser {
	if now == nil {
		now = time.Now
	}
	return &RecordingTransactionUser{now: now}
}

// Deliver implements [sip.TransactionUser].
func (tu *RecordingTransactionUser) Deliver(ctx context.Context, evt *sip.TransactionEvent) {
	tx, _ := sip.ClientTransactionFromContext(ctx)

	tu.mu.Lock()
	tu.events = append(tu.events, DeliveredEvent{tu.now(), evt, tx})
	tu.mu.Unlock()
}

// Events returns the recorded events.
func (tu *RecordingTransactionUser) Events() []DeliveredEvent {
	tu.mu.Lock()
	defer tu.mu.Unlock()
	return append([]DeliveredEvent(nil), tu.events...)
}
