package sip_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ghettovoice/siptx/header"
	"github.com/ghettovoice/siptx/internal/testutil"
	"github.com/ghettovoice/siptx/sip"
	"github.com/ghettovoice/siptx/uri"
)

func TestInviteClientTransaction_TimeoutUnreliable(t *testing.T) {
	t.Parallel()

	h := newHarness()
	req := testutil.NewRequest(sip.RequestMethodInvite, sip.TransportProtoUDP, "z9hG4bK.inv-timeout")
	tx := startTx(t, h, req, sip.TimingConfig{})
	states := recordStates(tx)

	assertState(t, tx, sip.TransactionStateCalling)
	if got, want := tx.Hop(), (sip.Hop{Transport: "UDP", Host: "example.com", Port: 5060}); got != want {
		t.Fatalf("tx.Hop() = %v, want %v", got, want)
	}

	h.sched.Advance(32*time.Second - time.Millisecond)
	assertState(t, tx, sip.TransactionStateCalling)
	if got := h.tu.Events(); len(got) != 0 {
		t.Fatalf("delivered %d events before timer B, want 0", len(got))
	}

	h.sched.Advance(time.Millisecond)

	wantSent := []time.Duration{
		0,
		500 * time.Millisecond,
		1500 * time.Millisecond,
		3500 * time.Millisecond,
		7500 * time.Millisecond,
		15500 * time.Millisecond,
		31500 * time.Millisecond,
	}
	if diff := cmp.Diff(wantSent, h.sentOffsets()); diff != "" {
		t.Errorf("INVITE send times mismatch (-want +got):\n%s", diff)
	}
	for i, s := range h.tp.Sent() {
		if s.Request.Method != sip.RequestMethodInvite {
			t.Errorf("sent[%d].Method = %q, want %q", i, s.Request.Method, sip.RequestMethodInvite)
		}
	}

	evts := h.tu.Events()
	if len(evts) != 1 {
		t.Fatalf("delivered %d events, want 1", len(evts))
	}
	if got, want := evts[0].Event.Type, sip.TransactionEventTimeout; got != want {
		t.Errorf("event type = %q, want %q", got, want)
	}
	if !errors.Is(evts[0].Event.Err, sip.ErrTransactionTimedOut) {
		t.Errorf("event error = %v, want %v", evts[0].Event.Err, sip.ErrTransactionTimedOut)
	}
	if got, want := evts[0].At.Sub(epoch), 32*time.Second; got != want {
		t.Errorf("timeout delivered at %v, want %v", got, want)
	}
	if evts[0].Tx != tx {
		t.Errorf("delivery context transaction = %p, want %p", evts[0].Tx, tx)
	}

	assertState(t, tx, sip.TransactionStateTerminated)
	assertDone(t, tx)
	if diff := cmp.Diff([]stateChange{{sip.TransactionStateCalling, sip.TransactionStateTerminated}}, states.Changes()); diff != "" {
		t.Errorf("state changes mismatch (-want +got):\n%s", diff)
	}
}

func TestInviteClientTransaction_NonSuccessFinal(t *testing.T) {
	t.Parallel()

	h := newHarness()
	req := testutil.NewRequest(sip.RequestMethodInvite, sip.TransportProtoUDP, "z9hG4bK.inv-486")
	tx := startTx(t, h, req, sip.TimingConfig{})
	states := recordStates(tx)

	h.sched.Advance(100 * time.Millisecond)
	recvResponse(t, tx, testutil.NewResponse(req, sip.ResponseStatusRinging))
	assertState(t, tx, sip.TransactionStateProceeding)

	h.sched.Advance(200 * time.Millisecond)
	busy := testutil.NewResponse(req, sip.ResponseStatusBusyHere)
	recvResponse(t, tx, busy)
	assertState(t, tx, sip.TransactionStateCompleted)

	if diff := cmp.Diff(
		[]sip.RequestMethod{sip.RequestMethodInvite, sip.RequestMethodAck},
		h.tp.SentMethods(),
	); diff != "" {
		t.Fatalf("sent methods mismatch (-want +got):\n%s", diff)
	}

	// retransmitted final responses are acknowledged but not passed up
	h.sched.Advance(time.Second)
	recvResponse(t, tx, busy)
	recvResponse(t, tx, busy)

	sent := h.tp.Sent()
	if got, want := len(sent), 4; got != want {
		t.Fatalf("sent %d requests, want %d", got, want)
	}
	for _, s := range sent[1:] {
		if s.Request != sent[1].Request {
			t.Errorf("retransmitted ACK = %p, want the first ACK %p", s.Request, sent[1].Request)
		}
	}

	evts := h.tu.Events()
	if got, want := len(evts), 2; got != want {
		t.Fatalf("delivered %d events, want %d", got, want)
	}
	if got, want := evts[0].Event.Response.Status, sip.ResponseStatusRinging; got != want {
		t.Errorf("event[0] status = %d, want %d", got, want)
	}
	if got, want := evts[1].Event.Response.Status, sip.ResponseStatusBusyHere; got != want {
		t.Errorf("event[1] status = %d, want %d", got, want)
	}
	if got := tx.FinalResponse(); got != busy {
		t.Errorf("tx.FinalResponse() = %v, want %v", got, busy)
	}

	// timer D runs from the first final response
	h.sched.Advance(32*time.Second - time.Second - time.Millisecond)
	assertState(t, tx, sip.TransactionStateCompleted)
	h.sched.Advance(time.Millisecond)
	assertState(t, tx, sip.TransactionStateTerminated)
	assertDone(t, tx)

	if got, want := len(h.tp.Sent()), 4; got != want {
		t.Errorf("sent %d requests after timer D, want %d", got, want)
	}

	wantStates := []stateChange{
		{sip.TransactionStateCalling, sip.TransactionStateProceeding},
		{sip.TransactionStateProceeding, sip.TransactionStateCompleted},
		{sip.TransactionStateCompleted, sip.TransactionStateTerminated},
	}
	if diff := cmp.Diff(wantStates, states.Changes()); diff != "" {
		t.Errorf("state changes mismatch (-want +got):\n%s", diff)
	}
}

func TestInviteClientTransaction_AckRequest(t *testing.T) {
	t.Parallel()

	h := newHarness()
	req := testutil.NewRequest(sip.RequestMethodInvite, sip.TransportProtoUDP, "z9hG4bK.inv-ack")
	req.Headers.Append(
		header.Route{{URI: &uri.SIP{Host: "edge.example.com"}}},
		&header.Any{Name: header.DestinationName, Value: "sip:proxy.example.com:5070"},
		&header.Any{Name: header.PreferredOutboundName, Value: "sip:out.example.com"},
	)
	req.Loopback = true
	tx := startTx(t, h, req, sip.TimingConfig{})

	if got, want := tx.Hop(), (sip.Hop{Transport: "UDP", Host: "proxy.example.com", Port: 5070}); got != want {
		t.Fatalf("tx.Hop() = %v, want %v", got, want)
	}

	res := testutil.NewResponse(req, sip.ResponseStatusDecline)
	recvResponse(t, tx, res)

	sent := h.tp.Sent()
	if got, want := len(sent), 2; got != want {
		t.Fatalf("sent %d requests, want %d", got, want)
	}
	ack := sent[1].Request
	if sent[1].Hop != tx.Hop() {
		t.Errorf("ACK hop = %v, want %v", sent[1].Hop, tx.Hop())
	}

	render := func(hs sip.Headers, names ...header.Name) map[header.Name][]string {
		out := make(map[header.Name][]string, len(names))
		for _, n := range names {
			for _, hdr := range hs.Get(n) {
				out[n] = append(out[n], hdr.RenderValue())
			}
		}
		return out
	}

	wantHdrs := render(req.Headers,
		"Via", "Route", "Max-Forwards", "From", "Call-ID",
		header.DestinationName, header.PreferredOutboundName,
	)
	wantHdrs["To"] = render(res.Headers, "To")["To"]
	wantHdrs["CSeq"] = []string{"1 ACK"}
	gotHdrs := render(ack.Headers,
		"Via", "Route", "Max-Forwards", "From", "To", "Call-ID", "CSeq",
		header.DestinationName, header.PreferredOutboundName,
	)
	if diff := cmp.Diff(wantHdrs, gotHdrs); diff != "" {
		t.Errorf("ACK headers mismatch (-want +got):\n%s", diff)
	}
	if got, want := ack.Method, sip.RequestMethodAck; got != want {
		t.Errorf("ack.Method = %q, want %q", got, want)
	}
	if got, want := ack.URI.String(), req.URI.String(); got != want {
		t.Errorf("ack.URI = %q, want %q", got, want)
	}
	if !ack.Loopback {
		t.Error("ack.Loopback = false, want true")
	}

	to, _ := ack.Headers.To()
	resTo, _ := res.Headers.To()
	gotTag, _ := to.Tag()
	wantTag, _ := resTo.Tag()
	if gotTag == "" || gotTag != wantTag {
		t.Errorf("ACK To tag = %q, want %q", gotTag, wantTag)
	}
	if ack.Headers.Has("X-Timers") {
		t.Error("ACK has X-Timers header, want none")
	}
}

func TestInviteClientTransaction_SuccessTerminates(t *testing.T) {
	t.Parallel()

	h := newHarness()
	req := testutil.NewRequest(sip.RequestMethodInvite, sip.TransportProtoUDP, "z9hG4bK.inv-200")
	tx := startTx(t, h, req, sip.TimingConfig{})
	states := recordStates(tx)

	recvResponse(t, tx, testutil.NewResponse(req, sip.ResponseStatusSessionProgress))
	ok := testutil.NewResponse(req, sip.ResponseStatusOK)
	recvResponse(t, tx, ok)

	assertState(t, tx, sip.TransactionStateTerminated)
	assertDone(t, tx)
	if diff := cmp.Diff([]sip.RequestMethod{sip.RequestMethodInvite}, h.tp.SentMethods()); diff != "" {
		t.Errorf("sent methods mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]time.Duration{sip.TimeReflect}, h.sched.Pending()); diff != "" {
		t.Errorf("pending timers mismatch (-want +got):\n%s", diff)
	}

	evts := h.tu.Events()
	if got, want := len(evts), 2; got != want {
		t.Fatalf("delivered %d events, want %d", got, want)
	}
	if evts[1].Event.Response != ok {
		t.Errorf("event[1] response = %v, want %v", evts[1].Event.Response, ok)
	}

	// 2xx retransmissions go to the transaction user through the dialog layer
	if err := tx.ProcessResponse(t.Context(), ok); !errors.Is(err, sip.ErrTransactionTerminated) {
		t.Errorf("tx.ProcessResponse(ctx, 200) error = %v, want %v", err, sip.ErrTransactionTerminated)
	}

	wantStates := []stateChange{
		{sip.TransactionStateCalling, sip.TransactionStateProceeding},
		{sip.TransactionStateProceeding, sip.TransactionStateTerminated},
	}
	if diff := cmp.Diff(wantStates, states.Changes()); diff != "" {
		t.Errorf("state changes mismatch (-want +got):\n%s", diff)
	}
}

func TestInviteClientTransaction_ReliableTransport(t *testing.T) {
	t.Parallel()

	h := newHarness()
	req := testutil.NewRequest(sip.RequestMethodInvite, sip.TransportProtoTCP, "z9hG4bK.inv-tcp")
	tx := startTx(t, h, req, sip.TimingConfig{})
	states := recordStates(tx)

	// only timer B is armed
	if diff := cmp.Diff([]time.Duration{64 * sip.T1}, h.sched.Pending()); diff != "" {
		t.Fatalf("pending timers mismatch (-want +got):\n%s", diff)
	}

	h.sched.Advance(10 * time.Second)
	if got, want := len(h.tp.Sent()), 1; got != want {
		t.Fatalf("sent %d requests, want %d", got, want)
	}

	recvResponse(t, tx, testutil.NewResponse(req, sip.ResponseStatusNotFound))
	assertState(t, tx, sip.TransactionStateTerminated)

	if diff := cmp.Diff(
		[]sip.RequestMethod{sip.RequestMethodInvite, sip.RequestMethodAck},
		h.tp.SentMethods(),
	); diff != "" {
		t.Errorf("sent methods mismatch (-want +got):\n%s", diff)
	}

	wantStates := []stateChange{
		{sip.TransactionStateCalling, sip.TransactionStateCompleted},
		{sip.TransactionStateCompleted, sip.TransactionStateTerminated},
	}
	if diff := cmp.Diff(wantStates, states.Changes()); diff != "" {
		t.Errorf("state changes mismatch (-want +got):\n%s", diff)
	}
}

func TestInviteClientTransaction_AppAck(t *testing.T) {
	t.Parallel()

	h := newHarness()
	req := testutil.NewRequest(sip.RequestMethodInvite, sip.TransportProtoUDP, "z9hG4bK.inv-app-ack")
	ack := testutil.NewRequest(sip.RequestMethodAck, sip.TransportProtoUDP, "z9hG4bK.inv-app-ack")

	tx, err := sip.NewInviteClientTransaction(req, h.tp, h.tu, h.opts(sip.TimingConfig{}))
	if err != nil {
		t.Fatalf("sip.NewInviteClientTransaction(req, tp, tu, opts) error = %v, want nil", err)
	}
	if err := tx.ProcessRequest(t.Context(), ack); !errors.Is(err, sip.ErrActionNotAllowed) {
		t.Fatalf("tx.ProcessRequest(ctx, ack) before start error = %v, want %v", err, sip.ErrActionNotAllowed)
	}
	if err := tx.ProcessRequest(t.Context(), req); err != nil {
		t.Fatalf("tx.ProcessRequest(ctx, req) error = %v, want nil", err)
	}
	if err := tx.ProcessRequest(t.Context(), req); !errors.Is(err, sip.ErrActionNotAllowed) {
		t.Fatalf("tx.ProcessRequest(ctx, req) again error = %v, want %v", err, sip.ErrActionNotAllowed)
	}

	recvResponse(t, tx, testutil.NewResponse(req, sip.ResponseStatusRinging))
	if err := tx.ProcessRequest(t.Context(), ack); err != nil {
		t.Fatalf("tx.ProcessRequest(ctx, ack) error = %v, want nil", err)
	}
	assertState(t, tx, sip.TransactionStateCompleted)

	sent := h.tp.Sent()
	if got, want := len(sent), 2; got != want {
		t.Fatalf("sent %d requests, want %d", got, want)
	}
	if sent[1].Request != ack {
		t.Errorf("sent[1] = %v, want the application ACK", sent[1].Request)
	}
	if err := tx.ProcessRequest(t.Context(), ack); !errors.Is(err, sip.ErrActionNotAllowed) {
		t.Errorf("tx.ProcessRequest(ctx, ack) in completed error = %v, want %v", err, sip.ErrActionNotAllowed)
	}

	h.sched.Advance(sip.TimeD)
	assertState(t, tx, sip.TransactionStateTerminated)
}

func TestInviteClientTransaction_CancelGuard(t *testing.T) {
	t.Parallel()

	t.Run("fires without final response", func(t *testing.T) {
		t.Parallel()

		h := newHarness()
		req := testutil.NewRequest(sip.RequestMethodInvite, sip.TransportProtoUDP, "z9hG4bK.inv-cancel-timeout")
		tx := startTx(t, h, req, sip.TimingConfig{}.WithTimeCancel(10*time.Second))

		recvResponse(t, tx, testutil.NewResponse(req, sip.ResponseStatusRinging))
		h.sched.Advance(200 * time.Millisecond)
		if err := tx.Cancel(t.Context()); err != nil {
			t.Fatalf("tx.Cancel(ctx) error = %v, want nil", err)
		}
		h.sched.Advance(5 * time.Second)
		if err := tx.Cancel(t.Context()); err != nil {
			t.Fatalf("tx.Cancel(ctx) again error = %v, want nil", err)
		}

		h.sched.Advance(5*time.Second - time.Millisecond)
		assertState(t, tx, sip.TransactionStateProceeding)
		h.sched.Advance(time.Millisecond)
		assertState(t, tx, sip.TransactionStateTerminated)

		evts := h.tu.Events()
		if got, want := len(evts), 2; got != want {
			t.Fatalf("delivered %d events, want %d", got, want)
		}
		if got, want := evts[1].Event.Type, sip.TransactionEventTimeout; got != want {
			t.Errorf("event[1] type = %q, want %q", got, want)
		}
		if got, want := evts[1].At.Sub(epoch), 10200*time.Millisecond; got != want {
			t.Errorf("timeout delivered at %v, want %v", got, want)
		}
	})

	t.Run("stopped by final response", func(t *testing.T) {
		t.Parallel()

		h := newHarness()
		req := testutil.NewRequest(sip.RequestMethodInvite, sip.TransportProtoUDP, "z9hG4bK.inv-cancel-487")
		tx := startTx(t, h, req, sip.TimingConfig{})

		recvResponse(t, tx, testutil.NewResponse(req, sip.ResponseStatusRinging))
		if err := tx.Cancel(t.Context()); err != nil {
			t.Fatalf("tx.Cancel(ctx) error = %v, want nil", err)
		}
		recvResponse(t, tx, testutil.NewResponse(req, sip.ResponseStatusRequestTerminated))
		assertState(t, tx, sip.TransactionStateCompleted)

		if err := tx.Cancel(t.Context()); !errors.Is(err, sip.ErrActionNotAllowed) {
			t.Errorf("tx.Cancel(ctx) in completed error = %v, want %v", err, sip.ErrActionNotAllowed)
		}

		// only timer D is left
		if diff := cmp.Diff([]time.Duration{sip.TimeD}, h.sched.Pending()); diff != "" {
			t.Errorf("pending timers mismatch (-want +got):\n%s", diff)
		}
		h.sched.Advance(sip.TimeD)
		assertState(t, tx, sip.TransactionStateTerminated)

		for _, e := range h.tu.Events() {
			if e.Event.Type == sip.TransactionEventTimeout {
				t.Errorf("delivered timeout event %v, want none", e.Event)
			}
		}
	})

	t.Run("not allowed", func(t *testing.T) {
		t.Parallel()

		h := newHarness()
		req := testutil.NewRequest(sip.RequestMethodInvite, sip.TransportProtoUDP, "z9hG4bK.inv-cancel-early")
		tx, err := sip.NewInviteClientTransaction(req, h.tp, h.tu, h.opts(sip.TimingConfig{}))
		if err != nil {
			t.Fatalf("sip.NewInviteClientTransaction(req, tp, tu, opts) error = %v, want nil", err)
		}
		if err := tx.Cancel(t.Context()); !errors.Is(err, sip.ErrActionNotAllowed) {
			t.Errorf("tx.Cancel(ctx) before start error = %v, want %v", err, sip.ErrActionNotAllowed)
		}

		nreq := testutil.NewRequest(sip.RequestMethodOptions, sip.TransportProtoUDP, "z9hG4bK.ninv-cancel")
		ntx := startTx(t, h, nreq, sip.TimingConfig{})
		if err := ntx.Cancel(t.Context()); !errors.Is(err, sip.ErrMethodNotAllowed) {
			t.Errorf("ntx.Cancel(ctx) error = %v, want %v", err, sip.ErrMethodNotAllowed)
		}
		ntx.Destroy(t.Context())
	})
}

func TestInviteClientTransaction_TimerOverrides(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		hdr      *header.Timers
		wantSent []time.Duration
		wantEnd  time.Duration
	}{
		{
			name:     "app created",
			hdr:      &header.Timers{Value: "a=250;b=4000", AppCreated: true},
			wantSent: []time.Duration{0, 250 * time.Millisecond, 750 * time.Millisecond, 1750 * time.Millisecond, 3750 * time.Millisecond},
			wantEnd:  4 * time.Second,
		},
		{
			name:     "not app created",
			hdr:      &header.Timers{Value: "a=250;b=4000"},
			wantSent: []time.Duration{0, 500 * time.Millisecond, 1500 * time.Millisecond, 3500 * time.Millisecond},
			wantEnd:  32 * time.Second,
		},
		{
			name:     "malformed",
			hdr:      &header.Timers{Value: "a=soon;b=4000", AppCreated: true},
			wantSent: []time.Duration{0, 500 * time.Millisecond, 1500 * time.Millisecond, 3500 * time.Millisecond},
			wantEnd:  32 * time.Second,
		},
		{
			name:     "non-INVITE keys",
			hdr:      &header.Timers{Value: "e=100;f=1000", AppCreated: true},
			wantSent: []time.Duration{0, 500 * time.Millisecond, 1500 * time.Millisecond, 3500 * time.Millisecond},
			wantEnd:  32 * time.Second,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness()
			req := testutil.NewRequest(sip.RequestMethodInvite, sip.TransportProtoUDP, "z9hG4bK.inv-override")
			req.Headers.Append(c.hdr)
			tx := startTx(t, h, req, sip.TimingConfig{})

			if tx.Request().Headers.Has("X-Timers") {
				t.Error("tx.Request() has X-Timers header, want detached")
			}
			if !req.Headers.Has("X-Timers") {
				t.Error("original request lost X-Timers header, want untouched")
			}
			for i, s := range h.tp.Sent() {
				if s.Request.Headers.Has("X-Timers") {
					t.Errorf("sent[%d] has X-Timers header, want none", i)
				}
			}

			h.sched.Advance(4 * time.Second)
			if diff := cmp.Diff(c.wantSent, h.sentOffsets()); diff != "" {
				t.Errorf("INVITE send times mismatch (-want +got):\n%s", diff)
			}

			h.sched.Advance(c.wantEnd - h.elapsed())
			assertState(t, tx, sip.TransactionStateTerminated)
			evts := h.tu.Events()
			if len(evts) != 1 || evts[0].At.Sub(epoch) != c.wantEnd {
				t.Errorf("events = %v, want single timeout at %v", evts, c.wantEnd)
			}
		})
	}
}

func TestInviteClientTransaction_SnapshotJSON(t *testing.T) {
	t.Parallel()

	h := newHarness()
	req := testutil.NewRequest(sip.RequestMethodInvite, sip.TransportProtoUDP, "z9hG4bK.inv-snapshot")
	tx := startTx(t, h, req, sip.TimingConfig{})
	h.sched.Advance(600 * time.Millisecond)

	snap := tx.Snapshot()
	if got, want := snap.State, sip.TransactionStateCalling; got != want {
		t.Errorf("snap.State = %q, want %q", got, want)
	}
	if got, want := snap.RetransmitInterval, time.Second; got != want {
		t.Errorf("snap.RetransmitInterval = %v, want %v", got, want)
	}
	if snap.TimerA == nil || snap.TimerB == nil {
		t.Fatalf("snap timers A, B = %v, %v, want both set", snap.TimerA, snap.TimerB)
	}
	if snap.TimerD != nil || snap.TimerReflect != nil {
		t.Errorf("snap timers D, reflect = %v, %v, want nil", snap.TimerD, snap.TimerReflect)
	}
	if !snap.Key.Equal(tx.Key()) {
		t.Errorf("snap.Key = %v, want %v", snap.Key, tx.Key())
	}

	if _, err := tx.MarshalJSON(); err != nil {
		t.Errorf("tx.MarshalJSON() error = %v, want nil", err)
	}
	tx.Destroy(t.Context())
}

func TestInviteClientTransaction_RetransmitFailure(t *testing.T) {
	t.Parallel()

	h := newHarness()
	req := testutil.NewRequest(sip.RequestMethodInvite, sip.TransportProtoUDP, "z9hG4bK.inv-rtx-fail")
	tx := startTx(t, h, req, sip.TimingConfig{})

	sendErr := errors.New("network unreachable")
	h.tp.FailWith(func(*sip.Request) error { return sendErr })
	h.sched.Advance(sip.T1)

	assertState(t, tx, sip.TransactionStateTerminated)
	assertDone(t, tx)

	evts := h.tu.Events()
	if got, want := len(evts), 1; got != want {
		t.Fatalf("delivered %d events, want %d", got, want)
	}
	evt := evts[0].Event
	if !evt.Synthesized || evt.Response.Status != sip.ResponseStatusServiceUnavailable {
		t.Errorf("event = %v, want synthesized 503 response", evt)
	}
	if !errors.Is(evt.Err, sip.ErrTransportFailure) || !errors.Is(evt.Err, sendErr) {
		t.Errorf("event.Err = %v, want wrapping %v and %v", evt.Err, sip.ErrTransportFailure, sendErr)
	}
	// timer A is not re-armed, timer B is stopped
	if diff := cmp.Diff([]time.Duration{sip.TimeReflect}, h.sched.Pending()); diff != "" {
		t.Errorf("pending timers mismatch (-want +got):\n%s", diff)
	}

	h.sched.Advance(time.Minute)
	if got, want := len(h.tp.Sent()), 1; got != want {
		t.Errorf("sent %d requests, want %d", got, want)
	}
	if got, want := len(h.tu.Events()), 1; got != want {
		t.Errorf("delivered %d events, want %d", got, want)
	}
}

func TestInviteClientTransaction_AckSendFailure(t *testing.T) {
	t.Parallel()

	h := newHarness()
	req := testutil.NewRequest(sip.RequestMethodInvite, sip.TransportProtoUDP, "z9hG4bK.inv-ack-fail")
	tx := startTx(t, h, req, sip.TimingConfig{})
	states := recordStates(tx)

	h.tp.FailWith(func(req *sip.Request) error {
		if req.Method == sip.RequestMethodAck {
			return errors.New("connection reset")
		}
		return nil
	})

	busy := testutil.NewResponse(req, sip.ResponseStatusBusyHere)
	recvResponse(t, tx, busy)

	assertState(t, tx, sip.TransactionStateTerminated)
	assertDone(t, tx)
	if got := tx.FinalResponse(); got != busy {
		t.Errorf("tx.FinalResponse() = %v, want received 486 response", got)
	}

	// the final response is already delivered, no 503 follows it
	evts := h.tu.Events()
	if got, want := len(evts), 1; got != want {
		t.Fatalf("delivered %d events, want %d", got, want)
	}
	if evts[0].Event.Response != busy || evts[0].Event.Synthesized {
		t.Errorf("event = %v, want received 486 response", evts[0].Event)
	}
	// timer D is never armed
	if diff := cmp.Diff([]time.Duration{sip.TimeReflect}, h.sched.Pending()); diff != "" {
		t.Errorf("pending timers mismatch (-want +got):\n%s", diff)
	}

	wantStates := []stateChange{
		{sip.TransactionStateCalling, sip.TransactionStateCompleted},
		{sip.TransactionStateCompleted, sip.TransactionStateTerminated},
	}
	if diff := cmp.Diff(wantStates, states.Changes()); diff != "" {
		t.Errorf("state changes mismatch (-want +got):\n%s", diff)
	}
}
