package sip

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"braces.dev/errtrace"
	"github.com/qmuntal/stateless"

	"github.com/ghettovoice/siptx/header"
	"github.com/ghettovoice/siptx/internal/errorutil"
	"github.com/ghettovoice/siptx/internal/timeutil"
	"github.com/ghettovoice/siptx/internal/types"
	"github.com/ghettovoice/siptx/log"
)

// ClientTransactionOptions contains options for a client transaction.
type ClientTransactionOptions struct {
	// Key is the client transaction key that will be used with the transaction.
	// If zero, the key is filled from the request.
	Key ClientTransactionKey
	// Timings is the SIP timing config that will be used with the transaction.
	// If zero, the default SIP timing config will be used.
	Timings TimingConfig
	// Scheduler arms the transaction timers.
	// If nil, wall-clock timers are used.
	Scheduler Scheduler
	// Log is the logger that will be used with the transaction.
	// If nil, the [log.Default] will be used.
	Log *slog.Logger
}

func (o *ClientTransactionOptions) key() ClientTransactionKey {
	if o == nil {
		return zeroClnTxKey
	}
	return o.Key
}

func (o *ClientTransactionOptions) timings() TimingConfig {
	if o == nil {
		return defTimingCfg
	}
	return o.Timings
}

func (o *ClientTransactionOptions) scheduler() Scheduler {
	if o == nil || o.Scheduler == nil {
		return timeutil.RealScheduler{}
	}
	return o.Scheduler
}

func (o *ClientTransactionOptions) log() *slog.Logger {
	if o == nil || o.Log == nil {
		return log.Default()
	}
	return o.Log
}

// TransactionReclaimHandler is called once the reflection period of a destroyed transaction is over.
type TransactionReclaimHandler = func(ctx context.Context, tx *ClientTransaction)

type txTimerKind uint8

const (
	timerA txTimerKind = iota
	timerB
	timerD
	timerE
	timerF
	timerK
	timerCancel
	timerReflect
	numTxTimers
)

var txTimerNames = [numTxTimers]string{
	timerA:       "timer A",
	timerB:       "timer B",
	timerD:       "timer D",
	timerE:       "timer E",
	timerF:       "timer F",
	timerK:       "timer K",
	timerCancel:  "CANCEL guard timer",
	timerReflect: "reflection timer",
}

var txTimerEvents = [numTxTimers]txEvent{
	timerA:      txEvtTimerA,
	timerB:      txEvtTimerB,
	timerD:      txEvtTimerD,
	timerE:      txEvtTimerE,
	timerF:      txEvtTimerF,
	timerK:      txEvtTimerK,
	timerCancel: txEvtTimerCancel,
}

func (k txTimerKind) String() string { return txTimerNames[k] }

type txTimer struct {
	tmr Timer
	seq uint64
}

// timerSeq numbers every timer arm of every transaction,
// so a late fire can never be mistaken for a live timer of a recreated transaction.
var timerSeq atomic.Uint64

// txInput is an event together with its payload.
type txInput struct {
	evt txEvent
	res *Response
	req *Request
	err error
}

type txLookup = func(key ClientTransactionKey) (*ClientTransaction, bool)

// ClientTransaction implements the SIP client transaction defined in RFC 3261 Section 17.1.
//
// A transaction is created in the calling (INVITE) or trying (non-INVITE) state and does nothing
// until [ClientTransaction.ProcessRequest] is called with the request that created it.
// All inputs of a transaction (requests, responses, timer fires) are serialized by a per-transaction lock.
// Outcomes are delivered to the [TransactionUser] in order, outside of the lock.
type ClientTransaction struct {
	typ        TransactionType
	key        ClientTransactionKey
	req        *Request
	tp         ClientTransport
	tu         TransactionUser
	sched      Scheduler
	log        *slog.Logger
	ctx        context.Context //nolint:containedctx
	transition txTransition
	lookup     txLookup
	reliable   bool

	// dest and po are captured at creation for the automatic ACK.
	dest []header.Header
	po   []header.Header

	mu        sync.Mutex
	fsm       *stateless.StateMachine
	state     TransactionState
	started   bool
	destroyed bool
	timings   txTimings
	rtxIntvl  time.Duration
	hop       Hop
	hopSet    bool
	finalRes  *Response
	lastRes   *Response
	ack       *Request
	timers    [numTxTimers]txTimer

	pending   types.Deque[func()]
	deliverMu sync.Mutex

	onState   types.CallbackManager[TransactionStateHandler]
	onReclaim types.CallbackManager[TransactionReclaimHandler]
	done      chan struct{}
}

// NewClientTransaction creates an INVITE or non-INVITE client transaction depending on the request method.
func NewClientTransaction(
	req *Request,
	tp ClientTransport,
	tu TransactionUser,
	opts *ClientTransactionOptions,
) (*ClientTransaction, error) {
	if req != nil && req.Method.Equal(RequestMethodInvite) {
		return errtrace.Wrap2(NewInviteClientTransaction(req, tp, tu, opts))
	}
	return errtrace.Wrap2(NewNonInviteClientTransaction(req, tp, tu, opts))
}

// NewInviteClientTransaction creates an INVITE client transaction in the calling state.
func NewInviteClientTransaction(
	req *Request,
	tp ClientTransport,
	tu TransactionUser,
	opts *ClientTransactionOptions,
) (*ClientTransaction, error) {
	if req != nil && !req.Method.Equal(RequestMethodInvite) {
		return nil, errtrace.Wrap(NewInvalidArgumentError(ErrMethodNotAllowed))
	}
	return errtrace.Wrap2(newClientTransaction(TransactionTypeClientInvite, req, tp, tu, opts, nil))
}

// NewNonInviteClientTransaction creates a non-INVITE client transaction in the trying state.
// INVITE and ACK requests are rejected.
func NewNonInviteClientTransaction(
	req *Request,
	tp ClientTransport,
	tu TransactionUser,
	opts *ClientTransactionOptions,
) (*ClientTransaction, error) {
	if req != nil && (req.Method.Equal(RequestMethodInvite) || req.Method.Equal(RequestMethodAck)) {
		return nil, errtrace.Wrap(NewInvalidArgumentError(ErrMethodNotAllowed))
	}
	return errtrace.Wrap2(newClientTransaction(TransactionTypeClientNonInvite, req, tp, tu, opts, nil))
}

func newClientTransaction(
	typ TransactionType,
	req *Request,
	tp ClientTransport,
	tu TransactionUser,
	opts *ClientTransactionOptions,
	lookup txLookup,
) (*ClientTransaction, error) {
	if err := req.Validate(); err != nil {
		return nil, errtrace.Wrap(NewInvalidArgumentError(err))
	}
	if tp == nil {
		return nil, errtrace.Wrap(NewInvalidArgumentError("invalid transport"))
	}
	if tu == nil {
		return nil, errtrace.Wrap(NewInvalidArgumentError("invalid transaction user"))
	}

	key := opts.key()
	if !key.IsValid() {
		var err error
		if key, err = ClientTransactionKeyFromRequest(req); err != nil {
			return nil, errtrace.Wrap(err)
		}
	}

	tx := &ClientTransaction{
		typ:   typ,
		key:   key,
		tp:    tp,
		tu:    tu,
		sched: opts.scheduler(),
		log:   opts.log(),
		done:  make(chan struct{}),
	}
	tx.ctx = context.WithValue(context.Background(), clnTransactCtxKey, tx)
	tx.lookup = lookup
	if tx.lookup == nil {
		tx.lookup = tx.self
	}

	timings, detached, err := resolveTimings(req, opts.timings())
	if err != nil {
		tx.log.LogAttrs(tx.ctx, slog.LevelWarn,
			"malformed timers header ignored",
			slog.Any("transaction", tx),
			slog.Any("error", err),
		)
	}
	tx.req = detached
	tx.timings = timings
	tx.reliable = detached.IsReliable()

	if typ == TransactionTypeClientInvite {
		tx.transition = inviteTransition
		tx.state = TransactionStateCalling
		tx.rtxIntvl = timings.a
		tx.dest = cloneHeaders(req.Headers.Get(header.DestinationName))
		tx.po = cloneHeaders(req.Headers.Get(header.PreferredOutboundName))
	} else {
		tx.transition = nonInviteTransition
		tx.state = TransactionStateTrying
		tx.rtxIntvl = timings.e
	}

	tx.fsm = newLifecycleGuard(typ,
		func() TransactionState { return tx.state },
		func(s TransactionState) { tx.state = s },
	)
	tx.fsm.OnTransitioned(tx.onTransitioned)

	tx.log.LogAttrs(tx.ctx, slog.LevelDebug,
		"transaction created",
		slog.Any("transaction", tx),
		slog.Bool("timers_overridden", timings.overridden),
	)
	return tx, nil
}

func cloneHeaders(hdrs []header.Header) []header.Header {
	if len(hdrs) == 0 {
		return nil
	}
	out := make([]header.Header, len(hdrs))
	for i, h := range hdrs {
		out[i] = h.Clone()
	}
	return out
}

func (tx *ClientTransaction) self(key ClientTransactionKey) (*ClientTransaction, bool) {
	return tx, tx.key.Equal(key)
}

// Type returns the transaction type.
func (tx *ClientTransaction) Type() TransactionType {
	if tx == nil {
		return ""
	}
	return tx.typ
}

// Key returns the transaction key.
func (tx *ClientTransaction) Key() ClientTransactionKey {
	if tx == nil {
		return zeroClnTxKey
	}
	return tx.key
}

// State returns the current transaction state.
func (tx *ClientTransaction) State() TransactionState {
	if tx == nil {
		return ""
	}

	tx.mu.Lock()
	defer tx.mu.Unlock()
	return tx.state
}

// Request returns the request that created the transaction, with the timer override header detached.
func (tx *ClientTransaction) Request() *Request {
	if tx == nil {
		return nil
	}
	return tx.req
}

// Context returns the transaction context.
// The transaction can be retrieved from it with [ClientTransactionFromContext].
func (tx *ClientTransaction) Context() context.Context {
	if tx == nil {
		return context.Background()
	}
	return tx.ctx
}

// FinalResponse returns the final response accepted by the transaction or nil.
func (tx *ClientTransaction) FinalResponse() *Response {
	if tx == nil {
		return nil
	}

	tx.mu.Lock()
	defer tx.mu.Unlock()
	return tx.finalRes
}

// LastResponse returns the most recent response accepted by the transaction,
// including provisional responses and retransmissions.
func (tx *ClientTransaction) LastResponse() *Response {
	if tx == nil {
		return nil
	}

	tx.mu.Lock()
	defer tx.mu.Unlock()
	return tx.lastRes
}

// Hop returns the next hop used for (re)transmissions.
func (tx *ClientTransaction) Hop() Hop {
	if tx == nil {
		return Hop{}
	}

	tx.mu.Lock()
	defer tx.mu.Unlock()
	return tx.hop
}

// SetHop sets the next hop used for (re)transmissions.
// The hop can be set only once. If it is not set before the transaction is started,
// it is derived from the request by [StaticHopResolver].
func (tx *ClientTransaction) SetHop(hop Hop) error {
	if !hop.IsValid() {
		return errtrace.Wrap(NewInvalidArgumentError(fmt.Sprintf("invalid hop %q", hop)))
	}

	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.hopSet {
		return errtrace.Wrap(errorutil.NewWrapperError(ErrActionNotAllowed, "hop is already set"))
	}
	tx.hop, tx.hopSet = hop, true
	return nil
}

// Done returns a channel that is closed when the transaction is terminated.
func (tx *ClientTransaction) Done() <-chan struct{} { return tx.done }

// OnStateChanged registers a callback to be called on each state transition of the transaction.
// Callbacks are called with the transaction context outside of the transaction lock.
// The callback can be removed by calling the returned function.
func (tx *ClientTransaction) OnStateChanged(fn TransactionStateHandler) (remove func()) {
	return tx.onState.Add(fn)
}

// OnReclaim registers a callback to be called when the reflection period
// that follows the transaction termination is over.
func (tx *ClientTransaction) OnReclaim(fn TransactionReclaimHandler) (remove func()) {
	return tx.onReclaim.Add(fn)
}

// ProcessRequest passes a request to the transaction.
//
// The first call with the request that created the transaction sends it to the transport
// and arms the timers. On INVITE transactions, an ACK generated by the application
// for a non-2xx final response is sent to the transport and moves the transaction to the completed state.
// Any other request is rejected with [ErrActionNotAllowed].
func (tx *ClientTransaction) ProcessRequest(ctx context.Context, req *Request) error {
	if req == nil {
		return errtrace.Wrap(NewInvalidArgumentError("invalid request"))
	}

	tx.mu.Lock()
	err := tx.processRequest(ctx, req)
	tx.mu.Unlock()

	tx.deliver()
	return errtrace.Wrap(err)
}

func (tx *ClientTransaction) processRequest(ctx context.Context, req *Request) error {
	if tx.state == TransactionStateTerminated {
		return errtrace.Wrap(ErrTransactionTerminated)
	}

	if req.Method.Equal(RequestMethodAck) {
		if tx.typ != TransactionTypeClientInvite || !tx.started {
			return errtrace.Wrap(errorutil.NewWrapperError(ErrActionNotAllowed, "unexpected ACK request"))
		}
		if !tx.handle(ctx, txInput{evt: txEvtAppAck, req: req}) {
			return errtrace.Wrap(errorutil.NewWrapperError(ErrActionNotAllowed,
				fmt.Sprintf("ACK request in state %q", tx.state),
			))
		}
		return nil
	}

	if tx.started {
		return errtrace.Wrap(errorutil.NewWrapperError(ErrActionNotAllowed, "request is already sent"))
	}
	key, err := ClientTransactionKeyFromRequest(req)
	if err != nil {
		return errtrace.Wrap(err)
	}
	if !tx.key.Equal(key) {
		return errtrace.Wrap(ErrMessageNotMatched)
	}

	if !tx.hopSet {
		hop, err := StaticHopResolver{}.ResolveHop(ctx, tx.req)
		if err != nil {
			return errtrace.Wrap(err)
		}
		tx.hop, tx.hopSet = hop, true
	}

	tx.started = true
	tx.handle(ctx, txInput{evt: txEvtStart})
	return nil
}

// ProcessResponse passes a response received by the transport to the transaction.
// The response must match the transaction as defined in RFC 3261 Section 17.1.3.
func (tx *ClientTransaction) ProcessResponse(ctx context.Context, res *Response) error {
	key, err := ClientTransactionKeyFromResponse(res)
	if err != nil {
		return errtrace.Wrap(err)
	}
	if !tx.key.Equal(key) {
		return errtrace.Wrap(ErrMessageNotMatched)
	}

	var evt txEvent
	switch {
	case res.Status.IsProvisional():
		evt = txEvtRecv1xx
	case res.Status.IsSuccessful():
		evt = txEvtRecv2xx
	default:
		evt = txEvtRecv300699
	}

	tx.mu.Lock()
	switch {
	case tx.state == TransactionStateTerminated:
		err = errtrace.Wrap(ErrTransactionTerminated)
	case !tx.started:
		err = errtrace.Wrap(errorutil.NewWrapperError(ErrActionNotAllowed, "request is not sent yet"))
	default:
		tx.handle(ctx, txInput{evt: evt, res: res})
	}
	tx.mu.Unlock()

	tx.deliver()
	return err
}

// Cancel arms the CANCEL guard timer of an INVITE transaction.
// If the transaction gets no final response before the timer fires,
// the transaction user is notified with a timeout and the transaction is destroyed.
// Repeated calls keep the first armed timer.
func (tx *ClientTransaction) Cancel(ctx context.Context) error {
	if tx.typ != TransactionTypeClientInvite {
		return errtrace.Wrap(ErrMethodNotAllowed)
	}

	var err error
	tx.mu.Lock()
	switch {
	case tx.state == TransactionStateTerminated:
		err = errtrace.Wrap(ErrTransactionTerminated)
	case !tx.started || tx.state == TransactionStateCompleted:
		err = errtrace.Wrap(errorutil.NewWrapperError(ErrActionNotAllowed,
			fmt.Sprintf("cancel in state %q", tx.state),
		))
	default:
		tx.handle(ctx, txInput{evt: txEvtCancel})
	}
	tx.mu.Unlock()

	tx.deliver()
	return err
}

// Destroy terminates the transaction.
// It stops all timers, moves the transaction to the terminated state and arms the reflection timer,
// after which the reclaim callbacks are called.
// Subsequent calls are no-op.
func (tx *ClientTransaction) Destroy(ctx context.Context) {
	tx.mu.Lock()
	tx.handle(ctx, txInput{evt: txEvtTerminate})
	tx.mu.Unlock()

	tx.deliver()
}

// Graph returns the lifecycle of the transaction in DOT format.
func (tx *ClientTransaction) Graph() string { return tx.fsm.ToGraph() }

// LogValue implements [slog.LogValuer].
func (tx *ClientTransaction) LogValue() slog.Value {
	if tx == nil {
		return slog.Value{}
	}
	return slog.GroupValue(
		slog.Any("key", tx.key),
		slog.Any("type", tx.typ),
	)
}

func (tx *ClientTransaction) env() txEnv {
	return txEnv{
		reliable:    tx.reliable,
		hasFinal:    tx.finalRes != nil,
		cancelArmed: tx.timers[timerCancel].tmr != nil,
	}
}

// handle runs a transition under the transaction lock.
// It reports whether the event applied to the current state.
func (tx *ClientTransaction) handle(ctx context.Context, in txInput) bool {
	from := tx.state
	to, acts := tx.transition(from, in.evt, tx.env())
	if to == from && len(acts) == 0 {
		tx.log.LogAttrs(ctx, slog.LevelDebug,
			"event ignored",
			slog.Any("transaction", tx),
			slog.Any("event", in.evt),
			slog.Any("state", from),
		)
		return false
	}

	if to != from {
		if err := tx.fsm.FireCtx(ctx, to); err != nil {
			panic(fmt.Errorf("fire %q in state %q: %w", in.evt, from, err))
		}
	}

	for _, act := range acts {
		if err := tx.exec(ctx, act, in); err != nil {
			tx.log.LogAttrs(ctx, slog.LevelWarn,
				"transport failure",
				slog.Any("transaction", tx),
				slog.Any("action", act),
				slog.Any("error", err),
			)
			tx.handle(ctx, txInput{evt: txEvtTranspErr, err: err})
			break
		}
	}
	return true
}

// exec runs a single action. Only send actions can fail.
func (tx *ClientTransaction) exec(ctx context.Context, act txAction, in txInput) error {
	switch act {
	case actSendReq:
		return errtrace.Wrap(tx.sendReq(ctx, tx.req))
	case actSendAck:
		ack, err := tx.buildAck()
		if err != nil {
			tx.log.LogAttrs(ctx, slog.LevelWarn,
				"failed to build ACK request",
				slog.Any("transaction", tx),
				slog.Any("error", err),
			)
			return nil
		}
		return errtrace.Wrap(tx.sendReq(ctx, ack))
	case actSendAppAck:
		return errtrace.Wrap(tx.sendReq(ctx, in.req))
	case actArmA:
		tx.armTimer(ctx, timerA, tx.rtxIntvl)
	case actDoubleA:
		tx.rtxIntvl *= 2
	case actStopA:
		tx.stopTimer(ctx, timerA)
	case actArmB:
		tx.armTimer(ctx, timerB, tx.timings.b)
	case actStopB:
		tx.stopTimer(ctx, timerB)
	case actArmD:
		tx.armTimer(ctx, timerD, tx.timings.d)
	case actArmE:
		tx.armTimer(ctx, timerE, tx.rtxIntvl)
	case actBackoffE:
		tx.rtxIntvl = max(tx.rtxIntvl, min(2*tx.rtxIntvl, tx.timings.t2))
	case actCapE:
		tx.rtxIntvl = max(tx.rtxIntvl, tx.timings.t2)
	case actStopE:
		tx.stopTimer(ctx, timerE)
	case actArmF:
		tx.armTimer(ctx, timerF, tx.timings.f)
	case actStopF:
		tx.stopTimer(ctx, timerF)
	case actArmK:
		tx.armTimer(ctx, timerK, tx.timings.k)
	case actArmCancel:
		tx.armTimer(ctx, timerCancel, tx.timings.cancel)
	case actStopCancel:
		tx.stopTimer(ctx, timerCancel)
	case actAccept:
		tx.lastRes = in.res
	case actSetFinal:
		tx.finalRes = in.res
	case actPassRes:
		tx.sendResToTU(ctx, in.res)
	case actNotifyTimeout:
		tx.notifyTimeoutToTU(ctx, in.evt)
	case actNotifyTranspErr:
		tx.notifyRequestErrorToTU(ctx, in.err)
	case actDestroy:
		tx.destroy(ctx)
	default:
		panic(fmt.Errorf("unexpected action %q", act))
	}
	return nil
}

func (tx *ClientTransaction) sendReq(ctx context.Context, req *Request) error {
	tx.log.LogAttrs(ctx, slog.LevelDebug,
		"send request",
		slog.Any("transaction", tx),
		slog.Any("hop", tx.hop),
		slog.Any("request", req),
	)

	if err := tx.tp.SendRequest(ctx, tx.hop, req); err != nil {
		return errtrace.Wrap(errorutil.NewWrapperError(ErrTransportFailure,
			fmt.Errorf("send %q request to %s: %w", req.Method, tx.hop, err),
		))
	}
	return nil
}

func (tx *ClientTransaction) sendResToTU(ctx context.Context, res *Response) {
	tx.log.LogAttrs(ctx, slog.LevelDebug, "pass response", slog.Any("transaction", tx), slog.Any("response", res))

	tx.enqueueEvent(&TransactionEvent{
		Key:      tx.key,
		Type:     TransactionEventResponse,
		Response: res,
	})
}

func (tx *ClientTransaction) notifyTimeoutToTU(ctx context.Context, evt txEvent) {
	tx.log.LogAttrs(ctx, slog.LevelDebug, "transaction timed out", slog.Any("transaction", tx), slog.Any("event", evt))

	tx.enqueueEvent(&TransactionEvent{
		Key:  tx.key,
		Type: TransactionEventTimeout,
		Err:  errorutil.NewWrapperError(ErrTransactionTimedOut, string(evt)),
	})
}

// notifyRequestErrorToTU passes a locally built 503 response to the transaction user as if it was received.
func (tx *ClientTransaction) notifyRequestErrorToTU(ctx context.Context, cause error) {
	res, err := NewResponseFromRequest(tx.req, ResponseStatusServiceUnavailable, "")
	if err != nil {
		tx.log.LogAttrs(ctx, slog.LevelWarn,
			"failed to build response on transport failure",
			slog.Any("transaction", tx),
			slog.Any("error", err),
		)
		return
	}
	if cause == nil {
		cause = ErrTransportFailure
	}

	tx.log.LogAttrs(ctx, slog.LevelDebug, "pass synthesized response", slog.Any("transaction", tx), slog.Any("response", res))

	tx.enqueueEvent(&TransactionEvent{
		Key:         tx.key,
		Type:        TransactionEventResponse,
		Response:    res,
		Synthesized: true,
		Err:         cause,
	})
}

func (tx *ClientTransaction) destroy(ctx context.Context) {
	if tx.destroyed {
		return
	}
	tx.destroyed = true

	for kind := range timerReflect {
		tx.stopTimer(ctx, kind)
	}
	if tx.state != TransactionStateTerminated {
		if err := tx.fsm.FireCtx(ctx, TransactionStateTerminated); err != nil {
			panic(fmt.Errorf("fire %q in state %q: %w", txEvtTerminate, tx.state, err))
		}
	}
	close(tx.done)

	tx.log.LogAttrs(ctx, slog.LevelDebug, "transaction destroyed", slog.Any("transaction", tx))

	tx.armTimer(ctx, timerReflect, tx.timings.reflect)
}

func (tx *ClientTransaction) armTimer(ctx context.Context, kind txTimerKind, d time.Duration) {
	tx.stopTimer(ctx, kind)

	seq := timerSeq.Add(1)
	key, lookup := tx.key, tx.lookup
	tmr := tx.sched.AfterFunc(d, func() {
		if tx, ok := lookup(key); ok {
			tx.onTimer(kind, seq)
		}
	})
	tx.timers[kind] = txTimer{tmr, seq}

	tx.log.LogAttrs(ctx, slog.LevelDebug,
		kind.String()+" started",
		slog.Any("transaction", tx),
		slog.Duration("duration", d),
		slog.Time("expires_at", time.Now().Add(tmr.Left())),
	)
}

func (tx *ClientTransaction) stopTimer(ctx context.Context, kind txTimerKind) {
	t := tx.timers[kind]
	tx.timers[kind] = txTimer{}
	if t.tmr != nil && t.tmr.Stop() {
		tx.log.LogAttrs(ctx, slog.LevelDebug, kind.String()+" stopped", slog.Any("transaction", tx))
	}
}

func (tx *ClientTransaction) onTimer(kind txTimerKind, seq uint64) {
	tx.mu.Lock()
	if t := tx.timers[kind]; t.tmr == nil || t.seq != seq {
		tx.mu.Unlock()
		tx.log.LogAttrs(tx.ctx, slog.LevelDebug, "stale "+kind.String()+" ignored", slog.Any("transaction", tx))
		return
	}
	tx.timers[kind] = txTimer{}

	tx.log.LogAttrs(tx.ctx, slog.LevelDebug, kind.String()+" expired", slog.Any("transaction", tx))

	if kind == timerReflect {
		tx.mu.Unlock()
		tx.reclaim()
		return
	}

	tx.handle(tx.ctx, txInput{evt: txTimerEvents[kind]})
	tx.mu.Unlock()

	tx.deliver()
}

func (tx *ClientTransaction) reclaim() {
	tx.log.LogAttrs(tx.ctx, slog.LevelDebug, "transaction reclaimed", slog.Any("transaction", tx))

	for fn := range tx.onReclaim.All() {
		fn(tx.ctx, tx)
	}
}

func (tx *ClientTransaction) onTransitioned(ctx context.Context, tr stateless.Transition) {
	from := tr.Source.(TransactionState)    //nolint:forcetypeassert
	to := tr.Destination.(TransactionState) //nolint:forcetypeassert

	tx.log.LogAttrs(ctx, slog.LevelDebug,
		"transaction state changed",
		slog.Any("transaction", tx),
		slog.Any("from", from),
		slog.Any("to", to),
	)

	for fn := range tx.onState.All() {
		tx.pending.Append(func() { fn(tx.ctx, from, to) })
	}
}

func (tx *ClientTransaction) enqueueEvent(evt *TransactionEvent) {
	tx.pending.Append(func() { tx.tu.Deliver(tx.ctx, evt) })
}

// deliver runs pending notifications in order on the calling goroutine.
// Only one goroutine delivers at a time; others leave their notifications to it.
func (tx *ClientTransaction) deliver() {
	for !tx.pending.IsEmpty() {
		if !tx.deliverMu.TryLock() {
			return
		}
		for {
			fn, ok := tx.pending.PopFirst()
			if !ok {
				break
			}
			fn()
		}
		tx.deliverMu.Unlock()
	}
}

// ClientTransactionSnapshot is a point-in-time view of a client transaction.
type ClientTransactionSnapshot struct {
	// Time is the snapshot timestamp.
	Time time.Time `json:"time"`
	// Type is the transaction type.
	Type TransactionType `json:"type"`
	// State is the transaction state.
	State TransactionState `json:"state"`
	// Key is the transaction key.
	Key ClientTransactionKey `json:"key"`
	// Hop is the next hop of the transaction.
	Hop Hop `json:"hop,omitzero"`
	// RetransmitInterval is the current interval of timer A or E.
	RetransmitInterval time.Duration `json:"retransmit_interval"`
	// Request is the request that created the transaction.
	Request *Request `json:"-"`
	// FinalResponse is the final response accepted by the transaction.
	FinalResponse *Response `json:"-"`
	// LastResponse is the most recent response accepted by the transaction.
	LastResponse *Response `json:"-"`

	TimerA       *TimerSnapshot `json:"timer_a,omitempty"`
	TimerB       *TimerSnapshot `json:"timer_b,omitempty"`
	TimerD       *TimerSnapshot `json:"timer_d,omitempty"`
	TimerE       *TimerSnapshot `json:"timer_e,omitempty"`
	TimerF       *TimerSnapshot `json:"timer_f,omitempty"`
	TimerK       *TimerSnapshot `json:"timer_k,omitempty"`
	TimerCancel  *TimerSnapshot `json:"timer_cancel,omitempty"`
	TimerReflect *TimerSnapshot `json:"timer_reflect,omitempty"`
}

// Snapshot returns a snapshot of the transaction.
func (tx *ClientTransaction) Snapshot() *ClientTransactionSnapshot {
	if tx == nil {
		return nil
	}

	tx.mu.Lock()
	defer tx.mu.Unlock()

	snap := func(kind txTimerKind) *TimerSnapshot {
		if t := tx.timers[kind].tmr; t != nil {
			return t.Snapshot()
		}
		return nil
	}
	return &ClientTransactionSnapshot{
		Time:               time.Now(),
		Type:               tx.typ,
		State:              tx.state,
		Key:                tx.key,
		Hop:                tx.hop,
		RetransmitInterval: tx.rtxIntvl,
		Request:            tx.req,
		FinalResponse:      tx.finalRes,
		LastResponse:       tx.lastRes,
		TimerA:             snap(timerA),
		TimerB:             snap(timerB),
		TimerD:             snap(timerD),
		TimerE:             snap(timerE),
		TimerF:             snap(timerF),
		TimerK:             snap(timerK),
		TimerCancel:        snap(timerCancel),
		TimerReflect:       snap(timerReflect),
	}
}

// MarshalJSON implements [json.Marshaler].
func (tx *ClientTransaction) MarshalJSON() ([]byte, error) {
	return errtrace.Wrap2(json.Marshal(tx.Snapshot()))
}
