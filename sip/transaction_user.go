package sip

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ghettovoice/siptx/internal/types"
)

// TransactionEventType is a type of [TransactionEvent].
type TransactionEventType string

// Transaction event types.
const (
	// TransactionEventResponse carries a received or synthesized response.
	TransactionEventResponse TransactionEventType = "response"
	// TransactionEventTimeout reports that no final response arrived in time.
	TransactionEventTimeout TransactionEventType = "timeout"
)

// TransactionEvent is an outcome of a client transaction reported to the transaction user.
type TransactionEvent struct {
	// Key is the key of the transaction that produced the event.
	Key ClientTransactionKey
	// Type is the event type.
	Type TransactionEventType
	// Response is the response passed up.
	// It is nil for timeout events.
	Response *Response
	// Synthesized is true for the 503 response built locally after a transport failure.
	Synthesized bool
	// Err is the cause of a timeout or a synthesized response.
	Err error
}

// LogValue implements [slog.LogValuer].
func (evt *TransactionEvent) LogValue() slog.Value {
	if evt == nil {
		return slog.Value{}
	}

	attrs := []slog.Attr{
		slog.Any("key", evt.Key),
		slog.Any("type", evt.Type),
	}
	if evt.Response != nil {
		attrs = append(attrs, slog.Any("response", evt.Response))
	}
	if evt.Synthesized {
		attrs = append(attrs, slog.Bool("synthesized", true))
	}
	if evt.Err != nil {
		attrs = append(attrs, slog.Any("error", evt.Err))
	}
	return slog.GroupValue(attrs...)
}

// TransactionUser is the upper layer receiving outcomes of client transactions.
// Deliver must not block for long: it is called on the goroutine that drove the transaction.
type TransactionUser interface {
	Deliver(ctx context.Context, evt *TransactionEvent)
}

// TransactionUserFunc is an adapter to allow the use of ordinary functions as [TransactionUser].
type TransactionUserFunc func(ctx context.Context, evt *TransactionEvent)

// Deliver implements [TransactionUser].
func (fn TransactionUserFunc) Deliver(ctx context.Context, evt *TransactionEvent) { fn(ctx, evt) }

type queuedEvent struct {
	ctx context.Context //nolint:containedctx
	evt *TransactionEvent
}

// QueuedTransactionUser decouples event delivery from transactions.
// Events are buffered and passed to the wrapped user on a dedicated goroutine in arrival order.
type QueuedTransactionUser struct {
	tu    TransactionUser
	queue types.Deque[queuedEvent]
	wake  chan struct{}
	done  chan struct{}
	once  sync.Once
	wg    sync.WaitGroup
}

// NewQueuedTransactionUser starts a worker goroutine delivering events to tu.
// Call [QueuedTransactionUser.Close] to stop it.
func NewQueuedTransactionUser(tu TransactionUser) *QueuedTransactionUser {
	q := &QueuedTransactionUser{
		tu:   tu,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	q.wg.Add(1)
	go q.serve()
	return q
}

// Deliver implements [TransactionUser].
// Events delivered after Close are dropped.
func (q *QueuedTransactionUser) Deliver(ctx context.Context, evt *TransactionEvent) {
	select {
	case <-q.done:
		return
	default:
	}

	q.queue.Append(queuedEvent{context.WithoutCancel(ctx), evt})
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *QueuedTransactionUser) serve() {
	defer q.wg.Done()
	for {
		for {
			item, ok := q.queue.PopFirst()
			if !ok {
				break
			}
			q.tu.Deliver(item.ctx, item.evt)
		}

		select {
		case <-q.wake:
		case <-q.done:
			for _, item := range q.queue.Drain() {
				q.tu.Deliver(item.ctx, item.evt)
			}
			return
		}
	}
}

// Close stops the worker after the buffered events are delivered.
func (q *QueuedTransactionUser) Close() error {
	q.once.Do(func() { close(q.done) })
	q.wg.Wait()
	return nil
}
