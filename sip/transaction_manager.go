package sip

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"braces.dev/errtrace"

	"github.com/ghettovoice/siptx/internal/errorutil"
	"github.com/ghettovoice/siptx/internal/syncutil"
	"github.com/ghettovoice/siptx/internal/timeutil"
	"github.com/ghettovoice/siptx/internal/types"
	"github.com/ghettovoice/siptx/log"
)

// TransactionManagerOptions are the options for a [TransactionManager].
type TransactionManagerOptions struct {
	// Timings is the SIP timing config used for new transactions.
	// If zero, the default SIP timing config is used.
	Timings TimingConfig
	// Scheduler arms the timers of new transactions.
	// If nil, wall-clock timers are used.
	Scheduler Scheduler
	// HopResolver locates the next hop of requests passed to [TransactionManager.Send].
	// If nil, [StaticHopResolver] is used.
	HopResolver HopResolver
	// Log is the logger.
	// If nil, the [log.Default] is used.
	Log *slog.Logger
}

func (o *TransactionManagerOptions) timings() TimingConfig {
	if o == nil {
		return defTimingCfg
	}
	return o.Timings
}

func (o *TransactionManagerOptions) scheduler() Scheduler {
	if o == nil || o.Scheduler == nil {
		return timeutil.RealScheduler{}
	}
	return o.Scheduler
}

func (o *TransactionManagerOptions) hopResolver() HopResolver {
	if o == nil || o.HopResolver == nil {
		return StaticHopResolver{}
	}
	return o.HopResolver
}

func (o *TransactionManagerOptions) log() *slog.Logger {
	if o == nil || o.Log == nil {
		return log.Default()
	}
	return o.Log
}

// ClientTransactionHandler is called on each client transaction created by a [TransactionManager].
type ClientTransactionHandler = func(ctx context.Context, tx *ClientTransaction)

// TransactionManager keeps the registry of client transactions.
// It routes responses received by the transport to matching transactions,
// and dispatches transaction timers by transaction key.
// Transactions are removed from the registry when their reflection period is over.
type TransactionManager struct {
	tp       ClientTransport
	tu       TransactionUser
	timings  TimingConfig
	sched    Scheduler
	hopRslvr HopResolver
	log      *slog.Logger
	clnTxs   *syncutil.ShardMap[ClientTransactionKey, *ClientTransaction]
	stats    StatsRecorder

	onNewClnTx types.CallbackManager[ClientTransactionHandler]

	closing   atomic.Bool
	closeOnce sync.Once
}

// NewTransactionManager creates a new [TransactionManager].
// Options are optional, if nil, default values are used (see [TransactionManagerOptions]).
func NewTransactionManager(
	tp ClientTransport,
	tu TransactionUser,
	opts *TransactionManagerOptions,
) (*TransactionManager, error) {
	if tp == nil {
		return nil, errtrace.Wrap(NewInvalidArgumentError("invalid transport"))
	}
	if tu == nil {
		return nil, errtrace.Wrap(NewInvalidArgumentError("invalid transaction user"))
	}

	txm := &TransactionManager{
		tp:       tp,
		tu:       tu,
		timings:  opts.timings(),
		sched:    opts.scheduler(),
		hopRslvr: opts.hopResolver(),
		log:      opts.log(),
		clnTxs:   syncutil.NewShardMap[ClientTransactionKey, *ClientTransaction](0),
	}
	txm.stats.BindTransactionManager(txm)
	return txm, nil
}

// NewClientTransaction creates a client transaction for the request and stores it in the registry.
// The transaction is not started, see [ClientTransaction.ProcessRequest].
// Zero fields of options are filled from the manager options.
func (txm *TransactionManager) NewClientTransaction(
	ctx context.Context,
	req *Request,
	opts *ClientTransactionOptions,
) (*ClientTransaction, error) {
	if txm.closing.Load() {
		return nil, errtrace.Wrap(ErrTransactionManagerClosed)
	}
	if req == nil {
		return nil, errtrace.Wrap(NewInvalidArgumentError("invalid request"))
	}

	var txOpts ClientTransactionOptions
	if opts != nil {
		txOpts = *opts
	}
	if txOpts.Timings.IsZero() {
		txOpts.Timings = txm.timings
	}
	if txOpts.Scheduler == nil {
		txOpts.Scheduler = txm.sched
	}
	if txOpts.Log == nil {
		txOpts.Log = txm.log
	}

	typ := TransactionTypeClientNonInvite
	if req.Method.Equal(RequestMethodInvite) {
		typ = TransactionTypeClientInvite
	} else if req.Method.Equal(RequestMethodAck) {
		return nil, errtrace.Wrap(NewInvalidArgumentError(ErrMethodNotAllowed))
	}

	tx, err := newClientTransaction(typ, req, txm.tp, txm.tu, &txOpts, txm.lookupClnTx)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	if _, loaded := txm.clnTxs.GetOrSet(tx.Key(), tx); loaded {
		return nil, errtrace.Wrap(NewInvalidArgumentError(fmt.Sprintf("transaction %q already exists", tx.Key())))
	}
	tx.OnReclaim(txm.reclaimClnTx)

	// Close could have taken its snapshot of the registry before the store
	if txm.closing.Load() {
		tx.Destroy(ctx)
		return nil, errtrace.Wrap(ErrTransactionManagerClosed)
	}

	txm.log.LogAttrs(ctx, slog.LevelDebug, "client transaction stored", slog.Any("transaction", tx))

	for fn := range txm.onNewClnTx.All() {
		fn(ctx, tx)
	}
	return tx, nil
}

// Send creates a client transaction for the request, resolves its next hop and starts it.
// If the hop cannot be resolved, the transaction is destroyed and an error wrapping [ErrHopNotResolved] is returned.
func (txm *TransactionManager) Send(ctx context.Context, req *Request) (*ClientTransaction, error) {
	tx, err := txm.NewClientTransaction(ctx, req, nil)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}

	hop, err := txm.hopRslvr.ResolveHop(ctx, tx.Request())
	if err == nil {
		err = tx.SetHop(hop)
	}
	if err != nil {
		tx.Destroy(ctx)
		return nil, errtrace.Wrap(errorutil.NewWrapperError(ErrHopNotResolved, err))
	}

	if err := tx.ProcessRequest(ctx, req); err != nil {
		tx.Destroy(ctx)
		return nil, errtrace.Wrap(err)
	}
	return tx, nil
}

// RecvResponse passes a response received by the transport to the matching client transaction.
// It returns [ErrTransactionNotFound] if no transaction matches the response.
func (txm *TransactionManager) RecvResponse(ctx context.Context, res *Response) error {
	key, err := ClientTransactionKeyFromResponse(res)
	if err != nil {
		return errtrace.Wrap(err)
	}

	tx, ok := txm.clnTxs.Get(key)
	if !ok {
		return errtrace.Wrap(errorutil.NewWrapperError(ErrTransactionNotFound, fmt.Sprintf("key %q", key)))
	}
	return errtrace.Wrap(tx.ProcessResponse(ctx, res))
}

// LoadClientTransaction returns the client transaction by key.
// Terminated transactions can be loaded until their reflection period is over.
func (txm *TransactionManager) LoadClientTransaction(
	_ context.Context,
	key ClientTransactionKey,
) (*ClientTransaction, error) {
	tx, ok := txm.clnTxs.Get(key)
	if !ok {
		return nil, errtrace.Wrap(ErrTransactionNotFound)
	}
	return tx, nil
}

// OnNewClientTransaction binds a callback to be called when a client transaction is created.
// The callback can be unbound by calling the returned unbind function.
func (txm *TransactionManager) OnNewClientTransaction(fn ClientTransactionHandler) (unbind func()) {
	return txm.onNewClnTx.Add(fn)
}

// Stats returns the transaction statistics of the manager.
func (txm *TransactionManager) Stats() TransactionStats { return txm.stats.Report() }

// Len returns the number of transactions in the registry.
func (txm *TransactionManager) Len() int { return txm.clnTxs.Size() }

// Close destroys all transactions and rejects new ones.
// Destroyed transactions stay in the registry until their reflection period is over.
func (txm *TransactionManager) Close(ctx context.Context) error {
	txm.closeOnce.Do(func() {
		txm.closing.Store(true)

		for _, tx := range txm.clnTxs.Items() {
			tx.Destroy(ctx)
		}

		txm.log.LogAttrs(ctx, slog.LevelDebug, "transaction manager closed")
	})
	return nil
}

func (txm *TransactionManager) lookupClnTx(key ClientTransactionKey) (*ClientTransaction, bool) {
	return txm.clnTxs.Get(key)
}

func (txm *TransactionManager) reclaimClnTx(ctx context.Context, tx *ClientTransaction) {
	if txm.clnTxs.CompareAndDel(tx.Key(), func(v *ClientTransaction) bool { return v == tx }) {
		txm.log.LogAttrs(ctx, slog.LevelDebug, "client transaction deleted", slog.Any("transaction", tx))
	}
}
