package sip

import (
	"context"
	"sync/atomic"
)

// TransactionStats holds client transaction counters.
type TransactionStats struct {
	// InviteClientTransactions is a number of active invite client transactions.
	InviteClientTransactions uint64 `json:"invite_client_transactions"`
	// NonInviteClientTransactions is a number of active non-invite client transactions.
	NonInviteClientTransactions uint64 `json:"non_invite_client_transactions"`
	// InviteClientTransactionsTotal is a total number of created invite client transactions.
	InviteClientTransactionsTotal uint64 `json:"invite_client_transactions_total"`
	// NonInviteClientTransactionsTotal is a total number of created non-invite client transactions.
	NonInviteClientTransactionsTotal uint64 `json:"non_invite_client_transactions_total"`
}

// StatsRecorder counts client transactions created by a [TransactionManager].
// A transaction is active until it enters the terminated state.
type StatsRecorder struct {
	invClnTxs,
	ninvClnTxs atomic.Int64

	invClnTxsTotal,
	ninvClnTxsTotal atomic.Uint64
}

// Report returns current transaction statistics.
func (rcdr *StatsRecorder) Report() TransactionStats {
	return TransactionStats{
		InviteClientTransactions:         clampToUint64(rcdr.invClnTxs.Load()),
		NonInviteClientTransactions:      clampToUint64(rcdr.ninvClnTxs.Load()),
		InviteClientTransactionsTotal:    rcdr.invClnTxsTotal.Load(),
		NonInviteClientTransactionsTotal: rcdr.ninvClnTxsTotal.Load(),
	}
}

func clampToUint64(value int64) uint64 {
	if value <= 0 {
		return 0
	}
	return uint64(value)
}

// BindTransactionManager starts counting transactions created by the manager.
func (rcdr *StatsRecorder) BindTransactionManager(txm *TransactionManager) (unbind func()) {
	return txm.OnNewClientTransaction(rcdr.handleNewClnTx)
}

func (rcdr *StatsRecorder) handleNewClnTx(_ context.Context, tx *ClientTransaction) {
	//nolint:exhaustive
	switch tx.Type() {
	case TransactionTypeClientInvite:
		rcdr.invClnTxs.Add(1)
		rcdr.invClnTxsTotal.Add(1)
	case TransactionTypeClientNonInvite:
		rcdr.ninvClnTxs.Add(1)
		rcdr.ninvClnTxsTotal.Add(1)
	}

	tx.OnStateChanged(func(_ context.Context, _, to TransactionState) {
		if to != TransactionStateTerminated {
			return
		}

		//nolint:exhaustive
		switch tx.Type() {
		case TransactionTypeClientInvite:
			rcdr.invClnTxs.Add(-1)
		case TransactionTypeClientNonInvite:
			rcdr.ninvClnTxs.Add(-1)
		}
	})
}
