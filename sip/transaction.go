package sip

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"braces.dev/errtrace"

	"github.com/ghettovoice/siptx/internal/types"
	"github.com/ghettovoice/siptx/internal/util"
)

// TransactionType is a kind of client transaction.
type TransactionType string

// Transaction types.
const (
	TransactionTypeClientInvite    TransactionType = "client_invite"
	TransactionTypeClientNonInvite TransactionType = "client_non_invite"
)

// TransactionState is a state of a client transaction.
type TransactionState string

// Transaction states.
const (
	// TransactionStateCalling is the initial state of INVITE transactions.
	TransactionStateCalling TransactionState = "calling"
	// TransactionStateTrying is the initial state of non-INVITE transactions.
	TransactionStateTrying     TransactionState = "trying"
	TransactionStateProceeding TransactionState = "proceeding"
	TransactionStateCompleted  TransactionState = "completed"
	TransactionStateTerminated TransactionState = "terminated"
)

// TransactionStateHandler is called on each state transition of a transaction.
type TransactionStateHandler = func(ctx context.Context, from, to TransactionState)

// ClientTransactionKey is the key of a client transaction.
// It is used for matching responses to the request that created the transaction
// as described in RFC 3261 Section 17.1.3.
type ClientTransactionKey struct {
	// Branch parameter of the topmost Via header field.
	Branch string `json:"branch"`
	// Method of the request that created the transaction.
	Method RequestMethod `json:"method"`
}

var zeroClnTxKey ClientTransactionKey

// ClientTransactionKeyFromRequest builds the key of the request.
func ClientTransactionKeyFromRequest(req *Request) (ClientTransactionKey, error) {
	if err := req.Validate(); err != nil {
		return zeroClnTxKey, errtrace.Wrap(NewInvalidArgumentError(err))
	}
	via, _ := req.Headers.FirstVia()
	return ClientTransactionKey{Branch: via.Branch(), Method: req.Method.ToUpper()}, nil
}

// ClientTransactionKeyFromResponse builds the key of the response from the topmost Via branch and the CSeq method.
func ClientTransactionKeyFromResponse(res *Response) (ClientTransactionKey, error) {
	if err := res.Validate(); err != nil {
		return zeroClnTxKey, errtrace.Wrap(NewInvalidArgumentError(err))
	}
	via, _ := res.Headers.FirstVia()
	cseq, _ := res.Headers.CSeq()
	return ClientTransactionKey{Branch: via.Branch(), Method: RequestMethod(cseq.Method).ToUpper()}, nil
}

// Equal checks whether the key is equal to another key.
func (k ClientTransactionKey) Equal(other ClientTransactionKey) bool {
	return k.Branch == other.Branch && k.Method.Equal(other.Method)
}

// IsValid checks whether the key is valid.
func (k ClientTransactionKey) IsValid() bool { return k.Branch != "" && k.Method != "" }

// IsZero checks whether the key is zero.
func (k ClientTransactionKey) IsZero() bool { return k == zeroClnTxKey }

// String returns the key in the "branch/METHOD" form.
func (k ClientTransactionKey) String() string { return k.Branch + "/" + string(util.UCase(k.Method)) }

// Format implements [fmt.Formatter].
func (k ClientTransactionKey) Format(f fmt.State, verb rune) {
	switch verb {
	case 's', 'v':
		if f.Flag('+') || f.Flag('#') {
			type hideMethods ClientTransactionKey
			type ClientTransactionKey hideMethods
			fmt.Fprintf(f, fmt.FormatString(f, verb), ClientTransactionKey(k))
			return
		}
		fmt.Fprint(f, k.String())
	case 'q':
		fmt.Fprint(f, strconv.Quote(k.String()))
	default:
		fmt.Fprintf(f, "%%!%c(sip.ClientTransactionKey=%s)", verb, k.String())
	}
}

// LogValue implements [slog.LogValuer].
func (k ClientTransactionKey) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("branch", k.Branch),
		slog.Any("method", k.Method),
	)
}

const clnTransactCtxKey types.ContextKey = "client_transaction"

// ClientTransactionFromContext returns the transaction stored in the context passed
// to [TransactionUser.Deliver] and state handlers.
func ClientTransactionFromContext(ctx context.Context) (*ClientTransaction, bool) {
	tx, ok := ctx.Value(clnTransactCtxKey).(*ClientTransaction)
	return tx, ok
}
