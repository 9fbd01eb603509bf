package sip

import (
	"github.com/ghettovoice/siptx/header"
	"github.com/ghettovoice/siptx/internal/errorutil"
)

// Error represents a SIP error.
// See [errorutil.Error].
type Error = errorutil.Error

// Common errors.
const (
	ErrInvalidArgument        = errorutil.ErrInvalidArgument
	ErrActionNotAllowed Error = "action not allowed"
)

// Message errors.
const (
	ErrInvalidMessage    Error = "invalid message"
	ErrMethodNotAllowed  Error = "request method not allowed"
	ErrMessageNotMatched Error = "message not matched"
	ErrMalformedTimers         = header.ErrMalformedTimers
)

// Transaction errors.
const (
	ErrTransactionNotFound      Error = "transaction not found"
	ErrTransactionTimedOut      Error = "transaction timed out"
	ErrTransactionTerminated    Error = "transaction terminated"
	ErrTransactionManagerClosed Error = "transaction manager closed"
)

// Transport errors.
const (
	ErrTransportFailure Error = "transport failure"
	ErrHopNotResolved   Error = "hop not resolved"
)

// NewInvalidArgumentError creates a new error with [ErrInvalidArgument] or
// wraps provided error with [ErrInvalidArgument].
func NewInvalidArgumentError(args ...any) error {
	return errorutil.NewInvalidArgumentError(args...) //errtrace:skip
}

func newInvalidMessageError(args ...any) error {
	return errorutil.NewWrapperError(ErrInvalidMessage, args...) //errtrace:skip
}
