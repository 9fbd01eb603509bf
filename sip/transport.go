package sip

import "context"

// ClientTransport sends requests of client transactions.
type ClientTransport interface {
	// SendRequest sends the request to the hop.
	// Any returned error is treated by the transaction as a failed attempt.
	SendRequest(ctx context.Context, hop Hop, req *Request) error
}

// ClientTransportFunc is an adapter to allow the use of ordinary functions as [ClientTransport].
type ClientTransportFunc func(ctx context.Context, hop Hop, req *Request) error

// SendRequest implements [ClientTransport].
func (fn ClientTransportFunc) SendRequest(ctx context.Context, hop Hop, req *Request) error {
	return fn(ctx, hop, req) //errtrace:skip
}
