package sip

import (
	"braces.dev/errtrace"

	"github.com/ghettovoice/siptx/header"
	"github.com/ghettovoice/siptx/internal/errorutil"
)

const defMaxForwards header.MaxForwards = 70

// buildAck builds the ACK for a non-2xx final response as described in RFC 3261 Section 17.1.1.3.
// The ACK is built once and reused for retransmitted final responses.
func (tx *ClientTransaction) buildAck() (*Request, error) {
	if tx.ack != nil {
		return tx.ack, nil
	}
	if tx.finalRes == nil {
		return nil, errtrace.Wrap(errorutil.NewWrapperError(ErrActionNotAllowed, "no final response"))
	}

	via, ok := tx.req.Headers.FirstVia()
	if !ok {
		return nil, errtrace.Wrap(newInvalidMessageError("missing Via header"))
	}
	from, ok := tx.req.Headers.From()
	if !ok {
		return nil, errtrace.Wrap(newInvalidMessageError("missing From header"))
	}
	callID, ok := tx.req.Headers.CallID()
	if !ok {
		return nil, errtrace.Wrap(newInvalidMessageError("missing Call-ID header"))
	}
	cseq, ok := tx.req.Headers.CSeq()
	if !ok {
		return nil, errtrace.Wrap(newInvalidMessageError("missing CSeq header"))
	}
	to, ok := tx.finalRes.Headers.To()
	if !ok {
		return nil, errtrace.Wrap(newInvalidMessageError("missing To header in response"))
	}
	maxFwd, ok := tx.req.Headers.MaxForwards()
	if !ok {
		maxFwd = defMaxForwards
	}

	hdrs := make(Headers, 8)
	hdrs.Append(header.Via{via.Clone()})
	if route := tx.req.Headers.Route(); len(route) > 0 {
		hdrs.Append(route.Clone())
	}
	hdrs.Append(
		maxFwd,
		from.Clone(),
		to.Clone(),
		callID,
		&header.CSeq{SeqNum: cseq.SeqNum, Method: string(RequestMethodAck)},
	)
	for _, h := range tx.dest {
		hdrs.Append(h.Clone())
	}
	for _, h := range tx.po {
		hdrs.Append(h.Clone())
	}

	ack := &Request{
		Method:   RequestMethodAck,
		URI:      tx.req.URI.Clone(),
		Headers:  hdrs,
		Loopback: tx.req.Loopback,
	}
	if err := ack.Validate(); err != nil {
		return nil, errtrace.Wrap(err)
	}

	tx.ack = ack
	return ack, nil
}
