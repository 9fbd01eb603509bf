package testutil

import (
	"github.com/ghettovoice/siptx/header"
	"github.com/ghettovoice/siptx/sip"
	"github.com/ghettovoice/siptx/uri"
)

// NewRequest builds a valid outgoing request sent over the transport with the given branch.
func NewRequest(method sip.RequestMethod, transport sip.TransportProto, branch string) *sip.Request {
	hdrs := make(sip.Headers, 8)
	hdrs.Append(
		header.Via{{
			Proto:     "SIP/2.0",
			Transport: string(transport),
			Host:      "client.example.com",
			Port:      5060,
			Params:    make(header.Values).Set("branch", branch),
		}},
		header.MaxForwards(70),
		&header.From{
			DisplayName: "Alice",
			URI:         uri.MustParse("sip:alice@example.com"),
			Params:      make(header.Values).Set("tag", "a1b2c3"),
		},
		&header.To{URI: uri.MustParse("sip:bob@example.com")},
		header.CallID("call-"+branch),
		&header.CSeq{SeqNum: 1, Method: string(method)},
	)
	return &sip.Request{
		Method:  method,
		URI:     uri.MustParse("sip:bob@example.com"),
		Headers: hdrs,
	}
}

// NewResponse builds a response to the request.
// It panics if the request is invalid.
func NewResponse(req *sip.Request, status sip.ResponseStatus) *sip.Response {
	res, err := sip.NewResponseFromRequest(req, status, "")
	if err != nil {
		panic(err)
	}
	return res
}
