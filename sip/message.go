package sip

import (
	"fmt"
	"log/slog"
	"strconv"

	"braces.dev/errtrace"

	"github.com/ghettovoice/siptx/header"
	"github.com/ghettovoice/siptx/internal/util"
	"github.com/ghettovoice/siptx/uri"
)

// Request represents an outgoing SIP request.
type Request struct {
	Method  RequestMethod
	URI     *uri.SIP
	Headers Headers
	Body    []byte
	// Loopback marks a request that must be delivered over the loopback interface.
	Loopback bool
}

// Clone returns a deep copy of the request.
func (req *Request) Clone() *Request {
	if req == nil {
		return nil
	}
	req2 := *req
	req2.URI = req.URI.Clone()
	req2.Headers = req.Headers.Clone()
	if req.Body != nil {
		req2.Body = append([]byte(nil), req.Body...)
	}
	return &req2
}

// Transport returns the transport protocol of the topmost Via.
func (req *Request) Transport() TransportProto {
	if req == nil {
		return ""
	}
	via, ok := req.Headers.FirstVia()
	if !ok {
		return ""
	}
	return TransportProto(via.Transport).ToUpper()
}

// IsReliable reports whether the request is sent over a reliable transport.
func (req *Request) IsReliable() bool { return req.Transport().IsReliable() }

// Validate checks the presence of mandatory headers.
// The topmost Via must carry a branch and the CSeq method must match the request method.
func (req *Request) Validate() error {
	if req == nil {
		return errtrace.Wrap(newInvalidMessageError("nil request"))
	}
	if !req.Method.IsValid() {
		return errtrace.Wrap(newInvalidMessageError("empty method"))
	}
	if !req.URI.IsValid() {
		return errtrace.Wrap(newInvalidMessageError("invalid Request-URI"))
	}
	if err := validateHeaders(req.Headers); err != nil {
		return errtrace.Wrap(err)
	}
	if cseq, _ := req.Headers.CSeq(); !RequestMethod(cseq.Method).Equal(req.Method) {
		return errtrace.Wrap(newInvalidMessageError(
			fmt.Sprintf("CSeq method %q does not match request method %q", cseq.Method, req.Method),
		))
	}
	return nil
}

func validateHeaders(hs Headers) error {
	via, ok := hs.FirstVia()
	if !ok {
		return errtrace.Wrap(newInvalidMessageError("missing Via header"))
	}
	if via.Branch() == "" {
		return errtrace.Wrap(newInvalidMessageError("missing Via branch"))
	}
	if _, ok := hs.From(); !ok {
		return errtrace.Wrap(newInvalidMessageError("missing From header"))
	}
	if _, ok := hs.To(); !ok {
		return errtrace.Wrap(newInvalidMessageError("missing To header"))
	}
	if _, ok := hs.CallID(); !ok {
		return errtrace.Wrap(newInvalidMessageError("missing Call-ID header"))
	}
	if _, ok := hs.CSeq(); !ok {
		return errtrace.Wrap(newInvalidMessageError("missing CSeq header"))
	}
	return nil
}

// String renders the request start line and headers.
func (req *Request) String() string {
	if req == nil {
		return ""
	}

	sb := util.GetStringBuilder()
	defer util.FreeStringBuilder(sb)
	sb.WriteString(string(req.Method.ToUpper()))
	sb.WriteByte(' ')
	sb.WriteString(req.URI.String())
	sb.WriteString(" SIP/2.0\r\n")
	sb.WriteString(req.Headers.render())
	sb.WriteString("Content-Length: ")
	sb.WriteString(strconv.Itoa(len(req.Body)))
	sb.WriteString("\r\n\r\n")
	sb.Write(req.Body)
	return sb.String()
}

// LogValue implements [slog.LogValuer].
func (req *Request) LogValue() slog.Value {
	if req == nil {
		return slog.Value{}
	}

	attrs := []slog.Attr{
		slog.Any("method", req.Method),
		slog.String("uri", req.URI.String()),
	}
	if via, ok := req.Headers.FirstVia(); ok {
		attrs = append(attrs, slog.String("via", via.String()))
	}
	if callID, ok := req.Headers.CallID(); ok {
		attrs = append(attrs, slog.String("call_id", string(callID)))
	}
	if cseq, ok := req.Headers.CSeq(); ok {
		attrs = append(attrs, slog.String("cseq", cseq.String()))
	}
	return slog.GroupValue(attrs...)
}

// Response represents an inbound SIP response.
type Response struct {
	Status  ResponseStatus
	Reason  string
	Headers Headers
	Body    []byte
}

// Clone returns a deep copy of the response.
func (res *Response) Clone() *Response {
	if res == nil {
		return nil
	}
	res2 := *res
	res2.Headers = res.Headers.Clone()
	if res.Body != nil {
		res2.Body = append([]byte(nil), res.Body...)
	}
	return &res2
}

// Validate checks the status code and the presence of mandatory headers.
func (res *Response) Validate() error {
	if res == nil {
		return errtrace.Wrap(newInvalidMessageError("nil response"))
	}
	if !res.Status.IsValid() {
		return errtrace.Wrap(newInvalidMessageError(fmt.Sprintf("invalid status %d", res.Status)))
	}
	return errtrace.Wrap(validateHeaders(res.Headers))
}

// String renders the response status line and headers.
func (res *Response) String() string {
	if res == nil {
		return ""
	}

	sb := util.GetStringBuilder()
	defer util.FreeStringBuilder(sb)
	sb.WriteString("SIP/2.0 ")
	sb.WriteString(res.Status.String())
	sb.WriteByte(' ')
	sb.WriteString(res.Reason)
	sb.WriteString("\r\n")
	sb.WriteString(res.Headers.render())
	sb.WriteString("Content-Length: ")
	sb.WriteString(strconv.Itoa(len(res.Body)))
	sb.WriteString("\r\n\r\n")
	sb.Write(res.Body)
	return sb.String()
}

// LogValue implements [slog.LogValuer].
func (res *Response) LogValue() slog.Value {
	if res == nil {
		return slog.Value{}
	}

	attrs := []slog.Attr{
		slog.Any("status", res.Status),
		slog.String("reason", res.Reason),
	}
	if via, ok := res.Headers.FirstVia(); ok {
		attrs = append(attrs, slog.String("via", via.String()))
	}
	if cseq, ok := res.Headers.CSeq(); ok {
		attrs = append(attrs, slog.String("cseq", cseq.String()))
	}
	return slog.GroupValue(attrs...)
}

const tagLen = 16

// NewResponseFromRequest builds a response to the request as defined in RFC 3261 Section 8.2.6.
// Via, From, To, Call-ID and CSeq are copied from the request.
// A To tag is generated for non-100 responses if the request has none.
// Empty reason is replaced with the default reason phrase of the status.
func NewResponseFromRequest(req *Request, status ResponseStatus, reason string) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, errtrace.Wrap(NewInvalidArgumentError(err))
	}
	if !status.IsValid() {
		return nil, errtrace.Wrap(NewInvalidArgumentError(fmt.Sprintf("invalid status %d", status)))
	}
	if reason == "" {
		reason = status.Reason()
	}

	hdrs := make(Headers, 5)
	for _, h := range req.Headers.Get("Via") {
		hdrs.Append(h.Clone())
	}
	from, _ := req.Headers.From()
	callID, _ := req.Headers.CallID()
	cseq, _ := req.Headers.CSeq()
	to, _ := req.Headers.To()
	to = to.Clone().(*header.To) //nolint:forcetypeassert
	if _, ok := to.Tag(); !ok && status != ResponseStatusTrying {
		if to.Params == nil {
			to.Params = make(header.Values)
		}
		to.Params.Set("tag", util.RandString(tagLen))
	}
	hdrs.Append(from.Clone(), to, callID, cseq.Clone())

	return &Response{
		Status:  status,
		Reason:  reason,
		Headers: hdrs,
	}, nil
}
