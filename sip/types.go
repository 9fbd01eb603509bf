package sip

import (
	"strconv"

	"github.com/ghettovoice/siptx/internal/util"
)

// RequestMethod represents a SIP request method.
type RequestMethod string

// Request methods.
const (
	RequestMethodInvite    RequestMethod = "INVITE"
	RequestMethodAck       RequestMethod = "ACK"
	RequestMethodBye       RequestMethod = "BYE"
	RequestMethodCancel    RequestMethod = "CANCEL"
	RequestMethodOptions   RequestMethod = "OPTIONS"
	RequestMethodRegister  RequestMethod = "REGISTER"
	RequestMethodInfo      RequestMethod = "INFO"
	RequestMethodMessage   RequestMethod = "MESSAGE"
	RequestMethodNotify    RequestMethod = "NOTIFY"
	RequestMethodPrack     RequestMethod = "PRACK"
	RequestMethodRefer     RequestMethod = "REFER"
	RequestMethodSubscribe RequestMethod = "SUBSCRIBE"
	RequestMethodUpdate    RequestMethod = "UPDATE"
)

// ToUpper returns the method in upper case.
func (m RequestMethod) ToUpper() RequestMethod { return util.UCase(m) }

// Equal compares methods case-insensitive.
func (m RequestMethod) Equal(other RequestMethod) bool { return util.EqFold(m, other) }

// IsValid reports whether the method is not empty.
func (m RequestMethod) IsValid() bool { return m != "" }

// ResponseStatus represents a SIP response status code.
type ResponseStatus uint

// Response statuses.
const (
	ResponseStatusTrying                      ResponseStatus = 100
	ResponseStatusRinging                     ResponseStatus = 180
	ResponseStatusSessionProgress             ResponseStatus = 183
	ResponseStatusOK                          ResponseStatus = 200
	ResponseStatusAccepted                    ResponseStatus = 202
	ResponseStatusMovedTemporarily            ResponseStatus = 302
	ResponseStatusBadRequest                  ResponseStatus = 400
	ResponseStatusUnauthorized                ResponseStatus = 401
	ResponseStatusForbidden                   ResponseStatus = 403
	ResponseStatusNotFound                    ResponseStatus = 404
	ResponseStatusRequestTimeout              ResponseStatus = 408
	ResponseStatusTemporarilyUnavailable      ResponseStatus = 480
	ResponseStatusCallTransactionDoesNotExist ResponseStatus = 481
	ResponseStatusBusyHere                    ResponseStatus = 486
	ResponseStatusRequestTerminated           ResponseStatus = 487
	ResponseStatusServerInternalError         ResponseStatus = 500
	ResponseStatusServiceUnavailable          ResponseStatus = 503
	ResponseStatusBusyEverywhere              ResponseStatus = 600
	ResponseStatusDecline                     ResponseStatus = 603
)

var statusReasons = map[ResponseStatus]string{
	ResponseStatusTrying:                      "Trying",
	ResponseStatusRinging:                     "Ringing",
	ResponseStatusSessionProgress:             "Session Progress",
	ResponseStatusOK:                          "OK",
	ResponseStatusAccepted:                    "Accepted",
	ResponseStatusMovedTemporarily:            "Moved Temporarily",
	ResponseStatusBadRequest:                  "Bad Request",
	ResponseStatusUnauthorized:                "Unauthorized",
	ResponseStatusForbidden:                   "Forbidden",
	ResponseStatusNotFound:                    "Not Found",
	ResponseStatusRequestTimeout:              "Request Timeout",
	ResponseStatusTemporarilyUnavailable:      "Temporarily Unavailable",
	ResponseStatusCallTransactionDoesNotExist: "Call/Transaction Does Not Exist",
	ResponseStatusBusyHere:                    "Busy Here",
	ResponseStatusRequestTerminated:           "Request Terminated",
	ResponseStatusServerInternalError:         "Server Internal Error",
	ResponseStatusServiceUnavailable:          "Service Unavailable",
	ResponseStatusBusyEverywhere:              "Busy Everywhere",
	ResponseStatusDecline:                     "Decline",
}

// Reason returns the default reason phrase of the status.
func (s ResponseStatus) Reason() string { return statusReasons[s] }

// IsProvisional reports whether the status is 1xx.
func (s ResponseStatus) IsProvisional() bool { return s >= 100 && s < 200 }

// IsSuccessful reports whether the status is 2xx.
func (s ResponseStatus) IsSuccessful() bool { return s >= 200 && s < 300 }

// IsFinal reports whether the status is 2xx-6xx.
func (s ResponseStatus) IsFinal() bool { return s >= 200 && s < 700 }

// IsValid reports whether the status is in range 100-699.
func (s ResponseStatus) IsValid() bool { return s >= 100 && s < 700 }

// String returns the status code as a string.
func (s ResponseStatus) String() string { return strconv.FormatUint(uint64(s), 10) }

// TransportProto represents a transport protocol.
type TransportProto string

// Transport protocols.
const (
	TransportProtoUDP  TransportProto = "UDP"
	TransportProtoTCP  TransportProto = "TCP"
	TransportProtoTLS  TransportProto = "TLS"
	TransportProtoSCTP TransportProto = "SCTP"
	TransportProtoWS   TransportProto = "WS"
	TransportProtoWSS  TransportProto = "WSS"
)

// ToUpper returns the protocol name in upper case.
func (p TransportProto) ToUpper() TransportProto { return util.UCase(p) }

// IsReliable reports whether the transport delivers messages reliably.
// Unknown protocols are treated as unreliable.
func (p TransportProto) IsReliable() bool {
	switch p.ToUpper() {
	case TransportProtoTCP, TransportProtoTLS, TransportProtoSCTP, TransportProtoWS, TransportProtoWSS:
		return true
	default:
		return false
	}
}

// IsSecured reports whether the transport is secured.
func (p TransportProto) IsSecured() bool {
	switch p.ToUpper() {
	case TransportProtoTLS, TransportProtoWSS:
		return true
	default:
		return false
	}
}

// DefaultPort returns the default port of the transport.
func (p TransportProto) DefaultPort() uint16 {
	if p.IsSecured() {
		return 5061
	}
	return 5060
}
