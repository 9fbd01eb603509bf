package header

import (
	"net"
	"strconv"
	"strings"

	"github.com/ghettovoice/siptx/internal/util"
)

// MagicCookie is the RFC 3261 branch prefix.
const MagicCookie = "z9hG4bK"

// Via represents the Via header field.
// Each element of the slice is a single Via hop, the topmost hop first.
type Via []ViaHop

// CanonicName returns the canonical name of the header.
func (Via) CanonicName() Name { return "Via" }

// RenderValue returns the header value without the name prefix.
func (hdr Via) RenderValue() string {
	sb := util.GetStringBuilder()
	defer util.FreeStringBuilder(sb)
	for i, hop := range hdr {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(hop.String())
	}
	return sb.String()
}

// Clone returns a deep copy of the header.
func (hdr Via) Clone() Header {
	if hdr == nil {
		return nil
	}
	hdr2 := make(Via, len(hdr))
	for i := range hdr {
		hdr2[i] = hdr[i].Clone()
	}
	return hdr2
}

// ViaHop represents a single Via entry.
type ViaHop struct {
	Proto     string // protocol name and version, SIP/2.0 if empty
	Transport string
	Host      string
	Port      uint16
	Params    Values
}

// Branch returns the value of the branch parameter.
func (hop ViaHop) Branch() string {
	v, _ := hop.Params.First("branch")
	return v
}

// IsRFC3261 reports whether the branch starts with the RFC 3261 magic cookie.
func (hop ViaHop) IsRFC3261() bool { return strings.HasPrefix(hop.Branch(), MagicCookie) }

// SentBy returns the sent-by part of the hop.
func (hop ViaHop) SentBy() string {
	if hop.Port == 0 {
		if strings.Contains(hop.Host, ":") {
			return "[" + hop.Host + "]"
		}
		return hop.Host
	}
	return net.JoinHostPort(hop.Host, strconv.Itoa(int(hop.Port)))
}

// String returns the hop rendered as a Via value.
func (hop ViaHop) String() string {
	proto := hop.Proto
	if proto == "" {
		proto = "SIP/2.0"
	}
	return proto + "/" + util.UCase(hop.Transport) + " " + hop.SentBy() + hop.Params.Render(';')
}

// Clone returns a deep copy of the hop.
func (hop ViaHop) Clone() ViaHop {
	hop.Params = hop.Params.Clone()
	return hop
}

// Equal reports whether the hops are equal, ignoring the case of the transport and host.
func (hop ViaHop) Equal(other ViaHop) bool {
	return util.EqFold(hop.Proto, other.Proto) &&
		util.EqFold(hop.Transport, other.Transport) &&
		util.EqFold(hop.Host, other.Host) &&
		hop.Port == other.Port &&
		hop.Params.Render(';') == other.Params.Render(';')
}
