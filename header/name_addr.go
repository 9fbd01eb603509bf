package header

import (
	"strconv"

	"github.com/ghettovoice/siptx/internal/util"
	"github.com/ghettovoice/siptx/uri"
)

// NameAddr is a name-addr value with header parameters used by From, To and Route.
type NameAddr struct {
	DisplayName string
	URI         *uri.SIP
	Params      Values
}

// String renders the name-addr.
func (na NameAddr) String() string {
	sb := util.GetStringBuilder()
	defer util.FreeStringBuilder(sb)
	if na.DisplayName != "" {
		sb.WriteString(strconv.Quote(na.DisplayName))
		sb.WriteByte(' ')
	}
	sb.WriteByte('<')
	sb.WriteString(na.URI.String())
	sb.WriteByte('>')
	sb.WriteString(na.Params.Render(';'))
	return sb.String()
}

// Clone returns a deep copy of the name-addr.
func (na NameAddr) Clone() NameAddr {
	na.URI = na.URI.Clone()
	na.Params = na.Params.Clone()
	return na
}

// Tag returns the value of the tag parameter.
func (na NameAddr) Tag() (string, bool) { return na.Params.First("tag") }

// From represents the From header field.
type From NameAddr

// CanonicName returns the canonical name of the header.
func (*From) CanonicName() Name { return "From" }

// RenderValue returns the header value without the name prefix.
func (hdr *From) RenderValue() string {
	if hdr == nil {
		return ""
	}
	return NameAddr(*hdr).String()
}

// Clone returns a deep copy of the header.
func (hdr *From) Clone() Header {
	if hdr == nil {
		return nil
	}
	hdr2 := From(NameAddr(*hdr).Clone())
	return &hdr2
}

// Tag returns the value of the tag parameter.
func (hdr *From) Tag() (string, bool) {
	if hdr == nil {
		return "", false
	}
	return NameAddr(*hdr).Tag()
}

// To represents the To header field.
type To NameAddr

// CanonicName returns the canonical name of the header.
func (*To) CanonicName() Name { return "To" }

// RenderValue returns the header value without the name prefix.
func (hdr *To) RenderValue() string {
	if hdr == nil {
		return ""
	}
	return NameAddr(*hdr).String()
}

// Clone returns a deep copy of the header.
func (hdr *To) Clone() Header {
	if hdr == nil {
		return nil
	}
	hdr2 := To(NameAddr(*hdr).Clone())
	return &hdr2
}

// Tag returns the value of the tag parameter.
func (hdr *To) Tag() (string, bool) {
	if hdr == nil {
		return "", false
	}
	return NameAddr(*hdr).Tag()
}

// Route represents the Route header field.
type Route []NameAddr

// CanonicName returns the canonical name of the header.
func (Route) CanonicName() Name { return "Route" }

// RenderValue returns the header value without the name prefix.
func (hdr Route) RenderValue() string {
	sb := util.GetStringBuilder()
	defer util.FreeStringBuilder(sb)
	for i, na := range hdr {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(na.String())
	}
	return sb.String()
}

// Clone returns a deep copy of the header.
func (hdr Route) Clone() Header {
	if hdr == nil {
		return nil
	}
	hdr2 := make(Route, len(hdr))
	for i := range hdr {
		hdr2[i] = hdr[i].Clone()
	}
	return hdr2
}
