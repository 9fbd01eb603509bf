// Package header provides typed SIP header values used by the transaction layer.
//
// Every concrete header implements [Header]. Headers without a dedicated type
// are carried by [Any].
package header

//go:generate go tool errtrace -w .

import (
	"net/textproto"

	"github.com/ghettovoice/siptx/internal/errorutil"
	"github.com/ghettovoice/siptx/internal/types"
	"github.com/ghettovoice/siptx/internal/util"
)

// Values represents header parameters as a multi-value map.
type Values = types.Values

// Error is a header package error.
type Error = errorutil.Error

// Header represents a generic SIP header.
type Header interface {
	CanonicName() Name
	RenderValue() string
	Clone() Header
}

// Name represents a SIP header name.
type Name string

// ToCanonic converts the Name to its canonical form.
func (n Name) ToCanonic() Name { return CanonicName(n) }

// Equal reports whether the names are equal after canonicalization.
func (n Name) Equal(other Name) bool { return CanonicName(n) == CanonicName(other) }

var hdrNames = map[string]Name{
	"f":       "From",
	"i":       "Call-ID",
	"t":       "To",
	"v":       "Via",
	"Call-Id": "Call-ID",
	"Cseq":    "CSeq",
}

// CanonicName converts name to the canonical form.
// The first letter and any letter following a hyphen are upper-cased, the rest are lower-cased.
// Compact names are expanded, e.g. "v" becomes "Via".
func CanonicName[T ~string](name T) Name {
	name = util.TrimSP(name)
	if n, ok := hdrNames[string(name)]; ok {
		return n
	}

	name = T(textproto.CanonicalMIMEHeaderKey(string(name)))
	if n, ok := hdrNames[string(name)]; ok {
		return n
	}
	return Name(name)
}

// Render renders the header as a "Name: value" line without the trailing CRLF.
func Render(hdr Header) string {
	if hdr == nil {
		return ""
	}

	sb := util.GetStringBuilder()
	defer util.FreeStringBuilder(sb)
	sb.WriteString(string(hdr.CanonicName()))
	sb.WriteString(": ")
	sb.WriteString(hdr.RenderValue())
	return sb.String()
}
