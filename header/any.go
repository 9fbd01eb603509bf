package header

// Any represents a header without a dedicated type.
type Any struct {
	Name  Name
	Value string
}

// CanonicName returns the canonical name of the header.
func (hdr *Any) CanonicName() Name {
	if hdr == nil {
		return ""
	}
	return CanonicName(hdr.Name)
}

// RenderValue returns the header value without the name prefix.
func (hdr *Any) RenderValue() string {
	if hdr == nil {
		return ""
	}
	return hdr.Value
}

// Clone returns a copy of the header.
func (hdr *Any) Clone() Header {
	if hdr == nil {
		return nil
	}
	hdr2 := *hdr
	return &hdr2
}

// Well-known names of extension headers captured by client INVITE transactions
// for automatic ACK reconstruction.
const (
	DestinationName       Name = "X-Destination"
	PreferredOutboundName Name = "X-Preferred-Outbound"
)
