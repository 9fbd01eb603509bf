package header

// CallID represents the Call-ID header field.
type CallID string

// CanonicName returns the canonical name of the header.
func (CallID) CanonicName() Name { return "Call-ID" }

// RenderValue returns the header value without the name prefix.
func (hdr CallID) RenderValue() string { return string(hdr) }

// Clone returns a copy of the header.
func (hdr CallID) Clone() Header { return hdr }
