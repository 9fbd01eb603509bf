package header

import "strconv"

// MaxForwards represents the Max-Forwards header field.
type MaxForwards uint

// CanonicName returns the canonical name of the header.
func (MaxForwards) CanonicName() Name { return "Max-Forwards" }

// RenderValue returns the header value without the name prefix.
func (hdr MaxForwards) RenderValue() string { return strconv.FormatUint(uint64(hdr), 10) }

// Clone returns a copy of the header.
func (hdr MaxForwards) Clone() Header { return hdr }
