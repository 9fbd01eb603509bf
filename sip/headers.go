package sip

import (
	"slices"

	"github.com/ghettovoice/siptx/header"
	"github.com/ghettovoice/siptx/internal/util"
)

// Headers maps canonical header names to header values in order of appearance.
type Headers map[header.Name][]header.Header

// Append appends the headers.
func (hs Headers) Append(hdrs ...header.Header) Headers {
	for _, h := range hdrs {
		if h == nil {
			continue
		}
		n := h.CanonicName()
		hs[n] = append(hs[n], h)
	}
	return hs
}

// Set replaces all headers with the same names as the given headers.
func (hs Headers) Set(hdrs ...header.Header) Headers {
	seen := make(map[header.Name]bool, len(hdrs))
	for _, h := range hdrs {
		if h == nil {
			continue
		}
		n := h.CanonicName()
		if !seen[n] {
			delete(hs, n)
			seen[n] = true
		}
		hs[n] = append(hs[n], h)
	}
	return hs
}

// Get returns headers with the given name.
func (hs Headers) Get(name header.Name) []header.Header { return hs[header.CanonicName(name)] }

// Has reports whether headers with the given name exist.
func (hs Headers) Has(name header.Name) bool { return len(hs[header.CanonicName(name)]) > 0 }

// Del deletes headers with the given name.
func (hs Headers) Del(name header.Name) Headers {
	delete(hs, header.CanonicName(name))
	return hs
}

// Clone returns a deep copy of the headers.
func (hs Headers) Clone() Headers {
	if hs == nil {
		return nil
	}
	hs2 := make(Headers, len(hs))
	for n, hdrs := range hs {
		cl := make([]header.Header, 0, len(hdrs))
		for _, h := range hdrs {
			cl = append(cl, h.Clone())
		}
		hs2[n] = cl
	}
	return hs2
}

func firstOf[T header.Header](hs Headers, name header.Name) (T, bool) {
	for _, h := range hs[name] {
		if v, ok := h.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// FirstVia returns the topmost Via hop.
func (hs Headers) FirstVia() (*header.ViaHop, bool) {
	for _, h := range hs["Via"] {
		if via, ok := h.(header.Via); ok && len(via) > 0 {
			return &via[0], true
		}
	}
	return nil, false
}

// From returns the From header.
func (hs Headers) From() (*header.From, bool) { return firstOf[*header.From](hs, "From") }

// To returns the To header.
func (hs Headers) To() (*header.To, bool) { return firstOf[*header.To](hs, "To") }

// CallID returns the Call-ID header.
func (hs Headers) CallID() (header.CallID, bool) { return firstOf[header.CallID](hs, "Call-ID") }

// CSeq returns the CSeq header.
func (hs Headers) CSeq() (*header.CSeq, bool) { return firstOf[*header.CSeq](hs, "CSeq") }

// MaxForwards returns the Max-Forwards header.
func (hs Headers) MaxForwards() (header.MaxForwards, bool) {
	return firstOf[header.MaxForwards](hs, "Max-Forwards")
}

// Timers returns the timer override header.
// A header of another type, e.g. [header.Any], is returned as a [header.Timers]
// with the same value that is not marked as created by the application.
func (hs Headers) Timers() (*header.Timers, bool) {
	if hdr, ok := firstOf[*header.Timers](hs, "X-Timers"); ok {
		return hdr, true
	}
	for _, h := range hs["X-Timers"] {
		if h != nil {
			return &header.Timers{Value: h.RenderValue()}, true
		}
	}
	return nil, false
}

// Route returns all Route entries in order of appearance.
func (hs Headers) Route() header.Route {
	var route header.Route
	for _, h := range hs["Route"] {
		if r, ok := h.(header.Route); ok {
			route = append(route, r...)
		}
	}
	return route
}

var hdrsOrder = []header.Name{"Via", "Route", "Max-Forwards", "From", "To", "Call-ID", "CSeq"}

func (hs Headers) render() string {
	sb := util.GetStringBuilder()
	defer util.FreeStringBuilder(sb)

	write := func(hdrs []header.Header) {
		for _, h := range hdrs {
			sb.WriteString(header.Render(h))
			sb.WriteString("\r\n")
		}
	}

	for _, n := range hdrsOrder {
		write(hs[n])
	}

	rest := make([]header.Name, 0, len(hs))
	for n := range hs {
		if !slices.Contains(hdrsOrder, n) {
			rest = append(rest, n)
		}
	}
	slices.Sort(rest)
	for _, n := range rest {
		write(hs[n])
	}
	return sb.String()
}
