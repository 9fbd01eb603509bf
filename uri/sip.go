// Package uri provides the SIP and SIPS URI representation used by requests and address headers.
package uri

//go:generate go tool errtrace -w .

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"braces.dev/errtrace"

	"github.com/ghettovoice/siptx/internal/errorutil"
	"github.com/ghettovoice/siptx/internal/types"
	"github.com/ghettovoice/siptx/internal/util"
)

// Values represents URI parameters as a multi-value map.
type Values = types.Values

// SIP represents a SIP or SIPS URI.
type SIP struct {
	User    string
	Host    string
	Port    uint16 // 0 means the port is not set
	Params  Values
	Secured bool
}

// Clone returns a deep copy of the SIP URI.
func (u *SIP) Clone() *SIP {
	if u == nil {
		return nil
	}
	u2 := *u
	u2.Params = u.Params.Clone()
	return &u2
}

// Scheme returns the URI scheme.
func (u *SIP) Scheme() string {
	if u == nil {
		return ""
	}
	if u.Secured {
		return "sips"
	}
	return "sip"
}

// HostPort returns the host and port part of the URI.
func (u *SIP) HostPort() string {
	if u == nil {
		return ""
	}
	if u.Port == 0 {
		if strings.Contains(u.Host, ":") {
			return "[" + u.Host + "]"
		}
		return u.Host
	}
	return net.JoinHostPort(u.Host, strconv.Itoa(int(u.Port)))
}

// Transport returns the value of the "transport" parameter.
func (u *SIP) Transport() (string, bool) {
	if u == nil {
		return "", false
	}
	v, ok := u.Params.First("transport")
	return util.UCase(v), ok
}

// String returns the string representation of the URI.
func (u *SIP) String() string {
	if u == nil {
		return ""
	}

	sb := util.GetStringBuilder()
	defer util.FreeStringBuilder(sb)
	sb.WriteString(u.Scheme())
	sb.WriteByte(':')
	if u.User != "" {
		sb.WriteString(u.User)
		sb.WriteByte('@')
	}
	sb.WriteString(u.HostPort())
	sb.WriteString(u.Params.Render(';'))
	return sb.String()
}

// Format implements [fmt.Formatter].
func (u *SIP) Format(f fmt.State, verb rune) {
	switch verb {
	case 's', 'v':
		if verb == 'v' && f.Flag('#') {
			type hideMethods SIP
			type SIP hideMethods
			fmt.Fprintf(f, "%#v", (*SIP)(u))
			return
		}
		fmt.Fprint(f, u.String())
	case 'q':
		fmt.Fprint(f, strconv.Quote(u.String()))
	default:
		fmt.Fprintf(f, "%%!%c(*uri.SIP=%s)", verb, u.String())
	}
}

// Equal compares the URI with another one.
// Scheme, host and parameter names are compared case-insensitive, the user part is case-sensitive.
func (u *SIP) Equal(val any) bool {
	other, ok := val.(*SIP)
	if !ok {
		return false
	}
	if u == other {
		return true
	}
	if u == nil || other == nil {
		return false
	}

	if u.Secured != other.Secured ||
		u.User != other.User ||
		!util.EqFold(u.Host, other.Host) ||
		u.Port != other.Port ||
		len(u.Params) != len(other.Params) {
		return false
	}
	for k, v := range u.Params {
		ov := other.Params.Get(k)
		if len(ov) != len(v) {
			return false
		}
		for i := range v {
			if !util.EqFold(v[i], ov[i]) {
				return false
			}
		}
	}
	return true
}

// IsValid checks whether the URI has a host.
func (u *SIP) IsValid() bool { return u != nil && u.Host != "" }

// MarshalText implements [encoding.TextMarshaler].
func (u *SIP) MarshalText() ([]byte, error) { return []byte(u.String()), nil }

// UnmarshalText implements [encoding.TextUnmarshaler].
func (u *SIP) UnmarshalText(text []byte) error {
	u2, err := Parse(string(text))
	if err != nil {
		return errtrace.Wrap(err)
	}
	*u = *u2
	return nil
}

// ErrInvalidURI is returned when a URI cannot be parsed.
const ErrInvalidURI errorutil.Error = "invalid URI"

// Parse parses a SIP or SIPS URI of the form "sip:user@host:port;param=value".
// URI headers are not supported.
func Parse(s string) (*SIP, error) {
	s = util.TrimSP(s)

	scheme, rest, ok := strings.Cut(s, ":")
	if !ok {
		return nil, errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidURI, "missing scheme"))
	}

	u := new(SIP)
	switch util.LCase(scheme) {
	case "sip":
	case "sips":
		u.Secured = true
	default:
		return nil, errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidURI, fmt.Sprintf("unsupported scheme %q", scheme)))
	}

	rest, params, _ := strings.Cut(rest, ";")
	if user, hp, ok := strings.Cut(rest, "@"); ok {
		u.User = user
		rest = hp
	}

	host, port, err := splitHostPort(rest)
	if err != nil {
		return nil, errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidURI, err.Error()))
	}
	if host == "" {
		return nil, errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidURI, "empty host"))
	}
	u.Host, u.Port = host, port

	if params != "" {
		u.Params = make(Values)
		for p := range strings.SplitSeq(params, ";") {
			if p == "" {
				continue
			}
			k, v, _ := strings.Cut(p, "=")
			u.Params.Append(k, v)
		}
	}
	return u, nil
}

// MustParse is like [Parse] but panics on error.
func MustParse(s string) *SIP {
	u, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

func splitHostPort(s string) (string, uint16, error) {
	if strings.HasPrefix(s, "[") {
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return "", 0, errtrace.Wrap(errorutil.Error("unclosed IPv6 reference"))
		}
		host, rest := s[1:end], s[end+1:]
		if rest == "" {
			return host, 0, nil
		}
		if rest[0] != ':' {
			return "", 0, errtrace.Wrap(errorutil.Error("unexpected characters after IPv6 reference"))
		}
		port, err := parsePort(rest[1:])
		return host, port, errtrace.Wrap(err)
	}

	host, p, ok := strings.Cut(s, ":")
	if !ok {
		return host, 0, nil
	}
	port, err := parsePort(p)
	return host, port, errtrace.Wrap(err)
}

func parsePort(s string) (uint16, error) {
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, errtrace.Wrap(errorutil.Error(fmt.Sprintf("invalid port %q", s)))
	}
	return uint16(n), nil
}
