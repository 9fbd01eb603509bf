package sip

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"strconv"
	"strings"

	"braces.dev/errtrace"

	"github.com/ghettovoice/siptx/dns"
	"github.com/ghettovoice/siptx/header"
	"github.com/ghettovoice/siptx/internal/errorutil"
	"github.com/ghettovoice/siptx/internal/util"
	"github.com/ghettovoice/siptx/log"
	"github.com/ghettovoice/siptx/uri"
)

// Hop is the next-hop network destination of a request.
type Hop struct {
	Transport TransportProto `json:"transport"`
	Host      string         `json:"host"`
	Port      uint16         `json:"port"`
}

// IsValid reports whether all hop fields are set.
func (h Hop) IsValid() bool { return h.Transport != "" && h.Host != "" && h.Port != 0 }

// IsZero reports whether the hop is not set.
func (h Hop) IsZero() bool { return h == Hop{} }

// String returns the hop in the "host:port/transport" form.
func (h Hop) String() string {
	return net.JoinHostPort(h.Host, strconv.Itoa(int(h.Port))) + "/" + string(h.Transport)
}

// LogValue implements [slog.LogValuer].
func (h Hop) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("transport", h.Transport),
		slog.String("host", h.Host),
		slog.Int("port", int(h.Port)),
	)
}

// HopResolver resolves the next hop of a request.
type HopResolver interface {
	ResolveHop(ctx context.Context, req *Request) (Hop, error)
}

// HopResolverFunc is an adapter to allow the use of ordinary functions as [HopResolver].
type HopResolverFunc func(ctx context.Context, req *Request) (Hop, error)

// ResolveHop implements [HopResolver].
func (fn HopResolverFunc) ResolveHop(ctx context.Context, req *Request) (Hop, error) {
	return fn(ctx, req) //errtrace:skip
}

// hopTarget returns the URI the request should be routed to:
// the X-Destination header if present and parsable, otherwise the Request-URI.
func hopTarget(req *Request) *uri.SIP {
	for _, h := range req.Headers.Get(header.DestinationName) {
		if u, err := uri.Parse(h.RenderValue()); err == nil {
			return u
		}
	}
	return req.URI
}

func hopTransport(req *Request, target *uri.SIP) TransportProto {
	if tp, ok := target.Transport(); ok && tp != "" {
		return TransportProto(tp)
	}
	if tp := req.Transport(); tp != "" {
		return tp
	}
	if target.Secured {
		return TransportProtoTLS
	}
	return TransportProtoUDP
}

// StaticHopResolver resolves the hop from the destination URI without DNS lookups.
// The destination is the X-Destination header URI or the Request-URI.
// The transport is taken from the URI "transport" parameter, then from the topmost Via.
type StaticHopResolver struct{}

// ResolveHop implements [HopResolver].
func (StaticHopResolver) ResolveHop(_ context.Context, req *Request) (Hop, error) {
	if req == nil || !req.URI.IsValid() {
		return Hop{}, errtrace.Wrap(NewInvalidArgumentError("invalid request"))
	}

	target := hopTarget(req)
	tp := hopTransport(req, target)
	port := target.Port
	if port == 0 {
		port = tp.DefaultPort()
	}
	return Hop{Transport: tp, Host: target.Host, Port: port}, nil
}

// DNSResolver is used to resolve the hop address.
type DNSResolver interface {
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
	LookupSRV(ctx context.Context, service, proto, host string) ([]*dns.SRV, error)
	LookupNAPTR(ctx context.Context, host string) ([]*dns.NAPTR, error)
}

var naptrServices = map[TransportProto]string{
	TransportProtoUDP:  "SIP+D2U",
	TransportProtoTCP:  "SIP+D2T",
	TransportProtoTLS:  "SIPS+D2T",
	TransportProtoSCTP: "SIP+D2S",
}

var srvServices = map[TransportProto][2]string{
	TransportProtoUDP:  {"sip", "udp"},
	TransportProtoTCP:  {"sip", "tcp"},
	TransportProtoTLS:  {"sips", "tcp"},
	TransportProtoSCTP: {"sip", "sctp"},
}

// DNSHopResolver locates the next hop as described in RFC 3263 Section 4.
// A numeric host or an explicit port is resolved with an A lookup, otherwise
// NAPTR records matching the transport are followed by SRV and A lookups.
// Without matching NAPTR records the SRV record of the transport is queried directly.
type DNSHopResolver struct {
	// Resolver performs DNS lookups.
	// If nil, the [dns.DefaultResolver] is used.
	Resolver DNSResolver
	// Log is the logger.
	// If nil, the [log.Default] is used.
	Log *slog.Logger
}

func (r *DNSHopResolver) resolver() DNSResolver {
	if r == nil || r.Resolver == nil {
		return dns.DefaultResolver()
	}
	return r.Resolver
}

func (r *DNSHopResolver) log() *slog.Logger {
	if r == nil || r.Log == nil {
		return log.Default()
	}
	return r.Log
}

// ResolveHop implements [HopResolver].
func (r *DNSHopResolver) ResolveHop(ctx context.Context, req *Request) (Hop, error) {
	if req == nil || !req.URI.IsValid() {
		return Hop{}, errtrace.Wrap(NewInvalidArgumentError("invalid request"))
	}

	target := hopTarget(req)
	tp := hopTransport(req, target)

	if addr, err := netip.ParseAddr(target.Host); err == nil {
		port := target.Port
		if port == 0 {
			port = tp.DefaultPort()
		}
		return Hop{Transport: tp, Host: addr.String(), Port: port}, nil
	}

	if target.Port != 0 {
		host, err := r.lookupHost(ctx, target.Host)
		if err != nil {
			return Hop{}, errtrace.Wrap(err)
		}
		return Hop{Transport: tp, Host: host, Port: target.Port}, nil
	}

	srvName := ""
	if svc, ok := naptrServices[tp]; ok {
		recs, err := r.resolver().LookupNAPTR(ctx, target.Host)
		if err != nil {
			r.log().LogAttrs(ctx, slog.LevelDebug, "NAPTR lookup failed",
				slog.String("host", target.Host),
				slog.Any("error", err),
			)
		}
		for _, rec := range recs {
			if util.EqFold(rec.Service, svc) && util.EqFold(rec.Flags, "s") {
				srvName = rec.Replacement
				break
			}
		}
	}

	var srvs []*dns.SRV
	var err error
	if srvName != "" {
		srvs, err = r.resolver().LookupSRV(ctx, "", "", srvName)
	} else if svc, ok := srvServices[tp]; ok {
		srvs, err = r.resolver().LookupSRV(ctx, svc[0], svc[1], target.Host)
	}
	if err != nil {
		r.log().LogAttrs(ctx, slog.LevelDebug, "SRV lookup failed",
			slog.String("host", target.Host),
			slog.Any("error", err),
		)
	}

	for _, srv := range srvs {
		host, err := r.lookupHost(ctx, strings.TrimSuffix(srv.Target, "."))
		if err != nil {
			continue
		}
		return Hop{Transport: tp, Host: host, Port: srv.Port}, nil
	}

	host, err := r.lookupHost(ctx, target.Host)
	if err != nil {
		return Hop{}, errtrace.Wrap(err)
	}
	return Hop{Transport: tp, Host: host, Port: tp.DefaultPort()}, nil
}

func (r *DNSHopResolver) lookupHost(ctx context.Context, host string) (string, error) {
	ips, err := r.resolver().LookupIP(ctx, "ip", host)
	if err != nil {
		return "", errtrace.Wrap(errorutil.NewWrapperError(ErrHopNotResolved, fmt.Errorf("lookup %q: %w", host, err)))
	}
	if len(ips) == 0 {
		return "", errtrace.Wrap(errorutil.NewWrapperError(ErrHopNotResolved, fmt.Sprintf("no addresses for %q", host)))
	}
	return ips[0].String(), nil
}
