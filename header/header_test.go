package header_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ghettovoice/siptx/header"
	"github.com/ghettovoice/siptx/uri"
)

func TestCanonicName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want header.Name
	}{
		{"v", "Via"},
		{"call-id", "Call-ID"},
		{"cseq", "CSeq"},
		{" max-forwards ", "Max-Forwards"},
		{"x-timers", "X-Timers"},
		{"x-preferred-outbound", "X-Preferred-Outbound"},
	}

	for _, c := range cases {
		if got := header.CanonicName(c.in); got != c.want {
			t.Errorf("header.CanonicName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
	if !header.Name("t").Equal("To") {
		t.Error(`header.Name("t").Equal("To") = false, want true`)
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		hdr  header.Header
		want string
	}{
		{"nil", nil, ""},
		{"call-id", header.CallID("abc@host"), "Call-ID: abc@host"},
		{"cseq", &header.CSeq{SeqNum: 42, Method: "invite"}, "CSeq: 42 INVITE"},
		{"max-forwards", header.MaxForwards(70), "Max-Forwards: 70"},
		{"any", &header.Any{Name: "x-destination", Value: "sip:gw@example.com"}, "X-Destination: sip:gw@example.com"},
		{
			"via",
			header.Via{
				{Transport: "udp", Host: "10.0.0.1", Port: 5060, Params: header.Values{"branch": {"z9hG4bK.1"}}},
				{Transport: "TCP", Host: "::1"},
			},
			"Via: SIP/2.0/UDP 10.0.0.1:5060;branch=z9hG4bK.1, SIP/2.0/TCP [::1]",
		},
		{
			"from",
			&header.From{
				DisplayName: "Alice",
				URI:         &uri.SIP{User: "alice", Host: "example.com"},
				Params:      header.Values{"tag": {"a1"}},
			},
			`From: "Alice" <sip:alice@example.com>;tag=a1`,
		},
		{
			"to",
			&header.To{URI: &uri.SIP{User: "bob", Host: "example.com"}},
			"To: <sip:bob@example.com>",
		},
		{
			"route",
			header.Route{
				{URI: &uri.SIP{Host: "p1.example.com", Params: header.Values{"lr": {""}}}},
				{URI: &uri.SIP{Host: "p2.example.com"}},
			},
			"Route: <sip:p1.example.com;lr>, <sip:p2.example.com>",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			if got := header.Render(c.hdr); got != c.want {
				t.Errorf("header.Render(hdr) = %q, want %q", got, c.want)
			}
		})
	}
}

func TestClone(t *testing.T) {
	t.Parallel()

	via := header.Via{{Transport: "UDP", Host: "a.example.com", Params: header.Values{"branch": {"z9hG4bK.1"}}}}
	viaCl := via.Clone().(header.Via)
	viaCl[0].Params.Set("branch", "z9hG4bK.2")
	if got := via[0].Branch(); got != "z9hG4bK.1" {
		t.Errorf("via[0].Branch() = %q after clone modification, want %q", got, "z9hG4bK.1")
	}
	if !via[0].IsRFC3261() {
		t.Error("via[0].IsRFC3261() = false, want true")
	}

	to := &header.To{URI: &uri.SIP{Host: "example.com"}}
	toCl := to.Clone().(*header.To)
	toCl.Params = header.Values{"tag": {"b1"}}
	if _, ok := to.Tag(); ok {
		t.Error("to.Tag() found tag after clone modification")
	}
	if tag, _ := toCl.Tag(); tag != "b1" {
		t.Errorf("toCl.Tag() = %q, want %q", tag, "b1")
	}

	route := header.Route{{URI: &uri.SIP{Host: "p1.example.com"}}}
	if diff := cmp.Diff(route.Clone(), header.Header(route)); diff != "" {
		t.Errorf("route.Clone() mismatch (-got +want):\n%v", diff)
	}

	var nilFrom *header.From
	if nilFrom.Clone() != nil {
		t.Error("nil From Clone() != nil")
	}
}
