package uri_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ghettovoice/siptx/uri"
)

var _ = Describe("URI", Label("sip", "uri"), func() {
	DescribeTable("parsing",
		func(in string, expect *uri.SIP, expectErr error) {
			u, err := uri.Parse(in)
			if expectErr == nil {
				Expect(err).ToNot(HaveOccurred())
				Expect(u).To(Equal(expect))
				Expect(u.Equal(expect)).To(BeTrue())
			} else {
				Expect(err).To(MatchError(expectErr))
				Expect(u).To(BeNil())
			}
		},
		// region
		Entry(nil, "sip:example.com", &uri.SIP{Host: "example.com"}, nil),
		Entry(nil, "sips:example.com", &uri.SIP{Secured: true, Host: "example.com"}, nil),
		Entry(nil, "sip:example.com:5060", &uri.SIP{Host: "example.com", Port: 5060}, nil),
		Entry(nil, "sip:127.0.0.1:5060", &uri.SIP{Host: "127.0.0.1", Port: 5060}, nil),
		Entry(nil, "sip:[2001:db8::9:1]", &uri.SIP{Host: "2001:db8::9:1"}, nil),
		Entry(nil, "sip:[2001:db8::9:1]:5060", &uri.SIP{Host: "2001:db8::9:1", Port: 5060}, nil),
		Entry(nil, "sip:admin@example.com:5060", &uri.SIP{User: "admin", Host: "example.com", Port: 5060}, nil),
		Entry(nil,
			"sips:admin@Example.COM:5061;transport=tcp;lr",
			&uri.SIP{
				User:    "admin",
				Host:    "Example.COM",
				Port:    5061,
				Secured: true,
				Params:  uri.Values{"transport": {"tcp"}, "lr": {""}},
			},
			nil,
		),
		Entry(nil, "", nil, uri.ErrInvalidURI),
		Entry(nil, "example.com", nil, uri.ErrInvalidURI),
		Entry(nil, "tel:+1234", nil, uri.ErrInvalidURI),
		Entry(nil, "sip::5060", nil, uri.ErrInvalidURI),
		Entry(nil, "sip:example.com:99999", nil, uri.ErrInvalidURI),
		Entry(nil, "sip:[::1", nil, uri.ErrInvalidURI),
		Entry(nil, "sip:admin@", nil, uri.ErrInvalidURI),
		// endregion
	)

	Describe("text marshaling", func() {
		It("should round trip through text", func() {
			u := uri.MustParse("sip:bob@example.com:5070;transport=udp")
			text, err := u.MarshalText()
			Expect(err).ToNot(HaveOccurred())
			Expect(string(text)).To(Equal("sip:bob@example.com:5070;transport=udp"))

			var u2 uri.SIP
			Expect(u2.UnmarshalText(text)).To(Succeed())
			Expect(u2.Equal(u)).To(BeTrue())
		})
	})
})
