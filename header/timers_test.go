package header_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ghettovoice/siptx/header"
)

var _ = Describe("Timers", Label("sip", "header"), func() {
	DescribeTable("parsing values",
		func(val string, expect header.TimerValues, expectErr error) {
			hdr := &header.Timers{Value: val, AppCreated: true}
			tv, err := hdr.Values()
			if expectErr == nil {
				Expect(err).ToNot(HaveOccurred())
			} else {
				Expect(err).To(MatchError(expectErr))
			}
			Expect(tv).To(Equal(expect))
		},
		// region
		Entry(nil, "a=250", header.TimerValues{A: 250 * time.Millisecond}, nil),
		Entry(nil, "a=250;b=16000", header.TimerValues{A: 250 * time.Millisecond, B: 16 * time.Second}, nil),
		Entry(nil,
			" E = 100 ; f=8000;T2=2000;",
			header.TimerValues{E: 100 * time.Millisecond, F: 8 * time.Second, T2: 2 * time.Second},
			nil,
		),
		Entry(nil, "a=250;x=abc", header.TimerValues{A: 250 * time.Millisecond}, nil),
		Entry(nil, "", header.TimerValues{}, header.ErrMalformedTimers),
		Entry(nil, "a", header.TimerValues{}, header.ErrMalformedTimers),
		Entry(nil, "a=", header.TimerValues{}, header.ErrMalformedTimers),
		Entry(nil, "a=-1", header.TimerValues{}, header.ErrMalformedTimers),
		Entry(nil, "a=0", header.TimerValues{}, header.ErrMalformedTimers),
		Entry(nil, "a=100;b=soon", header.TimerValues{}, header.ErrMalformedTimers),
		// endregion
	)

	It("should render and clone", func() {
		hdr := &header.Timers{Value: "a=250", AppCreated: true}
		Expect(header.Render(hdr)).To(Equal("X-Timers: a=250"))

		cl := hdr.Clone().(*header.Timers)
		cl.Value = "b=1"
		Expect(hdr.Value).To(Equal("a=250"))
		Expect(cl.AppCreated).To(BeTrue())
	})
})
