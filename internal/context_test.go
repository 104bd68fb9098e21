package internal_test

import (
	"context"
	"time"

	"github.com/frahmantamala/agency-portal/internal"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("WithTimeout", func() {
	It("applies the requested duration", func() {
		ctx, cancel := internal.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		deadline, ok := ctx.Deadline()
		Expect(ok).To(BeTrue())
		Expect(deadline).To(BeTemporally("~", time.Now().Add(2*time.Second), 500*time.Millisecond))
	})

	It("falls back to five seconds for a non-positive duration", func() {
		ctx, cancel := internal.WithTimeout(context.Background(), 0)
		defer cancel()

		deadline, ok := ctx.Deadline()
		Expect(ok).To(BeTrue())
		Expect(deadline).To(BeTemporally("~", time.Now().Add(5*time.Second), 500*time.Millisecond))
	})

	It("respects an earlier parent deadline", func() {
		parent, parentCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer parentCancel()

		ctx, cancel := internal.WithTimeout(parent, time.Minute)
		defer cancel()

		deadline, ok := ctx.Deadline()
		Expect(ok).To(BeTrue())
		Expect(deadline).To(BeTemporally("~", time.Now().Add(100*time.Millisecond), 500*time.Millisecond))
	})
})
