package lead

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestLead(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Lead Suite")
}

var _ = Describe("submissionLimiter", func() {
	var (
		limiter *submissionLimiter
		base    time.Time
	)

	BeforeEach(func() {
		limiter = newSubmissionLimiter(3, time.Minute)
		base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	})

	It("allows up to the limit within the window", func() {
		Expect(limiter.allow("1.2.3.4", base)).To(BeTrue())
		Expect(limiter.allow("1.2.3.4", base.Add(time.Second))).To(BeTrue())
		Expect(limiter.allow("1.2.3.4", base.Add(2*time.Second))).To(BeTrue())
		Expect(limiter.allow("1.2.3.4", base.Add(3*time.Second))).To(BeFalse())
	})

	It("slides the window", func() {
		for i := 0; i < 3; i++ {
			Expect(limiter.allow("1.2.3.4", base.Add(time.Duration(i)*time.Second))).To(BeTrue())
		}
		Expect(limiter.allow("1.2.3.4", base.Add(30*time.Second))).To(BeFalse())
		// The first submission falls out of the window after a minute.
		Expect(limiter.allow("1.2.3.4", base.Add(61*time.Second))).To(BeTrue())
	})

	It("tracks clients independently", func() {
		for i := 0; i < 3; i++ {
			Expect(limiter.allow("1.2.3.4", base)).To(BeTrue())
		}
		Expect(limiter.allow("1.2.3.4", base)).To(BeFalse())
		Expect(limiter.allow("5.6.7.8", base)).To(BeTrue())
	})

	It("drops expired entries from the map", func() {
		Expect(limiter.allow("1.2.3.4", base)).To(BeTrue())
		limiter.allow("1.2.3.4", base.Add(2*time.Minute))
		limiter.mu.Lock()
		defer limiter.mu.Unlock()
		Expect(limiter.submissions["1.2.3.4"]).To(HaveLen(1))
	})
})
