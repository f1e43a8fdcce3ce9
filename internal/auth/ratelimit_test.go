package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("MemoryRateLimiter", func() {
	var (
		limiter *MemoryRateLimiter
		clock   time.Time
	)

	ginkgo.BeforeEach(func() {
		limiter = NewMemoryRateLimiter()
		clock = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		limiter.now = func() time.Time { return clock }
	})

	check := func(id string) RateLimitResult {
		result, err := limiter.Check(context.Background(), id, 3, time.Minute)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		return result
	}

	ginkgo.It("should allow up to the maximum and then deny", func() {
		first := check("ip-1")
		gomega.Expect(first.Allowed).To(gomega.BeTrue())
		gomega.Expect(first.Remaining).To(gomega.Equal(2))
		gomega.Expect(first.ResetAt).To(gomega.Equal(clock.Add(time.Minute)))

		second := check("ip-1")
		gomega.Expect(second.Allowed).To(gomega.BeTrue())
		gomega.Expect(second.Remaining).To(gomega.Equal(1))

		third := check("ip-1")
		gomega.Expect(third.Allowed).To(gomega.BeTrue())
		gomega.Expect(third.Remaining).To(gomega.Equal(0))

		fourth := check("ip-1")
		gomega.Expect(fourth.Allowed).To(gomega.BeFalse())
		gomega.Expect(fourth.Remaining).To(gomega.Equal(0))
		gomega.Expect(fourth.ResetAt).To(gomega.Equal(first.ResetAt))
	})

	ginkgo.It("should keep the reset time fixed while denying", func() {
		start := check("ip-1").ResetAt
		check("ip-1")
		check("ip-1")

		clock = clock.Add(30 * time.Second)
		denied := check("ip-1")
		gomega.Expect(denied.Allowed).To(gomega.BeFalse())
		gomega.Expect(denied.ResetAt).To(gomega.Equal(start))
	})

	ginkgo.It("should start a fresh window once the old one passes", func() {
		check("ip-1")
		check("ip-1")
		check("ip-1")
		gomega.Expect(check("ip-1").Allowed).To(gomega.BeFalse())

		clock = clock.Add(time.Minute + time.Second)
		fresh := check("ip-1")
		gomega.Expect(fresh.Allowed).To(gomega.BeTrue())
		gomega.Expect(fresh.Remaining).To(gomega.Equal(2))
		gomega.Expect(fresh.ResetAt).To(gomega.Equal(clock.Add(time.Minute)))
	})

	ginkgo.It("should track identifiers independently", func() {
		check("ip-1")
		check("ip-1")
		check("ip-1")
		gomega.Expect(check("ip-1").Allowed).To(gomega.BeFalse())
		gomega.Expect(check("ip-2").Allowed).To(gomega.BeTrue())
	})

	ginkgo.It("should evict expired windows when the map is full", func() {
		for i := 0; i < maxTrackedIdentifiers; i++ {
			check(fmt.Sprintf("ip-%d", i))
		}
		gomega.Expect(limiter.Len()).To(gomega.Equal(maxTrackedIdentifiers))

		clock = clock.Add(2 * time.Minute)
		check("fresh-ip")
		gomega.Expect(limiter.Len()).To(gomega.Equal(1))
	})
})
