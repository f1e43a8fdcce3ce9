package auth

import (
	"context"
	"errors"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"
)

// fakeRedisStore mimics the counter semantics the limiter relies on:
// INCR creates keys at 1; a key without an entry in ttls has no expiry.
type fakeRedisStore struct {
	counts    map[string]int64
	ttls      map[string]time.Duration
	incrErr   error
	expireErr error
}

func newFakeRedisStore() *fakeRedisStore {
	return &fakeRedisStore{
		counts: make(map[string]int64),
		ttls:   make(map[string]time.Duration),
	}
}

func (f *fakeRedisStore) Incr(_ context.Context, key string) *redis.IntCmd {
	if f.incrErr != nil {
		return redis.NewIntResult(0, f.incrErr)
	}
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeRedisStore) PExpire(_ context.Context, key string, window time.Duration) *redis.BoolCmd {
	if f.expireErr != nil {
		return redis.NewBoolResult(false, f.expireErr)
	}
	f.ttls[key] = window
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedisStore) PTTL(_ context.Context, key string) *redis.DurationCmd {
	if ttl, ok := f.ttls[key]; ok {
		return redis.NewDurationResult(ttl, nil)
	}
	return redis.NewDurationResult(-1, nil)
}

func (f *fakeRedisStore) expireKey(key string) {
	delete(f.counts, key)
	delete(f.ttls, key)
}

var _ = ginkgo.Describe("RedisRateLimiter", func() {
	var (
		store   *fakeRedisStore
		limiter *RedisRateLimiter
		ctx     context.Context
	)

	const identifier = "198.51.100.7"
	const key = "ratelimit:" + identifier

	ginkgo.BeforeEach(func() {
		store = newFakeRedisStore()
		limiter = &RedisRateLimiter{client: store, prefix: "ratelimit:"}
		ctx = context.Background()
	})

	ginkgo.It("should allow up to the maximum and then deny within the window", func() {
		first, err := limiter.Check(ctx, identifier, 2, time.Minute)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(first.Allowed).To(gomega.BeTrue())
		gomega.Expect(first.Remaining).To(gomega.Equal(1))
		gomega.Expect(store.ttls).To(gomega.HaveKey(key))

		second, err := limiter.Check(ctx, identifier, 2, time.Minute)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(second.Allowed).To(gomega.BeTrue())
		gomega.Expect(second.Remaining).To(gomega.Equal(0))

		third, err := limiter.Check(ctx, identifier, 2, time.Minute)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(third.Allowed).To(gomega.BeFalse())
		gomega.Expect(third.ResetAt).To(gomega.BeTemporally("~", time.Now().Add(time.Minute), time.Second))
	})

	ginkgo.It("should start a fresh window after the key expires", func() {
		for i := 0; i < 3; i++ {
			_, err := limiter.Check(ctx, identifier, 2, time.Minute)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		}
		store.expireKey(key)

		result, err := limiter.Check(ctx, identifier, 2, time.Minute)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(result.Allowed).To(gomega.BeTrue())
		gomega.Expect(result.Remaining).To(gomega.Equal(1))
	})

	ginkgo.It("should fail closed when the store is unreachable", func() {
		store.incrErr = errors.New("connection refused")

		_, err := limiter.Check(ctx, identifier, 2, time.Minute)
		gomega.Expect(err).To(gomega.HaveOccurred())
	})

	ginkgo.Context("when the expiry write failed after an increment", func() {
		ginkgo.It("should re-arm the window on the next check instead of denying the identifier forever", func() {
			store.expireErr = errors.New("connection reset")
			_, err := limiter.Check(ctx, identifier, 2, time.Minute)
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(store.ttls).ToNot(gomega.HaveKey(key))

			store.expireErr = nil
			result, err := limiter.Check(ctx, identifier, 2, time.Minute)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(result.Allowed).To(gomega.BeTrue())
			gomega.Expect(store.ttls).To(gomega.HaveKey(key))
			gomega.Expect(result.ResetAt).To(gomega.BeTemporally("~", time.Now().Add(time.Minute), time.Second))
		})

		ginkgo.It("should bound a denial by the re-armed window", func() {
			store.expireErr = errors.New("connection reset")
			_, _ = limiter.Check(ctx, identifier, 1, time.Minute)

			store.expireErr = nil
			denied, err := limiter.Check(ctx, identifier, 1, time.Minute)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(denied.Allowed).To(gomega.BeFalse())
			gomega.Expect(store.ttls).To(gomega.HaveKey(key))

			store.expireKey(key)
			recovered, err := limiter.Check(ctx, identifier, 1, time.Minute)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(recovered.Allowed).To(gomega.BeTrue())
		})
	})
})
