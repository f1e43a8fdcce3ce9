package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisCommands is the slice of the client surface the limiter needs.
type redisCommands interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	PExpire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	PTTL(ctx context.Context, key string) *redis.DurationCmd
}

// RedisRateLimiter shares fixed-window counters across instances through
// a TTL-capable store. Keys expire with their window, so stale
// identifiers never accumulate.
type RedisRateLimiter struct {
	client redisCommands
	prefix string
}

func NewRedisRateLimiter(client *redis.Client) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		prefix: "ratelimit:",
	}
}

func (l *RedisRateLimiter) Check(ctx context.Context, identifier string, maxAttempts int, window time.Duration) (RateLimitResult, error) {
	key := l.prefix + identifier

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		// Fail closed: a limiter we cannot reach denies rather than
		// letting attempts through unbounded.
		return RateLimitResult{}, fmt.Errorf("rate limit store: %w", err)
	}

	if count == 1 {
		if err := l.client.PExpire(ctx, key, window).Err(); err != nil {
			return RateLimitResult{}, fmt.Errorf("rate limit store: %w", err)
		}
		return RateLimitResult{
			Allowed:   true,
			Remaining: maxAttempts - 1,
			ResetAt:   time.Now().Add(window),
		}, nil
	}

	ttl, err := l.client.PTTL(ctx, key).Result()
	if err != nil {
		return RateLimitResult{}, fmt.Errorf("rate limit store: %w", err)
	}
	if ttl < 0 {
		// An expiry write that failed after an earlier increment leaves
		// the key without a TTL. Re-arm it so the identifier recovers
		// with the next window instead of staying denied forever.
		if err := l.client.PExpire(ctx, key, window).Err(); err != nil {
			return RateLimitResult{}, fmt.Errorf("rate limit store: %w", err)
		}
		ttl = window
	}
	resetAt := time.Now().Add(ttl)

	if count > int64(maxAttempts) {
		return RateLimitResult{Allowed: false, Remaining: 0, ResetAt: resetAt}, nil
	}

	return RateLimitResult{
		Allowed:   true,
		Remaining: maxAttempts - int(count),
		ResetAt:   resetAt,
	}, nil
}
