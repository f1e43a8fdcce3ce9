package auth

import (
	"context"
	"sync"
	"time"
)

// RateLimitResult reports the outcome of one attempt against a window.
type RateLimitResult struct {
	Allowed   bool      `json:"allowed"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

// RateLimiter bounds repeated sensitive operations per caller identity
// within a time window.
type RateLimiter interface {
	Check(ctx context.Context, identifier string, maxAttempts int, window time.Duration) (RateLimitResult, error)
}

// maxTrackedIdentifiers caps the in-memory counter map. Once crossed, a
// sweep drops entries whose window has passed before new ones are added.
const maxTrackedIdentifiers = 10000

type rateLimitEntry struct {
	count   int
	resetAt time.Time
}

// MemoryRateLimiter keeps fixed-window counters in process memory. State
// does not survive restarts and is not shared across instances; use the
// Redis limiter for multi-instance deployments.
type MemoryRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*rateLimitEntry
	now     func() time.Time
}

func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{
		entries: make(map[string]*rateLimitEntry),
		now:     time.Now,
	}
}

func (l *MemoryRateLimiter) Check(_ context.Context, identifier string, maxAttempts int, window time.Duration) (RateLimitResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.entries[identifier]

	// First sight of the identifier, or the window expired: fresh window.
	if !ok || now.After(entry.resetAt) {
		if !ok && len(l.entries) >= maxTrackedIdentifiers {
			l.evictStale(now)
		}
		resetAt := now.Add(window)
		l.entries[identifier] = &rateLimitEntry{count: 1, resetAt: resetAt}
		return RateLimitResult{Allowed: true, Remaining: maxAttempts - 1, ResetAt: resetAt}, nil
	}

	// At the limit: deny without incrementing further.
	if entry.count >= maxAttempts {
		return RateLimitResult{Allowed: false, Remaining: 0, ResetAt: entry.resetAt}, nil
	}

	entry.count++
	return RateLimitResult{Allowed: true, Remaining: maxAttempts - entry.count, ResetAt: entry.resetAt}, nil
}

// evictStale removes expired windows. Called with the lock held.
func (l *MemoryRateLimiter) evictStale(now time.Time) {
	for id, entry := range l.entries {
		if now.After(entry.resetAt) {
			delete(l.entries, id)
		}
	}
}

// Len reports the number of tracked identifiers.
func (l *MemoryRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
