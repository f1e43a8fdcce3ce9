package internal

import (
	"context"
	"time"
)

const defaultQueryTimeout = 5 * time.Second

// WithTimeout bounds a store or network call. A zero or negative duration
// falls back to a 5 second ceiling so a missing config value can never
// disable the bound.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = defaultQueryTimeout
	}
	return context.WithTimeout(ctx, duration)
}
