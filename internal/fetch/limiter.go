package fetch

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Limiter is a fixed-capacity admission gate for detail-level requests.
// List endpoints are cheap, but per-item detail endpoints sit behind a
// secondary rate limit; naive full fan-out when enriching 40 commits
// reliably trips it.
type Limiter struct {
	sem *semaphore.Weighted
}

// NewLimiter creates a limiter admitting at most capacity concurrent holders.
// A non-positive capacity defaults to 3.
func NewLimiter(capacity int) *Limiter {
	if capacity <= 0 {
		capacity = 3
	}
	return &Limiter{sem: semaphore.NewWeighted(int64(capacity))}
}

// Acquire blocks until a slot frees or ctx is done.
func (l *Limiter) Acquire(ctx context.Context) error {
	return l.sem.Acquire(ctx, 1)
}

// Release frees a slot taken by Acquire.
func (l *Limiter) Release() {
	l.sem.Release(1)
}
