package wiki

import (
	"context"
	"sync"
	"time"
)

// RateLimitedFetcher spaces requests of the wrapped fetcher at least
// interval apart across all goroutines
type RateLimitedFetcher struct {
	next     Fetcher
	interval time.Duration

	mu sync.Mutex
	// nextSlot is the earliest start time of the next request
	nextSlot time.Time
}

// NewRateLimitedFetcher wraps next. A zero interval returns next unchanged.
func NewRateLimitedFetcher(next Fetcher, interval time.Duration) Fetcher {
	if interval <= 0 {
		return next
	}
	return &RateLimitedFetcher{next: next, interval: interval}
}

// Fetch waits for a free slot, then delegates
func (f *RateLimitedFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.next.Fetch(ctx, url)
}

func (f *RateLimitedFetcher) wait(ctx context.Context) error {
	f.mu.Lock()
	now := time.Now()
	start := f.nextSlot
	if start.Before(now) {
		start = now
	}
	f.nextSlot = start.Add(f.interval)
	f.mu.Unlock()

	delay := time.Until(start)
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
