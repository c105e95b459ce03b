package wiki

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type countingFetcher struct {
	calls atomic.Int32
}

func (c *countingFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	c.calls.Add(1)
	return []byte("{}"), nil
}

func TestRateLimitedFetcher_ZeroIntervalIsPassthrough(t *testing.T) {
	next := &countingFetcher{}
	if f := NewRateLimitedFetcher(next, 0); f != Fetcher(next) {
		t.Error("expected the wrapped fetcher back for a zero interval")
	}
}

func TestRateLimitedFetcher_SpacesConcurrentRequests(t *testing.T) {
	next := &countingFetcher{}
	f := NewRateLimitedFetcher(next, 50*time.Millisecond)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.Fetch(context.Background(), "http://example.invalid"); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	// four requests need three full intervals between them
	if elapsed := time.Since(start); elapsed < 150*time.Millisecond {
		t.Errorf("requests were not spaced: took %v", elapsed)
	}
	if next.calls.Load() != 4 {
		t.Errorf("expected 4 calls, got %d", next.calls.Load())
	}
}

func TestRateLimitedFetcher_HonorsCancellation(t *testing.T) {
	next := &countingFetcher{}
	f := NewRateLimitedFetcher(next, time.Hour)

	// first request takes the free slot
	if _, err := f.Fetch(context.Background(), "http://example.invalid"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := f.Fetch(ctx, "http://example.invalid"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if next.calls.Load() != 1 {
		t.Errorf("cancelled request must not reach the wrapped fetcher")
	}
}
