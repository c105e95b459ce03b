package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"

	"github.com/fortuna/scout/internal/cache"
)

// Cache stores lookup results by player name
type Cache interface {
	Get(ctx context.Context, name string) (Result, bool)
	Set(ctx context.Context, name string, r Result)
}

type lruEntry struct {
	result  Result
	expires time.Time
}

// LRUCache keeps the most recent lookups in process memory
type LRUCache struct {
	entries *lru.Cache[string, lruEntry]
	ttl     time.Duration

	mu  sync.Mutex
	now func() time.Time
}

// NewLRUCache creates an in-memory cache holding up to size results for ttl
func NewLRUCache(size int, ttl time.Duration) (*LRUCache, error) {
	entries, err := lru.New[string, lruEntry](size)
	if err != nil {
		return nil, err
	}
	return &LRUCache{entries: entries, ttl: ttl, now: time.Now}, nil
}

// Get returns the unexpired result for name
func (c *LRUCache) Get(ctx context.Context, name string) (Result, bool) {
	e, ok := c.entries.Get(name)
	if !ok {
		return Result{}, false
	}
	if c.ttl > 0 && c.clock().After(e.expires) {
		c.entries.Remove(name)
		return Result{}, false
	}
	return e.result, true
}

// Set stores the result for name
func (c *LRUCache) Set(ctx context.Context, name string, r Result) {
	c.entries.Add(name, lruEntry{result: r, expires: c.clock().Add(c.ttl)})
}

// Len returns the number of cached results
func (c *LRUCache) Len() int {
	return c.entries.Len()
}

func (c *LRUCache) clock() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now()
}

// RedisLookupCache shares lookup results between instances through Redis
type RedisLookupCache struct {
	redis *cache.RedisCache
	ttl   time.Duration
}

// NewRedisLookupCache wraps a Redis cache connection
func NewRedisLookupCache(rc *cache.RedisCache, ttl time.Duration) *RedisLookupCache {
	return &RedisLookupCache{redis: rc, ttl: ttl}
}

// Get returns the cached result for name. Misses and Redis errors both
// report false.
func (c *RedisLookupCache) Get(ctx context.Context, name string) (Result, bool) {
	raw, err := c.redis.Get(ctx, cache.EnrichmentKey(name))
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("[enrich] cache read failed for %s: %v", name, err)
		}
		return Result{}, false
	}

	var r Result
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		log.Printf("[enrich] discarding undecodable cache entry for %s: %v", name, err)
		return Result{}, false
	}
	return r, true
}

// Set stores the result for name with the configured TTL
func (c *RedisLookupCache) Set(ctx context.Context, name string, r Result) {
	data, err := json.Marshal(r)
	if err != nil {
		log.Printf("[enrich] cache encode failed for %s: %v", name, err)
		return
	}
	if err := c.redis.Set(ctx, cache.EnrichmentKey(name), data, c.ttl); err != nil {
		log.Printf("[enrich] cache write failed for %s: %v", name, err)
	}
}
