package publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/scout/internal/session"
)

// EnrichmentStream receives one entry per applied enrichment result
const EnrichmentStream = "scout.enrichment"

// SelectionStream receives one entry per started selection
const SelectionStream = "scout.selections"

// RedisPublisher publishes session events to Redis streams
type RedisPublisher struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedisPublisher creates a publisher from an existing client
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{
		client:  client,
		timeout: 2 * time.Second,
	}
}

// PublishEnrichment appends an enrichment result to the enrichment stream
func (rp *RedisPublisher) PublishEnrichment(ctx context.Context, ev session.ResultEvent) error {
	return rp.publish(ctx, EnrichmentStream, ev)
}

// PublishSelection appends a new selection to the selection stream
func (rp *RedisPublisher) PublishSelection(ctx context.Context, snap session.Snapshot) error {
	return rp.publish(ctx, SelectionStream, map[string]interface{}{
		"selection_id": snap.ID,
		"position":     snap.Position,
		"player":       snap.Player.Name,
		"similar":      len(snap.Similar),
	})
}

func (rp *RedisPublisher) publish(ctx context.Context, stream string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return rp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}

// Attach publishes every applied result and every new selection of m.
// Publishing failures are logged and never reach the session.
func (rp *RedisPublisher) Attach(m *session.Manager) {
	m.OnResult(func(ev session.ResultEvent) {
		ctx, cancel := context.WithTimeout(context.Background(), rp.timeout)
		defer cancel()
		if err := rp.PublishEnrichment(ctx, ev); err != nil {
			log.Printf("[publisher] failed to publish enrichment for %s: %v", ev.Player, err)
		}
	})

	m.OnUpdate(func(snap session.Snapshot) {
		if snap.Version != 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), rp.timeout)
		defer cancel()
		if err := rp.PublishSelection(ctx, snap); err != nil {
			log.Printf("[publisher] failed to publish selection %d: %v", snap.ID, err)
		}
	})
}
