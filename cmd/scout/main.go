package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fortuna/scout/internal/api/rest"
	"github.com/fortuna/scout/internal/api/websocket"
	"github.com/fortuna/scout/internal/cache"
	"github.com/fortuna/scout/internal/config"
	"github.com/fortuna/scout/internal/enrich"
	"github.com/fortuna/scout/internal/ingest/wiki"
	"github.com/fortuna/scout/internal/publisher"
	"github.com/fortuna/scout/internal/session"
	"github.com/fortuna/scout/internal/similarity"
	"github.com/fortuna/scout/internal/store"
	"github.com/fortuna/scout/internal/store/repository"
)

const (
	serviceName    = "scout"
	serviceVersion = "1.0.0"
)

func main() {
	log.Printf("Starting %s v%s - Player Similarity Service", serviceName, serviceVersion)

	cfg := config.Load()

	if err := similarity.ValidateFixtures(); err != nil {
		log.Fatalf("Invalid similarity fixtures: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Similarity data: PostgreSQL when configured, built-in fixtures otherwise
	var provider similarity.Provider = similarity.NewFixtureProvider()
	var db *store.Database
	if cfg.SimilarityDSN != "" {
		var err error
		db, err = store.NewDatabase(cfg.SimilarityDSN)
		if err != nil {
			log.Fatalf("Failed to connect to similarity database: %v", err)
		}
		defer db.Close()

		if err := db.RunMigrations(ctx); err != nil {
			log.Fatalf("Failed to run database migrations: %v", err)
		}

		repo := repository.NewSimilarityRepository(db)
		if err := repo.Seed(ctx, similarity.NewFixtureProvider()); err != nil {
			log.Printf("⚠️  Seed data warning: %v (continuing anyway)", err)
		}
		provider = repo
		log.Println("✓ Serving similarity data from PostgreSQL")
	} else {
		log.Println("✓ Serving built-in similarity fixtures")
	}

	// Redis is optional; it backs the lookup cache and event streams
	var redisCache *cache.RedisCache
	if cfg.RedisURL != "" {
		var err error
		redisCache, err = connectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisCache.Close()
		log.Println("✓ Connected to Redis")
	}

	// Encyclopedia client
	var fetcher wiki.Fetcher
	switch cfg.Wiki.Fetcher {
	case "browser":
		bf := wiki.NewBrowserFetcher(cfg.Wiki.Timeout)
		defer bf.Close()
		fetcher = bf
	default:
		fetcher = wiki.NewHTTPFetcher(cfg.Wiki.Timeout, cfg.Wiki.UserAgent)
	}
	fetcher = wiki.NewRateLimitedFetcher(fetcher, cfg.Wiki.MinInterval)
	client := wiki.NewClient(cfg.Wiki.APIBase, fetcher)
	log.Printf("✓ Encyclopedia client ready (%s fetcher, %s)", cfg.Wiki.Fetcher, cfg.Wiki.APIBase)

	lookupCache, err := newLookupCache(cfg.Enrich, redisCache)
	if err != nil {
		log.Fatalf("Failed to create lookup cache: %v", err)
	}

	enricher := enrich.NewEnricher(client, enrich.Options{
		SearchSuffix: cfg.Wiki.SearchSuffix,
		Concurrency:  cfg.Enrich.Concurrency,
		SkipTeam:     cfg.Enrich.SkipTeam,
		Cache:        lookupCache,
	})

	manager := session.NewManager(ctx, provider, enricher)

	if redisCache != nil {
		publisher.NewRedisPublisher(redisCache.Client()).Attach(manager)
		log.Println("✓ Publishing session events to Redis streams")
	}

	// REST API server
	handler := rest.NewHandler(provider, enricher, manager)
	if redisCache != nil {
		handler.AddBackend("redis", redisCache)
	}
	if db != nil {
		handler.AddBackend("postgres", db)
	}

	restServer := rest.NewServer(cfg.Server.RESTPort, handler, cfg.Server.CORSOrigins)
	go func() {
		log.Printf("Starting REST API server on port %s", cfg.Server.RESTPort)
		if err := restServer.Start(); err != nil {
			log.Printf("REST server error: %v", err)
		}
	}()

	// WebSocket server
	wsServer := websocket.NewServer(manager)
	go func() {
		log.Printf("Starting WebSocket server on port %s", cfg.Server.WSPort)
		if err := wsServer.Start(ctx, cfg.Server.WSPort); err != nil {
			log.Printf("WebSocket server error: %v", err)
		}
	}()

	log.Printf("✓ Scout v%s started successfully", serviceVersion)
	log.Printf("  REST API: http://0.0.0.0:%s", cfg.Server.RESTPort)
	log.Printf("  WebSocket: ws://0.0.0.0:%s/ws/session", cfg.Server.WSPort)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down Scout gracefully...")

	// stops in-flight enrichment and the websocket hub
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := restServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("REST API server shutdown error: %v", err)
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("WebSocket server shutdown error: %v", err)
	}

	log.Println("Scout stopped")
}

// connectRedis retries until Redis answers
func connectRedis(url string) (*cache.RedisCache, error) {
	maxRetries := 10
	retryDelay := 2 * time.Second

	var rc *cache.RedisCache
	var err error
	for i := 0; i < maxRetries; i++ {
		rc, err = cache.NewRedisCache(url)
		if err == nil {
			return rc, nil
		}
		if i < maxRetries-1 {
			log.Printf("Redis connection attempt %d/%d failed: %v (retrying in %v)", i+1, maxRetries, err, retryDelay)
			time.Sleep(retryDelay)
		}
	}
	return nil, err
}

// newLookupCache builds the cache selected by cfg.Cache; nil disables caching
func newLookupCache(cfg config.EnrichConfig, rc *cache.RedisCache) (enrich.Cache, error) {
	switch cfg.Cache {
	case "lru":
		log.Printf("✓ In-memory lookup cache (%d entries, ttl %v)", cfg.CacheSize, cfg.CacheTTL)
		return enrich.NewLRUCache(cfg.CacheSize, cfg.CacheTTL)
	case "redis":
		if rc == nil {
			log.Println("⚠️  ENRICH_CACHE=redis without REDIS_URL, lookups are not cached")
			return nil, nil
		}
		log.Printf("✓ Redis lookup cache (ttl %v)", cfg.CacheTTL)
		return enrich.NewRedisLookupCache(rc, cfg.CacheTTL), nil
	default:
		return nil, nil
	}
}
