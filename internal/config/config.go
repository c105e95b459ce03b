package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// ServerConfig holds the listening ports
type ServerConfig struct {
	RESTPort    string
	WSPort      string
	CORSOrigins []string
}

// WikiConfig holds encyclopedia client settings
type WikiConfig struct {
	APIBase      string
	Fetcher      string // "http" or "browser"
	Timeout      time.Duration
	UserAgent    string
	SearchSuffix string
	// MinInterval spaces outgoing requests; zero disables the limit
	MinInterval  time.Duration
}

// EnrichConfig holds enrichment settings
type EnrichConfig struct {
	Concurrency int
	SkipTeam    bool
	Cache       string // "none", "lru" or "redis"
	CacheSize   int
	CacheTTL    time.Duration
}

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Wiki          WikiConfig
	Enrich        EnrichConfig
	RedisURL      string
	SimilarityDSN string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			RESTPort:    getEnv("REST_PORT", "8080"),
			WSPort:      getEnv("WS_PORT", "8081"),
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
		},
		Wiki: WikiConfig{
			APIBase:      getEnv("WIKI_API_BASE", "https://en.wikipedia.org"),
			Fetcher:      strings.ToLower(getEnv("WIKI_FETCHER", "http")),
			Timeout:      getDuration("WIKI_TIMEOUT", 10*time.Second),
			UserAgent:    getEnv("WIKI_USER_AGENT", ""),
			SearchSuffix: getEnv("WIKI_SEARCH_SUFFIX", "footballer"),
			MinInterval:  getDuration("WIKI_MIN_INTERVAL", 0),
		},
		Enrich: EnrichConfig{
			Concurrency: getInt("ENRICH_CONCURRENCY", 8),
			SkipTeam:    getEnv("ENRICH_TEAMS", "true") != "true",
			Cache:       strings.ToLower(getEnv("ENRICH_CACHE", "none")),
			CacheSize:   getInt("ENRICH_CACHE_SIZE", 512),
			CacheTTL:    getDuration("ENRICH_CACHE_TTL", time.Hour),
		},
		RedisURL:      getEnv("REDIS_URL", ""),
		SimilarityDSN: getEnv("SIMILARITY_DSN", ""),
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		log.Printf("⚠️  invalid %s=%q, using %d", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v < 0 {
		log.Printf("⚠️  invalid %s=%q, using %v", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
