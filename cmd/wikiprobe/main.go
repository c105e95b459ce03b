package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/fortuna/scout/internal/catalog"
	"github.com/fortuna/scout/internal/enrich"
	"github.com/fortuna/scout/internal/ingest/wiki"
	"github.com/fortuna/scout/internal/similarity"
)

const (
	appName    = "scout-wikiprobe"
	appVersion = "1.0.0"
)

// probeResult is one output line
type probeResult struct {
	Player   string  `json:"player"`
	ImageURL *string `json:"image_url"`
	Team     *string `json:"team"`
}

func main() {
	log.Printf("=== %s v%s ===", appName, appVersion)

	var (
		apiBase     = flag.String("base", getEnv("WIKI_API_BASE", wiki.BaseURL), "Encyclopedia base URL")
		fetcherKind = flag.String("fetcher", getEnv("WIKI_FETCHER", "http"), "Fetcher: http or browser")
		timeout     = flag.Duration("timeout", 10*time.Second, "Per-request timeout")
		suffix      = flag.String("suffix", "footballer", "Search suffix for the second attempt")
		position    = flag.String("position", "", "Probe every player of a position instead of the arguments")
		concurrency = flag.Int("concurrency", enrich.DefaultConcurrency, "Parallel lookups for -position")
	)
	flag.Parse()

	names := flag.Args()
	if *position != "" {
		if !catalog.Known(*position) {
			log.Fatalf("unknown position %q", *position)
		}
		names = catalog.Roster(*position)
	}
	if len(names) == 0 {
		log.Fatalf("Specify player names or --position")
	}

	var fetcher wiki.Fetcher
	if *fetcherKind == "browser" {
		bf := wiki.NewBrowserFetcher(*timeout)
		defer bf.Close()
		fetcher = bf
	} else {
		fetcher = wiki.NewHTTPFetcher(*timeout, "")
	}

	enricher := enrich.NewEnricher(wiki.NewClient(*apiBase, fetcher), enrich.Options{
		SearchSuffix: *suffix,
		Concurrency:  *concurrency,
	})

	players := make([]similarity.PlayerRecord, len(names))
	for i, n := range names {
		players[i] = similarity.PlayerRecord{Name: n}
	}

	start := time.Now()
	results := enricher.EnrichRoster(context.Background(), players, nil)

	enc := json.NewEncoder(os.Stdout)
	found := 0
	for i, r := range results {
		if !r.Empty() {
			found++
		}
		enc.Encode(probeResult{Player: names[i], ImageURL: r.ImageURL, Team: r.Team})
	}

	log.Printf("✓ %d/%d players resolved in %v", found, len(names), time.Since(start).Round(time.Millisecond))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
