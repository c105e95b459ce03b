package enrich

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/fortuna/scout/internal/ingest/wiki"
	"github.com/fortuna/scout/internal/similarity"
)

// DefaultConcurrency bounds parallel lookups when enriching a roster
const DefaultConcurrency = 8

// Source is the encyclopedia surface the enricher needs
type Source interface {
	Search(ctx context.Context, query string) ([]wiki.SearchHit, error)
	Thumbnail(ctx context.Context, title string) (string, error)
	Extract(ctx context.Context, title string) (string, error)
	LeadSection(ctx context.Context, title string) (string, error)
}

// Options tune an Enricher
type Options struct {
	// SearchSuffix is appended to the name for a second search when the
	// raw name finds nothing. Empty disables the retry.
	SearchSuffix string

	// Concurrency bounds parallel roster lookups
	Concurrency int

	// SkipTeam disables team extraction
	SkipTeam bool

	// Cache stores results by name; nil disables caching
	Cache Cache
}

// Enricher resolves player photos and current teams. Lookups never fail:
// every error degrades to an empty Result.
type Enricher struct {
	source Source
	opts   Options
}

// NewEnricher creates an enricher over source
func NewEnricher(source Source, opts Options) *Enricher {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Enricher{source: source, opts: opts}
}

// Lookup resolves the image and team for name
func (e *Enricher) Lookup(ctx context.Context, name string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[enrich] ❌ lookup for %s panicked: %v", name, r)
			res = Result{}
		}
	}()

	if e.opts.Cache != nil {
		if cached, ok := e.opts.Cache.Get(ctx, name); ok {
			return cached
		}
	}

	res, err := e.lookup(ctx, name)
	if err != nil {
		log.Printf("[enrich] ❌ lookup for %s failed: %v", name, err)
		return Result{}
	}

	if e.opts.Cache != nil {
		e.opts.Cache.Set(ctx, name, res)
	}
	return res
}

func (e *Enricher) lookup(ctx context.Context, name string) (Result, error) {
	title, err := e.resolveTitle(ctx, name)
	if err != nil {
		return Result{}, err
	}
	if title == "" {
		log.Printf("[enrich] no encyclopedia page found for %s", name)
		return Result{}, nil
	}

	image, err := e.source.Thumbnail(ctx, title)
	if err != nil {
		return Result{}, err
	}
	if image == "" {
		log.Printf("[enrich] no image found for %s", name)
	}

	res := Result{ImageURL: stringPtr(image)}
	if e.opts.SkipTeam {
		return res, nil
	}

	team, err := e.resolveTeam(ctx, title)
	if err != nil {
		return Result{}, err
	}
	if team == "" {
		log.Printf("[enrich] no team phrase matched for %s", name)
	}
	res.Team = stringPtr(team)
	return res, nil
}

// resolveTitle returns the canonical title of the top search hit, retrying
// once with the disambiguating suffix. "" means no page.
func (e *Enricher) resolveTitle(ctx context.Context, name string) (string, error) {
	queries := []string{name}
	if e.opts.SearchSuffix != "" {
		queries = append(queries, name+" "+e.opts.SearchSuffix)
	}

	for _, q := range queries {
		hits, err := e.source.Search(ctx, q)
		if err != nil {
			return "", err
		}
		if len(hits) > 0 {
			return hits[0].Title, nil
		}
	}
	return "", nil
}

// resolveTeam reads the infobox first and the plain-text intro second
func (e *Enricher) resolveTeam(ctx context.Context, title string) (string, error) {
	html, err := e.source.LeadSection(ctx, title)
	if err != nil {
		return "", fmt.Errorf("lead section: %w", err)
	}
	if team, ok := wiki.ExtractInfoboxTeam(html); ok {
		return team, nil
	}

	text, err := e.source.Extract(ctx, title)
	if err != nil {
		return "", fmt.Errorf("extract: %w", err)
	}
	team, _ := wiki.ExtractTeam(text)
	return team, nil
}

// EnrichRoster looks up every player concurrently and returns the results in
// roster order. apply, when non-nil, receives each result as soon as it
// completes; calls may come from several goroutines. A failed lookup only
// leaves its own slot empty. Every slot is applied exactly once, with an
// empty result when ctx ends before its lookup starts.
func (e *Enricher) EnrichRoster(ctx context.Context, players []similarity.PlayerRecord, apply func(i int, r Result)) []Result {
	results := make([]Result, len(players))
	sem := make(chan struct{}, e.opts.Concurrency)

	var wg sync.WaitGroup
	for i, p := range players {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				if apply != nil {
					apply(i, Result{})
				}
				return
			}

			r := e.Lookup(ctx, name)
			results[i] = r
			if apply != nil {
				apply(i, r)
			}
		}(i, p.Name)
	}
	wg.Wait()

	return results
}

// Apply copies a result onto a player record
func Apply(p *similarity.PlayerRecord, r Result) {
	if r.ImageURL != nil {
		p.ImageURL = *r.ImageURL
	}
	if r.Team != nil {
		p.Team = *r.Team
	}
}
