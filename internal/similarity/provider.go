package similarity

import (
	"context"
	"fmt"
)

// Provider supplies similar players and comparison data for a selected player.
// Lookups are keyed by exact player name.
type Provider interface {
	// FindSimilar returns the similar-players list, empty when name is unknown
	FindSimilar(ctx context.Context, name string) ([]PlayerRecord, error)

	// GetComparisonStats returns the comparison for (name, other); ok is false
	// when the pair has no entry
	GetComparisonStats(ctx context.Context, name, other string) (*Comparison, bool, error)

	// UniqueTraits returns the traits that set name apart, empty when unknown
	UniqueTraits(ctx context.Context, name string) ([]TraitDelta, error)
}

// FixtureProvider serves the hard-coded fixtures. Every call returns fresh copies.
type FixtureProvider struct {
	similar map[string][]PlayerRecord
	pairs   map[string]map[string]Comparison
	unique  map[string][]TraitDelta
}

// NewFixtureProvider creates a provider over the built-in fixtures
func NewFixtureProvider() *FixtureProvider {
	return &FixtureProvider{
		similar: similarFixtures,
		pairs:   comparisonFixtures(),
		unique:  uniqueTraitFixtures,
	}
}

// FindSimilar returns the fixture list for name
func (p *FixtureProvider) FindSimilar(ctx context.Context, name string) ([]PlayerRecord, error) {
	records := p.similar[name]
	out := make([]PlayerRecord, 0, len(records))
	for _, r := range records {
		out = append(out, r.Clone())
	}
	return out, nil
}

// GetComparisonStats returns the fixture comparison for the pair
func (p *FixtureProvider) GetComparisonStats(ctx context.Context, name, other string) (*Comparison, bool, error) {
	c, ok := p.pairs[name][other]
	if !ok {
		return nil, false, nil
	}

	out := Comparison{
		Player: c.Player,
		Other:  c.Other,
		Traits: append([]TraitDelta(nil), c.Traits...),
		Stats:  append([]StatRow(nil), c.Stats...),
	}
	return &out, true, nil
}

// UniqueTraits returns the fixture unique traits for name
func (p *FixtureProvider) UniqueTraits(ctx context.Context, name string) ([]TraitDelta, error) {
	return append([]TraitDelta{}, p.unique[name]...), nil
}

// Players returns every selected player that has a fixture entry
func (p *FixtureProvider) Players() []string {
	names := make([]string, 0, len(p.similar))
	for name := range p.similar {
		names = append(names, name)
	}
	return names
}

// ValidateFixtures checks every stat row of the built-in fixtures
func ValidateFixtures() error {
	for player, others := range comparisonFixtures() {
		for other, c := range others {
			for _, row := range c.Stats {
				if !row.Consistent() {
					return fmt.Errorf("stat %q for %s vs %s: diff %.2f != %.2f - %.2f",
						row.Stat, player, other, row.Diff, row.Compared, row.Base)
				}
			}
		}
	}
	return nil
}
