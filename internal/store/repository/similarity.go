package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/lib/pq"

	"github.com/fortuna/scout/internal/similarity"
	"github.com/fortuna/scout/internal/store"
)

// SeedSource lists every player it can describe
type SeedSource interface {
	similarity.Provider
	Players() []string
}

// SimilarityRepository serves similarity data from PostgreSQL
type SimilarityRepository struct {
	db *store.Database
}

// NewSimilarityRepository creates a new similarity repository
func NewSimilarityRepository(db *store.Database) *SimilarityRepository {
	return &SimilarityRepository{db: db}
}

// FindSimilar returns the ranked similar players of name
func (r *SimilarityRepository) FindSimilar(ctx context.Context, name string) ([]similarity.PlayerRecord, error) {
	query := `
		SELECT name, similarity, strengths
		FROM similar_players
		WHERE player = $1
		ORDER BY rank
	`

	rows, err := r.db.DB().QueryContext(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("querying similar players: %w", err)
	}
	defer rows.Close()

	records := make([]similarity.PlayerRecord, 0)
	for rows.Next() {
		var rec similarity.PlayerRecord
		var strengths pq.StringArray
		if err := rows.Scan(&rec.Name, &rec.Similarity, &strengths); err != nil {
			return nil, fmt.Errorf("scanning similar player: %w", err)
		}
		if len(strengths) > 0 {
			rec.Strengths = []string(strengths)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// GetComparisonStats returns the comparison of name with other
func (r *SimilarityRepository) GetComparisonStats(ctx context.Context, name, other string) (*similarity.Comparison, bool, error) {
	var exists bool
	err := r.db.DB().QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM comparisons WHERE player = $1 AND other = $2)", name, other).Scan(&exists)
	if err != nil {
		return nil, false, fmt.Errorf("querying comparison: %w", err)
	}
	if !exists {
		return nil, false, nil
	}

	cmp := &similarity.Comparison{Player: name, Other: other}

	cmp.Traits, err = r.traits(ctx, `
		SELECT trait, value
		FROM comparison_traits
		WHERE player = $1 AND other = $2
		ORDER BY rank
	`, name, other)
	if err != nil {
		return nil, false, fmt.Errorf("querying comparison traits: %w", err)
	}

	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT stat, base, compared, diff
		FROM comparison_stats
		WHERE player = $1 AND other = $2
		ORDER BY rank
	`, name, other)
	if err != nil {
		return nil, false, fmt.Errorf("querying comparison stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row similarity.StatRow
		if err := rows.Scan(&row.Stat, &row.Base, &row.Compared, &row.Diff); err != nil {
			return nil, false, fmt.Errorf("scanning stat row: %w", err)
		}
		cmp.Stats = append(cmp.Stats, row)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	return cmp, true, nil
}

// UniqueTraits returns the traits that set name apart
func (r *SimilarityRepository) UniqueTraits(ctx context.Context, name string) ([]similarity.TraitDelta, error) {
	traits, err := r.traits(ctx, `
		SELECT trait, value
		FROM unique_traits
		WHERE player = $1
		ORDER BY rank
	`, name)
	if err != nil {
		return nil, fmt.Errorf("querying unique traits: %w", err)
	}
	if traits == nil {
		traits = []similarity.TraitDelta{}
	}
	return traits, nil
}

func (r *SimilarityRepository) traits(ctx context.Context, query string, args ...interface{}) ([]similarity.TraitDelta, error) {
	rows, err := r.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []similarity.TraitDelta
	for rows.Next() {
		var d similarity.TraitDelta
		if err := rows.Scan(&d.Trait, &d.Value); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Seed replaces the stored data of every player src knows with src's data.
// Stat rows whose diff disagrees with their values are rejected.
func (r *SimilarityRepository) Seed(ctx context.Context, src SeedSource) error {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	players := src.Players()
	for _, player := range players {
		if err := seedPlayer(ctx, tx, src, player); err != nil {
			return fmt.Errorf("seeding %s: %w", player, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Printf("✓ Seeded similarity data for %d players", len(players))
	return nil
}

func seedPlayer(ctx context.Context, tx *sql.Tx, src SeedSource, player string) error {
	for _, q := range []string{
		"DELETE FROM similar_players WHERE player = $1",
		"DELETE FROM comparisons WHERE player = $1",
		"DELETE FROM unique_traits WHERE player = $1",
	} {
		if _, err := tx.ExecContext(ctx, q, player); err != nil {
			return err
		}
	}

	similar, err := src.FindSimilar(ctx, player)
	if err != nil {
		return err
	}

	for i, rec := range similar {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO similar_players (player, rank, name, similarity, strengths) VALUES ($1, $2, $3, $4, $5)",
			player, i, rec.Name, rec.Similarity, pq.Array(append([]string{}, rec.Strengths...)))
		if err != nil {
			return fmt.Errorf("inserting similar player %s: %w", rec.Name, err)
		}

		cmp, ok, err := src.GetComparisonStats(ctx, player, rec.Name)
		if err != nil {
			return err
		}
		if ok {
			if err := seedComparison(ctx, tx, cmp); err != nil {
				return fmt.Errorf("inserting comparison with %s: %w", rec.Name, err)
			}
		}
	}

	unique, err := src.UniqueTraits(ctx, player)
	if err != nil {
		return err
	}
	for i, d := range unique {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO unique_traits (player, rank, trait, value) VALUES ($1, $2, $3, $4)",
			player, i, d.Trait, d.Value)
		if err != nil {
			return fmt.Errorf("inserting unique trait %s: %w", d.Trait, err)
		}
	}

	return nil
}

func seedComparison(ctx context.Context, tx *sql.Tx, cmp *similarity.Comparison) error {
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO comparisons (player, other) VALUES ($1, $2)", cmp.Player, cmp.Other); err != nil {
		return err
	}

	for i, d := range cmp.Traits {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO comparison_traits (player, other, rank, trait, value) VALUES ($1, $2, $3, $4, $5)",
			cmp.Player, cmp.Other, i, d.Trait, d.Value)
		if err != nil {
			return err
		}
	}

	for i, row := range cmp.Stats {
		if !row.Consistent() {
			return fmt.Errorf("stat %q: diff %.2f != %.2f - %.2f", row.Stat, row.Diff, row.Compared, row.Base)
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO comparison_stats (player, other, rank, stat, base, compared, diff) VALUES ($1, $2, $3, $4, $5, $6, $7)",
			cmp.Player, cmp.Other, i, row.Stat, row.Base, row.Compared, row.Diff)
		if err != nil {
			return err
		}
	}

	return nil
}
