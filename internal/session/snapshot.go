package session

import (
	"time"

	"github.com/fortuna/scout/internal/similarity"
)

// Snapshot is a point-in-time copy of a selection and its enrichment state
type Snapshot struct {
	ID            uint64                            `json:"id"`
	Position      string                            `json:"position"`
	PositionLabel string                            `json:"position_label"`
	Player        similarity.PlayerRecord           `json:"player"`
	Similar       []similarity.PlayerRecord         `json:"similar"`
	Comparisons   map[string]*similarity.Comparison `json:"comparisons"`
	UniqueTraits  []similarity.TraitDelta           `json:"unique_traits"`

	// Pending counts lookups still in flight, the selected player included
	Pending int  `json:"pending"`
	Done    bool `json:"done"`

	// Version increases with every applied result
	Version   int       `json:"version"`
	StartedAt time.Time `json:"started_at"`
}

// clone deep-copies the mutable parts of s. Comparisons are immutable once
// loaded and are shared.
func (s Snapshot) clone() Snapshot {
	out := s
	out.Player = s.Player.Clone()
	out.Similar = make([]similarity.PlayerRecord, len(s.Similar))
	for i, p := range s.Similar {
		out.Similar[i] = p.Clone()
	}
	out.Comparisons = make(map[string]*similarity.Comparison, len(s.Comparisons))
	for k, v := range s.Comparisons {
		out.Comparisons[k] = v
	}
	out.UniqueTraits = append([]similarity.TraitDelta{}, s.UniqueTraits...)
	return out
}

// Enriched returns how many of the similar players have an image or team
func (s Snapshot) Enriched() int {
	n := 0
	for _, p := range s.Similar {
		if p.ImageURL != "" || p.Team != "" {
			n++
		}
	}
	return n
}
