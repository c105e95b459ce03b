package similarity

import "math"

// PlayerRecord is one entry of a similar-players list
type PlayerRecord struct {
	Name       string   `json:"name"`
	Similarity float64  `json:"similarity"`
	Strengths  []string `json:"strengths,omitempty"`
	ImageURL   string   `json:"image_url,omitempty"`
	Team       string   `json:"team,omitempty"`
}

// Clone returns a copy that shares no slices with r
func (r PlayerRecord) Clone() PlayerRecord {
	if r.Strengths != nil {
		r.Strengths = append([]string(nil), r.Strengths...)
	}
	return r
}

// TraitDelta is a signed difference on a named statistic between two players.
// Positive values are favorable to the compared player.
type TraitDelta struct {
	Trait string  `json:"trait"`
	Value float64 `json:"value"`
}

// Favorable reports whether the delta favors the compared player
func (d TraitDelta) Favorable() bool {
	return d.Value > 0
}

// Polarity returns "up", "down" or "flat" for rendering
func (d TraitDelta) Polarity() string {
	switch {
	case d.Value > 0:
		return "up"
	case d.Value < 0:
		return "down"
	default:
		return "flat"
	}
}

// StatRow holds absolute values of one stat for both players
type StatRow struct {
	Stat     string  `json:"stat"`
	Base     float64 `json:"base"`
	Compared float64 `json:"compared"`
	Diff     float64 `json:"diff"`
}

// Consistent reports whether Diff equals Compared - Base to one decimal place
func (s StatRow) Consistent() bool {
	return roundTenth(s.Diff) == roundTenth(s.Compared-s.Base)
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

// Comparison is the trait/stat sub-record for a (player, other) pair
type Comparison struct {
	Player string       `json:"player"`
	Other  string       `json:"other"`
	Traits []TraitDelta `json:"traits,omitempty"`
	Stats  []StatRow    `json:"stats,omitempty"`
}
