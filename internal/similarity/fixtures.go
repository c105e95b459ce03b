package similarity

// Mock data standing in for the similarity model's output

var similarFixtures = map[string][]PlayerRecord{
	"Lionel Messi": {
		{Name: "Mohamed Salah", Similarity: 87, Strengths: []string{"Dribbling", "Finishing", "Vision"}},
		{Name: "Kevin De Bruyne", Similarity: 81, Strengths: []string{"Passing", "Vision", "Set Pieces"}},
		{Name: "Neymar Jr", Similarity: 89, Strengths: []string{"Dribbling", "Creativity", "Technical"}},
		{Name: "Bernardo Silva", Similarity: 79, Strengths: []string{"Ball Control", "Agility", "Passing"}},
	},
	"Virgil van Dijk": {
		{Name: "Alexsandro Ribeiro", Similarity: 96, Strengths: []string{"Aerial Duels", "Positioning", "Leadership"}},
		{Name: "Levi Colwill", Similarity: 96, Strengths: []string{"Tackling", "Aerial Duels", "Composure"}},
		{Name: "Kim Min-jae", Similarity: 96, Strengths: []string{"Physical Presence", "Interceptions", "Speed"}},
		{Name: "Amir Rrahmani", Similarity: 95, Strengths: []string{"Positioning", "Anticipation", "Tackling"}},
		{Name: "Obite N'Dicka", Similarity: 95, Strengths: []string{"Aerial Duels", "Strength", "Marking"}},
	},
	"Kevin De Bruyne": {
		{Name: "Bruno Fernandes", Similarity: 85, Strengths: []string{"Vision", "Long Shots", "Set Pieces"}},
		{Name: "Toni Kroos", Similarity: 83, Strengths: []string{"Passing", "Vision", "Ball Control"}},
		{Name: "Thomas Müller", Similarity: 78, Strengths: []string{"Positioning", "Off-the-ball", "Intelligence"}},
		{Name: "Mesut Özil", Similarity: 81, Strengths: []string{"Vision", "Passing", "Creativity"}},
	},
	"Manuel Neuer": {
		{Name: "Alisson Becker", Similarity: 84, Strengths: []string{"Reflexes", "Distribution", "Command"}},
		{Name: "Ederson", Similarity: 82, Strengths: []string{"Distribution", "Ball Playing", "Reflexes"}},
		{Name: "Thibaut Courtois", Similarity: 79, Strengths: []string{"Height", "Reach", "Positioning"}},
		{Name: "Jan Oblak", Similarity: 81, Strengths: []string{"Shot Stopping", "Positioning", "Consistency"}},
	},
}

// traitFixtures is the per-pair fingerprint: player -> compared player -> deltas
var traitFixtures = map[string]map[string][]TraitDelta{
	"Virgil van Dijk": {
		"Alexsandro Ribeiro": {
			{Trait: "PrgDist", Value: -0.8},
			{Trait: "Cmp", Value: -0.5},
			{Trait: "TotDist", Value: -1.2},
			{Trait: "Carries", Value: 0.3},
			{Trait: "Int_stats_misc", Value: 0.7},
		},
		"Levi Colwill": {
			{Trait: "PrgDist", Value: -0.3},
			{Trait: "Cmp", Value: -0.7},
			{Trait: "TotDist", Value: -0.5},
			{Trait: "Carries", Value: -0.2},
			{Trait: "Int_stats_misc", Value: 0.4},
		},
		"Kim Min-jae": {
			{Trait: "PrgDist", Value: 0.4},
			{Trait: "Cmp", Value: -0.9},
			{Trait: "TotDist", Value: 0.2},
			{Trait: "Carries", Value: 0.5},
			{Trait: "Int_stats_misc", Value: 0.3},
		},
		"Amir Rrahmani": {
			{Trait: "PrgDist", Value: -0.6},
			{Trait: "Cmp", Value: -1.1},
			{Trait: "TotDist", Value: -0.8},
			{Trait: "Carries", Value: -0.4},
			{Trait: "Int_stats_misc", Value: 0.1},
		},
		"Obite N'Dicka": {
			{Trait: "PrgDist", Value: -0.7},
			{Trait: "Cmp", Value: -0.8},
			{Trait: "TotDist", Value: -0.9},
			{Trait: "Carries", Value: -0.6},
			{Trait: "Int_stats_misc", Value: 0.5},
		},
	},
}

// statFixtures holds per-90 values: player -> compared player -> rows
var statFixtures = map[string]map[string][]StatRow{
	"Lionel Messi": {
		"Mohamed Salah": {
			{Stat: "Goals", Base: 0.8, Compared: 0.7, Diff: -0.1},
			{Stat: "Assists", Base: 0.4, Compared: 0.3, Diff: -0.1},
			{Stat: "Shots", Base: 4.5, Compared: 3.6, Diff: -0.9},
			{Stat: "Key Passes", Base: 2.4, Compared: 1.8, Diff: -0.6},
			{Stat: "Dribbles Completed", Base: 3.9, Compared: 1.4, Diff: -2.5},
		},
		"Kevin De Bruyne": {
			{Stat: "Goals", Base: 0.8, Compared: 0.3, Diff: -0.5},
			{Stat: "Assists", Base: 0.4, Compared: 0.6, Diff: 0.2},
			{Stat: "Shots", Base: 4.5, Compared: 2.7, Diff: -1.8},
			{Stat: "Key Passes", Base: 2.4, Compared: 3.2, Diff: 0.8},
			{Stat: "Dribbles Completed", Base: 3.9, Compared: 1.1, Diff: -2.8},
		},
		"Neymar Jr": {
			{Stat: "Goals", Base: 0.8, Compared: 0.6, Diff: -0.2},
			{Stat: "Assists", Base: 0.4, Compared: 0.5, Diff: 0.1},
			{Stat: "Shots", Base: 4.5, Compared: 3.8, Diff: -0.7},
			{Stat: "Key Passes", Base: 2.4, Compared: 2.6, Diff: 0.2},
			{Stat: "Dribbles Completed", Base: 3.9, Compared: 4.2, Diff: 0.3},
		},
		"Bernardo Silva": {
			{Stat: "Goals", Base: 0.8, Compared: 0.2, Diff: -0.6},
			{Stat: "Assists", Base: 0.4, Compared: 0.3, Diff: -0.1},
			{Stat: "Shots", Base: 4.5, Compared: 1.5, Diff: -3.0},
			{Stat: "Key Passes", Base: 2.4, Compared: 1.9, Diff: -0.5},
			{Stat: "Dribbles Completed", Base: 3.9, Compared: 2.1, Diff: -1.8},
		},
	},
}

var uniqueTraitFixtures = map[string][]TraitDelta{
	"Virgil van Dijk": {
		{Trait: "PrgDist", Value: 3.25},
		{Trait: "Cmp", Value: 2.75},
		{Trait: "TotDist", Value: 2.74},
		{Trait: "Total Score", Value: 2.53},
		{Trait: "Att", Value: 2.52},
		{Trait: "Carries", Value: 2.41},
		{Trait: "onxG", Value: 2.40},
		{Trait: "Int_stats_misc", Value: 2.23},
		{Trait: "Def 3rd_stats_possession", Value: 2.18},
		{Trait: "onG", Value: 2.05},
	},
}

// comparisonFixtures merges the trait and stat tables into per-pair comparisons
func comparisonFixtures() map[string]map[string]Comparison {
	out := make(map[string]map[string]Comparison)
	entry := func(player, other string) Comparison {
		if out[player] == nil {
			out[player] = make(map[string]Comparison)
		}
		c, ok := out[player][other]
		if !ok {
			c = Comparison{Player: player, Other: other}
		}
		return c
	}

	for player, others := range traitFixtures {
		for other, traits := range others {
			c := entry(player, other)
			c.Traits = traits
			out[player][other] = c
		}
	}
	for player, others := range statFixtures {
		for other, rows := range others {
			c := entry(player, other)
			c.Stats = rows
			out[player][other] = c
		}
	}
	return out
}
