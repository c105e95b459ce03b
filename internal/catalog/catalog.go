package catalog

import "strings"

// Position is a selectable playing position
type Position struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// positions lists the selectable positions in display order
var positions = []Position{
	{Code: "gk", Label: "Goalkeeper"},
	{Code: "rb", Label: "Right Back"},
	{Code: "cb", Label: "Center Back"},
	{Code: "lb", Label: "Left Back"},
	{Code: "dm", Label: "Defensive Midfielder"},
	{Code: "cm", Label: "Central Midfielder"},
	{Code: "am", Label: "Attacking Midfielder"},
	{Code: "rw", Label: "Right Winger"},
	{Code: "lw", Label: "Left Winger"},
	{Code: "cf", Label: "Center Forward"},
}

// rosters maps a position code to its static list of player names
var rosters = map[string][]string{
	"gk": {"Alisson Becker", "Ederson", "David De Gea", "Manuel Neuer", "Jan Oblak", "Thibaut Courtois"},
	"rb": {"Trent Alexander-Arnold", "Reece James", "João Cancelo", "Achraf Hakimi", "Kyle Walker", "Dani Carvajal"},
	"lb": {"Andrew Robertson", "Alphonso Davies", "Theo Hernández", "Ferland Mendy", "Marcos Alonso", "Luke Shaw"},
	"cb": {"Virgil van Dijk", "Sergio Ramos", "Thiago Silva", "Kalidou Koulibaly", "Rúben Dias", "Marquinhos"},
	"dm": {"Casemiro", "N'Golo Kanté", "Rodri", "Fabinho", "Joshua Kimmich", "Sergio Busquets"},
	"cm": {"Kevin De Bruyne", "Luka Modrić", "Toni Kroos", "Bruno Fernandes", "Frenkie de Jong", "İlkay Gündoğan"},
	"am": {"Mason Mount", "Bernardo Silva", "Phil Foden", "Martin Ødegaard", "Kai Havertz", "James Maddison"},
	"rw": {"Mohamed Salah", "Jadon Sancho", "Riyad Mahrez", "Bukayo Saka", "Federico Chiesa", "Ousmane Dembélé"},
	"lw": {"Neymar Jr", "Sadio Mané", "Raheem Sterling", "Eden Hazard", "Son Heung-min", "Vinicius Junior"},
	"cf": {"Lionel Messi", "Cristiano Ronaldo", "Robert Lewandowski", "Kylian Mbappé", "Erling Haaland", "Karim Benzema"},
}

// legacyAliases keeps the old three-line codes working by concatenating
// the fine-grained rosters in order
var legacyAliases = map[string][]string{
	"def": {"rb", "lb", "cb"},
	"mid": {"dm", "cm", "am"},
	"fwd": {"rw", "lw", "cf"},
}

// Positions returns the selectable positions in display order
func Positions() []Position {
	out := make([]Position, len(positions))
	copy(out, positions)
	return out
}

// Label returns the display label for a position code.
// Legacy alias codes resolve to their line name.
func Label(code string) (string, bool) {
	for _, p := range positions {
		if p.Code == code {
			return p.Label, true
		}
	}
	switch code {
	case "def":
		return "Defender", true
	case "mid":
		return "Midfielder", true
	case "fwd":
		return "Forward", true
	}
	return "", false
}

// Known reports whether code has a roster
func Known(code string) bool {
	if _, ok := rosters[code]; ok {
		return true
	}
	_, ok := legacyAliases[code]
	return ok
}

// Roster returns a copy of the static roster for a position code.
// Unknown codes return an empty roster.
func Roster(code string) []string {
	if names, ok := rosters[code]; ok {
		out := make([]string, len(names))
		copy(out, names)
		return out
	}

	out := []string{}
	for _, sub := range legacyAliases[code] {
		out = append(out, rosters[sub]...)
	}
	return out
}

// Contains reports whether the roster for code lists name exactly
func Contains(code, name string) bool {
	for _, n := range Roster(code) {
		if n == name {
			return true
		}
	}
	return false
}

// Filter keeps the roster entries containing query, ignoring case.
// A blank query returns the roster unchanged.
func Filter(roster []string, query string) []string {
	if strings.TrimSpace(query) == "" {
		return roster
	}

	q := strings.ToLower(query)
	out := make([]string, 0, len(roster))
	for _, name := range roster {
		if strings.Contains(strings.ToLower(name), q) {
			out = append(out, name)
		}
	}
	return out
}

// Search filters the roster of a position by query
func Search(code, query string) []string {
	return Filter(Roster(code), query)
}
