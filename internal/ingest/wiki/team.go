package wiki

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// TeamRule is one team-extraction pattern. The first capture group holds the team.
type TeamRule struct {
	Name    string
	Pattern *regexp.Regexp
}

// TeamRules are tried in order; the first rule whose cleaned capture is
// non-empty wins. Free-text captures run to ";" or the end of the line and
// are cut to their first sentence afterwards.
var TeamRules = []TeamRule{
	{
		Name:    "labeled-field",
		Pattern: regexp.MustCompile(`(?im)^[ \t]*(?:current (?:team|club)|club)[ \t]*[:|][ \t]*([^\n]+)$`),
	},
	{
		Name:    "currently-plays-for",
		Pattern: regexp.MustCompile(`(?i)\bcurrently plays (?:as an? [^.;\n]*? )?for ([^;\n]+)`),
	},
	{
		Name:    "plays-for",
		Pattern: regexp.MustCompile(`(?i)\bplays (?:as an? [^.;\n]*? )?for ([^;\n]+)`),
	},
	{
		Name:    "signed-for",
		Pattern: regexp.MustCompile(`(?i)\bsigned for ([^;\n]+)`),
	},
	{
		Name:    "joined",
		Pattern: regexp.MustCompile(`(?i)\bjoined ([^;\n]+)`),
	},
}

var (
	citationMarker = regexp.MustCompile(`\[[^\]]*\]`)

	// qualifiers cut the capture at the first trailing clause
	trailingQualifier = regexp.MustCompile(`(?i)(?:\s*\(|,|\s+on (?:a )?(?:season-long |short-term )?loan\b|\s+until\b|\s+as well as\b|\s+and\s|\s+where\s|\s+since\s|\s+from\s|\s+for\s|\s+in (?:19|20)\d\d\b|\s+on \d|\s+in (?:a|the) ).*$`)

	// "Premier League club Liverpool" -> "Liverpool"
	competitionPrefix = regexp.MustCompile(`^(?:the )?(?:[A-Z0-9][\p{L}0-9'.\-]*\s+)+(?:club|side)\s+`)
)

// ExtractTeam applies TeamRules to plain article text
func ExtractTeam(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	text = citationMarker.ReplaceAllString(text, "")

	for _, rule := range TeamRules {
		// resume inside the previous capture so a later phrase on the same line is still seen
		for pos := 0; pos < len(text); {
			loc := rule.Pattern.FindStringSubmatchIndex(text[pos:])
			if loc == nil {
				break
			}
			if team := cleanTeam(firstSentence(text[pos+loc[2] : pos+loc[3]])); team != "" {
				return team, true
			}
			pos += loc[2]
		}
	}
	return "", false
}

// ExtractInfoboxTeam reads the "Current team" or "Club" row of the infobox in
// rendered article HTML, falling back to ExtractTeam over the paragraph text
func ExtractInfoboxTeam(html string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}

	var team string
	doc.Find("table.infobox tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		label := strings.ToLower(strings.TrimSpace(row.Find("th").First().Text()))
		switch label {
		case "current team", "current club", "club":
		default:
			return true
		}
		team = cleanTeam(citationMarker.ReplaceAllString(row.Find("td").First().Text(), ""))
		return team == ""
	})
	if team != "" {
		return team, true
	}

	var paragraphs []string
	doc.Find("p").Each(func(i int, p *goquery.Selection) {
		paragraphs = append(paragraphs, strings.TrimSpace(p.Text()))
	})
	return ExtractTeam(strings.Join(paragraphs, "\n"))
}

// cleanTeam strips qualifiers, citation markers and punctuation from a capture
func cleanTeam(s string) string {
	s = citationMarker.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	s = trailingQualifier.ReplaceAllString(s, "")
	s = competitionPrefix.ReplaceAllString(s, "")
	s = strings.TrimRight(s, " ,;:")
	if body, ok := strings.CutSuffix(s, "."); ok && !abbreviation(lastWord(body)) {
		s = body
	}
	s = strings.TrimSpace(strings.TrimRight(s, " ,;:"))
	if !properName(s) {
		return ""
	}
	return s
}

// properName rejects generic captures such as "the club"
func properName(s string) bool {
	rest, hadArticle := strings.CutPrefix(s, "the ")
	for _, r := range rest {
		if hadArticle {
			return unicode.IsUpper(r)
		}
		return !unicode.IsLower(r)
	}
	return false
}

// words that open a new sentence even after an abbreviation
var sentenceStarters = map[string]bool{
	"He": true, "She": true, "They": true, "His": true, "Her": true,
	"It": true, "The": true, "In": true, "After": true,
}

// firstSentence cuts s before the first period that ends a sentence. A period
// after an abbreviation such as "St." or "F.C." ends one only when a word in
// sentenceStarters follows, and then stays part of the name.
func firstSentence(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] != '.' {
			continue
		}
		rest := s[i+1:]
		if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
			continue
		}
		if !abbreviation(lastWord(s[:i])) {
			return s[:i]
		}
		if next := strings.Fields(rest); len(next) > 0 && sentenceStarters[next[0]] {
			return s[:i+1]
		}
	}
	return s
}

// abbreviation reports whether a word written before a period is shortened:
// a dotted initialism, a single letter, or a short word with lower case or
// digits ("St", "Jr", "2"). Upper-case acronyms such as "FC" are words.
func abbreviation(w string) bool {
	if w == "" {
		return false
	}
	if strings.Contains(w, ".") {
		return true
	}
	n := utf8.RuneCountInString(w)
	if n > 2 {
		return false
	}
	for _, r := range w {
		if unicode.IsLower(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return n == 1
}

func lastWord(s string) string {
	w := s[strings.LastIndexAny(s, " \t")+1:]
	return strings.TrimLeft(w, "(\"'")
}
