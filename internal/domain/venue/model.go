package venue

import (
	"regexp"
	"strings"

	"github.com/riskibarqy/tournament-reconciler/internal/platform/textutil"
)

// Venue is a physical card room or club hosting games.
type Venue struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	ShortName string   `json:"shortName,omitempty"`
	Aliases   []string `json:"aliases,omitempty"`
	EntityID  string   `json:"entityId"`
	VenueFee  *float64 `json:"venueFee,omitempty"`
}

// Match sources.
const (
	SourceName            = "name"
	SourceShortName       = "shortName"
	SourceAlias           = "alias"
	SourceNormalizedName  = "normalized_name"
	SourceNormalizedShort = "normalized_short_name"
	SourceNormalizedAlias = "normalized_alias"
	SourcePatternFallback = "pattern"
	SourceProvided        = "provided_id"
	SourceNone            = "none"
)

// Match is the result of looking a free-text string up in the catalog.
type Match struct {
	VenueID     string  `json:"venueId,omitempty"`
	VenueName   string  `json:"venueName,omitempty"`
	EntityID    string  `json:"entityId,omitempty"`
	Confidence  float64 `json:"confidence"`
	MatchSource string  `json:"matchSource"`
	Venue       *Venue  `json:"-"`
}

func (m Match) Found() bool {
	return m.VenueID != ""
}

type candidate struct {
	value     string
	exactConf float64
	normConf  float64
	exactSrc  string
	normSrc   string
}

func (v Venue) candidates() []candidate {
	out := []candidate{{value: v.Name, exactConf: 1.0, normConf: 0.9, exactSrc: SourceName, normSrc: SourceNormalizedName}}
	if v.ShortName != "" {
		out = append(out, candidate{value: v.ShortName, exactConf: 0.95, normConf: 0.85, exactSrc: SourceShortName, normSrc: SourceNormalizedShort})
	}
	for _, alias := range v.Aliases {
		if strings.TrimSpace(alias) == "" {
			continue
		}
		out = append(out, candidate{value: alias, exactConf: 0.9, normConf: 0.8, exactSrc: SourceAlias, normSrc: SourceNormalizedAlias})
	}
	return out
}

// patternFallbacks catch common phrasings ("at X", "@X", "live from X") where
// the venue token is a single distinctive word of the catalog name.
var patternFallbacks = []struct {
	pattern    *regexp.Regexp
	confidence float64
}{
	{regexp.MustCompile(`(?i)(?:^|\s)@\s*([A-Za-z][A-Za-z0-9'&]+(?:\s+[A-Za-z][A-Za-z0-9'&]+){0,3})`), 0.75},
	{regexp.MustCompile(`(?i)\b(?:live\s+(?:from|at)|here\s+at|held\s+at|at\s+the)\s+([A-Za-z][A-Za-z0-9'&]+(?:\s+[A-Za-z][A-Za-z0-9'&]+){0,3})`), 0.7},
	{regexp.MustCompile(`\bat\s+([A-Z][A-Za-z0-9'&]+(?:\s+[A-Z][A-Za-z0-9'&]+){0,3})`), 0.6},
}

// MatchText finds the venue a free-text string refers to. Tiers are tried in
// order: exact word-boundary, normalized substring (at least three chars),
// then phrasing fallbacks scored by name similarity.
func MatchText(text string, venues []Venue) Match {
	if strings.TrimSpace(text) == "" || len(venues) == 0 {
		return Match{MatchSource: SourceNone}
	}

	best := Match{MatchSource: SourceNone}
	consider := func(v Venue, conf float64, src string) {
		if conf > best.Confidence {
			vv := v
			best = Match{VenueID: v.ID, VenueName: v.Name, EntityID: v.EntityID, Confidence: conf, MatchSource: src, Venue: &vv}
		}
	}

	for _, v := range venues {
		for _, c := range v.candidates() {
			if textutil.ContainsWord(text, c.value) {
				consider(v, c.exactConf, c.exactSrc)
			}
		}
	}
	if best.Found() {
		return best
	}

	compactText := textutil.Compact(text)
	for _, v := range venues {
		for _, c := range v.candidates() {
			value := textutil.Compact(c.value)
			if len(value) < 3 {
				continue
			}
			if strings.Contains(compactText, value) || (len(compactText) >= 3 && strings.Contains(value, compactText)) {
				consider(v, c.normConf, c.normSrc)
			}
		}
	}
	if best.Found() {
		return best
	}

	for _, fb := range patternFallbacks {
		m := fb.pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		phrase := m[1]
		for _, v := range venues {
			for _, c := range v.candidates() {
				if textutil.NameSimilarity(phrase, c.value) >= 0.75 {
					consider(v, fb.confidence, SourcePatternFallback)
				}
			}
		}
		if best.Found() {
			return best
		}
	}
	return best
}

// SuggestName produces a human-review suggestion when nothing matched.
func SuggestName(text string) string {
	for _, fb := range patternFallbacks {
		if m := fb.pattern.FindStringSubmatch(text); m != nil {
			return textutil.TitleCase(m[1])
		}
	}
	return textutil.TitleCase(text)
}
