package recurring

import (
	"math"
	"sort"
	"strings"

	"github.com/riskibarqy/tournament-reconciler/internal/platform/aest"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/textutil"
)

const (
	BuyInMatchBonus          = 10.0
	DuplicateNameThreshold   = 0.8
	AccumulatorTicketPercent = 0.10
)

// Thresholds are 0..100 scores deciding how a template match is applied.
type Thresholds struct {
	HighConfidence     float64
	MediumConfidence   float64
	CrossDaySuggestion float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		HighConfidence:     85,
		MediumConfidence:   65,
		CrossDaySuggestion: 75,
	}
}

var noiseWords = []string{
	"nlhe", "nlh", "plo", "holdem", "hold em", "poker", "tournament", "tourney",
	"re entry", "reentry", "freezeout", "gtd", "guaranteed", "guarantee",
}

// MatchName reduces a game or template name to the words that identify the
// recurring event, dropping the venue, weekday names and poker jargon.
func MatchName(name string, venueNames []string) string {
	phrases := make([]string, 0, len(venueNames)+len(aest.DayNames)+len(noiseWords))
	phrases = append(phrases, venueNames...)
	phrases = append(phrases, aest.DayNames[:]...)
	phrases = append(phrases, noiseWords...)
	stripped := textutil.StripWords(name, phrases)

	words := strings.Fields(stripped)
	out := words[:0]
	for _, w := range words {
		if _, ok := textutil.ParseMoney(w); ok {
			continue
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}

// Candidate is a template scored against one game.
type Candidate struct {
	Template   RecurringGame
	Score      float64
	NameScore  float64
	BuyInMatch bool
	SameDay    bool
}

// Score rates a template against a game name on a 0..100 scale.
func Score(gameName string, buyIn *float64, venueNames []string, template RecurringGame) Candidate {
	gameKey := MatchName(gameName, venueNames)
	templateKey := MatchName(template.Name, venueNames)
	if gameKey == "" || templateKey == "" {
		gameKey, templateKey = textutil.Normalize(gameName), textutil.Normalize(template.Name)
	}

	c := Candidate{Template: template}
	c.NameScore = textutil.NameSimilarity(gameKey, templateKey) * 100
	c.Score = c.NameScore
	if buyIn != nil && template.TypicalBuyIn != nil && BuyInsMatch(*buyIn, *template.TypicalBuyIn) {
		c.BuyInMatch = true
		c.Score = math.Min(100, c.Score+BuyInMatchBonus)
	}
	return c
}

// BuyInsMatch allows a dollar or 5% of drift between advertised buy-ins.
func BuyInsMatch(a, b float64) bool {
	diff := math.Abs(a - b)
	return diff <= 1 || diff <= 0.05*math.Max(a, b)
}

// Rank scores every schedulable template and returns them best first.
func Rank(gameName string, buyIn *float64, venueNames []string, day string, templates []RecurringGame) []Candidate {
	out := make([]Candidate, 0, len(templates))
	for _, template := range templates {
		if !template.Schedulable() {
			continue
		}
		c := Score(gameName, buyIn, venueNames, template)
		c.SameDay = strings.EqualFold(template.DayOfWeek, day)
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].SameDay && !out[j].SameDay
	})
	return out
}

// Decision is the outcome of applying thresholds to ranked candidates.
type Decision struct {
	Status    string
	Candidate *Candidate
}

// Decide picks the best same-day template first and falls back to a cross-day
// suggestion. The status strings match the game assignment statuses.
func Decide(candidates []Candidate, t Thresholds) Decision {
	var bestSame, bestCross *Candidate
	for i := range candidates {
		c := &candidates[i]
		if c.SameDay && bestSame == nil {
			bestSame = c
		}
		if !c.SameDay && bestCross == nil {
			bestCross = c
		}
	}
	if bestSame != nil {
		switch {
		case bestSame.Score >= t.HighConfidence:
			return Decision{Status: "AUTO_ASSIGNED", Candidate: bestSame}
		case bestSame.Score >= t.MediumConfidence:
			return Decision{Status: "SUGGESTED", Candidate: bestSame}
		}
	}
	if bestCross != nil && bestCross.Score >= t.CrossDaySuggestion {
		return Decision{Status: "SUGGEST_CROSS_DAY", Candidate: bestCross}
	}
	return Decision{Status: "NOT_RECURRING"}
}

// AccumulatorTickets is the number of accumulator tickets paid for a field.
func AccumulatorTickets(entries int) int {
	if entries <= 0 {
		return 0
	}
	return int(math.Floor(float64(entries) * AccumulatorTicketPercent))
}

// DuplicatePair is two templates at the same venue and weekday that look alike.
type DuplicatePair struct {
	Primary    RecurringGame `json:"primary"`
	Duplicate  RecurringGame `json:"duplicate"`
	Similarity float64       `json:"similarity"`
}

// FindDuplicates groups templates by venue and day and reports pairs whose
// names are at least DuplicateNameThreshold similar. The older template is primary.
func FindDuplicates(templates []RecurringGame, venueNames map[string][]string) []DuplicatePair {
	groups := make(map[string][]RecurringGame)
	keys := make([]string, 0)
	for _, t := range templates {
		if t.MergedIntoID != "" {
			continue
		}
		key := t.VenueID + "#" + strings.ToUpper(t.DayOfWeek)
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], t)
	}
	sort.Strings(keys)

	var out []DuplicatePair
	for _, key := range keys {
		group := groups[key]
		sort.SliceStable(group, func(i, j int) bool { return group[i].CreatedAt.Before(group[j].CreatedAt) })
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				names := venueNames[group[i].VenueID]
				sim := textutil.NameSimilarity(MatchName(group[i].Name, names), MatchName(group[j].Name, names))
				if sim >= DuplicateNameThreshold {
					out = append(out, DuplicatePair{Primary: group[i], Duplicate: group[j], Similarity: sim})
				}
			}
		}
	}
	return out
}
