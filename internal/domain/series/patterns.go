package series

import (
	"regexp"
	"strings"
	"time"

	"github.com/riskibarqy/tournament-reconciler/internal/platform/textutil"
)

const (
	PatternConfidence         = 0.9
	StructuralConfidence      = 1.0
	SeriesKeywordConfidence   = 0.9
	HolidayNameConfidence     = 0.85
	HolidayBoostedConfidence  = 0.95
	GuaranteeKeywordThreshold = 30000.0
	GuaranteeConfidence       = 0.85
	FuzzyTitleThreshold       = 0.70
	TitleReuseThreshold       = 0.85
)

// TourPattern recognizes a well-known tour or series brand.
type TourPattern struct {
	Title    string
	Category string
	pattern  *regexp.Regexp
	// capture uses the matched text as the title instead of Title.
	capture bool
}

var tourPatterns = []TourPattern{
	{Title: "WSOP", Category: CategoryChampionship, pattern: regexp.MustCompile(`\bWSOP\b|(?i)\bworld\s+series\s+of\s+poker\b`)},
	{Title: "WPT", Category: CategoryChampionship, pattern: regexp.MustCompile(`\bWPT\b|(?i)\bworld\s+poker\s+tour\b`)},
	{Title: "APPT", Category: CategoryChampionship, pattern: regexp.MustCompile(`\bAPPT\b`)},
	{Title: "ANZPT", Category: CategoryChampionship, pattern: regexp.MustCompile(`\bANZPT\b`)},
	{Title: "Aussie Millions", Category: CategoryChampionship, pattern: regexp.MustCompile(`(?i)\baussie\s+millions\b`)},
	{Title: "Sydney Millions", Category: CategoryChampionship, pattern: regexp.MustCompile(`(?i)\bsydney\s+millions\b`)},
	{Title: "Colossus", Category: CategorySpecial, pattern: regexp.MustCompile(`(?i)\bcolossus\b`)},
	{Category: CategoryChampionship, capture: true, pattern: regexp.MustCompile(`(?i)\b(?:[a-z]+\s+){0,2}championship\s+series\b`)},
	{Category: CategorySeasonal, capture: true, pattern: regexp.MustCompile(`(?i)\b(?:summer|winter|autumn|spring)\s+(?:series|festival|classic|championships?)\b`)},
	{Category: CategorySeasonal, capture: true, pattern: regexp.MustCompile(`(?i)\b(?:easter|christmas|xmas|anzac|halloween)\s+(?:series|festival|classic|championships?|spectacular)\b`)},
}

// Detection is a title-level hit from the pattern or keyword stages.
type Detection struct {
	Title      string   `json:"title"`
	Category   string   `json:"category"`
	Confidence float64  `json:"confidence"`
	MatchType  string   `json:"matchType"`
	Holiday    string   `json:"holiday,omitempty"`
	Reasons    []string `json:"reasons,omitempty"`
}

// DetectTourPattern runs the known-tour patterns in order.
func DetectTourPattern(name string) (Detection, bool) {
	for _, p := range tourPatterns {
		m := p.pattern.FindString(name)
		if m == "" {
			continue
		}
		title := p.Title
		if p.capture {
			title = textutil.TitleCase(m)
		}
		return Detection{Title: title, Category: p.Category, Confidence: PatternConfidence, MatchType: MatchPattern, Reasons: []string{"pattern:" + title}}, true
	}
	return Detection{}, false
}

var (
	structuralPattern = regexp.MustCompile(`(?i)\bevent\s*#\s*\d+|\bflight\s+[a-h]\b|\bday\s*\d{1,2}[a-h]\b|\bmain\s+event\b`)
	seriesKeyword     = regexp.MustCompile(`(?i)\b(?:series|festival|championships?|classic|millions|tour|open|high\s+roller)\b`)
	weeklyPattern     = regexp.MustCompile(`(?i)\bweekly\b`)
	guaranteeK        = regexp.MustCompile(`(?i)\$\s*(\d{2,4}(?:\.\d)?)\s*k\b`)
)

// DetectKeywords is the last-resort heuristic: structural markers, series
// words, a holiday in the name (corroborated by the date when it falls in the
// holiday window) and a large "$NNk" guarantee outside weekly events.
func DetectKeywords(name string, start *time.Time) (Detection, bool) {
	det := Detection{MatchType: MatchKeyword, Category: CategorySpecial}

	if structuralPattern.MatchString(name) {
		det.Confidence = StructuralConfidence
		det.Reasons = append(det.Reasons, "structural_keyword")
	}
	if seriesKeyword.MatchString(name) {
		det.Reasons = append(det.Reasons, "series_keyword")
		if det.Confidence < SeriesKeywordConfidence {
			det.Confidence = SeriesKeywordConfidence
		}
	}
	if h, ok := HolidayInName(name); ok {
		det.Holiday = h.Name
		det.Category = CategorySeasonal
		det.Reasons = append(det.Reasons, "holiday_name:"+h.Key)
		conf := HolidayNameConfidence
		if start != nil && HolidayMatchesDate(h, *start) {
			conf = HolidayBoostedConfidence
			det.Reasons = append(det.Reasons, "holiday_date:"+h.Key)
		}
		if det.Confidence < conf {
			det.Confidence = conf
		}
	}
	if !weeklyPattern.MatchString(name) {
		if m := guaranteeK.FindStringSubmatch(name); m != nil {
			if amount, ok := textutil.ParseMoney(m[1] + "k"); ok && amount >= GuaranteeKeywordThreshold {
				det.Reasons = append(det.Reasons, "large_guarantee")
				if det.Confidence < GuaranteeConfidence {
					det.Confidence = GuaranteeConfidence
				}
			}
		}
	}

	if det.Confidence == 0 {
		return Detection{}, false
	}
	det.Title = DeriveTitle(name)
	if det.Title == "" && det.Holiday != "" {
		det.Title = det.Holiday + " Series"
	}
	if det.Title == "" {
		return Detection{}, false
	}
	return det, true
}

var (
	titleNoise = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\$\s*[\d,.]+\s*(?:k|m)?\b`),
		regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s*k\b`),
		regexp.MustCompile(`(?i)\bevent\s*#?\s*\d+\b|\bev\.?\s*#?\s*\d+\b|#\d+`),
		regexp.MustCompile(`(?i)\bday\s*\d{1,2}[a-h]?\b|\bflight\s+[a-h]\b|\b\d{1,2}[a-h]\b|\bd\d{1,2}\b`),
		regexp.MustCompile(`(?i)\b(?:gtd|guaranteed|guarantee|nlhe|nlh|plo\d?|holdem|hold'?em|omaha|re-?entry|freezeout|turbo|hyper|deepstack|deep\s+stack|bounty|pko|knockout|satellite|satty|main\s+event|final\s+(?:day|table)|ft|starting|stack|mega|super|weekly|edition|no\s+limit|pot\s+limit)\b`),
		regexp.MustCompile(`\b(?:19|20)\d{2}\b`),
		regexp.MustCompile(`(?i)\b(?:mon|tues?|wed(?:nes)?|thu(?:rs?)?|fri|sat(?:ur)?|sun)(?:day)?\b`),
		regexp.MustCompile(`\b\d+\b`),
	}
	titleTrim = regexp.MustCompile(`^[\s\-–:|,./+&]+|[\s\-–:|,./+&]+$`)
	separator = regexp.MustCompile(`\s*[\-–:|]+\s*`)
)

// DeriveTitle strips structural markers, money, jargon, years and day names
// from a game name to leave the series brand, e.g.
// "Winter Series Event #3 Day 1A $330" becomes "Winter Series".
func DeriveTitle(name string) string {
	out := name
	for _, p := range titleNoise {
		out = p.ReplaceAllString(out, " ")
	}
	out = separator.ReplaceAllString(out, " ")
	out = titleTrim.ReplaceAllString(textutil.CollapseSpaces(out), "")
	return textutil.CollapseSpaces(out)
}

var (
	trailingYear  = regexp.MustCompile(`\s*\b(?:19|20)\d{2}\s*$`)
	trailingMonth = regexp.MustCompile(`(?i)\s*\b(?:january|february|march|april|may|june|july|august|september|october|november|december|q[1-4])\s*$`)
)

// CleanTitle removes a trailing year, quarter or month so an instance-style
// name can be used as a title.
func CleanTitle(name string) string {
	out := strings.TrimSpace(name)
	for i := 0; i < 2; i++ {
		out = trailingYear.ReplaceAllString(out, "")
		out = trailingMonth.ReplaceAllString(out, "")
	}
	return textutil.CollapseSpaces(out)
}

// CleanGameName normalizes a game name for fuzzy title matching with poker
// jargon and the given venue names removed.
func CleanGameName(name string, venueNames []string) string {
	out := name
	for _, p := range titleNoise {
		out = p.ReplaceAllString(out, " ")
	}
	return textutil.StripWords(out, venueNames)
}

// ExactTitleMatch reports whether the title or any alias occurs in the game
// name as a case-insensitive substring on word boundaries.
func ExactTitleMatch(gameName string, t Title) (string, bool) {
	best := ""
	for _, n := range t.Names() {
		if len(textutil.Compact(n)) < 3 {
			continue
		}
		if textutil.ContainsWord(gameName, n) && len(n) > len(best) {
			best = n
		}
	}
	return best, best != ""
}

// FuzzyTitleScore is the best Dice similarity between the cleaned game name
// and the title or its aliases.
func FuzzyTitleScore(cleanedName string, t Title) float64 {
	best := 0.0
	for _, n := range t.Names() {
		if s := textutil.DiceCoefficient(cleanedName, n); s > best {
			best = s
		}
	}
	return best
}
