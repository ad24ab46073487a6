package social

import (
	"regexp"
	"sort"
	"strings"
)

const (
	ResultMin       = 40.0
	PromoMin        = 30.0
	ResultStrong    = 80.0
	PromoStrong     = 60.0
	AmbiguousMargin = 15.0
	MaxPatternHits  = 3
	MinContentChars = 20
)

// Bank names a family of classification patterns.
type Bank string

const (
	BankResult      Bank = "RESULT"
	BankPromotional Bank = "PROMOTIONAL"
)

type weightedPattern struct {
	name    string
	weight  float64
	pattern *regexp.Regexp
}

var banks = map[Bank][]weightedPattern{
	BankResult: {
		{name: "results_word", weight: 15, pattern: regexp.MustCompile(`(?i)\bresults?\b`)},
		{name: "placement_money_line", weight: 12, pattern: regexp.MustCompile(`(?im)^\s*(?:\d{1,3}(?:st|nd|rd|th)|\d{1,3}[.)]|🥇|🥈|🥉)[^\n]*?[-–—:][^\n]*\$\s?\d`)},
		{name: "ordinal_line", weight: 10, pattern: regexp.MustCompile(`(?im)^\s*\d{1,3}(?:st|nd|rd|th)\b`)},
		{name: "medal_emoji", weight: 10, pattern: regexp.MustCompile(`🥇|🥈|🥉|🏆`)},
		{name: "winner_words", weight: 12, pattern: regexp.MustCompile(`(?i)\b(?:won|wins|winner|winners|took (?:it )?down|champion|victory)\b`)},
		{name: "congratulations", weight: 10, pattern: regexp.MustCompile(`(?i)\b(?:congratulations|congrats|well done|well played)\b`)},
		{name: "chop_deal", weight: 10, pattern: regexp.MustCompile(`(?i)\b(?:chop(?:ped)?|icm(?: deal)?|split the (?:pot|prize))\b`)},
		{name: "field_size", weight: 8, pattern: regexp.MustCompile(`(?i)\b\d{1,4}\s*(?:entries|entrants|runners|players|rebuys)\b`)},
		{name: "final_table", weight: 8, pattern: regexp.MustCompile(`(?i)\bfinal table\b`)},
		{name: "paid_places", weight: 8, pattern: regexp.MustCompile(`(?i)\b(?:cashed|itm|in the money|payouts?|paid out|places paid)\b`)},
		{name: "heads_up", weight: 5, pattern: regexp.MustCompile(`(?i)\bheads[- ]?up\b`)},
		{name: "prizepool_total", weight: 5, pattern: regexp.MustCompile(`(?i)\b(?:total )?prize ?pool(?: of| was)?\b`)},
		{name: "see_you_next", weight: 5, pattern: regexp.MustCompile(`(?i)\bsee you (?:all )?next (?:week|time)\b`)},
	},
	BankPromotional: {
		{name: "guarantee_amount", weight: 15, pattern: regexp.MustCompile(`(?i)\$\s?\d[\d,.]*\s*k?\s*(?:gtd|guaranteed)\b`)},
		{name: "call_to_action", weight: 12, pattern: regexp.MustCompile(`(?i)\b(?:join us|come (?:down|along)|don'?t miss|see you there|book (?:now|your seat)|register now)\b`)},
		{name: "upcoming", weight: 10, pattern: regexp.MustCompile(`(?i)\b(?:tonight|tomorrow|this (?:week|weekend|monday|tuesday|wednesday|thursday|friday|saturday|sunday)|coming up|upcoming|next event)\b`)},
		{name: "start_time", weight: 10, pattern: regexp.MustCompile(`(?i)\b(?:starts?|starting|kicks? off|cards (?:in the air|up))\s*(?:at|@)?\s*\d`)},
		{name: "registration", weight: 10, pattern: regexp.MustCompile(`(?i)\b(?:late reg(?:istration)?|rego|registrations? (?:open|close)s?)\b`)},
		{name: "guarantee_word", weight: 10, pattern: regexp.MustCompile(`(?i)\b(?:gtd|guaranteed|guarantee)\b`)},
		{name: "clock_time", weight: 8, pattern: regexp.MustCompile(`(?i)\b\d{1,2}(?::\d{2})?\s*(?:am|pm)\b`)},
		{name: "stack_structure", weight: 8, pattern: regexp.MustCompile(`(?i)\b(?:starting stack|chips|\d+k? stack|blind levels?|\d+\s*min(?:ute)? levels?)\b`)},
		{name: "seats_available", weight: 8, pattern: regexp.MustCompile(`(?i)\b(?:reserve|seats? available|limited seats|sold out|pre-?register)\b`)},
		{name: "buy_in", weight: 5, pattern: regexp.MustCompile(`(?i)\bbuy[- ]?ins?\b`)},
		{name: "schedule", weight: 5, pattern: regexp.MustCompile(`(?i)\b(?:schedule|calendar|line[- ]?up)\b`)},
	},
}

// PatternHit records how much one pattern contributed to a bank score.
type PatternHit struct {
	Bank   Bank    `json:"bank"`
	Name   string  `json:"name"`
	Count  int     `json:"count"`
	Points float64 `json:"points"`
}

// Classification is the outcome of scoring post content against both banks.
type Classification struct {
	ContentType string       `json:"contentType"`
	Confidence  float64      `json:"confidence"`
	ResultScore float64      `json:"resultScore"`
	PromoScore  float64      `json:"promoScore"`
	Hits        []PatternHit `json:"hits,omitempty"`
}

// MatchedPatterns returns the names of every pattern that fired.
func (c Classification) MatchedPatterns() []string {
	out := make([]string, 0, len(c.Hits))
	for _, h := range c.Hits {
		out = append(out, string(h.Bank)+":"+h.Name)
	}
	return out
}

// ScoreBank sums weight*min(count,3) over a bank's patterns.
func ScoreBank(bank Bank, content string) (float64, []PatternHit) {
	var total float64
	var hits []PatternHit
	for _, p := range banks[bank] {
		count := len(p.pattern.FindAllStringIndex(content, MaxPatternHits))
		if count == 0 {
			continue
		}
		points := p.weight * float64(count)
		total += points
		hits = append(hits, PatternHit{Bank: bank, Name: p.name, Count: count, Points: points})
	}
	return total, hits
}

// Classify decides whether content reports results, promotes a game, or neither.
func Classify(content string) Classification {
	if strings.TrimSpace(content) == "" {
		return Classification{ContentType: ContentGeneral, Confidence: 1}
	}

	result, resultHits := ScoreBank(BankResult, content)
	promo, promoHits := ScoreBank(BankPromotional, content)
	hits := append(resultHits, promoHits...)
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Points > hits[j].Points })

	out := Classification{ResultScore: result, PromoScore: promo, Hits: hits}
	out.ContentType, out.Confidence = decide(result, promo)
	return out
}

func decide(result, promo float64) (string, float64) {
	switch {
	case result >= ResultMin && result > promo:
		switch {
		case result >= ResultStrong:
			return ContentResult, 0.95
		case result-promo > AmbiguousMargin:
			return ContentResult, 0.80
		default:
			return ContentResult, 0.60
		}
	case promo >= PromoMin && promo > result:
		switch {
		case promo >= PromoStrong:
			return ContentPromotional, 0.90
		case promo-result > AmbiguousMargin:
			return ContentPromotional, 0.75
		default:
			return ContentPromotional, 0.55
		}
	case result >= ResultMin || promo >= PromoMin:
		if result >= promo {
			return ContentResult, 0.40
		}
		return ContentPromotional, 0.40
	default:
		return ContentGeneral, 0.70
	}
}

// SkipReason reports why a post should not be processed, or "" when it should.
func SkipReason(post Post, existingLinks int, force bool) string {
	switch {
	case strings.EqualFold(post.PostType, PostTypeComment):
		return "comment"
	case len(strings.TrimSpace(post.Content)) < MinContentChars:
		return "content_too_short"
	case !force && post.ProcessingStatus == StatusLinked && existingLinks > 0:
		return "already_linked"
	default:
		return ""
	}
}
