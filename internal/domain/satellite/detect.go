// Package satellite recognizes satellite tournaments from their names and
// works out the seats on offer and the event they feed into.
package satellite

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/tournament-reconciler/internal/platform/aest"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/textutil"
)

const (
	TypeSatellite      = "SATELLITE"
	TypeMegaSatellite  = "MEGA_SATELLITE"
	TypeSuperSatellite = "SUPER_SATELLITE"
	TypeQualifier      = "QUALIFIER"
	TypeStepSatellite  = "STEP_SATELLITE"

	MegaSeatThreshold  = 10
	SuperSeatThreshold = 5

	TargetAcceptScore = 0.6
)

type signal struct {
	name       string
	pattern    *regexp.Regexp
	confidence float64
}

var keywordSignals = []signal{
	{name: "mega_satellite", pattern: regexp.MustCompile(`(?i)\bmega\s*-?\s*sat(?:ellite|ty|tie)?\b`), confidence: 0.95},
	{name: "super_satellite", pattern: regexp.MustCompile(`(?i)\bsuper\s*-?\s*sat(?:ellite|ty|tie)?\b`), confidence: 0.95},
	{name: "satellite", pattern: regexp.MustCompile(`(?i)\bsatellites?\b`), confidence: 0.95},
	{name: "step", pattern: regexp.MustCompile(`(?i)\bstep\s*[1-9]\b`), confidence: 0.9},
	{name: "satty", pattern: regexp.MustCompile(`(?i)\bsatt(?:y|ie|ies)\b`), confidence: 0.9},
	{name: "qualifier", pattern: regexp.MustCompile(`(?i)\bqualifiers?\b`), confidence: 0.85},
	{name: "sat", pattern: regexp.MustCompile(`(?i)\bsat\b`), confidence: 0.75},
}

var (
	saturdayLike    = regexp.MustCompile(`(?i)\bsat\b\.?\s*(?:\d|the\b|night\b|arvo\b)`)
	seatCommitted   = regexp.MustCompile(`(?i)\b\d{1,3}\s*(?:x\s*)?(?:seats?|packages?)\s*(?:gtd|guaranteed|awarded|up|into|to|for)\b`)
	seatPattern     = regexp.MustCompile(`(?i)\b(\d{1,3})\s*(?:x\s*)?(?:seats?|packages?|tickets?)\b`)
	seatWordPattern = regexp.MustCompile(`(?i)\b(one|two|three|four|five|six|seven|eight|nine|ten)\s+(?:seats?|packages?)\b`)
	ratioIn         = regexp.MustCompile(`(?i)\b(\d{1,3})\s*in\s*(\d{1,4})\b`)
	ratioPer        = regexp.MustCompile(`(?i)\b(\d{1,3})\s*(?:seats?\s*)?per\s*(\d{1,4})\b`)
	qualifierWord   = regexp.MustCompile(`(?i)\bqualifiers?\b`)
	seatContext     = regexp.MustCompile(`(?i)\b(?:seats?|tickets?|packages?)\b`)
)

var numberWords = map[string]int{"one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10}

// Detection is what a game name says about it being a satellite.
type Detection struct {
	IsSatellite   bool       `json:"isSatellite"`
	Confidence    float64    `json:"confidence"`
	Signals       []string   `json:"signals,omitempty"`
	SeatsAwarded  *int       `json:"seatsAwarded,omitempty"`
	SeatRatio     *SeatRatio `json:"seatRatio,omitempty"`
	SatelliteType string     `json:"satelliteType,omitempty"`
	Target        string     `json:"target,omitempty"`
	TargetSource  string     `json:"targetSource,omitempty"`
}

type SeatRatio struct {
	Winners int `json:"winners"`
	Per     int `json:"per"`
}

// Detect inspects the name and the tournamentType flag.
func Detect(name, tournamentType string) Detection {
	var out Detection
	consider := func(sig string, conf float64) {
		out.IsSatellite = true
		out.Signals = append(out.Signals, sig)
		if conf > out.Confidence {
			out.Confidence = conf
		}
	}

	if strings.EqualFold(strings.TrimSpace(tournamentType), TypeSatellite) {
		consider("tournament_type", 0.95)
	}
	for _, s := range keywordSignals {
		if !s.pattern.MatchString(name) {
			continue
		}
		if s.name == "sat" && saturdayLike.MatchString(name) {
			continue
		}
		consider(s.name, s.confidence)
	}

	if m := seatPattern.FindStringSubmatch(name); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			out.SeatsAwarded = &n
			if out.IsSatellite || seatCommitted.MatchString(name) {
				consider("seat_allocation", 0.8)
			}
		}
	} else if m := seatWordPattern.FindStringSubmatch(name); m != nil {
		n := numberWords[strings.ToLower(m[1])]
		out.SeatsAwarded = &n
		if out.IsSatellite {
			consider("seat_allocation", 0.8)
		}
	}

	// A bare "5 in 2025" is a date or an event number, not a seat ratio.
	if r, ok := parseRatio(name); ok && (out.IsSatellite || seatContext.MatchString(name)) {
		out.SeatRatio = &r
		consider("seat_ratio", 0.85)
	}

	if !out.IsSatellite {
		return Detection{}
	}
	out.SatelliteType = classify(name, out)
	out.Target, out.TargetSource = ExtractTarget(name)
	return out
}

func parseRatio(name string) (SeatRatio, bool) {
	for _, p := range []*regexp.Regexp{ratioIn, ratioPer} {
		m := p.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		w, err1 := strconv.Atoi(m[1])
		per, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil || w <= 0 || per <= w {
			continue
		}
		return SeatRatio{Winners: w, Per: per}, true
	}
	return SeatRatio{}, false
}

func classify(name string, d Detection) string {
	for _, sig := range d.Signals {
		switch sig {
		case "mega_satellite":
			return TypeMegaSatellite
		case "super_satellite":
			return TypeSuperSatellite
		case "step":
			return TypeStepSatellite
		}
	}
	if d.SeatsAwarded != nil {
		switch {
		case *d.SeatsAwarded >= MegaSeatThreshold:
			return TypeMegaSatellite
		case *d.SeatsAwarded >= SuperSeatThreshold:
			return TypeSuperSatellite
		}
	}
	if qualifierWord.MatchString(name) {
		return TypeQualifier
	}
	return TypeSatellite
}

// knownTargets maps alias phrases onto the canonical target key.
var knownTargets = []struct {
	alias  string
	target string
}{
	{"sydney millions", "sydney millions"},
	{"aussie millions", "aussie millions"},
	{"colossus", "colossus"},
	{"wsop", "wsop"},
	{"world series of poker", "wsop"},
	{"appt", "appt"},
	{"anzpt", "anzpt"},
	{"wpt", "wpt"},
	{"world poker tour", "wpt"},
	{"championship series", "championship series"},
	{"main event", "main event"},
	{"high roller", "high roller"},
}

// KnownTargetAliases returns the alias phrases recognized for a canonical target.
func KnownTargetAliases(target string) []string {
	out := []string{}
	for _, k := range knownTargets {
		if k.target == target {
			out = append(out, k.alias)
		}
	}
	return out
}

var targetTemplates = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b\d+\s*(?:seats?|packages?|tickets?)\s+(?:in)?to\s+(?:the\s+)?(.+)$`),
	regexp.MustCompile(`(?i)\b(?:satt(?:y|ie)|satellite|sat|qualifier)\s+(?:for|to|into)\s+(?:the\s+)?(.+)$`),
	regexp.MustCompile(`(?i)^(.+?)\s+(?:mega\s+|super\s+)?(?:satt(?:y|ie)|satellite|sat|qualifier)\b`),
}

var targetNoise = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\$\s*[\d,.]+\s*k?\b`),
	regexp.MustCompile(`(?i)\b\d{1,2}(?:st|nd|rd|th)?\s+(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\b`),
	regexp.MustCompile(`(?i)\b\d{1,2}/\d{1,2}(?:/\d{2,4})?\b`),
	regexp.MustCompile(`(?i)\b(?:re-?entry|freezeout|turbo|gtd|guaranteed|nlhe|plo|step\s*\d|seats?|packages?|mega|super)\b`),
	regexp.MustCompile(`(?i)\b(?:mon|tues?|wed(?:nes)?|thu(?:rs?)?|fri|satur|sun)(?:day)\b`),
	regexp.MustCompile(`\b\d+\b`),
	regexp.MustCompile(`[\-–:|()]+`),
}

// ExtractTarget finds the event a satellite feeds. Known aliases win over the
// "X Satty", "Satty for X" and "N seats into X" templates.
func ExtractTarget(name string) (string, string) {
	lower := " " + textutil.Normalize(name) + " "
	aliases := make([]int, len(knownTargets))
	for i := range aliases {
		aliases[i] = i
	}
	sort.SliceStable(aliases, func(a, b int) bool {
		return len(knownTargets[aliases[a]].alias) > len(knownTargets[aliases[b]].alias)
	})
	for _, i := range aliases {
		if strings.Contains(lower, " "+knownTargets[i].alias+" ") {
			return knownTargets[i].target, "alias"
		}
	}

	for _, p := range targetTemplates {
		m := p.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		target := CleanTarget(m[1])
		if len(target) >= 3 {
			return target, "template"
		}
	}
	return "", ""
}

// CleanTarget strips dates, money, entry markers and day names from a target phrase.
func CleanTarget(value string) string {
	out := value
	for _, p := range targetNoise {
		out = p.ReplaceAllString(out, " ")
	}
	return textutil.Normalize(out)
}

// TargetCandidate is a series instance considered as the satellite target.
type TargetCandidate struct {
	SeriesID   string
	SeriesName string
	TitleNames []string
	Start      time.Time
}

// ScoreTarget rates a candidate: name similarity, +0.2 for containment,
// +0.3 when the target is the title or one of its aliases, and +0.2 when the
// series starts between 7 days before and 60 days after the satellite (+0.1
// for the same year otherwise).
func ScoreTarget(target string, c TargetCandidate, satelliteStart time.Time) float64 {
	if target == "" {
		return 0
	}
	score := textutil.NameSimilarity(target, c.SeriesName)
	nt := textutil.Normalize(target)
	ns := textutil.Normalize(c.SeriesName)
	if nt != "" && (strings.Contains(ns, nt) || strings.Contains(nt, ns)) {
		score += 0.2
	}
	targetAliases := append([]string{nt}, KnownTargetAliases(nt)...)
aliasLoop:
	for _, titleName := range c.TitleNames {
		for _, alias := range targetAliases {
			if textutil.ContainsWord(titleName, alias) {
				score += 0.3
				break aliasLoop
			}
		}
	}
	if !c.Start.IsZero() {
		days := aest.DaysBetween(satelliteStart, c.Start)
		switch {
		case days >= -7 && days <= 60:
			score += 0.2
		case aest.ToAEST(c.Start).Year() == aest.ToAEST(satelliteStart).Year():
			score += 0.1
		}
	}
	return score
}
