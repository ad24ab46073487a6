package series

import (
	"regexp"
	"time"

	"github.com/riskibarqy/tournament-reconciler/internal/platform/aest"
)

// HolidayWindow is how close a game must start to a holiday for the date to
// corroborate a holiday name.
const HolidayWindow = 7

// Holiday is an Australian calendar event that seasonal series are named after.
type Holiday struct {
	Key     string
	Name    string
	pattern *regexp.Regexp
	date    func(year int) time.Time
}

// DateIn returns the holiday's AEST calendar date in year as a UTC midnight instant.
func (h Holiday) DateIn(year int) time.Time {
	d := h.date(year)
	return aest.FromAEST(d.Year(), d.Month(), d.Day(), 0, 0, 0)
}

func fixed(month time.Month, day int) func(int) time.Time {
	return func(year int) time.Time {
		return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	}
}

// nthWeekday returns the nth (1-based) weekday of month.
func nthWeekday(month time.Month, weekday time.Weekday, n int) func(int) time.Time {
	return func(year int) time.Time {
		first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		offset := (int(weekday) - int(first.Weekday()) + 7) % 7
		return first.AddDate(0, 0, offset+7*(n-1))
	}
}

// EasterSunday uses the anonymous Gregorian computus.
func EasterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// Ordered for name detection: the eve precedes New Year so "New Years Eve" is not read as New Year.
var holidays = []Holiday{
	{Key: "NEW_YEARS_EVE", Name: "New Year's Eve", pattern: regexp.MustCompile(`(?i)\b(?:nye|new\s*year'?s?\s*eve)\b`), date: fixed(time.December, 31)},
	{Key: "NEW_YEAR", Name: "New Year", pattern: regexp.MustCompile(`(?i)\bnew\s*year'?s?\b(?:\s*day)?`), date: fixed(time.January, 1)},
	{Key: "AUSTRALIA_DAY", Name: "Australia Day", pattern: regexp.MustCompile(`(?i)\b(?:australia|aussie)\s*day\b`), date: fixed(time.January, 26)},
	{Key: "EASTER", Name: "Easter", pattern: regexp.MustCompile(`(?i)\beaster\b`), date: EasterSunday},
	{Key: "ANZAC", Name: "Anzac Day", pattern: regexp.MustCompile(`(?i)\banzac\b`), date: fixed(time.April, 25)},
	{Key: "KINGS_BIRTHDAY", Name: "King's Birthday", pattern: regexp.MustCompile(`(?i)\b(?:king|queen)'?s\s*birthday\b`), date: nthWeekday(time.June, time.Monday, 2)},
	{Key: "LABOUR_DAY", Name: "Labour Day", pattern: regexp.MustCompile(`(?i)\blabou?r\s*day\b`), date: nthWeekday(time.October, time.Monday, 1)},
	{Key: "HALLOWEEN", Name: "Halloween", pattern: regexp.MustCompile(`(?i)\bhallowe'?en\b`), date: fixed(time.October, 31)},
	{Key: "MELBOURNE_CUP", Name: "Melbourne Cup", pattern: regexp.MustCompile(`(?i)\b(?:melbourne\s*cup|cup\s*day)\b`), date: nthWeekday(time.November, time.Tuesday, 1)},
	{Key: "CHRISTMAS", Name: "Christmas", pattern: regexp.MustCompile(`(?i)\b(?:christmas|xmas)\b`), date: fixed(time.December, 25)},
	{Key: "BOXING_DAY", Name: "Boxing Day", pattern: regexp.MustCompile(`(?i)\bboxing\s*day\b`), date: fixed(time.December, 26)},
}

// HolidayInName returns the first holiday named in text.
func HolidayInName(text string) (Holiday, bool) {
	for _, h := range holidays {
		if h.pattern.MatchString(text) {
			return h, true
		}
	}
	return Holiday{}, false
}

// HolidayNear returns the holiday whose date is closest to at within
// HolidayWindow AEST days, checking the adjacent years for new-year wraparound.
func HolidayNear(at time.Time) (Holiday, int, bool) {
	local := aest.ToAEST(at)
	var best Holiday
	bestDist := HolidayWindow + 1
	for _, h := range holidays {
		for _, year := range []int{local.Year() - 1, local.Year(), local.Year() + 1} {
			dist := aest.DaysBetween(h.DateIn(year), at)
			if dist < 0 {
				dist = -dist
			}
			if dist < bestDist {
				best = h
				bestDist = dist
			}
		}
	}
	if bestDist > HolidayWindow {
		return Holiday{}, 0, false
	}
	return best, bestDist, true
}

// HolidayMatchesDate reports whether h falls within the window of at.
func HolidayMatchesDate(h Holiday, at time.Time) bool {
	local := aest.ToAEST(at)
	for _, year := range []int{local.Year() - 1, local.Year(), local.Year() + 1} {
		dist := aest.DaysBetween(h.DateIn(year), at)
		if dist < 0 {
			dist = -dist
		}
		if dist <= HolidayWindow {
			return true
		}
	}
	return false
}
