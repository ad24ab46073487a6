// Package aest does Australian Eastern time arithmetic with a fixed daylight
// saving rule: AEDT (UTC+11) runs from the first Sunday of October to the first
// Sunday of April, AEST (UTC+10) otherwise. Both transitions happen at 02:00
// standard time, which is 16:00 UTC on the preceding Saturday.
//
// Resolver code should never mix naive UTC calendar math with these helpers.
package aest

import (
	"fmt"
	"strings"
	"time"
)

const (
	standardOffset = 10 * time.Hour
	daylightOffset = 11 * time.Hour
)

var (
	standardZone = time.FixedZone("AEST", int(standardOffset.Seconds()))
	daylightZone = time.FixedZone("AEDT", int(daylightOffset.Seconds()))
)

// DayNames are the upper-case day tokens used across the catalog, indexed by time.Weekday.
var DayNames = [7]string{"SUNDAY", "MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY"}

// IsDaylight reports whether the instant falls inside AEDT.
func IsDaylight(t time.Time) bool {
	utc := t.UTC()
	// Year as seen on the standard-time wall clock.
	year := utc.Add(standardOffset).Year()

	dstEnd := transitionUTC(year, time.April)
	dstStart := transitionUTC(year, time.October)

	return utc.Before(dstEnd) || !utc.Before(dstStart)
}

// Offset returns the UTC offset in effect at t.
func Offset(t time.Time) time.Duration {
	if IsDaylight(t) {
		return daylightOffset
	}
	return standardOffset
}

// ToAEST returns t expressed in the Australian Eastern zone in effect at that instant.
func ToAEST(t time.Time) time.Time {
	if IsDaylight(t) {
		return t.In(daylightZone)
	}
	return t.In(standardZone)
}

// FromAEST converts an Australian Eastern wall-clock time to a UTC instant.
// Wall times inside the spring-forward gap resolve with the standard offset.
func FromAEST(year int, month time.Month, day, hour, min, sec int) time.Time {
	naive := time.Date(year, month, day, hour, min, sec, 0, time.UTC)
	guess := naive.Add(-standardOffset)
	if IsDaylight(guess) {
		candidate := naive.Add(-daylightOffset)
		if IsDaylight(candidate) {
			return candidate
		}
	}
	return guess
}

// DayOfWeek returns the AEST weekday of t.
func DayOfWeek(t time.Time) time.Weekday {
	return ToAEST(t).Weekday()
}

// DayName returns the upper-case AEST day name of t, e.g. "THURSDAY".
func DayName(t time.Time) string {
	return DayNames[DayOfWeek(t)]
}

// ParseDayName maps a day token (full or three-letter, any case) to a weekday.
func ParseDayName(value string) (time.Weekday, bool) {
	v := strings.ToUpper(strings.TrimSpace(value))
	if len(v) < 3 {
		return 0, false
	}
	for i, name := range DayNames {
		if strings.HasPrefix(name, v) {
			return time.Weekday(i), true
		}
	}
	return 0, false
}

// StartOfDay returns the UTC instant of 00:00:00 AEST on t's AEST calendar day.
func StartOfDay(t time.Time) time.Time {
	local := ToAEST(t)
	return FromAEST(local.Year(), local.Month(), local.Day(), 0, 0, 0)
}

// EndOfDay returns the UTC instant of 23:59:59.999 AEST on t's AEST calendar day.
func EndOfDay(t time.Time) time.Time {
	local := ToAEST(t)
	return FromAEST(local.Year(), local.Month(), local.Day(), 23, 59, 59).Add(999 * time.Millisecond)
}

// AddDays moves t by n AEST calendar days, keeping the wall-clock time.
func AddDays(t time.Time, n int) time.Time {
	local := ToAEST(t)
	shifted := time.Date(local.Year(), local.Month(), local.Day()+n, 0, 0, 0, 0, time.UTC)
	return FromAEST(shifted.Year(), shifted.Month(), shifted.Day(), local.Hour(), local.Minute(), local.Second())
}

// Date returns t's AEST calendar date as YYYY-MM-DD.
func Date(t time.Time) string {
	return ToAEST(t).Format("2006-01-02")
}

// ParseDate parses a YYYY-MM-DD AEST calendar date into the UTC instant of its midnight.
func ParseDate(value string) (time.Time, error) {
	parsed, err := time.Parse("2006-01-02", strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse aest date %q: %w", value, err)
	}
	return FromAEST(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0), nil
}

// YearMonth returns t's AEST month key as YYYY-MM.
func YearMonth(t time.Time) string {
	return ToAEST(t).Format("2006-01")
}

// SameDay reports whether a and b fall on the same AEST calendar day.
func SameDay(a, b time.Time) bool {
	return Date(a) == Date(b)
}

// DaysBetween returns the signed number of AEST calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	la := ToAEST(a)
	lb := ToAEST(b)
	da := time.Date(la.Year(), la.Month(), la.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(lb.Year(), lb.Month(), lb.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// WeekKey returns the ISO week of t's AEST date as YYYY-Www.
func WeekKey(t time.Time) string {
	local := ToAEST(t)
	year, week := time.Date(local.Year(), local.Month(), local.Day(), 12, 0, 0, 0, time.UTC).ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// Quarter returns the calendar quarter (1..4) of month.
func Quarter(month time.Month) int {
	return (int(month)-1)/3 + 1
}

// MonthsBetween returns the signed month distance from a to b on the AEST calendar.
func MonthsBetween(a, b time.Time) int {
	la := ToAEST(a)
	lb := ToAEST(b)
	return (lb.Year()-la.Year())*12 + int(lb.Month()) - int(la.Month())
}

// ResolveWeekday picks the AEST day nearest to ref (within ±3 days) whose weekday is day.
func ResolveWeekday(ref time.Time, day time.Weekday) time.Time {
	diff := (int(day) - int(DayOfWeek(ref)) + 7) % 7
	if diff > 3 {
		diff -= 7
	}
	return AddDays(ref, diff)
}

func transitionUTC(year int, month time.Month) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(time.Sunday) - int(first.Weekday()) + 7) % 7
	sunday := first.AddDate(0, 0, offset)
	// 02:00 standard time on the first Sunday.
	return sunday.Add(2 * time.Hour).Add(-standardOffset)
}
