package game

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	DefaultGameStatus  = StatusScheduled
	DefaultGameType    = TypeTournament
	DefaultGameVariant = "NLHE"
)

// CompleteData fills defaults for absent fields and derives totals and the
// registration status.
func CompleteData(g *Game) {
	if g.IsSatellite == nil && g.TournamentType == "SATELLITE" {
		g.IsSatellite = boolPtr(true)
	}
	for _, flag := range []**bool{&g.IsSeries, &g.IsRegular, &g.IsSatellite} {
		if *flag == nil {
			*flag = boolPtr(false)
		}
	}
	if g.HasGuarantee == nil {
		g.HasGuarantee = boolPtr(g.GuaranteeAmount != nil && *g.GuaranteeAmount > 0)
	}
	if g.TotalRebuys == nil {
		g.TotalRebuys = intPtr(0)
	}
	if g.TotalAddons == nil {
		g.TotalAddons = intPtr(0)
	}
	if g.TotalEntries == nil && g.TotalInitialEntries != nil {
		g.TotalEntries = intPtr(*g.TotalInitialEntries + *g.TotalRebuys + *g.TotalAddons)
	}

	if g.GameStatus == "" {
		g.GameStatus = DefaultGameStatus
	}
	if g.GameType == "" {
		g.GameType = DefaultGameType
	}
	if g.GameVariant == "" {
		g.GameVariant = DefaultGameVariant
	}
	if g.RegistrationStatus == "" {
		g.RegistrationStatus = RegistrationStatusFor(g.GameStatus)
	}
	if g.VenueAssignmentStatus == "" {
		g.VenueAssignmentStatus = AssignmentPending
	}
	if g.SeriesAssignmentStatus == "" {
		g.SeriesAssignmentStatus = AssignmentNotSeries
	}
	if g.RecurringGameAssignmentStatus == "" {
		g.RecurringGameAssignmentStatus = AssignmentPending
	}
}

var (
	dayPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bday\s*(\d{1,2})`),
		regexp.MustCompile(`(?i)\bd(\d{1,2})\b`),
		regexp.MustCompile(`(?i)\b(\d{1,2})[a-h]\b`),
	}
	flightPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bflight\s*([a-z])\b`),
		regexp.MustCompile(`(?i)\b\d{1,2}([a-h])\b`),
		regexp.MustCompile(`(?i)\b(?:flight|starting)\s+([a-z])\s`),
	}
	eventPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bevent\s*#?\s*(\d{1,3})\b`),
		regexp.MustCompile(`(?i)\bev\.?\s*#?\s*(\d{1,3})\b`),
		regexp.MustCompile(`#(\d{1,3})\s*[-:–]`),
	}
	mainEventPattern = regexp.MustCompile(`(?i)\bmain\s*event\b`)
	finalDayPattern  = regexp.MustCompile(`(?i:\bfinal\s+(?:day|table)\b)|\bFT\b`)
)

// SeriesDetails is what a tournament name says about its place in a series.
type SeriesDetails struct {
	IsMainEvent  bool
	FinalDay     bool
	DayNumber    *int
	FlightLetter string
	EventNumber  *int
}

// ParseSeriesDetails reads day, flight, event and final-day markers from a name.
func ParseSeriesDetails(name string) SeriesDetails {
	var out SeriesDetails
	if name == "" {
		return out
	}

	out.IsMainEvent = mainEventPattern.MatchString(name)
	out.FinalDay = finalDayPattern.MatchString(name)

	if n, ok := firstNumber(dayPatterns, name); ok {
		out.DayNumber = &n
	}
	for _, p := range flightPatterns {
		if m := p.FindStringSubmatch(name + " "); m != nil {
			out.FlightLetter = strings.ToUpper(m[1])
			break
		}
	}
	if n, ok := firstNumber(eventPatterns, name); ok {
		out.EventNumber = &n
	}
	if out.DayNumber != nil && *out.DayNumber >= 2 && out.FlightLetter == "" {
		out.FinalDay = true
	}
	return out
}

// CompleteSeriesMetadata applies ParseSeriesDetails to absent fields. Tournaments only.
func CompleteSeriesMetadata(g *Game) {
	if !g.IsTournament() {
		return
	}
	details := ParseSeriesDetails(g.Name)
	if g.IsMainEvent == nil {
		g.IsMainEvent = boolPtr(details.IsMainEvent)
	}
	if g.FinalDay == nil {
		g.FinalDay = boolPtr(details.FinalDay)
	}
	if g.DayNumber == nil && details.DayNumber != nil {
		g.DayNumber = intPtr(*details.DayNumber)
	}
	if g.FlightLetter == "" {
		g.FlightLetter = details.FlightLetter
	}
	if g.EventNumber == nil && details.EventNumber != nil {
		g.EventNumber = intPtr(*details.EventNumber)
	}
}

func firstNumber(patterns []*regexp.Regexp, text string) (int, bool) {
	for _, p := range patterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return n, true
		}
	}
	return 0, false
}

func boolPtr(v bool) *bool { return &v }
func intPtr(v int) *int    { return &v }
func floatPtr(v float64) *float64 {
	return &v
}
