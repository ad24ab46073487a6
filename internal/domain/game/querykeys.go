package game

import (
	"github.com/riskibarqy/tournament-reconciler/internal/platform/aest"
)

// ComputeQueryKeys derives the denormalized partition keys from the start
// time and venue, all on the AEST calendar.
func ComputeQueryKeys(g *Game) {
	if g.GameStartDateTime == nil {
		return
	}
	g.GameYearMonth = aest.YearMonth(*g.GameStartDateTime)
	g.GameDayOfWeek = aest.DayName(*g.GameStartDateTime)
	if g.VenueID != "" {
		g.VenueScheduleKey = VenueScheduleKey(g.VenueID, g.GameDayOfWeek)
	}
}

func VenueScheduleKey(venueID, dayOfWeek string) string {
	return venueID + "#" + dayOfWeek
}
