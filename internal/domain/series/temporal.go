package series

import (
	"fmt"
	"math"
	"time"

	"github.com/riskibarqy/tournament-reconciler/internal/platform/aest"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/textutil"
)

const (
	InstanceAcceptScore = 60
	explicitWindowDays  = 7
	yearOnlyScore       = 65
	nameBonusMax        = 15
	sameVenueBonus      = 10
)

// InstanceScore explains how well one series instance fits a game.
type InstanceScore struct {
	Series        Series `json:"series"`
	TemporalScore int    `json:"temporalScore"`
	NameBonus     int    `json:"nameBonus"`
	VenueBonus    int    `json:"venueBonus"`
	Total         int    `json:"total"`
}

// TemporalScore rates a series instance against a game start. The year must
// match. An explicit start/end window widened by seven days scores 100;
// otherwise month distance, then quarter distance, then a bare year decide.
func TemporalScore(s Series, start time.Time) int {
	local := aest.ToAEST(start)
	if s.Year != local.Year() {
		return 0
	}

	if s.StartDate != nil && s.EndDate != nil {
		from := aest.StartOfDay(aest.AddDays(*s.StartDate, -explicitWindowDays))
		to := aest.EndOfDay(aest.AddDays(*s.EndDate, explicitWindowDays))
		if !start.Before(from) && !start.After(to) {
			return 100
		}
	}

	if s.Month != nil {
		diff := *s.Month - int(local.Month())
		if diff < 0 {
			diff = -diff
		}
		switch diff {
		case 0:
			return 95
		case 1:
			return 85
		case 2:
			return 75
		}
	}

	if q := s.EffectiveQuarter(); q > 0 {
		diff := q - aest.Quarter(local.Month())
		if diff < 0 {
			diff = -diff
		}
		switch diff {
		case 0:
			return 70
		case 1:
			return 60
		}
		return 0
	}

	if s.Month == nil && s.StartDate == nil {
		return yearOnlyScore
	}
	return 0
}

// ScoreInstance adds the name and venue bonuses to the temporal score.
func ScoreInstance(s Series, start time.Time, seriesName, venueID string) InstanceScore {
	out := InstanceScore{Series: s, TemporalScore: TemporalScore(s, start)}
	if out.TemporalScore == 0 {
		return out
	}
	if seriesName != "" {
		out.NameBonus = int(math.Round(nameBonusMax * textutil.NameSimilarity(seriesName, s.Name)))
	}
	if venueID != "" && s.VenueID == venueID {
		out.VenueBonus = sameVenueBonus
	}
	out.Total = out.TemporalScore + out.NameBonus + out.VenueBonus
	return out
}

// BestInstance returns the highest scoring instance at or above the accept score.
func BestInstance(instances []Series, start time.Time, seriesName, venueID string) (InstanceScore, bool) {
	var best InstanceScore
	found := false
	for _, s := range instances {
		score := ScoreInstance(s, start, seriesName, venueID)
		if score.TemporalScore == 0 || score.Total < InstanceAcceptScore {
			continue
		}
		if !found || score.Total > best.Total {
			best = score
			found = true
		}
	}
	return best, found
}

// InstancePlan is the name and period of a series instance about to be created.
type InstancePlan struct {
	Name    string
	Year    int
	Month   *int
	Quarter *int
}

// PlanInstance names a new instance of title for a game starting at start.
// With a sibling in the same year the month is named; when the title already
// runs more than once a year in other years the quarter is named; otherwise
// the year alone.
func PlanInstance(title string, start time.Time, existing []Series) InstancePlan {
	local := aest.ToAEST(start)
	year := local.Year()
	month := int(local.Month())
	quarter := aest.Quarter(local.Month())

	sameYear := false
	perYear := map[int]int{}
	for _, s := range existing {
		if s.Year == year {
			sameYear = true
		}
		perYear[s.Year]++
	}
	crossYearDuplicates := false
	for y, n := range perYear {
		if y != year && n > 1 {
			crossYearDuplicates = true
		}
	}

	switch {
	case sameYear:
		return InstancePlan{Name: fmt.Sprintf("%s %s %d", title, local.Month().String(), year), Year: year, Month: &month, Quarter: &quarter}
	case crossYearDuplicates:
		return InstancePlan{Name: fmt.Sprintf("%s Q%d %d", title, quarter, year), Year: year, Quarter: &quarter}
	default:
		return InstancePlan{Name: fmt.Sprintf("%s %d", title, year), Year: year}
	}
}
