package recurring

import (
	"time"

	"github.com/riskibarqy/tournament-reconciler/internal/platform/aest"
)

// MaxExpectedDates bounds a single gap scan.
const MaxExpectedDates = 400

// ExpectedDates lists the AEST calendar dates on which the template should have
// run between from and to inclusive. Enumeration is anchored on firstGameDate,
// or on the first matching weekday at or after from when there is none.
// Templates with an UNKNOWN frequency have no schedule.
func ExpectedDates(template RecurringGame, from, to time.Time) []string {
	if to.Before(from) {
		return nil
	}
	anchor := from
	if template.FirstGameDate != nil {
		anchor = *template.FirstGameDate
	} else if day, ok := aest.ParseDayName(template.DayOfWeek); ok {
		anchor = aest.AddDays(from, (int(day)-int(aest.DayOfWeek(from))+7)%7)
	}
	anchor = aest.StartOfDay(anchor)
	end := aest.StartOfDay(to)
	if template.LastGameDate != nil && template.LastGameDate.Before(end) {
		end = aest.StartOfDay(*template.LastGameDate)
	}
	start := aest.StartOfDay(from)

	var out []string
	for i := 0; len(out) < MaxExpectedDates; i++ {
		next, ok := step(template, anchor, i)
		if !ok || next.After(end) {
			break
		}
		if next.Before(start) {
			continue
		}
		out = append(out, aest.Date(next))
	}
	return out
}

func step(template RecurringGame, anchor time.Time, i int) (time.Time, bool) {
	switch NormalizeFrequency(template.Frequency) {
	case FrequencyDaily:
		return aest.AddDays(anchor, i), true
	case FrequencyWeekly:
		return aest.AddDays(anchor, 7*i), true
	case FrequencyFortnightly:
		return aest.AddDays(anchor, 14*i), true
	case FrequencyMonthly:
		return nthWeekdayAfter(anchor, i), true
	case FrequencyQuarterly:
		return nthWeekdayAfter(anchor, 3*i), true
	case FrequencyYearly:
		return nthWeekdayAfter(anchor, 12*i), true
	default:
		return time.Time{}, false
	}
}

// nthWeekdayAfter keeps the anchor's "Nth weekday of the month" shape while
// moving forward by months, clamping to the last occurrence in short months.
func nthWeekdayAfter(anchor time.Time, months int) time.Time {
	local := aest.ToAEST(anchor)
	nth := (local.Day() - 1) / 7
	first := time.Date(local.Year(), local.Month()+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	offset := (int(local.Weekday()) - int(first.Weekday()) + 7) % 7
	day := 1 + offset + 7*nth
	for time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC).Month() != first.Month() {
		day -= 7
	}
	return aest.FromAEST(first.Year(), first.Month(), day, 0, 0, 0)
}

// Compliance summarises how reliably a template ran.
type Compliance struct {
	RecurringGameID string         `json:"recurringGameId"`
	Name            string         `json:"name"`
	VenueID         string         `json:"venueId"`
	DayOfWeek       string         `json:"dayOfWeek"`
	Expected        int            `json:"expected"`
	Confirmed       int            `json:"confirmed"`
	Missed          int            `json:"missed"`
	StatusCounts    map[string]int `json:"statusCounts"`
	ComplianceRate  float64        `json:"complianceRate"`
	NeedsReview     int            `json:"needsReview"`
}

// Summarise aggregates instance statuses for a template.
func Summarise(template RecurringGame, instances []Instance) Compliance {
	out := Compliance{
		RecurringGameID: template.ID,
		Name:            template.Name,
		VenueID:         template.VenueID,
		DayOfWeek:       template.DayOfWeek,
		StatusCounts:    make(map[string]int),
	}
	for _, inst := range instances {
		out.Expected++
		out.StatusCounts[inst.Status]++
		switch inst.Status {
		case InstanceConfirmed, InstanceReplaced:
			out.Confirmed++
		case InstanceNoShow, InstanceUnknown:
			out.Missed++
		}
		if inst.NeedsReview {
			out.NeedsReview++
		}
	}
	if out.Expected > 0 {
		out.ComplianceRate = float64(out.Confirmed) / float64(out.Expected)
	}
	return out
}

// NewInstance builds an instance record for a template on an AEST date.
func NewInstance(id string, template RecurringGame, date time.Time, status string, now time.Time) Instance {
	return Instance{
		ID:              id,
		RecurringGameID: template.ID,
		ExpectedDate:    aest.Date(date),
		DayOfWeek:       aest.DayName(date),
		WeekKey:         aest.WeekKey(date),
		VenueID:         template.VenueID,
		EntityID:        template.EntityID,
		Status:          status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
