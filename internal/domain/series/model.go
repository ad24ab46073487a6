package series

import (
	"fmt"
	"strings"
	"time"
)

const (
	CategoryRegular      = "REGULAR"
	CategorySeasonal     = "SEASONAL"
	CategoryChampionship = "CHAMPIONSHIP"
	CategorySpecial      = "SPECIAL"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusLive      = "LIVE"
	StatusCompleted = "COMPLETED"
)

// Match types, carried into the game's match reason.
const (
	MatchProvidedID    = "provided_id"
	MatchDatabaseExact = "DATABASE_EXACT"
	MatchDatabaseFuzzy = "DATABASE_FUZZY"
	MatchPattern       = "PATTERN"
	MatchKeyword       = "KEYWORD"
)

// Title is the canonical brand of a series, e.g. "Colossus".
type Title struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Aliases        []string  `json:"aliases,omitempty"`
	SeriesCategory string    `json:"seriesCategory"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Names returns the title followed by its aliases.
func (t Title) Names() []string {
	out := make([]string, 0, len(t.Aliases)+1)
	out = append(out, t.Title)
	for _, a := range t.Aliases {
		if strings.TrimSpace(a) != "" {
			out = append(out, a)
		}
	}
	return out
}

// Series is one instance of a title, e.g. "Colossus August 2025".
type Series struct {
	ID                      string     `json:"id"`
	Name                    string     `json:"name"`
	Year                    int        `json:"year"`
	Month                   *int       `json:"month,omitempty"`
	Quarter                 *int       `json:"quarter,omitempty"`
	StartDate               *time.Time `json:"startDate,omitempty"`
	EndDate                 *time.Time `json:"endDate,omitempty"`
	TournamentSeriesTitleID string     `json:"tournamentSeriesTitleId"`
	VenueID                 string     `json:"venueId,omitempty"`
	EntityID                string     `json:"entityId"`
	Status                  string     `json:"status"`
	SeriesCategory          string     `json:"seriesCategory,omitempty"`
	NumberOfEvents          int        `json:"numberOfEvents"`
	CreatedAt               time.Time  `json:"createdAt"`
	UpdatedAt               time.Time  `json:"updatedAt"`
}

func (s Series) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("series id is required")
	}
	if s.Name == "" {
		return fmt.Errorf("series name is required")
	}
	if s.TournamentSeriesTitleID == "" {
		return fmt.Errorf("series title id is required")
	}
	if s.Year <= 0 {
		return fmt.Errorf("series year is required")
	}
	return nil
}

// EffectiveQuarter is the explicit quarter or the one implied by month.
func (s Series) EffectiveQuarter() int {
	if s.Quarter != nil {
		return *s.Quarter
	}
	if s.Month != nil {
		return (*s.Month-1)/3 + 1
	}
	return 0
}

func NormalizeCategory(value string) string {
	switch v := strings.ToUpper(strings.TrimSpace(value)); v {
	case CategoryRegular, CategorySeasonal, CategoryChampionship, CategorySpecial:
		return v
	default:
		return CategorySpecial
	}
}
