package recurring

import (
	"fmt"
	"strings"
	"time"
)

const (
	FrequencyDaily       = "DAILY"
	FrequencyWeekly      = "WEEKLY"
	FrequencyFortnightly = "FORTNIGHTLY"
	FrequencyMonthly     = "MONTHLY"
	FrequencyQuarterly   = "QUARTERLY"
	FrequencyYearly      = "YEARLY"
	FrequencyUnknown     = "UNKNOWN"
)

const (
	InstanceConfirmed = "CONFIRMED"
	InstanceCancelled = "CANCELLED"
	InstanceSkipped   = "SKIPPED"
	InstanceReplaced  = "REPLACED"
	InstanceUnknown   = "UNKNOWN"
	InstanceNoShow    = "NO_SHOW"
)

// RecurringGame is a periodic template that concrete games are grouped under.
type RecurringGame struct {
	ID                     string     `json:"id"`
	Name                   string     `json:"name"`
	DisplayName            string     `json:"displayName,omitempty"`
	VenueID                string     `json:"venueId"`
	EntityID               string     `json:"entityId"`
	DayOfWeek              string     `json:"dayOfWeek"`
	Frequency              string     `json:"frequency"`
	IsActive               bool       `json:"isActive"`
	IsPaused               bool       `json:"isPaused"`
	StartTime              string     `json:"startTime,omitempty"`
	FirstGameDate          *time.Time `json:"firstGameDate,omitempty"`
	LastGameDate           *time.Time `json:"lastGameDate,omitempty"`
	GameType               string     `json:"gameType,omitempty"`
	GameVariant            string     `json:"gameVariant,omitempty"`
	TypicalBuyIn           *float64   `json:"typicalBuyIn,omitempty"`
	TypicalGuarantee       *float64   `json:"typicalGuarantee,omitempty"`
	HasAccumulatorTickets  bool       `json:"hasAccumulatorTickets"`
	AccumulatorTicketValue *float64   `json:"accumulatorTicketValue,omitempty"`
	TotalGamesLinked       int        `json:"totalGamesLinked"`
	MergedIntoID           string     `json:"mergedIntoId,omitempty"`
	CreatedAt              time.Time  `json:"createdAt"`
	UpdatedAt              time.Time  `json:"updatedAt"`
}

func (r RecurringGame) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("recurring game id is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("recurring game name is required")
	}
	if r.VenueID == "" {
		return fmt.Errorf("recurring game venue is required")
	}
	return nil
}

// Schedulable reports whether the template is expected to produce games.
func (r RecurringGame) Schedulable() bool {
	return r.IsActive && !r.IsPaused
}

func NormalizeFrequency(value string) string {
	switch v := strings.ToUpper(strings.TrimSpace(value)); v {
	case FrequencyDaily, FrequencyWeekly, FrequencyFortnightly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return v
	case "":
		return FrequencyWeekly
	default:
		return FrequencyUnknown
	}
}

// Instance is one expected occurrence of a template.
type Instance struct {
	ID              string    `json:"id"`
	RecurringGameID string    `json:"recurringGameId"`
	ExpectedDate    string    `json:"expectedDate"`
	DayOfWeek       string    `json:"dayOfWeek"`
	WeekKey         string    `json:"weekKey"`
	VenueID         string    `json:"venueId"`
	EntityID        string    `json:"entityId"`
	GameID          string    `json:"gameId,omitempty"`
	Status          string    `json:"status"`
	HasDeviation    bool      `json:"hasDeviation"`
	DeviationType   string    `json:"deviationType,omitempty"`
	DeviationNotes  string    `json:"deviationNotes,omitempty"`
	NeedsReview     bool      `json:"needsReview"`
	ReviewReason    string    `json:"reviewReason,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func NormalizeInstanceStatus(value string) (string, bool) {
	switch v := strings.ToUpper(strings.TrimSpace(value)); v {
	case InstanceConfirmed, InstanceCancelled, InstanceSkipped, InstanceReplaced, InstanceUnknown, InstanceNoShow:
		return v, true
	default:
		return "", false
	}
}
