package game

import (
	"strings"
	"time"
)

const (
	TypeTournament = "TOURNAMENT"
	TypeCashGame   = "CASH_GAME"
)

const (
	StatusInitiating   = "INITIATING"
	StatusScheduled    = "SCHEDULED"
	StatusRegistering  = "REGISTERING"
	StatusRunning      = "RUNNING"
	StatusClockStopped = "CLOCK_STOPPED"
	StatusFinished     = "FINISHED"
	StatusCancelled    = "CANCELLED"
	StatusUnknown      = "UNKNOWN"
)

const (
	RegistrationScheduled = "SCHEDULED"
	RegistrationOpen      = "OPEN"
	RegistrationClosed    = "CLOSED"
	RegistrationNA        = "N_A"
)

// Assignment statuses shared by the venue, series and recurring resolvers.
const (
	AssignmentAutoAssigned     = "AUTO_ASSIGNED"
	AssignmentManuallyAssigned = "MANUALLY_ASSIGNED"
	AssignmentPending          = "PENDING_ASSIGNMENT"
	AssignmentNotSeries        = "NOT_SERIES"
	AssignmentSkipped          = "SKIPPED"
	AssignmentCreatedNew       = "CREATED_NEW"
	AssignmentMatchedExisting  = "MATCHED_EXISTING"
	AssignmentSuggested        = "SUGGESTED"
	AssignmentSuggestCrossDay  = "SUGGEST_CROSS_DAY"
	AssignmentNotRecurring     = "NOT_RECURRING"
)

// Satellite statuses.
const (
	SatelliteLinkedToSeries   = "LINKED_TO_SERIES"
	SatelliteNotSatellite     = "NOT_SATELLITE"
	SatelliteDetectedNoTarget = "DETECTED_NO_TARGET"
)

const (
	PurposeStandard = "STANDARD"

	EndSourceCalculated = "CALCULATED"
	EndSourceProvided   = "PROVIDED"

	ClassificationDerived = "DERIVED"
)

const (
	SessionCash       = "CASH"
	SessionTournament = "TOURNAMENT"
)

// SeatRatio is "Winners seats per Per entries", e.g. 1 in 10.
type SeatRatio struct {
	Winners int `json:"winners"`
	Per     int `json:"per"`
}

// Game is one concrete tournament (or cash game session) record. Optional
// values are pointers: an absent field stays absent unless a stage can derive it.
type Game struct {
	ID           string `json:"id"`
	EntityID     string `json:"entityId"`
	TournamentID *int64 `json:"tournamentId,omitempty"`
	SourceURL    string `json:"sourceUrl,omitempty"`
	Name         string `json:"name"`

	GameType           string `json:"gameType,omitempty"`
	GameVariant        string `json:"gameVariant,omitempty"`
	GameStatus         string `json:"gameStatus,omitempty"`
	RegistrationStatus string `json:"registrationStatus,omitempty"`
	TournamentType     string `json:"tournamentType,omitempty"`

	Variant              string     `json:"variant,omitempty"`
	BettingStructure     string     `json:"bettingStructure,omitempty"`
	SessionMode          string     `json:"sessionMode,omitempty"`
	BuyInTier            string     `json:"buyInTier,omitempty"`
	ClassificationSource string     `json:"classificationSource,omitempty"`
	LastClassifiedAt     *time.Time `json:"lastClassifiedAt,omitempty"`

	BuyIn                *float64 `json:"buyIn,omitempty"`
	Rake                 *float64 `json:"rake,omitempty"`
	VenueFee             *float64 `json:"venueFee,omitempty"`
	StartingStack        *int     `json:"startingStack,omitempty"`
	GuaranteeAmount      *float64 `json:"guaranteeAmount,omitempty"`
	HasGuarantee         *bool    `json:"hasGuarantee,omitempty"`
	GuaranteeWasInferred *bool    `json:"guaranteeWasInferred,omitempty"`
	EntryStructure       string   `json:"entryStructure,omitempty"`
	CashRakeType         string   `json:"cashRakeType,omitempty"`

	TotalInitialEntries  *int     `json:"totalInitialEntries,omitempty"`
	TotalRebuys          *int     `json:"totalRebuys,omitempty"`
	TotalAddons          *int     `json:"totalAddons,omitempty"`
	TotalEntries         *int     `json:"totalEntries,omitempty"`
	TotalUniquePlayers   *int     `json:"totalUniquePlayers,omitempty"`
	PrizepoolPaid        *float64 `json:"prizepoolPaid,omitempty"`
	PrizepoolCalculated  *float64 `json:"prizepoolCalculated,omitempty"`
	PrizepoolAddedExtras *float64 `json:"prizepoolAddedExtras,omitempty"`

	TotalBuyInsCollected         *float64 `json:"totalBuyInsCollected,omitempty"`
	RakeRevenue                  *float64 `json:"rakeRevenue,omitempty"`
	VenueFeeRevenue              *float64 `json:"venueFeeRevenue,omitempty"`
	PrizepoolPlayerContributions *float64 `json:"prizepoolPlayerContributions,omitempty"`
	GuaranteeOverlayCost         *float64 `json:"guaranteeOverlayCost,omitempty"`
	PrizepoolAddedValue          *float64 `json:"prizepoolAddedValue,omitempty"`
	PrizepoolSurplus             *float64 `json:"prizepoolSurplus,omitempty"`
	GameProfit                   *float64 `json:"gameProfit,omitempty"`
	IsUnderwater                 *bool    `json:"isUnderwater,omitempty"`

	GameStartDateTime       *time.Time `json:"gameStartDateTime,omitempty"`
	GameActualStartDateTime *time.Time `json:"gameActualStartDateTime,omitempty"`
	GameEndDateTime         *time.Time `json:"gameEndDateTime,omitempty"`
	GameEndDateTimeSource   string     `json:"gameEndDateTimeSource,omitempty"`
	TotalDuration           Duration   `json:"totalDuration"`

	VenueID                   string   `json:"venueId,omitempty"`
	VenueName                 string   `json:"venueName,omitempty"`
	VenueAssignmentStatus     string   `json:"venueAssignmentStatus,omitempty"`
	VenueAssignmentConfidence *float64 `json:"venueAssignmentConfidence,omitempty"`
	SuggestedVenueName        string   `json:"suggestedVenueName,omitempty"`

	TournamentSeriesID         string   `json:"tournamentSeriesId,omitempty"`
	TournamentSeriesTitleID    string   `json:"tournamentSeriesTitleId,omitempty"`
	SeriesName                 string   `json:"seriesName,omitempty"`
	SeriesAssignmentStatus     string   `json:"seriesAssignmentStatus,omitempty"`
	SeriesAssignmentConfidence *float64 `json:"seriesAssignmentConfidence,omitempty"`
	SuggestedSeriesName        string   `json:"suggestedSeriesName,omitempty"`

	RecurringGameID                   string   `json:"recurringGameId,omitempty"`
	RecurringGameAssignmentStatus     string   `json:"recurringGameAssignmentStatus,omitempty"`
	RecurringGameAssignmentConfidence *float64 `json:"recurringGameAssignmentConfidence,omitempty"`
	SuggestedRecurringGameID          string   `json:"suggestedRecurringGameId,omitempty"`

	IsSeries    *bool `json:"isSeries,omitempty"`
	IsRegular   *bool `json:"isRegular,omitempty"`
	IsSatellite *bool `json:"isSatellite,omitempty"`
	IsMainEvent *bool `json:"isMainEvent,omitempty"`
	FinalDay    *bool `json:"finalDay,omitempty"`

	TournamentPurpose         string     `json:"tournamentPurpose,omitempty"`
	SatelliteType             string     `json:"satelliteType,omitempty"`
	SatelliteSeatsAwarded     *int       `json:"satelliteSeatsAwarded,omitempty"`
	SatelliteSeatRatio        *SeatRatio `json:"satelliteSeatRatio,omitempty"`
	SatelliteTargetSeriesID   string     `json:"satelliteTargetSeriesId,omitempty"`
	SatelliteTargetSeriesName string     `json:"satelliteTargetSeriesName,omitempty"`
	SatelliteTargetConfidence *float64   `json:"satelliteTargetConfidence,omitempty"`
	SuggestedSatelliteTarget  string     `json:"suggestedSatelliteTarget,omitempty"`

	DayNumber    *int   `json:"dayNumber,omitempty"`
	FlightLetter string `json:"flightLetter,omitempty"`
	EventNumber  *int   `json:"eventNumber,omitempty"`
	SeriesYear   *int   `json:"seriesYear,omitempty"`

	HasAccumulatorTickets          *bool    `json:"hasAccumulatorTickets,omitempty"`
	AccumulatorTicketValue         *float64 `json:"accumulatorTicketValue,omitempty"`
	NumberOfAccumulatorTicketsPaid *int     `json:"numberOfAccumulatorTicketsPaid,omitempty"`

	GameYearMonth    string `json:"gameYearMonth,omitempty"`
	GameDayOfWeek    string `json:"gameDayOfWeek,omitempty"`
	VenueScheduleKey string `json:"venueScheduleKey,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NormalizeGameType(value string) (string, bool) {
	v := strings.ToUpper(strings.TrimSpace(value))
	v = strings.NewReplacer(" ", "_", "-", "_").Replace(v)
	switch v {
	case "":
		return "", true
	case TypeTournament, "MTT", "SNG", "SIT_AND_GO":
		return TypeTournament, true
	case TypeCashGame, "CASH", "RING", "RING_GAME":
		return TypeCashGame, true
	default:
		return v, false
	}
}

func NormalizeGameStatus(value string) string {
	v := strings.ToUpper(strings.TrimSpace(value))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(v)
}

// RegistrationStatusFor maps a game status onto its registration status.
func RegistrationStatusFor(gameStatus string) string {
	switch NormalizeGameStatus(gameStatus) {
	case StatusInitiating, StatusScheduled:
		return RegistrationScheduled
	case StatusRegistering, StatusRunning:
		return RegistrationOpen
	case StatusClockStopped, StatusFinished, StatusCancelled:
		return RegistrationClosed
	default:
		return RegistrationNA
	}
}

func (g Game) IsTournament() bool {
	return g.GameType == "" || g.GameType == TypeTournament
}

// EffectiveStart prefers the actual start over the scheduled one.
func (g Game) EffectiveStart() *time.Time {
	if g.GameActualStartDateTime != nil {
		return g.GameActualStartDateTime
	}
	return g.GameStartDateTime
}

// EntryCount is initial+rebuys+addons when the initial count is known, else totalEntries.
func (g Game) EntryCount() int {
	if g.TotalInitialEntries != nil {
		return deref(g.TotalInitialEntries) + deref(g.TotalRebuys) + deref(g.TotalAddons)
	}
	return deref(g.TotalEntries)
}

func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

func boolValue(p *bool) bool {
	return p != nil && *p
}

func (g Game) SeriesFlag() bool    { return boolValue(g.IsSeries) }
func (g Game) RegularFlag() bool   { return boolValue(g.IsRegular) }
func (g Game) SatelliteFlag() bool { return boolValue(g.IsSatellite) }
