package social

import (
	"fmt"
	"strings"
	"time"
)

const (
	StatusPending      = "PENDING"
	StatusProcessing   = "PROCESSING"
	StatusExtracted    = "EXTRACTED"
	StatusMatched      = "MATCHED"
	StatusLinked       = "LINKED"
	StatusFailed       = "FAILED"
	StatusSkipped      = "SKIPPED"
	StatusManualReview = "MANUAL_REVIEW"
)

const (
	ContentResult      = "RESULT"
	ContentPromotional = "PROMOTIONAL"
	ContentGeneral     = "GENERAL"
	ContentComment     = "COMMENT"
)

const (
	PostTypePost    = "POST"
	PostTypeComment = "COMMENT"
	PostTypeShare   = "SHARE"
)

const (
	LinkAutoMatched  = "AUTO_MATCHED"
	LinkManualLinked = "MANUAL_LINKED"
	LinkVerified     = "VERIFIED"
	LinkRejected     = "REJECTED"
)

const (
	DateSourcePostContent = "post_content"
	DateSourcePostedAt    = "posted_at"
)

// Statuses lists every processing status in lifecycle order.
var Statuses = []string{
	StatusPending, StatusProcessing, StatusExtracted, StatusMatched,
	StatusLinked, StatusFailed, StatusSkipped, StatusManualReview,
}

// LinkTypes lists every link type.
var LinkTypes = []string{LinkAutoMatched, LinkManualLinked, LinkVerified, LinkRejected}

func NormalizeStatus(value string) (string, bool) {
	v := strings.ToUpper(strings.TrimSpace(value))
	for _, s := range Statuses {
		if s == v {
			return v, true
		}
	}
	return "", false
}

// Post is a scraped social media post from a venue or organiser page.
type Post struct {
	ID                    string     `json:"id"`
	Platform              string     `json:"platform"`
	PostType              string     `json:"postType,omitempty"`
	Content               string     `json:"content"`
	PostedAt              time.Time  `json:"postedAt"`
	PostURL               string     `json:"postUrl,omitempty"`
	AuthorName            string     `json:"authorName,omitempty"`
	EntityID              string     `json:"entityId,omitempty"`
	VenueID               string     `json:"venueId,omitempty"`
	ProcessingStatus      string     `json:"processingStatus"`
	ProcessingError       string     `json:"processingError,omitempty"`
	ProcessedAt           *time.Time `json:"processedAt,omitempty"`
	ContentType           string     `json:"contentType,omitempty"`
	ContentTypeConfidence *float64   `json:"contentTypeConfidence,omitempty"`
	LinkedGameCount       int        `json:"linkedGameCount"`
	HasUnverifiedLinks    bool       `json:"hasUnverifiedLinks"`
	ExtractedGameDataID   string     `json:"extractedGameDataId,omitempty"`
	PrimaryLinkedGameID   string     `json:"primaryLinkedGameId,omitempty"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

func (p Post) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("social post id is required")
	}
	if p.PostedAt.IsZero() {
		return fmt.Errorf("social post postedAt is required")
	}
	return nil
}

// NonCashPrize is a ticket, seat or other non-cash award found in a prize string.
type NonCashPrize struct {
	PrizeType      string   `json:"prizeType"`
	Description    string   `json:"description"`
	EstimatedValue *float64 `json:"estimatedValue,omitempty"`
	MatchedText    string   `json:"matchedText"`
}

// Placement is one finishing position parsed from a result post.
type Placement struct {
	ID                  string         `json:"id,omitempty"`
	SocialPostID        string         `json:"socialPostId,omitempty"`
	Place               int            `json:"place"`
	PlayerName          string         `json:"playerName"`
	CashPrize           *float64       `json:"cashPrize,omitempty"`
	HasNonCashPrize     bool           `json:"hasNonCashPrize"`
	NonCashPrizes       []NonCashPrize `json:"nonCashPrizes,omitempty"`
	TotalEstimatedValue *float64       `json:"totalEstimatedValue,omitempty"`
	WasChop             bool           `json:"wasChop"`
	WasICMDeal          bool           `json:"wasICMDeal"`
	RawText             string         `json:"rawText,omitempty"`
}

// TicketAggregates summarise the prizes across all placements of a post.
type TicketAggregates struct {
	TotalTicketsExtracted    int                `json:"totalTicketsExtracted"`
	TotalTicketValue         float64            `json:"totalTicketValue"`
	TicketCountByType        map[string]int     `json:"ticketCountByType"`
	TicketValueByType        map[string]float64 `json:"ticketValueByType"`
	TotalCashPaid            float64            `json:"totalCashPaid"`
	TotalPrizesWithTickets   int                `json:"totalPrizesWithTickets"`
	TotalTicketOnlyPrizes    int                `json:"totalTicketOnlyPrizes"`
	AccumulatorTicketCount   int                `json:"reconciliation_accumulatorTicketCount"`
	AccumulatorTicketValue   float64            `json:"reconciliation_accumulatorTicketValue"`
	CashPlusTotalTicketValue float64            `json:"reconciliation_cashPlusTotalTicketValue"`
}

// AdvertisedTicket is a ticket prize promised by a promotional post.
type AdvertisedTicket struct {
	PrizeType      string   `json:"prizeType"`
	Description    string   `json:"description"`
	Quantity       int      `json:"quantity"`
	EstimatedValue *float64 `json:"estimatedValue,omitempty"`
	MatchedText    string   `json:"matchedText"`
}

// GameData is the structured extraction of one post.
type GameData struct {
	ID                    string   `json:"id"`
	SocialPostID          string   `json:"socialPostId"`
	ContentType           string   `json:"contentType"`
	ContentTypeConfidence float64  `json:"contentTypeConfidence"`
	ResultScore           float64  `json:"resultScore"`
	PromoScore            float64  `json:"promoScore"`
	MatchedPatterns       []string `json:"matchedPatterns,omitempty"`

	ExtractedTournamentURL string `json:"extractedTournamentUrl,omitempty"`
	ExtractedTournamentID  *int64 `json:"extractedTournamentId,omitempty"`

	ExtractedName               string `json:"extractedName,omitempty"`
	ExtractedRecurringGameName  string `json:"extractedRecurringGameName,omitempty"`
	ExtractedRecurringDayOfWeek string `json:"extractedRecurringDayOfWeek,omitempty"`

	ExtractedBuyIn          *float64 `json:"extractedBuyIn,omitempty"`
	ExtractedBuyInPrizepool *float64 `json:"extractedBuyInPrizepool,omitempty"`
	ExtractedRake           *float64 `json:"extractedRake,omitempty"`
	ExtractedGuarantee      *float64 `json:"extractedGuarantee,omitempty"`
	ExtractedPrizepool      *float64 `json:"extractedPrizepool,omitempty"`
	ExtractedTotalEntries   *int     `json:"extractedTotalEntries,omitempty"`
	ExtractedBadBeatJackpot *float64 `json:"extractedBadBeatJackpot,omitempty"`
	ExtractedStartingStack  *int     `json:"extractedStartingStack,omitempty"`
	ExtractedBlindLevelMins *int     `json:"extractedBlindLevelMinutes,omitempty"`
	ExtractedLateRegTime    string   `json:"extractedLateRegTime,omitempty"`
	ExtractedLateRegLevel   *int     `json:"extractedLateRegLevel,omitempty"`
	ExtractedTournamentType string   `json:"extractedTournamentType,omitempty"`
	ExtractedGameVariant    string   `json:"extractedGameVariant,omitempty"`
	ExtractedSeriesName     string   `json:"extractedSeriesName,omitempty"`
	ExtractedEventNumber    *int     `json:"extractedEventNumber,omitempty"`
	ExtractedDayNumber      *int     `json:"extractedDayNumber,omitempty"`
	ExtractedFlightLetter   string   `json:"extractedFlightLetter,omitempty"`

	ExtractedDate      *time.Time `json:"extractedDate,omitempty"`
	ExtractedDayOfWeek string     `json:"extractedDayOfWeek,omitempty"`
	DateSource         string     `json:"dateSource,omitempty"`
	EffectiveGameDate  time.Time  `json:"effectiveGameDate"`

	ExtractedVenueID     string   `json:"extractedVenueId,omitempty"`
	ExtractedVenueName   string   `json:"extractedVenueName,omitempty"`
	VenueMatchConfidence *float64 `json:"venueMatchConfidence,omitempty"`
	VenueMatchSource     string   `json:"venueMatchSource,omitempty"`
	SuggestedVenueName   string   `json:"suggestedVenueName,omitempty"`

	Placements        []Placement        `json:"placements,omitempty"`
	PlacementCount    int                `json:"placementCount"`
	Tickets           TicketAggregates   `json:"tickets"`
	AdvertisedTickets []AdvertisedTicket `json:"advertisedTickets,omitempty"`

	ExtractedAt time.Time `json:"extractedAt"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Link ties a post to a game it reports on.
type Link struct {
	ID              string     `json:"id"`
	SocialPostID    string     `json:"socialPostId"`
	GameID          string     `json:"gameId"`
	LinkType        string     `json:"linkType"`
	MatchConfidence float64    `json:"matchConfidence"`
	MatchReason     string     `json:"matchReason,omitempty"`
	MatchSignals    *Breakdown `json:"matchSignals,omitempty"`
	IsPrimaryGame   bool       `json:"isPrimaryGame"`
	MentionOrder    int        `json:"mentionOrder"`
	LinkedBy        string     `json:"linkedBy,omitempty"`
	VerifiedBy      string     `json:"verifiedBy,omitempty"`
	VerifiedAt      *time.Time `json:"verifiedAt,omitempty"`
	RejectedBy      string     `json:"rejectedBy,omitempty"`
	RejectedAt      *time.Time `json:"rejectedAt,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Counts reports whether the link contributes to aggregation.
func (l Link) Counts() bool {
	return l.LinkType != LinkRejected
}

// Unverified reports whether the link still awaits a human decision.
func (l Link) Unverified() bool {
	return l.LinkType == LinkAutoMatched
}

// Contributor is one input that moved a signal group score.
type Contributor struct {
	Signal string  `json:"signal"`
	Points float64 `json:"points"`
	Detail string  `json:"detail,omitempty"`
}

// GroupScore is the capped score of one signal group.
type GroupScore struct {
	Score        float64       `json:"score"`
	MaxPossible  float64       `json:"maxPossible"`
	Contributors []Contributor `json:"contributors"`
}

// Breakdown is the per-group explanation of a match confidence.
type Breakdown struct {
	Identity  GroupScore `json:"identity"`
	Financial GroupScore `json:"financial"`
	Temporal  GroupScore `json:"temporal"`
	Venue     GroupScore `json:"venue"`
	Penalties GroupScore `json:"penalties"`
	Raw       float64    `json:"raw"`
}
