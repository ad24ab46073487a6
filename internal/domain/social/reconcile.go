package social

import (
	"math"

	"github.com/riskibarqy/tournament-reconciler/internal/domain/game"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/textutil"
)

const (
	CashTolerance      = 1.0
	MajorCashThreshold = 100.0

	SeverityNone  = "NONE"
	SeverityMinor = "MINOR"
	SeverityMajor = "MAJOR"

	ActionNone         = "NONE"
	ActionManualReview = "MANUAL_REVIEW"
)

// Reconciliation compares what a result post reports with the stored game.
type Reconciliation struct {
	GameID                     string  `json:"gameId"`
	SocialPostID               string  `json:"socialPostId"`
	ExtractedCashPaid          float64 `json:"extractedCashPaid"`
	GamePrizepoolPaid          float64 `json:"gamePrizepoolPaid"`
	CashDifference             float64 `json:"cashDifference"`
	ExtractedAccumulatorCount  int     `json:"extractedAccumulatorCount"`
	GameAccumulatorCount       int     `json:"gameAccumulatorCount"`
	AccumulatorCountDifference int     `json:"accumulatorCountDifference"`
	ExtractedTicketValue       float64 `json:"extractedTicketValue"`
	HasDiscrepancy             bool    `json:"hasDiscrepancy"`
	Severity                   string  `json:"severity"`
	SuggestedAction            string  `json:"suggestedAction"`
}

// Reconcile checks cash within a dollar and accumulator tickets exactly.
func Reconcile(data GameData, g game.Game) Reconciliation {
	out := Reconciliation{
		GameID:                    g.ID,
		SocialPostID:              data.SocialPostID,
		ExtractedCashPaid:         data.Tickets.TotalCashPaid,
		ExtractedAccumulatorCount: data.Tickets.AccumulatorTicketCount,
		ExtractedTicketValue:      data.Tickets.TotalTicketValue,
		Severity:                  SeverityNone,
		SuggestedAction:           ActionNone,
	}
	if g.PrizepoolPaid != nil {
		out.GamePrizepoolPaid = *g.PrizepoolPaid
	}
	if g.NumberOfAccumulatorTicketsPaid != nil {
		out.GameAccumulatorCount = *g.NumberOfAccumulatorTicketsPaid
	}
	out.CashDifference = textutil.Round2(out.ExtractedCashPaid - out.GamePrizepoolPaid)
	out.AccumulatorCountDifference = out.ExtractedAccumulatorCount - out.GameAccumulatorCount

	cashOff := math.Abs(out.CashDifference) > CashTolerance
	ticketsOff := out.AccumulatorCountDifference != 0
	if !cashOff && !ticketsOff {
		return out
	}
	out.HasDiscrepancy = true
	out.SuggestedAction = ActionManualReview
	out.Severity = SeverityMinor
	if math.Abs(out.CashDifference) > MajorCashThreshold {
		out.Severity = SeverityMajor
	}
	return out
}
