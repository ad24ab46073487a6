package game

import (
	"github.com/riskibarqy/tournament-reconciler/internal/platform/textutil"
	"github.com/shopspring/decimal"
)

// GuaranteeEpsilon is the slack allowed before prizepoolPaid counts as
// exceeding player contributions.
var GuaranteeEpsilon = decimal.RequireFromString("0.01")

// Entry structures. Each decides which entry counts pay rake and venue fee.
const (
	EntryFreezeout  = "FREEZEOUT"
	EntryReEntry    = "RE_ENTRY"
	EntryRebuy      = "REBUY"
	EntryRebuyAddon = "REBUY_ADDON"
	EntryUnlimited  = "UNLIMITED_RE_ENTRY"
)

type rakeRule struct {
	initial bool
	rebuys  bool
	addons  bool
}

var entryStructureRake = map[string]rakeRule{
	EntryFreezeout:  {initial: true},
	EntryReEntry:    {initial: true, rebuys: true},
	"REENTRY":       {initial: true, rebuys: true},
	EntryUnlimited:  {initial: true, rebuys: true},
	EntryRebuy:      {initial: true, rebuys: true},
	EntryRebuyAddon: {initial: true, rebuys: true},
}

// Financials is the output of CalculateFinancials.
type Financials struct {
	Entries                      int     `json:"entries"`
	RakedEntries                 int     `json:"rakedEntries"`
	TotalBuyInsCollected         float64 `json:"totalBuyInsCollected"`
	RakeRevenue                  float64 `json:"rakeRevenue"`
	VenueFeeRevenue              float64 `json:"venueFeeRevenue"`
	PrizepoolPlayerContributions float64 `json:"prizepoolPlayerContributions"`
	GuaranteeAmount              float64 `json:"guaranteeAmount"`
	GuaranteeInferred            bool    `json:"guaranteeInferred"`
	GuaranteeOverlayCost         float64 `json:"guaranteeOverlayCost"`
	PrizepoolAddedValue          float64 `json:"prizepoolAddedValue"`
	PrizepoolSurplus             float64 `json:"prizepoolSurplus"`
	PrizepoolCalculated          float64 `json:"prizepoolCalculated"`
	GameProfit                   float64 `json:"gameProfit"`
	IsUnderwater                 bool    `json:"isUnderwater"`
	EntryStructureRecognized     bool    `json:"entryStructureRecognized"`
}

// CalculateFinancials computes the money fields of a tournament and writes
// them onto g. It returns false when there is nothing to compute from.
func CalculateFinancials(g *Game, diag *Diagnostics) (Financials, bool) {
	if !g.IsTournament() || g.BuyIn == nil {
		return Financials{}, false
	}
	entries := g.EntryCount()
	if entries <= 0 {
		return Financials{}, false
	}

	initial := deref(g.TotalInitialEntries)
	if g.TotalInitialEntries == nil {
		initial = entries
	}
	rebuys := deref(g.TotalRebuys)
	addons := deref(g.TotalAddons)

	rule, recognized := entryStructureRake[g.EntryStructure]
	if !recognized {
		rule = rakeRule{initial: true, rebuys: true, addons: true}
		if g.EntryStructure != "" {
			diag.Warn("entryStructure", CodeEntryStructureOutOfBand, "entry structure not in rake table, raking every entry", map[string]any{
				"entryStructure": g.EntryStructure,
			})
		}
	}
	raked := 0
	if rule.initial {
		raked += initial
	}
	if rule.rebuys {
		raked += rebuys
	}
	if rule.addons {
		raked += addons
	}
	if g.TotalInitialEntries == nil {
		raked = entries
	}

	buyIn := decimal.NewFromFloat(*g.BuyIn)
	rake := decimal.NewFromFloat(deref(g.Rake))
	venueFee := decimal.NewFromFloat(deref(g.VenueFee))
	paid := decimal.NewFromFloat(deref(g.PrizepoolPaid))
	extras := decimal.NewFromFloat(deref(g.PrizepoolAddedExtras))

	collected := buyIn.Mul(decimal.NewFromInt(int64(entries)))
	rakeRevenue := rake.Mul(decimal.NewFromInt(int64(raked)))
	venueFeeRevenue := venueFee.Mul(decimal.NewFromInt(int64(raked)))
	contributions := collected.Sub(rakeRevenue).Sub(venueFeeRevenue)

	guarantee := decimal.NewFromFloat(deref(g.GuaranteeAmount))
	inferred := false
	if !boolValue(g.HasGuarantee) && g.PrizepoolPaid != nil && paid.GreaterThan(contributions.Add(GuaranteeEpsilon)) {
		guarantee = paid
		inferred = true
		g.GuaranteeAmount = floatPtr(paid.InexactFloat64())
		g.HasGuarantee = boolPtr(true)
		g.GuaranteeWasInferred = boolPtr(true)
		diag.Warn("guaranteeAmount", CodeGuaranteeInferred, "prizepoolPaid exceeds player contributions, guarantee inferred", map[string]any{
			"prizepoolPaid":                paid.InexactFloat64(),
			"prizepoolPlayerContributions": contributions.InexactFloat64(),
		})
	}

	overlay := decimal.Max(decimal.Zero, guarantee.Sub(contributions))
	if !boolValue(g.HasGuarantee) {
		overlay = decimal.Zero
	}
	addedValue := overlay.Add(extras)
	surplus := contributions.Sub(guarantee)
	profit := rakeRevenue.Sub(overlay)

	out := Financials{
		Entries:                      entries,
		RakedEntries:                 raked,
		TotalBuyInsCollected:         collected.InexactFloat64(),
		RakeRevenue:                  rakeRevenue.InexactFloat64(),
		VenueFeeRevenue:              venueFeeRevenue.InexactFloat64(),
		PrizepoolPlayerContributions: contributions.InexactFloat64(),
		GuaranteeAmount:              guarantee.InexactFloat64(),
		GuaranteeInferred:            inferred,
		GuaranteeOverlayCost:         overlay.InexactFloat64(),
		PrizepoolAddedValue:          addedValue.InexactFloat64(),
		PrizepoolSurplus:             surplus.InexactFloat64(),
		PrizepoolCalculated:          contributions.Add(addedValue).InexactFloat64(),
		GameProfit:                   profit.InexactFloat64(),
		IsUnderwater:                 profit.IsNegative(),
		EntryStructureRecognized:     recognized,
	}

	g.TotalBuyInsCollected = textutil.FinitePtr(out.TotalBuyInsCollected)
	g.RakeRevenue = textutil.FinitePtr(out.RakeRevenue)
	g.VenueFeeRevenue = textutil.FinitePtr(out.VenueFeeRevenue)
	g.PrizepoolPlayerContributions = textutil.FinitePtr(out.PrizepoolPlayerContributions)
	g.GuaranteeOverlayCost = textutil.FinitePtr(out.GuaranteeOverlayCost)
	g.PrizepoolAddedValue = textutil.FinitePtr(out.PrizepoolAddedValue)
	g.PrizepoolSurplus = textutil.FinitePtr(out.PrizepoolSurplus)
	g.PrizepoolCalculated = textutil.FinitePtr(out.PrizepoolCalculated)
	g.GameProfit = textutil.FinitePtr(out.GameProfit)
	g.IsUnderwater = boolPtr(out.IsUnderwater)
	return out, true
}

// SanitizeNumbers coerces every non-finite float field to nil before persistence.
func SanitizeNumbers(g *Game) {
	for _, f := range []**float64{
		&g.BuyIn, &g.Rake, &g.VenueFee, &g.GuaranteeAmount, &g.PrizepoolPaid, &g.PrizepoolCalculated,
		&g.PrizepoolAddedExtras, &g.TotalBuyInsCollected, &g.RakeRevenue, &g.VenueFeeRevenue,
		&g.PrizepoolPlayerContributions, &g.GuaranteeOverlayCost, &g.PrizepoolAddedValue,
		&g.PrizepoolSurplus, &g.GameProfit, &g.AccumulatorTicketValue, &g.VenueAssignmentConfidence,
		&g.SeriesAssignmentConfidence, &g.RecurringGameAssignmentConfidence, &g.SatelliteTargetConfidence,
	} {
		if *f != nil {
			*f = textutil.SanitizePtr(*f)
		}
	}
}
