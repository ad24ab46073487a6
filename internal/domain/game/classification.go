package game

import (
	"strings"
	"time"
)

const (
	VariantHoldem     = "HOLD_EM"
	VariantOmahaHi    = "OMAHA_HI"
	VariantOmahaHiLo  = "OMAHA_HI_LO"
	VariantOmaha5     = "OMAHA_5_CARD"
	VariantOmaha6     = "OMAHA_6_CARD"
	VariantStud       = "STUD"
	VariantStudHiLo   = "STUD_HI_LO"
	VariantRazz       = "RAZZ"
	VariantDraw       = "DRAW"
	VariantMixed      = "MIXED"
	VariantShortDeck  = "SHORT_DECK"
	VariantOther      = "OTHER"
	BettingNoLimit    = "NO_LIMIT"
	BettingPotLimit   = "POT_LIMIT"
	BettingFixedLimit = "FIXED_LIMIT"
	BettingMixed      = "MIXED"
	BettingOther      = "OTHER"
)

const (
	TierFreeroll  = "FREEROLL"
	TierMicro     = "MICRO"
	TierLow       = "LOW"
	TierMid       = "MID"
	TierHigh      = "HIGH"
	TierSuperHigh = "SUPER_HIGH"
)

type variantClass struct {
	variant string
	betting string
}

var variantTable = map[string]variantClass{
	"NLHE":      {VariantHoldem, BettingNoLimit},
	"NLH":       {VariantHoldem, BettingNoLimit},
	"HOLDEM":    {VariantHoldem, BettingNoLimit},
	"LHE":       {VariantHoldem, BettingFixedLimit},
	"FLHE":      {VariantHoldem, BettingFixedLimit},
	"PLHE":      {VariantHoldem, BettingPotLimit},
	"PLO":       {VariantOmahaHi, BettingPotLimit},
	"PLO4":      {VariantOmahaHi, BettingPotLimit},
	"NLO":       {VariantOmahaHi, BettingNoLimit},
	"PLO5":      {VariantOmaha5, BettingPotLimit},
	"PLO6":      {VariantOmaha6, BettingPotLimit},
	"PLO8":      {VariantOmahaHiLo, BettingPotLimit},
	"PLOHL":     {VariantOmahaHiLo, BettingPotLimit},
	"O8":        {VariantOmahaHiLo, BettingFixedLimit},
	"STUD":      {VariantStud, BettingFixedLimit},
	"STUD8":     {VariantStudHiLo, BettingFixedLimit},
	"RAZZ":      {VariantRazz, BettingFixedLimit},
	"2-7TD":     {VariantDraw, BettingFixedLimit},
	"HORSE":     {VariantMixed, BettingMixed},
	"MIXED":     {VariantMixed, BettingMixed},
	"8GAME":     {VariantMixed, BettingMixed},
	"SHORTDECK": {VariantShortDeck, BettingNoLimit},
}

// ClassifyVariant maps a raw gameVariant onto the canonical variant and betting structure.
func ClassifyVariant(gameVariant string) (string, string) {
	key := strings.ToUpper(strings.TrimSpace(gameVariant))
	key = strings.NewReplacer(" ", "", "_", "", "'", "").Replace(key)
	if c, ok := variantTable[key]; ok {
		return c.variant, c.betting
	}
	return VariantOther, BettingOther
}

// BuyInTier buckets a buy-in amount.
func BuyInTier(buyIn float64) string {
	switch {
	case buyIn <= 0:
		return TierFreeroll
	case buyIn <= 55:
		return TierMicro
	case buyIn <= 150:
		return TierLow
	case buyIn <= 500:
		return TierMid
	case buyIn <= 2000:
		return TierHigh
	default:
		return TierSuperHigh
	}
}

// DeriveClassification sets the canonical classification fields that are
// absent and stamps the source when anything was set.
func DeriveClassification(g *Game, now time.Time) {
	changed := false
	if g.SessionMode == "" {
		g.SessionMode = SessionTournament
		if g.GameType == TypeCashGame {
			g.SessionMode = SessionCash
		}
		changed = true
	}
	variant, betting := ClassifyVariant(g.GameVariant)
	if g.Variant == "" {
		g.Variant = variant
		changed = true
	}
	if g.BettingStructure == "" {
		g.BettingStructure = betting
		changed = true
	}
	if g.BuyInTier == "" && g.BuyIn != nil {
		g.BuyInTier = BuyInTier(*g.BuyIn)
		changed = true
	}
	if changed {
		g.ClassificationSource = ClassificationDerived
		stamp := now.UTC()
		g.LastClassifiedAt = &stamp
	}
}

// Classification is the series/recurring/one-off identity of a game. It is
// flattened to isSeries/isRegular only when written back to the record.
type Classification interface {
	isClassification()
}

type SeriesClassification struct {
	SeriesID string
	TitleID  string
}

type RecurringClassification struct {
	RecurringGameID string
}

type OneOffClassification struct{}

func (SeriesClassification) isClassification()    {}
func (RecurringClassification) isClassification() {}
func (OneOffClassification) isClassification()    {}

// Classify reads the identity from the record. A series flag wins over a
// recurring assignment.
func (g Game) Classify() Classification {
	if g.SeriesFlag() {
		return SeriesClassification{SeriesID: g.TournamentSeriesID, TitleID: g.TournamentSeriesTitleID}
	}
	if g.RecurringGameID != "" {
		return RecurringClassification{RecurringGameID: g.RecurringGameID}
	}
	return OneOffClassification{}
}

// ApplyClassification writes the mutually exclusive isSeries/isRegular flags.
func (g *Game) ApplyClassification(c Classification) {
	switch c.(type) {
	case SeriesClassification:
		g.IsSeries = boolPtr(true)
		g.IsRegular = boolPtr(false)
	case RecurringClassification:
		g.IsSeries = boolPtr(false)
		g.IsRegular = boolPtr(true)
	default:
		g.IsSeries = boolPtr(false)
		if g.IsRegular == nil {
			g.IsRegular = boolPtr(false)
		}
	}
}
