package social

import (
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/riskibarqy/tournament-reconciler/internal/domain/game"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/aest"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/textutil"
)

// Signal group caps.
const (
	IdentityMax  = 45.0
	FinancialMax = 30.0
	TemporalMax  = 15.0
	VenueMax     = 10.0
	PenaltyMax   = 20.0
)

const (
	MatchReasonTournamentID = "tournament_id_exact"
	MatchReasonSignals      = "signal_score"
	MatchReasonManual       = "manual_link"

	TournamentIDMinConfidence = 95.0
)

type group struct {
	max   float64
	score GroupScore
}

func newGroup(max float64) *group {
	return &group{max: max, score: GroupScore{MaxPossible: max, Contributors: []Contributor{}}}
}

func (g *group) add(signal string, points float64, detail string) {
	if points == 0 {
		return
	}
	g.score.Contributors = append(g.score.Contributors, Contributor{Signal: signal, Points: textutil.Round2(points), Detail: detail})
	g.score.Score += points
}

func (g *group) capped() GroupScore {
	out := g.score
	out.Score = textutil.Round2(math.Max(-g.max, math.Min(g.max, out.Score)))
	return out
}

// ScoreGame rates how well an extraction describes a game. The confidence is
// the capped group sum minus penalties, clamped to 0..100.
func ScoreGame(data GameData, g game.Game) (float64, Breakdown) {
	identity := newGroup(IdentityMax)
	if data.ExtractedTournamentID != nil && g.TournamentID != nil && *data.ExtractedTournamentID == *g.TournamentID {
		identity.add("tournament_id", IdentityMax, fmt.Sprintf("%d", *g.TournamentID))
	}
	bestName := 0.0
	for _, name := range []string{data.ExtractedName, data.ExtractedRecurringGameName} {
		if strings.TrimSpace(name) == "" {
			continue
		}
		if s := textutil.NameSimilarity(name, g.Name); s > bestName {
			bestName = s
		}
	}
	identity.add("name_similarity", bestName*100*0.25, g.Name)
	if sameHost(data.ExtractedTournamentURL, g.SourceURL) {
		identity.add("url_host", 5, "")
	}

	financial := newGroup(FinancialMax)
	buyInMismatch := false
	if data.ExtractedBuyIn != nil && g.BuyIn != nil {
		if math.Abs(*data.ExtractedBuyIn-*g.BuyIn) <= 1 {
			financial.add("buy_in_equal", 15, "")
		} else {
			buyInMismatch = true
		}
	}
	if data.ExtractedGuarantee != nil && g.GuaranteeAmount != nil && within(*data.ExtractedGuarantee, *g.GuaranteeAmount, 0.10) {
		financial.add("guarantee_within_10pct", 10, "")
	}
	if data.ExtractedTotalEntries != nil && g.TotalEntries != nil && within(float64(*data.ExtractedTotalEntries), float64(*g.TotalEntries), 0.20) {
		financial.add("entries_within_20pct", 5, "")
	}

	temporal := newGroup(TemporalMax)
	start := g.EffectiveStart()
	if start != nil && !data.EffectiveGameDate.IsZero() {
		days := aest.DaysBetween(data.EffectiveGameDate, *start)
		if days < 0 {
			days = -days
		}
		switch {
		case days == 0:
			temporal.add("same_day", 15, "")
		case days <= 1:
			temporal.add("within_1_day", 10, "")
		case days <= 3:
			temporal.add("within_3_days", 5, "")
		}
	}

	venueGroup := newGroup(VenueMax)
	if data.ExtractedVenueID != "" && data.ExtractedVenueID == g.VenueID {
		venueGroup.add("venue_id", 10, g.VenueID)
	} else if data.ExtractedVenueName != "" && g.VenueName != "" {
		venueGroup.add("venue_name_similarity", textutil.NameSimilarity(data.ExtractedVenueName, g.VenueName)*100*0.05, g.VenueName)
	}

	penalties := newGroup(PenaltyMax)
	if buyInMismatch {
		penalties.add("buy_in_mismatch", -10, fmt.Sprintf("%.2f vs %.2f", *data.ExtractedBuyIn, *g.BuyIn))
	}
	if day := data.ExtractedRecurringDayOfWeek; day != "" && g.RecurringGameID != "" && start != nil && !strings.EqualFold(day, aest.DayName(*start)) {
		penalties.add("day_of_week_mismatch", -5, day)
	}
	if statusIncompatible(data.ContentType, g.GameStatus) {
		penalties.add("status_incompatible", -5, g.GameStatus)
	}

	b := Breakdown{
		Identity:  identity.capped(),
		Financial: financial.capped(),
		Temporal:  temporal.capped(),
		Venue:     venueGroup.capped(),
		Penalties: penalties.capped(),
	}
	b.Raw = textutil.Round2(b.Identity.Score + b.Financial.Score + b.Temporal.Score + b.Venue.Score + b.Penalties.Score)
	return textutil.Round2(math.Max(0, math.Min(100, b.Raw))), b
}

func within(a, b, tolerance float64) bool {
	if b == 0 {
		return a == 0
	}
	return math.Abs(a-b) <= tolerance*math.Abs(b)
}

// sameHost compares hosts of URLs with or without a scheme.
func sameHost(a, b string) bool {
	ha, hb := hostOf(a), hostOf(b)
	return ha != "" && strings.EqualFold(ha, hb)
}

func hostOf(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// statusIncompatible flags results reported for games that have not run and
// any post about a cancelled game.
func statusIncompatible(contentType, gameStatus string) bool {
	switch game.NormalizeGameStatus(gameStatus) {
	case game.StatusCancelled:
		return true
	case game.StatusInitiating, game.StatusScheduled, game.StatusRegistering:
		return contentType == ContentResult
	}
	return false
}
