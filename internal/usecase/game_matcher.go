package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/tournament-reconciler/internal/domain/game"
	"github.com/riskibarqy/tournament-reconciler/internal/domain/social"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/aest"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/logging"
)

// Match paths.
const (
	MatchPathTournamentID = "tournament_id"
	MatchPathVenueDate    = "venue_date"
	MatchPathDateOnly     = "date_only"
)

// Match outcomes.
const (
	MatchOutcomeNoGames      = "no_games_in_range"
	MatchOutcomeBelowMinimum = "no_candidates_above_threshold"
	MatchOutcomeBelowAuto    = "below_auto_threshold"
	MatchOutcomeAutoLink     = "auto_link"
)

const monthFanOutWorkers = 3

type MatchCandidate struct {
	GameID            string           `json:"gameId"`
	GameName          string           `json:"gameName"`
	GameStartDateTime *time.Time       `json:"gameStartDateTime,omitempty"`
	VenueID           string           `json:"venueId,omitempty"`
	MatchConfidence   float64          `json:"matchConfidence"`
	MatchReason       string           `json:"matchReason"`
	MeetsMinimum      bool             `json:"meetsMinimum"`
	WouldAutoLink     bool             `json:"wouldAutoLink"`
	Breakdown         social.Breakdown `json:"breakdown"`
}

type MatchContext struct {
	Path         string    `json:"path"`
	VenueID      string    `json:"venueId,omitempty"`
	SearchStart  time.Time `json:"searchStart"`
	SearchEnd    time.Time `json:"searchEnd"`
	GamesScanned int       `json:"gamesScanned"`
	Threshold    float64   `json:"threshold"`
	Outcome      string    `json:"outcome"`
}

type MatchResult struct {
	Candidates   []MatchCandidate `json:"candidates"`
	PrimaryMatch *MatchCandidate  `json:"primaryMatch,omitempty"`
	MatchCount   int              `json:"matchCount"`
	MatchContext MatchContext     `json:"matchContext"`
}

type MatchOptions struct {
	MatchThreshold      float64 `json:"matchThreshold,omitempty"`
	MaxCandidates       int     `json:"maxCandidates,omitempty"`
	IncludeBelowMinimum bool    `json:"includeBelowMinimum"`
}

// GameMatcher finds the games a social extraction reports on.
type GameMatcher struct {
	gameRepo game.Repository
	venues   *VenueResolver
	cfg      MatcherConfig
	logger   *logging.Logger
}

func NewGameMatcher(gameRepo game.Repository, venues *VenueResolver, cfg MatcherConfig, logger *logging.Logger) *GameMatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &GameMatcher{
		gameRepo: gameRepo,
		venues:   venues,
		cfg:      normalizeMatcherConfig(cfg),
		logger:   logger,
	}
}

func (m *GameMatcher) Config() MatcherConfig {
	return m.cfg
}

// FindMatchingGames scores candidate games. A unique tournament id hit short
// circuits; otherwise the venue's games in the search window are scored, or
// every game in the window when no venue is known.
func (m *GameMatcher) FindMatchingGames(ctx context.Context, data social.GameData, post social.Post, opts MatchOptions) (MatchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameMatcher.FindMatchingGames")
	defer span.End()

	threshold := opts.MatchThreshold
	if threshold <= 0 {
		threshold = m.cfg.AutoLinkThreshold
	}
	limit := opts.MaxCandidates
	if limit <= 0 {
		limit = m.cfg.MaxCandidates
	}

	if data.ExtractedTournamentID != nil {
		games, err := m.byTournamentID(ctx, *data.ExtractedTournamentID, post.EntityID)
		if err != nil {
			return MatchResult{}, err
		}
		if len(games) == 1 {
			c := m.score(data, games[0], threshold)
			if c.MatchConfidence < social.TournamentIDMinConfidence {
				c.MatchConfidence = social.TournamentIDMinConfidence
			}
			c.MatchReason = social.MatchReasonTournamentID
			c.MeetsMinimum = true
			c.WouldAutoLink = c.MatchConfidence >= threshold
			return m.finish([]MatchCandidate{c}, MatchContext{Path: MatchPathTournamentID, GamesScanned: 1, Threshold: threshold}, limit, true), nil
		}
	}

	anchor := post.PostedAt
	if anchor.IsZero() {
		anchor = data.EffectiveGameDate
	}
	start := aest.StartOfDay(aest.AddDays(anchor, -m.cfg.LookbackDays))
	end := aest.EndOfDay(aest.AddDays(anchor, m.cfg.LookaheadDays))
	if !data.EffectiveGameDate.IsZero() && data.EffectiveGameDate.Before(start) {
		start = aest.StartOfDay(data.EffectiveGameDate)
	}
	if data.EffectiveGameDate.After(end) {
		end = aest.EndOfDay(data.EffectiveGameDate)
	}
	mctx := MatchContext{SearchStart: start.UTC(), SearchEnd: end.UTC(), Threshold: threshold}

	venueID, err := m.venueFor(ctx, data, post)
	if err != nil {
		return MatchResult{}, err
	}

	var games []game.Game
	if venueID != "" {
		mctx.Path = MatchPathVenueDate
		mctx.VenueID = venueID
		games, err = m.gameRepo.ListByVenue(ctx, venueID, start, end)
		if err != nil {
			return MatchResult{}, fmt.Errorf("list games by venue: %w", err)
		}
	}
	if len(games) == 0 {
		mctx.Path = MatchPathDateOnly
		games, err = m.byDateRange(ctx, start, end)
		if err != nil {
			return MatchResult{}, err
		}
	}
	mctx.GamesScanned = len(games)

	candidates := make([]MatchCandidate, 0, len(games))
	for _, g := range games {
		candidates = append(candidates, m.score(data, g, threshold))
	}
	return m.finish(candidates, mctx, limit, opts.IncludeBelowMinimum), nil
}

func (m *GameMatcher) score(data social.GameData, g game.Game, threshold float64) MatchCandidate {
	confidence, breakdown := social.ScoreGame(data, g)
	return MatchCandidate{
		GameID:            g.ID,
		GameName:          g.Name,
		GameStartDateTime: g.GameStartDateTime,
		VenueID:           g.VenueID,
		MatchConfidence:   confidence,
		MatchReason:       social.MatchReasonSignals,
		MeetsMinimum:      confidence >= m.cfg.MinConfidence,
		WouldAutoLink:     confidence >= threshold,
		Breakdown:         breakdown,
	}
}

func (m *GameMatcher) finish(candidates []MatchCandidate, mctx MatchContext, limit int, includeBelow bool) MatchResult {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].MatchConfidence != candidates[j].MatchConfidence {
			return candidates[i].MatchConfidence > candidates[j].MatchConfidence
		}
		return candidates[i].GameID < candidates[j].GameID
	})

	kept := make([]MatchCandidate, 0, len(candidates))
	for _, c := range candidates {
		if !c.MeetsMinimum && !includeBelow {
			continue
		}
		kept = append(kept, c)
		if len(kept) == limit {
			break
		}
	}

	out := MatchResult{Candidates: kept, MatchCount: len(kept), MatchContext: mctx}
	switch {
	case mctx.GamesScanned == 0:
		out.MatchContext.Outcome = MatchOutcomeNoGames
	case len(kept) == 0 || !kept[0].MeetsMinimum:
		out.MatchContext.Outcome = MatchOutcomeBelowMinimum
	case !kept[0].WouldAutoLink:
		out.MatchContext.Outcome = MatchOutcomeBelowAuto
	default:
		out.MatchContext.Outcome = MatchOutcomeAutoLink
	}
	if len(kept) > 0 && kept[0].MeetsMinimum {
		primary := kept[0]
		out.PrimaryMatch = &primary
	}
	return out
}

func (m *GameMatcher) byTournamentID(ctx context.Context, tournamentID int64, entityID string) ([]game.Game, error) {
	if entityID != "" {
		games, err := m.gameRepo.ListByEntityAndTournamentID(ctx, entityID, tournamentID)
		if err != nil {
			return nil, fmt.Errorf("list games by entity and tournament id: %w", err)
		}
		if len(games) > 0 {
			return games, nil
		}
	}
	games, err := m.gameRepo.ListByTournamentID(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list games by tournament id: %w", err)
	}
	return games, nil
}

func (m *GameMatcher) venueFor(ctx context.Context, data social.GameData, post social.Post) (string, error) {
	if data.ExtractedVenueID != "" {
		return data.ExtractedVenueID, nil
	}
	if post.VenueID != "" {
		return post.VenueID, nil
	}
	if data.ExtractedVenueName == "" {
		return "", nil
	}
	match, err := m.venues.MatchText(ctx, data.ExtractedVenueName)
	if err != nil {
		return "", err
	}
	return match.VenueID, nil
}

// byDateRange queries every month partition the range touches concurrently.
func (m *GameMatcher) byDateRange(ctx context.Context, start, end time.Time) ([]game.Game, error) {
	months := monthsCovering(start, end)
	p := pool.NewWithResults[[]game.Game]().WithContext(ctx).WithMaxGoroutines(monthFanOutWorkers)
	for _, ym := range months {
		ym := ym
		p.Go(func(ctx context.Context) ([]game.Game, error) {
			games, err := m.gameRepo.ListByGameMonth(ctx, ym, start, end)
			if err != nil {
				return nil, fmt.Errorf("list games for %s: %w", ym, err)
			}
			return games, nil
		})
	}
	parts, err := p.Wait()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	out := make([]game.Game, 0)
	for _, part := range parts {
		for _, g := range part {
			if _, dup := seen[g.ID]; dup {
				continue
			}
			seen[g.ID] = struct{}{}
			out = append(out, g)
		}
	}
	return out, nil
}

func monthsCovering(start, end time.Time) []string {
	out := []string{}
	cursor := aest.ToAEST(start)
	cursor = time.Date(cursor.Year(), cursor.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := aest.YearMonth(end)
	for i := 0; i < 24; i++ {
		ym := cursor.Format("2006-01")
		out = append(out, ym)
		if ym == last {
			break
		}
		cursor = cursor.AddDate(0, 1, 0)
	}
	return out
}
