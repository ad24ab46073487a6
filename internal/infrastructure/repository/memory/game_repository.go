package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/tournament-reconciler/internal/domain/game"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/aest"
)

type GameRepository struct {
	mu    sync.RWMutex
	games map[string]game.Game
}

func NewGameRepository(games []game.Game) *GameRepository {
	byID := make(map[string]game.Game, len(games))
	for _, item := range games {
		byID[item.ID] = item
	}
	return &GameRepository{games: byID}
}

func (r *GameRepository) GetByID(_ context.Context, gameID string) (game.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.games[gameID]
	return item, ok, nil
}

func (r *GameRepository) Upsert(_ context.Context, item game.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.games[item.ID] = item
	return nil
}

func (r *GameRepository) ListByTournamentID(_ context.Context, tournamentID int64) ([]game.Game, error) {
	return r.filter(func(g game.Game) bool {
		return g.TournamentID != nil && *g.TournamentID == tournamentID
	}), nil
}

func (r *GameRepository) ListByEntityAndTournamentID(_ context.Context, entityID string, tournamentID int64) ([]game.Game, error) {
	return r.filter(func(g game.Game) bool {
		return g.EntityID == entityID && g.TournamentID != nil && *g.TournamentID == tournamentID
	}), nil
}

func (r *GameRepository) ListByVenue(_ context.Context, venueID string, from, to time.Time) ([]game.Game, error) {
	return r.filter(func(g game.Game) bool {
		return g.VenueID == venueID && startsWithin(g, from, to)
	}), nil
}

func (r *GameRepository) ListByGameMonth(_ context.Context, yearMonth string, from, to time.Time) ([]game.Game, error) {
	return r.filter(func(g game.Game) bool {
		return gameMonth(g) == yearMonth && startsWithin(g, from, to)
	}), nil
}

func (r *GameRepository) ListByRecurringGame(_ context.Context, recurringGameID string) ([]game.Game, error) {
	return r.filter(func(g game.Game) bool {
		return g.RecurringGameID == recurringGameID
	}), nil
}

func (r *GameRepository) filter(keep func(game.Game) bool) []game.Game {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.Game, 0)
	for _, item := range r.games {
		if keep(item) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].GameStartDateTime, out[j].GameStartDateTime
		if a != nil && b != nil && !a.Equal(*b) {
			return a.Before(*b)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func startsWithin(g game.Game, from, to time.Time) bool {
	if g.GameStartDateTime == nil {
		return false
	}
	start := *g.GameStartDateTime
	return !start.Before(from) && !start.After(to)
}

func gameMonth(g game.Game) string {
	if g.GameYearMonth != "" {
		return g.GameYearMonth
	}
	if g.GameStartDateTime == nil {
		return ""
	}
	return aest.YearMonth(*g.GameStartDateTime)
}
