package game

import (
	"context"
	"time"
)

// Repository describes game persistence needs from use cases. Range queries
// are inclusive on gameStartDateTime.
type Repository interface {
	GetByID(ctx context.Context, gameID string) (Game, bool, error)
	Upsert(ctx context.Context, item Game) error
	ListByTournamentID(ctx context.Context, tournamentID int64) ([]Game, error)
	ListByEntityAndTournamentID(ctx context.Context, entityID string, tournamentID int64) ([]Game, error)
	ListByVenue(ctx context.Context, venueID string, from, to time.Time) ([]Game, error)
	ListByGameMonth(ctx context.Context, yearMonth string, from, to time.Time) ([]Game, error)
	ListByRecurringGame(ctx context.Context, recurringGameID string) ([]Game, error)
}
