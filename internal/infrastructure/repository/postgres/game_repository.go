package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/tournament-reconciler/internal/domain/game"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/aest"
	qb "github.com/riskibarqy/tournament-reconciler/internal/platform/querybuilder"
)

const gamesTable = "games"

type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) GetByID(ctx context.Context, gameID string) (game.Game, bool, error) {
	return getDocument[game.Game](ctx, r.db, "game by id", selectGames().Where(qb.Eq("id", gameID)))
}

func (r *GameRepository) Upsert(ctx context.Context, item game.Game) error {
	var tournamentID sql.NullInt64
	if item.TournamentID != nil {
		tournamentID = sql.NullInt64{Int64: *item.TournamentID, Valid: true}
	}
	var start sql.NullTime
	yearMonth := item.GameYearMonth
	if item.GameStartDateTime != nil {
		start = sql.NullTime{Time: item.GameStartDateTime.UTC(), Valid: true}
		if yearMonth == "" {
			yearMonth = aest.YearMonth(*item.GameStartDateTime)
		}
	}

	return upsertDocument(ctx, r.db, document{
		table:    gamesTable,
		conflict: []string{"id"},
		keys:     []string{"id", "entity_id", "tournament_id", "venue_id", "game_start_date_time", "game_year_month", "recurring_game_id"},
		values:   []any{item.ID, item.EntityID, tournamentID, nullString(item.VenueID), start, nullString(yearMonth), nullString(item.RecurringGameID)},
		payload:  item,
	})
}

func (r *GameRepository) ListByTournamentID(ctx context.Context, tournamentID int64) ([]game.Game, error) {
	return selectDocuments[game.Game](ctx, r.db, "games by tournament id",
		selectGames().Where(qb.Eq("tournament_id", tournamentID)))
}

func (r *GameRepository) ListByEntityAndTournamentID(ctx context.Context, entityID string, tournamentID int64) ([]game.Game, error) {
	return selectDocuments[game.Game](ctx, r.db, "games by entity and tournament id",
		selectGames().Where(qb.Eq("entity_id", entityID), qb.Eq("tournament_id", tournamentID)))
}

func (r *GameRepository) ListByVenue(ctx context.Context, venueID string, from, to time.Time) ([]game.Game, error) {
	return selectDocuments[game.Game](ctx, r.db, "games by venue",
		selectGames().Where(qb.Eq("venue_id", venueID), qb.Between("game_start_date_time", from.UTC(), to.UTC())))
}

func (r *GameRepository) ListByGameMonth(ctx context.Context, yearMonth string, from, to time.Time) ([]game.Game, error) {
	return selectDocuments[game.Game](ctx, r.db, "games by month",
		selectGames().Where(qb.Eq("game_year_month", yearMonth), qb.Between("game_start_date_time", from.UTC(), to.UTC())))
}

func (r *GameRepository) ListByRecurringGame(ctx context.Context, recurringGameID string) ([]game.Game, error) {
	return selectDocuments[game.Game](ctx, r.db, "games by recurring game",
		selectGames().Where(qb.Eq("recurring_game_id", recurringGameID)))
}

func selectGames() *qb.SelectBuilder {
	return qb.Select("id", "payload").From(gamesTable).OrderBy("game_start_date_time", "id")
}
