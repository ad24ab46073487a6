package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/tournament-reconciler/internal/domain/recurring"
	qb "github.com/riskibarqy/tournament-reconciler/internal/platform/querybuilder"
)

const (
	recurringGamesTable     = "recurring_games"
	recurringInstancesTable = "recurring_instances"
)

type RecurringRepository struct {
	db *sqlx.DB
}

func NewRecurringRepository(db *sqlx.DB) *RecurringRepository {
	return &RecurringRepository{db: db}
}

func (r *RecurringRepository) GetByID(ctx context.Context, recurringGameID string) (recurring.RecurringGame, bool, error) {
	return getDocument[recurring.RecurringGame](ctx, r.db, "recurring game by id",
		selectRecurring().Where(qb.Eq("id", recurringGameID)))
}

func (r *RecurringRepository) List(ctx context.Context) ([]recurring.RecurringGame, error) {
	return selectDocuments[recurring.RecurringGame](ctx, r.db, "recurring games", selectRecurring())
}

func (r *RecurringRepository) ListByVenue(ctx context.Context, venueID string) ([]recurring.RecurringGame, error) {
	return selectDocuments[recurring.RecurringGame](ctx, r.db, "recurring games by venue",
		selectRecurring().Where(qb.Eq("venue_id", venueID)))
}

func (r *RecurringRepository) ListByVenueAndDay(ctx context.Context, venueID, dayOfWeek string) ([]recurring.RecurringGame, error) {
	return selectDocuments[recurring.RecurringGame](ctx, r.db, "recurring games by venue and day",
		selectRecurring().Where(qb.Eq("venue_id", venueID), qb.Eq("day_of_week", strings.ToUpper(dayOfWeek))))
}

func (r *RecurringRepository) Create(ctx context.Context, item recurring.RecurringGame) error {
	return insertDocument(ctx, r.db, recurringDocument(item))
}

func (r *RecurringRepository) Update(ctx context.Context, item recurring.RecurringGame) error {
	found, err := updateDocument(ctx, r.db, recurringDocument(item), qb.Eq("id", item.ID))
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("recurring game %s not found", item.ID)
	}
	return nil
}

func (r *RecurringRepository) Delete(ctx context.Context, recurringGameID string) error {
	return deleteWhere(ctx, r.db, recurringGamesTable, qb.Eq("id", recurringGameID))
}

func recurringDocument(item recurring.RecurringGame) document {
	return document{
		table:   recurringGamesTable,
		keys:    []string{"id", "venue_id", "entity_id", "day_of_week"},
		values:  []any{item.ID, item.VenueID, item.EntityID, strings.ToUpper(item.DayOfWeek)},
		payload: item,
	}
}

func selectRecurring() *qb.SelectBuilder {
	return qb.Select("id", "payload").From(recurringGamesTable).OrderBy("id")
}

// InstanceRepository keys rows by (recurring_game_id, expected_date).
type InstanceRepository struct {
	db *sqlx.DB
}

func NewInstanceRepository(db *sqlx.DB) *InstanceRepository {
	return &InstanceRepository{db: db}
}

func (r *InstanceRepository) Get(ctx context.Context, recurringGameID, expectedDate string) (recurring.Instance, bool, error) {
	return getDocument[recurring.Instance](ctx, r.db, "recurring instance",
		selectInstances().Where(qb.Eq("recurring_game_id", recurringGameID), qb.Eq("expected_date", expectedDate)))
}

func (r *InstanceRepository) ListByRecurringGame(ctx context.Context, recurringGameID string) ([]recurring.Instance, error) {
	return selectDocuments[recurring.Instance](ctx, r.db, "recurring instances",
		selectInstances().Where(qb.Eq("recurring_game_id", recurringGameID)))
}

func (r *InstanceRepository) Upsert(ctx context.Context, item recurring.Instance) error {
	return upsertDocument(ctx, r.db, document{
		table:    recurringInstancesTable,
		conflict: []string{"recurring_game_id", "expected_date"},
		keys:     []string{"id", "recurring_game_id", "expected_date"},
		values:   []any{item.ID, item.RecurringGameID, item.ExpectedDate},
		payload:  item,
	})
}

func (r *InstanceRepository) DeleteByRecurringGame(ctx context.Context, recurringGameID string) error {
	return deleteWhere(ctx, r.db, recurringInstancesTable, qb.Eq("recurring_game_id", recurringGameID))
}

func selectInstances() *qb.SelectBuilder {
	return qb.Select("id", "payload").From(recurringInstancesTable).OrderBy("expected_date")
}
