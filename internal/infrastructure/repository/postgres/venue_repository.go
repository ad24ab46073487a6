package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/tournament-reconciler/internal/domain/venue"
	qb "github.com/riskibarqy/tournament-reconciler/internal/platform/querybuilder"
)

const venuesTable = "venues"

type VenueRepository struct {
	db *sqlx.DB
}

func NewVenueRepository(db *sqlx.DB) *VenueRepository {
	return &VenueRepository{db: db}
}

func (r *VenueRepository) List(ctx context.Context) ([]venue.Venue, error) {
	return selectDocuments[venue.Venue](ctx, r.db, "venues",
		qb.Select("id", "payload").From(venuesTable).OrderBy("id"))
}

func (r *VenueRepository) GetByID(ctx context.Context, venueID string) (venue.Venue, bool, error) {
	return getDocument[venue.Venue](ctx, r.db, "venue by id",
		qb.Select("id", "payload").From(venuesTable).Where(qb.Eq("id", venueID)))
}

func (r *VenueRepository) Upsert(ctx context.Context, item venue.Venue) error {
	return upsertDocument(ctx, r.db, document{
		table:    venuesTable,
		conflict: []string{"id"},
		keys:     []string{"id", "entity_id"},
		values:   []any{item.ID, item.EntityID},
		payload:  item,
	})
}
