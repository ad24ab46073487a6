package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/tournament-reconciler/internal/infrastructure/repository/memory"
	qb "github.com/riskibarqy/tournament-reconciler/internal/platform/querybuilder"
)

// Catalog groups every repository backed by one database handle.
type Catalog struct {
	Games      *GameRepository
	Venues     *VenueRepository
	Series     *SeriesRepository
	Recurring  *RecurringRepository
	Instances  *InstanceRepository
	Posts      *SocialPostRepository
	GameData   *SocialGameDataRepository
	Placements *SocialPlacementRepository
	Links      *SocialLinkRepository
}

func NewCatalog(db *sqlx.DB) *Catalog {
	return &Catalog{
		Games:      NewGameRepository(db),
		Venues:     NewVenueRepository(db),
		Series:     NewSeriesRepository(db),
		Recurring:  NewRecurringRepository(db),
		Instances:  NewInstanceRepository(db),
		Posts:      NewSocialPostRepository(db),
		GameData:   NewSocialGameDataRepository(db),
		Placements: NewSocialPlacementRepository(db),
		Links:      NewSocialLinkRepository(db),
	}
}

// BootstrapSeed loads the reference venues, series titles and recurring
// templates into an empty database.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	query, args, err := qb.Select("COUNT(1)").From(venuesTable).ToSQL()
	if err != nil {
		return fmt.Errorf("build count venues query: %w", err)
	}
	if err := db.GetContext(ctx, &count, query, args...); err != nil {
		return fmt.Errorf("count venues for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, v := range memory.SeedVenues() {
		if err := upsertDocument(ctx, tx, document{
			table:    venuesTable,
			conflict: []string{"id"},
			keys:     []string{"id", "entity_id"},
			values:   []any{v.ID, v.EntityID},
			payload:  v,
		}); err != nil {
			return fmt.Errorf("seed venue %s: %w", v.ID, err)
		}
	}

	for _, t := range memory.SeedSeriesTitles() {
		if err := upsertDocument(ctx, tx, document{
			table:    seriesTitlesTable,
			conflict: []string{"id"},
			keys:     []string{"id"},
			values:   []any{t.ID},
			payload:  t,
		}); err != nil {
			return fmt.Errorf("seed series title %s: %w", t.ID, err)
		}
	}

	for _, rg := range memory.SeedRecurringGames() {
		doc := recurringDocument(rg)
		doc.conflict = []string{"id"}
		if err := upsertDocument(ctx, tx, doc); err != nil {
			return fmt.Errorf("seed recurring game %s: %w", rg.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}
