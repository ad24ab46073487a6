package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/tournament-reconciler/internal/domain/series"
	qb "github.com/riskibarqy/tournament-reconciler/internal/platform/querybuilder"
)

const (
	seriesTitlesTable = "series_titles"
	seriesTable       = "series"
)

type SeriesRepository struct {
	db *sqlx.DB
}

func NewSeriesRepository(db *sqlx.DB) *SeriesRepository {
	return &SeriesRepository{db: db}
}

func (r *SeriesRepository) ListTitles(ctx context.Context) ([]series.Title, error) {
	return selectDocuments[series.Title](ctx, r.db, "series titles",
		qb.Select("id", "payload").From(seriesTitlesTable).OrderBy("id"))
}

func (r *SeriesRepository) GetTitle(ctx context.Context, titleID string) (series.Title, bool, error) {
	return getDocument[series.Title](ctx, r.db, "series title by id",
		qb.Select("id", "payload").From(seriesTitlesTable).Where(qb.Eq("id", titleID)))
}

func (r *SeriesRepository) CreateTitle(ctx context.Context, item series.Title) error {
	return insertDocument(ctx, r.db, document{
		table:   seriesTitlesTable,
		keys:    []string{"id"},
		values:  []any{item.ID},
		payload: item,
	})
}

func (r *SeriesRepository) GetSeries(ctx context.Context, seriesID string) (series.Series, bool, error) {
	return getDocument[series.Series](ctx, r.db, "series by id", selectSeries().Where(qb.Eq("id", seriesID)))
}

func (r *SeriesRepository) ListSeriesByTitle(ctx context.Context, titleID string) ([]series.Series, error) {
	return selectDocuments[series.Series](ctx, r.db, "series by title",
		selectSeries().Where(qb.Eq("tournament_series_title_id", titleID)))
}

func (r *SeriesRepository) ListSeriesByYear(ctx context.Context, year int) ([]series.Series, error) {
	return selectDocuments[series.Series](ctx, r.db, "series by year", selectSeries().Where(qb.Eq("year", year)))
}

func (r *SeriesRepository) ListSeriesByVenue(ctx context.Context, venueID string) ([]series.Series, error) {
	return selectDocuments[series.Series](ctx, r.db, "series by venue", selectSeries().Where(qb.Eq("venue_id", venueID)))
}

func (r *SeriesRepository) CreateSeries(ctx context.Context, item series.Series) error {
	return insertDocument(ctx, r.db, seriesDocument(item))
}

func (r *SeriesRepository) UpdateSeries(ctx context.Context, item series.Series) error {
	found, err := updateDocument(ctx, r.db, seriesDocument(item), qb.Eq("id", item.ID))
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("series %s not found", item.ID)
	}
	return nil
}

func seriesDocument(item series.Series) document {
	return document{
		table:   seriesTable,
		keys:    []string{"id", "tournament_series_title_id", "year", "venue_id", "entity_id"},
		values:  []any{item.ID, item.TournamentSeriesTitleID, item.Year, nullString(item.VenueID), item.EntityID},
		payload: item,
	}
}

func selectSeries() *qb.SelectBuilder {
	return qb.Select("id", "payload").From(seriesTable).OrderBy("id")
}
