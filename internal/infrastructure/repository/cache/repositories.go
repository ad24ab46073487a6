package cache

import (
	"context"
	"strings"

	"github.com/riskibarqy/tournament-reconciler/internal/domain/recurring"
	"github.com/riskibarqy/tournament-reconciler/internal/domain/series"
	basecache "github.com/riskibarqy/tournament-reconciler/internal/platform/cache"
)

const (
	seriesTitlesKey    = "series:titles"
	seriesByTitlePrefix = "series:title:"
	recurringPrefix    = "recurring:"
)

// SeriesRepository caches the title catalog and per-title series lists. Every
// write drops the affected keys so a just-created row is visible to the next
// resolution.
type SeriesRepository struct {
	series.Repository
	cache *basecache.Store
}

func NewSeriesRepository(next series.Repository, cache *basecache.Store) *SeriesRepository {
	return &SeriesRepository{Repository: next, cache: cache}
}

func (r *SeriesRepository) ListTitles(ctx context.Context) ([]series.Title, error) {
	items, err := basecache.Load(ctx, r.cache, seriesTitlesKey, func(ctx context.Context) ([]series.Title, error) {
		return r.Repository.ListTitles(ctx)
	})
	if err != nil {
		return nil, err
	}
	return append([]series.Title(nil), items...), nil
}

func (r *SeriesRepository) CreateTitle(ctx context.Context, item series.Title) error {
	if err := r.Repository.CreateTitle(ctx, item); err != nil {
		return err
	}
	r.cache.Delete(ctx, seriesTitlesKey)
	return nil
}

func (r *SeriesRepository) ListSeriesByTitle(ctx context.Context, titleID string) ([]series.Series, error) {
	items, err := basecache.Load(ctx, r.cache, seriesByTitlePrefix+titleID, func(ctx context.Context) ([]series.Series, error) {
		return r.Repository.ListSeriesByTitle(ctx, titleID)
	})
	if err != nil {
		return nil, err
	}
	return append([]series.Series(nil), items...), nil
}

func (r *SeriesRepository) CreateSeries(ctx context.Context, item series.Series) error {
	if err := r.Repository.CreateSeries(ctx, item); err != nil {
		return err
	}
	r.cache.Delete(ctx, seriesByTitlePrefix+item.TournamentSeriesTitleID)
	return nil
}

func (r *SeriesRepository) UpdateSeries(ctx context.Context, item series.Series) error {
	if err := r.Repository.UpdateSeries(ctx, item); err != nil {
		return err
	}
	// The title may have changed, so every per-title list goes.
	r.cache.DeletePrefix(ctx, seriesByTitlePrefix)
	return nil
}

// RecurringRepository caches per venue and day template lookups used by the
// recurring resolver on every enrichment.
type RecurringRepository struct {
	recurring.Repository
	cache *basecache.Store
}

func NewRecurringRepository(next recurring.Repository, cache *basecache.Store) *RecurringRepository {
	return &RecurringRepository{Repository: next, cache: cache}
}

func (r *RecurringRepository) ListByVenueAndDay(ctx context.Context, venueID, dayOfWeek string) ([]recurring.RecurringGame, error) {
	key := recurringPrefix + venueID + ":" + strings.ToUpper(dayOfWeek)
	items, err := basecache.Load(ctx, r.cache, key, func(ctx context.Context) ([]recurring.RecurringGame, error) {
		return r.Repository.ListByVenueAndDay(ctx, venueID, dayOfWeek)
	})
	if err != nil {
		return nil, err
	}
	return append([]recurring.RecurringGame(nil), items...), nil
}

func (r *RecurringRepository) Create(ctx context.Context, item recurring.RecurringGame) error {
	if err := r.Repository.Create(ctx, item); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *RecurringRepository) Update(ctx context.Context, item recurring.RecurringGame) error {
	if err := r.Repository.Update(ctx, item); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *RecurringRepository) Delete(ctx context.Context, recurringGameID string) error {
	if err := r.Repository.Delete(ctx, recurringGameID); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

// Merges and venue re-resolution move templates between venues, so writes
// drop every cached lookup.
func (r *RecurringRepository) invalidate(ctx context.Context) {
	r.cache.DeletePrefix(ctx, recurringPrefix)
}
