package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/tournament-reconciler/internal/domain/series"
)

type SeriesRepository struct {
	mu     sync.RWMutex
	titles map[string]series.Title
	series map[string]series.Series
}

func NewSeriesRepository(titles []series.Title, items []series.Series) *SeriesRepository {
	r := &SeriesRepository{
		titles: make(map[string]series.Title, len(titles)),
		series: make(map[string]series.Series, len(items)),
	}
	for _, t := range titles {
		r.titles[t.ID] = t
	}
	for _, s := range items {
		r.series[s.ID] = s
	}
	return r
}

func (r *SeriesRepository) ListTitles(_ context.Context) ([]series.Title, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]series.Title, 0, len(r.titles))
	for _, t := range r.titles {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *SeriesRepository) GetTitle(_ context.Context, titleID string) (series.Title, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.titles[titleID]
	return t, ok, nil
}

func (r *SeriesRepository) CreateTitle(_ context.Context, item series.Title) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.titles[item.ID]; exists {
		return fmt.Errorf("series title %s already exists", item.ID)
	}
	r.titles[item.ID] = item
	return nil
}

func (r *SeriesRepository) GetSeries(_ context.Context, seriesID string) (series.Series, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.series[seriesID]
	return s, ok, nil
}

func (r *SeriesRepository) ListSeriesByTitle(_ context.Context, titleID string) ([]series.Series, error) {
	return r.filter(func(s series.Series) bool { return s.TournamentSeriesTitleID == titleID }), nil
}

func (r *SeriesRepository) ListSeriesByYear(_ context.Context, year int) ([]series.Series, error) {
	return r.filter(func(s series.Series) bool { return s.Year == year }), nil
}

func (r *SeriesRepository) ListSeriesByVenue(_ context.Context, venueID string) ([]series.Series, error) {
	return r.filter(func(s series.Series) bool { return s.VenueID == venueID }), nil
}

func (r *SeriesRepository) CreateSeries(_ context.Context, item series.Series) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.series[item.ID]; exists {
		return fmt.Errorf("series %s already exists", item.ID)
	}
	r.series[item.ID] = item
	return nil
}

func (r *SeriesRepository) UpdateSeries(_ context.Context, item series.Series) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.series[item.ID]; !exists {
		return fmt.Errorf("series %s not found", item.ID)
	}
	r.series[item.ID] = item
	return nil
}

func (r *SeriesRepository) filter(keep func(series.Series) bool) []series.Series {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]series.Series, 0)
	for _, s := range r.series {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
