package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/tournament-reconciler/internal/domain/venue"
)

type VenueRepository struct {
	mu     sync.RWMutex
	venues map[string]venue.Venue
}

func NewVenueRepository(venues []venue.Venue) *VenueRepository {
	byID := make(map[string]venue.Venue, len(venues))
	for _, item := range venues {
		byID[item.ID] = item
	}
	return &VenueRepository{venues: byID}
}

func (r *VenueRepository) List(_ context.Context) ([]venue.Venue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]venue.Venue, 0, len(r.venues))
	for _, item := range r.venues {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *VenueRepository) GetByID(_ context.Context, venueID string) (venue.Venue, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.venues[venueID]
	return item, ok, nil
}

func (r *VenueRepository) Upsert(_ context.Context, item venue.Venue) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.venues[item.ID] = item
	return nil
}
