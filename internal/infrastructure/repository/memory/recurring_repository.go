package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/riskibarqy/tournament-reconciler/internal/domain/recurring"
)

type RecurringRepository struct {
	mu        sync.RWMutex
	templates map[string]recurring.RecurringGame
}

func NewRecurringRepository(templates []recurring.RecurringGame) *RecurringRepository {
	byID := make(map[string]recurring.RecurringGame, len(templates))
	for _, item := range templates {
		byID[item.ID] = item
	}
	return &RecurringRepository{templates: byID}
}

func (r *RecurringRepository) GetByID(_ context.Context, recurringGameID string) (recurring.RecurringGame, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.templates[recurringGameID]
	return item, ok, nil
}

func (r *RecurringRepository) List(_ context.Context) ([]recurring.RecurringGame, error) {
	return r.filter(func(recurring.RecurringGame) bool { return true }), nil
}

func (r *RecurringRepository) ListByVenue(_ context.Context, venueID string) ([]recurring.RecurringGame, error) {
	return r.filter(func(item recurring.RecurringGame) bool { return item.VenueID == venueID }), nil
}

func (r *RecurringRepository) ListByVenueAndDay(_ context.Context, venueID, dayOfWeek string) ([]recurring.RecurringGame, error) {
	return r.filter(func(item recurring.RecurringGame) bool {
		return item.VenueID == venueID && strings.EqualFold(item.DayOfWeek, dayOfWeek)
	}), nil
}

func (r *RecurringRepository) Create(_ context.Context, item recurring.RecurringGame) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.templates[item.ID]; exists {
		return fmt.Errorf("recurring game %s already exists", item.ID)
	}
	r.templates[item.ID] = item
	return nil
}

func (r *RecurringRepository) Update(_ context.Context, item recurring.RecurringGame) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.templates[item.ID]; !exists {
		return fmt.Errorf("recurring game %s not found", item.ID)
	}
	r.templates[item.ID] = item
	return nil
}

func (r *RecurringRepository) Delete(_ context.Context, recurringGameID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.templates, recurringGameID)
	return nil
}

func (r *RecurringRepository) filter(keep func(recurring.RecurringGame) bool) []recurring.RecurringGame {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]recurring.RecurringGame, 0)
	for _, item := range r.templates {
		if keep(item) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type InstanceRepository struct {
	mu        sync.RWMutex
	instances map[string]recurring.Instance
}

func NewInstanceRepository() *InstanceRepository {
	return &InstanceRepository{instances: make(map[string]recurring.Instance)}
}

func instanceKey(recurringGameID, expectedDate string) string {
	return recurringGameID + "#" + expectedDate
}

func (r *InstanceRepository) Get(_ context.Context, recurringGameID, expectedDate string) (recurring.Instance, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.instances[instanceKey(recurringGameID, expectedDate)]
	return item, ok, nil
}

func (r *InstanceRepository) ListByRecurringGame(_ context.Context, recurringGameID string) ([]recurring.Instance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]recurring.Instance, 0)
	for _, item := range r.instances {
		if item.RecurringGameID == recurringGameID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpectedDate < out[j].ExpectedDate })
	return out, nil
}

func (r *InstanceRepository) Upsert(_ context.Context, item recurring.Instance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.instances[instanceKey(item.RecurringGameID, item.ExpectedDate)] = item
	return nil
}

func (r *InstanceRepository) DeleteByRecurringGame(_ context.Context, recurringGameID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, item := range r.instances {
		if item.RecurringGameID == recurringGameID {
			delete(r.instances, key)
		}
	}
	return nil
}
