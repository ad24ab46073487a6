package recurring

import "context"

// Repository describes recurring template persistence.
type Repository interface {
	GetByID(ctx context.Context, recurringGameID string) (RecurringGame, bool, error)
	List(ctx context.Context) ([]RecurringGame, error)
	ListByVenue(ctx context.Context, venueID string) ([]RecurringGame, error)
	ListByVenueAndDay(ctx context.Context, venueID, dayOfWeek string) ([]RecurringGame, error)
	Create(ctx context.Context, item RecurringGame) error
	Update(ctx context.Context, item RecurringGame) error
	Delete(ctx context.Context, recurringGameID string) error
}

// InstanceRepository stores expected occurrences keyed by template and date.
type InstanceRepository interface {
	Get(ctx context.Context, recurringGameID, expectedDate string) (Instance, bool, error)
	ListByRecurringGame(ctx context.Context, recurringGameID string) ([]Instance, error)
	Upsert(ctx context.Context, item Instance) error
	DeleteByRecurringGame(ctx context.Context, recurringGameID string) error
}
