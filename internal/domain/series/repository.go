package series

import "context"

// Repository describes series and title persistence. The catalog is read
// fresh on every resolution so just-created rows are visible.
type Repository interface {
	ListTitles(ctx context.Context) ([]Title, error)
	GetTitle(ctx context.Context, titleID string) (Title, bool, error)
	CreateTitle(ctx context.Context, item Title) error

	GetSeries(ctx context.Context, seriesID string) (Series, bool, error)
	ListSeriesByTitle(ctx context.Context, titleID string) ([]Series, error)
	ListSeriesByYear(ctx context.Context, year int) ([]Series, error)
	ListSeriesByVenue(ctx context.Context, venueID string) ([]Series, error)
	CreateSeries(ctx context.Context, item Series) error
	UpdateSeries(ctx context.Context, item Series) error
}
