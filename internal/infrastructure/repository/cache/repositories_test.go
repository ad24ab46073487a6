package cache

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/tournament-reconciler/internal/domain/recurring"
	"github.com/riskibarqy/tournament-reconciler/internal/domain/series"
	"github.com/riskibarqy/tournament-reconciler/internal/infrastructure/repository/memory"
	basecache "github.com/riskibarqy/tournament-reconciler/internal/platform/cache"
)

func TestSeriesRepositoryCreateTitleInvalidatesCatalog(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewSeriesRepository(memory.NewSeriesRepository(memory.SeedSeriesTitles(), nil), basecache.NewStore(time.Minute))

	before, err := repo.ListTitles(ctx)
	if err != nil {
		t.Fatalf("list titles: %v", err)
	}
	if err := repo.CreateTitle(ctx, series.Title{ID: "title-new", Title: "Winter Festival"}); err != nil {
		t.Fatalf("create title: %v", err)
	}
	after, err := repo.ListTitles(ctx)
	if err != nil {
		t.Fatalf("list titles: %v", err)
	}
	if len(after) != len(before)+1 {
		t.Fatalf("expected new title to be visible, before=%d after=%d", len(before), len(after))
	}
}

func TestSeriesRepositoryCreateSeriesInvalidatesTitleList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewSeriesRepository(memory.NewSeriesRepository(memory.SeedSeriesTitles(), nil), basecache.NewStore(time.Minute))

	items, err := repo.ListSeriesByTitle(ctx, memory.TitleIDColossus)
	if err != nil || len(items) != 0 {
		t.Fatalf("expected empty series list, got %d err=%v", len(items), err)
	}
	created := series.Series{ID: "series-1", Name: "Colossus 2025", Year: 2025, TournamentSeriesTitleID: memory.TitleIDColossus, EntityID: memory.EntityIDSydney}
	if err := repo.CreateSeries(ctx, created); err != nil {
		t.Fatalf("create series: %v", err)
	}
	items, err = repo.ListSeriesByTitle(ctx, memory.TitleIDColossus)
	if err != nil || len(items) != 1 {
		t.Fatalf("expected created series to be visible, got %d err=%v", len(items), err)
	}
}

func TestRecurringRepositoryWritesInvalidateLookups(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewRecurringRepository(memory.NewRecurringRepository(memory.SeedRecurringGames()), basecache.NewStore(time.Minute))

	items, err := repo.ListByVenueAndDay(ctx, memory.VenueIDStarSydney, "thursday")
	if err != nil || len(items) != 1 {
		t.Fatalf("expected seeded thursday template, got %d err=%v", len(items), err)
	}

	if err := repo.Delete(ctx, items[0].ID); err != nil {
		t.Fatalf("delete template: %v", err)
	}
	items, err = repo.ListByVenueAndDay(ctx, memory.VenueIDStarSydney, "THURSDAY")
	if err != nil || len(items) != 0 {
		t.Fatalf("expected deleted template to disappear, got %d err=%v", len(items), err)
	}

	if err := repo.Create(ctx, recurring.RecurringGame{ID: "rg-new", Name: "Thursday Turbo", VenueID: memory.VenueIDStarSydney, EntityID: memory.EntityIDSydney, DayOfWeek: "THURSDAY"}); err != nil {
		t.Fatalf("create template: %v", err)
	}
	items, err = repo.ListByVenueAndDay(ctx, memory.VenueIDStarSydney, "Thursday")
	if err != nil || len(items) != 1 || items[0].ID != "rg-new" {
		t.Fatalf("expected new template, got %+v err=%v", items, err)
	}
}
