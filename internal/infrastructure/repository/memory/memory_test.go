package memory

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/tournament-reconciler/internal/domain/game"
	"github.com/riskibarqy/tournament-reconciler/internal/domain/social"
)

func TestGameRepository_RangeQueriesAreInclusive(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 6, 8, 0, 0, 0, time.UTC)
	later := start.Add(48 * time.Hour)
	repo := NewGameRepository([]game.Game{
		{ID: "g-1", VenueID: VenueIDStarSydney, GameStartDateTime: &start},
		{ID: "g-2", VenueID: VenueIDStarSydney, GameStartDateTime: &later},
		{ID: "g-3", VenueID: VenueIDRootyHill, GameStartDateTime: &start},
	})

	got, err := repo.ListByVenue(context.Background(), VenueIDStarSydney, start, start)
	if err != nil {
		t.Fatalf("list by venue: %v", err)
	}
	if len(got) != 1 || got[0].ID != "g-1" {
		t.Fatalf("unexpected games: %+v", got)
	}

	byMonth, err := repo.ListByGameMonth(context.Background(), "2025-03", start, later)
	if err != nil {
		t.Fatalf("list by month: %v", err)
	}
	if len(byMonth) != 3 {
		t.Fatalf("expected 3 games in month, got %d", len(byMonth))
	}
}

func TestSocialRepository_LinkPairIsUnique(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	links := NewSocialRepository(nil).Links()

	if err := links.Upsert(ctx, social.Link{ID: "l-1", SocialPostID: "p-1", GameID: "g-1", LinkType: social.LinkAutoMatched}); err != nil {
		t.Fatalf("upsert first link: %v", err)
	}
	if err := links.Upsert(ctx, social.Link{ID: "l-2", SocialPostID: "p-1", GameID: "g-1", LinkType: social.LinkManualLinked}); err != nil {
		t.Fatalf("upsert second link: %v", err)
	}

	got, err := links.ListBySocialPost(ctx, "p-1")
	if err != nil {
		t.Fatalf("list links: %v", err)
	}
	if len(got) != 1 || got[0].ID != "l-2" {
		t.Fatalf("expected the pair to be replaced, got %+v", got)
	}
}

func TestPostStore_ListByProcessingStatusLimit(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 3, 6, 8, 0, 0, 0, time.UTC)
	repo := NewSocialRepository([]social.Post{
		{ID: "p-2", ProcessingStatus: social.StatusPending, PostedAt: base.Add(time.Hour)},
		{ID: "p-1", ProcessingStatus: social.StatusPending, PostedAt: base},
		{ID: "p-3", ProcessingStatus: social.StatusLinked, PostedAt: base},
	})

	got, err := repo.Posts().ListByProcessingStatus(context.Background(), social.StatusPending, 1)
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if len(got) != 1 || got[0].ID != "p-1" {
		t.Fatalf("expected oldest pending post, got %+v", got)
	}
}
