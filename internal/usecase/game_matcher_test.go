package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/tournament-reconciler/internal/domain/game"
	"github.com/riskibarqy/tournament-reconciler/internal/domain/social"
	"github.com/riskibarqy/tournament-reconciler/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/cache"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/ptr"
)

func newTestMatcher(games []game.Game) *GameMatcher {
	venues := NewVenueResolver(memory.NewVenueRepository(memory.SeedVenues()), cache.NewStore(time.Minute), nil)
	return NewGameMatcher(memory.NewGameRepository(games), venues, MatcherConfig{}, nil)
}

func TestGameMatcher_TournamentIDPath(t *testing.T) {
	t.Parallel()

	matcher := newTestMatcher([]game.Game{
		{ID: "g-1", Name: "Sunday Major", TournamentID: ptr.To(int64(12345)), GameStartDateTime: aestTime(2025, time.March, 9, 13, 0)},
		{ID: "g-2", Name: "Sunday Major", TournamentID: ptr.To(int64(999)), GameStartDateTime: aestTime(2025, time.March, 9, 13, 0)},
	})
	data := social.GameData{ExtractedTournamentID: ptr.To(int64(12345)), ContentType: social.ContentResult}
	post := social.Post{ID: "p-1", PostedAt: *aestTime(2025, time.March, 10, 9, 0)}

	got, err := matcher.FindMatchingGames(context.Background(), data, post, MatchOptions{})
	if err != nil {
		t.Fatalf("find matching games: %v", err)
	}
	if len(got.Candidates) != 1 {
		t.Fatalf("expected a single candidate, got %d", len(got.Candidates))
	}
	c := got.Candidates[0]
	if c.GameID != "g-1" || c.MatchConfidence < 95 || c.MatchReason != social.MatchReasonTournamentID || !c.WouldAutoLink {
		t.Fatalf("unexpected candidate: %+v", c)
	}
	if got.PrimaryMatch == nil || got.PrimaryMatch.GameID != "g-1" {
		t.Fatalf("expected primary match g-1, got %+v", got.PrimaryMatch)
	}
	if got.MatchContext.Path != MatchPathTournamentID {
		t.Fatalf("unexpected path %q", got.MatchContext.Path)
	}
}

func TestGameMatcher_VenuePathSortsByConfidence(t *testing.T) {
	t.Parallel()

	start := aestTime(2025, time.March, 6, 19, 0)
	matcher := newTestMatcher([]game.Game{
		{ID: "g-grind", Name: "Thursday Grind", VenueID: memory.VenueIDStarSydney, BuyIn: ptr.To(120.0), GameStatus: game.StatusFinished, GameStartDateTime: start},
		{ID: "g-deep", Name: "Deepstack", VenueID: memory.VenueIDStarSydney, BuyIn: ptr.To(300.0), GameStatus: game.StatusFinished, GameStartDateTime: start},
		{ID: "g-old", Name: "Thursday Grind", VenueID: memory.VenueIDStarSydney, BuyIn: ptr.To(120.0), GameStartDateTime: aestTime(2025, time.February, 6, 19, 0)},
		{ID: "g-other", Name: "Thursday Grind", VenueID: memory.VenueIDRootyHill, BuyIn: ptr.To(120.0), GameStartDateTime: start},
	})
	data := social.GameData{
		ContentType:                social.ContentResult,
		ExtractedRecurringGameName: "THURSDAY GRIND",
		ExtractedBuyIn:             ptr.To(120.0),
		ExtractedVenueID:           memory.VenueIDStarSydney,
		EffectiveGameDate:          *start,
	}
	post := social.Post{ID: "p-1", PostedAt: *aestTime(2025, time.March, 6, 23, 30)}

	got, err := matcher.FindMatchingGames(context.Background(), data, post, MatchOptions{IncludeBelowMinimum: true})
	if err != nil {
		t.Fatalf("find matching games: %v", err)
	}
	if got.MatchContext.Path != MatchPathVenueDate || got.MatchContext.GamesScanned != 2 {
		t.Fatalf("unexpected context: %+v", got.MatchContext)
	}
	for i := 1; i < len(got.Candidates); i++ {
		if got.Candidates[i].MatchConfidence > got.Candidates[i-1].MatchConfidence {
			t.Fatalf("candidates not sorted: %+v", got.Candidates)
		}
	}
	if got.PrimaryMatch == nil || got.PrimaryMatch.GameID != "g-grind" {
		t.Fatalf("expected g-grind as primary, got %+v", got.PrimaryMatch)
	}
	if got.PrimaryMatch.MatchConfidence >= matcher.Config().AutoLinkThreshold != got.PrimaryMatch.WouldAutoLink {
		t.Fatalf("wouldAutoLink disagrees with threshold: %+v", got.PrimaryMatch)
	}
}

func TestGameMatcher_FallsBackToDateOnly(t *testing.T) {
	t.Parallel()

	matcher := newTestMatcher([]game.Game{
		{ID: "g-1", Name: "Friday Freezeout", GameStartDateTime: aestTime(2025, time.February, 28, 19, 0)},
		{ID: "g-2", Name: "Saturday Special", GameStartDateTime: aestTime(2025, time.March, 1, 19, 0)},
		{ID: "g-far", Name: "Friday Freezeout", GameStartDateTime: aestTime(2025, time.March, 14, 19, 0)},
	})
	data := social.GameData{ContentType: social.ContentResult, ExtractedName: "Friday Freezeout", EffectiveGameDate: *aestTime(2025, time.February, 28, 0, 0)}
	post := social.Post{ID: "p-1", PostedAt: *aestTime(2025, time.March, 1, 10, 0)}

	got, err := matcher.FindMatchingGames(context.Background(), data, post, MatchOptions{IncludeBelowMinimum: true})
	if err != nil {
		t.Fatalf("find matching games: %v", err)
	}
	if got.MatchContext.Path != MatchPathDateOnly {
		t.Fatalf("expected date-only path, got %q", got.MatchContext.Path)
	}
	if got.MatchContext.GamesScanned != 2 {
		t.Fatalf("expected games from both month partitions, got %d", got.MatchContext.GamesScanned)
	}
	if got.PrimaryMatch == nil || got.PrimaryMatch.GameID != "g-1" {
		t.Fatalf("expected g-1 as primary, got %+v", got.PrimaryMatch)
	}
}

func TestMonthsCovering(t *testing.T) {
	t.Parallel()

	got := monthsCovering(*aestTime(2024, time.December, 30, 0, 0), *aestTime(2025, time.February, 2, 0, 0))
	want := []string{"2024-12", "2025-01", "2025-02"}
	if len(got) != len(want) {
		t.Fatalf("unexpected months %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected months %v", got)
		}
	}
}
