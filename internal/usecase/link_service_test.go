package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/tournament-reconciler/internal/domain/game"
	"github.com/riskibarqy/tournament-reconciler/internal/domain/social"
	"github.com/riskibarqy/tournament-reconciler/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/id"
)

type stubAggregator struct {
	err   error
	calls []string
}

func (s *stubAggregator) Aggregate(_ context.Context, gameID string, _ AggregateOptions) (AggregateResult, error) {
	s.calls = append(s.calls, gameID)
	if s.err != nil {
		return AggregateResult{}, s.err
	}
	return AggregateResult{Success: true, LinkedPostCount: 1}, nil
}

type linkFixture struct {
	store   *memory.SocialRepository
	service *LinkService
	agg     *stubAggregator
}

func newLinkFixture(t *testing.T) linkFixture {
	t.Helper()

	start := aestTime(2025, time.March, 6, 19, 0)
	store := memory.NewSocialRepository([]social.Post{{
		ID:               "p-1",
		Content:          "Results from tonight's games at the Star",
		PostedAt:         *start,
		ProcessingStatus: social.StatusMatched,
	}})
	games := memory.NewGameRepository([]game.Game{
		{ID: "g-1", Name: "Thursday Grind", GameStartDateTime: start},
		{ID: "g-2", Name: "Thursday Turbo", GameStartDateTime: start},
		{ID: "g-3", Name: "Thursday Bounty", GameStartDateTime: start},
	})
	agg := &stubAggregator{}
	service := NewLinkService(store.Posts(), store.Links(), games, agg, &id.SequenceGenerator{Prefix: "link"}, nil, nil)
	return linkFixture{store: store, service: service, agg: agg}
}

func TestLinkService_UnlinkPromotesNextThenFallsBackToMatched(t *testing.T) {
	t.Parallel()

	f := newLinkFixture(t)
	ctx := context.Background()

	first, err := f.service.Link(ctx, LinkInput{SocialPostID: "p-1", GameID: "g-1", LinkedBy: "ops"})
	if err != nil {
		t.Fatalf("link g-1: %v", err)
	}
	if !first.Link.IsPrimaryGame || first.Link.LinkType != social.LinkManualLinked {
		t.Fatalf("first manual link should be primary: %+v", first.Link)
	}
	second, err := f.service.Link(ctx, LinkInput{SocialPostID: "p-1", GameID: "g-2"})
	if err != nil {
		t.Fatalf("link g-2: %v", err)
	}
	if second.Link.IsPrimaryGame || second.Link.MentionOrder != first.Link.MentionOrder+1 {
		t.Fatalf("second link should follow the first: %+v", second.Link)
	}
	if second.Post.LinkedGameCount != 2 || second.Post.ProcessingStatus != social.StatusLinked {
		t.Fatalf("unexpected post counters: %+v", second.Post)
	}

	unlinked, err := f.service.Unlink(ctx, first.Link.ID)
	if err != nil {
		t.Fatalf("unlink primary: %v", err)
	}
	if unlinked.PromotedLinkID != second.Link.ID {
		t.Fatalf("expected %s to be promoted, got %q", second.Link.ID, unlinked.PromotedLinkID)
	}
	links, _ := f.store.Links().ListBySocialPost(ctx, "p-1")
	primaries := 0
	for _, l := range links {
		if l.IsPrimaryGame {
			primaries++
		}
	}
	if primaries != 1 {
		t.Fatalf("expected exactly one primary, got %d", primaries)
	}
	if unlinked.Post.PrimaryLinkedGameID != "g-2" {
		t.Fatalf("unexpected primary game %q", unlinked.Post.PrimaryLinkedGameID)
	}

	last, err := f.service.Unlink(ctx, second.Link.ID)
	if err != nil {
		t.Fatalf("unlink last: %v", err)
	}
	if last.Post.ProcessingStatus != social.StatusMatched || last.Post.LinkedGameCount != 0 {
		t.Fatalf("post should fall back to MATCHED, got %+v", last.Post)
	}
	if len(f.agg.calls) != 4 {
		t.Fatalf("expected the aggregator on every mutation, got %v", f.agg.calls)
	}
}

func TestLinkService_VerifyAndRejectRules(t *testing.T) {
	t.Parallel()

	f := newLinkFixture(t)
	ctx := context.Background()
	post, _, _ := f.store.Posts().GetByID(ctx, "p-1")

	auto, created, err := f.service.AutoLink(ctx, post, MatchCandidate{GameID: "g-1", MatchConfidence: 88, MatchReason: social.MatchReasonSignals}, 0, true)
	if err != nil || !created {
		t.Fatalf("auto link: created=%v err=%v", created, err)
	}
	other, _, err := f.service.AutoLink(ctx, post, MatchCandidate{GameID: "g-2", MatchConfidence: 82, MatchReason: social.MatchReasonSignals}, 1, false)
	if err != nil {
		t.Fatalf("auto link g-2: %v", err)
	}

	if _, err := f.service.Reject(ctx, auto.ID, "  ", "ops"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without a reason, got %v", err)
	}
	rejected, err := f.service.Reject(ctx, auto.ID, "different night", "ops")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Link.LinkType != social.LinkRejected || rejected.Link.IsPrimaryGame {
		t.Fatalf("unexpected rejected link: %+v", rejected.Link)
	}
	if rejected.Post.LinkedGameCount != 1 || rejected.Post.PrimaryLinkedGameID != "g-2" {
		t.Fatalf("rejected link must not count and primary must move: %+v", rejected.Post)
	}
	if _, err := f.service.Verify(ctx, auto.ID, "ops"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict verifying a rejected link, got %v", err)
	}

	verified, err := f.service.Verify(ctx, other.ID, "ops")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if verified.Link.LinkType != social.LinkVerified || verified.Post.HasUnverifiedLinks {
		t.Fatalf("unexpected verify result: %+v", verified)
	}
	again, err := f.service.Verify(ctx, other.ID, "ops")
	if err != nil || again.Link.LinkType != social.LinkVerified {
		t.Fatalf("verifying twice should be a no-op: %+v %v", again.Link, err)
	}

	relinked, err := f.service.Link(ctx, LinkInput{SocialPostID: "p-1", GameID: "g-1"})
	if err != nil {
		t.Fatalf("manual link over rejected: %v", err)
	}
	if relinked.Link.ID != auto.ID || relinked.Link.LinkType != social.LinkManualLinked || relinked.Link.RejectionReason != "" {
		t.Fatalf("rejected link should be converted in place: %+v", relinked.Link)
	}
	if _, err := f.service.Link(ctx, LinkInput{SocialPostID: "p-1", GameID: "g-1"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for a duplicate pair, got %v", err)
	}
}

func TestLinkService_AggregatorFailureIsRecorded(t *testing.T) {
	t.Parallel()

	f := newLinkFixture(t)
	f.agg.err = errors.New("aggregator unavailable")

	got, err := f.service.Link(context.Background(), LinkInput{SocialPostID: "p-1", GameID: "g-3"})
	if err != nil {
		t.Fatalf("link should succeed when aggregation fails: %v", err)
	}
	if got.AggregationError == "" || got.Aggregation != nil {
		t.Fatalf("expected aggregation error to be recorded: %+v", got)
	}
}

func TestLinkService_Link_NotFound(t *testing.T) {
	t.Parallel()

	f := newLinkFixture(t)
	if _, err := f.service.Link(context.Background(), LinkInput{SocialPostID: "p-1", GameID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := f.service.Unlink(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
