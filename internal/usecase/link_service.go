package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/tournament-reconciler/internal/domain/game"
	"github.com/riskibarqy/tournament-reconciler/internal/domain/social"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/logging"
)

// Link actions reported to the observer.
const (
	LinkActionCreated  = "created"
	LinkActionUnlinked = "unlinked"
	LinkActionVerified = "verified"
	LinkActionRejected = "rejected"
)

type LinkInput struct {
	SocialPostID    string  `json:"socialPostId" validate:"required"`
	GameID          string  `json:"gameId" validate:"required"`
	IsPrimaryGame   *bool   `json:"isPrimaryGame,omitempty"`
	MentionOrder    *int    `json:"mentionOrder,omitempty"`
	LinkedBy        string  `json:"linkedBy,omitempty"`
	MatchConfidence float64 `json:"matchConfidence,omitempty"`
}

type LinkResult struct {
	Link             social.Link      `json:"link"`
	Post             social.Post      `json:"post"`
	AggregationError string           `json:"aggregationError,omitempty"`
	Aggregation      *AggregateResult `json:"aggregation,omitempty"`
}

type UnlinkResult struct {
	Success          bool        `json:"success"`
	RemovedLinkID    string      `json:"removedLinkId"`
	PromotedLinkID   string      `json:"promotedLinkId,omitempty"`
	Post             social.Post `json:"post"`
	AggregationError string      `json:"aggregationError,omitempty"`
}

// LinkService owns the post to game link lifecycle and keeps the post
// counters consistent with its links.
type LinkService struct {
	postRepo   social.PostRepository
	linkRepo   social.LinkRepository
	gameRepo   game.Repository
	aggregator SocialAggregator
	ids        IDGenerator
	observer   PipelineObserver
	logger     *logging.Logger
	now        func() time.Time
}

func NewLinkService(
	postRepo social.PostRepository,
	linkRepo social.LinkRepository,
	gameRepo game.Repository,
	aggregator SocialAggregator,
	ids IDGenerator,
	observer PipelineObserver,
	logger *logging.Logger,
) *LinkService {
	if logger == nil {
		logger = logging.Default()
	}
	if aggregator == nil {
		aggregator = NewNoopSocialAggregator()
	}
	if observer == nil {
		observer = NewNoopPipelineObserver()
	}
	return &LinkService{
		postRepo:   postRepo,
		linkRepo:   linkRepo,
		gameRepo:   gameRepo,
		aggregator: aggregator,
		ids:        ids,
		observer:   observer,
		logger:     logger,
		now:        time.Now,
	}
}

// Link creates a manual link. A previously rejected link for the same pair is
// converted in place.
func (s *LinkService) Link(ctx context.Context, input LinkInput) (LinkResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LinkService.Link")
	defer span.End()

	postID := strings.TrimSpace(input.SocialPostID)
	gameID := strings.TrimSpace(input.GameID)
	if postID == "" || gameID == "" {
		return LinkResult{}, fmt.Errorf("%w: socialPostId and gameId are required", ErrInvalidInput)
	}
	post, err := s.mustPost(ctx, postID)
	if err != nil {
		return LinkResult{}, err
	}
	if _, ok, err := s.gameRepo.GetByID(ctx, gameID); err != nil {
		return LinkResult{}, fmt.Errorf("get game: %w", err)
	} else if !ok {
		return LinkResult{}, fmt.Errorf("%w: game=%s", ErrNotFound, gameID)
	}

	existing, found, err := s.linkRepo.Get(ctx, postID, gameID)
	if err != nil {
		return LinkResult{}, fmt.Errorf("get link: %w", err)
	}
	if found && existing.LinkType != social.LinkRejected {
		return LinkResult{}, fmt.Errorf("%w: post %s is already linked to game %s", ErrConflict, postID, gameID)
	}

	siblings, err := s.linkRepo.ListBySocialPost(ctx, postID)
	if err != nil {
		return LinkResult{}, fmt.Errorf("list links: %w", err)
	}
	hasPrimary := false
	maxOrder := -1
	for _, l := range siblings {
		if l.ID == existing.ID {
			continue
		}
		if l.IsPrimaryGame {
			hasPrimary = true
		}
		if l.MentionOrder > maxOrder {
			maxOrder = l.MentionOrder
		}
	}

	now := s.now().UTC()
	link := existing
	if !found {
		link.ID, err = s.ids.NewID()
		if err != nil {
			return LinkResult{}, fmt.Errorf("generate link id: %w", err)
		}
		link.SocialPostID = postID
		link.GameID = gameID
		link.CreatedAt = now
	}
	link.LinkType = social.LinkManualLinked
	link.MatchReason = social.MatchReasonManual
	link.MatchConfidence = 100
	if input.MatchConfidence > 0 {
		link.MatchConfidence = input.MatchConfidence
	}
	link.LinkedBy = input.LinkedBy
	link.RejectedBy = ""
	link.RejectedAt = nil
	link.RejectionReason = ""
	link.MentionOrder = maxOrder + 1
	if input.MentionOrder != nil {
		link.MentionOrder = *input.MentionOrder
	}
	link.IsPrimaryGame = !hasPrimary
	if input.IsPrimaryGame != nil && *input.IsPrimaryGame {
		if err := s.demotePrimary(ctx, siblings, link.ID); err != nil {
			return LinkResult{}, err
		}
		link.IsPrimaryGame = true
	}
	link.UpdatedAt = now

	if err := s.linkRepo.Upsert(ctx, link); err != nil {
		return LinkResult{}, fmt.Errorf("upsert link: %w", err)
	}
	post, err = s.refreshPostCounters(ctx, post)
	if err != nil {
		return LinkResult{}, err
	}
	s.observer.ObserveLink(link.LinkType, LinkActionCreated)

	out := LinkResult{Link: link, Post: post}
	agg, aggErr := s.notify(ctx, gameID)
	if aggErr != "" {
		out.AggregationError = aggErr
	} else {
		out.Aggregation = &agg
	}
	return out, nil
}

// AutoLink records an automatic link from a matcher candidate. Existing links
// for the pair are left untouched.
func (s *LinkService) AutoLink(ctx context.Context, post social.Post, candidate MatchCandidate, mentionOrder int, primary bool) (social.Link, bool, error) {
	existing, found, err := s.linkRepo.Get(ctx, post.ID, candidate.GameID)
	if err != nil {
		return social.Link{}, false, fmt.Errorf("get link: %w", err)
	}
	if found {
		return existing, false, nil
	}

	id, err := s.ids.NewID()
	if err != nil {
		return social.Link{}, false, fmt.Errorf("generate link id: %w", err)
	}
	now := s.now().UTC()
	breakdown := candidate.Breakdown
	link := social.Link{
		ID:              id,
		SocialPostID:    post.ID,
		GameID:          candidate.GameID,
		LinkType:        social.LinkAutoMatched,
		MatchConfidence: candidate.MatchConfidence,
		MatchReason:     candidate.MatchReason,
		MatchSignals:    &breakdown,
		IsPrimaryGame:   primary,
		MentionOrder:    mentionOrder,
		LinkedBy:        "system",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.linkRepo.Upsert(ctx, link); err != nil {
		return social.Link{}, false, fmt.Errorf("upsert link: %w", err)
	}
	s.observer.ObserveLink(link.LinkType, LinkActionCreated)
	if aggErr := s.notifyAsync(ctx, link.GameID); aggErr != "" {
		s.logger.WarnContext(ctx, "aggregation notify failed", "game_id", link.GameID, "error", aggErr)
	}
	return link, true, nil
}

// Unlink deletes a link. Removing the primary promotes the sibling with the
// lowest mention order; a post left without links falls back to MATCHED.
func (s *LinkService) Unlink(ctx context.Context, linkID string) (UnlinkResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LinkService.Unlink")
	defer span.End()

	link, err := s.mustLink(ctx, linkID)
	if err != nil {
		return UnlinkResult{}, err
	}
	post, err := s.mustPost(ctx, link.SocialPostID)
	if err != nil {
		return UnlinkResult{}, err
	}

	if err := s.linkRepo.Delete(ctx, link.ID); err != nil {
		return UnlinkResult{}, fmt.Errorf("delete link: %w", err)
	}

	out := UnlinkResult{Success: true, RemovedLinkID: link.ID}
	if link.IsPrimaryGame {
		promoted, err := s.promoteNext(ctx, link.SocialPostID)
		if err != nil {
			return UnlinkResult{}, err
		}
		out.PromotedLinkID = promoted
	}

	post, err = s.refreshPostCounters(ctx, post)
	if err != nil {
		return UnlinkResult{}, err
	}
	out.Post = post
	s.observer.ObserveLink(link.LinkType, LinkActionUnlinked)
	if _, aggErr := s.notify(ctx, link.GameID); aggErr != "" {
		out.AggregationError = aggErr
	}
	return out, nil
}

// Verify confirms an automatic link. Verifying a verified link is a no-op.
func (s *LinkService) Verify(ctx context.Context, linkID, verifiedBy string) (LinkResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LinkService.Verify")
	defer span.End()

	link, err := s.mustLink(ctx, linkID)
	if err != nil {
		return LinkResult{}, err
	}
	post, err := s.mustPost(ctx, link.SocialPostID)
	if err != nil {
		return LinkResult{}, err
	}
	switch link.LinkType {
	case social.LinkVerified:
		return LinkResult{Link: link, Post: post}, nil
	case social.LinkAutoMatched:
	default:
		return LinkResult{}, fmt.Errorf("%w: cannot verify a %s link", ErrConflict, link.LinkType)
	}

	now := s.now().UTC()
	link.LinkType = social.LinkVerified
	link.VerifiedBy = verifiedBy
	link.VerifiedAt = &now
	link.UpdatedAt = now
	if err := s.linkRepo.Upsert(ctx, link); err != nil {
		return LinkResult{}, fmt.Errorf("upsert link: %w", err)
	}
	post, err = s.refreshPostCounters(ctx, post)
	if err != nil {
		return LinkResult{}, err
	}
	s.observer.ObserveLink(link.LinkType, LinkActionVerified)

	out := LinkResult{Link: link, Post: post}
	if _, aggErr := s.notify(ctx, link.GameID); aggErr != "" {
		out.AggregationError = aggErr
	}
	return out, nil
}

// Reject marks an automatic link wrong. The link is kept so the pair is not
// auto-linked again; a rejected primary hands primary to the next sibling.
func (s *LinkService) Reject(ctx context.Context, linkID, reason, rejectedBy string) (LinkResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LinkService.Reject")
	defer span.End()

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return LinkResult{}, fmt.Errorf("%w: rejection reason is required", ErrInvalidInput)
	}
	link, err := s.mustLink(ctx, linkID)
	if err != nil {
		return LinkResult{}, err
	}
	if link.LinkType != social.LinkAutoMatched {
		return LinkResult{}, fmt.Errorf("%w: cannot reject a %s link", ErrConflict, link.LinkType)
	}
	post, err := s.mustPost(ctx, link.SocialPostID)
	if err != nil {
		return LinkResult{}, err
	}

	now := s.now().UTC()
	wasPrimary := link.IsPrimaryGame
	link.LinkType = social.LinkRejected
	link.RejectionReason = reason
	link.RejectedBy = rejectedBy
	link.RejectedAt = &now
	link.IsPrimaryGame = false
	link.UpdatedAt = now
	if err := s.linkRepo.Upsert(ctx, link); err != nil {
		return LinkResult{}, fmt.Errorf("upsert link: %w", err)
	}
	if wasPrimary {
		if _, err := s.promoteNext(ctx, link.SocialPostID); err != nil {
			return LinkResult{}, err
		}
	}
	post, err = s.refreshPostCounters(ctx, post)
	if err != nil {
		return LinkResult{}, err
	}
	s.observer.ObserveLink(link.LinkType, LinkActionRejected)

	out := LinkResult{Link: link, Post: post}
	if _, aggErr := s.notify(ctx, link.GameID); aggErr != "" {
		out.AggregationError = aggErr
	}
	return out, nil
}

// RefreshPost recomputes the link counters of a post and stores it.
func (s *LinkService) RefreshPost(ctx context.Context, post social.Post) (social.Post, error) {
	return s.refreshPostCounters(ctx, post)
}

func (s *LinkService) refreshPostCounters(ctx context.Context, post social.Post) (social.Post, error) {
	links, err := s.linkRepo.ListBySocialPost(ctx, post.ID)
	if err != nil {
		return social.Post{}, fmt.Errorf("list links: %w", err)
	}

	count := 0
	unverified := false
	primary := ""
	for _, l := range links {
		if !l.Counts() {
			continue
		}
		count++
		if l.Unverified() {
			unverified = true
		}
		if l.IsPrimaryGame {
			primary = l.GameID
		}
	}

	post.LinkedGameCount = count
	post.HasUnverifiedLinks = unverified
	post.PrimaryLinkedGameID = primary
	if count > 0 {
		post.ProcessingStatus = social.StatusLinked
	} else if post.ProcessingStatus == social.StatusLinked {
		post.ProcessingStatus = social.StatusMatched
	}
	post.UpdatedAt = s.now().UTC()
	if err := s.postRepo.Upsert(ctx, post); err != nil {
		return social.Post{}, fmt.Errorf("upsert post: %w", err)
	}
	return post, nil
}

func (s *LinkService) promoteNext(ctx context.Context, postID string) (string, error) {
	links, err := s.linkRepo.ListBySocialPost(ctx, postID)
	if err != nil {
		return "", fmt.Errorf("list links: %w", err)
	}
	live := make([]social.Link, 0, len(links))
	for _, l := range links {
		if l.Counts() {
			live = append(live, l)
		}
	}
	if len(live) == 0 {
		return "", nil
	}
	sort.SliceStable(live, func(i, j int) bool {
		if live[i].MentionOrder != live[j].MentionOrder {
			return live[i].MentionOrder < live[j].MentionOrder
		}
		return live[i].CreatedAt.Before(live[j].CreatedAt)
	})
	for _, l := range live {
		if l.IsPrimaryGame {
			return "", nil
		}
	}

	next := live[0]
	next.IsPrimaryGame = true
	next.UpdatedAt = s.now().UTC()
	if err := s.linkRepo.Upsert(ctx, next); err != nil {
		return "", fmt.Errorf("promote link: %w", err)
	}
	return next.ID, nil
}

func (s *LinkService) demotePrimary(ctx context.Context, links []social.Link, keepID string) error {
	for _, l := range links {
		if !l.IsPrimaryGame || l.ID == keepID {
			continue
		}
		l.IsPrimaryGame = false
		l.UpdatedAt = s.now().UTC()
		if err := s.linkRepo.Upsert(ctx, l); err != nil {
			return fmt.Errorf("demote link: %w", err)
		}
	}
	return nil
}

func (s *LinkService) notify(ctx context.Context, gameID string) (AggregateResult, string) {
	result, err := s.aggregator.Aggregate(ctx, gameID, AggregateOptions{TriggerFinancials: true})
	if err != nil {
		s.logger.WarnContext(ctx, "social aggregation failed", "game_id", gameID, "error", err)
		return AggregateResult{}, err.Error()
	}
	return result, ""
}

func (s *LinkService) notifyAsync(ctx context.Context, gameID string) string {
	if _, err := s.aggregator.Aggregate(ctx, gameID, AggregateOptions{Async: true, TriggerFinancials: true}); err != nil {
		return err.Error()
	}
	return ""
}

func (s *LinkService) mustPost(ctx context.Context, postID string) (social.Post, error) {
	post, ok, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return social.Post{}, fmt.Errorf("get social post: %w", err)
	}
	if !ok {
		return social.Post{}, fmt.Errorf("%w: social post=%s", ErrNotFound, postID)
	}
	return post, nil
}

func (s *LinkService) mustLink(ctx context.Context, linkID string) (social.Link, error) {
	if strings.TrimSpace(linkID) == "" {
		return social.Link{}, fmt.Errorf("%w: link id is required", ErrInvalidInput)
	}
	link, ok, err := s.linkRepo.GetByID(ctx, linkID)
	if err != nil {
		return social.Link{}, fmt.Errorf("get link: %w", err)
	}
	if !ok {
		return social.Link{}, fmt.Errorf("%w: link=%s", ErrNotFound, linkID)
	}
	return link, nil
}
