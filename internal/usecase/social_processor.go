package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/tournament-reconciler/internal/domain/game"
	"github.com/riskibarqy/tournament-reconciler/internal/domain/social"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/logging"
)

const (
	defaultBatchLimit    = 50
	defaultUnlinkedLimit = 100
	maxBatchWorkers      = 8
)

type ProcessPostInput struct {
	SocialPostID   string  `json:"socialPostId" validate:"required"`
	ForceReprocess bool    `json:"forceReprocess"`
	MatchThreshold float64 `json:"matchThreshold,omitempty"`
	SkipMatching   bool    `json:"skipMatching"`
	SkipLinking    bool    `json:"skipLinking"`
}

type ProcessPostResult struct {
	Success          bool                   `json:"success"`
	SocialPostID     string                 `json:"socialPostId"`
	ProcessingStatus string                 `json:"processingStatus"`
	SkipReason       string                 `json:"skipReason,omitempty"`
	Classification   *social.Classification `json:"classification,omitempty"`
	Extraction       *social.GameData       `json:"extraction,omitempty"`
	Match            *MatchResult           `json:"match,omitempty"`
	LinksCreated     int                    `json:"linksCreated"`
	Links            []social.Link          `json:"links,omitempty"`
	Error            string                 `json:"error,omitempty"`
	ProcessingTimeMs int64                  `json:"processingTimeMs"`
}

type ProcessBatchInput struct {
	SocialPostIDs    []string `json:"socialPostIds,omitempty"`
	ProcessingStatus string   `json:"processingStatus,omitempty"`
	Limit            int      `json:"limit,omitempty" validate:"omitempty,min=1,max=500"`
	ForceReprocess   bool     `json:"forceReprocess"`
	MatchThreshold   float64  `json:"matchThreshold,omitempty"`
}

type ProcessBatchResult struct {
	Processed    int                 `json:"processed"`
	LinkedCount  int                 `json:"linkedCount"`
	SkippedCount int                 `json:"skippedCount"`
	FailedCount  int                 `json:"failedCount"`
	Results      []ProcessPostResult `json:"results"`
}

type PreviewMatchInput struct {
	SocialPostID   string    `json:"socialPostId,omitempty"`
	Content        string    `json:"content,omitempty"`
	PostedAt       time.Time `json:"postedAt,omitempty"`
	VenueID        string    `json:"venueId,omitempty"`
	EntityID       string    `json:"entityId,omitempty"`
	MatchThreshold float64   `json:"matchThreshold,omitempty"`
}

type PreviewExtractionInput struct {
	Content  string    `json:"content" validate:"required"`
	PostedAt time.Time `json:"postedAt,omitempty"`
	PostType string    `json:"postType,omitempty"`
}

type PreviewResult struct {
	SkipReason     string                `json:"skipReason,omitempty"`
	Classification social.Classification `json:"classification"`
	Extraction     social.GameData       `json:"extraction"`
	Match          *MatchResult          `json:"match,omitempty"`
}

type UnlinkedPostsInput struct {
	Statuses []string `json:"statuses,omitempty"`
	Limit    int      `json:"limit,omitempty" validate:"omitempty,min=1,max=1000"`
}

type MatchingStats struct {
	TotalPosts      int            `json:"totalPosts"`
	PostsByStatus   map[string]int `json:"postsByStatus"`
	TotalLinks      int            `json:"totalLinks"`
	LinksByType     map[string]int `json:"linksByType"`
	UnverifiedLinks int            `json:"unverifiedLinks"`
	AverageAutoConf float64        `json:"averageAutoMatchConfidence"`
}

// SocialProcessor turns scraped posts into extractions and game links.
type SocialProcessor struct {
	postRepo      social.PostRepository
	dataRepo      social.GameDataRepository
	placementRepo social.PlacementRepository
	linkRepo      social.LinkRepository
	gameRepo      game.Repository
	venues        *VenueResolver
	matcher       *GameMatcher
	links         *LinkService
	ids           IDGenerator
	observer      PipelineObserver
	batchWorkers  int
	logger        *logging.Logger
	now           func() time.Time
}

func NewSocialProcessor(
	postRepo social.PostRepository,
	dataRepo social.GameDataRepository,
	placementRepo social.PlacementRepository,
	linkRepo social.LinkRepository,
	gameRepo game.Repository,
	venues *VenueResolver,
	matcher *GameMatcher,
	links *LinkService,
	ids IDGenerator,
	observer PipelineObserver,
	batchWorkers int,
	logger *logging.Logger,
) *SocialProcessor {
	if logger == nil {
		logger = logging.Default()
	}
	if observer == nil {
		observer = NewNoopPipelineObserver()
	}
	if batchWorkers <= 0 {
		batchWorkers = 1
	}
	if batchWorkers > maxBatchWorkers {
		batchWorkers = maxBatchWorkers
	}
	return &SocialProcessor{
		postRepo:      postRepo,
		dataRepo:      dataRepo,
		placementRepo: placementRepo,
		linkRepo:      linkRepo,
		gameRepo:      gameRepo,
		venues:        venues,
		matcher:       matcher,
		links:         links,
		ids:           ids,
		observer:      observer,
		batchWorkers:  batchWorkers,
		logger:        logger,
		now:           time.Now,
	}
}

// ProcessPost classifies, extracts, matches and auto-links one post. Failures
// after the post was loaded are recorded on the post as FAILED.
func (p *SocialProcessor) ProcessPost(ctx context.Context, input ProcessPostInput) (ProcessPostResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SocialProcessor.ProcessPost",
		attribute.String("reconciler.social_post_id", input.SocialPostID))
	defer span.End()

	started := p.now()
	postID := strings.TrimSpace(input.SocialPostID)
	if postID == "" {
		return ProcessPostResult{}, fmt.Errorf("%w: socialPostId is required", ErrInvalidInput)
	}
	post, ok, err := p.postRepo.GetByID(ctx, postID)
	if err != nil {
		return ProcessPostResult{}, fmt.Errorf("get social post: %w", err)
	}
	if !ok {
		return ProcessPostResult{}, fmt.Errorf("%w: social post=%s", ErrNotFound, postID)
	}

	result, err := p.process(ctx, post, input)
	if err != nil {
		p.logger.WarnContext(ctx, "social post processing failed", "social_post_id", postID, "error", err)
		failSpan(span, err)
		post.ProcessingStatus = social.StatusFailed
		post.ProcessingError = err.Error()
		stamp := p.now().UTC()
		post.ProcessedAt = &stamp
		post.UpdatedAt = stamp
		if saveErr := p.postRepo.Upsert(ctx, post); saveErr != nil {
			p.logger.ErrorContext(ctx, "record processing failure", "social_post_id", postID, "error", saveErr)
		}
		result = ProcessPostResult{
			SocialPostID:     postID,
			ProcessingStatus: social.StatusFailed,
			Error:            err.Error(),
		}
	}
	result.ProcessingTimeMs = p.now().Sub(started).Milliseconds()
	p.observer.ObserveSocialPost(post.ContentType, result.ProcessingStatus)
	return result, nil
}

func (p *SocialProcessor) process(ctx context.Context, post social.Post, input ProcessPostInput) (ProcessPostResult, error) {
	out := ProcessPostResult{SocialPostID: post.ID}

	existing, err := p.linkRepo.ListBySocialPost(ctx, post.ID)
	if err != nil {
		return out, fmt.Errorf("list links: %w", err)
	}
	counted := 0
	for _, l := range existing {
		if l.Counts() {
			counted++
		}
	}

	if reason := social.SkipReason(post, counted, input.ForceReprocess); reason != "" {
		out.Success = true
		out.SkipReason = reason
		if reason == "already_linked" {
			out.ProcessingStatus = post.ProcessingStatus
			return out, nil
		}
		if err := p.setStatus(ctx, &post, social.StatusSkipped); err != nil {
			return out, err
		}
		out.ProcessingStatus = social.StatusSkipped
		return out, nil
	}

	if err := p.setStatus(ctx, &post, social.StatusProcessing); err != nil {
		return out, err
	}

	cls := social.Classify(post.Content)
	out.Classification = &cls
	post.ContentType = cls.ContentType
	confidence := cls.Confidence
	post.ContentTypeConfidence = &confidence
	if cls.ContentType == social.ContentGeneral || cls.ContentType == social.ContentComment {
		out.Success = true
		out.SkipReason = "not_tournament_content"
		if err := p.setStatus(ctx, &post, social.StatusSkipped); err != nil {
			return out, err
		}
		out.ProcessingStatus = social.StatusSkipped
		return out, nil
	}

	data, err := p.extract(ctx, post, cls)
	if err != nil {
		return out, err
	}
	if err := p.persistExtraction(ctx, &data); err != nil {
		return out, err
	}
	out.Extraction = &data
	post.ExtractedGameDataID = data.ID
	if err := p.setStatus(ctx, &post, social.StatusExtracted); err != nil {
		return out, err
	}

	if input.SkipMatching {
		out.Success = true
		out.ProcessingStatus = social.StatusExtracted
		return out, nil
	}

	match, err := p.matcher.FindMatchingGames(ctx, data, post, MatchOptions{MatchThreshold: input.MatchThreshold})
	if err != nil {
		return out, err
	}
	out.Match = &match

	status := social.StatusManualReview
	if match.PrimaryMatch != nil {
		status = social.StatusMatched
	}
	if err := p.setStatus(ctx, &post, status); err != nil {
		return out, err
	}

	if !input.SkipLinking {
		created, err := p.autoLink(ctx, post, existing, match.Candidates)
		if err != nil {
			return out, err
		}
		out.LinksCreated = len(created)
		out.Links = created
	}

	post, err = p.links.RefreshPost(ctx, post)
	if err != nil {
		return out, err
	}
	out.Success = true
	out.ProcessingStatus = post.ProcessingStatus
	return out, nil
}

func (p *SocialProcessor) autoLink(ctx context.Context, post social.Post, existing []social.Link, candidates []MatchCandidate) ([]social.Link, error) {
	nextOrder := 0
	hasPrimary := false
	for _, l := range existing {
		if l.MentionOrder >= nextOrder {
			nextOrder = l.MentionOrder + 1
		}
		if l.Counts() && l.IsPrimaryGame {
			hasPrimary = true
		}
	}

	var created []social.Link
	for _, c := range candidates {
		if !c.WouldAutoLink {
			continue
		}
		link, isNew, err := p.links.AutoLink(ctx, post, c, nextOrder, !hasPrimary)
		if err != nil {
			return created, err
		}
		if !isNew {
			continue
		}
		nextOrder++
		hasPrimary = true
		created = append(created, link)
	}
	return created, nil
}

func (p *SocialProcessor) extract(ctx context.Context, post social.Post, cls social.Classification) (social.GameData, error) {
	venues, err := p.venues.Catalog(ctx)
	if err != nil {
		return social.GameData{}, fmt.Errorf("load venue catalog: %w", err)
	}
	data := social.Extract(post, cls, venues)
	if data.ExtractedVenueID == "" && post.VenueID != "" {
		data.ExtractedVenueID = post.VenueID
	}
	return data, nil
}

// persistExtraction reuses the extraction id of an earlier run so reprocessing
// replaces rather than duplicates.
func (p *SocialProcessor) persistExtraction(ctx context.Context, data *social.GameData) error {
	now := p.now().UTC()
	prev, found, err := p.dataRepo.GetBySocialPost(ctx, data.SocialPostID)
	if err != nil {
		return fmt.Errorf("get extraction: %w", err)
	}
	if found {
		data.ID = prev.ID
		data.CreatedAt = prev.CreatedAt
	} else {
		data.ID, err = p.ids.NewID()
		if err != nil {
			return fmt.Errorf("generate extraction id: %w", err)
		}
		data.CreatedAt = now
	}
	data.ExtractedAt = now
	data.UpdatedAt = now

	for i := range data.Placements {
		id, err := p.ids.NewID()
		if err != nil {
			return fmt.Errorf("generate placement id: %w", err)
		}
		data.Placements[i].ID = id
		data.Placements[i].SocialPostID = data.SocialPostID
	}
	if err := p.dataRepo.Upsert(ctx, *data); err != nil {
		return fmt.Errorf("upsert extraction: %w", err)
	}
	if err := p.placementRepo.ReplaceForSocialPost(ctx, data.SocialPostID, data.Placements); err != nil {
		return fmt.Errorf("replace placements: %w", err)
	}
	return nil
}

func (p *SocialProcessor) setStatus(ctx context.Context, post *social.Post, status string) error {
	now := p.now().UTC()
	post.ProcessingStatus = status
	post.ProcessingError = ""
	post.UpdatedAt = now
	if status != social.StatusProcessing {
		post.ProcessedAt = &now
	}
	if err := p.postRepo.Upsert(ctx, *post); err != nil {
		return fmt.Errorf("upsert social post: %w", err)
	}
	return nil
}

// ProcessBatch processes posts on a bounded worker pool. Per-post failures are
// reported in the results, not returned.
func (p *SocialProcessor) ProcessBatch(ctx context.Context, input ProcessBatchInput) (ProcessBatchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SocialProcessor.ProcessBatch")
	defer span.End()

	ids, err := p.batchTargets(ctx, input)
	if err != nil {
		return ProcessBatchResult{}, err
	}
	result := ProcessBatchResult{Results: make([]ProcessPostResult, 0, len(ids))}
	if len(ids) == 0 {
		return result, nil
	}

	workerCount := p.batchWorkers
	if workerCount > len(ids) {
		workerCount = len(ids)
	}

	type indexed struct {
		index int
		row   ProcessPostResult
	}
	rows := make(chan indexed, len(ids))

	var linkedCount atomic.Int32
	var skippedCount atomic.Int32
	var failedCount atomic.Int32

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return ProcessBatchResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for i, postID := range ids {
		i, postID := i, postID
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			row, err := p.ProcessPost(ctx, ProcessPostInput{
				SocialPostID:   postID,
				ForceReprocess: input.ForceReprocess,
				MatchThreshold: input.MatchThreshold,
			})
			if err != nil {
				row = ProcessPostResult{SocialPostID: postID, ProcessingStatus: social.StatusFailed, Error: err.Error()}
			}

			switch {
			case row.ProcessingStatus == social.StatusFailed:
				failedCount.Add(1)
			case row.SkipReason != "":
				skippedCount.Add(1)
			case row.LinksCreated > 0:
				linkedCount.Add(1)
			}
			rows <- indexed{index: i, row: row}
		}); err != nil {
			workers.Done()
			return ProcessBatchResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(rows)

	ordered := make([]indexed, 0, len(ids))
	for row := range rows {
		ordered = append(ordered, row)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].index < ordered[j].index })
	for _, row := range ordered {
		result.Results = append(result.Results, row.row)
	}

	result.Processed = len(result.Results)
	result.LinkedCount = int(linkedCount.Load())
	result.SkippedCount = int(skippedCount.Load())
	result.FailedCount = int(failedCount.Load())
	p.logger.InfoContext(ctx, "social batch processed",
		"processed", result.Processed,
		"linked", result.LinkedCount,
		"skipped", result.SkippedCount,
		"failed", result.FailedCount,
	)
	return result, nil
}

func (p *SocialProcessor) batchTargets(ctx context.Context, input ProcessBatchInput) ([]string, error) {
	if len(input.SocialPostIDs) > 0 {
		seen := make(map[string]struct{}, len(input.SocialPostIDs))
		out := make([]string, 0, len(input.SocialPostIDs))
		for _, id := range input.SocialPostIDs {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
		return out, nil
	}

	status := social.StatusPending
	if input.ProcessingStatus != "" {
		normalized, ok := social.NormalizeStatus(input.ProcessingStatus)
		if !ok {
			return nil, fmt.Errorf("%w: unknown processing status %q", ErrInvalidInput, input.ProcessingStatus)
		}
		status = normalized
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultBatchLimit
	}
	posts, err := p.postRepo.ListByProcessingStatus(ctx, status, limit)
	if err != nil {
		return nil, fmt.Errorf("list social posts by status: %w", err)
	}
	out := make([]string, 0, len(posts))
	for _, post := range posts {
		out = append(out, post.ID)
	}
	return out, nil
}

// PreviewMatch runs classification, extraction and matching without
// persisting anything.
func (p *SocialProcessor) PreviewMatch(ctx context.Context, input PreviewMatchInput) (PreviewResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SocialProcessor.PreviewMatch")
	defer span.End()

	var post social.Post
	if id := strings.TrimSpace(input.SocialPostID); id != "" {
		loaded, ok, err := p.postRepo.GetByID(ctx, id)
		if err != nil {
			return PreviewResult{}, fmt.Errorf("get social post: %w", err)
		}
		if !ok {
			return PreviewResult{}, fmt.Errorf("%w: social post=%s", ErrNotFound, id)
		}
		post = loaded
	} else {
		if strings.TrimSpace(input.Content) == "" {
			return PreviewResult{}, fmt.Errorf("%w: socialPostId or content is required", ErrInvalidInput)
		}
		post = p.adhocPost(input.Content, input.PostedAt, social.PostTypePost)
		post.VenueID = input.VenueID
		post.EntityID = input.EntityID
	}

	cls := social.Classify(post.Content)
	data, err := p.extract(ctx, post, cls)
	if err != nil {
		return PreviewResult{}, err
	}
	match, err := p.matcher.FindMatchingGames(ctx, data, post, MatchOptions{MatchThreshold: input.MatchThreshold, IncludeBelowMinimum: true})
	if err != nil {
		return PreviewResult{}, err
	}
	return PreviewResult{Classification: cls, Extraction: data, Match: &match}, nil
}

// PreviewContentExtraction classifies and extracts free text.
func (p *SocialProcessor) PreviewContentExtraction(ctx context.Context, input PreviewExtractionInput) (PreviewResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SocialProcessor.PreviewContentExtraction")
	defer span.End()

	if strings.TrimSpace(input.Content) == "" {
		return PreviewResult{}, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	post := p.adhocPost(input.Content, input.PostedAt, input.PostType)
	cls := social.Classify(post.Content)
	data, err := p.extract(ctx, post, cls)
	if err != nil {
		return PreviewResult{}, err
	}
	return PreviewResult{
		SkipReason:     social.SkipReason(post, 0, false),
		Classification: cls,
		Extraction:     data,
	}, nil
}

func (p *SocialProcessor) adhocPost(content string, postedAt time.Time, postType string) social.Post {
	if postedAt.IsZero() {
		postedAt = p.now()
	}
	if postType == "" {
		postType = social.PostTypePost
	}
	return social.Post{
		ID:               "preview",
		PostType:         postType,
		Content:          content,
		PostedAt:         postedAt.UTC(),
		ProcessingStatus: social.StatusPending,
	}
}

// GetUnlinkedPosts lists processed posts that have no counted link, newest first.
func (p *SocialProcessor) GetUnlinkedPosts(ctx context.Context, input UnlinkedPostsInput) ([]social.Post, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SocialProcessor.GetUnlinkedPosts")
	defer span.End()

	statuses := input.Statuses
	if len(statuses) == 0 {
		statuses = []string{social.StatusMatched, social.StatusExtracted, social.StatusManualReview}
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultUnlinkedLimit
	}

	out := make([]social.Post, 0)
	for _, raw := range statuses {
		status, ok := social.NormalizeStatus(raw)
		if !ok {
			return nil, fmt.Errorf("%w: unknown processing status %q", ErrInvalidInput, raw)
		}
		posts, err := p.postRepo.ListByProcessingStatus(ctx, status, 0)
		if err != nil {
			return nil, fmt.Errorf("list social posts by status: %w", err)
		}
		for _, post := range posts {
			if post.LinkedGameCount == 0 {
				out = append(out, post)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].PostedAt.Equal(out[j].PostedAt) {
			return out[i].PostedAt.After(out[j].PostedAt)
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GetMatchingStats counts posts per processing status and links per type.
func (p *SocialProcessor) GetMatchingStats(ctx context.Context) (MatchingStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SocialProcessor.GetMatchingStats")
	defer span.End()

	stats := MatchingStats{
		PostsByStatus: make(map[string]int, len(social.Statuses)),
		LinksByType:   make(map[string]int, len(social.LinkTypes)),
	}
	for _, status := range social.Statuses {
		posts, err := p.postRepo.ListByProcessingStatus(ctx, status, 0)
		if err != nil {
			return MatchingStats{}, fmt.Errorf("list social posts by status: %w", err)
		}
		stats.PostsByStatus[status] = len(posts)
		stats.TotalPosts += len(posts)
	}

	links, err := p.linkRepo.List(ctx)
	if err != nil {
		return MatchingStats{}, fmt.Errorf("list links: %w", err)
	}
	for _, linkType := range social.LinkTypes {
		stats.LinksByType[linkType] = 0
	}
	var autoTotal float64
	autoCount := 0
	for _, l := range links {
		stats.LinksByType[l.LinkType]++
		stats.TotalLinks++
		if l.Unverified() {
			stats.UnverifiedLinks++
		}
		if l.LinkedBy == "system" {
			autoTotal += l.MatchConfidence
			autoCount++
		}
	}
	if autoCount > 0 {
		stats.AverageAutoConf = autoTotal / float64(autoCount)
	}
	return stats, nil
}

// ReconcilePostWithGame compares the prizes a result post reports with the game.
func (p *SocialProcessor) ReconcilePostWithGame(ctx context.Context, postID, gameID string) (social.Reconciliation, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SocialProcessor.ReconcilePostWithGame")
	defer span.End()

	if strings.TrimSpace(postID) == "" || strings.TrimSpace(gameID) == "" {
		return social.Reconciliation{}, fmt.Errorf("%w: socialPostId and gameId are required", ErrInvalidInput)
	}
	data, ok, err := p.dataRepo.GetBySocialPost(ctx, postID)
	if err != nil {
		return social.Reconciliation{}, fmt.Errorf("get extraction: %w", err)
	}
	if !ok {
		return social.Reconciliation{}, fmt.Errorf("%w: extraction for social post=%s", ErrNotFound, postID)
	}
	g, ok, err := p.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return social.Reconciliation{}, fmt.Errorf("get game: %w", err)
	}
	if !ok {
		return social.Reconciliation{}, fmt.Errorf("%w: game=%s", ErrNotFound, gameID)
	}
	if len(data.Placements) == 0 {
		placements, err := p.placementRepo.ListBySocialPost(ctx, postID)
		if err != nil {
			return social.Reconciliation{}, fmt.Errorf("list placements: %w", err)
		}
		if len(placements) > 0 {
			data.Placements = placements
			data.Tickets = social.Aggregate(placements)
		}
	}
	return social.Reconcile(data, g), nil
}
