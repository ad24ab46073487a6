package httpapi

import (
	"context"
	"sort"

	"github.com/riskibarqy/tournament-reconciler/internal/usecase"
)

// operation decodes its arguments from a JSON body and runs one core action.
type operation func(ctx context.Context, body []byte) (any, error)

// Dispatchable field names.
const (
	OpEnrichGameData                = "enrichGameData"
	OpProcessSocialPost             = "processSocialPost"
	OpProcessSocialPostBatch        = "processSocialPostBatch"
	OpPreviewSocialPostMatch        = "previewSocialPostMatch"
	OpPreviewContentExtraction      = "previewContentExtraction"
	OpLinkSocialPostToGame          = "linkSocialPostToGame"
	OpUnlinkSocialPostFromGame      = "unlinkSocialPostFromGame"
	OpVerifySocialPostLink          = "verifySocialPostLink"
	OpRejectSocialPostLink          = "rejectSocialPostLink"
	OpGetUnlinkedSocialPosts        = "getUnlinkedSocialPosts"
	OpGetSocialPostMatchingStats    = "getSocialPostMatchingStats"
	OpReconcilePostWithGame         = "reconcilePostWithGame"
	OpGetRecurringGameStats         = "getRecurringGameStats"
	OpFindDuplicateRecurringGames   = "findDuplicateRecurringGames"
	OpMergeRecurringGames           = "mergeRecurringGames"
	OpCleanupOrphanedRecurringGames = "cleanupOrphanedRecurringGames"
	OpReresolveRecurringVenues      = "reresolveRecurringVenues"
	OpRecordMissedInstance          = "recordMissedInstance"
	OpDetectRecurringGaps           = "detectRecurringGaps"
	OpGetRecurringComplianceReport  = "getRecurringComplianceReport"
)

type linkIDRequest struct {
	LinkID string `json:"linkId" validate:"required"`
}

type verifyLinkRequest struct {
	LinkID     string `json:"linkId" validate:"required"`
	VerifiedBy string `json:"verifiedBy,omitempty"`
}

type rejectLinkRequest struct {
	LinkID     string `json:"linkId" validate:"required"`
	Reason     string `json:"reason,omitempty" validate:"max=500"`
	RejectedBy string `json:"rejectedBy,omitempty"`
}

type reconcileRequest struct {
	SocialPostID string `json:"socialPostId" validate:"required"`
	GameID       string `json:"gameId" validate:"required"`
}

type venueFilterRequest struct {
	VenueID string `json:"venueId,omitempty"`
}

type mergeRecurringRequest struct {
	PrimaryID    string   `json:"primaryId" validate:"required"`
	DuplicateIDs []string `json:"duplicateIds" validate:"required,min=1,dive,required"`
	DryRun       bool     `json:"dryRun"`
}

type dryRunRequest struct {
	DryRun bool `json:"dryRun"`
}

func (h *Handler) registerOperations() map[string]operation {
	return map[string]operation{
		OpEnrichGameData: func(ctx context.Context, body []byte) (any, error) {
			var in usecase.EnrichInput
			if err := h.decode(ctx, body, &in); err != nil {
				return nil, err
			}
			return h.enrichment.Enrich(ctx, in), nil
		},
		OpProcessSocialPost: func(ctx context.Context, body []byte) (any, error) {
			var in usecase.ProcessPostInput
			if err := h.decode(ctx, body, &in); err != nil {
				return nil, err
			}
			return h.social.ProcessPost(ctx, in)
		},
		OpProcessSocialPostBatch: func(ctx context.Context, body []byte) (any, error) {
			var in usecase.ProcessBatchInput
			if err := h.decode(ctx, body, &in); err != nil {
				return nil, err
			}
			return h.social.ProcessBatch(ctx, in)
		},
		OpPreviewSocialPostMatch: func(ctx context.Context, body []byte) (any, error) {
			var in usecase.PreviewMatchInput
			if err := h.decode(ctx, body, &in); err != nil {
				return nil, err
			}
			return h.social.PreviewMatch(ctx, in)
		},
		OpPreviewContentExtraction: func(ctx context.Context, body []byte) (any, error) {
			var in usecase.PreviewExtractionInput
			if err := h.decode(ctx, body, &in); err != nil {
				return nil, err
			}
			return h.social.PreviewContentExtraction(ctx, in)
		},
		OpLinkSocialPostToGame: func(ctx context.Context, body []byte) (any, error) {
			var in usecase.LinkInput
			if err := h.decode(ctx, body, &in); err != nil {
				return nil, err
			}
			return h.links.Link(ctx, in)
		},
		OpUnlinkSocialPostFromGame: func(ctx context.Context, body []byte) (any, error) {
			var in linkIDRequest
			if err := h.decode(ctx, body, &in); err != nil {
				return nil, err
			}
			return h.links.Unlink(ctx, in.LinkID)
		},
		OpVerifySocialPostLink: func(ctx context.Context, body []byte) (any, error) {
			var in verifyLinkRequest
			if err := h.decode(ctx, body, &in); err != nil {
				return nil, err
			}
			return h.links.Verify(ctx, in.LinkID, in.VerifiedBy)
		},
		OpRejectSocialPostLink: func(ctx context.Context, body []byte) (any, error) {
			var in rejectLinkRequest
			if err := h.decode(ctx, body, &in); err != nil {
				return nil, err
			}
			return h.links.Reject(ctx, in.LinkID, in.Reason, in.RejectedBy)
		},
		OpGetUnlinkedSocialPosts: func(ctx context.Context, body []byte) (any, error) {
			var in usecase.UnlinkedPostsInput
			if err := h.decode(ctx, body, &in); err != nil {
				return nil, err
			}
			return h.social.GetUnlinkedPosts(ctx, in)
		},
		OpGetSocialPostMatchingStats: func(ctx context.Context, body []byte) (any, error) {
			var in struct{}
			if err := h.decode(ctx, body, &in); err != nil {
				return nil, err
			}
			return h.social.GetMatchingStats(ctx)
		},
		OpReconcilePostWithGame: func(ctx context.Context, body []byte) (any, error) {
			var in reconcileRequest
			if err := h.decode(ctx, body, &in); err != nil {
				return nil, err
			}
			return h.social.ReconcilePostWithGame(ctx, in.SocialPostID, in.GameID)
		},
		OpGetRecurringGameStats: func(ctx context.Context, body []byte) (any, error) {
			var in venueFilterRequest
			if err := h.decode(ctx, body, &in); err != nil {
				return nil, err
			}
			return h.recurring.Stats(ctx, in.VenueID)
		},
		OpFindDuplicateRecurringGames: func(ctx context.Context, body []byte) (any, error) {
			var in venueFilterRequest
			if err := h.decode(ctx, body, &in); err != nil {
				return nil, err
			}
			return h.recurring.FindDuplicates(ctx, in.VenueID)
		},
		OpMergeRecurringGames: func(ctx context.Context, body []byte) (any, error) {
			var in mergeRecurringRequest
			if err := h.decode(ctx, body, &in); err != nil {
				return nil, err
			}
			return h.recurring.Merge(ctx, in.PrimaryID, in.DuplicateIDs, in.DryRun)
		},
		OpCleanupOrphanedRecurringGames: func(ctx context.Context, body []byte) (any, error) {
			var in dryRunRequest
			if err := h.decode(ctx, body, &in); err != nil {
				return nil, err
			}
			return h.recurring.CleanupOrphans(ctx, in.DryRun)
		},
		OpReresolveRecurringVenues: func(ctx context.Context, body []byte) (any, error) {
			var in dryRunRequest
			if err := h.decode(ctx, body, &in); err != nil {
				return nil, err
			}
			return h.recurring.ReresolveVenues(ctx, in.DryRun)
		},
		OpRecordMissedInstance: func(ctx context.Context, body []byte) (any, error) {
			var in usecase.MissedInstanceInput
			if err := h.decode(ctx, body, &in); err != nil {
				return nil, err
			}
			return h.recurring.RecordMissedInstance(ctx, in)
		},
		OpDetectRecurringGaps: func(ctx context.Context, body []byte) (any, error) {
			var in usecase.GapOptions
			if err := h.decode(ctx, body, &in); err != nil {
				return nil, err
			}
			return h.recurring.DetectGaps(ctx, in)
		},
		OpGetRecurringComplianceReport: func(ctx context.Context, body []byte) (any, error) {
			var in venueFilterRequest
			if err := h.decode(ctx, body, &in); err != nil {
				return nil, err
			}
			return h.recurring.ComplianceReport(ctx, in.VenueID)
		},
	}
}

func operationNames(ops map[string]operation) []string {
	names := make([]string, 0, len(ops))
	for name := range ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
