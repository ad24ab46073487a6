package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/tournament-reconciler/internal/domain/game"
	"github.com/riskibarqy/tournament-reconciler/internal/domain/venue"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/cache"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/logging"
)

const (
	DefaultVenueCacheTTL = 5 * time.Minute
	venueCatalogKey      = "venue:catalog"
)

// VenueResolution is what the venue stage decided for one game.
type VenueResolution struct {
	VenueID            string   `json:"venueId,omitempty"`
	VenueName          string   `json:"venueName,omitempty"`
	Status             string   `json:"status"`
	Confidence         float64  `json:"confidence"`
	MatchSource        string   `json:"matchSource"`
	SuggestedVenueName string   `json:"suggestedVenueName,omitempty"`
	VenueFee           *float64 `json:"venueFee,omitempty"`

	venue *venue.Venue
}

// VenueResolver matches free text to the venue catalog. The catalog is held in
// a process-local TTL cache.
type VenueResolver struct {
	venueRepo venue.Repository
	cache     *cache.Store
	logger    *logging.Logger
}

func NewVenueResolver(venueRepo venue.Repository, store *cache.Store, logger *logging.Logger) *VenueResolver {
	if store == nil {
		store = cache.NewStore(DefaultVenueCacheTTL)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &VenueResolver{
		venueRepo: venueRepo,
		cache:     store,
		logger:    logger,
	}
}

// Catalog returns every venue, loading through the cache.
func (r *VenueResolver) Catalog(ctx context.Context) ([]venue.Venue, error) {
	venues, err := cache.Load(ctx, r.cache, venueCatalogKey, func(ctx context.Context) ([]venue.Venue, error) {
		items, err := r.venueRepo.List(ctx)
		if err != nil {
			return nil, err
		}
		r.logger.DebugContext(ctx, "venue catalog loaded", "count", len(items))
		return items, nil
	})
	if err != nil {
		return nil, fmt.Errorf("load venue catalog: %w", err)
	}
	return venues, nil
}

// Invalidate drops the cached catalog.
func (r *VenueResolver) Invalidate() {
	r.cache.Invalidate()
}

// Get looks a venue up by id in the cached catalog, then in the repository.
func (r *VenueResolver) Get(ctx context.Context, venueID string) (venue.Venue, bool, error) {
	venueID = strings.TrimSpace(venueID)
	if venueID == "" {
		return venue.Venue{}, false, nil
	}
	venues, err := r.Catalog(ctx)
	if err != nil {
		return venue.Venue{}, false, err
	}
	for _, v := range venues {
		if v.ID == venueID {
			return v, true, nil
		}
	}
	item, ok, err := r.venueRepo.GetByID(ctx, venueID)
	if err != nil {
		return venue.Venue{}, false, fmt.Errorf("get venue: %w", err)
	}
	return item, ok, nil
}

// MatchText resolves free text against the catalog.
func (r *VenueResolver) MatchText(ctx context.Context, text string) (venue.Match, error) {
	venues, err := r.Catalog(ctx)
	if err != nil {
		return venue.Match{MatchSource: venue.SourceNone}, err
	}
	return venue.MatchText(text, venues), nil
}

// Names returns the name, short name and aliases of a venue for stripping
// from game names.
func (r *VenueResolver) Names(ctx context.Context, venueID string) []string {
	v, ok, err := r.Get(ctx, venueID)
	if err != nil || !ok {
		return nil
	}
	names := []string{v.Name}
	if v.ShortName != "" {
		names = append(names, v.ShortName)
	}
	return append(names, v.Aliases...)
}

// Resolve decides the venue for a game. A caller supplied id is a manual
// assignment; an id already on the record keeps its status; otherwise the
// venue hint, stored venue name and game name are matched in that order.
func (r *VenueResolver) Resolve(ctx context.Context, g *game.Game, input VenueInput, diag *game.Diagnostics) (VenueResolution, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.VenueResolver.Resolve")
	defer span.End()

	candidateID := strings.TrimSpace(input.VenueID)
	manual := candidateID != ""
	if !manual {
		candidateID = g.VenueID
	}

	if candidateID != "" {
		v, ok, err := r.Get(ctx, candidateID)
		if err != nil {
			return VenueResolution{}, err
		}
		if ok {
			status := game.AssignmentManuallyAssigned
			confidence := 1.0
			if !manual && g.VenueID == v.ID && (g.VenueAssignmentStatus == game.AssignmentAutoAssigned || g.VenueAssignmentStatus == game.AssignmentManuallyAssigned) {
				status = g.VenueAssignmentStatus
				if g.VenueAssignmentConfidence != nil {
					confidence = *g.VenueAssignmentConfidence
				}
			}
			res := VenueResolution{VenueID: v.ID, VenueName: v.Name, Status: status, Confidence: confidence, MatchSource: venue.SourceProvided, VenueFee: v.VenueFee, venue: &v}
			r.apply(g, res, diag)
			return res, nil
		}
		if diag != nil {
			diag.Warn("venueId", game.CodeVenueResolutionError, "venue id not found in catalog", map[string]any{"venueId": candidateID})
		}
	}

	texts := []string{input.VenueName, g.VenueName, g.Name}
	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		match, err := r.MatchText(ctx, text)
		if err != nil {
			return VenueResolution{}, err
		}
		if match.Found() {
			res := VenueResolution{
				VenueID:     match.VenueID,
				VenueName:   match.VenueName,
				Status:      game.AssignmentAutoAssigned,
				Confidence:  match.Confidence,
				MatchSource: match.MatchSource,
				venue:       match.Venue,
			}
			if match.Venue != nil {
				res.VenueFee = match.Venue.VenueFee
			}
			r.apply(g, res, diag)
			return res, nil
		}
	}

	suggestion := ""
	if hint := strings.TrimSpace(input.VenueName); hint != "" {
		suggestion = hint
	} else if g.VenueName != "" {
		suggestion = g.VenueName
	} else {
		suggestion = venue.SuggestName(g.Name)
	}
	res := VenueResolution{Status: game.AssignmentPending, MatchSource: venue.SourceNone, SuggestedVenueName: suggestion}
	r.apply(g, res, diag)
	r.logger.DebugContext(ctx, "venue unresolved", "game_name", g.Name, "suggestion", suggestion)
	return res, nil
}

func (r *VenueResolver) apply(g *game.Game, res VenueResolution, diag *game.Diagnostics) {
	game.Apply(g, diag, func(g *game.Game) {
		g.VenueAssignmentStatus = res.Status
		if res.VenueID == "" {
			if res.SuggestedVenueName != "" {
				g.SuggestedVenueName = res.SuggestedVenueName
			}
			return
		}
		g.VenueID = res.VenueID
		g.VenueName = res.VenueName
		confidence := res.Confidence
		g.VenueAssignmentConfidence = &confidence
		g.SuggestedVenueName = ""
		if g.VenueFee == nil && res.VenueFee != nil {
			fee := *res.VenueFee
			g.VenueFee = &fee
		}
		if g.EntityID == "" && res.venue != nil {
			g.EntityID = res.venue.EntityID
		}
	})
}
