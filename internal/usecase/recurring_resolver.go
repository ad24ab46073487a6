package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/tournament-reconciler/internal/domain/game"
	"github.com/riskibarqy/tournament-reconciler/internal/domain/recurring"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/aest"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/logging"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/ptr"
)

// RecurringResolution is the recurring stage outcome for one game.
type RecurringResolution struct {
	Status          string                   `json:"status"`
	RecurringGameID string                   `json:"recurringGameId,omitempty"`
	Name            string                   `json:"name,omitempty"`
	Confidence      float64                  `json:"confidence"`
	CandidateCount  int                      `json:"candidateCount"`
	InheritedFields []string                 `json:"inheritedFields,omitempty"`
	Created         bool                     `json:"created"`
	Template        *recurring.RecurringGame `json:"-"`
}

type RecurringResolver struct {
	recurringRepo recurring.Repository
	venues        *VenueResolver
	ids           IDGenerator
	thresholds    RecurringThresholds
	logger        *logging.Logger
	now           func() time.Time
}

func NewRecurringResolver(recurringRepo recurring.Repository, venues *VenueResolver, ids IDGenerator, thresholds RecurringThresholds, logger *logging.Logger) *RecurringResolver {
	def := DefaultRecurringThresholds()
	if thresholds.HighConfidence <= 0 {
		thresholds.HighConfidence = def.HighConfidence
	}
	if thresholds.MediumConfidence <= 0 {
		thresholds.MediumConfidence = def.MediumConfidence
	}
	if thresholds.CrossDaySuggestion <= 0 {
		thresholds.CrossDaySuggestion = def.CrossDaySuggestion
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RecurringResolver{
		recurringRepo: recurringRepo,
		venues:        venues,
		ids:           ids,
		thresholds:    thresholds,
		logger:        logger,
		now:           time.Now,
	}
}

func (r *RecurringResolver) Thresholds() RecurringThresholds {
	return r.thresholds
}

// thresholdsFor applies a per-call auto-assign cutoff. The suggestion band
// never rises above it.
func (r *RecurringResolver) thresholdsFor(opts ResolveOptions) RecurringThresholds {
	t := r.thresholds
	if opts.Threshold <= 0 || opts.Threshold > 1 {
		return t
	}
	t.HighConfidence = opts.Threshold * 100
	t.MediumConfidence = min(t.MediumConfidence, t.HighConfidence)
	return t
}

// Resolve matches the game to a template of its venue. Series games and games
// without a venue are skipped. opts.Force skips the template already on the
// record; opts.Threshold in (0,1] replaces the auto-assign cutoff.
func (r *RecurringResolver) Resolve(ctx context.Context, g *game.Game, opts ResolveOptions, diag *game.Diagnostics) (RecurringResolution, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecurringResolver.Resolve")
	defer span.End()

	if g.SeriesFlag() {
		game.Apply(g, diag, func(g *game.Game) {
			g.RecurringGameAssignmentStatus = game.AssignmentNotRecurring
		})
		return RecurringResolution{Status: game.AssignmentSkipped}, nil
	}
	if g.VenueID == "" {
		return RecurringResolution{Status: game.AssignmentSkipped}, nil
	}
	start := g.EffectiveStart()
	if start == nil {
		return RecurringResolution{Status: game.AssignmentSkipped}, nil
	}

	if !opts.Force && g.RecurringGameID != "" && (g.RecurringGameAssignmentStatus == game.AssignmentAutoAssigned || g.RecurringGameAssignmentStatus == game.AssignmentManuallyAssigned || g.RecurringGameAssignmentStatus == game.AssignmentCreatedNew) {
		template, ok, err := r.recurringRepo.GetByID(ctx, g.RecurringGameID)
		if err != nil {
			return RecurringResolution{}, fmt.Errorf("get recurring game: %w", err)
		}
		if ok {
			res := RecurringResolution{Status: g.RecurringGameAssignmentStatus, RecurringGameID: template.ID, Name: template.Name, Confidence: confidenceOf(g.RecurringGameAssignmentConfidence), Template: &template}
			res.InheritedFields = r.assign(g, template, res.Status, res.Confidence, diag)
			return res, nil
		}
	}

	templates, err := r.recurringRepo.ListByVenue(ctx, g.VenueID)
	if err != nil {
		return RecurringResolution{}, fmt.Errorf("list recurring games: %w", err)
	}
	day := aest.DayName(*start)
	candidates := recurring.Rank(g.Name, g.BuyIn, r.venues.Names(ctx, g.VenueID), day, templates)
	decision := recurring.Decide(candidates, r.thresholdsFor(opts))

	res := RecurringResolution{Status: decision.Status, CandidateCount: len(candidates)}
	if c := decision.Candidate; c != nil {
		template := c.Template
		res.RecurringGameID = template.ID
		res.Name = template.Name
		res.Confidence = c.Score / 100
		res.Template = &template
	}

	switch decision.Status {
	case game.AssignmentAutoAssigned:
		res.InheritedFields = r.assign(g, *res.Template, res.Status, res.Confidence, diag)
	case game.AssignmentSuggested, game.AssignmentSuggestCrossDay:
		confidence := res.Confidence
		game.Apply(g, diag, func(g *game.Game) {
			g.RecurringGameAssignmentStatus = decision.Status
			g.SuggestedRecurringGameID = res.RecurringGameID
			g.RecurringGameAssignmentConfidence = &confidence
		})
		res.Template = nil
	default:
		if !opts.AutoCreate {
			game.Apply(g, diag, func(g *game.Game) {
				g.RecurringGameAssignmentStatus = game.AssignmentNotRecurring
			})
			return res, nil
		}
		template, err := r.createFromGame(ctx, *g, *start)
		if err != nil {
			return RecurringResolution{}, err
		}
		res = RecurringResolution{Status: game.AssignmentCreatedNew, RecurringGameID: template.ID, Name: template.Name, Confidence: 1, CandidateCount: len(candidates), Created: true, Template: &template}
		res.InheritedFields = r.assign(g, template, res.Status, res.Confidence, diag)
	}
	return res, nil
}

func confidenceOf(p *float64) float64 {
	if p == nil {
		return 1
	}
	return *p
}

// assign links the game to the template and inherits the typical guarantee
// and accumulator settings the record does not carry.
func (r *RecurringResolver) assign(g *game.Game, template recurring.RecurringGame, status string, confidence float64, diag *game.Diagnostics) []string {
	var inherited []string
	game.Apply(g, diag, func(g *game.Game) {
		g.RecurringGameID = template.ID
		g.RecurringGameAssignmentStatus = status
		g.RecurringGameAssignmentConfidence = &confidence
		g.SuggestedRecurringGameID = ""
		g.ApplyClassification(game.RecurringClassification{RecurringGameID: template.ID})

		if g.GuaranteeAmount == nil && template.TypicalGuarantee != nil && *template.TypicalGuarantee > 0 {
			v := *template.TypicalGuarantee
			g.GuaranteeAmount = &v
			t := true
			g.HasGuarantee = &t
			inherited = append(inherited, "guaranteeAmount")
		}
		if g.HasAccumulatorTickets == nil {
			v := template.HasAccumulatorTickets
			g.HasAccumulatorTickets = &v
			inherited = append(inherited, "hasAccumulatorTickets")
		}
		if g.AccumulatorTicketValue == nil && template.AccumulatorTicketValue != nil {
			v := *template.AccumulatorTicketValue
			g.AccumulatorTicketValue = &v
			inherited = append(inherited, "accumulatorTicketValue")
		}
	})
	return inherited
}

func (r *RecurringResolver) createFromGame(ctx context.Context, g game.Game, start time.Time) (recurring.RecurringGame, error) {
	templateID, err := r.ids.NewID()
	if err != nil {
		return recurring.RecurringGame{}, fmt.Errorf("generate recurring game id: %w", err)
	}
	local := aest.ToAEST(start)
	first := aest.StartOfDay(start).UTC()
	now := r.now().UTC()
	name := recurring.MatchName(g.Name, r.venues.Names(ctx, g.VenueID))
	if name == "" {
		name = strings.TrimSpace(g.Name)
	}
	template := recurring.RecurringGame{
		ID:               templateID,
		Name:             name,
		DisplayName:      g.Name,
		VenueID:          g.VenueID,
		EntityID:         g.EntityID,
		DayOfWeek:        aest.DayName(start),
		Frequency:        recurring.FrequencyWeekly,
		IsActive:         true,
		StartTime:        local.Format("15:04"),
		FirstGameDate:    &first,
		GameType:         g.GameType,
		GameVariant:      g.GameVariant,
		TypicalBuyIn:     ptr.Clone(g.BuyIn),
		TypicalGuarantee: ptr.Clone(g.GuaranteeAmount),
		TotalGamesLinked: 1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := r.recurringRepo.Create(ctx, template); err != nil {
		return recurring.RecurringGame{}, fmt.Errorf("create recurring game: %w", err)
	}
	r.logger.InfoContext(ctx, "recurring game created", "recurring_game_id", template.ID, "name", template.Name, "venue_id", template.VenueID)
	return template, nil
}
