package usecase

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/tournament-reconciler/internal/domain/game"
	"github.com/riskibarqy/tournament-reconciler/internal/domain/recurring"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/logging"
)

// Stage names, in pipeline order.
const (
	StageValidate       = "validate"
	StageComplete       = "complete_data"
	StageSeriesMetadata = "series_metadata"
	StageClassification = "classification"
	StageDuration       = "duration"
	StageVenue          = "venue"
	StageSeries         = "series"
	StageSatellite      = "satellite"
	StageRecurring      = "recurring"
	StageAccumulator    = "accumulator_tickets"
	StageRegular        = "is_regular"
	StageQueryKeys      = "query_keys"
	StageFinancials     = "financials"
	StageSave           = "save"
)

// Enrichment outcomes reported to the observer.
const (
	EnrichmentSucceeded  = "success"
	EnrichmentInvalid    = "invalid"
	EnrichmentFailed     = "error"
	EnrichmentSaveFailed = "save_failed"
)

type EnrichInput struct {
	Game     game.Game          `json:"game" validate:"required"`
	EntityID string             `json:"entityId"`
	Source   SourceInfo         `json:"source"`
	Venue    *VenueInput        `json:"venue,omitempty"`
	Series   *SeriesInput       `json:"series,omitempty"`
	Players  []PlayerInput      `json:"players,omitempty"`
	Options  *EnrichmentOptions `json:"options,omitempty"`
}

type ValidationSummary struct {
	IsValid  bool         `json:"isValid"`
	Errors   []game.Issue `json:"errors"`
	Warnings []game.Issue `json:"warnings"`
}

// EnrichmentMetadata reports what each stage did.
type EnrichmentMetadata struct {
	FieldsCompleted        []string             `json:"fieldsCompleted"`
	Venue                  *VenueResolution     `json:"venueResolution,omitempty"`
	Series                 *SeriesResolution    `json:"seriesResolution,omitempty"`
	Satellite              *SatelliteResolution `json:"satelliteResolution,omitempty"`
	Recurring              *RecurringResolution `json:"recurringResolution,omitempty"`
	Financials             *game.Financials     `json:"financials,omitempty"`
	AccumulatorTicketsPaid *int                 `json:"accumulatorTicketsPaid,omitempty"`
	QueryKeysComputed      bool                 `json:"queryKeysComputed"`
	ProcessingTimeMs       int64                `json:"processingTimeMs"`
}

type EnrichResult struct {
	Success            bool               `json:"success"`
	Validation         ValidationSummary  `json:"validation"`
	EnrichedGame       *game.Game         `json:"enrichedGame,omitempty"`
	EnrichmentMetadata EnrichmentMetadata `json:"enrichmentMetadata"`
	SaveResult         *SaveResult        `json:"saveResult,omitempty"`
}

// EnrichmentService runs the ordered enrichment pipeline over one game.
type EnrichmentService struct {
	venues    *VenueResolver
	series    *SeriesResolver
	satellite *SatelliteResolver
	recurring *RecurringResolver
	saver     GameSaver
	observer  PipelineObserver
	logger    *logging.Logger
	now       func() time.Time
}

func NewEnrichmentService(
	venues *VenueResolver,
	seriesResolver *SeriesResolver,
	satelliteResolver *SatelliteResolver,
	recurringResolver *RecurringResolver,
	saver GameSaver,
	observer PipelineObserver,
	logger *logging.Logger,
) *EnrichmentService {
	if saver == nil {
		saver = NewNoopGameSaver()
	}
	if observer == nil {
		observer = NewNoopPipelineObserver()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &EnrichmentService{
		venues:    venues,
		series:    seriesResolver,
		satellite: satelliteResolver,
		recurring: recurringResolver,
		saver:     saver,
		observer:  observer,
		logger:    logger,
		now:       time.Now,
	}
}

// Enrich validates, completes and resolves a game. Resolver failures become
// warnings; an unexpected failure is reported as ENRICHMENT_ERROR with the
// partial record.
func (s *EnrichmentService) Enrich(ctx context.Context, input EnrichInput) (result EnrichResult) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EnrichmentService.Enrich",
		attribute.String("reconciler.entity_id", input.EntityID))
	defer span.End()

	started := s.now()
	opts := DefaultEnrichmentOptions()
	if input.Options != nil {
		opts = *input.Options
	}
	diag := game.NewDiagnostics()
	var g game.Game

	defer func() {
		if rec := recover(); rec != nil {
			s.logger.ErrorContext(ctx, "enrichment pipeline panicked", "panic", fmt.Sprint(rec), "stack", string(debug.Stack()))
			diag.Error(game.SystemField, game.CodeEnrichmentError, fmt.Sprintf("enrichment failed: %v", rec), nil)
			failSpan(span, fmt.Errorf("enrichment panicked: %v", rec))
			partial := g
			result = EnrichResult{EnrichedGame: &partial}
		}
		result.Validation = ValidationSummary{IsValid: !diag.HasErrors(), Errors: diag.Errors, Warnings: diag.Warnings}
		result.EnrichmentMetadata.FieldsCompleted = diag.FieldsCompleted
		result.EnrichmentMetadata.ProcessingTimeMs = s.now().Sub(started).Milliseconds()
		outcome := EnrichmentSucceeded
		switch {
		case diag.HasErrors() && result.EnrichedGame == nil:
			outcome = EnrichmentInvalid
		case diag.HasErrors():
			outcome = EnrichmentFailed
		case result.SaveResult != nil && !result.SaveResult.Success:
			outcome = EnrichmentSaveFailed
		}
		result.Success = !diag.HasErrors()
		s.observer.ObserveEnrichment(outcome, diag.Warnings)
	}()

	var validation game.ValidationResult
	s.stage(StageValidate, func() {
		validation = game.ValidateGameData(input.Game, input.EntityID)
	})
	diag.Errors = append(diag.Errors, validation.Errors...)
	diag.Warnings = append(diag.Warnings, validation.Warnings...)
	if !validation.IsValid {
		return EnrichResult{}
	}
	g = validation.Corrected

	s.stage(StageComplete, func() {
		game.Apply(&g, diag, game.CompleteData)
	})
	if g.IsTournament() {
		s.stage(StageSeriesMetadata, func() {
			game.Apply(&g, diag, game.CompleteSeriesMetadata)
		})
	}
	s.stage(StageClassification, func() {
		now := s.now()
		game.Apply(&g, diag, func(g *game.Game) { game.DeriveClassification(g, now) })
	})
	s.stage(StageDuration, func() {
		game.Apply(&g, diag, func(g *game.Game) { game.CompleteDuration(g, diag) })
	})

	meta := &result.EnrichmentMetadata

	s.stage(StageVenue, func() {
		venueInput := VenueInput{}
		if input.Venue != nil {
			venueInput = *input.Venue
		}
		res, err := s.venues.Resolve(ctx, &g, venueInput, diag)
		if err != nil {
			s.logger.WarnContext(ctx, "venue resolution failed", "game_name", g.Name, "error", err)
			diag.Warn("venueId", game.CodeVenueResolutionError, err.Error(), nil)
			return
		}
		meta.Venue = &res
	})

	if g.IsTournament() && !opts.SkipSeriesResolution {
		s.stage(StageSeries, func() {
			seriesInput := SeriesInput{}
			if input.Series != nil {
				seriesInput = *input.Series
			}
			res, err := s.series.Resolve(ctx, &g, seriesInput, opts.seriesResolve(), diag)
			if err != nil {
				s.logger.WarnContext(ctx, "series resolution failed", "game_name", g.Name, "error", err)
				diag.Warn("tournamentSeriesId", game.CodeSeriesResolutionError, err.Error(), nil)
				return
			}
			meta.Series = &res
		})
	}

	if g.IsTournament() && !opts.SkipSatelliteResolution {
		s.stage(StageSatellite, func() {
			res, err := s.satellite.Resolve(ctx, &g, diag)
			if err != nil {
				s.logger.WarnContext(ctx, "satellite resolution failed", "game_name", g.Name, "error", err)
				diag.Warn("isSatellite", game.CodeSatelliteResolutionError, err.Error(), nil)
				return
			}
			meta.Satellite = &res
		})
	}

	var template *recurring.RecurringGame
	if !opts.SkipRecurringResolution {
		s.stage(StageRecurring, func() {
			res, err := s.recurring.Resolve(ctx, &g, opts.recurringResolve(), diag)
			if err != nil {
				s.logger.WarnContext(ctx, "recurring resolution failed", "game_name", g.Name, "error", err)
				diag.Warn("recurringGameId", game.CodeRecurringResolutionError, err.Error(), nil)
				return
			}
			template = res.Template
			meta.Recurring = &res
		})
	}

	s.stage(StageAccumulator, func() {
		paid := 0
		if template != nil && template.HasAccumulatorTickets {
			paid = recurring.AccumulatorTickets(g.EntryCount())
		}
		game.Apply(&g, diag, func(g *game.Game) {
			n := paid
			g.NumberOfAccumulatorTicketsPaid = &n
		})
		meta.AccumulatorTicketsPaid = &paid
	})

	s.stage(StageRegular, func() {
		game.Apply(&g, diag, func(g *game.Game) { g.ApplyClassification(g.Classify()) })
	})

	if !opts.SkipQueryKeys {
		s.stage(StageQueryKeys, func() {
			game.Apply(&g, diag, game.ComputeQueryKeys)
			meta.QueryKeysComputed = g.GameYearMonth != ""
		})
	}

	if !opts.SkipFinancials {
		s.stage(StageFinancials, func() {
			game.Apply(&g, diag, func(g *game.Game) {
				if fin, ok := game.CalculateFinancials(g, diag); ok {
					meta.Financials = &fin
				}
				game.SanitizeNumbers(g)
			})
		})
	}

	if opts.SaveToDatabase {
		s.stage(StageSave, func() {
			res := s.save(ctx, g, input, diag)
			result.SaveResult = &res
		})
	}

	enriched := g
	result.EnrichedGame = &enriched
	s.logger.DebugContext(ctx, "game enriched", "game_name", g.Name, "fields_completed", len(diag.FieldsCompleted), "warnings", len(diag.Warnings))
	return result
}

func (s *EnrichmentService) stage(name string, run func()) {
	started := s.now()
	run()
	s.observer.ObserveStage(name, s.now().Sub(started))
}

func (s *EnrichmentService) save(ctx context.Context, g game.Game, input EnrichInput, diag *game.Diagnostics) SaveResult {
	payload := SaveInput{
		Game:    g,
		Source:  input.Source,
		Players: input.Players,
		Metadata: map[string]any{
			"fieldsCompleted": diag.FieldsCompleted,
			"warningCount":    len(diag.Warnings),
		},
	}
	res, err := s.saver.Save(ctx, payload)
	if err != nil {
		s.logger.WarnContext(ctx, "save game failed", "game_name", g.Name, "error", err)
		diag.Warn(game.SystemField, game.CodeSaveError, err.Error(), nil)
		return SaveResult{Success: false, Message: err.Error()}
	}
	if !res.Success {
		s.logger.WarnContext(ctx, "save game rejected", "game_name", g.Name, "message", res.Message)
		diag.Warn(game.SystemField, game.CodeSaveFailed, "save subsystem reported failure", map[string]any{"message": res.Message})
	}
	return res
}
