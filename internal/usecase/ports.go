package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/tournament-reconciler/internal/domain/game"
	"github.com/riskibarqy/tournament-reconciler/internal/domain/recurring"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/ptr"
)

// SaveInput is the payload handed to the downstream save subsystem.
type SaveInput struct {
	Game     game.Game      `json:"game"`
	Source   SourceInfo     `json:"source"`
	Players  []PlayerInput  `json:"players,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// SaveResult mirrors the save subsystem response.
type SaveResult struct {
	Success bool   `json:"success"`
	Action  string `json:"action,omitempty"`
	GameID  string `json:"gameId,omitempty"`
	Message string `json:"message,omitempty"`
}

// GameSaver persists an enriched game through the save subsystem.
type GameSaver interface {
	Save(ctx context.Context, input SaveInput) (SaveResult, error)
}

// AggregateOptions tune a social aggregation run for one game.
type AggregateOptions struct {
	Async             bool     `json:"async"`
	TriggerFinancials bool     `json:"triggerFinancials"`
	OverridePrizepool *float64 `json:"overridePrizepool,omitempty"`
}

// AggregateResult is returned by synchronous aggregation runs.
type AggregateResult struct {
	Success         bool `json:"success"`
	LinkedPostCount int  `json:"linkedPostCount"`
	DataExtracted   bool `json:"dataExtracted"`
}

// SocialAggregator recomputes a game's social rollup after its links change.
type SocialAggregator interface {
	Aggregate(ctx context.Context, gameID string, opts AggregateOptions) (AggregateResult, error)
}

type noopGameSaver struct{}

func (noopGameSaver) Save(_ context.Context, input SaveInput) (SaveResult, error) {
	return SaveResult{Success: true, Action: "SKIPPED", GameID: input.Game.ID, Message: "no save backend configured"}, nil
}

func NewNoopGameSaver() GameSaver {
	return noopGameSaver{}
}

type noopSocialAggregator struct{}

func (noopSocialAggregator) Aggregate(_ context.Context, _ string, _ AggregateOptions) (AggregateResult, error) {
	return AggregateResult{Success: true}, nil
}

func NewNoopSocialAggregator() SocialAggregator {
	return noopSocialAggregator{}
}

// IDGenerator issues opaque identifiers for created records.
type IDGenerator interface {
	NewID() (string, error)
}

// RecurringThresholds decide how recurring template scores are applied.
type RecurringThresholds = recurring.Thresholds

func DefaultRecurringThresholds() RecurringThresholds {
	return recurring.DefaultThresholds()
}

// MatcherConfig tunes the social post to game matcher.
type MatcherConfig struct {
	AutoLinkThreshold float64
	MinConfidence     float64
	LookbackDays      int
	LookaheadDays     int
	MaxCandidates     int
}

func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{
		AutoLinkThreshold: 80,
		MinConfidence:     25,
		LookbackDays:      2,
		LookaheadDays:     1,
		MaxCandidates:     10,
	}
}

func normalizeMatcherConfig(cfg MatcherConfig) MatcherConfig {
	def := DefaultMatcherConfig()
	if cfg.AutoLinkThreshold <= 0 {
		cfg.AutoLinkThreshold = def.AutoLinkThreshold
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = def.MinConfidence
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = def.LookbackDays
	}
	if cfg.LookaheadDays <= 0 {
		cfg.LookaheadDays = def.LookaheadDays
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = def.MaxCandidates
	}
	return cfg
}

// EnrichmentOptions switch individual pipeline stages. Unset fields keep
// their defaults, so a partial options object only changes what it names.
type EnrichmentOptions struct {
	SaveToDatabase          bool  `json:"saveToDatabase"`
	SkipSatelliteResolution bool  `json:"skipSatelliteResolution"`
	SkipSeriesResolution    bool  `json:"skipSeriesResolution"`
	SkipRecurringResolution bool  `json:"skipRecurringResolution"`
	AutoCreateSeries        *bool `json:"autoCreateSeries,omitempty"`
	AutoCreateRecurring     bool  `json:"autoCreateRecurring"`
	SkipQueryKeys           bool  `json:"skipQueryKeys"`
	SkipFinancials          bool  `json:"skipFinancials"`
	// ForceUpdate re-resolves series and recurring assignments the game
	// already carries instead of keeping them.
	ForceUpdate bool `json:"forceUpdate"`
	// MatchThreshold (0-1) overrides the recurring template auto-assign cutoff.
	MatchThreshold float64 `json:"matchThreshold,omitempty"`
	// SeriesTitleThreshold (0-1) overrides the fuzzy series title cutoff.
	SeriesTitleThreshold float64 `json:"seriesTitleThreshold,omitempty"`
}

func DefaultEnrichmentOptions() EnrichmentOptions {
	return EnrichmentOptions{AutoCreateSeries: ptr.To(true)}
}

// AutoCreateSeriesEnabled defaults to true when the caller left it unset.
func (o EnrichmentOptions) AutoCreateSeriesEnabled() bool {
	return o.AutoCreateSeries == nil || *o.AutoCreateSeries
}

func (o EnrichmentOptions) seriesResolve() ResolveOptions {
	return ResolveOptions{AutoCreate: o.AutoCreateSeriesEnabled(), Force: o.ForceUpdate, Threshold: o.SeriesTitleThreshold}
}

func (o EnrichmentOptions) recurringResolve() ResolveOptions {
	return ResolveOptions{AutoCreate: o.AutoCreateRecurring, Force: o.ForceUpdate, Threshold: o.MatchThreshold}
}

// ResolveOptions tune one series or recurring resolution.
type ResolveOptions struct {
	AutoCreate bool
	// Force ignores an assignment the game already carries.
	Force bool
	// Threshold is a 0-1 cutoff: the fuzzy title score for series, the
	// template auto-assign score for recurring. Zero keeps the default.
	Threshold float64
}

// SourceInfo describes where a game record came from.
type SourceInfo struct {
	Type      string     `json:"type,omitempty"`
	SourceID  string     `json:"sourceId,omitempty"`
	URL       string     `json:"url,omitempty"`
	FetchedAt *time.Time `json:"fetchedAt,omitempty"`
}

// PlayerInput is a per-player result passed through to the save subsystem.
type PlayerInput struct {
	Name     string   `json:"name"`
	Rank     int      `json:"rank,omitempty"`
	Winnings *float64 `json:"winnings,omitempty"`
	Points   *float64 `json:"points,omitempty"`
}

// VenueInput lets a caller pin or hint the venue.
type VenueInput struct {
	VenueID   string `json:"venueId,omitempty"`
	VenueName string `json:"venueName,omitempty"`
}

// SeriesInput lets a caller pin or hint the series.
type SeriesInput struct {
	TournamentSeriesID string `json:"tournamentSeriesId,omitempty"`
	SeriesName         string `json:"seriesName,omitempty"`
	SeriesTitleID      string `json:"seriesTitleId,omitempty"`
}

// PipelineObserver receives enrichment and social processing measurements.
type PipelineObserver interface {
	ObserveStage(stage string, elapsed time.Duration)
	ObserveEnrichment(outcome string, warnings []game.Issue)
	ObserveSocialPost(contentType, status string)
	ObserveLink(linkType, action string)
}

type noopPipelineObserver struct{}

func (noopPipelineObserver) ObserveStage(string, time.Duration)     {}
func (noopPipelineObserver) ObserveEnrichment(string, []game.Issue) {}
func (noopPipelineObserver) ObserveSocialPost(string, string)       {}
func (noopPipelineObserver) ObserveLink(string, string)             {}

func NewNoopPipelineObserver() PipelineObserver {
	return noopPipelineObserver{}
}
