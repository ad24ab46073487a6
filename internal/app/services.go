package app

import (
	"github.com/riskibarqy/tournament-reconciler/internal/config"
	"github.com/riskibarqy/tournament-reconciler/internal/domain/recurring"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/cache"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/id"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/logging"
	"github.com/riskibarqy/tournament-reconciler/internal/usecase"
)

// Services is the wired use case layer shared by the API and the CLI.
type Services struct {
	Venues     *usecase.VenueResolver
	Enrichment *usecase.EnrichmentService
	Matcher    *usecase.GameMatcher
	Links      *usecase.LinkService
	Social     *usecase.SocialProcessor
	Recurring  *usecase.RecurringAdminService
}

func NewServices(
	cfg config.Config,
	repos Repositories,
	saver usecase.GameSaver,
	aggregator usecase.SocialAggregator,
	observer usecase.PipelineObserver,
	logger *logging.Logger,
) Services {
	if logger == nil {
		logger = logging.Default()
	}
	ids := id.NewUUIDGenerator()

	venues := usecase.NewVenueResolver(repos.Venues, cache.NewStore(cfg.VenueCacheTTL), logger)
	thresholds := recurring.Thresholds{
		HighConfidence:     cfg.RecurringHighConfidence,
		MediumConfidence:   cfg.RecurringMediumConfidence,
		CrossDaySuggestion: cfg.RecurringCrossDaySuggest,
	}

	enrichment := usecase.NewEnrichmentService(
		venues,
		usecase.NewSeriesResolver(repos.Series, venues, ids, logger),
		usecase.NewSatelliteResolver(repos.Series, logger),
		usecase.NewRecurringResolver(repos.Recurring, venues, ids, thresholds, logger),
		saver,
		observer,
		logger,
	)

	matcher := usecase.NewGameMatcher(repos.Games, venues, usecase.MatcherConfig{
		AutoLinkThreshold: cfg.MatchAutoLinkThreshold,
		MinConfidence:     cfg.MatchMinConfidence,
		LookbackDays:      cfg.MatchLookbackDays,
		LookaheadDays:     cfg.MatchLookaheadDays,
		MaxCandidates:     cfg.MatchMaxCandidates,
	}, logger)

	links := usecase.NewLinkService(repos.Posts, repos.Links, repos.Games, aggregator, ids, observer, logger)
	social := usecase.NewSocialProcessor(
		repos.Posts,
		repos.GameData,
		repos.Placements,
		repos.Links,
		repos.Games,
		venues,
		matcher,
		links,
		ids,
		observer,
		cfg.SocialBatchWorkers,
		logger,
	)

	return Services{
		Venues:     venues,
		Enrichment: enrichment,
		Matcher:    matcher,
		Links:      links,
		Social:     social,
		Recurring:  usecase.NewRecurringAdminService(repos.Recurring, repos.Instances, repos.Games, venues, ids, logger),
	}
}
