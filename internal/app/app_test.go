package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/tournament-reconciler/internal/config"
	"github.com/riskibarqy/tournament-reconciler/internal/domain/game"
	"github.com/riskibarqy/tournament-reconciler/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/logging"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/ptr"
	"github.com/riskibarqy/tournament-reconciler/internal/usecase"
)

func testConfig() config.Config {
	return config.Config{
		AppEnv:                    config.EnvDev,
		ServiceName:               "tournament-reconciler",
		HTTPAddr:                  ":0",
		ReadTimeout:               5 * time.Second,
		WriteTimeout:              5 * time.Second,
		CORSAllowedOrigins:        []string{"*"},
		StoreBackend:              config.StoreMemory,
		SeedOnStart:               true,
		CacheEnabled:              true,
		CacheTTL:                  time.Minute,
		VenueCacheTTL:             time.Minute,
		MatchAutoLinkThreshold:    80,
		MatchMinConfidence:        25,
		MatchLookbackDays:         2,
		MatchLookaheadDays:        1,
		MatchMaxCandidates:        10,
		RecurringHighConfidence:   85,
		RecurringMediumConfidence: 65,
		RecurringCrossDaySuggest:  75,
		SocialBatchWorkers:        2,
		MetricsEnabled:            true,
	}
}

func TestNewServices_EnrichesAgainstSeededCatalog(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	repos := NewMemoryRepositories(true, nil, nil)
	services := NewServices(cfg, repos, nil, nil, nil, logging.NewNop())

	start := time.Date(2025, time.March, 6, 8, 0, 0, 0, time.UTC)
	result := services.Enrichment.Enrich(context.Background(), usecase.EnrichInput{
		EntityID: memory.EntityIDSydney,
		Venue:    &usecase.VenueInput{VenueID: memory.VenueIDStarSydney},
		Game: game.Game{
			Name:              "Thursday Grind",
			GameStartDateTime: &start,
			BuyIn:             ptr.To(120.0),
			Rake:              ptr.To(22.0),
		},
	})
	if !result.Success || result.EnrichedGame == nil {
		t.Fatalf("expected successful enrichment, got %+v", result.Validation)
	}
	if result.EnrichedGame.VenueID != memory.VenueIDStarSydney {
		t.Fatalf("unexpected venue id: %q", result.EnrichedGame.VenueID)
	}
}

func TestNewHTTPServer_MemoryBackend(t *testing.T) {
	t.Parallel()

	srv, err := NewHTTPServer(context.Background(), testConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("new http server: %v", err)
	}
	t.Cleanup(func() { _ = srv.Close() })
	if srv.HTTP.ErrorLog == nil {
		t.Fatalf("expected server errors routed through the logger")
	}

	for _, target := range []string{"/healthz", "/metrics"} {
		rec := httptest.NewRecorder()
		srv.HTTP.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s status=%d body=%s", target, rec.Code, rec.Body.String())
		}
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/ops/getRecurringGameStats", strings.NewReader(`{}`))
	srv.HTTP.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("dispatch status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestNewHTTPServer_RejectsEmptyAddr(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.HTTPAddr = ""
	if _, err := NewHTTPServer(context.Background(), cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}

func TestNewOutboundClients_DisabledFallsBackToNoop(t *testing.T) {
	t.Parallel()

	saver, aggregator, err := NewOutboundClients(testConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("new outbound clients: %v", err)
	}
	if saver == nil || aggregator == nil {
		t.Fatalf("expected no-op collaborators")
	}
}
