package config

import (
	"testing"
	"time"

	"github.com/riskibarqy/tournament-reconciler/internal/platform/resilience"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("UPTRACE_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StoreBackend != StoreMemory {
		t.Fatalf("unexpected store backend: %q", cfg.StoreBackend)
	}
	if cfg.VenueCacheTTL != 5*time.Minute {
		t.Fatalf("unexpected venue cache ttl: %s", cfg.VenueCacheTTL)
	}
	if cfg.MatchAutoLinkThreshold != 80 || cfg.MatchMinConfidence != 25 {
		t.Fatalf("unexpected matcher thresholds: %v/%v", cfg.MatchAutoLinkThreshold, cfg.MatchMinConfidence)
	}
	if cfg.RecurringHighConfidence != 85 || cfg.RecurringMediumConfidence != 65 || cfg.RecurringCrossDaySuggest != 75 {
		t.Fatalf("unexpected recurring thresholds: %+v", cfg)
	}
	if cfg.SocialBatchWorkers != 1 {
		t.Fatalf("unexpected social batch workers: %d", cfg.SocialBatchWorkers)
	}
	if cfg.SaveGame.Enabled() || cfg.SocialAggregator.Enabled() {
		t.Fatalf("expected outbound collaborators disabled without base urls")
	}
	if cfg.ServiceName != "tournament-reconciler" {
		t.Fatalf("unexpected service name: %q", cfg.ServiceName)
	}
	if got, want := cfg.SocialAggregator.CircuitBreaker, resilience.DefaultCircuitBreakerConfig(); got != want {
		t.Fatalf("unexpected default circuit config: %+v want %+v", got, want)
	}
}

func TestLoad_StoreBackendValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("STORE_BACKEND", "sqlite")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for unknown STORE_BACKEND")
		}
	})

	t.Run("postgres requires db url", func(t *testing.T) {
		t.Setenv("STORE_BACKEND", StorePostgres)
		t.Setenv("DB_URL", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when STORE_BACKEND=postgres without DB_URL")
		}
	})

	t.Run("postgres with db url", func(t *testing.T) {
		t.Setenv("STORE_BACKEND", "Postgres")
		t.Setenv("DB_URL", "postgres://localhost:5432/reconciler")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.StoreBackend != StorePostgres {
			t.Fatalf("unexpected store backend: %q", cfg.StoreBackend)
		}
	})
}

func TestLoad_DBSSLModeDefaultsByEnv(t *testing.T) {
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("DB_SSLMODE", "")

	t.Run("dev disables ssl", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.DBSSLMode != "disable" {
			t.Fatalf("unexpected dev sslmode: %q", cfg.DBSSLMode)
		}
	})

	t.Run("prod requires ssl", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvProd)
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.DBSSLMode != "require" {
			t.Fatalf("unexpected prod sslmode: %q", cfg.DBSSLMode)
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("DB_SSLMODE", "maybe")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid DB_SSLMODE")
		}
	})
}

func TestLoad_ThresholdValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "score above range", key: "MATCH_AUTO_LINK_THRESHOLD", val: "120"},
		{name: "score not a number", key: "RECURRING_HIGH_CONFIDENCE", val: "high"},
		{name: "min above auto link", key: "MATCH_MIN_CONFIDENCE", val: "90"},
		{name: "medium above high", key: "RECURRING_MEDIUM_CONFIDENCE", val: "90"},
		{name: "zero workers", key: "SOCIAL_BATCH_WORKERS", val: "0"},
		{name: "bad venue ttl", key: "VENUE_CACHE_TTL", val: "soon"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tc.key, tc.val)
			}
		})
	}
}

func TestLoad_DependencyParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("SAVE_GAME_BASE_URL", " https://games.example.com/ ")
	t.Setenv("SAVE_GAME_TOKEN", "secret")
	t.Setenv("SAVE_GAME_TIMEOUT", "3s")
	t.Setenv("SAVE_GAME_CIRCUIT_ENABLED", "false")
	t.Setenv("SAVE_GAME_CIRCUIT_FAILURE_COUNT", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.SaveGame.Enabled() {
		t.Fatalf("expected save game collaborator enabled")
	}
	if cfg.SaveGame.BaseURL != "https://games.example.com" {
		t.Fatalf("unexpected base url: %q", cfg.SaveGame.BaseURL)
	}
	if cfg.SaveGame.Token != "secret" || cfg.SaveGame.Timeout != 3*time.Second {
		t.Fatalf("unexpected save game config: %+v", cfg.SaveGame)
	}
	if cfg.SaveGame.CircuitBreaker.Enabled || cfg.SaveGame.CircuitBreaker.FailureThreshold != 7 {
		t.Fatalf("unexpected circuit config: %+v", cfg.SaveGame.CircuitBreaker)
	}

	t.Setenv("SOCIAL_AGGREGATOR_TIMEOUT", "-1s")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for negative SOCIAL_AGGREGATOR_TIMEOUT")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-other=1, uptrace-dsn=\"https://token@api.uptrace.dev?grpc=4317\"")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected uptrace dsn: %q", cfg.UptraceDSN)
	}
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SERVICE_NAME", "reconciler-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "reconciler-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default wildcard", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Fatalf("unexpected default CORS origins: %+v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("comma separated parsing", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 2 {
			t.Fatalf("unexpected CORS origins length: %d", len(cfg.CORSAllowedOrigins))
		}
		if cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
			t.Fatalf("unexpected second CORS origin: %s", cfg.CORSAllowedOrigins[1])
		}
	})
}
