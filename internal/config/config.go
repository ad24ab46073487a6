package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/tournament-reconciler/internal/platform/logging"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/resilience"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                     string
	ServiceName                string
	ServiceVersion             string
	HTTPAddr                   string
	ReadTimeout                time.Duration
	WriteTimeout               time.Duration
	CORSAllowedOrigins         []string
	OpsToken                   string
	StoreBackend               string
	DBURL                      string
	DBSSLMode                  string
	SeedOnStart                bool
	CacheEnabled               bool
	CacheTTL                   time.Duration
	VenueCacheTTL              time.Duration
	MatchAutoLinkThreshold     float64
	MatchMinConfidence         float64
	MatchLookbackDays          int
	MatchLookaheadDays         int
	MatchMaxCandidates         int
	RecurringHighConfidence    float64
	RecurringMediumConfidence  float64
	RecurringCrossDaySuggest   float64
	SocialBatchWorkers         int
	SaveGame                   Dependency
	SocialAggregator           Dependency
	MetricsEnabled             bool
	PprofEnabled               bool
	PprofAddr                  string
	UptraceEnabled             bool
	UptraceDSN                 string
	UptraceCaptureRequestBody  bool
	UptraceRequestBodyMaxBytes int
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
	LogLevel                   logging.Level
}

// Dependency is an outbound HTTP collaborator. An empty BaseURL means the
// collaborator is not configured and a no-op stands in for it.
type Dependency struct {
	BaseURL        string
	Token          string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

func (d Dependency) Enabled() bool {
	return strings.TrimSpace(d.BaseURL) != ""
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	storeBackend := strings.ToLower(strings.TrimSpace(getEnv("STORE_BACKEND", StoreMemory)))
	if storeBackend != StoreMemory && storeBackend != StorePostgres {
		return Config{}, fmt.Errorf("invalid STORE_BACKEND %q: valid values are %s, %s", storeBackend, StoreMemory, StorePostgres)
	}
	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	if storeBackend == StorePostgres && dbURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when STORE_BACKEND=postgres")
	}
	sslModeDefault := "require"
	if appEnv == EnvDev {
		sslModeDefault = "disable"
	}
	dbSSLMode := strings.ToLower(strings.TrimSpace(getEnv("DB_SSLMODE", sslModeDefault)))
	switch dbSSLMode {
	case "disable", "require", "verify-ca", "verify-full":
	default:
		return Config{}, fmt.Errorf("invalid DB_SSLMODE %q", dbSSLMode)
	}
	seedOnStart, err := strconv.ParseBool(getEnv("SEED_ON_START", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SEED_ON_START: %w", err)
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := getEnvAsPositiveDuration("CACHE_TTL", "1m")
	if err != nil {
		return Config{}, err
	}
	venueCacheTTL, err := getEnvAsPositiveDuration("VENUE_CACHE_TTL", "5m")
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := getEnvAsPositiveDuration("HTTP_READ_TIMEOUT", "15s")
	if err != nil {
		return Config{}, err
	}
	writeTimeout, err := getEnvAsPositiveDuration("HTTP_WRITE_TIMEOUT", "60s")
	if err != nil {
		return Config{}, err
	}

	matchAutoLink, err := getEnvAsScore("MATCH_AUTO_LINK_THRESHOLD", 80)
	if err != nil {
		return Config{}, err
	}
	matchMinConfidence, err := getEnvAsScore("MATCH_MIN_CONFIDENCE", 25)
	if err != nil {
		return Config{}, err
	}
	if matchMinConfidence > matchAutoLink {
		return Config{}, fmt.Errorf("MATCH_MIN_CONFIDENCE must be <= MATCH_AUTO_LINK_THRESHOLD")
	}
	matchLookbackDays, err := getEnvAsPositiveInt("MATCH_LOOKBACK_DAYS", 2)
	if err != nil {
		return Config{}, err
	}
	matchLookaheadDays, err := getEnvAsPositiveInt("MATCH_LOOKAHEAD_DAYS", 1)
	if err != nil {
		return Config{}, err
	}
	matchMaxCandidates, err := getEnvAsPositiveInt("MATCH_MAX_CANDIDATES", 10)
	if err != nil {
		return Config{}, err
	}

	recurringHigh, err := getEnvAsScore("RECURRING_HIGH_CONFIDENCE", 85)
	if err != nil {
		return Config{}, err
	}
	recurringMedium, err := getEnvAsScore("RECURRING_MEDIUM_CONFIDENCE", 65)
	if err != nil {
		return Config{}, err
	}
	if recurringMedium > recurringHigh {
		return Config{}, fmt.Errorf("RECURRING_MEDIUM_CONFIDENCE must be <= RECURRING_HIGH_CONFIDENCE")
	}
	recurringCrossDay, err := getEnvAsScore("RECURRING_CROSS_DAY_SUGGESTION", 75)
	if err != nil {
		return Config{}, err
	}

	socialBatchWorkers, err := getEnvAsPositiveInt("SOCIAL_BATCH_WORKERS", 1)
	if err != nil {
		return Config{}, err
	}

	saveGame, err := loadDependency("SAVE_GAME")
	if err != nil {
		return Config{}, err
	}
	socialAggregator, err := loadDependency("SOCIAL_AGGREGATOR")
	if err != nil {
		return Config{}, err
	}

	metricsEnabled, err := strconv.ParseBool(getEnv("METRICS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse METRICS_ENABLED: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceCaptureRequestBody, err := strconv.ParseBool(getEnv("UPTRACE_CAPTURE_REQUEST_BODY", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_CAPTURE_REQUEST_BODY: %w", err)
	}
	uptraceRequestBodyMaxBytes, err := getEnvAsPositiveInt("UPTRACE_REQUEST_BODY_MAX_BYTES", 8192)
	if err != nil {
		return Config{}, err
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := getEnvAsPositiveDuration("PYROSCOPE_UPLOAD_RATE", "15s")
	if err != nil {
		return Config{}, err
	}

	serviceName := getEnv("APP_SERVICE_NAME", "tournament-reconciler")

	return Config{
		AppEnv:                     appEnv,
		ServiceName:                serviceName,
		ServiceVersion:             getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                   getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:                readTimeout,
		WriteTimeout:               writeTimeout,
		CORSAllowedOrigins:         splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		OpsToken:                   strings.TrimSpace(getEnv("OPS_TOKEN", "")),
		StoreBackend:               storeBackend,
		DBURL:                      dbURL,
		DBSSLMode:                  dbSSLMode,
		SeedOnStart:                seedOnStart,
		CacheEnabled:               cacheEnabled,
		CacheTTL:                   cacheTTL,
		VenueCacheTTL:              venueCacheTTL,
		MatchAutoLinkThreshold:     matchAutoLink,
		MatchMinConfidence:         matchMinConfidence,
		MatchLookbackDays:          matchLookbackDays,
		MatchLookaheadDays:         matchLookaheadDays,
		MatchMaxCandidates:         matchMaxCandidates,
		RecurringHighConfidence:    recurringHigh,
		RecurringMediumConfidence:  recurringMedium,
		RecurringCrossDaySuggest:   recurringCrossDay,
		SocialBatchWorkers:         socialBatchWorkers,
		SaveGame:                   saveGame,
		SocialAggregator:           socialAggregator,
		MetricsEnabled:             metricsEnabled,
		PprofEnabled:               pprofEnabled,
		PprofAddr:                  pprofAddr,
		UptraceEnabled:             uptraceEnabled,
		UptraceDSN:                 uptraceDSN,
		UptraceCaptureRequestBody:  uptraceCaptureRequestBody,
		UptraceRequestBodyMaxBytes: uptraceRequestBodyMaxBytes,
		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAppName:           getEnv("PYROSCOPE_APP_NAME", serviceName),
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,
		LogLevel:                   logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
	}, nil
}

// loadDependency reads <PREFIX>_BASE_URL, _TOKEN, _TIMEOUT and the
// _CIRCUIT_* breaker settings.
func loadDependency(prefix string) (Dependency, error) {
	def := resilience.DefaultCircuitBreakerConfig()
	timeout, err := getEnvAsPositiveDuration(prefix+"_TIMEOUT", "10s")
	if err != nil {
		return Dependency{}, err
	}
	circuitEnabled, err := strconv.ParseBool(getEnv(prefix+"_CIRCUIT_ENABLED", strconv.FormatBool(def.Enabled)))
	if err != nil {
		return Dependency{}, fmt.Errorf("parse %s_CIRCUIT_ENABLED: %w", prefix, err)
	}
	failureCount, err := getEnvAsPositiveInt(prefix+"_CIRCUIT_FAILURE_COUNT", def.FailureThreshold)
	if err != nil {
		return Dependency{}, err
	}
	openTimeout, err := getEnvAsPositiveDuration(prefix+"_CIRCUIT_OPEN_TIMEOUT", def.OpenTimeout.String())
	if err != nil {
		return Dependency{}, err
	}
	halfOpenMaxReq, err := getEnvAsPositiveInt(prefix+"_CIRCUIT_HALF_OPEN_MAX_REQ", def.HalfOpenMaxReq)
	if err != nil {
		return Dependency{}, err
	}

	return Dependency{
		BaseURL: strings.TrimRight(strings.TrimSpace(getEnv(prefix+"_BASE_URL", "")), "/"),
		Token:   strings.TrimSpace(getEnv(prefix+"_TOKEN", "")),
		Timeout: timeout,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          circuitEnabled,
			FailureThreshold: failureCount,
			OpenTimeout:      openTimeout,
			HalfOpenMaxReq:   halfOpenMaxReq,
		},
	}, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsPositiveInt(key string, fallback int) (int, error) {
	out, err := getEnvAsInt(key, fallback)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}

func getEnvAsPositiveDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}

// getEnvAsScore reads a confidence value on the 0-100 scale.
func getEnvAsScore(key string, fallback float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	out, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 || out > 100 {
		return 0, fmt.Errorf("%s must be within (0, 100]", key)
	}
	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
