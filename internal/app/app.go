package app

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/riskibarqy/tournament-reconciler/external/gamesaver"
	"github.com/riskibarqy/tournament-reconciler/external/rpc"
	"github.com/riskibarqy/tournament-reconciler/external/socialagg"
	"github.com/riskibarqy/tournament-reconciler/internal/config"
	"github.com/riskibarqy/tournament-reconciler/internal/interfaces/httpapi"
	"github.com/riskibarqy/tournament-reconciler/internal/metrics"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/logging"
	"github.com/riskibarqy/tournament-reconciler/internal/usecase"
)

// Server is the HTTP service plus the resources it must release on shutdown.
type Server struct {
	HTTP  *http.Server
	close func() error
}

func (s *Server) Close() error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close()
}

func NewHTTPServer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	repos, closeRepos, err := OpenRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var (
		observer  usecase.PipelineObserver
		collector *metrics.Collector
	)
	if cfg.MetricsEnabled {
		collector, err = metrics.NewCollector()
		if err != nil {
			_ = closeRepos()
			return nil, fmt.Errorf("create metrics collector: %w", err)
		}
		observer = collector
	}

	saver, aggregator, err := NewOutboundClients(cfg, logger)
	if err != nil {
		_ = closeRepos()
		return nil, err
	}

	services := NewServices(cfg, repos, saver, aggregator, observer, logger)
	handler := httpapi.NewHandler(services.Enrichment, services.Social, services.Links, services.Recurring, logger)

	opts := httpapi.RouterOptions{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		OpsToken:           cfg.OpsToken,
	}
	if cfg.UptraceEnabled && cfg.UptraceCaptureRequestBody {
		opts.RequestBodyMaxSize = cfg.UptraceRequestBodyMaxBytes
	}
	if collector != nil {
		opts.Metrics = collector
	}
	logger.Debug("router configured",
		"cors_origins", len(opts.CORSAllowedOrigins),
		"ops_token", opts.OpsToken != "",
		"metrics", opts.Metrics != nil,
		"request_body_max_size", opts.RequestBodyMaxSize,
	)

	return &Server{
		HTTP: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      httpapi.NewRouter(handler, logger, opts),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			ErrorLog:     serverErrorLog(logger),
		},
		close: closeRepos,
	}, nil
}

// serverErrorLog routes net/http connection errors through zap.
func serverErrorLog(logger *logging.Logger) *log.Logger {
	l, err := zap.NewStdLogAt(logger.Zap().With(zap.String("component", "http_server")), zap.ErrorLevel)
	if err != nil {
		return zap.NewStdLog(logger.Zap())
	}
	return l
}

// NewOutboundClients builds the save and aggregate RPC clients. A collaborator
// without a base URL is replaced by its no-op.
func NewOutboundClients(cfg config.Config, logger *logging.Logger) (usecase.GameSaver, usecase.SocialAggregator, error) {
	saver := usecase.NewNoopGameSaver()
	if cfg.SaveGame.Enabled() {
		client, err := gamesaver.NewClient(rpcConfig(cfg.SaveGame), logger)
		if err != nil {
			return nil, nil, fmt.Errorf("create game saver client: %w", err)
		}
		saver = client
	} else {
		logger.Info("game saver disabled", "reason", "SAVE_GAME_BASE_URL empty")
	}

	aggregator := usecase.NewNoopSocialAggregator()
	if cfg.SocialAggregator.Enabled() {
		client, err := socialagg.NewClient(rpcConfig(cfg.SocialAggregator), logger)
		if err != nil {
			return nil, nil, fmt.Errorf("create social aggregator client: %w", err)
		}
		aggregator = client
	} else {
		logger.Info("social aggregator disabled", "reason", "SOCIAL_AGGREGATOR_BASE_URL empty")
	}

	return saver, aggregator, nil
}

func rpcConfig(dep config.Dependency) rpc.Config {
	return rpc.Config{
		BaseURL:        dep.BaseURL,
		Token:          dep.Token,
		Timeout:        dep.Timeout,
		CircuitBreaker: dep.CircuitBreaker,
	}
}
