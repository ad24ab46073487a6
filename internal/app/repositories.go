package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/tournament-reconciler/internal/config"
	"github.com/riskibarqy/tournament-reconciler/internal/domain/game"
	"github.com/riskibarqy/tournament-reconciler/internal/domain/recurring"
	"github.com/riskibarqy/tournament-reconciler/internal/domain/series"
	"github.com/riskibarqy/tournament-reconciler/internal/domain/social"
	"github.com/riskibarqy/tournament-reconciler/internal/domain/venue"
	cacherepo "github.com/riskibarqy/tournament-reconciler/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/tournament-reconciler/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/tournament-reconciler/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/cache"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/logging"
)

const (
	dbMaxOpenConns    = 10
	dbMaxIdleConns    = 5
	dbConnMaxLifetime = 30 * time.Minute
	dbPingTimeout     = 5 * time.Second
)

// Repositories is one storage backend seen through the domain ports.
type Repositories struct {
	Games      game.Repository
	Venues     venue.Repository
	Series     series.Repository
	Recurring  recurring.Repository
	Instances  recurring.InstanceRepository
	Posts      social.PostRepository
	GameData   social.GameDataRepository
	Placements social.PlacementRepository
	Links      social.LinkRepository
}

// OpenRepositories builds the backend selected by STORE_BACKEND. The returned
// func releases the database handle, if any.
func OpenRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (Repositories, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var (
		repos   Repositories
		closeFn = func() error { return nil }
	)
	switch cfg.StoreBackend {
	case config.StorePostgres:
		db, err := OpenDB(ctx, cfg)
		if err != nil {
			return Repositories{}, nil, err
		}
		if cfg.SeedOnStart {
			if err := postgres.BootstrapSeed(ctx, db); err != nil {
				_ = db.Close()
				return Repositories{}, nil, fmt.Errorf("bootstrap seed: %w", err)
			}
		}
		catalog := postgres.NewCatalog(db)
		repos = Repositories{
			Games:      catalog.Games,
			Venues:     catalog.Venues,
			Series:     catalog.Series,
			Recurring:  catalog.Recurring,
			Instances:  catalog.Instances,
			Posts:      catalog.Posts,
			GameData:   catalog.GameData,
			Placements: catalog.Placements,
			Links:      catalog.Links,
		}
		closeFn = db.Close
		logger.Info("postgres catalog ready", "db_name", dbNameFromURL(cfg.DBURL), "seeded", cfg.SeedOnStart)
	default:
		repos = NewMemoryRepositories(cfg.SeedOnStart, nil, nil)
		logger.Info("memory catalog ready", "seeded", cfg.SeedOnStart)
	}

	if cfg.CacheEnabled {
		store := cache.NewStore(cfg.CacheTTL)
		repos.Series = cacherepo.NewSeriesRepository(repos.Series, store)
		repos.Recurring = cacherepo.NewRecurringRepository(repos.Recurring, store)
	}

	return repos, closeFn, nil
}

// NewMemoryRepositories builds the in-process catalog, optionally loaded with
// the reference venues, titles and recurring templates.
func NewMemoryRepositories(seed bool, games []game.Game, posts []social.Post) Repositories {
	var (
		venues    []venue.Venue
		titles    []series.Title
		templates []recurring.RecurringGame
	)
	if seed {
		venues = memory.SeedVenues()
		titles = memory.SeedSeriesTitles()
		templates = memory.SeedRecurringGames()
	}

	store := memory.NewSocialRepository(posts)
	return Repositories{
		Games:      memory.NewGameRepository(games),
		Venues:     memory.NewVenueRepository(venues),
		Series:     memory.NewSeriesRepository(titles, nil),
		Recurring:  memory.NewRecurringRepository(templates),
		Instances:  memory.NewInstanceRepository(),
		Posts:      store.Posts(),
		GameData:   store.GameData(),
		Placements: store.Placements(),
		Links:      store.Links(),
	}
}

// OpenDB opens a traced sqlx handle and checks connectivity.
func OpenDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBSSLMode)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(dbMaxOpenConns)
	db.SetMaxIdleConns(dbMaxIdleConns)
	db.SetConnMaxLifetime(dbConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}
