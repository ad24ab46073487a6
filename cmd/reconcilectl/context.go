package main

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/riskibarqy/tournament-reconciler/internal/app"
	"github.com/riskibarqy/tournament-reconciler/internal/config"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/logging"
)

type commandContext struct {
	fixtureFlag *string
	verboseFlag *bool
	jsonOutput  *bool

	servicesOnce sync.Once
	services     app.Services
	servicesErr  error
	closeRepos   func() error
}

func newCommandContext(fixtureFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		fixtureFlag: fixtureFlag,
		verboseFlag: verboseFlag,
	}
}

func (c *commandContext) json() bool {
	return c.jsonOutput != nil && *c.jsonOutput
}

func (c *commandContext) logger() *logging.Logger {
	if c.verboseFlag == nil || !*c.verboseFlag {
		return logging.NewNop()
	}
	return logging.NewConsole(logging.LevelDebug)
}

// ensureServices wires the use case layer once, against the fixture when one
// is given and against the configured backend otherwise.
func (c *commandContext) ensureServices(ctx context.Context) (app.Services, error) {
	c.servicesOnce.Do(func() {
		logger := c.logger()
		cfg, err := config.Load()
		if err != nil {
			c.servicesErr = err
			return
		}

		var repos app.Repositories
		path := ""
		if c.fixtureFlag != nil {
			path = strings.TrimSpace(*c.fixtureFlag)
		}
		if path != "" {
			fx, err := loadFixture(path)
			if err != nil {
				c.servicesErr = err
				return
			}
			repos = app.NewMemoryRepositories(true, fx.Games, fx.Posts)
			c.closeRepos = func() error { return nil }
		} else {
			repos, c.closeRepos, err = app.OpenRepositories(ctx, cfg, logger)
			if err != nil {
				c.servicesErr = fmt.Errorf("open repositories: %w", err)
				return
			}
		}

		// Outbound collaborators stay disabled offline.
		c.services = app.NewServices(cfg, repos, nil, nil, nil, logger)
	})
	return c.services, c.servicesErr
}

func (c *commandContext) close() error {
	if c.closeRepos == nil {
		return nil
	}
	return c.closeRepos()
}
