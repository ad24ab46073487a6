// Package gamesaver forwards enriched games to the downstream save service.
package gamesaver

import (
	"context"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/tournament-reconciler/external/rpc"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/logging"
	"github.com/riskibarqy/tournament-reconciler/internal/usecase"
)

const savePath = "/v1/games/save"

type Client struct {
	rpc *rpc.Client
}

func NewClient(cfg rpc.Config, logger *logging.Logger) (*Client, error) {
	c, err := rpc.New("game-saver", cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Client{rpc: c}, nil
}

var _ usecase.GameSaver = (*Client)(nil)

func (c *Client) Save(ctx context.Context, input usecase.SaveInput) (usecase.SaveResult, error) {
	var out usecase.SaveResult
	if err := c.rpc.PostJSON(ctx, savePath, input, &out); err != nil {
		return usecase.SaveResult{}, crerr.Wrapf(err, "save game %s", input.Game.ID)
	}
	if out.GameID == "" {
		out.GameID = input.Game.ID
	}
	return out, nil
}
