// Package socialagg asks the downstream aggregation service to recompute a
// game's social rollup.
package socialagg

import (
	"context"
	"net/url"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/tournament-reconciler/external/rpc"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/logging"
	"github.com/riskibarqy/tournament-reconciler/internal/usecase"
)

type Client struct {
	rpc *rpc.Client
}

func NewClient(cfg rpc.Config, logger *logging.Logger) (*Client, error) {
	c, err := rpc.New("social-aggregator", cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Client{rpc: c}, nil
}

var _ usecase.SocialAggregator = (*Client)(nil)

func (c *Client) Aggregate(ctx context.Context, gameID string, opts usecase.AggregateOptions) (usecase.AggregateResult, error) {
	if gameID == "" {
		return usecase.AggregateResult{}, crerr.New("game id is required")
	}

	var out usecase.AggregateResult
	path := "/v1/games/" + url.PathEscape(gameID) + "/social-aggregate"
	if err := c.rpc.PostJSON(ctx, path, opts, &out); err != nil {
		return usecase.AggregateResult{}, crerr.Wrapf(err, "aggregate social data for game %s", gameID)
	}
	return out, nil
}
