package game

import (
	"smallbiznis-promotion/pkg/config"
	"smallbiznis-promotion/pkg/task"
	"smallbiznis-promotion/services/condition"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the authority client as both the condition Querier and the
// reward Granter.
var Module = fx.Module("game.client",
	fx.Provide(
		ProvideClient,
		func(c *Client) condition.Querier { return c },
		func(c *Client) Granter { return c },
	),
)

type ClientParams struct {
	fx.In

	Config    *config.Config
	Enqueuer  task.Enqueuer
	Inspector task.Inspector `optional:"true"`
	Logger    *zap.Logger    `optional:"true"`
}

func ProvideClient(p ClientParams) *Client {
	return NewClient(Options{
		BaseURL:       p.Config.Game.URL,
		Timeout:       p.Config.Game.QueryTimeout,
		RetryCount:    p.Config.Game.RetryCount,
		Queue:         p.Config.Game.Queue,
		GrantMaxRetry: p.Config.Game.GrantMaxRetry,
	}, p.Enqueuer, p.Inspector, p.Logger)
}
