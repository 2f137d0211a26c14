package condition

import (
	"smallbiznis-promotion/pkg/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("condition",
	fx.Provide(ProvideEvaluator),
)

type EvaluatorParams struct {
	fx.In

	Querier Querier
	Config  *config.Config
	Logger  *zap.Logger `optional:"true"`
}

func ProvideEvaluator(p EvaluatorParams) *Evaluator {
	return NewEvaluator(p.Querier,
		WithQueryTimeout(p.Config.Game.QueryTimeout),
		WithLogger(p.Logger),
	)
}
