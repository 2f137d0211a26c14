package fulfillment

import (
	"smallbiznis-promotion/services/rewardrequest"

	"go.uber.org/fx"
)

var Module = fx.Module("fulfillment",
	fx.Provide(
		fx.Annotate(NewOrchestrator, fx.As(new(rewardrequest.Dispatcher))),
	),
)
