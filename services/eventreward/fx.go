package eventreward

import (
	"smallbiznis-promotion/pkg/db"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("event-reward.service",
	fx.Provide(
		NewRepository,
		NewService,
		NewHandler,
		db.AsModel(func() any { return &EventReward{} }),
	),
)

var Gateway = fx.Module("event-reward.gateway",
	fx.Invoke(registerRoutes),
)

type routeParams struct {
	fx.In

	Router  *gin.RouterGroup `name:"v1"`
	Handler *Handler
}

func registerRoutes(p routeParams) {
	p.Handler.RegisterRoutes(p.Router)
}
