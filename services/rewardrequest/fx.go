package rewardrequest

import (
	"smallbiznis-promotion/pkg/config"
	"smallbiznis-promotion/pkg/db"
	"smallbiznis-promotion/pkg/middleware"
	"smallbiznis-promotion/services/event"
	"smallbiznis-promotion/services/eventreward"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var Module = fx.Module("reward-request.service",
	fx.Provide(
		NewRepository,
		NewService,
		NewNotifier,
		provideHandler,
		func(s *eventreward.Service) EventRewards { return s },
		func(s *event.Service) ConditionChecker { return s },
		db.AsModel(func() any { return &RewardRequest{} }),
	),
)

var Gateway = fx.Module("reward-request.gateway",
	fx.Invoke(registerRoutes),
)

type handlerParams struct {
	fx.In

	Service *Service
	Config  *config.Config
	Redis   *redis.Client `optional:"true"`
}

func provideHandler(p handlerParams) *Handler {
	var (
		limiter middleware.Limiter
		limit   redis_rate.Limit
	)
	if p.Redis != nil && p.Config.RateLimit.RewardRequestPerMinute > 0 {
		limiter = redis_rate.NewLimiter(p.Redis)
		limit = redis_rate.PerMinute(p.Config.RateLimit.RewardRequestPerMinute)
	}
	return NewHandler(p.Service, limiter, limit)
}

type routeParams struct {
	fx.In

	Router  *gin.RouterGroup `name:"v1"`
	Handler *Handler
}

func registerRoutes(p routeParams) {
	p.Handler.RegisterRoutes(p.Router)
}
