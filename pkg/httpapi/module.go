package httpapi

import (
	"smallbiznis-promotion/pkg/config"
	"smallbiznis-promotion/pkg/health"
	"smallbiznis-promotion/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the gin engine, the versioned route group named "v1" and
// the operational endpoints.
var Module = fx.Module("httpapi",
	fx.Provide(
		ProvideEngine,
		fx.Annotate(ProvideV1, fx.ResultTags(`name:"v1"`)),
	),
	fx.Invoke(registerOperationalEndpoints),
)

func ProvideEngine(cfg *config.Config, logger *zap.Logger) *gin.Engine {
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		otelgin.Middleware(cfg.AppName),
		middleware.Logger(logger),
		middleware.Error(),
	)
	return r
}

func ProvideV1(r *gin.Engine) *gin.RouterGroup {
	return r.Group("/v1")
}

func registerOperationalEndpoints(r *gin.Engine, h health.HealthService) {
	r.GET("/healthz", h.Liveness)
	r.GET("/readyz", h.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
