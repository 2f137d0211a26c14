package main

import (
	"os"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"smallbiznis-promotion/pkg/cache"
	"smallbiznis-promotion/pkg/config"
	"smallbiznis-promotion/pkg/db"
	"smallbiznis-promotion/pkg/gen"
	"smallbiznis-promotion/pkg/hashistack/secretmanager"
	"smallbiznis-promotion/pkg/health"
	"smallbiznis-promotion/pkg/httpapi"
	"smallbiznis-promotion/pkg/kafka"
	"smallbiznis-promotion/pkg/logger"
	"smallbiznis-promotion/pkg/otelcol"
	"smallbiznis-promotion/pkg/profiling"
	"smallbiznis-promotion/pkg/redis"
	"smallbiznis-promotion/pkg/server"
	"smallbiznis-promotion/pkg/task"
	"smallbiznis-promotion/services/condition"
	"smallbiznis-promotion/services/event"
	"smallbiznis-promotion/services/eventreward"
	"smallbiznis-promotion/services/fulfillment"
	"smallbiznis-promotion/services/game"
	"smallbiznis-promotion/services/reward"
	"smallbiznis-promotion/services/rewardrequest"
	"smallbiznis-promotion/services/useraction"
)

func main() {
	app := fx.New(
		vault(),
		configModule(),
		logger.Module,
		otelcol.Module,
		profiling.Module,
		db.Module,
		redis.Module,
		cache.Module,
		gen.Module,
		kafka.Module,
		task.Client,
		task.Server,
		fx.Provide(provideQueues),
		health.Module,
		httpapi.Module,
		server.ProvideHTTPServer,

		condition.Module,
		game.Module,
		event.Module,
		reward.Module,
		eventreward.Module,
		rewardrequest.Module,
		rewardrequest.TaskModule,
		fulfillment.Module,
		useraction.Module,

		event.Gateway,
		reward.Gateway,
		eventreward.Gateway,
		rewardrequest.Gateway,
		useraction.Gateway,
		fxLogger,
	)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	if cfg.AppEnv == "production" {
		return fxevent.NopLogger
	}
	return &fxevent.ZapLogger{Logger: logger}
})

func vault() fx.Option {
	if !secretmanager.Enabled() {
		return fx.Options()
	}
	return secretmanager.Module
}

// Remote config requires Vault for the backend secrets.
func configModule() fx.Option {
	if os.Getenv("REMOTE_CONFIG_PROVIDER") != "" && secretmanager.Enabled() {
		return config.RemoteModule
	}
	return config.Module
}

// The worker only consumes the authority's callbacks.
func provideQueues(cfg *config.Config) task.Queues {
	return task.Queues{cfg.Game.CallbackQueue: 10}
}
