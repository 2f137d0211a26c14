package main

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"smallbiznis-promotion/pkg/config"
	"smallbiznis-promotion/pkg/health"
	"smallbiznis-promotion/pkg/httpapi"
	"smallbiznis-promotion/pkg/logger"
	"smallbiznis-promotion/pkg/redis"
	"smallbiznis-promotion/pkg/server"
	"smallbiznis-promotion/pkg/task"
	"smallbiznis-promotion/services/gamesim"
)

// gamesim stands in for the game authority in development.
func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		redis.Module,
		task.Client,
		task.Server,
		fx.Provide(provideQueues),
		health.Module,
		httpapi.Module,
		server.ProvideHTTPServer,
		gamesim.Module,
		fx.WithLogger(func() fxevent.Logger { return fxevent.NopLogger }),
	)

	app.Run()
}

func provideQueues(cfg *config.Config) task.Queues {
	return task.Queues{cfg.Game.Queue: 10}
}
