package task

import (
	"context"

	"smallbiznis-promotion/pkg/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Client = fx.Module("asynq:client",
	fx.Provide(
		registerClient,
		NewEnqueuer,
		registerInspector,
		func(i *asynq.Inspector) Inspector { return i },
	),
)

func registerClient(rdb *redis.Client) *asynq.Client {
	client := asynq.NewClientFromRedisClient(rdb)

	if err := client.Ping(); err != nil {
		zap.L().Error("[Asynq] Failed to connect to Asynq", zap.Error(err))
	} else {
		zap.L().Info("[Asynq] Connected to Asynq")
	}

	// The redis connection is shared and closed by the redis module.
	return client
}

func registerInspector(rdb *redis.Client) *asynq.Inspector {
	return asynq.NewInspectorFromRedisClient(rdb)
}

// Server runs an asynq worker over the Queues provided by the binary.
var Server = fx.Module("asynq:server",
	fx.Provide(registerServerMux),
	fx.Invoke(registerAsynqServer),
)

// Queues maps queue name to priority weight for the worker.
type Queues map[string]int

func registerServerMux() *asynq.ServeMux {
	return asynq.NewServeMux()
}

type serverParams struct {
	fx.In
	Lifecycle fx.Lifecycle
	Config    *config.Config
	Mux       *asynq.ServeMux
	Queues    Queues
}

func registerAsynqServer(p serverParams) {
	server := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     p.Config.Redis.Addr,
			Password: p.Config.Redis.Password,
			DB:       p.Config.Redis.DB,
		},
		asynq.Config{
			Concurrency:    p.Config.Worker.Concurrency,
			RetryDelayFunc: asynq.DefaultRetryDelayFunc,
			Queues:         p.Queues,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				zap.L().Error("asynq task failed", zap.String("task_type", task.Type()), zap.Error(err))
			}),
		},
	)

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := server.Start(p.Mux); err != nil {
				zap.L().Error("[Asynq] Failed to start Asynq server", zap.Error(err))
				return err
			}
			zap.L().Info("[Asynq] Asynq server started", zap.Any("queues", p.Queues))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			server.Shutdown()
			return nil
		},
	})
}
