package gamesim

import (
	"smallbiznis-promotion/pkg/taskname"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/fx"
)

var Module = fx.Module("gamesim",
	fx.Provide(NewSimulator, NewHandler),
	fx.Invoke(register),
)

type registerParams struct {
	fx.In

	Router    *gin.RouterGroup `name:"v1"`
	Mux       *asynq.ServeMux
	Handler   *Handler
	Simulator *Simulator
}

func register(p registerParams) {
	p.Handler.RegisterRoutes(p.Router)
	p.Mux.HandleFunc(taskname.GameRewardProcess, p.Simulator.HandleGrantTask)
}
