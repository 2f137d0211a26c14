package gamesim

import (
	"net/http"

	"smallbiznis-promotion/pkg/errutil"
	"smallbiznis-promotion/pkg/middleware"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	sim *Simulator
}

func NewHandler(sim *Simulator) *Handler {
	return &Handler{sim: sim}
}

type commandRequest struct {
	UserID string `json:"userId" binding:"required"`
	Field  string `json:"field" binding:"required"`
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/commands/:cmd", h.Command)
}

func (h *Handler) Command(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, errutil.ValidationFailed("userId and field are required", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"value": h.sim.Value(req.Field)})
}
