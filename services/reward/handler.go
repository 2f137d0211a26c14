package reward

import (
	"net/http"

	"smallbiznis-promotion/pkg/errutil"
	"smallbiznis-promotion/pkg/middleware"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRewardRequest struct {
	Type         string `json:"type"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	GrantCommand string `json:"grantCommand"`
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/rewards", h.CreateReward)
	r.GET("/rewards/:id", h.GetReward)
}

func (h *Handler) CreateReward(c *gin.Context) {
	var req createRewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, errutil.ValidationFailed("invalid request body", err))
		return
	}

	reward, err := h.service.CreateReward(c.Request.Context(), CreateRewardInput(req))
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, reward)
}

func (h *Handler) GetReward(c *gin.Context) {
	reward, err := h.service.GetReward(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, reward)
}
