package eventreward

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

type linkRewardRequest struct {
	RewardID string `json:"rewardId"`
	Qty      int    `json:"qty"`
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/events/:id/rewards", h.LinkReward)
	r.GET("/event-rewards/:id", h.GetEventReward)
}

func (h *Handler) LinkReward(c *gin.Context) {
	var req linkRewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, errutil.ValidationFailed("invalid request body", err))
		return
	}

	link, err := h.service.LinkReward(c.Request.Context(), LinkRewardInput{
		EventID:  c.Param("id"),
		RewardID: req.RewardID,
		Qty:      req.Qty,
	})
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, link)
}

func (h *Handler) GetEventReward(c *gin.Context) {
	link, err := h.service.GetEventReward(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}
