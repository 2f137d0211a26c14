package rewardrequest

import (
	"net/http"

	"smallbiznis-promotion/pkg/errutil"
	"smallbiznis-promotion/pkg/middleware"
	"smallbiznis-promotion/pkg/rediskey"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-redis/redis_rate/v10"
)

type Handler struct {
	service *Service
	limiter middleware.Limiter
	limit   redis_rate.Limit
}

// NewHandler builds the gateway handler. A nil limiter disables rate limiting
// of request creation.
func NewHandler(service *Service, limiter middleware.Limiter, limit redis_rate.Limit) *Handler {
	return &Handler{service: service, limiter: limiter, limit: limit}
}

type createRequest struct {
	EventRewardID string `json:"eventRewardId"`
	UserID        string `json:"userId"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

type resultRequest struct {
	Status Status `json:"status"`
	Reason string `json:"reason"`
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/reward-requests")
	g.POST("", middleware.RateLimit(h.limiter, h.limit, userKey), h.Create)
	g.GET("/:id", h.Get)
	g.POST("/:id/approve", h.Approve)
	g.POST("/:id/reject", h.Reject)
	g.POST("/:id/dispatch", h.Redispatch)
	g.POST("/:id/process", h.Process)
	g.POST("/:id/result", h.Result)
}

// userKey reads the user id from the body so the handler can bind it again.
func userKey(c *gin.Context) string {
	var req createRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil || req.UserID == "" {
		return ""
	}
	return rediskey.RewardRequestRate(req.UserID)
}

func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		middleware.Abort(c, errutil.ValidationFailed("invalid request body", err))
		return
	}

	rr, err := h.service.Create(c.Request.Context(), req.EventRewardID, req.UserID)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, rr)
}

func (h *Handler) Get(c *gin.Context) {
	rr, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, rr)
}

func (h *Handler) Approve(c *gin.Context) {
	rr, err := h.service.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, rr)
}

func (h *Handler) Reject(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, errutil.ValidationFailed("invalid request body", err))
		return
	}

	rr, err := h.service.Reject(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, rr)
}

func (h *Handler) Redispatch(c *gin.Context) {
	rr, err := h.service.Redispatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusAccepted, rr)
}

func (h *Handler) Process(c *gin.Context) {
	rr, err := h.service.Process(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, rr)
}

func (h *Handler) Result(c *gin.Context) {
	var req resultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, errutil.ValidationFailed("invalid request body", err))
		return
	}

	rr, err := h.service.Result(c.Request.Context(), c.Param("id"), req.Status, req.Reason)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, rr)
}
