package event

import (
	"net/http"
	"time"

	"smallbiznis-promotion/pkg/errutil"
	"smallbiznis-promotion/pkg/middleware"
	"smallbiznis-promotion/services/condition"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createEventRequest struct {
	Title       string         `json:"title" binding:"required"`
	Description string         `json:"description"`
	StartedAt   time.Time      `json:"startedAt" binding:"required"`
	EndedAt     time.Time      `json:"endedAt" binding:"required"`
	IsActive    bool           `json:"isActive"`
	Condition   condition.Node `json:"condition"`
}

type eligibilityResponse struct {
	EventID string `json:"eventId"`
	UserID  string `json:"userId"`
	condition.Result
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/events", h.CreateEvent)
	r.GET("/events/:id", h.GetEvent)
	r.GET("/events/:id/eligibility", h.CheckUserEventCondition)
}

func (h *Handler) CreateEvent(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, errutil.ValidationFailed("invalid request body", err))
		return
	}

	event, err := h.service.CreateEvent(c.Request.Context(), CreateEventInput{
		Title:       req.Title,
		Description: req.Description,
		StartedAt:   req.StartedAt,
		EndedAt:     req.EndedAt,
		IsActive:    req.IsActive,
		Condition:   req.Condition,
	})
	if err != nil {
		middleware.Abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

func (h *Handler) GetEvent(c *gin.Context) {
	event, err := h.service.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

func (h *Handler) CheckUserEventCondition(c *gin.Context) {
	eventID, userID := c.Param("id"), c.Query("userId")

	res, err := h.service.CheckUserEventCondition(c.Request.Context(), eventID, userID)
	if err != nil {
		middleware.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, eligibilityResponse{EventID: eventID, UserID: userID, Result: res})
}
