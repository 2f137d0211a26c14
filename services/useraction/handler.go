package useraction

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

type createUserActionRequest struct {
	Cmd   string `json:"cmd"`
	Field string `json:"field"`
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/user-actions", h.CreateUserAction)
	r.GET("/user-actions", h.ListUserActions)
}

func (h *Handler) CreateUserAction(c *gin.Context) {
	var req createUserActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, errutil.ValidationFailed("invalid request body", err))
		return
	}

	action, err := h.service.CreateUserAction(c.Request.Context(), CreateUserActionInput(req))
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, action)
}

func (h *Handler) ListUserActions(c *gin.Context) {
	actions, err := h.service.ListUserActions(c.Request.Context())
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": actions})
}
