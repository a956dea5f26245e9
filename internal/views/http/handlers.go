package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/molspace/molspace-backend/internal/auth"
	"github.com/molspace/molspace-backend/internal/errs"
	"github.com/molspace/molspace-backend/internal/views/service"
)

// Handler serves the derived "shared with me" listing.
type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register attaches view routes to an authenticated group.
func (h *Handler) Register(authed *gin.RouterGroup) {
	authed.GET("/shared-with-me", h.sharedWithMe)
}

func (h *Handler) sharedWithMe(c *gin.Context) {
	shared, err := h.svc.SharedWithMe(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": shared})
}
