package http

import "github.com/gin-gonic/gin"

// Register attaches comment routes under /projects/:id/comments.
func (h *Handler) Register(authed, public *gin.RouterGroup) {
	authed.POST("", h.post)
	authed.DELETE("/:comment_id", h.delete)

	public.GET("", h.list)
}
