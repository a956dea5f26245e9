package http

import "github.com/gin-gonic/gin"

// Register attaches annotation routes under /projects/:id/annotations.
func (h *Handler) Register(authed, public *gin.RouterGroup) {
	authed.POST("", h.create)
	authed.DELETE("/:annotation_id", h.delete)

	public.GET("", h.list)
	public.GET("/atom", h.listForAtom)
	public.GET("/markers", h.markers)
	public.GET("/grouped", h.grouped)
}
