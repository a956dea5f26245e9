package http

import "github.com/gin-gonic/gin"

// Register attaches project routes. The authed group requires a verified
// user; the public group admits anonymous viewers of public projects.
func (h *Handler) Register(authed, public *gin.RouterGroup) {
	authed.POST("", h.create)
	authed.GET("", h.list)
	authed.PATCH("/:id/notes", h.updateNotes)
	authed.PATCH("/:id/visibility", h.setVisibility)
	authed.POST("/:id/csv", h.attachCSV)
	authed.DELETE("/:id", h.delete)

	authed.POST("/:id/files", h.addFiles)
	authed.DELETE("/:id/files/:file_id", h.removeFile)

	public.GET("/:id", h.get)
	public.GET("/:id/files", h.listFiles)
}
