package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/molspace/molspace-backend/internal/auth"
	"github.com/molspace/molspace-backend/internal/errs"
)

type postReq struct {
	Content string `json:"content"`
}

func (h *Handler) post(c *gin.Context) {
	var req postReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	comment, err := h.svc.Post(c.Request.Context(), c.Param("id"), auth.UserID(c), req.Content)
	if err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "comment": comment})
}

func (h *Handler) list(c *gin.Context) {
	comments, err := h.svc.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "comments": comments})
}

func (h *Handler) delete(c *gin.Context) {
	requesterID := auth.UserID(c)
	isOwner, err := h.owners.IsOwner(c.Request.Context(), c.Param("id"), requesterID)
	if err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("comment_id"), requesterID, isOwner); err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
