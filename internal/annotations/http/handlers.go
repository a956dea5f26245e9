package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/molspace/molspace-backend/internal/annotations/domain"
	"github.com/molspace/molspace-backend/internal/annotations/service"
	"github.com/molspace/molspace-backend/internal/auth"
	"github.com/molspace/molspace-backend/internal/errs"
	projdomain "github.com/molspace/molspace-backend/internal/projects/domain"
)

type createReq struct {
	FileID      string  `json:"file_id"`
	AtomSerial  int     `json:"atom_serial"`
	AtomName    string  `json:"atom_name"`
	ResidueName string  `json:"residue_name"`
	ResidueID   string  `json:"residue_id"`
	Chain       string  `json:"chain"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Z           float64 `json:"z"`
	Content     string  `json:"content"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	ann, err := h.svc.Create(c.Request.Context(), service.CreateRequest{
		ProjectID: c.Param("id"),
		FileID:    projdomain.ParseFileID(req.FileID),
		UserID:    auth.UserID(c),
		Atom: domain.AtomIdentity{
			Serial:      req.AtomSerial,
			Name:        req.AtomName,
			ResidueName: req.ResidueName,
			ResidueID:   req.ResidueID,
			Chain:       req.Chain,
		},
		Position: domain.Coordinate{X: req.X, Y: req.Y, Z: req.Z},
		Content:  req.Content,
	})
	if err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "annotation": annotationJSON(*ann)})
}

func (h *Handler) list(c *gin.Context) {
	anns, err := h.svc.ListForProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "annotations": annotationsJSON(anns)})
}

func (h *Handler) listForAtom(c *gin.Context) {
	serial, err := strconv.Atoi(c.Query("serial"))
	if err != nil || serial <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "serial must be a positive integer"})
		return
	}

	scope := projdomain.ParseFileID(c.Query("file"))
	anns, err := h.svc.ListForAtom(c.Request.Context(), c.Param("id"), scope, serial)
	if err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "annotations": annotationsJSON(anns)})
}

func (h *Handler) markers(c *gin.Context) {
	scope := projdomain.ParseFileID(c.Query("file"))
	anns, err := h.svc.Markers(c.Request.Context(), c.Param("id"), scope)
	if err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "markers": annotationsJSON(anns)})
}

func (h *Handler) grouped(c *gin.Context) {
	groups, err := h.svc.Grouped(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}

	out := make([]gin.H, 0, len(groups))
	for _, g := range groups {
		out = append(out, gin.H{"file_id": g.Key, "annotations": annotationsJSON(g.Annotations)})
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "groups": out})
}

func (h *Handler) delete(c *gin.Context) {
	requesterID := auth.UserID(c)
	isOwner, err := h.owners.IsOwner(c.Request.Context(), c.Param("id"), requesterID)
	if err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("annotation_id"), requesterID, isOwner); err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// annotationJSON flattens the internal model to the wire shape, writing the
// file scope out as its sentinel-or-id key.
func annotationJSON(a domain.Annotation) gin.H {
	out := gin.H{
		"id":           a.ID,
		"project_id":   a.ProjectID,
		"file_id":      a.FileKey(),
		"user_id":      a.UserID,
		"atom_serial":  a.Atom.Serial,
		"atom_name":    a.Atom.Name,
		"residue_name": a.Atom.ResidueName,
		"residue_id":   a.Atom.ResidueID,
		"chain":        a.Atom.Chain,
		"x":            a.Position.X,
		"y":            a.Position.Y,
		"z":            a.Position.Z,
		"content":      a.Content,
		"created_at":   a.CreatedAt,
	}
	if a.Author != nil {
		out["author"] = a.Author
	}
	return out
}

func annotationsJSON(anns []domain.Annotation) []gin.H {
	out := make([]gin.H, 0, len(anns))
	for _, a := range anns {
		out = append(out, annotationJSON(a))
	}
	return out
}
