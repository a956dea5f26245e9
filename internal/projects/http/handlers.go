package http

import (
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/molspace/molspace-backend/internal/auth"
	"github.com/molspace/molspace-backend/internal/errs"
	"github.com/molspace/molspace-backend/internal/projects/service"
)

const maxUploadBytes = 50 << 20

func (h *Handler) create(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxUploadBytes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid multipart body"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid multipart body"})
		return
	}

	uploads, closeAll, err := openUploads(form.File["files"])
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "unreadable upload"})
		return
	}
	defer closeAll()

	req := service.CreateRequest{
		OwnerID: auth.UserID(c),
		Title:   c.PostForm("title"),
		Notes:   c.PostForm("notes"),
		Files:   uploads,
	}

	if csvHeaders := form.File["csv_file"]; len(csvHeaders) > 0 {
		csvUploads, closeCSV, err := openUploads(csvHeaders[:1])
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "unreadable csv upload"})
			return
		}
		defer closeCSV()
		req.CSV = &csvUploads[0]
	}

	p, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.ListOwn(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

func (h *Handler) get(c *gin.Context) {
	view, err := h.svc.Get(c.Request.Context(), c.Param("id"), auth.UserID(c))
	if err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}

	// Telemetry only. Never blocks or fails the read.
	h.views.RecordView(c.Request.Context(), view.Project.ID, auth.UserIDPtr(c))

	c.JSON(http.StatusOK, gin.H{"ok": true, "project": view.Project, "files": view.Files, "is_owner": view.IsOwner})
}

func (h *Handler) listFiles(c *gin.Context) {
	view, err := h.svc.Get(c.Request.Context(), c.Param("id"), auth.UserID(c))
	if err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "files": view.Files})
}

type notesReq struct {
	Notes string `json:"notes"`
}

func (h *Handler) updateNotes(c *gin.Context) {
	var req notesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	if err := h.svc.UpdateNotes(c.Request.Context(), c.Param("id"), auth.UserID(c), req.Notes); err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type visibilityReq struct {
	IsPublic *bool `json:"is_public"`
}

func (h *Handler) setVisibility(c *gin.Context) {
	var req visibilityReq
	if err := c.ShouldBindJSON(&req); err != nil || req.IsPublic == nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	if err := h.svc.SetVisibility(c.Request.Context(), c.Param("id"), auth.UserID(c), *req.IsPublic); err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) attachCSV(c *gin.Context) {
	header, err := c.FormFile("csv_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "csv_file is required"})
		return
	}

	uploads, closeAll, err := openUploads([]*multipart.FileHeader{header})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "unreadable upload"})
		return
	}
	defer closeAll()

	url, err := h.svc.AttachCSV(c.Request.Context(), c.Param("id"), auth.UserID(c), uploads[0])
	if err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "csv_file_url": url})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), auth.UserID(c)); err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) addFiles(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil || len(form.File["files"]) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "files are required"})
		return
	}

	uploads, closeAll, err := openUploads(form.File["files"])
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "unreadable upload"})
		return
	}
	defer closeAll()

	added, err := h.svc.AddFiles(c.Request.Context(), c.Param("id"), auth.UserID(c), uploads)
	if err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "files": added})
}

func (h *Handler) removeFile(c *gin.Context) {
	err := h.svc.RemoveFile(c.Request.Context(), c.Param("id"), auth.UserID(c), c.Param("file_id"))
	if err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func openUploads(headers []*multipart.FileHeader) ([]service.FileUpload, func(), error) {
	uploads := make([]service.FileUpload, 0, len(headers))
	closers := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range closers {
			f.Close()
		}
	}

	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		closers = append(closers, f)

		uploads = append(uploads, service.FileUpload{
			FileName:    header.Filename,
			Extension:   strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), "."),
			ContentType: header.Header.Get("Content-Type"),
			Content:     f,
		})
	}
	return uploads, closeAll, nil
}
