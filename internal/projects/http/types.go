package http

import (
	"context"

	"github.com/molspace/molspace-backend/internal/projects/service"
)

// ViewRecorder takes the best-effort view telemetry write on project reads.
type ViewRecorder interface {
	RecordView(ctx context.Context, projectID string, viewerID *string)
}

// Handler bundles the dependencies for project HTTP endpoints.
type Handler struct {
	svc   *service.Service
	views ViewRecorder
}

func New(svc *service.Service, views ViewRecorder) *Handler {
	return &Handler{svc: svc, views: views}
}
