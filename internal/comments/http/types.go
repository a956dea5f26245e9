package http

import (
	"context"

	"github.com/molspace/molspace-backend/internal/comments/service"
)

// OwnerChecker resolves whether the requester owns the project, for the
// owner-moderation delete path.
type OwnerChecker interface {
	IsOwner(ctx context.Context, projectID, requesterID string) (bool, error)
}

// Handler bundles the dependencies for comment HTTP endpoints.
type Handler struct {
	svc    *service.Service
	owners OwnerChecker
}

func New(svc *service.Service, owners OwnerChecker) *Handler {
	return &Handler{svc: svc, owners: owners}
}
