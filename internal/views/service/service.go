package service

import (
	"context"
	"log"

	projdomain "github.com/molspace/molspace-backend/internal/projects/domain"
	"github.com/molspace/molspace-backend/internal/users"
	"github.com/molspace/molspace-backend/internal/views/domain"
)

// Store is the view-event persistence surface.
type Store interface {
	Insert(ctx context.Context, projectID string, viewerID *string) error
	ListByViewer(ctx context.Context, viewerID string) ([]domain.ViewEvent, error)
}

// ProjectReader resolves viewed project ids to their records.
type ProjectReader interface {
	GetByIDs(ctx context.Context, ids []string) ([]projdomain.Project, error)
}

// ProfileReader resolves owner ids to display profiles in one batch.
type ProfileReader interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]users.Profile, error)
}

// Service records visits and derives the "shared with me" listing.
type Service struct {
	store    Store
	projects ProjectReader
	profiles ProfileReader
}

func New(store Store, projects ProjectReader, profiles ProfileReader) *Service {
	return &Service{store: store, projects: projects, profiles: profiles}
}

// RecordView appends a view event. Best-effort telemetry: a persistence
// failure is logged and never surfaced to the viewing flow.
func (s *Service) RecordView(ctx context.Context, projectID string, viewerID *string) {
	if err := s.store.Insert(ctx, projectID, viewerID); err != nil {
		log.Printf("[warn] operation=record_view project=%s error=%v", projectID, err)
	}
}

// SharedWithMe derives the projects a viewer has visited but does not own,
// most recently viewed first.
//
// The derivation is a read-time fold over raw view history: dedup by
// project keeping the most recent visit, drop self-owned and since-deleted
// projects, then resolve the remaining owners in one batched lookup.
func (s *Service) SharedWithMe(ctx context.Context, viewerID string) ([]domain.SharedProject, error) {
	events, err := s.store.ListByViewer(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return []domain.SharedProject{}, nil
	}

	// Events arrive newest first, so the first occurrence per project is
	// also its last-viewed timestamp.
	seen := make(map[string]struct{}, len(events))
	projectIDs := make([]string, 0, len(events))
	lastViewed := make(map[string]domain.ViewEvent, len(events))
	for _, ev := range events {
		if _, ok := seen[ev.ProjectID]; ok {
			continue
		}
		seen[ev.ProjectID] = struct{}{}
		projectIDs = append(projectIDs, ev.ProjectID)
		lastViewed[ev.ProjectID] = ev
	}

	fetched, err := s.projects.GetByIDs(ctx, projectIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]projdomain.Project, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	ownerSeen := make(map[string]struct{}, len(fetched))
	ownerIDs := make([]string, 0, len(fetched))
	for _, id := range projectIDs {
		p, ok := byID[id]
		if !ok || p.OwnerID == viewerID {
			continue
		}
		if _, ok := ownerSeen[p.OwnerID]; !ok {
			ownerSeen[p.OwnerID] = struct{}{}
			ownerIDs = append(ownerIDs, p.OwnerID)
		}
	}

	profiles, err := s.profiles.GetByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}

	out := make([]domain.SharedProject, 0, len(projectIDs))
	for _, id := range projectIDs {
		p, ok := byID[id]
		if !ok {
			// Viewed once, deleted since. Not an error.
			continue
		}
		if p.OwnerID == viewerID {
			continue
		}

		sp := domain.SharedProject{
			ProjectID:     p.ID,
			Title:         p.Title,
			FileExtension: p.FileExtension,
			LastViewed:    lastViewed[id].ViewedAt,
		}
		if owner, ok := profiles[p.OwnerID]; ok {
			sp.OwnerName = owner.DisplayName()
			sp.OwnerEmail = owner.Email
		}
		out = append(out, sp)
	}
	return out, nil
}
