package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/molspace/molspace-backend/internal/annotations/domain"
	"github.com/molspace/molspace-backend/internal/annotations/repository"
	"github.com/molspace/molspace-backend/internal/errs"
	projdomain "github.com/molspace/molspace-backend/internal/projects/domain"
	"github.com/molspace/molspace-backend/internal/realtime"
)

// Store is the persistence surface the service needs.
type Store interface {
	Insert(ctx context.Context, p repository.InsertParams) (*domain.Annotation, error)
	ListByAtom(ctx context.Context, projectID string, fileID projdomain.FileID, atomSerial int) ([]domain.Annotation, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.Annotation, error)
	GetByID(ctx context.Context, id string) (*domain.Annotation, error)
	Delete(ctx context.Context, id string) error
}

// ScopeChecker validates that an annotation's (project, file) pair points at
// a real file identity, the legacy sentinel included.
type ScopeChecker interface {
	ScopeExists(ctx context.Context, projectID string, fileID projdomain.FileID) (bool, error)
}

// Publisher fans mutation hints out to connected viewers.
type Publisher interface {
	PublishAnnotationEvent(ctx context.Context, projectID string, ev realtime.Event) error
}

// Service owns annotation validation, authorization and propagation.
type Service struct {
	store  Store
	scopes ScopeChecker
	pub    Publisher
}

func New(store Store, scopes ScopeChecker, pub Publisher) *Service {
	return &Service{store: store, scopes: scopes, pub: pub}
}

// CreateRequest is a new annotation as supplied by the atom-click flow.
type CreateRequest struct {
	ProjectID string
	FileID    projdomain.FileID
	UserID    string
	Atom      domain.AtomIdentity
	Position  domain.Coordinate
	Content   string
}

// Create validates and persists a new annotation, then notifies other
// viewers of the project.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*domain.Annotation, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is empty", errs.ErrValidation)
	}
	if req.Atom.Serial <= 0 {
		return nil, fmt.Errorf("%w: atom serial is required", errs.ErrValidation)
	}
	if req.UserID == "" {
		return nil, fmt.Errorf("%w: author is required", errs.ErrValidation)
	}

	ok, err := s.scopes.ScopeExists(ctx, req.ProjectID, req.FileID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStore, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: file scope", errs.ErrNotFound)
	}

	ann, err := s.store.Insert(ctx, repository.InsertParams{
		ProjectID: req.ProjectID,
		FileID:    req.FileID,
		UserID:    req.UserID,
		Atom:      req.Atom,
		Position:  req.Position,
		Content:   content,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStore, err)
	}

	s.notify(ctx, ann.ProjectID, realtime.Event{Type: realtime.EventInsert})
	return ann, nil
}

// ListForAtom returns the thread on one exact (project, file, serial) scope,
// oldest first.
func (s *Service) ListForAtom(ctx context.Context, projectID string, fileID projdomain.FileID, atomSerial int) ([]domain.Annotation, error) {
	return s.store.ListByAtom(ctx, projectID, fileID, atomSerial)
}

// ListForProject returns every annotation on the project in creation order,
// authors joined.
func (s *Service) ListForProject(ctx context.Context, projectID string) ([]domain.Annotation, error) {
	return s.store.ListByProject(ctx, projectID)
}

// Markers returns the deduplicated marker set for the active file scope:
// one annotation per atom serial, first-created wins.
func (s *Service) Markers(ctx context.Context, projectID string, scope projdomain.FileID) ([]domain.Annotation, error) {
	anns, err := s.store.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return domain.DedupMarkers(domain.FilterByFile(anns, scope)), nil
}

// Grouped returns the sidebar thread groups keyed by file scope.
func (s *Service) Grouped(ctx context.Context, projectID string) ([]domain.FileGroup, error) {
	anns, err := s.store.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return domain.GroupByFile(anns), nil
}

// Delete removes an annotation if the requester is its author or the
// project owner. The deleted record rides along on the hint so receivers
// can drop it locally without a refetch.
func (s *Service) Delete(ctx context.Context, annotationID, requesterID string, isProjectOwner bool) error {
	ann, err := s.store.GetByID(ctx, annotationID)
	if err != nil {
		return err
	}
	if !ann.CanDelete(requesterID, isProjectOwner) {
		return fmt.Errorf("%w: only the author or the project owner can delete an annotation", errs.ErrUnauthorized)
	}

	if err := s.store.Delete(ctx, annotationID); err != nil {
		return err
	}

	record, _ := json.Marshal(ann)
	s.notify(ctx, ann.ProjectID, realtime.Event{
		Type:     realtime.EventDelete,
		RecordID: ann.ID,
		Record:   record,
	})
	return nil
}

// notify is best-effort: a lost hint degrades to the receiver's next full
// fetch, never to a failed write.
func (s *Service) notify(ctx context.Context, projectID string, ev realtime.Event) {
	if s.pub == nil {
		return
	}
	if err := s.pub.PublishAnnotationEvent(ctx, projectID, ev); err != nil {
		log.Printf("[warn] operation=annotation_notify project=%s error=%v", projectID, err)
	}
}
