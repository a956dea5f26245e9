package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/molspace/molspace-backend/internal/comments/domain"
	"github.com/molspace/molspace-backend/internal/errs"
	"github.com/molspace/molspace-backend/internal/realtime"
)

// Store is the persistence surface the service needs.
type Store interface {
	Insert(ctx context.Context, projectID, userID, content string) (*domain.Comment, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.Comment, error)
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	Delete(ctx context.Context, id string) error
}

// Publisher fans mutation hints out to connected viewers.
type Publisher interface {
	PublishCommentEvent(ctx context.Context, projectID string, ev realtime.Event) error
}

// Service owns comment validation, authorization and propagation.
type Service struct {
	store Store
	pub   Publisher
}

func New(store Store, pub Publisher) *Service {
	return &Service{store: store, pub: pub}
}

// Post validates and persists a new comment, then notifies other viewers.
func (s *Service) Post(ctx context.Context, projectID, authorID, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is empty", errs.ErrValidation)
	}
	if authorID == "" {
		return nil, fmt.Errorf("%w: author is required", errs.ErrValidation)
	}

	c, err := s.store.Insert(ctx, projectID, authorID, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStore, err)
	}

	// Insert hints carry no record: receivers refetch the full list so the
	// profile join never goes stale.
	s.notify(ctx, projectID, realtime.Event{Type: realtime.EventInsert})
	return c, nil
}

// List returns a project's discussion in creation order, authors joined.
func (s *Service) List(ctx context.Context, projectID string) ([]domain.Comment, error) {
	return s.store.ListByProject(ctx, projectID)
}

// Delete removes a comment if the requester is its author or the project
// owner, and ships the prior record on the hint for targeted local removal.
func (s *Service) Delete(ctx context.Context, commentID, requesterID string, isProjectOwner bool) error {
	c, err := s.store.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if !c.CanDelete(requesterID, isProjectOwner) {
		return fmt.Errorf("%w: only the author or the project owner can delete a comment", errs.ErrUnauthorized)
	}

	if err := s.store.Delete(ctx, commentID); err != nil {
		return err
	}

	record, _ := json.Marshal(c)
	s.notify(ctx, c.ProjectID, realtime.Event{
		Type:     realtime.EventDelete,
		RecordID: c.ID,
		Record:   record,
	})
	return nil
}

func (s *Service) notify(ctx context.Context, projectID string, ev realtime.Event) {
	if s.pub == nil {
		return
	}
	if err := s.pub.PublishCommentEvent(ctx, projectID, ev); err != nil {
		log.Printf("[warn] operation=comment_notify project=%s error=%v", projectID, err)
	}
}
