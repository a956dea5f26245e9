package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/molspace/molspace-backend/internal/comments/domain"
	"github.com/molspace/molspace-backend/internal/errs"
	"github.com/molspace/molspace-backend/internal/realtime"
)

type fakeStore struct {
	byID    map[string]*domain.Comment
	deleted []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{byID: map[string]*domain.Comment{}}
}

func (f *fakeStore) Insert(_ context.Context, projectID, userID, content string) (*domain.Comment, error) {
	c := &domain.Comment{
		ID:        "cmt-1",
		ProjectID: projectID,
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	f.byID[c.ID] = c
	return c, nil
}

func (f *fakeStore) ListByProject(_ context.Context, _ string) ([]domain.Comment, error) {
	return nil, nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*domain.Comment, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	delete(f.byID, id)
	return nil
}

type fakePublisher struct {
	events []realtime.Event
}

func (f *fakePublisher) PublishCommentEvent(_ context.Context, _ string, ev realtime.Event) error {
	f.events = append(f.events, ev)
	return nil
}

func TestPost(t *testing.T) {
	t.Run("trims and persists content", func(t *testing.T) {
		store := newFakeStore()
		pub := &fakePublisher{}
		svc := New(store, pub)

		c, err := svc.Post(context.Background(), "proj-1", "user-1", "  hello  ")
		require.NoError(t, err)
		assert.Equal(t, "hello", c.Content)

		require.Len(t, pub.events, 1)
		assert.Equal(t, realtime.EventInsert, pub.events[0].Type)
		assert.Empty(t, pub.events[0].Record, "insert hints trigger a refetch, no payload")
	})

	t.Run("rejects blank content", func(t *testing.T) {
		svc := New(newFakeStore(), &fakePublisher{})

		_, err := svc.Post(context.Background(), "proj-1", "user-1", "   ")
		assert.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("rejects anonymous author", func(t *testing.T) {
		svc := New(newFakeStore(), &fakePublisher{})

		_, err := svc.Post(context.Background(), "proj-1", "", "hello")
		assert.ErrorIs(t, err, errs.ErrValidation)
	})
}

func TestDelete(t *testing.T) {
	seed := func() (*fakeStore, *fakePublisher, *Service) {
		store := newFakeStore()
		store.byID["cmt-1"] = &domain.Comment{
			ID:        "cmt-1",
			ProjectID: "proj-1",
			UserID:    "author-1",
			Content:   "bye",
		}
		pub := &fakePublisher{}
		return store, pub, New(store, pub)
	}

	t.Run("author can delete and the hint carries the record", func(t *testing.T) {
		store, pub, svc := seed()

		err := svc.Delete(context.Background(), "cmt-1", "author-1", false)
		require.NoError(t, err)
		assert.Equal(t, []string{"cmt-1"}, store.deleted)

		require.Len(t, pub.events, 1)
		assert.Equal(t, realtime.EventDelete, pub.events[0].Type)
		assert.Equal(t, "cmt-1", pub.events[0].RecordID)
		assert.NotEmpty(t, pub.events[0].Record)
	})

	t.Run("project owner can moderate", func(t *testing.T) {
		store, _, svc := seed()

		err := svc.Delete(context.Background(), "cmt-1", "owner-9", true)
		require.NoError(t, err)
		assert.Equal(t, []string{"cmt-1"}, store.deleted)
	})

	t.Run("third party cannot delete", func(t *testing.T) {
		store, pub, svc := seed()

		err := svc.Delete(context.Background(), "cmt-1", "stranger", false)
		assert.ErrorIs(t, err, errs.ErrUnauthorized)
		assert.Empty(t, store.deleted)
		assert.Empty(t, pub.events)
	})
}
