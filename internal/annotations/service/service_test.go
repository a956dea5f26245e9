package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/molspace/molspace-backend/internal/annotations/domain"
	"github.com/molspace/molspace-backend/internal/annotations/repository"
	"github.com/molspace/molspace-backend/internal/errs"
	projdomain "github.com/molspace/molspace-backend/internal/projects/domain"
	"github.com/molspace/molspace-backend/internal/realtime"
)

type fakeStore struct {
	byID     map[string]*domain.Annotation
	inserted []repository.InsertParams
	deleted  []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{byID: map[string]*domain.Annotation{}}
}

func (f *fakeStore) Insert(_ context.Context, p repository.InsertParams) (*domain.Annotation, error) {
	f.inserted = append(f.inserted, p)
	return &domain.Annotation{
		ID:        "ann-1",
		ProjectID: p.ProjectID,
		FileID:    p.FileID,
		UserID:    p.UserID,
		Atom:      p.Atom,
		Position:  p.Position,
		Content:   p.Content,
		CreatedAt: time.Now(),
	}, nil
}

func (f *fakeStore) ListByAtom(_ context.Context, _ string, _ projdomain.FileID, _ int) ([]domain.Annotation, error) {
	return nil, nil
}

func (f *fakeStore) ListByProject(_ context.Context, _ string) ([]domain.Annotation, error) {
	out := make([]domain.Annotation, 0, len(f.byID))
	for _, a := range f.byID {
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*domain.Annotation, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return a, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	delete(f.byID, id)
	return nil
}

type fakeScopes struct {
	exists bool
	err    error
}

func (f *fakeScopes) ScopeExists(_ context.Context, _ string, _ projdomain.FileID) (bool, error) {
	return f.exists, f.err
}

type fakePublisher struct {
	events []realtime.Event
	err    error
}

func (f *fakePublisher) PublishAnnotationEvent(_ context.Context, _ string, ev realtime.Event) error {
	f.events = append(f.events, ev)
	return f.err
}

func validCreate() CreateRequest {
	return CreateRequest{
		ProjectID: "proj-1",
		FileID:    projdomain.LegacyFile(),
		UserID:    "user-1",
		Atom:      domain.AtomIdentity{Serial: 42, Name: "CA", ResidueName: "GLY", ResidueID: "12", Chain: "A"},
		Position:  domain.Coordinate{X: 1.5, Y: -2.25, Z: 0.75},
		Content:   "interesting contact",
	}
}

func TestCreate(t *testing.T) {
	t.Run("persists and notifies on valid input", func(t *testing.T) {
		store := newFakeStore()
		pub := &fakePublisher{}
		svc := New(store, &fakeScopes{exists: true}, pub)

		ann, err := svc.Create(context.Background(), validCreate())
		require.NoError(t, err)
		assert.Equal(t, "ann-1", ann.ID)
		require.Len(t, store.inserted, 1)

		require.Len(t, pub.events, 1)
		assert.Equal(t, realtime.EventInsert, pub.events[0].Type)
		assert.Empty(t, pub.events[0].Record, "insert hints carry no record")
	})

	t.Run("rejects blank content", func(t *testing.T) {
		svc := New(newFakeStore(), &fakeScopes{exists: true}, &fakePublisher{})

		req := validCreate()
		req.Content = "   \n\t"
		_, err := svc.Create(context.Background(), req)
		assert.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("rejects missing atom serial", func(t *testing.T) {
		svc := New(newFakeStore(), &fakeScopes{exists: true}, &fakePublisher{})

		req := validCreate()
		req.Atom.Serial = 0
		_, err := svc.Create(context.Background(), req)
		assert.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("rejects anonymous author", func(t *testing.T) {
		svc := New(newFakeStore(), &fakeScopes{exists: true}, &fakePublisher{})

		req := validCreate()
		req.UserID = ""
		_, err := svc.Create(context.Background(), req)
		assert.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("rejects unknown file scope", func(t *testing.T) {
		store := newFakeStore()
		svc := New(store, &fakeScopes{exists: false}, &fakePublisher{})

		_, err := svc.Create(context.Background(), validCreate())
		assert.ErrorIs(t, err, errs.ErrNotFound)
		assert.Empty(t, store.inserted)
	})

	t.Run("publish failure does not fail the write", func(t *testing.T) {
		store := newFakeStore()
		pub := &fakePublisher{err: errors.New("redis down")}
		svc := New(store, &fakeScopes{exists: true}, pub)

		_, err := svc.Create(context.Background(), validCreate())
		require.NoError(t, err)
		require.Len(t, store.inserted, 1)
	})
}

func TestDelete(t *testing.T) {
	seed := func() (*fakeStore, *fakePublisher, *Service) {
		store := newFakeStore()
		store.byID["ann-1"] = &domain.Annotation{
			ID:        "ann-1",
			ProjectID: "proj-1",
			UserID:    "author-1",
			Atom:      domain.AtomIdentity{Serial: 7},
			Content:   "to be removed",
		}
		pub := &fakePublisher{}
		return store, pub, New(store, &fakeScopes{exists: true}, pub)
	}

	t.Run("author can delete", func(t *testing.T) {
		store, pub, svc := seed()

		err := svc.Delete(context.Background(), "ann-1", "author-1", false)
		require.NoError(t, err)
		assert.Equal(t, []string{"ann-1"}, store.deleted)

		require.Len(t, pub.events, 1)
		assert.Equal(t, realtime.EventDelete, pub.events[0].Type)
		assert.Equal(t, "ann-1", pub.events[0].RecordID)
		assert.NotEmpty(t, pub.events[0].Record, "delete hints carry the prior record")
	})

	t.Run("project owner can delete another author's annotation", func(t *testing.T) {
		store, _, svc := seed()

		err := svc.Delete(context.Background(), "ann-1", "owner-9", true)
		require.NoError(t, err)
		assert.Equal(t, []string{"ann-1"}, store.deleted)
	})

	t.Run("third party cannot delete", func(t *testing.T) {
		store, pub, svc := seed()

		err := svc.Delete(context.Background(), "ann-1", "stranger", false)
		assert.ErrorIs(t, err, errs.ErrUnauthorized)
		assert.Empty(t, store.deleted)
		assert.Empty(t, pub.events)
	})

	t.Run("missing annotation", func(t *testing.T) {
		_, _, svc := seed()

		err := svc.Delete(context.Background(), "nope", "author-1", false)
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})
}

func TestMarkers(t *testing.T) {
	store := newFakeStore()
	fileA := projdomain.ExplicitFile("file-a")
	base := time.Now()

	store.byID["m1"] = &domain.Annotation{ID: "m1", ProjectID: "proj-1", FileID: fileA, UserID: "u", Atom: domain.AtomIdentity{Serial: 10}, CreatedAt: base}
	store.byID["m2"] = &domain.Annotation{ID: "m2", ProjectID: "proj-1", FileID: fileA, UserID: "u", Atom: domain.AtomIdentity{Serial: 10}, CreatedAt: base.Add(time.Second)}
	store.byID["m3"] = &domain.Annotation{ID: "m3", ProjectID: "proj-1", FileID: projdomain.LegacyFile(), UserID: "u", Atom: domain.AtomIdentity{Serial: 10}, CreatedAt: base.Add(2 * time.Second)}

	svc := New(store, &fakeScopes{exists: true}, &fakePublisher{})

	markers, err := svc.Markers(context.Background(), "proj-1", fileA)
	require.NoError(t, err)
	require.Len(t, markers, 1, "two same-serial annotations collapse, the legacy one is out of scope")
	assert.Equal(t, 10, markers[0].Atom.Serial)
}
