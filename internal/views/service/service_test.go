package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	projdomain "github.com/molspace/molspace-backend/internal/projects/domain"
	"github.com/molspace/molspace-backend/internal/users"
	"github.com/molspace/molspace-backend/internal/views/domain"
)

type fakeStore struct {
	events    []domain.ViewEvent
	insertErr error
	inserted  int
}

func (f *fakeStore) Insert(_ context.Context, _ string, _ *string) error {
	f.inserted++
	return f.insertErr
}

func (f *fakeStore) ListByViewer(_ context.Context, _ string) ([]domain.ViewEvent, error) {
	return f.events, nil
}

type fakeProjects struct {
	projects []projdomain.Project
}

func (f *fakeProjects) GetByIDs(_ context.Context, ids []string) ([]projdomain.Project, error) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]projdomain.Project, 0, len(ids))
	for _, p := range f.projects {
		if _, ok := want[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeProfiles struct {
	profiles map[string]users.Profile
	asked    []string
}

func (f *fakeProfiles) GetByIDs(_ context.Context, ids []string) (map[string]users.Profile, error) {
	f.asked = ids
	out := make(map[string]users.Profile, len(ids))
	for _, id := range ids {
		if p, ok := f.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func strptr(s string) *string { return &s }

func TestRecordView(t *testing.T) {
	t.Run("writes one event per call", func(t *testing.T) {
		store := &fakeStore{}
		svc := New(store, &fakeProjects{}, &fakeProfiles{})

		svc.RecordView(context.Background(), "proj-1", strptr("viewer-1"))
		svc.RecordView(context.Background(), "proj-1", nil)
		assert.Equal(t, 2, store.inserted)
	})

	t.Run("swallows persistence failures", func(t *testing.T) {
		store := &fakeStore{insertErr: assert.AnError}
		svc := New(store, &fakeProjects{}, &fakeProfiles{})

		// Must not panic or propagate; the project view itself succeeded.
		svc.RecordView(context.Background(), "proj-1", strptr("viewer-1"))
	})
}

func TestSharedWithMe(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	viewer := "viewer-1"

	event := func(projectID string, at time.Time) domain.ViewEvent {
		return domain.ViewEvent{ProjectID: projectID, ViewerID: &viewer, ViewedAt: at}
	}

	t.Run("dedups repeat visits keeping the latest timestamp", func(t *testing.T) {
		store := &fakeStore{events: []domain.ViewEvent{
			// Newest first, as the repository returns them.
			event("proj-a", base.Add(3*time.Hour)),
			event("proj-b", base.Add(2*time.Hour)),
			event("proj-a", base.Add(time.Hour)),
			event("proj-a", base),
		}}
		projects := &fakeProjects{projects: []projdomain.Project{
			{ID: "proj-a", OwnerID: "owner-1", Title: "A", FileExtension: "pdb"},
			{ID: "proj-b", OwnerID: "owner-2", Title: "B", FileExtension: "cif"},
		}}
		profiles := &fakeProfiles{profiles: map[string]users.Profile{
			"owner-1": {ID: "owner-1", Email: "ada@example.com", FullName: strptr("Ada L")},
			"owner-2": {ID: "owner-2", Email: "grace@example.com"},
		}}

		got, err := New(store, projects, profiles).SharedWithMe(context.Background(), viewer)
		require.NoError(t, err)
		require.Len(t, got, 2)

		assert.Equal(t, "proj-a", got[0].ProjectID)
		assert.Equal(t, base.Add(3*time.Hour), got[0].LastViewed)
		assert.Equal(t, "Ada L", got[0].OwnerName)

		assert.Equal(t, "proj-b", got[1].ProjectID)
		assert.Equal(t, "grace", got[1].OwnerName, "falls back to the email local-part")
		assert.Equal(t, "grace@example.com", got[1].OwnerEmail)
	})

	t.Run("excludes the viewer's own projects", func(t *testing.T) {
		store := &fakeStore{events: []domain.ViewEvent{
			event("mine", base.Add(time.Hour)),
			event("theirs", base),
		}}
		projects := &fakeProjects{projects: []projdomain.Project{
			{ID: "mine", OwnerID: viewer, Title: "Mine"},
			{ID: "theirs", OwnerID: "owner-2", Title: "Theirs"},
		}}
		profiles := &fakeProfiles{profiles: map[string]users.Profile{
			"owner-2": {ID: "owner-2", Email: "x@example.com"},
		}}

		got, err := New(store, projects, profiles).SharedWithMe(context.Background(), viewer)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "theirs", got[0].ProjectID)

		assert.NotContains(t, profiles.asked, viewer, "own profile is never fetched")
	})

	t.Run("tolerates projects deleted since they were viewed", func(t *testing.T) {
		store := &fakeStore{events: []domain.ViewEvent{
			event("gone", base.Add(time.Hour)),
			event("alive", base),
		}}
		projects := &fakeProjects{projects: []projdomain.Project{
			{ID: "alive", OwnerID: "owner-2", Title: "Alive"},
		}}
		profiles := &fakeProfiles{profiles: map[string]users.Profile{}}

		got, err := New(store, projects, profiles).SharedWithMe(context.Background(), viewer)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "alive", got[0].ProjectID)
	})

	t.Run("empty history yields empty list", func(t *testing.T) {
		got, err := New(&fakeStore{}, &fakeProjects{}, &fakeProfiles{}).SharedWithMe(context.Background(), viewer)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("missing profile leaves owner fields blank", func(t *testing.T) {
		store := &fakeStore{events: []domain.ViewEvent{event("proj-a", base)}}
		projects := &fakeProjects{projects: []projdomain.Project{
			{ID: "proj-a", OwnerID: "owner-1", Title: "A"},
		}}
		profiles := &fakeProfiles{profiles: map[string]users.Profile{}}

		got, err := New(store, projects, profiles).SharedWithMe(context.Background(), viewer)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Empty(t, got[0].OwnerName)
		assert.Empty(t, got[0].OwnerEmail)
	})
}
