package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/molspace/molspace-backend/internal/comments/domain"
	"github.com/molspace/molspace-backend/internal/comments/service"
	"github.com/molspace/molspace-backend/internal/errs"
	"github.com/molspace/molspace-backend/internal/realtime"
)

type fakeStore struct {
	byID map[string]*domain.Comment
}

func (f *fakeStore) Insert(_ context.Context, projectID, userID, content string) (*domain.Comment, error) {
	return &domain.Comment{ID: "cmt-1", ProjectID: projectID, UserID: userID, Content: content, CreatedAt: time.Now()}, nil
}

func (f *fakeStore) ListByProject(_ context.Context, _ string) ([]domain.Comment, error) {
	out := make([]domain.Comment, 0, len(f.byID))
	for _, c := range f.byID {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*domain.Comment, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	delete(f.byID, id)
	return nil
}

type fakePublisher struct{}

func (fakePublisher) PublishCommentEvent(_ context.Context, _ string, _ realtime.Event) error {
	return nil
}

type fakeOwners struct {
	ownerID string
}

func (f *fakeOwners) IsOwner(_ context.Context, _, requesterID string) (bool, error) {
	return requesterID == f.ownerID, nil
}

func setupRouter(store *fakeStore, ownerID, requesterID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	asUser := func(c *gin.Context) {
		if requesterID != "" {
			c.Set("firebase_uid", requesterID)
		}
		c.Next()
	}

	h := New(service.New(store, fakePublisher{}), &fakeOwners{ownerID: ownerID})
	group := r.Group("/projects/:id/comments", asUser)
	h.Register(group, group)
	return r
}

func TestPostComment(t *testing.T) {
	t.Run("creates and returns the comment", func(t *testing.T) {
		r := setupRouter(&fakeStore{byID: map[string]*domain.Comment{}}, "owner-1", "user-1")

		body := strings.NewReader(`{"content":"  hello  "}`)
		req := httptest.NewRequest("POST", "/projects/proj-1/comments", body)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)

		var resp struct {
			OK      bool           `json:"ok"`
			Comment domain.Comment `json:"comment"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.True(t, resp.OK)
		assert.Equal(t, "hello", resp.Comment.Content)
		assert.Equal(t, "user-1", resp.Comment.UserID)
	})

	t.Run("blank content is a 400", func(t *testing.T) {
		r := setupRouter(&fakeStore{byID: map[string]*domain.Comment{}}, "owner-1", "user-1")

		req := httptest.NewRequest("POST", "/projects/proj-1/comments", strings.NewReader(`{"content":"   "}`))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestDeleteComment(t *testing.T) {
	seed := func() *fakeStore {
		return &fakeStore{byID: map[string]*domain.Comment{
			"cmt-1": {ID: "cmt-1", ProjectID: "proj-1", UserID: "author-1", Content: "bye"},
		}}
	}

	t.Run("author deletes own comment", func(t *testing.T) {
		r := setupRouter(seed(), "owner-1", "author-1")

		req := httptest.NewRequest("DELETE", "/projects/proj-1/comments/cmt-1", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("project owner moderates", func(t *testing.T) {
		r := setupRouter(seed(), "owner-1", "owner-1")

		req := httptest.NewRequest("DELETE", "/projects/proj-1/comments/cmt-1", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("third party gets 403", func(t *testing.T) {
		r := setupRouter(seed(), "owner-1", "stranger")

		req := httptest.NewRequest("DELETE", "/projects/proj-1/comments/cmt-1", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("missing comment is a 404", func(t *testing.T) {
		r := setupRouter(seed(), "owner-1", "author-1")

		req := httptest.NewRequest("DELETE", "/projects/proj-1/comments/nope", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
