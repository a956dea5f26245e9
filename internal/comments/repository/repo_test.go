package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/molspace/molspace-backend/internal/errs"
)

func setupRepo(t *testing.T) (*Repo, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return New(db), mock, db
}

var commentColumns = []string{"id", "project_id", "user_id", "content", "created_at", "email", "full_name"}

func TestInsert(t *testing.T) {
	repo, mock, db := setupRepo(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO comments`).
		WithArgs(sqlmock.AnyArg(), "proj-1", "user-1", "hello").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("cmt-1", now))

	c, err := repo.Insert(context.Background(), "proj-1", "user-1", "hello")
	require.NoError(t, err)
	assert.Equal(t, "cmt-1", c.ID)
	assert.Equal(t, "hello", c.Content)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByProject(t *testing.T) {
	repo, mock, db := setupRepo(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`FROM comments c`).
		WithArgs("proj-1").
		WillReturnRows(sqlmock.NewRows(commentColumns).
			AddRow("cmt-1", "proj-1", "user-1", "first", now, "ada@example.com", "Ada L").
			AddRow("cmt-2", "proj-1", "user-2", "second", now.Add(time.Minute), nil, nil))

	comments, err := repo.ListByProject(context.Background(), "proj-1")
	require.NoError(t, err)
	require.Len(t, comments, 2)

	require.NotNil(t, comments[0].Author)
	assert.Equal(t, "ada@example.com", comments[0].Author.Email)

	// Author row may be missing when the profile was never mirrored.
	assert.Nil(t, comments[1].Author)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock, db := setupRepo(t)
	defer db.Close()

	mock.ExpectQuery(`FROM comments c`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(commentColumns))

	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, errs.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteNotFound(t *testing.T) {
	repo, mock, db := setupRepo(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM comments`).
		WithArgs("nope").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "nope")
	assert.ErrorIs(t, err, errs.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
