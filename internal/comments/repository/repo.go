package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/molspace/molspace-backend/internal/comments/domain"
	"github.com/molspace/molspace-backend/internal/errs"
)

// Repo persists project-level discussion comments.
type Repo struct {
	db *sql.DB
}

func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Insert writes one comment and returns it with its generated identity.
func (r *Repo) Insert(ctx context.Context, projectID, userID, content string) (*domain.Comment, error) {
	const q = `
INSERT INTO comments (id, project_id, user_id, content)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at;
`
	out := &domain.Comment{
		ProjectID: projectID,
		UserID:    userID,
		Content:   content,
	}
	err := r.db.QueryRowContext(ctx, q, uuid.New().String(), projectID, userID, content).
		Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListByProject returns a project's comments oldest first, authors joined.
func (r *Repo) ListByProject(ctx context.Context, projectID string) ([]domain.Comment, error) {
	const q = `
SELECT c.id, c.project_id, c.user_id, c.content, c.created_at, p.email, p.full_name
FROM comments c
LEFT JOIN profiles p ON p.id = c.user_id
WHERE c.project_id = $1
ORDER BY c.created_at ASC;
`
	rows, err := r.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Comment, 0, 8)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// GetByID returns one comment or errs.ErrNotFound.
func (r *Repo) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	const q = `
SELECT c.id, c.project_id, c.user_id, c.content, c.created_at, p.email, p.full_name
FROM comments c
LEFT JOIN profiles p ON p.id = c.user_id
WHERE c.id = $1;
`
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, errs.ErrNotFound
	}
	return scanComment(rows)
}

// Delete permanently removes one comment.
func (r *Repo) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM comments WHERE id = $1;`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func scanComment(rows *sql.Rows) (*domain.Comment, error) {
	var (
		c        domain.Comment
		email    sql.NullString
		fullName sql.NullString
	)
	if err := rows.Scan(&c.ID, &c.ProjectID, &c.UserID, &c.Content, &c.CreatedAt, &email, &fullName); err != nil {
		return nil, err
	}
	if email.Valid {
		c.Author = &domain.Author{Email: email.String}
		if fullName.Valid {
			c.Author.FullName = &fullName.String
		}
	}
	return &c, nil
}
