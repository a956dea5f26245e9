package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/molspace/molspace-backend/internal/views/domain"
)

// Repo appends and reads raw view events. The table is append-only; the
// "shared with me" dedup happens at read time in the service.
type Repo struct {
	db *sql.DB
}

func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Insert appends one view event. One row per visit, no write-time dedup.
func (r *Repo) Insert(ctx context.Context, projectID string, viewerID *string) error {
	const q = `INSERT INTO project_views (project_id, viewer_id) VALUES ($1, $2);`
	_, err := r.db.ExecContext(ctx, q, projectID, viewerID)
	return err
}

// ListByViewer returns every view event of one viewer, most recent first.
func (r *Repo) ListByViewer(ctx context.Context, viewerID string) ([]domain.ViewEvent, error) {
	const q = `
SELECT project_id, viewer_id, viewed_at
FROM project_views
WHERE viewer_id = $1
ORDER BY viewed_at DESC;
`
	rows, err := r.db.QueryContext(ctx, q, viewerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ViewEvent, 0, 16)
	for rows.Next() {
		var (
			ev     domain.ViewEvent
			viewer sql.NullString
		)
		if err := rows.Scan(&ev.ProjectID, &viewer, &ev.ViewedAt); err != nil {
			return nil, err
		}
		if viewer.Valid {
			ev.ViewerID = &viewer.String
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// DeleteAnonymousBefore prunes anonymous view events older than the cutoff.
// Named viewers are kept: the shared-with-me derivation needs them.
func (r *Repo) DeleteAnonymousBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `DELETE FROM project_views WHERE viewer_id IS NULL AND viewed_at < $1;`
	res, err := r.db.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
