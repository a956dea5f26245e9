package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/molspace/molspace-backend/internal/errs"
	"github.com/molspace/molspace-backend/internal/projects/domain"
)

// ProjectRepository provides persistence operations for projects.
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// CreateParams carries everything the upload flow supplies for a new project.
type CreateParams struct {
	OwnerID       string
	Title         string
	FileURL       string
	FileExtension string
	CSVFileURL    *string
	CSVFileName   *string
	Notes         string
}

// Create inserts a new project. New projects are always public; the privacy
// toggle is a separate owner-only update.
func (r *ProjectRepository) Create(ctx context.Context, p CreateParams) (*domain.Project, error) {
	const q = `
INSERT INTO projects (id, owner_id, title, file_url, file_extension, csv_file_url, csv_file_name, is_public, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, true, $8)
RETURNING id, owner_id, title, file_url, file_extension, csv_file_url, csv_file_name, is_public, notes, created_at;
`
	var out domain.Project
	err := r.db.QueryRowContext(ctx, q,
		uuid.New().String(), p.OwnerID, p.Title, p.FileURL, p.FileExtension,
		p.CSVFileURL, p.CSVFileName, p.Notes,
	).Scan(
		&out.ID, &out.OwnerID, &out.Title, &out.FileURL, &out.FileExtension,
		&out.CSVFileURL, &out.CSVFileName, &out.IsPublic, &out.Notes, &out.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetByID returns one project or errs.ErrNotFound.
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	const q = `
SELECT id, owner_id, title, file_url, file_extension, csv_file_url, csv_file_name, is_public, notes, created_at
FROM projects
WHERE id = $1;
`
	var p domain.Project
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&p.ID, &p.OwnerID, &p.Title, &p.FileURL, &p.FileExtension,
		&p.CSVFileURL, &p.CSVFileName, &p.IsPublic, &p.Notes, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetByIDs fetches a batch of projects. Missing ids are skipped silently;
// the shared-with-me derivation tolerates projects deleted since they were
// viewed.
func (r *ProjectRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Project, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	const q = `
SELECT id, owner_id, title, file_url, file_extension, csv_file_url, csv_file_name, is_public, notes, created_at
FROM projects
WHERE id = ANY($1);
`
	rows, err := r.db.QueryContext(ctx, q, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Project, 0, len(ids))
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(
			&p.ID, &p.OwnerID, &p.Title, &p.FileURL, &p.FileExtension,
			&p.CSVFileURL, &p.CSVFileName, &p.IsPublic, &p.Notes, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListByOwner returns the owner's projects, newest first, with view and file
// counts for the dashboard table.
func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.ProjectListItem, error) {
	const q = `
SELECT
  p.id, p.owner_id, p.title, p.file_url, p.file_extension,
  p.csv_file_url, p.csv_file_name, p.is_public, p.notes, p.created_at,
  (SELECT count(*) FROM project_views v WHERE v.project_id = p.id)     AS view_count,
  GREATEST((SELECT count(*) FROM project_files f WHERE f.project_id = p.id), 1) AS file_count
FROM projects p
WHERE p.owner_id = $1
ORDER BY p.created_at DESC;
`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ProjectListItem, 0, 16)
	for rows.Next() {
		var it domain.ProjectListItem
		if err := rows.Scan(
			&it.ID, &it.OwnerID, &it.Title, &it.FileURL, &it.FileExtension,
			&it.CSVFileURL, &it.CSVFileName, &it.IsPublic, &it.Notes, &it.CreatedAt,
			&it.ViewCount, &it.FileCount,
		); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// UpdateNotes is a last-write-wins owner-only update.
func (r *ProjectRepository) UpdateNotes(ctx context.Context, ownerID, id, notes string) error {
	const q = `UPDATE projects SET notes = $3 WHERE id = $1 AND owner_id = $2;`
	return r.execExpectingRow(ctx, q, id, ownerID, notes)
}

// SetVisibility toggles the public flag, owner only.
func (r *ProjectRepository) SetVisibility(ctx context.Context, ownerID, id string, isPublic bool) error {
	const q = `UPDATE projects SET is_public = $3 WHERE id = $1 AND owner_id = $2;`
	return r.execExpectingRow(ctx, q, id, ownerID, isPublic)
}

// AttachCSV records an uploaded CSV data reference on the project.
func (r *ProjectRepository) AttachCSV(ctx context.Context, ownerID, id, csvURL, csvName string) error {
	const q = `UPDATE projects SET csv_file_url = $3, csv_file_name = $4 WHERE id = $1 AND owner_id = $2;`
	return r.execExpectingRow(ctx, q, id, ownerID, csvURL, csvName)
}

// Delete removes the project row. Annotations, comments, files and view
// events go with it via ON DELETE CASCADE.
func (r *ProjectRepository) Delete(ctx context.Context, ownerID, id string) error {
	const q = `DELETE FROM projects WHERE id = $1 AND owner_id = $2;`
	return r.execExpectingRow(ctx, q, id, ownerID)
}

func (r *ProjectRepository) execExpectingRow(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
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
