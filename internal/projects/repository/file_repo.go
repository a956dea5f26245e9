package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/molspace/molspace-backend/internal/errs"
	"github.com/molspace/molspace-backend/internal/projects/domain"
)

// FileRepository persists the structure files of a project.
type FileRepository struct {
	db *sql.DB
}

// NewFileRepository creates a new project-file repository.
func NewFileRepository(db *sql.DB) *FileRepository {
	return &FileRepository{db: db}
}

// ListByProject returns the project's files ordered by sort position,
// insertion order breaking ties.
func (r *FileRepository) ListByProject(ctx context.Context, projectID string) ([]domain.ProjectFile, error) {
	const q = `
SELECT id, project_id, owner_id, file_url, file_extension, file_name, sort_order, created_at
FROM project_files
WHERE project_id = $1
ORDER BY sort_order ASC, created_at ASC;
`
	rows, err := r.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ProjectFile, 0, 4)
	for rows.Next() {
		var f domain.ProjectFile
		if err := rows.Scan(&f.ID, &f.ProjectID, &f.OwnerID, &f.FileURL,
			&f.FileExtension, &f.FileName, &f.SortOrder, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// AddParams carries one uploaded file to append to a project.
type AddParams struct {
	ProjectID     string
	OwnerID       string
	FileURL       string
	FileExtension string
	FileName      string
}

// Add appends a file after the project's current highest sort position.
func (r *FileRepository) Add(ctx context.Context, p AddParams) (*domain.ProjectFile, error) {
	const q = `
INSERT INTO project_files (id, project_id, owner_id, file_url, file_extension, file_name, sort_order)
VALUES ($1, $2, $3, $4, $5, $6,
        COALESCE((SELECT MAX(sort_order) + 1 FROM project_files WHERE project_id = $2), 0))
RETURNING id, project_id, owner_id, file_url, file_extension, file_name, sort_order, created_at;
`
	var f domain.ProjectFile
	err := r.db.QueryRowContext(ctx, q,
		uuid.New().String(), p.ProjectID, p.OwnerID, p.FileURL, p.FileExtension, p.FileName,
	).Scan(&f.ID, &f.ProjectID, &f.OwnerID, &f.FileURL, &f.FileExtension,
		&f.FileName, &f.SortOrder, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// GetByID returns one file row or errs.ErrNotFound.
func (r *FileRepository) GetByID(ctx context.Context, fileID string) (*domain.ProjectFile, error) {
	const q = `
SELECT id, project_id, owner_id, file_url, file_extension, file_name, sort_order, created_at
FROM project_files
WHERE id = $1;
`
	var f domain.ProjectFile
	err := r.db.QueryRowContext(ctx, q, fileID).Scan(&f.ID, &f.ProjectID, &f.OwnerID,
		&f.FileURL, &f.FileExtension, &f.FileName, &f.SortOrder, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// Delete removes a file unless it is the project's last remaining one.
// The count and the delete run in one transaction so two concurrent removals
// cannot strip the project bare.
func (r *FileRepository) Delete(ctx context.Context, projectID, fileID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var n int
	const countQ = `SELECT count(*) FROM project_files WHERE project_id = $1;`
	if err := tx.QueryRowContext(ctx, countQ, projectID).Scan(&n); err != nil {
		return err
	}
	if n <= 1 {
		return errs.ErrLastFile
	}

	const delQ = `DELETE FROM project_files WHERE id = $1 AND project_id = $2;`
	res, err := tx.ExecContext(ctx, delQ, fileID, projectID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errs.ErrNotFound
	}

	return tx.Commit()
}

// ScopeExists reports whether an annotation scope (project id, file id) is
// valid: an explicit scope must match a project_files row of that project,
// the legacy scope only requires the project itself.
func (r *FileRepository) ScopeExists(ctx context.Context, projectID string, fileID domain.FileID) (bool, error) {
	if fileID.IsLegacy() {
		const q = `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1);`
		var ok bool
		err := r.db.QueryRowContext(ctx, q, projectID).Scan(&ok)
		return ok, err
	}

	const q = `SELECT EXISTS (SELECT 1 FROM project_files WHERE id = $1 AND project_id = $2);`
	var ok bool
	ns := fileID.NullString()
	err := r.db.QueryRowContext(ctx, q, ns.String, projectID).Scan(&ok)
	return ok, err
}
