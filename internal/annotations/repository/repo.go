package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/molspace/molspace-backend/internal/annotations/domain"
	"github.com/molspace/molspace-backend/internal/errs"
	projdomain "github.com/molspace/molspace-backend/internal/projects/domain"
)

// Repo persists atom-anchored annotations.
type Repo struct {
	db *sql.DB
}

func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

const annotationColumns = `
a.id, a.project_id, a.file_id, a.user_id,
a.atom_serial, a.atom_name, a.residue_name, a.residue_id, a.chain,
a.x, a.y, a.z, a.content, a.created_at,
p.email, p.full_name
`

// InsertParams is a validated new annotation ready for persistence.
type InsertParams struct {
	ProjectID string
	FileID    projdomain.FileID
	UserID    string
	Atom      domain.AtomIdentity
	Position  domain.Coordinate
	Content   string
}

// Insert writes one annotation and returns it with its generated identity.
func (r *Repo) Insert(ctx context.Context, p InsertParams) (*domain.Annotation, error) {
	const q = `
INSERT INTO annotations
  (id, project_id, file_id, user_id, atom_serial, atom_name, residue_name, residue_id, chain, x, y, z, content)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING id, created_at;
`
	out := &domain.Annotation{
		ProjectID: p.ProjectID,
		FileID:    p.FileID,
		UserID:    p.UserID,
		Atom:      p.Atom,
		Position:  p.Position,
		Content:   p.Content,
	}
	err := r.db.QueryRowContext(ctx, q,
		uuid.New().String(), p.ProjectID, p.FileID.NullString(), p.UserID,
		p.Atom.Serial, p.Atom.Name, p.Atom.ResidueName, p.Atom.ResidueID, p.Atom.Chain,
		p.Position.X, p.Position.Y, p.Position.Z, p.Content,
	).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListByAtom returns the annotations on one exact (project, file, serial)
// scope, oldest first. IS NOT DISTINCT FROM keeps the legacy (NULL) scope
// from ever matching a real file id and vice versa.
func (r *Repo) ListByAtom(ctx context.Context, projectID string, fileID projdomain.FileID, atomSerial int) ([]domain.Annotation, error) {
	const q = `
SELECT ` + annotationColumns + `
FROM annotations a
LEFT JOIN profiles p ON p.id = a.user_id
WHERE a.project_id = $1
  AND a.file_id IS NOT DISTINCT FROM $2
  AND a.atom_serial = $3
ORDER BY a.created_at ASC;
`
	rows, err := r.db.QueryContext(ctx, q, projectID, fileID.NullString(), atomSerial)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAnnotations(rows)
}

// ListByProject returns every annotation on a project across all files,
// oldest first, joined with the author profile.
func (r *Repo) ListByProject(ctx context.Context, projectID string) ([]domain.Annotation, error) {
	const q = `
SELECT ` + annotationColumns + `
FROM annotations a
LEFT JOIN profiles p ON p.id = a.user_id
WHERE a.project_id = $1
ORDER BY a.created_at ASC;
`
	rows, err := r.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAnnotations(rows)
}

// GetByID returns one annotation or errs.ErrNotFound.
func (r *Repo) GetByID(ctx context.Context, id string) (*domain.Annotation, error) {
	const q = `
SELECT ` + annotationColumns + `
FROM annotations a
LEFT JOIN profiles p ON p.id = a.user_id
WHERE a.id = $1;
`
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	anns, err := scanAnnotations(rows)
	if err != nil {
		return nil, err
	}
	if len(anns) == 0 {
		return nil, errs.ErrNotFound
	}
	return &anns[0], nil
}

// Delete permanently removes one annotation. No tombstone.
func (r *Repo) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM annotations WHERE id = $1;`
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

func scanAnnotations(rows *sql.Rows) ([]domain.Annotation, error) {
	out := make([]domain.Annotation, 0, 8)
	for rows.Next() {
		var (
			a        domain.Annotation
			fileID   sql.NullString
			email    sql.NullString
			fullName sql.NullString
		)
		if err := rows.Scan(
			&a.ID, &a.ProjectID, &fileID, &a.UserID,
			&a.Atom.Serial, &a.Atom.Name, &a.Atom.ResidueName, &a.Atom.ResidueID, &a.Atom.Chain,
			&a.Position.X, &a.Position.Y, &a.Position.Z, &a.Content, &a.CreatedAt,
			&email, &fullName,
		); err != nil {
			return nil, err
		}
		a.FileID = projdomain.FileIDFromNull(fileID)
		if email.Valid {
			a.Author = &domain.Author{Email: email.String}
			if fullName.Valid {
				a.Author.FullName = &fullName.String
			}
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
