package domain

import (
	"time"

	projdomain "github.com/molspace/molspace-backend/internal/projects/domain"
)

// AtomIdentity pins an annotation to one atom inside one structure file.
// Serial numbers are only unique within a single file; they are meaningless
// without the file scope.
type AtomIdentity struct {
	Serial      int    `json:"atom_serial"`
	Name        string `json:"atom_name"`
	ResidueName string `json:"residue_name"`
	ResidueID   string `json:"residue_id"`
	Chain       string `json:"chain"`
}

// Coordinate is the atom's position in structure-file native units.
type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Author is the display slice of the annotation author's profile, joined in
// at read time.
type Author struct {
	Email    string  `json:"email"`
	FullName *string `json:"full_name,omitempty"`
}

// Annotation is a free-text note anchored to an atom. Immutable once
// created; the only mutation is deletion.
type Annotation struct {
	ID        string             `json:"id"`
	ProjectID string             `json:"project_id"`
	FileID    projdomain.FileID  `json:"-"`
	UserID    string             `json:"user_id"`
	Atom      AtomIdentity       `json:"atom"`
	Position  Coordinate         `json:"position"`
	Content   string             `json:"content"`
	CreatedAt time.Time          `json:"created_at"`
	Author    *Author            `json:"author,omitempty"`
}

// FileKey is the wire form of the annotation's file scope ("legacy" for the
// implicit single-file scope).
func (a *Annotation) FileKey() string { return a.FileID.String() }

// CanDelete applies the deletion rule: the author or the project owner.
func (a *Annotation) CanDelete(requesterID string, isProjectOwner bool) bool {
	return isProjectOwner || (requesterID != "" && requesterID == a.UserID)
}
