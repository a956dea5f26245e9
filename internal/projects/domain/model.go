package domain

import (
	"database/sql"
	"time"
)

// Project is one uploaded molecular structure project. It is owned
// exclusively by its creator and is storage-agnostic, shared across the
// repository and HTTP layers.
type Project struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	Title         string    `json:"title"`
	FileURL       string    `json:"file_url"`
	FileExtension string    `json:"file_extension"`
	CSVFileURL    *string   `json:"csv_file_url,omitempty"`
	CSVFileName   *string   `json:"csv_file_name,omitempty"`
	IsPublic      bool      `json:"is_public"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
}

// ProjectListItem is a project row on the owner's dashboard, carrying the
// per-project view and file counts.
type ProjectListItem struct {
	Project
	ViewCount int `json:"view_count"`
	FileCount int `json:"file_count"`
}

// ProjectFile is one structure file inside a project. Ordering is by
// SortOrder ascending, ties broken by insertion.
type ProjectFile struct {
	ID            string    `json:"id"`
	ProjectID     string    `json:"project_id"`
	OwnerID       string    `json:"owner_id"`
	FileURL       string    `json:"file_url"`
	FileExtension string    `json:"file_extension"`
	FileName      string    `json:"file_name"`
	SortOrder     int       `json:"sort_order"`
	CreatedAt     time.Time `json:"created_at"`
}

// LegacyFileKey is the wire representation of the implicit single-file
// identity of projects created before multi-file support.
const LegacyFileKey = "legacy"

// FileID identifies the file scope of an annotation: either an explicit
// project_files row or the legacy sentinel. Keeping it a tagged value makes
// scope equality total instead of leaning on null comparisons.
type FileID struct {
	id     string
	legacy bool
}

func ExplicitFile(id string) FileID { return FileID{id: id} }

func LegacyFile() FileID { return FileID{legacy: true} }

// ParseFileID maps the wire form back to a FileID. Empty and "legacy" both
// mean the legacy scope.
func ParseFileID(s string) FileID {
	if s == "" || s == LegacyFileKey {
		return LegacyFile()
	}
	return ExplicitFile(s)
}

// FileIDFromNull converts a scanned nullable column. NULL means legacy.
func FileIDFromNull(ns sql.NullString) FileID {
	if !ns.Valid {
		return LegacyFile()
	}
	return ExplicitFile(ns.String)
}

func (f FileID) IsLegacy() bool { return f.legacy }

// Equal is exact scope equality; the legacy sentinel never matches a real
// file id.
func (f FileID) Equal(other FileID) bool {
	if f.legacy || other.legacy {
		return f.legacy == other.legacy
	}
	return f.id == other.id
}

// NullString is the column value for persistence: NULL for legacy scope.
func (f FileID) NullString() sql.NullString {
	if f.legacy {
		return sql.NullString{}
	}
	return sql.NullString{String: f.id, Valid: true}
}

func (f FileID) String() string {
	if f.legacy {
		return LegacyFileKey
	}
	return f.id
}

// SyntheticLegacyFile builds the implicit file record callers must use when
// a project has no project_files rows. It is a first-class file identity for
// annotation scoping.
func SyntheticLegacyFile(p *Project) ProjectFile {
	return ProjectFile{
		ID:            LegacyFileKey,
		ProjectID:     p.ID,
		OwnerID:       p.OwnerID,
		FileURL:       p.FileURL,
		FileExtension: p.FileExtension,
		FileName:      p.Title,
		SortOrder:     0,
		CreatedAt:     p.CreatedAt,
	}
}
