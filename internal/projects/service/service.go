package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/molspace/molspace-backend/internal/errs"
	"github.com/molspace/molspace-backend/internal/projects/domain"
	"github.com/molspace/molspace-backend/internal/projects/repository"
)

// ObjectStore is the object-storage surface for uploaded structure and CSV
// files.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	DeleteByURL(ctx context.Context, url string) error
}

// FeedPublisher announces new projects on the global dashboard feed.
type FeedPublisher interface {
	PublishProjectInsert(ctx context.Context, record json.RawMessage) error
}

// Service handles project lifecycle and file management.
type Service struct {
	repo    *repository.ProjectRepository
	files   *repository.FileRepository
	storage ObjectStore
	feed    FeedPublisher
}

func New(repo *repository.ProjectRepository, files *repository.FileRepository, storage ObjectStore, feed FeedPublisher) *Service {
	return &Service{repo: repo, files: files, storage: storage, feed: feed}
}

// FileUpload is one incoming file from the upload flow.
type FileUpload struct {
	FileName    string
	Extension   string
	ContentType string
	Content     io.Reader
}

// CreateRequest is the upload flow's input for a new project.
type CreateRequest struct {
	OwnerID string
	Title   string
	Notes   string
	Files   []FileUpload
	CSV     *FileUpload
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// Create stores the uploaded files, inserts the project (public by default)
// with the first file as its legacy reference, inserts the project_files
// rows, and announces the project on the global feed.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*domain.Project, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", errs.ErrValidation)
	}
	if req.OwnerID == "" {
		return nil, fmt.Errorf("%w: owner is required", errs.ErrValidation)
	}
	if len(req.Files) == 0 {
		return nil, fmt.Errorf("%w: at least one structure file is required", errs.ErrValidation)
	}

	ts := time.Now().UnixMilli()
	type stored struct {
		upload FileUpload
		url    string
	}
	uploaded := make([]stored, 0, len(req.Files))
	for i, f := range req.Files {
		key := fmt.Sprintf("%s/%d_%d_%s", req.OwnerID, ts, i, unsafeFileChars.ReplaceAllString(f.FileName, "_"))
		url, err := s.storage.Put(ctx, key, f.Content, f.ContentType)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrStore, err)
		}
		uploaded = append(uploaded, stored{upload: f, url: url})
	}

	params := repository.CreateParams{
		OwnerID:       req.OwnerID,
		Title:         strings.TrimSpace(req.Title),
		FileURL:       uploaded[0].url,
		FileExtension: uploaded[0].upload.Extension,
		Notes:         req.Notes,
	}

	if req.CSV != nil {
		key := fmt.Sprintf("%s/%d_%s", req.OwnerID, ts, unsafeFileChars.ReplaceAllString(req.CSV.FileName, "_"))
		url, err := s.storage.Put(ctx, key, req.CSV.Content, req.CSV.ContentType)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrStore, err)
		}
		params.CSVFileURL = &url
		params.CSVFileName = &req.CSV.FileName
	}

	p, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStore, err)
	}

	for _, u := range uploaded {
		if _, err := s.files.Add(ctx, repository.AddParams{
			ProjectID:     p.ID,
			OwnerID:       req.OwnerID,
			FileURL:       u.url,
			FileExtension: u.upload.Extension,
			FileName:      u.upload.FileName,
		}); err != nil {
			// Non-critical: the project still works through its legacy
			// file reference.
			log.Printf("[warn] operation=project_create project=%s error=add file row: %v", p.ID, err)
		}
	}

	if s.feed != nil {
		record, _ := json.Marshal(p)
		if err := s.feed.PublishProjectInsert(ctx, record); err != nil {
			log.Printf("[warn] operation=project_feed project=%s error=%v", p.ID, err)
		}
	}

	return p, nil
}

// View is a project with its resolved file list and the requester's
// ownership flag.
type View struct {
	Project *domain.Project      `json:"project"`
	Files   []domain.ProjectFile `json:"files"`
	IsOwner bool                 `json:"is_owner"`
}

// Get loads a project for viewing. Private projects are only visible to
// their owner.
func (s *Service) Get(ctx context.Context, projectID, requesterID string) (*View, error) {
	p, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !p.IsPublic && p.OwnerID != requesterID {
		return nil, errs.ErrNotFound
	}

	files, err := s.Files(ctx, p)
	if err != nil {
		return nil, err
	}

	return &View{
		Project: p,
		Files:   files,
		IsOwner: requesterID != "" && requesterID == p.OwnerID,
	}, nil
}

// Files resolves a project's file list, synthesizing the implicit legacy
// file for projects created before multi-file support.
func (s *Service) Files(ctx context.Context, p *domain.Project) ([]domain.ProjectFile, error) {
	files, err := s.files.ListByProject(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		files = []domain.ProjectFile{domain.SyntheticLegacyFile(p)}
	}
	return files, nil
}

// ListOwn returns the requester's own projects for the dashboard.
func (s *Service) ListOwn(ctx context.Context, ownerID string) ([]domain.ProjectListItem, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// AddFiles appends uploaded structure files to an existing project.
func (s *Service) AddFiles(ctx context.Context, projectID, requesterID string, uploads []FileUpload) ([]domain.ProjectFile, error) {
	p, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != requesterID {
		return nil, fmt.Errorf("%w: only the owner can add files", errs.ErrUnauthorized)
	}

	ts := time.Now().UnixMilli()
	out := make([]domain.ProjectFile, 0, len(uploads))
	for i, f := range uploads {
		key := fmt.Sprintf("%s/%d_%d_%s", requesterID, ts, i, unsafeFileChars.ReplaceAllString(f.FileName, "_"))
		url, err := s.storage.Put(ctx, key, f.Content, f.ContentType)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrStore, err)
		}
		added, err := s.files.Add(ctx, repository.AddParams{
			ProjectID:     projectID,
			OwnerID:       requesterID,
			FileURL:       url,
			FileExtension: f.Extension,
			FileName:      f.FileName,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrStore, err)
		}
		out = append(out, *added)
	}
	return out, nil
}

// RemoveFile deletes a structure file unless it is the project's last one.
// The stored object is removed best-effort after the row.
func (s *Service) RemoveFile(ctx context.Context, projectID, requesterID, fileID string) error {
	p, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if p.OwnerID != requesterID {
		return fmt.Errorf("%w: only the owner can remove files", errs.ErrUnauthorized)
	}

	f, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return err
	}
	if f.ProjectID != projectID {
		return errs.ErrNotFound
	}

	if err := s.files.Delete(ctx, projectID, fileID); err != nil {
		return err
	}

	if err := s.storage.DeleteByURL(ctx, f.FileURL); err != nil {
		log.Printf("[warn] operation=file_remove project=%s error=delete object: %v", projectID, err)
	}
	return nil
}

// UpdateNotes is the owner's last-write-wins notes save.
func (s *Service) UpdateNotes(ctx context.Context, projectID, requesterID, notes string) error {
	return s.repo.UpdateNotes(ctx, requesterID, projectID, notes)
}

// SetVisibility toggles the public flag.
func (s *Service) SetVisibility(ctx context.Context, projectID, requesterID string, isPublic bool) error {
	return s.repo.SetVisibility(ctx, requesterID, projectID, isPublic)
}

// AttachCSV stores a CSV data file and records it on the project,
// replacing any previous one.
func (s *Service) AttachCSV(ctx context.Context, projectID, requesterID string, upload FileUpload) (string, error) {
	p, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return "", err
	}
	if p.OwnerID != requesterID {
		return "", fmt.Errorf("%w: only the owner can attach data", errs.ErrUnauthorized)
	}

	key := fmt.Sprintf("%s/%d_%s", requesterID, time.Now().UnixMilli(), unsafeFileChars.ReplaceAllString(upload.FileName, "_"))
	url, err := s.storage.Put(ctx, key, upload.Content, upload.ContentType)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrStore, err)
	}

	if err := s.repo.AttachCSV(ctx, requesterID, projectID, url, upload.FileName); err != nil {
		return "", err
	}
	return url, nil
}

// Delete removes the project and its stored objects. Row deletion cascades
// to files, annotations, comments and view events; object cleanup is
// best-effort afterwards.
func (s *Service) Delete(ctx context.Context, projectID, requesterID string) error {
	p, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if p.OwnerID != requesterID {
		return fmt.Errorf("%w: only the owner can delete a project", errs.ErrUnauthorized)
	}

	files, err := s.Files(ctx, p)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, requesterID, projectID); err != nil {
		return err
	}

	for _, f := range files {
		if err := s.storage.DeleteByURL(ctx, f.FileURL); err != nil {
			log.Printf("[warn] operation=project_delete project=%s error=delete object: %v", projectID, err)
		}
	}
	if p.CSVFileURL != nil {
		if err := s.storage.DeleteByURL(ctx, *p.CSVFileURL); err != nil {
			log.Printf("[warn] operation=project_delete project=%s error=delete csv object: %v", projectID, err)
		}
	}
	return nil
}

// IsOwner reports whether the requester owns the project. Used by the
// annotation and comment delete flows.
func (s *Service) IsOwner(ctx context.Context, projectID, requesterID string) (bool, error) {
	p, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return false, err
	}
	return requesterID != "" && requesterID == p.OwnerID, nil
}
