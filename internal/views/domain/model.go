package domain

import "time"

// ViewEvent is one recorded visit to a project. Anonymous views carry a nil
// viewer and can never surface in "shared with me".
type ViewEvent struct {
	ProjectID string    `json:"project_id"`
	ViewerID  *string   `json:"viewer_id,omitempty"`
	ViewedAt  time.Time `json:"viewed_at"`
}

// SharedProject is one row of the derived "shared with me" listing.
type SharedProject struct {
	ProjectID     string    `json:"project_id"`
	Title         string    `json:"title"`
	FileExtension string    `json:"file_extension"`
	OwnerName     string    `json:"owner_name"`
	OwnerEmail    string    `json:"owner_email"`
	LastViewed    time.Time `json:"last_viewed"`
}
