package domain

import "time"

// Author is the display slice of the comment author's profile.
type Author struct {
	Email    string  `json:"email"`
	FullName *string `json:"full_name,omitempty"`
}

// Comment is a project-level discussion message with no spatial anchor.
type Comment struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Author    *Author   `json:"author,omitempty"`
}

// CanDelete applies the shared deletion rule: author or project owner.
func (c *Comment) CanDelete(requesterID string, isProjectOwner bool) bool {
	return isProjectOwner || (requesterID != "" && requesterID == c.UserID)
}
