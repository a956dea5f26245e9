package realtime

import "encoding/json"

// EventType mirrors the backing store's change feed: records are only ever
// inserted or deleted in this core, never updated in place.
type EventType string

const (
	EventInsert EventType = "insert"
	EventDelete EventType = "delete"
)

// Event is a push-to-refresh hint delivered to connected viewers. Inserts
// carry only the scope, forcing receivers through a full refetch so joined
// profile data stays consistent. Deletes carry the prior record id so a
// receiver can drop it locally without refetching.
type Event struct {
	Type      EventType       `json:"type"`
	Table     string          `json:"table"`
	ProjectID string          `json:"project_id,omitempty"`
	RecordID  string          `json:"record_id,omitempty"`
	Record    json.RawMessage `json:"record,omitempty"`
}

const (
	TableComments    = "comments"
	TableAnnotations = "annotations"
	TableProjects    = "projects"
)
