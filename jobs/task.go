package jobs

import (
	"encoding/json"
	"time"
)

// Type enumerates the kinds of background work the runner can execute.
// The set is open for extension: callers register an Action per type.
type Type string

const (
	// TypeGenerateDraft generates a draft course from a document version
	TypeGenerateDraft Type = "GENERATE_DRAFT"

	// TypeExportPack assembles an export manifest for a set of courses
	TypeExportPack Type = "EXPORT_PACK"
)

// Status is the task state machine value. Transitions are monotonic:
// queued -> processing -> completed | failed, queued -> cancelled,
// processing -> cancelled. A task never regresses to an earlier state.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether no further transition can occur from s
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// canTransition reports whether moving from one status to another is a
// legal forward move
func canTransition(from, to Status) bool {
	switch from {
	case StatusQueued:
		return to == StatusProcessing || to == StatusCancelled || to == StatusFailed
	case StatusProcessing:
		return to == StatusCompleted || to == StatusFailed || to == StatusCancelled
	}
	return false
}

// Task is a trackable unit of background work. Mutable fields (Status,
// Result, Error) are written exclusively by the runner; callers read the
// task by polling the store.
type Task struct {
	// Unique identifier, assigned at creation
	ID string `json:"id"`

	// Kind of work this task performs
	Type Type `json:"type"`

	// Opaque structured input for the action
	Payload json.RawMessage `json:"payload,omitempty"`

	// Current state machine value
	Status Status `json:"status"`

	// Opaque structured output; nil until StatusCompleted
	Result json.RawMessage `json:"result,omitempty"`

	// Error summary; empty unless StatusFailed or StatusCancelled
	Error string `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy so callers never share mutable state with the
// runner
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}

	clone := *t
	if t.Payload != nil {
		clone.Payload = append(json.RawMessage(nil), t.Payload...)
	}
	if t.Result != nil {
		clone.Result = append(json.RawMessage(nil), t.Result...)
	}
	return &clone
}

// CourseStatusDraft is the status every generated course starts in
const CourseStatusDraft = "draft"

// Course is the single material effect of a completed GENERATE_DRAFT
// task: one new course record attributed to the requesting user
type Course struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Status            string    `json:"status"`
	CreatedBy         string    `json:"created_by"`
	DocumentVersionID string    `json:"document_version_id"`
	CreatedAt         time.Time `json:"created_at"`
}
