package gen

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carelearn/phicore-go/jobs"
)

// DraftPayload is the input for GENERATE_DRAFT tasks
type DraftPayload struct {
	DocumentVersionID string `json:"document_version_id"`
	UserID            string `json:"user_id"`

	// Optional document text forwarded to the generator; the surrounding
	// application may instead resolve the text from the version id
	DocumentText string `json:"document_text,omitempty"`
}

// DraftResult is the output recorded on a completed GENERATE_DRAFT task
type DraftResult struct {
	CourseID string `json:"course_id"`
	Title    string `json:"title"`
}

// DraftAction builds the GENERATE_DRAFT action: generate a draft with the
// collaborator, then create exactly one course record in draft status
// attributed to the requesting user. The course id is threaded back
// through the task result for the caller to poll.
//
// No de-duplication per document version is performed: two tasks naming
// the same version will create two courses. Callers needing
// at-most-one-course-per-version must coordinate externally.
func DraftAction(store jobs.Store, generator Generator) jobs.Action {
	return func(ctx context.Context, task *jobs.Task) (json.RawMessage, error) {
		var payload DraftPayload
		if err := json.Unmarshal(task.Payload, &payload); err != nil {
			return nil, fmt.Errorf("invalid draft payload: %w", err)
		}
		if payload.DocumentVersionID == "" {
			return nil, fmt.Errorf("draft payload has no document version id")
		}
		if payload.UserID == "" {
			return nil, fmt.Errorf("draft payload has no user id")
		}

		draft, err := generator.GenerateDraft(ctx, DraftRequest{
			DocumentVersionID: payload.DocumentVersionID,
			DocumentText:      payload.DocumentText,
			RequestedBy:       payload.UserID,
		})
		if err != nil {
			return nil, fmt.Errorf("draft generation failed: %w", err)
		}

		course := &jobs.Course{
			ID:                uuid.NewString(),
			Title:             draft.Title,
			Status:            jobs.CourseStatusDraft,
			CreatedBy:         payload.UserID,
			DocumentVersionID: payload.DocumentVersionID,
			CreatedAt:         time.Now().UTC(),
		}
		if err := store.CreateCourse(ctx, course); err != nil {
			return nil, fmt.Errorf("failed to create course: %w", err)
		}

		return json.Marshal(DraftResult{
			CourseID: course.ID,
			Title:    course.Title,
		})
	}
}
