package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ExportPackPayload is the input for EXPORT_PACK tasks
type ExportPackPayload struct {
	CourseIDs   []string `json:"course_ids"`
	RequestedBy string   `json:"requested_by"`
}

// ExportPackResult is the output recorded on a completed EXPORT_PACK task
type ExportPackResult struct {
	PackID      string    `json:"pack_id"`
	CourseCount int       `json:"course_count"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ExportPackAction builds the action for EXPORT_PACK tasks. The export
// itself is a manifest in the task result; assembling and delivering the
// actual archive belongs to the surrounding application.
func ExportPackAction() Action {
	return func(ctx context.Context, task *Task) (json.RawMessage, error) {
		var payload ExportPackPayload
		if err := json.Unmarshal(task.Payload, &payload); err != nil {
			return nil, newTaskError(ErrorCategoryValidation, task.ID, fmt.Errorf("invalid export payload: %w", err))
		}
		if len(payload.CourseIDs) == 0 {
			return nil, newTaskError(ErrorCategoryValidation, task.ID, fmt.Errorf("export payload names no courses"))
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result := ExportPackResult{
			PackID:      uuid.NewString(),
			CourseCount: len(payload.CourseIDs),
			GeneratedAt: time.Now().UTC(),
		}
		return json.Marshal(result)
	}
}
