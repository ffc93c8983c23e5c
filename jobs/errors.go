package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrorCategory defines standardized error categories for the audit trail
type ErrorCategory string

const (
	ErrorCategoryValidation ErrorCategory = "validation"
	ErrorCategoryStorage    ErrorCategory = "storage"
	ErrorCategoryGeneration ErrorCategory = "generation"
	ErrorCategoryTimeout    ErrorCategory = "timeout"
	ErrorCategoryCanceled   ErrorCategory = "canceled"
	ErrorCategorySystem     ErrorCategory = "system"
)

// TaskError wraps task failures with standardized metadata
type TaskError struct {
	Category    ErrorCategory
	TaskID      string
	OriginalErr error
	Timestamp   time.Time
}

func (e *TaskError) Error() string {
	if e.TaskID == "" {
		return fmt.Sprintf("[%s] %s", e.Category, e.OriginalErr.Error())
	}
	return fmt.Sprintf("[%s] %s (task: %s)", e.Category, e.OriginalErr.Error(), e.TaskID)
}

func (e *TaskError) Unwrap() error {
	return e.OriginalErr
}

// newTaskError creates a new TaskError with standard fields
func newTaskError(category ErrorCategory, taskID string, err error) *TaskError {
	return &TaskError{
		Category:    category,
		TaskID:      taskID,
		OriginalErr: err,
		Timestamp:   time.Now(),
	}
}

// categorizeActionError maps an action failure to an error category for
// the task's failure summary
func categorizeActionError(err error) ErrorCategory {
	var taskErr *TaskError
	if errors.As(err, &taskErr) {
		return taskErr.Category
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorCategoryTimeout
	}
	if errors.Is(err, context.Canceled) {
		return ErrorCategoryCanceled
	}
	return ErrorCategorySystem
}
