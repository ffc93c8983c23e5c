package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	store, err := NewSQLiteStore(db)
	require.NoError(t, err)
	return store
}

func TestSQLiteTaskRoundTrip(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	created := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	task := &Task{
		ID:        "task-1",
		Type:      TypeGenerateDraft,
		Payload:   json.RawMessage(`{"document_version_id":"docver-1","user_id":"user-1"}`),
		Status:    StatusQueued,
		CreatedAt: created,
		UpdatedAt: created,
	}
	require.NoError(t, store.CreateTask(ctx, task))

	got, err := store.GetTask(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, TypeGenerateDraft, got.Type)
	assert.Equal(t, StatusQueued, got.Status)
	assert.JSONEq(t, string(task.Payload), string(got.Payload))
	assert.Nil(t, got.Result)
	assert.Empty(t, got.Error)
	assert.True(t, got.CreatedAt.Equal(created))
}

func TestSQLiteTaskUpdate(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	task := newTask("task-1")
	require.NoError(t, store.CreateTask(ctx, task))

	task.Status = StatusCompleted
	task.Result = json.RawMessage(`{"course_id":"course-1"}`)
	task.UpdatedAt = time.Now().UTC()
	require.NoError(t, store.UpdateTask(ctx, task))

	got, err := store.GetTask(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.JSONEq(t, `{"course_id":"course-1"}`, string(got.Result))
}

func TestSQLiteTaskNotFound(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	_, err := store.GetTask(ctx, "missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)

	assert.ErrorIs(t, store.UpdateTask(ctx, newTask("missing")), ErrTaskNotFound)
}

func TestSQLiteCourses(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"course-1", "course-2"} {
		require.NoError(t, store.CreateCourse(ctx, &Course{
			ID:                id,
			Title:             "Infection Control " + id,
			Status:            CourseStatusDraft,
			CreatedBy:         "user-1",
			DocumentVersionID: "docver-1",
			CreatedAt:         base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, store.CreateCourse(ctx, &Course{
		ID:        "course-3",
		Title:     "Other User Course",
		Status:    CourseStatusDraft,
		CreatedBy: "user-2",
		CreatedAt: base,
	}))

	got, err := store.GetCourse(ctx, "course-1")
	require.NoError(t, err)
	assert.Equal(t, "Infection Control course-1", got.Title)
	assert.Equal(t, "docver-1", got.DocumentVersionID)

	_, err = store.GetCourse(ctx, "missing")
	assert.ErrorIs(t, err, ErrCourseNotFound)

	courses, err := store.CoursesByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, courses, 2)
	// Newest first
	assert.Equal(t, "course-2", courses[0].ID)
	assert.Equal(t, "course-1", courses[1].ID)
}

// The runner should work unchanged over the SQLite-backed store
func TestRunnerOverSQLiteStore(t *testing.T) {
	store := newSQLiteStore(t)
	r := newTestRunner(t, store, Options{Workers: 1})
	r.Register(TypeExportPack, ExportPackAction())

	task, err := r.Submit(context.Background(), TypeExportPack, ExportPackPayload{
		CourseIDs:   []string{"course-1"},
		RequestedBy: "user-1",
	})
	require.NoError(t, err)

	final := waitForTerminal(t, r, task.ID)
	require.Equal(t, StatusCompleted, final.Status)

	var result ExportPackResult
	require.NoError(t, json.Unmarshal(final.Result, &result))
	assert.Equal(t, 1, result.CourseCount)
}
