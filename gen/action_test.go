package gen

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carelearn/phicore-go/core"
	"github.com/carelearn/phicore-go/jobs"
)

func newDraftRunner(t *testing.T, store jobs.Store, generator Generator) *jobs.Runner {
	t.Helper()

	r := jobs.NewRunner(store, jobs.Options{
		Workers: 1,
		Audit:   core.NewAuditLogger(filepath.Join(t.TempDir(), "audit.log"), core.AuditLogLevelStandard),
	})
	t.Cleanup(r.Close)
	r.Register(jobs.TypeGenerateDraft, DraftAction(store, generator))
	return r
}

func awaitTerminal(t *testing.T, r *jobs.Runner, id string) *jobs.Task {
	t.Helper()

	var task *jobs.Task
	require.Eventually(t, func() bool {
		var err error
		task, err = r.Task(context.Background(), id)
		return err == nil && task.Status.Terminal()
	}, 5*time.Second, 10*time.Millisecond)
	return task
}

func TestDraftActionCreatesOneCourse(t *testing.T) {
	store := jobs.NewMemoryStore()
	r := newDraftRunner(t, store, NewStaticGenerator())

	task, err := r.Submit(context.Background(), jobs.TypeGenerateDraft, DraftPayload{
		DocumentVersionID: "docver-1",
		UserID:            "user-1",
		DocumentText:      "Hand Hygiene Policy\n\nWash hands before patient contact.",
	})
	require.NoError(t, err)

	final := awaitTerminal(t, r, task.ID)
	require.Equal(t, jobs.StatusCompleted, final.Status)

	var result DraftResult
	require.NoError(t, json.Unmarshal(final.Result, &result))
	require.NotEmpty(t, result.CourseID)
	assert.Equal(t, "Hand Hygiene Policy", result.Title)

	course, err := store.GetCourse(context.Background(), result.CourseID)
	require.NoError(t, err)
	assert.Equal(t, jobs.CourseStatusDraft, course.Status)
	assert.Equal(t, "user-1", course.CreatedBy)
	assert.Equal(t, "docver-1", course.DocumentVersionID)

	// Exactly one course for the completed task
	assert.Len(t, store.Courses(), 1)
}

func TestDraftActionMissingDocumentVersion(t *testing.T) {
	store := jobs.NewMemoryStore()
	r := newDraftRunner(t, store, NewStaticGenerator())

	task, err := r.Submit(context.Background(), jobs.TypeGenerateDraft, DraftPayload{UserID: "user-1"})
	require.NoError(t, err)

	final := awaitTerminal(t, r, task.ID)
	assert.Equal(t, jobs.StatusFailed, final.Status)
	assert.Contains(t, final.Error, "no document version id")
	assert.Empty(t, store.Courses())
}

func TestDraftActionMissingUser(t *testing.T) {
	store := jobs.NewMemoryStore()
	r := newDraftRunner(t, store, NewStaticGenerator())

	task, err := r.Submit(context.Background(), jobs.TypeGenerateDraft, DraftPayload{DocumentVersionID: "docver-1"})
	require.NoError(t, err)

	final := awaitTerminal(t, r, task.ID)
	assert.Equal(t, jobs.StatusFailed, final.Status)
	assert.Contains(t, final.Error, "no user id")
	assert.Empty(t, store.Courses())
}

type failingGenerator struct{}

func (failingGenerator) GenerateDraft(ctx context.Context, req DraftRequest) (*Draft, error) {
	return nil, errors.New("model unavailable")
}

// A generation failure must fail the task without creating a course
func TestDraftActionGeneratorFailure(t *testing.T) {
	store := jobs.NewMemoryStore()
	r := newDraftRunner(t, store, failingGenerator{})

	task, err := r.Submit(context.Background(), jobs.TypeGenerateDraft, DraftPayload{
		DocumentVersionID: "docver-1",
		UserID:            "user-1",
	})
	require.NoError(t, err)

	final := awaitTerminal(t, r, task.ID)
	assert.Equal(t, jobs.StatusFailed, final.Status)
	assert.Contains(t, final.Error, "model unavailable")
	assert.Empty(t, store.Courses())
}
