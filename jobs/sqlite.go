package jobs

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a Store backed by a SQLite database. It owns no
// connection lifecycle: callers open the *sql.DB (driver name "sqlite")
// and close it when done.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates the store and runs its migration
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		payload JSON,
		status TEXT NOT NULL,
		result JSON,
		error TEXT NOT NULL DEFAULT '',
		created_at DATETIME,
		updated_at DATETIME
	);
	CREATE TABLE IF NOT EXISTS courses (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		status TEXT NOT NULL,
		created_by TEXT NOT NULL,
		document_version_id TEXT NOT NULL DEFAULT '',
		created_at DATETIME
	);`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

func (s *SQLiteStore) CreateTask(ctx context.Context, task *Task) error {
	query := `INSERT INTO tasks (id, type, payload, status, result, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		task.ID, string(task.Type), rawToNullString(task.Payload), string(task.Status),
		rawToNullString(task.Result), task.Error,
		task.CreatedAt.UTC().Format(time.RFC3339Nano),
		task.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateTask(ctx context.Context, task *Task) error {
	query := `UPDATE tasks SET status = ?, result = ?, error = ?, updated_at = ? WHERE id = ?`

	res, err := s.db.ExecContext(ctx, query,
		string(task.Status), rawToNullString(task.Result), task.Error,
		task.UpdatedAt.UTC().Format(time.RFC3339Nano), task.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (s *SQLiteStore) GetTask(ctx context.Context, id string) (*Task, error) {
	query := `SELECT id, type, payload, status, result, error, created_at, updated_at
		FROM tasks WHERE id = ?`

	row := s.db.QueryRowContext(ctx, query, id)

	var (
		taskID    string
		taskType  string
		payload   sql.NullString
		status    string
		result    sql.NullString
		errMsg    string
		createdAt string
		updatedAt string
	)
	err := row.Scan(&taskID, &taskType, &payload, &status, &result, &errMsg, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	task := &Task{
		ID:        taskID,
		Type:      Type(taskType),
		Status:    Status(status),
		Error:     errMsg,
		CreatedAt: parseTime(createdAt),
		UpdatedAt: parseTime(updatedAt),
	}
	if payload.Valid && payload.String != "" {
		task.Payload = []byte(payload.String)
	}
	if result.Valid && result.String != "" {
		task.Result = []byte(result.String)
	}
	return task, nil
}

func (s *SQLiteStore) CreateCourse(ctx context.Context, course *Course) error {
	query := `INSERT INTO courses (id, title, status, created_by, document_version_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		course.ID, course.Title, course.Status, course.CreatedBy,
		course.DocumentVersionID, course.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert course: %w", err)
	}
	return nil
}

// GetCourse reads a course by id; returns ErrCourseNotFound when absent
func (s *SQLiteStore) GetCourse(ctx context.Context, id string) (*Course, error) {
	query := `SELECT id, title, status, created_by, document_version_id, created_at
		FROM courses WHERE id = ?`

	row := s.db.QueryRowContext(ctx, query, id)

	var (
		courseID  string
		title     string
		status    string
		createdBy string
		docVerID  string
		createdAt string
	)
	err := row.Scan(&courseID, &title, &status, &createdBy, &docVerID, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	return &Course{
		ID:                courseID,
		Title:             title,
		Status:            status,
		CreatedBy:         createdBy,
		DocumentVersionID: docVerID,
		CreatedAt:         parseTime(createdAt),
	}, nil
}

// CoursesByUser returns the courses attributed to a user, newest first
func (s *SQLiteStore) CoursesByUser(ctx context.Context, userID string) ([]*Course, error) {
	query := `SELECT id, title, status, created_by, document_version_id, created_at
		FROM courses WHERE created_by = ? ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var courses []*Course
	for rows.Next() {
		var (
			courseID  string
			title     string
			status    string
			createdBy string
			docVerID  string
			createdAt string
		)
		if err := rows.Scan(&courseID, &title, &status, &createdBy, &docVerID, &createdAt); err != nil {
			return nil, err
		}
		courses = append(courses, &Course{
			ID:                courseID,
			Title:             title,
			Status:            status,
			CreatedBy:         createdBy,
			DocumentVersionID: docVerID,
			CreatedAt:         parseTime(createdAt),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return courses, nil
}

func rawToNullString(raw []byte) sql.NullString {
	if len(raw) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(raw), Valid: true}
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return time.Time{}
}
