package jobs

import (
	"context"
	"errors"
	"sync"
)

// ErrTaskNotFound is returned when a task id is unknown to the store
var ErrTaskNotFound = errors.New("task not found")

// ErrCourseNotFound is returned when a course id is unknown to the store
var ErrCourseNotFound = errors.New("course not found")

// Store is the persistence collaborator for the task runner. It is
// injected at construction so callers can supply test doubles and run
// multiple isolated runner instances.
type Store interface {
	// CreateTask inserts a new task; the id must not already exist
	CreateTask(ctx context.Context, task *Task) error

	// UpdateTask persists the task's current status, result and error
	UpdateTask(ctx context.Context, task *Task) error

	// GetTask reads a task by id; returns ErrTaskNotFound when absent
	GetTask(ctx context.Context, id string) (*Task, error)

	// CreateCourse inserts a new course record
	CreateCourse(ctx context.Context, course *Course) error
}

// MemoryStore is an in-memory Store for tests, demos and single-process
// embedding. Values are copied in and out so callers never alias the
// store's internal state.
type MemoryStore struct {
	mu      sync.RWMutex
	tasks   map[string]*Task
	courses map[string]*Course
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks:   make(map[string]*Task),
		courses: make(map[string]*Course),
	}
}

func (s *MemoryStore) CreateTask(ctx context.Context, task *Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.ID]; exists {
		return errors.New("task already exists")
	}
	s.tasks[task.ID] = task.Clone()
	return nil
}

func (s *MemoryStore) UpdateTask(ctx context.Context, task *Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.ID]; !exists {
		return ErrTaskNotFound
	}
	s.tasks[task.ID] = task.Clone()
	return nil
}

func (s *MemoryStore) GetTask(ctx context.Context, id string) (*Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	task, exists := s.tasks[id]
	if !exists {
		return nil, ErrTaskNotFound
	}
	return task.Clone(), nil
}

func (s *MemoryStore) CreateCourse(ctx context.Context, course *Course) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := *course
	s.courses[course.ID] = &c
	return nil
}

// GetCourse reads a course by id; returns ErrCourseNotFound when absent
func (s *MemoryStore) GetCourse(ctx context.Context, id string) (*Course, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	course, exists := s.courses[id]
	if !exists {
		return nil, ErrCourseNotFound
	}
	c := *course
	return &c, nil
}

// Courses returns a snapshot of all course records
func (s *MemoryStore) Courses() []*Course {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Course, 0, len(s.courses))
	for _, course := range s.courses {
		c := *course
		out = append(out, &c)
	}
	return out
}
