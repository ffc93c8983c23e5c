package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carelearn/phicore-go/core"
)

// Action executes the work for one task type. It receives a context that
// is cancelled on timeout or explicit task cancellation, and returns the
// result payload recorded on the completed task.
type Action func(ctx context.Context, task *Task) (json.RawMessage, error)

// Options configures a Runner
type Options struct {
	// Number of worker goroutines; defaults to 4
	Workers int

	// Buffered queue capacity; defaults to 64. Submissions beyond the
	// buffer are handed to the pool from a helper goroutine so Submit
	// never blocks the caller.
	QueueSize int

	// Upper bound on a single action's runtime; defaults to 30s. This is
	// what guarantees every task reaches a terminal state in bounded time.
	ActionTimeout time.Duration

	// Runtime logger; defaults to stdout with a "[PHICORE]" prefix
	Logger *log.Logger

	// Audit sink for task transitions; defaults to the shared audit logger
	Audit *core.AuditLogger
}

// Runner drives tasks through their lifecycle on a bounded worker pool.
// Task creation is non-blocking: Submit returns the queued task
// immediately and all status progression happens out of band, written
// through the injected Store.
type Runner struct {
	store  Store
	opts   Options
	logger *log.Logger
	audit  *core.AuditLogger

	mu        sync.Mutex
	actions   map[Type]Action
	cancelled map[string]bool
	running   map[string]context.CancelFunc

	queue     chan *Task
	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewRunner creates a runner over the given store and starts its workers
func NewRunner(store Store, opts Options) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.ActionTimeout <= 0 {
		opts.ActionTimeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.New(os.Stdout, "[PHICORE] ", log.LstdFlags)
	}
	if opts.Audit == nil {
		opts.Audit = core.GetAuditLogger()
	}

	r := &Runner{
		store:     store,
		opts:      opts,
		logger:    opts.Logger,
		audit:     opts.Audit,
		actions:   make(map[Type]Action),
		cancelled: make(map[string]bool),
		running:   make(map[string]context.CancelFunc),
		queue:     make(chan *Task, opts.QueueSize),
		closed:    make(chan struct{}),
	}

	r.wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go r.worker()
	}

	return r
}

// Register binds an action to a task type. Submitting an unregistered
// type fails synchronously.
func (r *Runner) Register(t Type, action Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[t] = action
}

// Submit creates a task in the queued state and schedules it for
// background execution. The insert happens synchronously so a store
// rejection propagates to the caller instead of producing a ghost task;
// everything after that is out of band.
func (r *Runner) Submit(ctx context.Context, t Type, payload any) (*Task, error) {
	r.mu.Lock()
	_, registered := r.actions[t]
	r.mu.Unlock()
	if !registered {
		return nil, newTaskError(ErrorCategoryValidation, "", fmt.Errorf("no action registered for task type %q", t))
	}

	raw, err := marshalPayload(payload)
	if err != nil {
		return nil, newTaskError(ErrorCategoryValidation, "", fmt.Errorf("failed to encode payload: %w", err))
	}

	now := time.Now().UTC()
	task := &Task{
		ID:        uuid.NewString(),
		Type:      t,
		Payload:   raw,
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := r.store.CreateTask(ctx, task); err != nil {
		return nil, newTaskError(ErrorCategoryStorage, task.ID, fmt.Errorf("failed to create task: %w", err))
	}

	if err := r.audit.LogTaskTransition(task.ID, string(task.Type), "", string(StatusQueued), ""); err != nil {
		r.logger.Printf("audit write failed for task %s: %v", task.ID, err)
	}

	select {
	case r.queue <- task:
	default:
		// Queue is full; park the handoff in a goroutine so the caller
		// still returns immediately
		go func() {
			select {
			case r.queue <- task:
			case <-r.closed:
			}
		}()
	}

	return task.Clone(), nil
}

// Task reads the current state of a task by id, for polling
func (r *Runner) Task(ctx context.Context, id string) (*Task, error) {
	return r.store.GetTask(ctx, id)
}

// Cancel requests cancellation of a task. A still-queued task moves
// directly to cancelled and its side effect is never performed; a task in
// processing has its action context cancelled and reaches the cancelled
// terminal state once the action returns. Cancelling a task already in a
// terminal state is a no-op.
func (r *Runner) Cancel(ctx context.Context, id string) error {
	r.mu.Lock()
	r.cancelled[id] = true
	cancelRunning := r.running[id]
	r.mu.Unlock()

	if cancelRunning != nil {
		cancelRunning()
		return nil
	}

	task, err := r.store.GetTask(ctx, id)
	if err != nil {
		return err
	}
	if task.Status.Terminal() {
		return nil
	}
	if task.Status == StatusQueued {
		r.finish(task, StatusCancelled, nil, "cancelled before execution")
	}
	return nil
}

// Close stops accepting work, drains the queue and waits for in-flight
// tasks to reach a terminal state
func (r *Runner) Close() {
	r.closeOnce.Do(func() {
		close(r.closed)
	})
	r.wg.Wait()
}

func (r *Runner) worker() {
	defer r.wg.Done()
	for {
		select {
		case task := <-r.queue:
			r.execute(task)
		case <-r.closed:
			// Drain anything already enqueued before exiting
			for {
				select {
				case task := <-r.queue:
					r.execute(task)
				default:
					return
				}
			}
		}
	}
}

func (r *Runner) execute(task *Task) {
	r.mu.Lock()
	action := r.actions[task.Type]
	alreadyCancelled := r.cancelled[task.ID]
	r.mu.Unlock()

	if alreadyCancelled {
		r.finish(task, StatusCancelled, nil, "cancelled before execution")
		r.mu.Lock()
		delete(r.cancelled, task.ID)
		r.mu.Unlock()
		return
	}

	r.setStatus(task, StatusProcessing)

	ctx, cancel := context.WithTimeout(context.Background(), r.opts.ActionTimeout)
	r.mu.Lock()
	r.running[task.ID] = cancel
	r.mu.Unlock()
	defer func() {
		cancel()
		r.mu.Lock()
		delete(r.running, task.ID)
		delete(r.cancelled, task.ID)
		r.mu.Unlock()
	}()

	var result json.RawMessage
	var err error
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("action panicked: %v", rec)
			}
		}()
		result, err = action(ctx, task)
	}()

	if err != nil {
		r.mu.Lock()
		wasCancelled := r.cancelled[task.ID]
		r.mu.Unlock()

		if wasCancelled || errors.Is(err, context.Canceled) {
			r.finish(task, StatusCancelled, nil, fmt.Sprintf("[%s] %s", ErrorCategoryCanceled, err.Error()))
			return
		}

		category := categorizeActionError(err)
		r.finish(task, StatusFailed, nil, fmt.Sprintf("[%s] %s", category, err.Error()))
		return
	}

	r.finish(task, StatusCompleted, result, "")
}

// setStatus advances the task through the state machine, rejecting any
// regression, and persists the transition
func (r *Runner) setStatus(task *Task, next Status) {
	if !canTransition(task.Status, next) {
		r.logger.Printf("illegal transition %s -> %s for task %s ignored", task.Status, next, task.ID)
		return
	}

	from := task.Status
	task.Status = next
	task.UpdatedAt = time.Now().UTC()
	r.persist(task)

	if err := r.audit.LogTaskTransition(task.ID, string(task.Type), string(from), string(next), task.Error); err != nil {
		r.logger.Printf("audit write failed for task %s: %v", task.ID, err)
	}
}

// finish moves the task to a terminal state with its result or error summary
func (r *Runner) finish(task *Task, status Status, result json.RawMessage, errMsg string) {
	task.Result = result
	task.Error = errMsg
	r.setStatus(task, status)
}

// persist writes the task through the store with a short retry so a
// transient storage blip does not strand the task in a stale state
func (r *Runner) persist(task *Task) {
	var lastErr error
	backoff := 100 * time.Millisecond

	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		lastErr = r.store.UpdateTask(ctx, task)
		cancel()

		if lastErr == nil {
			return
		}
	}

	r.logger.Printf("failed to persist task %s after retries: %v", task.ID, lastErr)
}

func marshalPayload(payload any) (json.RawMessage, error) {
	switch p := payload.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return append(json.RawMessage(nil), p...), nil
	case []byte:
		return append(json.RawMessage(nil), p...), nil
	default:
		return json.Marshal(payload)
	}
}
