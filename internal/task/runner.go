package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// Retain bounds how many submitted tasks stay queryable. The oldest
	// finished tasks are forgotten first. Zero means 1000.
	Retain int
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount: 2,
		QueueSize:   100,
		Retain:      1000,
	}
}

// failer is implemented by tasks that track their own terminal status.
type failer interface {
	fail(err error)
}

// TaskRunner manages background task processing and keeps submitted tasks
// queryable by id.
type TaskRunner struct {
	queue  *Queue
	pool   *WorkerPool
	logger *slog.Logger
	retain int

	mu    sync.Mutex
	tasks map[uuid.UUID]Task
	order []uuid.UUID
}

// NewTaskRunner creates a new TaskRunner
func NewTaskRunner(config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "task_runner")
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultTaskRunnerConfig().QueueSize
	}
	if config.Retain <= 0 {
		config.Retain = DefaultTaskRunnerConfig().Retain
	}

	queue := NewQueue(config.QueueSize, logger)
	pool := NewWorkerPool(queue.Tasks(), WorkerPoolConfig{WorkerCount: config.WorkerCount}, logger)
	pool.SetErrorHandler(func(task Task, err error) {
		if f, ok := task.(failer); ok {
			f.fail(err)
		}
	})
	return &TaskRunner{
		queue:  queue,
		pool:   pool,
		logger: logger,
		retain: config.Retain,
		tasks:  make(map[uuid.UUID]Task),
	}
}

// Start begins processing tasks
func (r *TaskRunner) Start() {
	r.pool.Start()
}

// Submit adds a new task to the queue
func (r *TaskRunner) Submit(task Task) error {
	r.mu.Lock()
	r.tasks[task.ID()] = task
	r.order = append(r.order, task.ID())
	r.mu.Unlock()

	if err := r.queue.Push(task); err != nil {
		r.forget(task.ID())
		return fmt.Errorf("failed to submit task: %w", err)
	}

	r.prune()
	return nil
}

// Get returns a submitted task by id.
func (r *TaskRunner) Get(id uuid.UUID) (Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	return t, ok
}

// Stop stops accepting tasks and lets queued tasks finish. If ctx ends
// first, running tasks are cancelled.
func (r *TaskRunner) Stop(ctx context.Context) {
	r.queue.Close()

	done := make(chan struct{})
	go func() {
		r.pool.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("task runner drained")
	case <-ctx.Done():
		r.logger.Warn("task runner stop deadline reached, cancelling running tasks")
	}
	r.pool.Stop()
}

func (r *TaskRunner) forget(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// prune drops the oldest finished tasks beyond the retention limit.
func (r *TaskRunner) prune() {
	r.mu.Lock()
	defer r.mu.Unlock()

	excess := len(r.order) - r.retain
	if excess <= 0 {
		return
	}
	kept := r.order[:0]
	for _, id := range r.order {
		if excess > 0 && r.tasks[id].Status().Finished() {
			delete(r.tasks, id)
			excess--
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
}
