package task

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")
)

// Queue is a bounded FIFO of tasks waiting for a worker. Push never blocks:
// a full queue rejects the task so the caller can report it.
type Queue struct {
	mu     sync.Mutex
	tasks  chan Task
	closed bool
	logger *slog.Logger
}

// NewQueue returns a queue holding at most size waiting tasks.
func NewQueue(size int, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		tasks:  make(chan Task, size),
		logger: logger,
	}
}

// Push appends t. It fails with ErrQueueFull or ErrQueueClosed.
func (q *Queue) Push(t Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.tasks <- t:
		q.logger.Debug("task queued",
			"task_id", t.ID(),
			"task_kind", t.Kind(),
			"waiting", len(q.tasks))
		return nil
	default:
		return fmt.Errorf("%w: %d tasks waiting", ErrQueueFull, cap(q.tasks))
	}
}

// Tasks is the receive side consumed by workers. It is closed by Close once
// the waiting tasks have been received.
func (q *Queue) Tasks() <-chan Task {
	return q.tasks
}

// Len is the number of tasks waiting for a worker.
func (q *Queue) Len() int {
	return len(q.tasks)
}

// Close rejects further pushes. Waiting tasks stay receivable. Calling
// Close more than once is harmless.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.tasks)
	q.logger.Info("task queue closed", "waiting", len(q.tasks))
}
