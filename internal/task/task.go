package task

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Status is a task's position in its lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Finished reports whether s is terminal.
func (s Status) Finished() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Kind names the work a task does. It appears in logs and API responses.
type Kind string

// KindImport adds every item of a well-known set to a user's cards.
const KindImport Kind = "well_known_import"

// Task is a unit of background work. Status must be safe to call while
// Execute runs on a worker.
type Task interface {
	ID() uuid.UUID
	Kind() Kind
	Status() Status
	Execute(ctx context.Context) error
}

// progress records the lifecycle of one task. The owning task guards it
// with its own mutex.
type progress struct {
	status     Status
	startedAt  time.Time
	finishedAt time.Time
	err        error
}

func (p *progress) start(now time.Time) {
	p.status = StatusProcessing
	p.startedAt = now
}

// finish moves p to a terminal status. It reports false, and changes
// nothing, when p has already finished.
func (p *progress) finish(now time.Time, err error) bool {
	if p.status.Finished() {
		return false
	}
	p.status = StatusCompleted
	if err != nil {
		p.status = StatusFailed
	}
	p.err = err
	p.finishedAt = now
	return true
}

// Timing is when a task started and finished. Zero values mean the step
// has not happened yet.
type Timing struct {
	StartedAt  time.Time
	FinishedAt time.Time
}

// Elapsed is the running time so far, or the total once finished.
func (t Timing) Elapsed(now time.Time) time.Duration {
	switch {
	case t.StartedAt.IsZero():
		return 0
	case t.FinishedAt.IsZero():
		return now.Sub(t.StartedAt)
	default:
		return t.FinishedAt.Sub(t.StartedAt)
	}
}
