package task

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/keikaku/internal/service"
	"github.com/phrazzld/keikaku/internal/wellknown"
)

var (
	ErrNilImporter  = errors.New("import service cannot be nil")
	ErrEmptyUserID  = errors.New("user ID cannot be empty")
	ErrUnknownSetID = errors.New("unknown well-known set")
)

// ImportTask imports a well-known set into one user's knowledge set.
type ImportTask struct {
	id       uuid.UUID
	userID   uuid.UUID
	setID    wellknown.SetID
	importer service.ImportService
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	progress progress
	result   *service.ImportResult
}

var _ Task = (*ImportTask)(nil)

// NewImportTask creates a pending import task.
func NewImportTask(
	userID uuid.UUID,
	setID wellknown.SetID,
	importer service.ImportService,
	logger *slog.Logger,
) (*ImportTask, error) {
	if importer == nil {
		return nil, ErrNilImporter
	}
	if userID == uuid.Nil {
		return nil, ErrEmptyUserID
	}
	if _, err := wellknown.Load(setID); err != nil {
		return nil, errors.Join(ErrUnknownSetID, err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	return &ImportTask{
		id:       id,
		userID:   userID,
		setID:    setID,
		importer: importer,
		logger:   logger.With("task_id", id, "task_kind", KindImport, "user_id", userID, "set_id", setID),
		now:      time.Now,
		progress: progress{status: StatusPending},
	}, nil
}

func (t *ImportTask) ID() uuid.UUID          { return t.id }
func (t *ImportTask) Kind() Kind             { return KindImport }
func (t *ImportTask) UserID() uuid.UUID      { return t.userID }
func (t *ImportTask) SetID() wellknown.SetID { return t.setID }

func (t *ImportTask) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress.status
}

// Timing reports when the import started and finished.
func (t *ImportTask) Timing() Timing {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Timing{StartedAt: t.progress.startedAt, FinishedAt: t.progress.finishedAt}
}

// Result returns the import counts so far and the failure, if any. The
// result is nil until the importer has returned.
func (t *ImportTask) Result() (*service.ImportResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.result == nil {
		return nil, t.progress.err
	}
	r := *t.result
	return &r, t.progress.err
}

// Execute runs the import. A failed import keeps the counts of the items
// that were added before the failure.
func (t *ImportTask) Execute(ctx context.Context) error {
	t.mu.Lock()
	t.progress.start(t.now())
	t.mu.Unlock()
	t.logger.Info("well-known set import started")

	result, err := t.importer.ImportWellKnownSet(ctx, t.userID, t.setID)

	t.mu.Lock()
	t.result = result
	t.progress.finish(t.now(), err)
	elapsed := t.progress.finishedAt.Sub(t.progress.startedAt)
	t.mu.Unlock()

	if err != nil {
		return err
	}
	t.logger.Info("well-known set import finished", "elapsed", elapsed)
	return nil
}

// fail records err when Execute never reached a terminal status, as when
// the importer panicked.
func (t *ImportTask) fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.progress.finish(t.now(), err)
}
