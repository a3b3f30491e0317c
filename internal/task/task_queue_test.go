package task

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTask is a Task whose behavior each test sets through execFn.
type stubTask struct {
	id     uuid.UUID
	status atomic.Value
	execFn func(ctx context.Context) error
}

func newStubTask() *stubTask {
	s := &stubTask{id: uuid.New()}
	s.status.Store(StatusPending)
	return s
}

func (s *stubTask) ID() uuid.UUID  { return s.id }
func (s *stubTask) Kind() Kind     { return "stub" }
func (s *stubTask) Status() Status { return s.status.Load().(Status) }

func (s *stubTask) Execute(ctx context.Context) error {
	if s.execFn == nil {
		return nil
	}
	return s.execFn(ctx)
}

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestQueuePushAndReceive(t *testing.T) {
	t.Parallel()
	q := NewQueue(3, setupTestLogger())

	pushed := []*stubTask{newStubTask(), newStubTask(), newStubTask()}
	for _, s := range pushed {
		require.NoError(t, q.Push(s))
	}
	assert.Equal(t, 3, q.Len())

	for _, want := range pushed {
		got := <-q.Tasks()
		assert.Equal(t, want.ID(), got.ID(), "tasks leave in push order")
	}
	assert.Zero(t, q.Len())
}

func TestQueueRejectsWhenFull(t *testing.T) {
	t.Parallel()
	q := NewQueue(1, setupTestLogger())

	require.NoError(t, q.Push(newStubTask()))
	err := q.Push(newStubTask())
	require.ErrorIs(t, err, ErrQueueFull)
	assert.Contains(t, err.Error(), "1 tasks waiting")

	<-q.Tasks()
	assert.NoError(t, q.Push(newStubTask()), "a received task frees its slot")
}

func TestQueueClose(t *testing.T) {
	t.Parallel()
	q := NewQueue(4, setupTestLogger())

	waiting := newStubTask()
	require.NoError(t, q.Push(waiting))
	q.Close()
	q.Close()

	assert.ErrorIs(t, q.Push(newStubTask()), ErrQueueClosed)

	got, ok := <-q.Tasks()
	require.True(t, ok, "waiting tasks survive Close")
	assert.Equal(t, waiting.ID(), got.ID())

	select {
	case _, ok := <-q.Tasks():
		assert.False(t, ok)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("drained queue did not report closed")
	}
}

func TestQueueConcurrentPushAndClose(t *testing.T) {
	t.Parallel()
	q := NewQueue(64, setupTestLogger())

	var (
		wg       sync.WaitGroup
		accepted atomic.Int32
	)
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := q.Push(newStubTask())
			if err == nil {
				accepted.Add(1)
				return
			}
			assert.ErrorIs(t, err, ErrQueueClosed)
		}()
	}
	q.Close()
	wg.Wait()

	received := 0
	for range q.Tasks() {
		received++
	}
	assert.Equal(t, int(accepted.Load()), received, "every accepted task is delivered")
}

func TestProgressLifecycle(t *testing.T) {
	t.Parallel()
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	var p progress
	assert.False(t, p.status.Finished())

	p.start(start)
	assert.Equal(t, StatusProcessing, p.status)
	timing := Timing{StartedAt: p.startedAt}
	assert.Equal(t, time.Minute, timing.Elapsed(start.Add(time.Minute)))

	require.True(t, p.finish(start.Add(2*time.Minute), nil))
	assert.Equal(t, StatusCompleted, p.status)
	assert.False(t, p.finish(start.Add(3*time.Minute), assert.AnError), "a finished task keeps its outcome")
	assert.Equal(t, StatusCompleted, p.status)
	assert.NoError(t, p.err)

	timing.FinishedAt = p.finishedAt
	assert.Equal(t, 2*time.Minute, timing.Elapsed(start.Add(time.Hour)))
	assert.Zero(t, Timing{}.Elapsed(start))
}
