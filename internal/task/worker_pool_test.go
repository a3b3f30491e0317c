package task

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkerPool(t *testing.T) {
	logger := setupTestLogger()
	queue := NewQueue(10, logger)

	pool := NewWorkerPool(queue.Tasks(), WorkerPoolConfig{WorkerCount: 5}, logger)
	assert.Equal(t, 5, pool.workerCount)
	assert.NotNil(t, pool.ctx)
	assert.Nil(t, pool.errorHandler)

	// Invalid worker counts fall back to one worker.
	for _, n := range []int{0, -5} {
		pool = NewWorkerPool(queue.Tasks(), WorkerPoolConfig{WorkerCount: n}, logger)
		assert.Equal(t, 1, pool.workerCount)
	}
}

func TestWorkerPoolProcessesAllTasks(t *testing.T) {
	queue := NewQueue(20, setupTestLogger())
	pool := NewWorkerPool(queue.Tasks(), WorkerPoolConfig{WorkerCount: 3}, setupTestLogger())

	var executed atomic.Int32
	for i := 0; i < 10; i++ {
		task := newStubTask()
		task.execFn = func(context.Context) error {
			executed.Add(1)
			return nil
		}
		require.NoError(t, queue.Push(task))
	}

	pool.Start()
	queue.Close()

	waitOrFail(t, pool.Wait)
	assert.Equal(t, int32(10), executed.Load())
}

func TestWorkerPoolErrorHandler(t *testing.T) {
	queue := NewQueue(5, setupTestLogger())
	pool := NewWorkerPool(queue.Tasks(), WorkerPoolConfig{WorkerCount: 1}, setupTestLogger())

	var (
		mu     sync.Mutex
		failed []error
	)
	pool.SetErrorHandler(func(_ Task, err error) {
		mu.Lock()
		defer mu.Unlock()
		failed = append(failed, err)
	})

	boom := errors.New("boom")
	erroring := newStubTask()
	erroring.execFn = func(context.Context) error { return boom }
	panicking := newStubTask()
	panicking.execFn = func(context.Context) error { panic("kaboom") }

	require.NoError(t, queue.Push(erroring))
	require.NoError(t, queue.Push(panicking))
	require.NoError(t, queue.Push(newStubTask()))

	pool.Start()
	queue.Close()
	waitOrFail(t, pool.Wait)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, failed, 2)
	assert.ErrorIs(t, failed[0], boom)
	assert.Contains(t, failed[1].Error(), "kaboom")
}

func TestWorkerPoolStopCancelsRunningTasks(t *testing.T) {
	queue := NewQueue(5, setupTestLogger())
	pool := NewWorkerPool(queue.Tasks(), WorkerPoolConfig{WorkerCount: 1}, setupTestLogger())

	started := make(chan struct{})
	task := newStubTask()
	task.execFn = func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}
	require.NoError(t, queue.Push(task))

	pool.Start()
	<-started
	waitOrFail(t, pool.Stop)
}

// waitOrFail runs fn and fails the test if it does not return within a second.
func waitOrFail(t *testing.T, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		fn()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out")
	}
}
