package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/keikaku/internal/lock"
)

// MockLocker implements lock.Locker for testing
type MockLocker struct {
	// AcquireFn allows test cases to mock the Acquire behavior
	AcquireFn func(ctx context.Context, key string) (lock.Release, error)

	mu       sync.Mutex
	acquired []string
	released []string
}

var _ lock.Locker = (*MockLocker)(nil)

// Acquire implements the lock.Locker interface. Without AcquireFn every
// acquisition succeeds immediately.
func (m *MockLocker) Acquire(ctx context.Context, key string) (lock.Release, error) {
	if m.AcquireFn != nil {
		return m.AcquireFn(ctx, key)
	}
	m.mu.Lock()
	m.acquired = append(m.acquired, key)
	m.mu.Unlock()
	return func(context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.released = append(m.released, key)
		return nil
	}, nil
}

// Acquired returns the keys passed to successful Acquire calls.
func (m *MockLocker) Acquired() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.acquired...)
}

// Released returns the keys whose release function was called.
func (m *MockLocker) Released() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.released...)
}
