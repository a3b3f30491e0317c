// Package lock serializes work on one user across goroutines and, with the
// Redis implementation, across server instances. Store transactions keep
// single writes consistent; the lock covers multi-step jobs such as a
// word-list import that must not interleave with another import.
package lock

import (
	"context"
	"errors"
	"sync"
)

// ErrNotHeld is returned by a release function whose lock has expired or
// was already released.
var ErrNotHeld = errors.New("lock not held")

// Release gives a lock back.
type Release func(ctx context.Context) error

// Locker acquires named exclusive locks.
type Locker interface {
	// Acquire blocks until the lock for key is held or ctx is done.
	Acquire(ctx context.Context, key string) (Release, error)
}

// Memory is a process-local Locker.
type Memory struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

// NewMemory returns an empty process-local Locker.
func NewMemory() *Memory {
	return &Memory{locks: make(map[string]chan struct{})}
}

var _ Locker = (*Memory)(nil)

// Acquire implements Locker.
func (m *Memory) Acquire(ctx context.Context, key string) (Release, error) {
	for {
		m.mu.Lock()
		held, busy := m.locks[key]
		if !busy {
			mine := make(chan struct{})
			m.locks[key] = mine
			m.mu.Unlock()
			return m.releaser(key, mine), nil
		}
		m.mu.Unlock()

		select {
		case <-held:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (m *Memory) releaser(key string, mine chan struct{}) Release {
	var once sync.Once
	return func(context.Context) error {
		err := ErrNotHeld
		once.Do(func() {
			m.mu.Lock()
			if m.locks[key] == mine {
				delete(m.locks, key)
			}
			m.mu.Unlock()
			close(mine)
			err = nil
		})
		return err
	}
}

// UserKey names the lock guarding one user's aggregate.
func UserKey(userID string) string {
	return "keikaku:lock:user:" + userID
}
