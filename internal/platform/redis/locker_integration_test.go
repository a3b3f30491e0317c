//go:build integration

package redis_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phrazzld/keikaku/internal/lock"
	"github.com/phrazzld/keikaku/internal/platform/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func startRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err, "start redis")
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	return "redis://" + endpoint
}

func TestLockerIntegration(t *testing.T) {
	url := startRedis(t)
	ctx := context.Background()

	locker, err := redis.Connect(ctx, url, time.Second, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = locker.Close() })

	t.Run("mutual exclusion", func(t *testing.T) {
		var inside, overlaps int32
		var wg sync.WaitGroup
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				release, err := locker.Acquire(ctx, lock.UserKey("u1"))
				if !assert.NoError(t, err) {
					return
				}
				if atomic.AddInt32(&inside, 1) > 1 {
					atomic.AddInt32(&overlaps, 1)
				}
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&inside, -1)
				assert.NoError(t, release(ctx))
			}()
		}
		wg.Wait()
		assert.Zero(t, overlaps)
	})

	t.Run("expired lock is not released by the old holder", func(t *testing.T) {
		release, err := locker.Acquire(ctx, "ttl-key")
		require.NoError(t, err)

		time.Sleep(1500 * time.Millisecond)

		next, err := locker.Acquire(ctx, "ttl-key")
		require.NoError(t, err)

		assert.ErrorIs(t, release(ctx), lock.ErrNotHeld)
		assert.NoError(t, next(ctx))
	})

	t.Run("acquire honors context", func(t *testing.T) {
		release, err := locker.Acquire(ctx, "busy")
		require.NoError(t, err)
		defer func() { _ = release(ctx) }()

		short, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
		defer cancel()
		_, err = locker.Acquire(short, "busy")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
