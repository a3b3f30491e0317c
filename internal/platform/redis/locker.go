// Package redis provides a lock.Locker backed by Redis so that several
// server instances sharing one database serialize per-user jobs.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/keikaku/internal/lock"
	"github.com/phrazzld/keikaku/internal/platform/logger"
	goredis "github.com/redis/go-redis/v9"
)

const (
	defaultTTL   = 2 * time.Minute
	pollInterval = 50 * time.Millisecond
	maxPoll      = time.Second
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker implements lock.Locker with SET NX PX and a token-checked release.
type Locker struct {
	rdb    goredis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

var _ lock.Locker = (*Locker)(nil)

// Connect parses a redis:// URL, verifies the server is reachable and
// returns a Locker. A zero ttl uses two minutes.
func Connect(ctx context.Context, url string, ttl time.Duration, logger *slog.Logger) (*Locker, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := goredis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewLocker(rdb, ttl, logger), nil
}

// NewLocker wraps an existing client.
func NewLocker(rdb goredis.UniversalClient, ttl time.Duration, logger *slog.Logger) *Locker {
	if rdb == nil {
		panic("redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Locker{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "redis_locker")),
	}
}

// Acquire implements lock.Locker. It polls with capped exponential backoff
// until the key is free or ctx is done. A holder that dies loses the lock
// after the TTL.
func (l *Locker) Acquire(ctx context.Context, key string) (lock.Release, error) {
	log := logger.FromContextOrDefault(ctx, l.logger).With(slog.String("lock_key", key))
	token := uuid.NewString()
	wait := pollInterval

	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			log.Error("failed to acquire lock", slog.String("error", err.Error()))
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			log.Debug("lock acquired")
			return l.releaser(key, token), nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		wait = min(wait*2, maxPoll)
	}
}

func (l *Locker) releaser(key, token string) lock.Release {
	return func(ctx context.Context) error {
		n, err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Int()
		if err != nil && !errors.Is(err, goredis.Nil) {
			return fmt.Errorf("release lock %s: %w", key, err)
		}
		if n == 0 {
			return lock.ErrNotHeld
		}
		return nil
	}
}

// Close closes the underlying client.
func (l *Locker) Close() error {
	return l.rdb.Close()
}
