package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/phrazzld/keikaku/internal/domain"
	"github.com/phrazzld/keikaku/internal/platform/logger"
	"github.com/phrazzld/keikaku/internal/store"
	"golang.org/x/sync/errgroup"
)

// RolloverJob archives finished study days. A user's current day is moved
// into their history once the clock passes into a later UTC day, so that
// statistics stay correct for users who have not studied since midnight.
type RolloverJob struct {
	users       store.UserStore
	concurrency int
	logger      *slog.Logger
}

// NewRolloverJob creates a job that processes up to concurrency users at once.
func NewRolloverJob(users store.UserStore, concurrency int, logger *slog.Logger) *RolloverJob {
	if users == nil {
		panic("users cannot be nil")
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RolloverJob{
		users:       users,
		concurrency: concurrency,
		logger:      logger.With(slog.String("component", "rollover_job")),
	}
}

// Run rolls every user over at now and returns how many were archived.
// A failure for one user is logged and does not stop the others; deleted
// users are ignored.
func (j *RolloverJob) Run(ctx context.Context, now time.Time) (int, error) {
	log := logger.FromContextOrDefault(ctx, j.logger)

	users, err := j.users.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrRepository, err)
	}

	var (
		archived atomic.Int64
		failed   atomic.Int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.concurrency)
	for _, u := range users {
		id := u.ID()
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rolled := false
			_, err := UpdateUser(gctx, j.users, id, func(user *domain.User) error {
				if !user.RollOver(now) {
					return errUnchanged
				}
				rolled = true
				return nil
			})
			switch {
			case errors.Is(err, domain.ErrUserNotFound):
			case err != nil:
				failed.Add(1)
				log.Error("failed to roll user over",
					slog.String("user_id", id.String()),
					slog.String("error", err.Error()))
			case rolled:
				archived.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(archived.Load()), err
	}

	log.Info("rollover finished",
		slog.Int("users", len(users)),
		slog.Int64("archived", archived.Load()),
		slog.Int64("failed", failed.Load()))
	return int(archived.Load()), nil
}

// Start runs the job every interval until ctx is done.
func (j *RolloverJob) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			if _, err := j.Run(ctx, t.UTC()); err != nil && !errors.Is(err, context.Canceled) {
				j.logger.Error("rollover run failed", slog.String("error", err.Error()))
			}
		}
	}
}
