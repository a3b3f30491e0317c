package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/phrazzld/keikaku/internal/config"
	"github.com/phrazzld/keikaku/internal/domain"
	"github.com/phrazzld/keikaku/internal/domain/srs"
	"github.com/phrazzld/keikaku/internal/generation"
	"github.com/phrazzld/keikaku/internal/lock"
	"github.com/phrazzld/keikaku/internal/platform/gemini"
	"github.com/phrazzld/keikaku/internal/platform/redis"
	"github.com/phrazzld/keikaku/internal/service"
	"github.com/phrazzld/keikaku/internal/service/card_review"
	"github.com/phrazzld/keikaku/internal/store"
	"github.com/phrazzld/keikaku/internal/task"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config

	logger *slog.Logger
	db     *sql.DB
	users  store.UserStore

	// Non-nil only when the lock lives in Redis.
	lockCloser io.Closer

	generators        generation.Providers
	srsService        srs.Service
	userService       *service.UserServiceImpl
	cardService       service.CardService
	cardReviewService card_review.CardReviewService
	importService     service.ImportService

	taskRunner *task.TaskRunner
	rollover   *service.RolloverJob
}

// newApplication creates a new application instance with all dependencies initialized.
// The database must already be open and migrated.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	users store.UserStore,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
		users:  users,
	}

	locker, err := app.setupLocker(ctx)
	if err != nil {
		return nil, err
	}

	app.generators, err = setupGenerators(ctx, cfg.LLM, logger)
	if err != nil {
		app.closeLocker()
		return nil, err
	}

	params, err := srs.NewParams(srs.ParamsConfig{
		DesiredRetention:    cfg.SRS.DesiredRetention,
		MaximumIntervalDays: cfg.SRS.MaximumIntervalDays,
		AgainReviewMinutes:  cfg.SRS.AgainReviewMinutes,
	})
	if err != nil {
		app.closeLocker()
		return nil, fmt.Errorf("failed to create SRS parameters: %w", err)
	}
	app.srsService, err = srs.NewServiceWithParams(params)
	if err != nil {
		app.closeLocker()
		return nil, fmt.Errorf("failed to create SRS service: %w", err)
	}

	app.userService, err = service.NewUserService(users, logger).
		WithNewCardsPerLesson(cfg.Study.NewCardsPerLesson)
	if err != nil {
		app.closeLocker()
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	app.cardService, err = service.NewCardService(users, app.generators, logger)
	if err != nil {
		app.closeLocker()
		return nil, fmt.Errorf("failed to create card service: %w", err)
	}

	app.cardReviewService = card_review.NewCardReviewService(users, app.srsService, logger)
	app.importService = service.NewImportService(users, app.generators, locker, logger)
	app.rollover = service.NewRolloverJob(users, cfg.Study.RolloverConcurrency, logger)

	app.taskRunner = task.NewTaskRunner(task.TaskRunnerConfig{
		WorkerCount: cfg.Task.WorkerCount,
		QueueSize:   cfg.Task.QueueSize,
	}, logger)
	app.taskRunner.Start()

	logger.Info("application initialized successfully")
	return app, nil
}

// setupLocker returns the lock that serializes imports per user: Redis when
// configured, otherwise an in-process lock.
func (app *application) setupLocker(ctx context.Context) (lock.Locker, error) {
	if app.config.Redis.URL == "" {
		app.logger.Info("using in-process import lock")
		return lock.NewMemory(), nil
	}

	locker, err := redis.Connect(ctx, app.config.Redis.URL, 0, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	app.lockCloser = locker
	app.logger.Info("using redis import lock")
	return locker, nil
}

// setupGenerators registers a Gemini generator when an API key is configured.
// Users whose provider has no generator are told to configure one.
func setupGenerators(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (generation.Providers, error) {
	providers := generation.Providers{}
	if cfg.GeminiAPIKey == "" {
		logger.Warn("gemini API key not set, card generation is disabled")
		return providers, nil
	}

	generator, err := gemini.NewGenerator(ctx, logger.With(slog.String("component", "llm_generator")), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM generator: %w", err)
	}
	providers[domain.LlmProviderGemini] = generator
	logger.Info("LLM generator initialized successfully", slog.String("model", cfg.ModelName))
	return providers, nil
}

// Run starts the background rollover and serves HTTP until ctx is done.
func (app *application) Run(ctx context.Context) error {
	go app.runRollover(ctx)

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// runRollover archives stale days once at startup, then on every interval.
func (app *application) runRollover(ctx context.Context) {
	if _, err := app.rollover.Run(ctx, time.Now().UTC()); err != nil {
		app.logger.Error("startup rollover failed", slog.String("error", err.Error()))
	}
	app.rollover.Start(ctx, time.Duration(app.config.Study.RolloverIntervalMinutes)*time.Minute)
}

func (app *application) closeLocker() {
	if app.lockCloser == nil {
		return
	}
	if err := app.lockCloser.Close(); err != nil {
		app.logger.Error("error closing redis client", slog.String("error", err.Error()))
	}
	app.lockCloser = nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		app.taskRunner.Stop(ctx)
		cancel()
	}

	app.closeLocker()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("application shutdown completed")
}
