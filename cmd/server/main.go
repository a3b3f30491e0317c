// Package main implements the entry point for the keikaku server, which
// keeps each learner's Japanese study cards, schedules their reviews and
// provides LLM integration for card generation.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/phrazzld/keikaku/internal/config"
	"github.com/phrazzld/keikaku/internal/platform/logger"
	"github.com/spf13/pflag"
)

// options are the command line flags.
type options struct {
	configFile  string
	envFile     string
	migrateOnly bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		slog.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run loads configuration, opens and migrates the database, then serves
// until ctx is cancelled.
func run(ctx context.Context, args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	if err := loadEnvFile(opts.envFile); err != nil {
		return err
	}

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("database_driver", cfg.Database.Driver),
		slog.Bool("llm_configured", cfg.LLM.GeminiAPIKey != ""),
		slog.Bool("redis_configured", cfg.Redis.URL != ""))

	ctx = logger.WithLogger(ctx, log)

	db, users, err := openDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	if err := migrateDatabase(ctx, cfg.Database.Driver, db); err != nil {
		_ = db.Close()
		return err
	}
	if opts.migrateOnly {
		log.Info("migrations applied, exiting")
		return db.Close()
	}

	app, err := newApplication(ctx, cfg, log, db, users)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}

func parseFlags(args []string) (options, error) {
	var opts options
	flags := pflag.NewFlagSet("keikaku", pflag.ContinueOnError)
	flags.StringVarP(&opts.configFile, "config", "c", "", "path to a config file (yaml, toml or json)")
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file read before the environment; missing files are ignored")
	flags.BoolVar(&opts.migrateOnly, "migrate-only", false, "apply database migrations and exit")
	if err := flags.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

// loadEnvFile exports the variables in path unless they are already set.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}
