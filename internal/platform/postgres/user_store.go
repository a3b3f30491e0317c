package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/keikaku/internal/domain"
	"github.com/phrazzld/keikaku/internal/platform/logger"
	"github.com/phrazzld/keikaku/internal/store"
)

const (
	selectUserSQL = `SELECT snapshot FROM users WHERE id = $1`

	selectUserForUpdateSQL = selectUserSQL + ` FOR UPDATE`

	listUsersSQL = `SELECT snapshot FROM users ORDER BY created_at, id`

	upsertUserSQL = `
		INSERT INTO users (id, username, snapshot, created_at, updated_at)
		VALUES ($1, $2, $3::jsonb, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET username = EXCLUDED.username,
			snapshot = EXCLUDED.snapshot,
			updated_at = EXCLUDED.updated_at`

	deleteUserSQL = `DELETE FROM users WHERE id = $1`
)

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend. Each user is one row
// whose JSONB column holds the whole aggregate.
type PostgresUserStore struct {
	db     store.Conn
	sqlDB  *sql.DB
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresUserStore(db *sql.DB, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:     db,
		sqlDB:  db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// List implements store.UserStore.List
func (s *PostgresUserStore) List(ctx context.Context) ([]*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, listUsersSQL)
	if err != nil {
		log.Error("failed to list users", slog.String("error", err.Error()))
		return nil, store.WrapUserError(store.OpList, uuid.Nil, MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var users []*domain.User
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, store.WrapUserError(store.OpList, uuid.Nil, MapError(err))
		}
		user, err := store.DecodeUser(doc)
		if err != nil {
			log.Error("stored user snapshot is invalid", slog.String("error", err.Error()))
			return nil, store.WrapUserError(store.OpList, uuid.Nil, err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, store.WrapUserError(store.OpList, uuid.Nil, MapError(err))
	}

	log.Debug("listed users", slog.Int("count", len(users)))
	return users, nil
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.get(ctx, store.OpGet, selectUserSQL, id)
}

// GetByIDForUpdate implements store.UserStore.GetByIDForUpdate
func (s *PostgresUserStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.get(ctx, store.OpLock, selectUserForUpdateSQL, id)
}

func (s *PostgresUserStore) get(ctx context.Context, op store.Op, query string, id uuid.UUID) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", id.String()))

	var doc []byte
	err := s.db.QueryRowContext(ctx, query, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user not found")
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user", slog.String("error", err.Error()))
		return nil, store.WrapUserError(op, id, MapError(err))
	}

	user, err := store.DecodeUser(doc)
	if err != nil {
		log.Error("stored user snapshot is invalid", slog.String("error", err.Error()))
		return nil, store.WrapUserError(op, id, err)
	}
	return user, nil
}

// Save implements store.UserStore.Save
func (s *PostgresUserStore) Save(ctx context.Context, user *domain.User) error {
	if user == nil {
		return store.WrapUserError(store.OpSave, uuid.Nil, store.ErrInvalidEntity)
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	doc, err := store.EncodeUser(user)
	if err != nil {
		return store.WrapUserError(store.OpSave, user.ID(), err)
	}

	_, err = s.db.ExecContext(ctx, upsertUserSQL,
		user.ID(),
		user.Username(),
		string(doc),
		user.CreatedAt(),
		user.UpdatedAt(),
	)
	if err != nil {
		log.Error("failed to save user",
			slog.String("user_id", user.ID().String()),
			slog.String("error", err.Error()))
		return store.WrapUserError(store.OpSave, user.ID(), MapError(err))
	}

	log.Debug("saved user",
		slog.String("user_id", user.ID().String()),
		slog.Int("cards", user.KnowledgeSet().Len()))
	return nil
}

// Delete implements store.UserStore.Delete
func (s *PostgresUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, deleteUserSQL, id)
	if err != nil {
		log.Error("failed to delete user",
			slog.String("user_id", id.String()),
			slog.String("error", err.Error()))
		return store.WrapUserError(store.OpDelete, id, MapError(err))
	}
	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete user %s: %w", id, err)
	}

	log.Info("deleted user", slog.String("user_id", id.String()))
	return nil
}

// WithTx implements store.UserStore.WithTx
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{
		db:     tx,
		sqlDB:  s.sqlDB,
		logger: s.logger,
	}
}

// DB implements store.UserStore.DB
func (s *PostgresUserStore) DB() *sql.DB {
	return s.sqlDB
}
