package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/keikaku/internal/domain"
	"github.com/phrazzld/keikaku/internal/platform/logger"
	"github.com/phrazzld/keikaku/internal/store"
)

const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const (
	selectUserSQL = `SELECT snapshot FROM users WHERE id = ?`

	// UUIDv7 text sorts in creation order.
	listUsersSQL = `SELECT snapshot FROM users ORDER BY id`

	upsertUserSQL = `
		INSERT INTO users (id, username, snapshot, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET username = excluded.username,
			snapshot = excluded.snapshot,
			updated_at = excluded.updated_at`

	deleteUserSQL = `DELETE FROM users WHERE id = ?`
)

// UserStore implements store.UserStore on SQLite.
type UserStore struct {
	db     store.Conn
	sqlDB  *sql.DB
	logger *slog.Logger
}

// NewUserStore panics if db is nil. A nil logger falls back to slog.Default.
func NewUserStore(db *sql.DB, logger *slog.Logger) *UserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserStore{
		db:     db,
		sqlDB:  db,
		logger: logger.With(slog.String("component", "sqlite_user_store")),
	}
}

var _ store.UserStore = (*UserStore)(nil)

func (s *UserStore) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx, listUsersSQL)
	if err != nil {
		return nil, store.WrapUserError(store.OpList, uuid.Nil, MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var users []*domain.User
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, store.WrapUserError(store.OpList, uuid.Nil, MapError(err))
		}
		user, err := store.DecodeUser([]byte(doc))
		if err != nil {
			logger.FromContextOrDefault(ctx, s.logger).Error("stored user snapshot is invalid",
				slog.String("error", err.Error()))
			return nil, store.WrapUserError(store.OpList, uuid.Nil, err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, store.WrapUserError(store.OpList, uuid.Nil, MapError(err))
	}
	return users, nil
}

func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.get(ctx, store.OpGet, id)
}

// GetByIDForUpdate reads the user inside the caller's transaction. Connections
// begin transactions IMMEDIATE, so the database write lock is already held.
func (s *UserStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.get(ctx, store.OpLock, id)
}

func (s *UserStore) get(ctx context.Context, op store.Op, id uuid.UUID) (*domain.User, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, selectUserSQL, id.String()).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, store.WrapUserError(op, id, MapError(err))
	}

	user, err := store.DecodeUser([]byte(doc))
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("stored user snapshot is invalid",
			slog.String("user_id", id.String()),
			slog.String("error", err.Error()))
		return nil, store.WrapUserError(op, id, err)
	}
	return user, nil
}

func (s *UserStore) Save(ctx context.Context, user *domain.User) error {
	if user == nil {
		return store.WrapUserError(store.OpSave, uuid.Nil, store.ErrInvalidEntity)
	}
	doc, err := store.EncodeUser(user)
	if err != nil {
		return store.WrapUserError(store.OpSave, user.ID(), err)
	}

	_, err = s.db.ExecContext(ctx, upsertUserSQL,
		user.ID().String(),
		user.Username(),
		string(doc),
		user.CreatedAt().UTC().Format(timeLayout),
		user.UpdatedAt().UTC().Format(timeLayout),
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to save user",
			slog.String("user_id", user.ID().String()),
			slog.String("error", err.Error()))
		return store.WrapUserError(store.OpSave, user.ID(), MapError(err))
	}
	return nil
}

func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, deleteUserSQL, id.String())
	if err != nil {
		return store.WrapUserError(store.OpDelete, id, MapError(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return store.WrapUserError(store.OpDelete, id, err)
	}
	if n == 0 {
		return store.ErrUserNotFound
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("deleted user",
		slog.String("user_id", id.String()))
	return nil
}

func (s *UserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &UserStore{db: tx, sqlDB: s.sqlDB, logger: s.logger}
}

func (s *UserStore) DB() *sql.DB { return s.sqlDB }
