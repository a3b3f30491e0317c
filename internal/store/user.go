package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/keikaku/internal/domain"
)

// UserStore persists whole User aggregates. A user's knowledge set, review
// histories and daily history travel with the user as one document, so
// every write replaces the stored aggregate.
type UserStore interface {
	// List returns all users ordered by creation time.
	List(ctx context.Context) ([]*domain.User, error)

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByIDForUpdate retrieves a user and locks the row until the
	// surrounding transaction ends. It must be called on a store obtained
	// from WithTx. Returns ErrUserNotFound if the user does not exist.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// Save inserts the user or replaces the stored aggregate.
	Save(ctx context.Context, user *domain.User) error

	// Delete removes a user from the store by their ID.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new UserStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) UserStore

	// DB returns the underlying database connection.
	DB() *sql.DB
}
