package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/phrazzld/keikaku/internal/domain"
	"github.com/phrazzld/keikaku/internal/store"
)

// UserFn applies one domain operation to a locked user.
type UserFn func(user *domain.User) error

// UpdateUser loads the user with id under a row lock, applies fn and saves
// the result in the same transaction. When fn fails nothing is saved and its
// error is returned as is; store failures are mapped with MapStoreError.
func UpdateUser(ctx context.Context, users store.UserStore, id uuid.UUID, fn UserFn) (*domain.User, error) {
	var updated *domain.User
	err := store.RunInTransaction(ctx, users.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txUsers := users.WithTx(tx)

		user, err := txUsers.GetByIDForUpdate(ctx, id)
		if err != nil {
			return MapStoreError(err, id)
		}

		if err := fn(user); err != nil {
			if errors.Is(err, errUnchanged) {
				updated = user
				return nil
			}
			return err
		}

		if err := txUsers.Save(ctx, user); err != nil {
			return MapStoreError(err, id)
		}
		updated = user
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrTransactionFailed) {
			return nil, MapStoreError(err, id)
		}
		return nil, err
	}
	return updated, nil
}

// loadUser reads a user without locking it.
func loadUser(ctx context.Context, users store.UserStore, id uuid.UUID) (*domain.User, error) {
	user, err := users.GetByID(ctx, id)
	if err != nil {
		return nil, MapStoreError(err, id)
	}
	return user, nil
}
