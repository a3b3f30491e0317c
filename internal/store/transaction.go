package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/keikaku/internal/platform/logger"
)

// TxFn is the work done inside RunInTransaction.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// RunInTransaction commits the work of fn, or rolls it back when fn returns
// an error or panics. fn's own error is returned as is so callers can match
// domain errors. A rollback that also fails is joined to it and marked
// ErrTransactionFailed, as are begin and commit failures. Panics are
// re-raised after the rollback.
func RunInTransaction(ctx context.Context, db *sql.DB, fn TxFn) (err error) {
	log := logger.FromContext(ctx)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("transaction begin failed", slog.String("error", err.Error()))
		return fmt.Errorf("%w: begin: %w", ErrTransactionFailed, err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		p := recover()
		rbErr := tx.Rollback()
		if p != nil {
			log.Error("transaction rolled back after panic",
				slog.Any("panic", p),
				slog.Any("rollback_error", rbErr))
			panic(p)
		}
		switch {
		case errors.Is(rbErr, sql.ErrTxDone):
			// A failed commit or a cancelled context already ended it.
		case rbErr != nil:
			log.Error("transaction rollback failed",
				slog.String("rollback_error", rbErr.Error()),
				slog.String("error", err.Error()))
			err = errors.Join(err, fmt.Errorf("%w: rollback: %w", ErrTransactionFailed, rbErr))
		default:
			log.Debug("transaction rolled back", slog.String("error", err.Error()))
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		log.Error("transaction commit failed", slog.String("error", err.Error()))
		return fmt.Errorf("%w: commit: %w", ErrTransactionFailed, err)
	}
	committed = true
	return nil
}
