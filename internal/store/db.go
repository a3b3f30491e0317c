package store

import (
	"context"
	"database/sql"
)

// Conn is the query surface of both *sql.DB and *sql.Tx. SQL stores hold a
// Conn so WithTx can swap the pool for a transaction without other changes.
type Conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ Conn = (*sql.DB)(nil)
	_ Conn = (*sql.Tx)(nil)
)
