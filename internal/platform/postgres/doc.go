// Package postgres implements store.UserStore on PostgreSQL through the pgx
// database/sql driver. Each user aggregate is stored as a JSONB snapshot
// and writers lock the row with SELECT ... FOR UPDATE. The schema ships
// as embedded goose migrations.
package postgres
