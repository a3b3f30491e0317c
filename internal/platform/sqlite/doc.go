// Package sqlite implements store.UserStore on an embedded SQLite database
// (modernc.org/sqlite, no cgo) for single-node deployments and tests.
package sqlite
