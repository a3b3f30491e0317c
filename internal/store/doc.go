// Package store defines the persistence contract for User aggregates and the
// helpers shared by its SQL implementations. Use cases load a user, call
// a domain method and save the whole user back, usually inside
// RunInTransaction so that concurrent writers to one user serialize.
package store
