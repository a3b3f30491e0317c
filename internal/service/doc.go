// Package service contains the application use cases. Each use case loads a
// User aggregate from the store, applies one domain operation and saves the
// aggregate back inside a single transaction, so concurrent writers for the
// same user are serialized by the store's row lock.
//
// Work that must not hold a transaction open, such as content generation for
// a whole well-known set, is serialized per user with a lock.Locker instead.
//
// Store failures are translated at this boundary: a missing user becomes a
// domain.UserNotFoundError and every other persistence failure is wrapped
// with domain.ErrRepository. Domain errors pass through unchanged.
package service
