// Package task manages background job queuing, processing, and lifecycle.
// It runs long operations such as importing a well-known word set, where
// every word needs generated content, outside the HTTP request that asked
// for them. Task state is kept in memory; an import interrupted by a restart
// is simply requested again, and words imported before the restart are
// skipped as duplicates.
package task
