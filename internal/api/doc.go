// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It acts as an adapter between external clients
// and the internal application services, translating HTTP concerns to
// study operations on a user's knowledge set.
//
// The API is unauthenticated: users are addressed by id in the path. Errors
// are mapped to status codes by kind in MapErrorToStatusCode.
package api
