package shared

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const (
	// TraceIDKey is the key for the trace ID in the request context
	TraceIDKey contextKey = "traceID"

	// TraceIDHeader carries a caller-supplied trace id and echoes it back.
	TraceIDHeader = "X-Trace-Id"

	// maxTraceIDLength bounds caller-supplied ids so they stay log friendly.
	maxTraceIDLength = 64
)

// SetTraceID returns ctx carrying traceID. A blank, oversized or non-printable
// traceID is replaced by a fresh one.
func SetTraceID(ctx context.Context, traceID string) context.Context {
	if !validTraceID(traceID) {
		traceID = NewTraceID()
	}
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context.
// If no trace ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// NewTraceID returns 32 lowercase hex characters derived from a random UUID.
func NewTraceID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func validTraceID(id string) bool {
	if id == "" || len(id) > maxTraceIDLength {
		return false
	}
	for _, r := range id {
		if r < '!' || r > '~' {
			return false
		}
	}
	return true
}
