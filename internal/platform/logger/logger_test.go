// Package logger_test contains tests for the logger package
package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/phrazzld/keikaku/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input string
		want  slog.Level
		ok    bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{" warn ", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
	}

	for _, tc := range testCases {
		got, ok := logger.ParseLevel(tc.input)
		assert.Equal(t, tc.want, got, tc.input)
		assert.Equal(t, tc.ok, ok, tc.input)
	}
}

func TestNewWritesJSONAtLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := logger.New(&buf, "warn")

	l.Info("hidden")
	l.Warn("shown", slog.String("component", "test"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "test", entry["component"])
}

func TestFromContextOrDefault(t *testing.T) {
	t.Parallel()

	var ctxBuf, fallbackBuf bytes.Buffer
	ctxLogger := logger.New(&ctxBuf, "info")
	fallback := logger.New(&fallbackBuf, "info")

	// Without a logger in context the fallback is used.
	logger.FromContextOrDefault(context.Background(), fallback).Info("to fallback")
	assert.Contains(t, fallbackBuf.String(), "to fallback")

	// A context logger wins over the fallback.
	ctx := logger.WithLogger(context.Background(), ctxLogger)
	logger.FromContextOrDefault(ctx, fallback).Info("to context")
	assert.Contains(t, ctxBuf.String(), "to context")
	assert.NotContains(t, fallbackBuf.String(), "to context")

	// Nil fallback degrades to the default logger.
	assert.Equal(t, slog.Default(), logger.FromContextOrDefault(context.Background(), nil))
	assert.Equal(t, ctxLogger, logger.FromContext(ctx))
}
