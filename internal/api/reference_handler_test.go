package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKanjiReference(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)

	w := a.do(t, http.MethodGet, "/api/kanji?level=n5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody[[]KanjiResponse](t, w)
	require.NotEmpty(t, list)
	for _, k := range list {
		assert.Equal(t, "N5", k.Level)
	}

	w = a.do(t, http.MethodGet, "/api/kanji/"+url.PathEscape("水")+"?lang=ru", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	water := decodeBody[KanjiResponse](t, w)
	assert.Equal(t, "вода", water.Meaning)
	assert.Equal(t, 4, water.StrokeCount)
	require.NotEmpty(t, water.Examples)
	assert.Equal(t, "水曜日", water.Examples[0].Word)

	w = a.do(t, http.MethodGet, "/api/kanji/"+url.PathEscape("水"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "water", decodeBody[KanjiResponse](t, w).Meaning)

	w = a.do(t, http.MethodGet, "/api/kanji/x", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(t, http.MethodGet, "/api/kanji", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodGet, "/api/kanji?level=N9", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGrammarReference(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)

	w := a.do(t, http.MethodGet, "/api/grammar?level=N5&lang=en", nil)
	require.Equal(t, http.StatusOK, w.Code)
	rules := decodeBody[[]GrammarResponse](t, w)
	require.NotEmpty(t, rules)

	w = a.do(t, http.MethodGet, "/api/grammar/n5-tai", nil)
	require.Equal(t, http.StatusOK, w.Code)
	rule := decodeBody[GrammarResponse](t, w)
	assert.Equal(t, "n5-tai", rule.ID)
	assert.Equal(t, "〜たい", rule.Title)
	assert.NotEmpty(t, rule.Description)

	w = a.do(t, http.MethodGet, "/api/grammar/n5-missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		db     Pinger
		status int
		body   string
	}{
		{"no database", nil, http.StatusOK, `{"status":"ok"}`},
		{"database up", pingerFunc(func(context.Context) error { return nil }), http.StatusOK, `{"status":"ok","database":"ok"}`},
		{
			"database down",
			pingerFunc(func(context.Context) error { return errors.New("connection refused") }),
			http.StatusServiceUnavailable,
			`{"status":"degraded","database":"unreachable"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			w := httptest.NewRecorder()
			NewHealthHandler(tc.db).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tc.status, w.Code)
			assert.JSONEq(t, tc.body, w.Body.String())
		})
	}

	a := newTestAPI(t)
	w := a.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
