package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/keikaku/internal/api/middleware"
	"github.com/phrazzld/keikaku/internal/domain"
	"github.com/phrazzld/keikaku/internal/domain/srs"
	"github.com/phrazzld/keikaku/internal/generation"
	"github.com/phrazzld/keikaku/internal/lock"
	"github.com/phrazzld/keikaku/internal/mocks"
	"github.com/phrazzld/keikaku/internal/platform/logger"
	"github.com/phrazzld/keikaku/internal/platform/sqlite"
	"github.com/phrazzld/keikaku/internal/service"
	"github.com/phrazzld/keikaku/internal/service/card_review"
	"github.com/phrazzld/keikaku/internal/task"
	"github.com/stretchr/testify/require"
)

// testAPI is the full router backed by real services on a temporary
// sqlite database. The Gemini provider is served by a mock generator.
type testAPI struct {
	router    http.Handler
	generator *mocks.MockGenerator
	runner    *task.TaskRunner
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.Migrate(ctx, db))

	log := logger.New(io.Discard, "error")
	users := sqlite.NewUserStore(db, log)
	gen := mocks.NewMockGeneratorWithMeaning()
	providers := generation.Providers{domain.LlmProviderGemini: gen}

	userService := service.NewUserService(users, log)
	cardService, err := service.NewCardService(users, providers, log)
	require.NoError(t, err)
	reviewService := card_review.NewCardReviewService(users, srs.NewDefaultService(), log)
	importService := service.NewImportService(users, providers, lock.NewMemory(), log)

	runner := task.NewTaskRunner(task.TaskRunnerConfig{WorkerCount: 1, QueueSize: 4}, log)
	runner.Start()
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		runner.Stop(stopCtx)
	})

	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(log))
	r.Route("/api", func(r chi.Router) {
		NewUserHandler(userService, log).RegisterRoutes(r)
		NewCardHandler(cardService, reviewService, log).RegisterRoutes(r)
		NewImportHandler(userService, importService, runner, log).RegisterRoutes(r)
		NewReferenceHandler(log).RegisterRoutes(r)
	})
	r.Method(http.MethodGet, "/health", NewHealthHandler(db))

	return &testAPI{router: r, generator: gen, runner: runner}
}

// do sends body (marshalled unless it is a string) to the router.
func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// createUser registers a learner, optionally switching to the Gemini provider.
func (a *testAPI) createUser(t *testing.T, lang string, withLLM bool) UserResponse {
	t.Helper()

	w := a.do(t, http.MethodPost, "/api/users", CreateUserRequest{
		Username:       "learner",
		NativeLanguage: lang,
		CurrentLevel:   "N5",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := decodeBody[UserResponse](t, w)

	if withLLM {
		w = a.do(t, http.MethodPut, "/api/users/"+user.ID.String()+"/settings", UpdateSettingsRequest{
			LLM:               LlmSettingsRequest{Provider: "gemini", Model: "gemini-2.0-flash", Temperature: 0.7},
			NewCardsPerLesson: 2,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		user = decodeBody[UserResponse](t, w)
	}
	return user
}

// createVocabulary adds a vocabulary card with a manual meaning.
func (a *testAPI) createVocabulary(t *testing.T, userID, word string) CardResponse {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/users/"+userID+"/cards", CreateCardRequest{
		Kind:    "vocabulary",
		Word:    word,
		Meaning: "meaning of " + word,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeBody[CardResponse](t, w)
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[struct {
		Error string `json:"error"`
	}](t, w).Error
}
