package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/phrazzld/keikaku/internal/domain"
	"github.com/phrazzld/keikaku/internal/platform/sqlite"
	"github.com/phrazzld/keikaku/internal/store"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// newTestStore returns a migrated user store backed by a temporary sqlite file.
func newTestStore(t *testing.T) store.UserStore {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.Migrate(ctx, db))
	return sqlite.NewUserStore(db, nil)
}

// seedUser saves a new user, optionally with Gemini selected as LLM provider.
func seedUser(t *testing.T, users store.UserStore, lang domain.NativeLanguage, withLLM bool) *domain.User {
	t.Helper()
	user, err := domain.NewUser("learner", lang, domain.LevelN5, testNow)
	require.NoError(t, err)
	if withLLM {
		settings := user.Settings()
		settings.LLM = domain.LlmSettings{Provider: domain.LlmProviderGemini, Model: "gemini-2.0-flash", Temperature: 0.7}
		require.NoError(t, user.UpdateSettings(settings, testNow))
	}
	require.NoError(t, users.Save(context.Background(), user))
	return user
}
