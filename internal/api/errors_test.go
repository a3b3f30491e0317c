package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/keikaku/internal/api/shared"
	"github.com/phrazzld/keikaku/internal/dictionary"
	"github.com/phrazzld/keikaku/internal/domain"
	"github.com/phrazzld/keikaku/internal/generation"
	"github.com/phrazzld/keikaku/internal/service"
	"github.com/phrazzld/keikaku/internal/store"
	"github.com/phrazzld/keikaku/internal/task"
	"github.com/stretchr/testify/assert"
)

func TestErrorMapping(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"user not found", &domain.UserNotFoundError{UserID: uuid.New()}, http.StatusNotFound, "User not found"},
		{"card not found", &domain.CardNotFoundError{CardID: uuid.New()}, http.StatusNotFound, "Card not found"},
		{"dictionary miss", fmt.Errorf("%w: kanji %q", dictionary.ErrNotFound, "x"), http.StatusNotFound, "Dictionary entry not found"},
		{"task not found", errTaskNotFound, http.StatusNotFound, "Import not found"},
		{"duplicate card", &domain.DuplicateCardError{Question: "猫"}, http.StatusConflict, "Card already exists"},
		{"duplicate row", fmt.Errorf("%w: %w", domain.ErrRepository, store.ErrDuplicate), http.StatusConflict, "Entity already exists"},
		{"invalid question", fmt.Errorf("%w: empty", domain.ErrInvalidQuestion), http.StatusBadRequest, "Invalid question text"},
		{"invalid answer", domain.ErrInvalidAnswer, http.StatusBadRequest, "Answer must not be empty"},
		{"invalid rating", domain.Rating(9).Validate(), http.StatusBadRequest, "Rating must be one of again, hard, good, easy"},
		{"invalid settings", domain.ErrSettings, http.StatusBadRequest, "Invalid settings"},
		{"unknown set", errors.Join(task.ErrUnknownSetID, domain.ErrWellKnownSet), http.StatusBadRequest, "Unknown well-known set"},
		{"empty body", shared.ErrEmptyBody, http.StatusBadRequest, "Request body is required"},
		{"invalid values", domain.ErrInvalidValues, http.StatusBadRequest, "Invalid values"},
		{"llm not configured", generation.ErrNotConfigured, http.StatusUnprocessableEntity, "Please set LLM settings in your profile"},
		{"llm failure", generation.ErrContentBlocked, http.StatusBadGateway, "Content generation failed"},
		{"translation failure", generation.ErrMissingTranslation, http.StatusBadGateway, "Content generation failed"},
		{"queue full", fmt.Errorf("failed to submit task: %w", task.ErrQueueFull), http.StatusServiceUnavailable, "Import queue is unavailable, try again later"},
		{"queue closed", task.ErrQueueClosed, http.StatusServiceUnavailable, "Import queue is unavailable, try again later"},
		{"repository", fmt.Errorf("%w: disk I/O error", domain.ErrRepository), http.StatusInternalServerError, "An unexpected error occurred"},
		{"srs failure", domain.ErrSrsCalculationFailed, http.StatusInternalServerError, "An unexpected error occurred"},
		{
			"wrapped by service error",
			service.NewCardServiceError("create_kanji_card", "failed to build card", domain.ErrInvalidAnswer),
			http.StatusBadRequest,
			"Answer must not be empty",
		},
		{"nil", nil, http.StatusInternalServerError, "An unexpected error occurred"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.status, MapErrorToStatusCode(tc.err))
			assert.Equal(t, tc.message, GetSafeErrorMessage(tc.err))
		})
	}
}

func TestSafeMessagesDoNotLeakDetails(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("%w: pq: relation \"users\" does not exist at /var/lib/keikaku", domain.ErrRepository)
	msg := GetSafeErrorMessage(err)
	assert.NotContains(t, msg, "users")
	assert.NotContains(t, msg, "/var/lib")
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		req  any
		want string
	}{
		{"required", CreateUserRequest{NativeLanguage: "en", CurrentLevel: "N5"}, "Invalid username: required field"},
		{"oneof", CreateUserRequest{Username: "a", NativeLanguage: "de", CurrentLevel: "N5"}, "Invalid native_language: invalid value"},
		{
			"nested field",
			UpdateSettingsRequest{LLM: LlmSettingsRequest{Provider: "none", Temperature: 5}, NewCardsPerLesson: 10},
			"Invalid llm.temperature: too large",
		},
		{"gte", CompleteLessonRequest{DurationSeconds: -5}, "Invalid duration_seconds: too small"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := shared.ValidateRequest(tc.req)
			assert.Equal(t, tc.want, SanitizeValidationError(err))
		})
	}

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("plain")))
}
