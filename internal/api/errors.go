package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/keikaku/internal/api/shared"
	"github.com/phrazzld/keikaku/internal/dictionary"
	"github.com/phrazzld/keikaku/internal/domain"
	"github.com/phrazzld/keikaku/internal/generation"
	"github.com/phrazzld/keikaku/internal/store"
	"github.com/phrazzld/keikaku/internal/task"
)

// errTaskNotFound is returned when an import task id is unknown or has
// been pruned from the runner.
var errTaskNotFound = errors.New("task not found")

// MapErrorToStatusCode maps internal errors to HTTP status codes by error
// kind. This prevents leaking internal error types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrCardNotFound),
		errors.Is(err, dictionary.ErrNotFound),
		errors.Is(err, errTaskNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, domain.ErrDuplicateCard),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrInvalidValues),
		errors.Is(err, domain.ErrInvalidQuestion),
		errors.Is(err, domain.ErrInvalidAnswer),
		errors.Is(err, domain.ErrInvalidRating),
		errors.Is(err, domain.ErrSettings),
		errors.Is(err, domain.ErrWellKnownSet),
		errors.Is(err, shared.ErrEmptyBody):
		return http.StatusBadRequest

	// The user must configure a model before content can be generated.
	case errors.Is(err, generation.ErrNotConfigured):
		return http.StatusUnprocessableEntity

	// Upstream content collaborators
	case errors.Is(err, domain.ErrLlm),
		errors.Is(err, domain.ErrTranslation):
		return http.StatusBadGateway

	// Background work cannot be accepted right now
	case errors.Is(err, task.ErrQueueFull),
		errors.Is(err, task.ErrQueueClosed):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error kind.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, domain.ErrCardNotFound):
		return "Card not found"
	case errors.Is(err, dictionary.ErrNotFound):
		return "Dictionary entry not found"
	case errors.Is(err, errTaskNotFound):
		return "Import not found"

	case errors.Is(err, domain.ErrDuplicateCard):
		return "Card already exists"
	case errors.Is(err, store.ErrDuplicate):
		return "Entity already exists"

	case errors.Is(err, domain.ErrInvalidQuestion):
		return "Invalid question text"
	case errors.Is(err, domain.ErrInvalidAnswer):
		return "Answer must not be empty"
	case errors.Is(err, domain.ErrInvalidRating):
		return "Rating must be one of again, hard, good, easy"
	case errors.Is(err, domain.ErrSettings):
		return "Invalid settings"
	case errors.Is(err, domain.ErrWellKnownSet):
		return "Unknown well-known set"
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.Is(err, domain.ErrInvalidValues):
		return "Invalid values"

	case errors.Is(err, generation.ErrNotConfigured):
		return "Please set LLM settings in your profile"
	case errors.Is(err, domain.ErrLlm),
		errors.Is(err, domain.ErrTranslation):
		return "Content generation failed"

	case errors.Is(err, task.ErrQueueFull),
		errors.Is(err, task.ErrQueueClosed):
		return "Import queue is unavailable, try again later"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the mapped status and safe message for err. When
// the error maps to 500 and fallback is set, fallback replaces the generic
// message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message naming the first failing field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}

	fe := verrs[0]
	field := fe.Field()
	if ns := fe.Namespace(); ns != "" {
		// Drop the top-level struct name, keep nested json names.
		if _, rest, ok := strings.Cut(ns, "."); ok {
			field = rest
		}
	}
	return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(fe.Tag()))
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte", "gt":
		return "too small"
	case "max", "lte", "lt":
		return "too large"
	case "oneof":
		return "invalid value"
	case "uuid":
		return "invalid id format"
	default:
		return "validation failed"
	}
}
