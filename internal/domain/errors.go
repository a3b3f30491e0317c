// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Common domain errors used across the application.
// Callers classify failures with errors.Is against these values; the typed
// errors below carry the offending value and match the same sentinels.
var (
	// ErrUserNotFound is returned when a user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrCardNotFound is returned when a study card id is not present in a knowledge set.
	ErrCardNotFound = errors.New("card not found")

	// ErrDuplicateCard is returned when a card with the same question already exists.
	ErrDuplicateCard = errors.New("duplicate card")

	// ErrInvalidQuestion is returned when question text is empty.
	ErrInvalidQuestion = errors.New("invalid question")

	// ErrInvalidAnswer is returned when answer text is empty.
	ErrInvalidAnswer = errors.New("invalid answer")

	// ErrInvalidStability is returned when a stability value is not positive and finite.
	ErrInvalidStability = errors.New("invalid stability")

	// ErrInvalidDifficulty is returned when a difficulty value is outside [1, 10].
	ErrInvalidDifficulty = errors.New("invalid difficulty")

	// ErrInvalidMemoryState is returned when a memory state cannot be constructed.
	ErrInvalidMemoryState = errors.New("invalid memory state")

	// ErrInvalidRating is returned when a rating is not one of again, hard, good or easy.
	ErrInvalidRating = errors.New("invalid rating")

	// ErrInvalidValues is returned for malformed input that fits no narrower kind.
	ErrInvalidValues = errors.New("invalid values")

	// ErrSrsCalculationFailed is returned when the scheduling algorithm cannot produce a state.
	ErrSrsCalculationFailed = errors.New("srs calculation failed")

	// ErrRepository is returned when the persistence layer fails.
	ErrRepository = errors.New("repository error")

	// ErrLlm is returned when the language model collaborator fails or is not configured.
	ErrLlm = errors.New("llm error")

	// ErrTranslation is returned when translated content cannot be produced.
	ErrTranslation = errors.New("translation error")

	// ErrFurigana is returned when reading annotation of Japanese text fails.
	ErrFurigana = errors.New("furigana error")

	// ErrWellKnownSet is returned when a bundled study set cannot be loaded.
	ErrWellKnownSet = errors.New("well-known set error")

	// ErrSettings is returned when user settings are invalid.
	ErrSettings = errors.New("settings error")
)

// UserNotFoundError reports a missing user by id.
type UserNotFoundError struct {
	UserID uuid.UUID
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// Is matches ErrUserNotFound.
func (e *UserNotFoundError) Is(target error) bool {
	return target == ErrUserNotFound
}

// CardNotFoundError reports a study card id that is not in the knowledge set.
type CardNotFoundError struct {
	CardID uuid.UUID
}

func (e *CardNotFoundError) Error() string {
	return fmt.Sprintf("card not found: %s", e.CardID)
}

// Is matches ErrCardNotFound.
func (e *CardNotFoundError) Is(target error) bool {
	return target == ErrCardNotFound
}

// DuplicateCardError reports the question text that collided with an existing card.
type DuplicateCardError struct {
	Question string
}

func (e *DuplicateCardError) Error() string {
	return fmt.Sprintf("duplicate card: %q", e.Question)
}

// Is matches ErrDuplicateCard.
func (e *DuplicateCardError) Is(target error) bool {
	return target == ErrDuplicateCard
}
