// Package card_review runs study sessions: choosing the cards of a lesson or
// a fixation round, recording ratings through the scheduler and closing
// lessons with the day's statistics.
package card_review

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/keikaku/internal/domain"
)

// Statistics summarizes a user's knowledge set.
type Statistics struct {
	// Current is computed from the cards as they are now.
	Current domain.Rollup
	// Today is the current day's record, updated when a lesson completes.
	Today domain.DailyHistoryItem
	// History holds archived days, oldest first.
	History       []domain.DailyHistoryItem
	TotalDuration time.Duration
	// DueNow counts reviewed cards whose due time has passed.
	DueNow int
}

// RatedCard is a card after a review, with the scheduler's estimate of
// retrievability just before the review.
type RatedCard struct {
	Card *domain.StudyCard
	// Retrievability is absent for a card's first review.
	Retrievability *float64
}

// CardReviewService provides study sessions over a user's knowledge set
// using a spaced repetition algorithm.
type CardReviewService interface {
	// CardsToLesson returns the new cards to introduce in the next lesson,
	// at most the user's NewCardsPerLesson, in creation order.
	CardsToLesson(ctx context.Context, userID uuid.UUID) ([]*domain.StudyCard, error)

	// CardsToFixation returns cards due for reinforcement, earliest due
	// first, followed by new cards. It does not modify data.
	CardsToFixation(ctx context.Context, userID uuid.UUID) ([]*domain.StudyCard, error)

	// RateCard computes the next memory state of the card with the scheduler
	// and records the review. On any error the card's history is unchanged.
	//
	// This method modifies data and runs within a transaction that holds the
	// user's row lock.
	RateCard(ctx context.Context, userID, cardID uuid.UUID, rating domain.Rating) (*RatedCard, error)

	// CompleteLesson adds the lesson's duration to the day and records the
	// day's statistics.
	CompleteLesson(ctx context.Context, userID uuid.UUID, duration time.Duration) (*Statistics, error)

	// Statistics returns the user's current and archived statistics.
	Statistics(ctx context.Context, userID uuid.UUID) (*Statistics, error)
}

// ServiceError wraps errors from the card review service with additional context.
// This allows consumers to differentiate between different types of service errors
// using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "rate_card", "complete_lesson")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewRateCardError returns a new ServiceError for the rate_card operation.
func NewRateCardError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "rate_card",
		Message:   message,
		Err:       err,
	}
}

// NewCompleteLessonError returns a new ServiceError for the complete_lesson operation.
func NewCompleteLessonError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "complete_lesson",
		Message:   message,
		Err:       err,
	}
}
