package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/keikaku/internal/domain"
	"github.com/phrazzld/keikaku/internal/store"
)

// errUnchanged lets an UpdateUser callback skip the save.
var errUnchanged = errors.New("user unchanged")

// CardServiceError is a custom error type for card service errors.
type CardServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for CardServiceError.
func (e *CardServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("card service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("card service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *CardServiceError) Unwrap() error {
	return e.Err
}

// NewCardServiceError creates a new CardServiceError.
func NewCardServiceError(operation, message string, err error) *CardServiceError {
	return &CardServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// MapStoreError translates a store failure for userID into the domain error
// taxonomy. Errors that already carry a domain kind are returned unchanged.
func MapStoreError(err error, userID uuid.UUID) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrUserNotFound):
		return &domain.UserNotFoundError{UserID: userID}
	case errors.Is(err, domain.ErrRepository):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.ErrRepository, err)
	}
}
