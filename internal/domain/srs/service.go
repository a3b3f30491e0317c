package srs

import (
	"fmt"
	"time"

	"github.com/phrazzld/keikaku/internal/domain"
)

// Schedule is the outcome of one review: the new memory state and the delay
// until the card is due again.
type Schedule struct {
	State    domain.MemoryState
	Interval time.Duration
}

// Service defines the interface for SRS algorithm operations
type Service interface {
	// CalculateNextReview computes the state that follows rating the card
	// whose past reviews are history. It does not modify history.
	CalculateNextReview(
		history domain.MemoryHistory,
		rating domain.Rating,
		now time.Time,
	) (*Schedule, error)

	// Retrievability estimates the probability of recall at now. It reports
	// false for cards that have never been reviewed.
	Retrievability(history domain.MemoryHistory, now time.Time) (float64, bool)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new SRS service with custom parameters
func NewServiceWithParams(params *Params) (Service, error) {
	if params == nil {
		return nil, fmt.Errorf("%w: params cannot be nil", ErrInvalidParams)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &defaultService{
		params: params,
	}, nil
}

// CalculateNextReview implements the Service interface
func (s *defaultService) CalculateNextReview(
	history domain.MemoryHistory,
	rating domain.Rating,
	now time.Time,
) (*Schedule, error) {
	// Validate inputs
	if err := rating.Validate(); err != nil {
		return nil, err
	}
	if now.IsZero() {
		return nil, fmt.Errorf("%w: review time is unset", domain.ErrSrsCalculationFailed)
	}

	next := calculateNextState(history, rating, now, s.params)

	stability, err := domain.NewStability(next.stability)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSrsCalculationFailed, err)
	}
	difficulty, err := domain.NewDifficulty(next.difficulty)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSrsCalculationFailed, err)
	}
	state, err := domain.NewMemoryState(stability, difficulty, now.Add(next.interval))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSrsCalculationFailed, err)
	}

	return &Schedule{State: state, Interval: next.interval}, nil
}

// Retrievability implements the Service interface
func (s *defaultService) Retrievability(history domain.MemoryHistory, now time.Time) (float64, bool) {
	state, ok := history.Current()
	if !ok {
		return 0, false
	}
	last, _ := history.LastReview()
	elapsedDays := max(now.Sub(last.Timestamp()).Hours()/24, 0)
	return calculateRetrievability(elapsedDays, state.Stability().Value(), s.params), true
}
