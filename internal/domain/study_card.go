package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// StudyCard pairs a Card with its review history. The id and card never
// change after construction; the history only grows through KnowledgeSet.RateCard.
type StudyCard struct {
	id     uuid.UUID
	card   Card
	memory MemoryHistory
}

// NewStudyCard wraps card with a fresh time-ordered id and an empty history.
func NewStudyCard(card Card) (*StudyCard, error) {
	if card == nil {
		return nil, fmt.Errorf("%w: card is nil", ErrInvalidValues)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate card id: %w", err)
	}
	return &StudyCard{id: id, card: card}, nil
}

// restoreStudyCard rebuilds a persisted card without generating an id.
func restoreStudyCard(id uuid.UUID, card Card, memory MemoryHistory) (*StudyCard, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: card id is empty", ErrInvalidValues)
	}
	if card == nil {
		return nil, fmt.Errorf("%w: card is nil", ErrInvalidValues)
	}
	return &StudyCard{id: id, card: card, memory: memory}, nil
}

// ID returns the card's unique identifier.
func (c *StudyCard) ID() uuid.UUID { return c.id }

// Card returns the study content.
func (c *StudyCard) Card() Card { return c.card }

// Memory returns the review history. The returned value shares no mutable state with c.
func (c *StudyCard) Memory() MemoryHistory {
	return MemoryHistory{logs: c.memory.Reviews()}
}

// IsNew reports whether the card has never been reviewed.
func (c *StudyCard) IsNew() bool { return c.memory.IsNew() }

// addReview appends a log to the card's history.
func (c *StudyCard) addReview(log ReviewLog) error {
	return c.memory.addReview(log)
}
