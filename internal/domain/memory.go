package domain

import (
	"fmt"
	"iter"
	"math"
	"slices"
	"time"
)

// Difficulty bounds shared by the scheduler and validation.
const (
	MinDifficulty = 1.0
	MaxDifficulty = 10.0
)

// Stability is the memory strength estimate in days. Always positive and finite.
type Stability struct {
	value float64
}

// NewStability validates v and wraps it.
func NewStability(v float64) (Stability, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return Stability{}, fmt.Errorf("%w: %v", ErrInvalidStability, v)
	}
	return Stability{value: v}, nil
}

// Value returns the stability in days.
func (s Stability) Value() float64 { return s.value }

// Difficulty is the intrinsic hardness of an item on a [1, 10] scale.
type Difficulty struct {
	value float64
}

// NewDifficulty validates v and wraps it.
func NewDifficulty(v float64) (Difficulty, error) {
	if math.IsNaN(v) || v < MinDifficulty || v > MaxDifficulty {
		return Difficulty{}, fmt.Errorf("%w: %v", ErrInvalidDifficulty, v)
	}
	return Difficulty{value: v}, nil
}

// Value returns the raw difficulty.
func (d Difficulty) Value() float64 { return d.value }

// MemoryState is the scheduler's output for one review: memory strength,
// item hardness and the moment the item is next due.
type MemoryState struct {
	stability  Stability
	difficulty Difficulty
	dueAt      time.Time
}

// NewMemoryState builds a state from already validated parameters.
func NewMemoryState(stability Stability, difficulty Difficulty, dueAt time.Time) (MemoryState, error) {
	if stability.value == 0 {
		return MemoryState{}, fmt.Errorf("%w: stability is unset", ErrInvalidMemoryState)
	}
	if difficulty.value == 0 {
		return MemoryState{}, fmt.Errorf("%w: difficulty is unset", ErrInvalidMemoryState)
	}
	if dueAt.IsZero() {
		return MemoryState{}, fmt.Errorf("%w: due time is unset", ErrInvalidMemoryState)
	}
	return MemoryState{stability: stability, difficulty: difficulty, dueAt: dueAt.UTC()}, nil
}

func (m MemoryState) Stability() Stability   { return m.stability }
func (m MemoryState) Difficulty() Difficulty { return m.difficulty }
func (m MemoryState) DueAt() time.Time       { return m.dueAt }

// IsDue reports whether the item should be reviewed at now.
func (m MemoryState) IsDue(now time.Time) bool {
	return !m.dueAt.After(now)
}

// ReviewLog is one immutable review record.
type ReviewLog struct {
	timestamp time.Time
	rating    Rating
	interval  time.Duration
	state     MemoryState
}

// NewReviewLog validates and builds a review record.
func NewReviewLog(timestamp time.Time, rating Rating, interval time.Duration, state MemoryState) (ReviewLog, error) {
	if err := rating.Validate(); err != nil {
		return ReviewLog{}, err
	}
	if timestamp.IsZero() {
		return ReviewLog{}, fmt.Errorf("%w: review timestamp is unset", ErrInvalidMemoryState)
	}
	if interval < 0 {
		return ReviewLog{}, fmt.Errorf("%w: negative interval %s", ErrInvalidMemoryState, interval)
	}
	if state.dueAt.IsZero() {
		return ReviewLog{}, fmt.Errorf("%w: review state is unset", ErrInvalidMemoryState)
	}
	return ReviewLog{timestamp: timestamp.UTC(), rating: rating, interval: interval, state: state}, nil
}

func (l ReviewLog) Timestamp() time.Time    { return l.timestamp }
func (l ReviewLog) Rating() Rating          { return l.rating }
func (l ReviewLog) Interval() time.Duration { return l.interval }
func (l ReviewLog) State() MemoryState      { return l.state }

// MemoryHistory is the append-only review log of one study card.
// The zero value is an empty history, meaning the card is New.
// The current state is always the state of the last log.
type MemoryHistory struct {
	logs []ReviewLog
}

// restoreMemoryHistory rebuilds a history from persisted logs, rejecting
// sequences whose timestamps go backwards.
func restoreMemoryHistory(logs []ReviewLog) (MemoryHistory, error) {
	for i := 1; i < len(logs); i++ {
		if logs[i].timestamp.Before(logs[i-1].timestamp) {
			return MemoryHistory{}, fmt.Errorf("%w: review %d precedes review %d", ErrInvalidMemoryState, i, i-1)
		}
	}
	return MemoryHistory{logs: slices.Clone(logs)}, nil
}

// addReview appends a log. Only KnowledgeSet.RateCard reaches this, which
// guarantees the timestamp is not earlier than the previous log.
func (h *MemoryHistory) addReview(log ReviewLog) error {
	if last, ok := h.LastReview(); ok && log.timestamp.Before(last.timestamp) {
		return fmt.Errorf("%w: review at %s precedes last review at %s",
			ErrInvalidMemoryState, log.timestamp, last.timestamp)
	}
	h.logs = append(h.logs, log)
	return nil
}

// Current returns the latest memory state, or false when the card is New.
func (h MemoryHistory) Current() (MemoryState, bool) {
	last, ok := h.LastReview()
	if !ok {
		return MemoryState{}, false
	}
	return last.state, true
}

// LastReview returns the most recent log, or false when the card is New.
func (h MemoryHistory) LastReview() (ReviewLog, bool) {
	if len(h.logs) == 0 {
		return ReviewLog{}, false
	}
	return h.logs[len(h.logs)-1], true
}

// Reviews returns a copy of the logs in chronological order.
func (h MemoryHistory) Reviews() []ReviewLog {
	return slices.Clone(h.logs)
}

// All iterates the logs in chronological order. The sequence can be ranged over repeatedly.
func (h MemoryHistory) All() iter.Seq2[int, ReviewLog] {
	return func(yield func(int, ReviewLog) bool) {
		for i, l := range h.logs {
			if !yield(i, l) {
				return
			}
		}
	}
}

// Len returns the number of reviews.
func (h MemoryHistory) Len() int { return len(h.logs) }

// IsNew reports whether the card has never been reviewed.
func (h MemoryHistory) IsNew() bool { return len(h.logs) == 0 }
