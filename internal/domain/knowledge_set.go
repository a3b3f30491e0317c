package domain

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Thresholds used when classifying reviewed cards in a Rollup.
const (
	// KnownStabilityThreshold is the stability, in days, from which a card counts as known.
	KnownStabilityThreshold = 21.0

	// HighDifficultyThreshold is the difficulty from which a reviewed card is
	// also counted as high difficulty. The category overlaps known and in progress.
	HighDifficultyThreshold = 7.0
)

// KnowledgeSet owns a learner's study cards and daily statistics.
//
// Cards are keyed by id; a second index keyed by normalized question text
// keeps question uniqueness checks constant time. The set is plain data and
// is not safe for concurrent use; callers serialize writers per user.
type KnowledgeSet struct {
	cards         map[uuid.UUID]*StudyCard
	questions     map[string]uuid.UUID
	today         DailyHistoryItem
	history       []DailyHistoryItem
	totalDuration time.Duration
}

// NewKnowledgeSet returns an empty set whose current day starts at now.
func NewKnowledgeSet(now time.Time) *KnowledgeSet {
	return &KnowledgeSet{
		cards:     make(map[uuid.UUID]*StudyCard),
		questions: make(map[string]uuid.UUID),
		today:     NewDailyHistoryItem(now),
	}
}

// CreateCard adds card unless a card with the same normalized question exists.
// The duplicate check happens before an id is generated.
func (k *KnowledgeSet) CreateCard(card Card) (*StudyCard, error) {
	if card == nil {
		return nil, fmt.Errorf("%w: card is nil", ErrInvalidValues)
	}
	key := card.Question().Normalized()
	if _, exists := k.questions[key]; exists {
		return nil, &DuplicateCardError{Question: card.Question().Text()}
	}

	sc, err := NewStudyCard(card)
	if err != nil {
		return nil, err
	}
	k.cards[sc.id] = sc
	k.questions[key] = sc.id
	return sc, nil
}

// DeleteCard removes the card with id.
func (k *KnowledgeSet) DeleteCard(id uuid.UUID) error {
	sc, ok := k.cards[id]
	if !ok {
		return &CardNotFoundError{CardID: id}
	}
	delete(k.questions, sc.card.Question().Normalized())
	delete(k.cards, id)
	return nil
}

// RateCard records a review whose resulting state was computed by the
// scheduler. The log timestamp is max(now, previous log timestamp) so that a
// clock step backwards cannot break history ordering. On error nothing changes.
func (k *KnowledgeSet) RateCard(id uuid.UUID, rating Rating, interval time.Duration, state MemoryState, now time.Time) error {
	sc, ok := k.cards[id]
	if !ok {
		return &CardNotFoundError{CardID: id}
	}

	ts := now.UTC()
	if last, ok := sc.memory.LastReview(); ok && ts.Before(last.timestamp) {
		ts = last.timestamp
	}

	log, err := NewReviewLog(ts, rating, interval, state)
	if err != nil {
		return err
	}
	return sc.addReview(log)
}

// Card returns the card with id.
func (k *KnowledgeSet) Card(id uuid.UUID) (*StudyCard, error) {
	sc, ok := k.cards[id]
	if !ok {
		return nil, &CardNotFoundError{CardID: id}
	}
	return sc, nil
}

// FindByQuestion looks a card up by question text using the duplicate-detection key.
func (k *KnowledgeSet) FindByQuestion(text string) (*StudyCard, bool) {
	id, ok := k.questions[NormalizeQuestion(text)]
	if !ok {
		return nil, false
	}
	return k.cards[id], true
}

// Len returns the number of cards.
func (k *KnowledgeSet) Len() int { return len(k.cards) }

// Cards returns every card in creation order.
func (k *KnowledgeSet) Cards() []*StudyCard {
	return slices.SortedFunc(maps.Values(k.cards), compareByID)
}

// CardsToFixation returns the cards worth reviewing at now: reviewed cards
// whose due time has passed, earliest due first, followed by New cards in
// creation order. It does not modify the set.
func (k *KnowledgeSet) CardsToFixation(now time.Time) []*StudyCard {
	var due, fresh []*StudyCard
	for _, sc := range k.cards {
		state, reviewed := sc.memory.Current()
		switch {
		case !reviewed:
			fresh = append(fresh, sc)
		case state.IsDue(now):
			due = append(due, sc)
		}
	}

	slices.SortFunc(due, func(a, b *StudyCard) int {
		sa, _ := a.memory.Current()
		sb, _ := b.memory.Current()
		if c := sa.dueAt.Compare(sb.dueAt); c != 0 {
			return c
		}
		return compareByID(a, b)
	})
	slices.SortFunc(fresh, compareByID)
	return append(due, fresh...)
}

// NewCards returns up to limit never-reviewed cards in creation order.
// A non-positive limit returns all of them.
func (k *KnowledgeSet) NewCards(limit int) []*StudyCard {
	var fresh []*StudyCard
	for _, sc := range k.cards {
		if sc.memory.IsNew() {
			fresh = append(fresh, sc)
		}
	}
	slices.SortFunc(fresh, compareByID)
	if limit > 0 && len(fresh) > limit {
		fresh = fresh[:limit]
	}
	return fresh
}

// AddLessonDuration adds study time to the current day and the running total.
// Neither is changed when either would overflow.
func (k *KnowledgeSet) AddLessonDuration(d time.Duration) error {
	if err := checkDurationSum(k.totalDuration, d); err != nil {
		return err
	}
	if err := k.today.AddLessonDuration(d); err != nil {
		return err
	}
	k.totalDuration += d
	return nil
}

// Rollup summarizes the cards of a knowledge set.
type Rollup struct {
	TotalWords          int
	NewWords            int
	KnownWords          int
	InProgressWords     int
	HighDifficultyWords int
	// Averages over reviewed cards; nil when no card has been reviewed.
	AvgStability  *float64
	AvgDifficulty *float64
}

// Rollup computes statistics without modifying the set.
func (k *KnowledgeSet) Rollup() Rollup {
	var (
		r             Rollup
		sumS, sumD    float64
		reviewedCount int
	)
	r.TotalWords = len(k.cards)
	for _, sc := range k.cards {
		state, reviewed := sc.memory.Current()
		if !reviewed {
			r.NewWords++
			continue
		}
		reviewedCount++
		sumS += state.stability.value
		sumD += state.difficulty.value
		if state.stability.value >= KnownStabilityThreshold {
			r.KnownWords++
		} else {
			r.InProgressWords++
		}
		if state.difficulty.value >= HighDifficultyThreshold {
			r.HighDifficultyWords++
		}
	}
	if reviewedCount > 0 {
		avgS := sumS / float64(reviewedCount)
		avgD := sumD / float64(reviewedCount)
		r.AvgStability = &avgS
		r.AvgDifficulty = &avgD
	}
	return r
}

// CompleteLesson closes a lesson at now: if now is on a later UTC day the
// current daily item is archived first, then the rollup is recorded.
func (k *KnowledgeSet) CompleteLesson(now time.Time) {
	k.RollOver(now)
	k.today.Update(k.Rollup())
}

// RollOver archives the current daily item when now is on a later UTC day.
// It reports whether an item was archived.
func (k *KnowledgeSet) RollOver(now time.Time) bool {
	if k.today.SameDay(now) || now.Before(k.today.timestamp) {
		return false
	}
	k.history = append(k.history, k.today)
	k.today = NewDailyHistoryItem(now)
	return true
}

// Today returns the current daily item.
func (k *KnowledgeSet) Today() DailyHistoryItem { return k.today }

// History returns archived daily items, oldest first.
func (k *KnowledgeSet) History() []DailyHistoryItem { return slices.Clone(k.history) }

// TotalDuration returns study time accumulated over the set's lifetime.
func (k *KnowledgeSet) TotalDuration() time.Duration { return k.totalDuration }

// compareByID orders cards by id. Ids are UUIDv7, so this is creation order.
func compareByID(a, b *StudyCard) int {
	return bytes.Compare(a.id[:], b.id[:])
}
