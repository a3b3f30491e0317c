package domain

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func mustVocab(t *testing.T, word, meaning string) *VocabularyCard {
	t.Helper()
	c, err := NewVocabularyCard(word, meaning, nil)
	require.NoError(t, err)
	return c
}

func TestKnowledgeSetCreateCardUniqueness(t *testing.T) {
	t.Parallel()

	ks := NewKnowledgeSet(testNow)

	cat, err := ks.CreateCard(mustVocab(t, "猫", "cat"))
	require.NoError(t, err)
	dog, err := ks.CreateCard(mustVocab(t, "犬", "dog"))
	require.NoError(t, err)
	assert.NotEqual(t, cat.ID(), dog.ID())

	_, err = ks.CreateCard(mustVocab(t, "猫", "feline"))
	require.ErrorIs(t, err, ErrDuplicateCard)

	var dupErr *DuplicateCardError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "猫", dupErr.Question)

	assert.Equal(t, 2, ks.Len())
	assert.True(t, cat.IsNew())
	assert.True(t, dog.IsNew())

	// Variants share one question namespace.
	kanji, err := NewKanjiCard("猫", "cat", KanjiCardParams{})
	require.NoError(t, err)
	_, err = ks.CreateCard(kanji)
	assert.ErrorIs(t, err, ErrDuplicateCard)

	// Normalization catches width and spacing variants.
	_, err = ks.CreateCard(mustVocab(t, "ＡＢＣ", "letters"))
	require.NoError(t, err)
	_, err = ks.CreateCard(mustVocab(t, " abc ", "letters"))
	assert.ErrorIs(t, err, ErrDuplicateCard)
}

func TestKnowledgeSetIDsFollowCreationOrder(t *testing.T) {
	t.Parallel()

	ks := NewKnowledgeSet(testNow)
	words := []string{"一", "二", "三", "四", "五", "六", "七", "八", "九", "十"}
	var ids []uuid.UUID
	for _, w := range words {
		sc, err := ks.CreateCard(mustVocab(t, w, "number"))
		require.NoError(t, err)
		ids = append(ids, sc.ID())
	}

	cards := ks.Cards()
	require.Len(t, cards, len(words))
	for i, sc := range cards {
		assert.Equal(t, ids[i], sc.ID())
		assert.Equal(t, words[i], sc.Card().Question().Text())
	}
}

func TestKnowledgeSetDeleteCard(t *testing.T) {
	t.Parallel()

	ks := NewKnowledgeSet(testNow)
	sc, err := ks.CreateCard(mustVocab(t, "猫", "cat"))
	require.NoError(t, err)

	require.NoError(t, ks.DeleteCard(sc.ID()))
	assert.Equal(t, 0, ks.Len())

	err = ks.DeleteCard(sc.ID())
	require.ErrorIs(t, err, ErrCardNotFound)
	var nf *CardNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, sc.ID(), nf.CardID)

	// The question is free again after deletion.
	_, err = ks.CreateCard(mustVocab(t, "猫", "cat"))
	assert.NoError(t, err)
}

func TestKnowledgeSetRateCard(t *testing.T) {
	t.Parallel()

	t.Run("rating a new card with good", func(t *testing.T) {
		t.Parallel()
		ks := NewKnowledgeSet(testNow)
		sc, err := ks.CreateCard(mustVocab(t, "猫", "cat"))
		require.NoError(t, err)

		state := mustState(t, 3.17, 5.3, testNow.Add(3*24*time.Hour))
		require.NoError(t, ks.RateCard(sc.ID(), RatingGood, 3*24*time.Hour, state, testNow))

		memory := sc.Memory()
		assert.Equal(t, 1, memory.Len())
		assert.False(t, sc.IsNew())
		current, ok := memory.Current()
		require.True(t, ok)
		assert.Equal(t, state, current)

		last, ok := memory.LastReview()
		require.True(t, ok)
		assert.Equal(t, RatingGood, last.Rating())
		assert.True(t, last.Timestamp().Equal(testNow))

		// A fresh card is now the only thing in lesson selection.
		assert.Empty(t, ks.NewCards(10))
	})

	t.Run("history length and current state track every review", func(t *testing.T) {
		t.Parallel()
		ks := NewKnowledgeSet(testNow)
		sc, err := ks.CreateCard(mustVocab(t, "犬", "dog"))
		require.NoError(t, err)

		for i := range 5 {
			now := testNow.Add(time.Duration(i) * 24 * time.Hour)
			state := mustState(t, float64(i+1), 5, now.Add(24*time.Hour))
			require.NoError(t, ks.RateCard(sc.ID(), RatingGood, 24*time.Hour, state, now))
			assert.Equal(t, i+1, sc.Memory().Len())
			current, _ := sc.Memory().Current()
			assert.Equal(t, state, current)
		}
	})

	t.Run("timestamps never go backwards", func(t *testing.T) {
		t.Parallel()
		ks := NewKnowledgeSet(testNow)
		sc, err := ks.CreateCard(mustVocab(t, "鳥", "bird"))
		require.NoError(t, err)

		require.NoError(t, ks.RateCard(sc.ID(), RatingGood, time.Hour, mustState(t, 1, 5, testNow.Add(time.Hour)), testNow))
		earlier := testNow.Add(-10 * time.Minute)
		require.NoError(t, ks.RateCard(sc.ID(), RatingHard, time.Hour, mustState(t, 1, 6, testNow.Add(time.Hour)), earlier))

		reviews := sc.Memory().Reviews()
		require.Len(t, reviews, 2)
		assert.False(t, reviews[1].Timestamp().Before(reviews[0].Timestamp()))
		assert.True(t, reviews[1].Timestamp().Equal(testNow))
	})

	t.Run("invalid rating leaves history untouched", func(t *testing.T) {
		t.Parallel()
		ks := NewKnowledgeSet(testNow)
		sc, err := ks.CreateCard(mustVocab(t, "魚", "fish"))
		require.NoError(t, err)

		err = ks.RateCard(sc.ID(), Rating(9), time.Hour, mustState(t, 1, 5, testNow.Add(time.Hour)), testNow)
		assert.ErrorIs(t, err, ErrInvalidRating)
		assert.True(t, sc.IsNew())
	})

	t.Run("unknown card id leaves the set unchanged", func(t *testing.T) {
		t.Parallel()
		u, err := NewUser("akira", LanguageEnglish, LevelN5, testNow)
		require.NoError(t, err)
		_, err = u.CreateCard(mustVocab(t, "猫", "cat"), testNow)
		require.NoError(t, err)

		before, err := json.Marshal(u)
		require.NoError(t, err)

		err = u.RateCard(uuid.New(), RatingGood, time.Hour, mustState(t, 1, 5, testNow.Add(time.Hour)), testNow.Add(time.Hour))
		assert.ErrorIs(t, err, ErrCardNotFound)

		after, err := json.Marshal(u)
		require.NoError(t, err)
		assert.JSONEq(t, string(before), string(after))
	})
}

func TestKnowledgeSetCardsToFixation(t *testing.T) {
	t.Parallel()

	ks := NewKnowledgeSet(testNow)
	overdue, err := ks.CreateCard(mustVocab(t, "過去", "past"))
	require.NoError(t, err)
	future, err := ks.CreateCard(mustVocab(t, "未来", "future"))
	require.NoError(t, err)
	fresh, err := ks.CreateCard(mustVocab(t, "新しい", "new"))
	require.NoError(t, err)

	reviewedAt := testNow.Add(-48 * time.Hour)
	require.NoError(t, ks.RateCard(overdue.ID(), RatingGood, 24*time.Hour,
		mustState(t, 1, 5, testNow.Add(-time.Hour)), reviewedAt))
	require.NoError(t, ks.RateCard(future.ID(), RatingGood, 72*time.Hour,
		mustState(t, 3, 5, testNow.Add(time.Hour)), reviewedAt))

	got := ks.CardsToFixation(testNow)
	require.Len(t, got, 2)
	assert.Equal(t, overdue.ID(), got[0].ID())
	assert.Equal(t, fresh.ID(), got[1].ID())

	// Pure read: calling again yields the same result and changes nothing.
	again := ks.CardsToFixation(testNow)
	assert.Equal(t, got, again)
	assert.Equal(t, 1, overdue.Memory().Len())
}

func TestKnowledgeSetCardsToFixationOrdersByDueTime(t *testing.T) {
	t.Parallel()

	ks := NewKnowledgeSet(testNow)
	a, _ := ks.CreateCard(mustVocab(t, "あ", "a"))
	b, _ := ks.CreateCard(mustVocab(t, "い", "i"))
	c, _ := ks.CreateCard(mustVocab(t, "う", "u"))

	reviewedAt := testNow.Add(-72 * time.Hour)
	require.NoError(t, ks.RateCard(a.ID(), RatingGood, 0, mustState(t, 1, 5, testNow.Add(-time.Hour)), reviewedAt))
	require.NoError(t, ks.RateCard(b.ID(), RatingGood, 0, mustState(t, 1, 5, testNow.Add(-3*time.Hour)), reviewedAt))
	require.NoError(t, ks.RateCard(c.ID(), RatingGood, 0, mustState(t, 1, 5, testNow.Add(-2*time.Hour)), reviewedAt))

	got := ks.CardsToFixation(testNow)
	require.Len(t, got, 3)
	assert.Equal(t, []uuid.UUID{b.ID(), c.ID(), a.ID()}, []uuid.UUID{got[0].ID(), got[1].ID(), got[2].ID()})
}

func TestKnowledgeSetNewCards(t *testing.T) {
	t.Parallel()

	ks := NewKnowledgeSet(testNow)
	var created []*StudyCard
	for _, w := range []string{"一", "二", "三", "四"} {
		sc, err := ks.CreateCard(mustVocab(t, w, "number"))
		require.NoError(t, err)
		created = append(created, sc)
	}
	require.NoError(t, ks.RateCard(created[0].ID(), RatingEasy, 0, mustState(t, 8, 3, testNow.Add(time.Hour)), testNow))

	got := ks.NewCards(2)
	require.Len(t, got, 2)
	assert.Equal(t, created[1].ID(), got[0].ID())
	assert.Equal(t, created[2].ID(), got[1].ID())

	assert.Len(t, ks.NewCards(0), 3)
}

func TestKnowledgeSetRollup(t *testing.T) {
	t.Parallel()

	ks := NewKnowledgeSet(testNow)
	empty := ks.Rollup()
	assert.Equal(t, Rollup{}, empty)

	known, _ := ks.CreateCard(mustVocab(t, "水", "water"))
	learning, _ := ks.CreateCard(mustVocab(t, "火", "fire"))
	hard, _ := ks.CreateCard(mustVocab(t, "難しい", "difficult"))
	_, _ = ks.CreateCard(mustVocab(t, "木", "tree"))

	due := testNow.Add(24 * time.Hour)
	require.NoError(t, ks.RateCard(known.ID(), RatingEasy, 0, mustState(t, KnownStabilityThreshold, 2, due), testNow))
	require.NoError(t, ks.RateCard(learning.ID(), RatingGood, 0, mustState(t, 3, 5, due), testNow))
	require.NoError(t, ks.RateCard(hard.ID(), RatingAgain, 0, mustState(t, 0.5, HighDifficultyThreshold, due), testNow))

	r := ks.Rollup()
	assert.Equal(t, 4, r.TotalWords)
	assert.Equal(t, 1, r.NewWords)
	assert.Equal(t, 1, r.KnownWords)
	assert.Equal(t, 2, r.InProgressWords)
	assert.Equal(t, 1, r.HighDifficultyWords)
	require.NotNil(t, r.AvgStability)
	require.NotNil(t, r.AvgDifficulty)
	assert.InDelta(t, (21+3+0.5)/3.0, *r.AvgStability, 1e-9)
	assert.InDelta(t, (2+5+7)/3.0, *r.AvgDifficulty, 1e-9)
}

func TestKnowledgeSetLessonsAndDays(t *testing.T) {
	t.Parallel()

	ks := NewKnowledgeSet(testNow)
	_, _ = ks.CreateCard(mustVocab(t, "猫", "cat"))

	require.NoError(t, ks.AddLessonDuration(5*time.Minute))
	ks.CompleteLesson(testNow.Add(time.Hour))
	require.NoError(t, ks.AddLessonDuration(10*time.Minute))
	ks.CompleteLesson(testNow.Add(2 * time.Hour))

	today := ks.Today()
	assert.Equal(t, 2, today.LessonsCompleted())
	assert.Equal(t, 15*time.Minute, today.TotalDuration())
	assert.Equal(t, 1, today.TotalWords())
	assert.Equal(t, 1, today.NewWords())
	_, hasAvg := today.AvgStability()
	assert.False(t, hasAvg, "no reviewed cards means no average")
	assert.Empty(t, ks.History())

	assert.ErrorIs(t, ks.AddLessonDuration(-time.Second), ErrInvalidValues)

	tomorrow := testNow.Add(24 * time.Hour)
	ks.CompleteLesson(tomorrow)
	history := ks.History()
	require.Len(t, history, 1)
	assert.Equal(t, 2, history[0].LessonsCompleted())
	assert.Equal(t, 1, ks.Today().LessonsCompleted())
	assert.Equal(t, time.Duration(0), ks.Today().TotalDuration())
	assert.Equal(t, 15*time.Minute, ks.TotalDuration())

	assert.False(t, ks.RollOver(tomorrow.Add(time.Hour)))
}

func TestKnowledgeSetFindByQuestion(t *testing.T) {
	t.Parallel()

	ks := NewKnowledgeSet(testNow)
	sc, _ := ks.CreateCard(mustVocab(t, "Taberu", "to eat"))

	found, ok := ks.FindByQuestion("taberu")
	require.True(t, ok)
	assert.Equal(t, sc.ID(), found.ID())

	_, ok = ks.FindByQuestion("nomu")
	assert.False(t, ok)

	_, err := ks.Card(uuid.New())
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestKnowledgeSetAddLessonDurationOverflow(t *testing.T) {
	t.Parallel()

	ks := NewKnowledgeSet(testNow)
	huge := time.Duration(math.MaxInt64 - 1)
	require.NoError(t, ks.AddLessonDuration(huge))

	err := ks.AddLessonDuration(time.Hour)
	require.ErrorIs(t, err, ErrInvalidValues)
	assert.Equal(t, huge, ks.TotalDuration(), "a rejected lesson leaves the total unchanged")
	assert.Equal(t, huge, ks.Today().TotalDuration())

	// The running total overflows first when today was rolled over.
	ks.CompleteLesson(testNow.Add(24 * time.Hour))
	require.Equal(t, time.Duration(0), ks.Today().TotalDuration())
	assert.ErrorIs(t, ks.AddLessonDuration(time.Hour), ErrInvalidValues)
	assert.Equal(t, time.Duration(0), ks.Today().TotalDuration(), "today is untouched when the total overflows")
	assert.Equal(t, huge, ks.TotalDuration())
}
