package srs

import (
	"math"
	"testing"

	"github.com/phrazzld/keikaku/internal/domain"
	"github.com/stretchr/testify/assert"
)

const tolerance = 1e-6

func TestCalculateRetrievability(t *testing.T) {
	t.Parallel()
	p := NewDefaultParams()

	assert.InDelta(t, 1.0, calculateRetrievability(0, 5, p), tolerance, "R is 1 right after review")
	assert.InDelta(t, 0.9, calculateRetrievability(5, 5, p), tolerance, "R is 0.9 when t equals S")

	prev := 1.0
	for _, days := range []float64{1, 2, 5, 10, 30, 365} {
		r := calculateRetrievability(days, 5, p)
		assert.Less(t, r, prev, "R decays with time (t=%v)", days)
		prev = r
	}
}

func TestCalculateInitialValues(t *testing.T) {
	t.Parallel()
	p := NewDefaultParams()

	testCases := []struct {
		rating         domain.Rating
		wantStability  float64
		wantDifficulty float64
	}{
		{domain.RatingAgain, 0.212, 6.4133},
		{domain.RatingHard, 1.2931, 5.112170705601055},
		{domain.RatingGood, 2.3065, 2.118103970459015},
		{domain.RatingEasy, 8.2956, 1.0},
	}

	for _, tc := range testCases {
		t.Run(tc.rating.String(), func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tc.wantStability, calculateInitialStability(tc.rating, p), tolerance)
			assert.InDelta(t, tc.wantDifficulty, calculateInitialDifficulty(tc.rating, p, true), tolerance)
		})
	}

	// Unclamped Easy difficulty drops below the floor.
	assert.Less(t, calculateInitialDifficulty(domain.RatingEasy, p, false), 1.0)
}

func TestCalculateNextInterval(t *testing.T) {
	t.Parallel()
	p := NewDefaultParams()

	// At 90% retention the interval equals stability.
	assert.Equal(t, 2, calculateNextInterval(2.3065, p))
	assert.Equal(t, 8, calculateNextInterval(8.2956, p))
	assert.Equal(t, 100, calculateNextInterval(100, p))

	// Never shorter than a day.
	assert.Equal(t, 1, calculateNextInterval(0.01, p))

	// Never longer than the configured maximum.
	capped := NewDefaultParams()
	capped.MaximumIntervalDays = 30
	assert.Equal(t, 30, calculateNextInterval(1000, capped))

	// Lower retention targets allow longer intervals.
	relaxed := NewDefaultParams()
	relaxed.DesiredRetention = 0.85
	assert.Equal(t, 191, calculateNextInterval(100, relaxed))
}

func TestCalculateShortTermStability(t *testing.T) {
	t.Parallel()
	p := NewDefaultParams()
	w := p.Weights

	for _, rating := range []domain.Rating{domain.RatingAgain, domain.RatingHard, domain.RatingGood, domain.RatingEasy} {
		sInc := math.Exp(w[17]*(float64(rating)-3+w[18])) * math.Pow(5, -w[19])
		if rating >= domain.RatingGood {
			sInc = math.Max(sInc, 1)
		}
		assert.InDelta(t, 5*sInc, calculateShortTermStability(5, rating, p), tolerance, rating.String())
	}

	assert.GreaterOrEqual(t, calculateShortTermStability(50, domain.RatingGood, p), 50.0,
		"good never lowers stability on the same day")
}

func TestCalculateNextDifficulty(t *testing.T) {
	t.Parallel()
	p := NewDefaultParams()

	d := 5.0
	assert.Greater(t, calculateNextDifficulty(d, domain.RatingAgain, p), d)
	assert.Greater(t, calculateNextDifficulty(d, domain.RatingHard, p), d)
	assert.Less(t, calculateNextDifficulty(d, domain.RatingEasy, p), d)

	// Good only applies mean reversion, which is tiny with default weights.
	assert.InDelta(t, d, calculateNextDifficulty(d, domain.RatingGood, p), 0.02)

	// Bounds hold at the extremes.
	assert.LessOrEqual(t, calculateNextDifficulty(10, domain.RatingAgain, p), 10.0)
	assert.GreaterOrEqual(t, calculateNextDifficulty(1, domain.RatingEasy, p), 1.0)
}

func TestCalculateNextStability(t *testing.T) {
	t.Parallel()
	p := NewDefaultParams()

	d, s := 5.0, 10.0
	r := calculateRetrievability(10, s, p)

	again := calculateNextStability(d, s, r, domain.RatingAgain, p)
	hard := calculateNextStability(d, s, r, domain.RatingHard, p)
	good := calculateNextStability(d, s, r, domain.RatingGood, p)
	easy := calculateNextStability(d, s, r, domain.RatingEasy, p)

	assert.Less(t, again, s, "a lapse lowers stability")
	assert.Greater(t, good, s, "a recall raises stability")
	assert.Less(t, hard, good)
	assert.Less(t, good, easy)

	// Late recall (lower R) grows stability more than early recall.
	early := calculateRecallStability(d, s, calculateRetrievability(2, s, p), domain.RatingGood, p)
	late := calculateRecallStability(d, s, calculateRetrievability(30, s, p), domain.RatingGood, p)
	assert.Less(t, early, late)

	// The floor applies.
	assert.GreaterOrEqual(t, clampStability(-1), minStability)
}

func TestClampDifficulty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.0, clampDifficulty(-3))
	assert.Equal(t, 10.0, clampDifficulty(42))
	assert.Equal(t, 4.2, clampDifficulty(4.2))
}
