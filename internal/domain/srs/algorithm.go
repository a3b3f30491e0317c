package srs

import (
	"math"
	"time"

	"github.com/phrazzld/keikaku/internal/domain"
)

// Stability floor applied after every update.
const minStability = 0.001

// curve holds the forgetting-curve constants derived from the decay weight.
type curve struct {
	decay  float64 // -w20
	factor float64 // 0.9^(1/decay) - 1
}

func newCurve(p *Params) curve {
	decay := -p.Weights[20]
	return curve{decay: decay, factor: math.Pow(0.9, 1/decay) - 1}
}

// calculateRetrievability returns the probability of recall after elapsedDays.
//
// R(t, S) = (1 + factor * t / S) ^ decay
//
// The factor is chosen so that R equals 0.9 exactly when t equals S; this is
// what gives stability its meaning as "days until recall drops to 90%".
func calculateRetrievability(elapsedDays, stability float64, p *Params) float64 {
	c := newCurve(p)
	return math.Pow(1+c.factor*elapsedDays/stability, c.decay)
}

// calculateInitialStability returns the stability after the first review.
// S0(G) = w[G-1]
func calculateInitialStability(rating domain.Rating, p *Params) float64 {
	return clampStability(p.Weights[rating-1])
}

// calculateInitialDifficulty returns the difficulty after the first review.
//
// D0(G) = w4 - e^(w5 * (G - 1)) + 1
//
// When clamp is false the raw value is returned; nextDifficulty needs the
// unclamped D0(Easy) as its mean-reversion target.
func calculateInitialDifficulty(rating domain.Rating, p *Params, clamp bool) float64 {
	d := p.Weights[4] - math.Exp(p.Weights[5]*float64(rating-1)) + 1
	if clamp {
		return clampDifficulty(d)
	}
	return d
}

// calculateNextInterval determines how many days may pass before recall drops
// to the desired retention.
//
// I(r, S) = round(S / factor * (r^(1/decay) - 1)), clamped to [1, maximum interval]
func calculateNextInterval(stability float64, p *Params) int {
	c := newCurve(p)
	ivl := stability / c.factor * (math.Pow(p.DesiredRetention, 1/c.decay) - 1)
	days := int(math.Round(ivl))
	if days < 1 {
		days = 1
	}
	if days > p.MaximumIntervalDays {
		days = p.MaximumIntervalDays
	}
	return days
}

// calculateShortTermStability handles a second review on the same day, where
// the forgetting curve has barely moved.
//
// SInc = e^(w17 * (G - 3 + w18)) * S^(-w19)
//
// Good and Easy never reduce stability (SInc is at least 1).
func calculateShortTermStability(stability float64, rating domain.Rating, p *Params) float64 {
	w := &p.Weights
	sInc := math.Exp(w[17]*(float64(rating)-3+w[18])) * math.Pow(stability, -w[19])
	if rating == domain.RatingGood || rating == domain.RatingEasy {
		sInc = math.Max(sInc, 1)
	}
	return clampStability(stability * sInc)
}

// calculateNextDifficulty updates difficulty after a review.
//
// Parameters:
//   - difficulty: the current difficulty in [1, 10]
//   - rating: the review rating
//   - p: algorithm parameters
//
// Algorithm behavior:
//   - ΔD = -w6 * (G - 3): Again and Hard raise difficulty, Easy lowers it
//   - D' = D + (10 - D) * ΔD / 9: changes shrink as D approaches 10
//   - D'' = w7 * D0(Easy) + (1 - w7) * D': a small pull back toward the easiest start
//   - The result is clamped to [1, 10]
func calculateNextDifficulty(difficulty float64, rating domain.Rating, p *Params) float64 {
	w := &p.Weights
	delta := -w[6] * (float64(rating) - 3)
	damped := difficulty + (10-difficulty)*delta/9
	target := calculateInitialDifficulty(domain.RatingEasy, p, false)
	return clampDifficulty(w[7]*target + (1-w[7])*damped)
}

// calculateNextStability dispatches on the rating: Again uses the forgetting
// formula, every other rating the recall formula.
func calculateNextStability(difficulty, stability, retrievability float64, rating domain.Rating, p *Params) float64 {
	if rating == domain.RatingAgain {
		return clampStability(calculateForgetStability(difficulty, stability, retrievability, p))
	}
	return clampStability(calculateRecallStability(difficulty, stability, retrievability, rating, p))
}

// calculateRecallStability returns stability after a successful recall.
//
// S'r = S * (1 + e^w8 * (11 - D) * S^(-w9) * (e^((1 - R) * w10) - 1) * hardPenalty * easyBonus)
//
// Stability grows more when the card is easy, when it was weak, and when it
// was recalled late (low R).
func calculateRecallStability(difficulty, stability, retrievability float64, rating domain.Rating, p *Params) float64 {
	w := &p.Weights
	hardPenalty := 1.0
	if rating == domain.RatingHard {
		hardPenalty = w[15]
	}
	easyBonus := 1.0
	if rating == domain.RatingEasy {
		easyBonus = w[16]
	}
	return stability * (1 + math.Exp(w[8])*
		(11-difficulty)*
		math.Pow(stability, -w[9])*
		(math.Exp((1-retrievability)*w[10])-1)*
		hardPenalty*easyBonus)
}

// calculateForgetStability returns stability after a lapse.
//
// S'f = min(w11 * D^(-w12) * ((S + 1)^w13 - 1) * e^((1 - R) * w14), S / e^(w17 * w18))
//
// The second term keeps a lapse from ever increasing stability.
func calculateForgetStability(difficulty, stability, retrievability float64, p *Params) float64 {
	w := &p.Weights
	long := w[11] *
		math.Pow(difficulty, -w[12]) *
		(math.Pow(stability+1, w[13]) - 1) *
		math.Exp((1-retrievability)*w[14])
	short := stability / math.Exp(w[17]*w[18])
	return math.Min(long, short)
}

// nextState holds the raw numbers for the state after a review.
type nextState struct {
	stability  float64
	difficulty float64
	interval   time.Duration
}

// calculateNextState computes the state that follows a review at now.
//
// For a card's first review the initial stability and difficulty are used.
// Reviews less than a day after the previous one use the short-term formula;
// later reviews evaluate retrievability on the forgetting curve first.
// Again schedules the card AgainReviewMinutes later; other ratings schedule
// the interval at which recall falls to the desired retention.
func calculateNextState(history domain.MemoryHistory, rating domain.Rating, now time.Time, p *Params) nextState {
	var s, d float64

	prev, reviewed := history.Current()
	if !reviewed {
		s = calculateInitialStability(rating, p)
		d = calculateInitialDifficulty(rating, p, true)
	} else {
		last, _ := history.LastReview()
		elapsedDays := max(now.Sub(last.Timestamp()).Hours()/24, 0)
		prevS := prev.Stability().Value()
		prevD := prev.Difficulty().Value()

		if elapsedDays < 1 {
			s = calculateShortTermStability(prevS, rating, p)
		} else {
			r := calculateRetrievability(elapsedDays, prevS, p)
			s = calculateNextStability(prevD, prevS, r, rating, p)
		}
		d = calculateNextDifficulty(prevD, rating, p)
	}

	var interval time.Duration
	if rating == domain.RatingAgain {
		interval = time.Duration(p.AgainReviewMinutes) * time.Minute
	} else {
		interval = time.Duration(calculateNextInterval(s, p)) * 24 * time.Hour
	}

	return nextState{stability: s, difficulty: d, interval: interval}
}

func clampStability(s float64) float64 {
	return math.Max(s, minStability)
}

func clampDifficulty(d float64) float64 {
	return math.Min(math.Max(d, domain.MinDifficulty), domain.MaxDifficulty)
}
