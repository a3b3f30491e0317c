package srs

import (
	"errors"
	"fmt"
)

// WeightCount is the number of FSRS-6 model weights.
const WeightCount = 21

// ErrInvalidParams is returned when algorithm parameters are out of bounds.
var ErrInvalidParams = errors.New("invalid srs parameters")

// DefaultWeights are the published FSRS-6 default weights.
var DefaultWeights = [WeightCount]float64{
	0.212, 1.2931, 2.3065, 8.2956, // w0..w3   initial stability per rating
	6.4133, 0.8334, 3.0194, 0.001, // w4..w7   difficulty
	1.8722, 0.1666, 0.796, 1.4835, // w8..w11  recall stability
	0.0614, 0.2629, 1.6483, 0.6014, // w12..w15 forget stability, hard penalty
	1.8729, 0.5425, 0.0912, 0.0658, // w16..w19 easy bonus, short-term
	0.1542, // w20 decay
}

var (
	weightLowerBounds = [WeightCount]float64{
		0.001, 0.001, 0.001, 0.001,
		1.0, 0.001, 0.001, 0.001,
		0.0, 0.0, 0.001, 0.001,
		0.001, 0.001, 0.0, 0.0,
		1.0, 0.0, 0.0, 0.0,
		0.1,
	}
	weightUpperBounds = [WeightCount]float64{
		100.0, 100.0, 100.0, 100.0,
		10.0, 4.0, 4.0, 0.75,
		4.5, 0.8, 3.5, 5.0,
		0.25, 0.9, 4.0, 1.0,
		6.0, 2.0, 2.0, 0.8,
		0.8,
	}
)

// Params defines all configurable parameters for the SRS algorithm
type Params struct {
	// Model weights
	Weights [WeightCount]float64

	// Target probability of recall at the moment a card becomes due
	DesiredRetention float64

	// Upper bound for any scheduled interval
	MaximumIntervalDays int

	// Delay before a failed card is shown again
	AgainReviewMinutes int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
// Zero values keep the defaults.
type ParamsConfig struct {
	Weights             *[WeightCount]float64
	DesiredRetention    float64
	MaximumIntervalDays int
	AgainReviewMinutes  int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		Weights:             DefaultWeights,
		DesiredRetention:    0.9,
		MaximumIntervalDays: 36500,

		// Review again in 10 minutes
		AgainReviewMinutes: 10,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) (*Params, error) {
	params := NewDefaultParams()

	if config.Weights != nil {
		params.Weights = *config.Weights
	}
	if config.DesiredRetention != 0 {
		params.DesiredRetention = config.DesiredRetention
	}
	if config.MaximumIntervalDays != 0 {
		params.MaximumIntervalDays = config.MaximumIntervalDays
	}
	if config.AgainReviewMinutes != 0 {
		params.AgainReviewMinutes = config.AgainReviewMinutes
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}
	return params, nil
}

// Validate checks every weight against its bound and the scheduling limits.
func (p *Params) Validate() error {
	for i, w := range p.Weights {
		if w < weightLowerBounds[i] || w > weightUpperBounds[i] {
			return fmt.Errorf("%w: w[%d] = %f, bounds [%f, %f]",
				ErrInvalidParams, i, w, weightLowerBounds[i], weightUpperBounds[i])
		}
	}
	if p.DesiredRetention <= 0 || p.DesiredRetention >= 1 {
		return fmt.Errorf("%w: desired retention %f must be in (0, 1)", ErrInvalidParams, p.DesiredRetention)
	}
	if p.MaximumIntervalDays < 1 {
		return fmt.Errorf("%w: maximum interval must be at least 1 day", ErrInvalidParams)
	}
	if p.AgainReviewMinutes < 1 {
		return fmt.Errorf("%w: again delay must be at least 1 minute", ErrInvalidParams)
	}
	return nil
}
