package recommend

import (
	"github.com/mightbeian/HacMan/internal/domain/model"
	"github.com/mightbeian/HacMan/internal/domain/types"
)

// Default engine configuration constants.
const (
	defaultTopK        = 3
	defaultMaxK        = 10
	defaultLowMinutes  = 15
	defaultHighMinutes = 30

	weightSumTolerance = 1e-9
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithWeights sets the scoring term weights. Validated at construction.
func WithWeights(w Weights) Option {
	return func(e *Engine) {
		e.weights = w
	}
}

// WithTimeTable sets the estimated time range per difficulty band.
func WithTimeTable(table map[model.Difficulty]types.TimeRange) Option {
	return func(e *Engine) {
		if len(table) > 0 {
			e.timeTable = table
		}
	}
}

// WithDefaultK sets the list length used when the caller does not ask for
// a specific k.
func WithDefaultK(k int) Option {
	return func(e *Engine) {
		if k > 0 {
			e.defaultK = k
		}
	}
}

// WithMaxK caps the list length a caller may request.
func WithMaxK(k int) Option {
	return func(e *Engine) {
		if k > 0 {
			e.maxK = k
		}
	}
}
