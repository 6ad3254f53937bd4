package simulator

import (
	"github.com/cypherlabdev/house-edge-simulator/internal/models"
)

// OutcomeResolver draws the realized outcome of an event
type OutcomeResolver interface {
	Resolve(src Source, probs models.Probabilities) models.Outcome
}

// OutcomeResolverFunc adapts a function to OutcomeResolver
type OutcomeResolverFunc func(src Source, probs models.Probabilities) models.Outcome

func (f OutcomeResolverFunc) Resolve(src Source, probs models.Probabilities) models.Outcome {
	return f(src, probs)
}

// CategoricalResolver samples with exactly the event's true probabilities.
// Payout odds play no part in the draw.
type CategoricalResolver struct{}

func (CategoricalResolver) Resolve(src Source, probs models.Probabilities) models.Outcome {
	weights := probs.Floats()

	total := 0.0
	for _, w := range weights {
		total += w
	}

	u := src.Float64() * total
	cumulative := 0.0
	last := models.OutcomeWin
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = models.Outcome(i)
		cumulative += w
		if u < cumulative {
			return last
		}
	}
	// float rounding left u past the final bucket
	return last
}
