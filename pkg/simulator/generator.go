package simulator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/house-edge-simulator/internal/models"
)

// ErrDegenerateProbabilities signals a generator defect. It is never clamped away.
var ErrDegenerateProbabilities = errors.New("degenerate probability distribution")

const probScale int32 = 2

var (
	one          = decimal.NewFromInt(1)
	sumTolerance = decimal.RequireFromString("0.01")
)

// EventGenerator produces the true distribution of one event
type EventGenerator interface {
	Generate(src Source) models.Probabilities
}

// EventGeneratorFunc adapts a function to EventGenerator
type EventGeneratorFunc func(src Source) models.Probabilities

func (f EventGeneratorFunc) Generate(src Source) models.Probabilities {
	return f(src)
}

// ProbabilityGenerator draws the true [win, draw, loss] distribution of an event.
// Win varies widely, draw stays in a narrow band, loss takes the remainder.
type ProbabilityGenerator struct {
	WinMin, WinMax   float64
	DrawMin, DrawMax float64
}

// DefaultProbabilityGenerator returns the football-like model: win U(0.05,0.70), draw U(0.10,0.25)
func DefaultProbabilityGenerator() ProbabilityGenerator {
	return ProbabilityGenerator{WinMin: 0.05, WinMax: 0.70, DrawMin: 0.10, DrawMax: 0.25}
}

// Generate draws one distribution. Win and draw are rounded before loss is
// derived from them; if loss would go negative, draw absorbs the remainder.
func (g ProbabilityGenerator) Generate(src Source) models.Probabilities {
	win := decimal.NewFromFloat(uniform(src, g.WinMin, g.WinMax)).Round(probScale)
	draw := decimal.NewFromFloat(uniform(src, g.DrawMin, g.DrawMax)).Round(probScale)
	loss := one.Sub(win).Sub(draw).Round(probScale)

	if loss.IsNegative() {
		draw = one.Sub(win).Round(probScale)
		loss = decimal.Zero
	}

	return models.Probabilities{win, draw, loss}
}

// ValidateProbabilities checks every component is in [0,1] and the total is within 0.01 of 1
func ValidateProbabilities(p models.Probabilities) error {
	for i, v := range p {
		if v.IsNegative() || v.GreaterThan(one) {
			return fmt.Errorf("%w: %s probability %s outside [0,1]", ErrDegenerateProbabilities, models.Outcome(i), v)
		}
	}
	if sum := p.Sum(); sum.Sub(one).Abs().GreaterThan(sumTolerance) {
		return fmt.Errorf("%w: probabilities sum to %s", ErrDegenerateProbabilities, sum)
	}
	return nil
}
