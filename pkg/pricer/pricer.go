// Package pricer turns true outcome probabilities into house odds.
//
// Decimal odds are the payout multiplier applied to the stake. A fair odd is
// 1/p; the house shades every fair odd by (1 - margin) and never offers less
// than MinOdd, so a winning wager always returns more than its stake.
package pricer

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/house-edge-simulator/internal/models"
)

var (
	// ErrInvalidMargin is returned when the house margin is outside [0, 1)
	ErrInvalidMargin = errors.New("pricer: house margin must be in [0, 1)")

	// MinOdd is the floor applied to every priced outcome
	MinOdd = decimal.RequireFromString("1.01")

	// UnbackableOdd is emitted for outcomes with zero probability
	UnbackableOdd = decimal.RequireFromString("999.00")

	// OddScale is the number of decimal places odds are rounded to
	OddScale int32 = 2
)

var one = decimal.NewFromInt(1)

// Pricer applies a fixed house margin to fair odds
type Pricer struct {
	margin decimal.Decimal
}

// New creates a pricer for the given margin (0.05 = 5%)
func New(margin decimal.Decimal) (*Pricer, error) {
	if margin.IsNegative() || margin.GreaterThanOrEqual(one) {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidMargin, margin)
	}
	return &Pricer{margin: margin}, nil
}

// Margin returns the house margin
func (p *Pricer) Margin() decimal.Decimal {
	return p.margin
}

// Price converts a probability distribution into margin-adjusted odds
func (p *Pricer) Price(probs models.Probabilities) models.Odds {
	var odds models.Odds
	for i, prob := range probs {
		odds[i] = p.PriceOutcome(prob)
	}
	return odds
}

// PriceOutcome prices a single outcome
func (p *Pricer) PriceOutcome(prob decimal.Decimal) decimal.Decimal {
	if prob.IsZero() {
		return UnbackableOdd
	}
	// house odd = (1/p) * (1 - margin)
	// Example: p = 0.50, margin 5% -> 2.00 * 0.95 = 1.90
	houseOdd := FairOdd(prob).Mul(one.Sub(p.margin)).Round(OddScale)
	if houseOdd.LessThan(MinOdd) {
		return MinOdd
	}
	return houseOdd
}

// FairOdd is the breakeven multiplier 1/p. Callers must not pass zero.
func FairOdd(prob decimal.Decimal) decimal.Decimal {
	return one.Div(prob)
}

// ExpectedReturn is the expected profit per unit staked: p*odd - 1.
// A negative value means the wager loses money in the long run.
func ExpectedReturn(prob, odd decimal.Decimal) decimal.Decimal {
	return prob.Mul(odd).Sub(one)
}

// PotentialPayout is what a winning stake returns, stake included
func PotentialPayout(stake, odd decimal.Decimal) decimal.Decimal {
	return stake.Mul(odd)
}

// Overround returns the book's built-in edge: the sum of implied
// probabilities 1/odd across all outcomes, minus one.
func Overround(odds models.Odds) decimal.Decimal {
	total := decimal.Zero
	for _, odd := range odds {
		if odd.IsZero() {
			continue
		}
		total = total.Add(one.Div(odd))
	}
	return total.Sub(one)
}
