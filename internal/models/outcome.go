package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidOutcome is returned when decoding an unknown outcome label
var ErrInvalidOutcome = errors.New("invalid outcome")

// Outcome is one of the mutually exclusive results of a match, seen from the home side
type Outcome int

const (
	OutcomeWin Outcome = iota
	OutcomeDraw
	OutcomeLoss

	// OutcomeCount is the number of outcomes per event; keep it last
	OutcomeCount
)

var outcomeLabels = [OutcomeCount]string{
	OutcomeWin:  "win",
	OutcomeDraw: "draw",
	OutcomeLoss: "loss",
}

// Outcomes returns the outcome labels in pricing order
func Outcomes() []Outcome {
	return []Outcome{OutcomeWin, OutcomeDraw, OutcomeLoss}
}

func (o Outcome) String() string {
	if !o.Valid() {
		return fmt.Sprintf("outcome(%d)", int(o))
	}
	return outcomeLabels[o]
}

// Valid reports whether o is a known outcome
func (o Outcome) Valid() bool {
	return o >= 0 && o < OutcomeCount
}

// MarshalText encodes the outcome as its label
func (o Outcome) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOutcome, int(o))
	}
	return []byte(outcomeLabels[o]), nil
}

// UnmarshalText decodes an outcome label
func (o *Outcome) UnmarshalText(text []byte) error {
	needle := strings.ToLower(string(text))
	for i, label := range outcomeLabels {
		if label == needle {
			*o = Outcome(i)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidOutcome, string(text))
}

// Probabilities is the true distribution over [win, draw, loss]
type Probabilities [OutcomeCount]decimal.Decimal

// Odds is the payout-multiplier vector over [win, draw, loss]
type Odds [OutcomeCount]decimal.Decimal

// Sum returns the total probability mass
func (p Probabilities) Sum() decimal.Decimal {
	return decimal.Sum(p[0], p[1:]...)
}

// Floats converts the distribution for sampling
func (p Probabilities) Floats() [OutcomeCount]float64 {
	var out [OutcomeCount]float64
	for i, v := range p {
		out[i] = v.InexactFloat64()
	}
	return out
}
