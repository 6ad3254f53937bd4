package simulator

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabdev/house-edge-simulator/internal/models"
)

// scriptedSource replays fixed values, cycling when exhausted
type scriptedSource struct {
	floats []float64
	ints   []int
	fi, ii int
}

func (s *scriptedSource) Float64() float64 {
	if len(s.floats) == 0 {
		return 0
	}
	v := s.floats[s.fi%len(s.floats)]
	s.fi++
	return v
}

func (s *scriptedSource) IntN(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[s.ii%len(s.ints)]
	s.ii++
	return v % n
}

// d is a test helper for creating decimals from strings
func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func fixedProbabilities(win, draw, loss string) EventGeneratorFunc {
	return func(Source) models.Probabilities {
		return models.Probabilities{d(win), d(draw), d(loss)}
	}
}

func fixedOutcome(o models.Outcome) OutcomeResolverFunc {
	return func(Source, models.Probabilities) models.Outcome {
		return o
	}
}

func fixedCount(n int) DecisionPolicyFunc {
	return func(Source, models.ProfileConfig) (int, error) {
		return n, nil
	}
}

// newTestSession creates a session with default profiles and a silent logger
func newTestSession(t *testing.T, cfg Config, opts ...Option) *Session {
	t.Helper()
	s, err := NewSession(cfg, models.DefaultProfileConfigs(), zerolog.Nop(), opts...)
	require.NoError(t, err)
	return s
}
