package simulator

import (
	"errors"
	"fmt"

	"github.com/cypherlabdev/house-edge-simulator/internal/models"
)

// ErrPoissonExhausted means the truncated Poisson draw never produced a count >= 1
// within the configured cap. It points at a misconfigured wager rate.
var ErrPoissonExhausted = errors.New("truncated poisson draw exhausted")

// DefaultMaxPoissonDraws bounds the rejection loop of the wager-count draw
const DefaultMaxPoissonDraws = 1000

// DecisionPolicy decides how many wagers an agent places this round
type DecisionPolicy interface {
	Decide(src Source, cfg models.ProfileConfig) (int, error)
}

// DecisionPolicyFunc adapts a function to DecisionPolicy
type DecisionPolicyFunc func(src Source, cfg models.ProfileConfig) (int, error)

func (f DecisionPolicyFunc) Decide(src Source, cfg models.ProfileConfig) (int, error) {
	return f(src, cfg)
}

// PoissonPolicy participates with probability p, then draws the wager count
// from Poisson(λ) truncated to >= 1 by rejection.
type PoissonPolicy struct {
	MaxDraws int
}

// Decide returns 0 when the agent sits the round out, otherwise a count >= 1
func (p PoissonPolicy) Decide(src Source, cfg models.ProfileConfig) (int, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}

	if !bernoulli(src, cfg.ParticipationProbability) {
		return 0, nil
	}

	maxDraws := p.MaxDraws
	if maxDraws <= 0 {
		maxDraws = DefaultMaxPoissonDraws
	}

	for range maxDraws {
		if n := poisson(src, cfg.WagerRate); n >= 1 {
			return n, nil
		}
	}
	return 0, fmt.Errorf("%w: %d draws at rate %v", ErrPoissonExhausted, maxDraws, cfg.WagerRate)
}
