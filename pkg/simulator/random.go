package simulator

import (
	"math"
	"math/rand/v2"
	"time"
)

// Source is the random stream every stochastic step draws from.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	// Float64 returns a uniform value in [0, 1)
	Float64() float64
	// IntN returns a uniform value in [0, n)
	IntN(n int) int
}

// NewSource returns a seeded PCG stream. Seed 0 picks a time-based seed.
func NewSource(seed uint64) Source {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// uniform draws from U(lo, hi)
func uniform(src Source, lo, hi float64) float64 {
	return lo + (hi-lo)*src.Float64()
}

// bernoulli returns true with probability p
func bernoulli(src Source, p float64) bool {
	return src.Float64() < p
}

// poisson draws from Poisson(lambda) by multiplying uniforms until the
// product falls below e^-lambda (Knuth). Fine for the small rates profiles use.
func poisson(src Source, lambda float64) int {
	limit := math.Exp(-lambda)
	k := 0
	p := src.Float64()
	for p > limit {
		k++
		p *= src.Float64()
	}
	return k
}
