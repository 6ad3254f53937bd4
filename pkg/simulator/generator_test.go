package simulator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabdev/house-edge-simulator/internal/models"
)

// TestGenerate_Properties tests every drawn distribution is valid
func TestGenerate_Properties(t *testing.T) {
	g := DefaultProbabilityGenerator()
	src := NewSource(42)

	for i := 0; i < 10000; i++ {
		p := g.Generate(src)

		require.NoError(t, ValidateProbabilities(p))
		for _, v := range p {
			assert.True(t, v.GreaterThanOrEqual(decimal.Zero) && v.LessThanOrEqual(one), "component %s", v)
			assert.True(t, v.Equal(v.Round(2)), "component %s has more than 2 decimals", v)
		}
		assert.False(t, p[models.OutcomeLoss].IsNegative())
		assert.True(t, p.Sum().Sub(one).Abs().LessThanOrEqual(d("0.01")), "sum %s", p.Sum())

		assert.True(t, p[models.OutcomeWin].GreaterThanOrEqual(d("0.05")))
		assert.True(t, p[models.OutcomeWin].LessThanOrEqual(d("0.70")))
		assert.True(t, p[models.OutcomeDraw].GreaterThanOrEqual(d("0.10")))
		assert.True(t, p[models.OutcomeDraw].LessThanOrEqual(d("0.25")))
	}
}

// TestGenerate_LossDerivedFromRoundedComponents tests the order of operations
func TestGenerate_LossDerivedFromRoundedComponents(t *testing.T) {
	g := ProbabilityGenerator{WinMin: 0.456, WinMax: 0.456, DrawMin: 0.124, DrawMax: 0.124}

	p := g.Generate(NewSource(1))

	assert.Equal(t, "0.46", p[models.OutcomeWin].String())
	assert.Equal(t, "0.12", p[models.OutcomeDraw].String())
	assert.Equal(t, "0.42", p[models.OutcomeLoss].String())
}

// TestGenerate_NegativeLossCorrection tests the draw adjustment branch
func TestGenerate_NegativeLossCorrection(t *testing.T) {
	g := ProbabilityGenerator{WinMin: 0.8, WinMax: 0.8, DrawMin: 0.3, DrawMax: 0.3}

	p := g.Generate(NewSource(1))

	assert.True(t, p[models.OutcomeWin].Equal(d("0.8")))
	assert.True(t, p[models.OutcomeDraw].Equal(d("0.2")))
	assert.True(t, p[models.OutcomeLoss].IsZero())
	assert.NoError(t, ValidateProbabilities(p))
}

// TestValidateProbabilities tests degenerate distributions are rejected
func TestValidateProbabilities(t *testing.T) {
	tests := []struct {
		name    string
		probs   models.Probabilities
		wantErr bool
	}{
		{name: "valid", probs: models.Probabilities{d("0.5"), d("0.25"), d("0.25")}},
		{name: "within tolerance", probs: models.Probabilities{d("0.5"), d("0.25"), d("0.26")}},
		{name: "negative component", probs: models.Probabilities{d("0.9"), d("0.2"), d("-0.1")}, wantErr: true},
		{name: "component above one", probs: models.Probabilities{d("1.2"), d("0"), d("0")}, wantErr: true},
		{name: "sum too low", probs: models.Probabilities{d("0.5"), d("0.2"), d("0.2")}, wantErr: true},
		{name: "sum too high", probs: models.Probabilities{d("0.5"), d("0.3"), d("0.3")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProbabilities(tt.probs)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrDegenerateProbabilities)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
