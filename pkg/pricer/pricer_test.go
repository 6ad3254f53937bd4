package pricer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabdev/house-edge-simulator/internal/models"
)

// d is a test helper for creating decimals from strings
func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func probs(win, draw, loss string) models.Probabilities {
	return models.Probabilities{d(win), d(draw), d(loss)}
}

// TestNew tests margin validation
func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		margin  string
		wantErr bool
	}{
		{name: "zero margin", margin: "0"},
		{name: "five percent", margin: "0.05"},
		{name: "just below one", margin: "0.999"},
		{name: "negative", margin: "-0.01", wantErr: true},
		{name: "one", margin: "1", wantErr: true},
		{name: "above one", margin: "1.5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(d(tt.margin))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMargin)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.True(t, p.Margin().Equal(d(tt.margin)))
		})
	}
}

// TestPrice_ZeroMargin tests that a zero margin yields fair odds
func TestPrice_ZeroMargin(t *testing.T) {
	p, err := New(decimal.Zero)
	require.NoError(t, err)

	odds := p.Price(probs("0.5", "0.25", "0.25"))

	assert.Equal(t, "2", odds[models.OutcomeWin].String())
	assert.Equal(t, "4", odds[models.OutcomeDraw].String())
	assert.Equal(t, "4", odds[models.OutcomeLoss].String())
}

// TestPrice_AppliesMargin tests the margin shading and 2-decimal rounding
func TestPrice_AppliesMargin(t *testing.T) {
	p, err := New(d("0.05"))
	require.NoError(t, err)

	odds := p.Price(probs("0.5", "0.3", "0.2"))

	assert.True(t, odds[0].Equal(d("1.90")), "got %s", odds[0])
	assert.True(t, odds[1].Equal(d("3.17")), "got %s", odds[1]) // 3.333 * 0.95 = 3.1666
	assert.True(t, odds[2].Equal(d("4.75")), "got %s", odds[2])
}

// TestPrice_ZeroProbabilitySentinel tests unbackable outcomes
func TestPrice_ZeroProbabilitySentinel(t *testing.T) {
	p, err := New(d("0.2"))
	require.NoError(t, err)

	odds := p.Price(probs("0.8", "0.2", "0"))

	assert.True(t, odds[models.OutcomeLoss].Equal(d("999.0")))
}

// TestPrice_FloorAtHighMargin tests that no outcome is priced below 1.01
func TestPrice_FloorAtHighMargin(t *testing.T) {
	p, err := New(d("0.9"))
	require.NoError(t, err)

	odds := p.Price(probs("0.7", "0.2", "0.1"))

	for i, odd := range odds {
		assert.True(t, odd.GreaterThanOrEqual(MinOdd), "outcome %d priced at %s", i, odd)
	}
	assert.True(t, odds[0].Equal(MinOdd)) // 1.428 * 0.1 = 0.14
}

// TestPrice_FloorProperty sweeps probabilities and margins
func TestPrice_FloorProperty(t *testing.T) {
	for m := 0; m < 100; m += 7 {
		p, err := New(decimal.New(int64(m), -2))
		require.NoError(t, err)
		for prob := 0; prob <= 100; prob++ {
			odd := p.PriceOutcome(decimal.New(int64(prob), -2))
			assert.True(t, odd.GreaterThanOrEqual(MinOdd), "margin=%d prob=%d odd=%s", m, prob, odd)
			if prob == 0 {
				assert.True(t, odd.Equal(UnbackableOdd))
			}
		}
	}
}

// TestPrice_Idempotent tests that pricing is a pure function
func TestPrice_Idempotent(t *testing.T) {
	p, err := New(d("0.07"))
	require.NoError(t, err)

	in := probs("0.37", "0.21", "0.42")
	first := p.Price(in)
	second := p.Price(in)

	for i := range first {
		assert.True(t, first[i].Equal(second[i]))
	}
}

// TestExpectedReturn tests the calculator helper
func TestExpectedReturn(t *testing.T) {
	er := ExpectedReturn(d("0.5"), d("1.90"))
	assert.True(t, er.Equal(d("-0.05")), "got %s", er)

	fair := ExpectedReturn(d("0.25"), FairOdd(d("0.25")))
	assert.True(t, fair.IsZero(), "got %s", fair)
}

// TestPotentialPayout tests stake times odd
func TestPotentialPayout(t *testing.T) {
	assert.True(t, PotentialPayout(d("100"), d("1.90")).Equal(d("190")))
}

// TestOverround tests the book edge calculation
func TestOverround(t *testing.T) {
	p, err := New(decimal.Zero)
	require.NoError(t, err)
	fair := Overround(p.Price(probs("0.5", "0.25", "0.25")))
	assert.True(t, fair.IsZero(), "got %s", fair)

	p, err = New(d("0.05"))
	require.NoError(t, err)
	shaded := Overround(p.Price(probs("0.5", "0.25", "0.25")))
	assert.True(t, shaded.GreaterThan(decimal.Zero), "got %s", shaded)
}
