package simulator

import (
	"github.com/shopspring/decimal"
)

// MoneyScale is the currency precision in decimal places
const MoneyScale int32 = 2

var (
	// DefaultMinimumStake is the smallest regular wager
	DefaultMinimumStake = decimal.NewFromInt(5)

	// DefaultStakeFraction is the share of balance a regular wager commits
	DefaultStakeFraction = decimal.RequireFromString("0.10")
)

// WagerSizer decides how much a single wager commits
type WagerSizer struct {
	MinimumStake  decimal.Decimal
	StakeFraction decimal.Decimal
}

// DefaultWagerSizer stakes 10% of balance with a minimum of 5
func DefaultWagerSizer() WagerSizer {
	return WagerSizer{MinimumStake: DefaultMinimumStake, StakeFraction: DefaultStakeFraction}
}

// Size returns the stake for the given balance, rounded to cents.
// The all-in rule is checked before the fractional rule.
func (s WagerSizer) Size(balance decimal.Decimal) decimal.Decimal {
	if !balance.IsPositive() {
		return decimal.Zero
	}

	if s.MinimumStake.GreaterThan(balance) {
		return balance.Round(MoneyScale)
	}

	stake := balance.Mul(s.StakeFraction)
	if stake.LessThan(s.MinimumStake) {
		stake = s.MinimumStake
	}
	stake = decimal.Min(stake, balance)

	return stake.Round(MoneyScale)
}
