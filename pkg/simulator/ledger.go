package simulator

import (
	"github.com/cypherlabdev/house-edge-simulator/internal/models"
)

// Fold adds a settled round into the cumulative ledger, overall and per profile.
// It never sees agents or wagers, only finished statistics.
func Fold(ledger models.CumulativeLedger, round models.RoundStatistics) models.CumulativeLedger {
	ledger.Rounds++
	ledger.Overall = ledger.Overall.Add(round.Overall)
	for p := range ledger.ByProfile {
		ledger.ByProfile[p] = ledger.ByProfile[p].Add(round.ByProfile[p])
	}
	return ledger
}

// recordStake counts a placed wager in the round statistics
func recordStake(stats *models.RoundStatistics, w models.Wager) {
	stats.Overall.StakeVolume = stats.Overall.StakeVolume.Add(w.Stake)
	stats.Overall.WagerCount++

	byProfile := &stats.ByProfile[w.Profile]
	byProfile.StakeVolume = byProfile.StakeVolume.Add(w.Stake)
	byProfile.WagerCount++
}

// recordPayout counts a winning payout in the round statistics
func recordPayout(stats *models.RoundStatistics, w models.Wager) {
	stats.Overall.PayoutVolume = stats.Overall.PayoutVolume.Add(w.Payout)

	byProfile := &stats.ByProfile[w.Profile]
	byProfile.PayoutVolume = byProfile.PayoutVolume.Add(w.Payout)
}
