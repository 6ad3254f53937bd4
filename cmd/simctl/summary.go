package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/cypherlabdev/house-edge-simulator/internal/models"
	"github.com/cypherlabdev/house-edge-simulator/internal/service"
	"github.com/cypherlabdev/house-edge-simulator/pkg/pricer"
	"github.com/cypherlabdev/house-edge-simulator/pkg/simulator"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func validateFormat(format string) error {
	switch format {
	case formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported format %q: use json or yaml", format)
	}
}

// Decimals are rendered as fixed-point strings so both encoders print the same text.

type runSummary struct {
	SessionID   string          `json:"session_id" yaml:"session_id"`
	Seed        uint64          `json:"seed" yaml:"seed"`
	HouseMargin string          `json:"house_margin" yaml:"house_margin"`
	AgentCount  int             `json:"agent_count" yaml:"agent_count"`
	Rounds      []roundSummary  `json:"rounds" yaml:"rounds"`
	Ledger      ledgerSummary   `json:"ledger" yaml:"ledger"`
	Profiles    []profileRecord `json:"profiles" yaml:"profiles"`
}

type roundSummary struct {
	Round               int    `json:"round" yaml:"round"`
	Wagers              int    `json:"wagers" yaml:"wagers"`
	ParticipatingAgents int    `json:"participating_agents" yaml:"participating_agents"`
	StakeVolume         string `json:"stake_volume" yaml:"stake_volume"`
	PayoutVolume        string `json:"payout_volume" yaml:"payout_volume"`
	GGR                 string `json:"ggr" yaml:"ggr"`
	AverageBalance      string `json:"average_balance" yaml:"average_balance"`
	ActiveAgents        int    `json:"active_agents" yaml:"active_agents"`
	BankruptAgents      int    `json:"bankrupt_agents" yaml:"bankrupt_agents"`
}

type totalsSummary struct {
	Wagers       int    `json:"wagers" yaml:"wagers"`
	StakeVolume  string `json:"stake_volume" yaml:"stake_volume"`
	PayoutVolume string `json:"payout_volume" yaml:"payout_volume"`
	GGR          string `json:"ggr" yaml:"ggr"`
	HoldPercent  string `json:"hold_percent" yaml:"hold_percent"` // GGR as a share of stake volume
}

type ledgerSummary struct {
	Rounds    int                      `json:"rounds" yaml:"rounds"`
	Overall   totalsSummary            `json:"overall" yaml:"overall"`
	ByProfile map[string]totalsSummary `json:"by_profile" yaml:"by_profile"`
}

type profileRecord struct {
	Profile                  string  `json:"profile" yaml:"profile"`
	ParticipationProbability float64 `json:"participation_probability" yaml:"participation_probability"`
	WagerRate                float64 `json:"wager_rate" yaml:"wager_rate"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(simulator.MoneyScale)
}

var hundred = decimal.NewFromInt(100)

func summarizeTotals(t models.Totals) totalsSummary {
	hold := decimal.Zero
	if t.StakeVolume.IsPositive() {
		hold = t.GGR().Div(t.StakeVolume).Mul(hundred)
	}
	return totalsSummary{
		Wagers:       t.WagerCount,
		StakeVolume:  money(t.StakeVolume),
		PayoutVolume: money(t.PayoutVolume),
		GGR:          money(t.GGR()),
		HoldPercent:  hold.StringFixed(2),
	}
}

func summarizeLedger(ledger models.CumulativeLedger) ledgerSummary {
	out := ledgerSummary{
		Rounds:    ledger.Rounds,
		Overall:   summarizeTotals(ledger.Overall),
		ByProfile: make(map[string]totalsSummary, models.ProfileCount),
	}
	for _, p := range models.Profiles() {
		out.ByProfile[p.String()] = summarizeTotals(ledger.ByProfile[p])
	}
	return out
}

func summarizeRun(status service.Status, seed uint64, results []*models.RoundResult, ledger models.CumulativeLedger) runSummary {
	rounds := make([]roundSummary, 0, len(results))
	for _, r := range results {
		stats := r.Statistics
		rounds = append(rounds, roundSummary{
			Round:               r.Round,
			Wagers:              stats.Overall.WagerCount,
			ParticipatingAgents: stats.ParticipatingAgents,
			StakeVolume:         money(stats.Overall.StakeVolume),
			PayoutVolume:        money(stats.Overall.PayoutVolume),
			GGR:                 money(stats.Overall.GGR()),
			AverageBalance:      money(stats.AverageBalance),
			ActiveAgents:        stats.ActiveAgents,
			BankruptAgents:      stats.BankruptAgents,
		})
	}

	profiles := make([]profileRecord, 0, models.ProfileCount)
	for _, p := range models.Profiles() {
		pc := status.Profiles[p]
		profiles = append(profiles, profileRecord{
			Profile:                  p.String(),
			ParticipationProbability: pc.ParticipationProbability,
			WagerRate:                pc.WagerRate,
		})
	}

	return runSummary{
		SessionID:   status.SessionID.String(),
		Seed:        seed,
		HouseMargin: status.Config.HouseMargin.String(),
		AgentCount:  status.Config.AgentCount,
		Rounds:      rounds,
		Ledger:      summarizeLedger(ledger),
		Profiles:    profiles,
	}
}

type priceQuote struct {
	Probability     string `json:"probability" yaml:"probability"`
	FairOdd         string `json:"fair_odd,omitempty" yaml:"fair_odd,omitempty"` // empty for zero probability
	HouseOdd        string `json:"house_odd" yaml:"house_odd"`
	ExpectedReturn  string `json:"expected_return" yaml:"expected_return"`
	PotentialPayout string `json:"potential_payout" yaml:"potential_payout"`
}

func quoteOutcome(p *pricer.Pricer, prob, stake decimal.Decimal) priceQuote {
	houseOdd := p.PriceOutcome(prob)
	q := priceQuote{
		Probability:     prob.String(),
		HouseOdd:        houseOdd.StringFixed(pricer.OddScale),
		ExpectedReturn:  pricer.ExpectedReturn(prob, houseOdd).StringFixed(4),
		PotentialPayout: money(pricer.PotentialPayout(stake, houseOdd)),
	}
	if !prob.IsZero() {
		q.FairOdd = pricer.FairOdd(prob).StringFixed(pricer.OddScale)
	}
	return q
}

func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	}
}
