package models

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrAlreadyResolved is returned when an event outcome is set a second time
var ErrAlreadyResolved = errors.New("event already resolved")

// Event is one simulated match within a round
type Event struct {
	ID                string        `json:"id"`
	Round             int           `json:"round"`
	Description       string        `json:"description"`
	TrueProbabilities Probabilities `json:"true_probabilities"`
	PayoutOdds        Odds          `json:"payout_odds"`
	ResolvedOutcome   *Outcome      `json:"resolved_outcome"` // nil until resolution
}

// Resolve records the realized outcome. It may only be called once per event.
func (e *Event) Resolve(o Outcome) error {
	if e.ResolvedOutcome != nil {
		return fmt.Errorf("%w: %s", ErrAlreadyResolved, e.ID)
	}
	if !o.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidOutcome, int(o))
	}
	e.ResolvedOutcome = &o
	return nil
}

// Resolved reports whether the outcome has been drawn
func (e *Event) Resolved() bool {
	return e.ResolvedOutcome != nil
}

// Agent is a synthetic bettor that persists across rounds
type Agent struct {
	ID            int             `json:"id"`
	Profile       Profile         `json:"profile"`
	Balance       decimal.Decimal `json:"balance"`
	TotalWagered  decimal.Decimal `json:"total_wagered"`
	NetChange     decimal.Decimal `json:"net_change"` // balance minus starting balance
	RoundsWagered int             `json:"rounds_wagered"`
}

// WagerResult is the settlement state of a wager
type WagerResult string

const (
	WagerPending WagerResult = "pending"
	WagerWon     WagerResult = "won"
	WagerLost    WagerResult = "lost"
)

// Wager is a single bet. Everything except Result and Payout is fixed at placement.
type Wager struct {
	ID      uuid.UUID       `json:"id"`
	Round   int             `json:"round"`
	AgentID int             `json:"agent_id"`
	Profile Profile         `json:"profile"`
	EventID string          `json:"event_id"`
	Outcome Outcome         `json:"outcome"`
	Stake   decimal.Decimal `json:"stake"`
	Odd     decimal.Decimal `json:"odd"` // captured at placement
	Result  WagerResult     `json:"result"`
	Payout  decimal.Decimal `json:"payout"`
}

// Totals is a stake/payout accumulator. GGR is derived, never stored.
type Totals struct {
	StakeVolume  decimal.Decimal `json:"stake_volume"`
	PayoutVolume decimal.Decimal `json:"payout_volume"`
	WagerCount   int             `json:"wager_count"`
}

// GGR returns gross gaming revenue, stake volume minus payout volume
func (t Totals) GGR() decimal.Decimal {
	return t.StakeVolume.Sub(t.PayoutVolume)
}

// Add returns the element-wise sum of t and o
func (t Totals) Add(o Totals) Totals {
	return Totals{
		StakeVolume:  t.StakeVolume.Add(o.StakeVolume),
		PayoutVolume: t.PayoutVolume.Add(o.PayoutVolume),
		WagerCount:   t.WagerCount + o.WagerCount,
	}
}

// MarshalJSON adds the derived ggr field
func (t Totals) MarshalJSON() ([]byte, error) {
	type plain Totals
	return json.Marshal(struct {
		plain
		GGR decimal.Decimal `json:"ggr"`
	}{plain(t), t.GGR()})
}

// RoundStatistics aggregates one round. It is append-only until settlement completes.
type RoundStatistics struct {
	Round               int               `json:"round"`
	Overall             Totals            `json:"overall"`
	ByProfile           ByProfile[Totals] `json:"by_profile"`
	ParticipatingAgents int               `json:"participating_agents"`
	AverageBalance      decimal.Decimal   `json:"average_balance"`
	ActiveAgents        int               `json:"active_agents"`     // balance > 0
	ProfitableAgents    int               `json:"profitable_agents"` // balance > starting balance
	BankruptAgents      int               `json:"bankrupt_agents"`   // balance == 0
	ActiveByProfile     ByProfile[int]    `json:"active_by_profile"`
}

// CumulativeLedger is the running total of every settled round
type CumulativeLedger struct {
	Rounds    int               `json:"rounds"`
	Overall   Totals            `json:"overall"`
	ByProfile ByProfile[Totals] `json:"by_profile"`
}

// RoundRecord is the history entry kept for each completed round
type RoundRecord struct {
	Round      int             `json:"round"`
	Events     []Event         `json:"events"`
	Wagers     []Wager         `json:"wagers"`
	Statistics RoundStatistics `json:"statistics"`
}

// RoundResult is returned when a round completes
type RoundResult struct {
	SessionID uuid.UUID `json:"session_id"`
	RoundRecord
	Agents []Agent          `json:"agents"`
	Ledger CumulativeLedger `json:"ledger"`
}
