// Package simulator runs the round-based betting market: synthetic agents
// wager on house-priced events and every settlement feeds the house ledger.
package simulator

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/house-edge-simulator/internal/models"
	"github.com/cypherlabdev/house-edge-simulator/pkg/pricer"
)

var (
	// ErrInvalidConfig is returned when the run configuration is rejected at intake
	ErrInvalidConfig = errors.New("invalid simulation config")

	// ErrConfigLocked is returned when configuration is changed after round 1
	ErrConfigLocked = errors.New("simulation config is locked once the first round has run")

	// ErrRoundNotFound is returned for round numbers outside the history
	ErrRoundNotFound = errors.New("round not found")

	// ErrAgentNotFound is returned for unknown agent ids
	ErrAgentNotFound = errors.New("agent not found")
)

// DefaultEventsPerRound is the slate size of every round
const DefaultEventsPerRound = 10

// Config is fixed for the lifetime of a run once round 1 executes
type Config struct {
	AgentCount      int             `json:"agent_count"`
	StartingBalance decimal.Decimal `json:"starting_balance"`
	HouseMargin     decimal.Decimal `json:"house_margin"` // 0.05 = 5%, locked at round 1
	EventsPerRound  int             `json:"events_per_round"`
	MinimumStake    decimal.Decimal `json:"minimum_stake"`
	StakeFraction   decimal.Decimal `json:"stake_fraction"`
	MaxPoissonDraws int             `json:"max_poisson_draws"`
}

// DefaultConfig returns 100 agents with 100 each against a 5% margin
func DefaultConfig() Config {
	return Config{
		AgentCount:      100,
		StartingBalance: decimal.NewFromInt(100),
		HouseMargin:     decimal.RequireFromString("0.05"),
		EventsPerRound:  DefaultEventsPerRound,
		MinimumStake:    DefaultMinimumStake,
		StakeFraction:   DefaultStakeFraction,
		MaxPoissonDraws: DefaultMaxPoissonDraws,
	}
}

// Validate rejects configurations a run cannot start from
func (c Config) Validate() error {
	if c.AgentCount <= 0 {
		return fmt.Errorf("%w: agent count must be positive, got %d", ErrInvalidConfig, c.AgentCount)
	}
	if !c.StartingBalance.IsPositive() {
		return fmt.Errorf("%w: starting balance must be positive, got %s", ErrInvalidConfig, c.StartingBalance)
	}
	if c.HouseMargin.IsNegative() || c.HouseMargin.GreaterThanOrEqual(one) {
		return fmt.Errorf("%w: house margin must be in [0,1), got %s", ErrInvalidConfig, c.HouseMargin)
	}
	if c.EventsPerRound <= 0 {
		return fmt.Errorf("%w: events per round must be positive, got %d", ErrInvalidConfig, c.EventsPerRound)
	}
	if !c.MinimumStake.IsPositive() {
		return fmt.Errorf("%w: minimum stake must be positive, got %s", ErrInvalidConfig, c.MinimumStake)
	}
	if !c.StakeFraction.IsPositive() || c.StakeFraction.GreaterThan(one) {
		return fmt.Errorf("%w: stake fraction must be in (0,1], got %s", ErrInvalidConfig, c.StakeFraction)
	}
	if c.MaxPoissonDraws <= 0 {
		return fmt.Errorf("%w: max poisson draws must be positive, got %d", ErrInvalidConfig, c.MaxPoissonDraws)
	}
	return nil
}

// Option customizes a Session
type Option func(*Session)

// WithSource sets the random stream; use a fixed seed for reproducible runs
func WithSource(src Source) Option {
	return func(s *Session) { s.src = src }
}

// WithEventGenerator replaces the probability model
func WithEventGenerator(g EventGenerator) Option {
	return func(s *Session) { s.generator = g }
}

// WithOutcomeResolver replaces the outcome draw
func WithOutcomeResolver(r OutcomeResolver) Option {
	return func(s *Session) { s.resolver = r }
}

// WithDecisionPolicy replaces the participation and wager-count policy
func WithDecisionPolicy(p DecisionPolicy) Option {
	return func(s *Session) { s.policy = p }
}

// Session is one simulation run. It is not safe for concurrent use;
// callers serialize access and never re-enter AdvanceRound.
type Session struct {
	id       uuid.UUID
	cfg      Config
	profiles models.ByProfile[models.ProfileConfig]

	src       Source
	generator EventGenerator
	resolver  OutcomeResolver
	policy    DecisionPolicy

	round   int
	pricer  *pricer.Pricer // built at round 1 with the locked margin
	agents  []models.Agent
	history []models.RoundRecord
	ledger  models.CumulativeLedger

	logger zerolog.Logger
}

// NewSession validates the configuration and profile parameters and returns an idle run
func NewSession(cfg Config, profiles models.ByProfile[models.ProfileConfig], logger zerolog.Logger, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for p, pc := range profiles {
		if err := pc.Validate(); err != nil {
			return nil, fmt.Errorf("profile %s: %w", models.Profile(p), err)
		}
	}

	s := &Session{
		id:        uuid.New(),
		cfg:       cfg,
		profiles:  profiles,
		generator: DefaultProbabilityGenerator(),
		resolver:  CategoricalResolver{},
		logger:    logger.With().Str("component", "round_engine").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.src == nil {
		s.src = NewSource(0)
	}
	return s, nil
}

// ID identifies the current run. Reset starts a new run with a new id.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// CurrentRound returns the number of completed rounds
func (s *Session) CurrentRound() int {
	return s.round
}

// Config returns the run configuration
func (s *Session) Config() Config {
	return s.cfg
}

// Configure replaces the run configuration. Only allowed before round 1.
func (s *Session) Configure(cfg Config) error {
	if s.round > 0 {
		return ErrConfigLocked
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.cfg = cfg
	return nil
}

// Profiles returns the current profile parameters
func (s *Session) Profiles() models.ByProfile[models.ProfileConfig] {
	return s.profiles
}

// SetProfileConfig updates a profile's parameters starting with the next round
func (s *Session) SetProfileConfig(p models.Profile, cfg models.ProfileConfig) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %d", models.ErrInvalidProfile, int(p))
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.profiles[p] = cfg
	s.logger.Info().
		Stringer("profile", p).
		Float64("participation_probability", cfg.ParticipationProbability).
		Float64("wager_rate", cfg.WagerRate).
		Msg("profile parameters updated")
	return nil
}

// Reset discards agents, history and ledgers. Configuration and profile parameters are kept.
func (s *Session) Reset() {
	s.logger.Info().
		Str("session_id", s.id.String()).
		Int("rounds", s.round).
		Msg("resetting simulation")

	s.id = uuid.New()
	s.round = 0
	s.pricer = nil
	s.agents = nil
	s.history = nil
	s.ledger = models.CumulativeLedger{}
}

// AdvanceRound runs one full round: setup, event generation, wager
// collection, resolution, settlement and aggregation. On error the
// session is left exactly as it was before the call.
func (s *Session) AdvanceRound() (*models.RoundResult, error) {
	roundNo := s.round + 1
	pr := s.pricer
	ledger := s.ledger

	var agents []models.Agent
	if roundNo == 1 {
		var err error
		pr, err = pricer.New(s.cfg.HouseMargin)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		agents = s.seedAgents()
		ledger = models.CumulativeLedger{}
	} else {
		agents = slices.Clone(s.agents)
	}

	events, err := s.generateEvents(roundNo, pr)
	if err != nil {
		return nil, err
	}

	stats := models.RoundStatistics{Round: roundNo}
	wagers, err := s.collectWagers(roundNo, agents, events, &stats)
	if err != nil {
		return nil, err
	}

	// Outcomes are drawn only once every wager of the round is recorded.
	for i := range events {
		if err := events[i].Resolve(s.resolver.Resolve(s.src, events[i].TrueProbabilities)); err != nil {
			return nil, err
		}
	}

	s.settle(agents, events, wagers, &stats)
	s.aggregate(agents, &stats)
	ledger = Fold(ledger, stats)

	record := models.RoundRecord{
		Round:      roundNo,
		Events:     events,
		Wagers:     wagers,
		Statistics: stats,
	}

	s.round = roundNo
	s.pricer = pr
	s.agents = agents
	s.ledger = ledger
	s.history = append(s.history, record)

	s.logger.Info().
		Int("round", roundNo).
		Int("wagers", stats.Overall.WagerCount).
		Str("stake_volume", stats.Overall.StakeVolume.StringFixed(MoneyScale)).
		Str("payout_volume", stats.Overall.PayoutVolume.StringFixed(MoneyScale)).
		Str("ggr", stats.Overall.GGR().StringFixed(MoneyScale)).
		Str("cumulative_ggr", ledger.Overall.GGR().StringFixed(MoneyScale)).
		Msg("round settled")

	return &models.RoundResult{
		SessionID:   s.id,
		RoundRecord: cloneRecord(record),
		Agents:      slices.Clone(agents),
		Ledger:      ledger,
	}, nil
}

// seedAgents creates the roster, assigning profiles round-robin
func (s *Session) seedAgents() []models.Agent {
	profiles := models.Profiles()
	agents := make([]models.Agent, s.cfg.AgentCount)
	for i := range agents {
		agents[i] = models.Agent{
			ID:           i,
			Profile:      profiles[i%len(profiles)],
			Balance:      s.cfg.StartingBalance,
			TotalWagered: decimal.Zero,
			NetChange:    decimal.Zero,
		}
	}
	return agents
}

func (s *Session) generateEvents(roundNo int, pr *pricer.Pricer) ([]models.Event, error) {
	events := make([]models.Event, s.cfg.EventsPerRound)
	for i := range events {
		probs := s.generator.Generate(s.src)
		if err := ValidateProbabilities(probs); err != nil {
			return nil, fmt.Errorf("round %d event %d: %w", roundNo, i+1, err)
		}
		events[i] = models.Event{
			ID:                fmt.Sprintf("R%d-E%d", roundNo, i+1),
			Round:             roundNo,
			Description:       fmt.Sprintf("Match %d", i+1),
			TrueProbabilities: probs,
			PayoutOdds:        pr.Price(probs),
		}
	}
	return events, nil
}

func (s *Session) decisionPolicy() DecisionPolicy {
	if s.policy != nil {
		return s.policy
	}
	return PoissonPolicy{MaxDraws: s.cfg.MaxPoissonDraws}
}

// collectWagers walks agents in id order. Each wager debits the balance
// immediately, so later wagers of the same agent see what is left.
func (s *Session) collectWagers(roundNo int, agents []models.Agent, events []models.Event, stats *models.RoundStatistics) ([]models.Wager, error) {
	policy := s.decisionPolicy()
	sizer := WagerSizer{MinimumStake: s.cfg.MinimumStake, StakeFraction: s.cfg.StakeFraction}

	var wagers []models.Wager
	for i := range agents {
		agent := &agents[i]

		count, err := policy.Decide(s.src, s.profiles[agent.Profile])
		if err != nil {
			return nil, fmt.Errorf("round %d agent %d: %w", roundNo, agent.ID, err)
		}

		placed := 0
		for range count {
			if !agent.Balance.IsPositive() {
				break
			}
			stake := sizer.Size(agent.Balance)
			if !stake.IsPositive() {
				break
			}

			event := &events[s.src.IntN(len(events))]
			outcome := models.Outcome(s.src.IntN(int(models.OutcomeCount)))

			w := models.Wager{
				ID:      s.wagerID(roundNo, agent.ID, placed),
				Round:   roundNo,
				AgentID: agent.ID,
				Profile: agent.Profile,
				EventID: event.ID,
				Outcome: outcome,
				Stake:   stake,
				Odd:     event.PayoutOdds[outcome],
				Result:  models.WagerPending,
				Payout:  decimal.Zero,
			}
			wagers = append(wagers, w)
			recordStake(stats, w)

			agent.Balance = agent.Balance.Sub(stake).Round(MoneyScale)
			agent.TotalWagered = agent.TotalWagered.Add(stake)
			placed++
		}

		if placed > 0 {
			agent.RoundsWagered++
			stats.ParticipatingAgents++
		}
	}
	return wagers, nil
}

func (s *Session) wagerID(roundNo, agentID, seq int) uuid.UUID {
	return uuid.NewSHA1(s.id, fmt.Appendf(nil, "%d/%d/%d", roundNo, agentID, seq))
}

// settle pays winners stake times the odd captured at placement
func (s *Session) settle(agents []models.Agent, events []models.Event, wagers []models.Wager, stats *models.RoundStatistics) {
	resolved := make(map[string]models.Outcome, len(events))
	for _, e := range events {
		resolved[e.ID] = *e.ResolvedOutcome
	}

	for i := range wagers {
		w := &wagers[i]
		if w.Outcome != resolved[w.EventID] {
			w.Result = models.WagerLost
			w.Payout = decimal.Zero
			continue
		}

		w.Result = models.WagerWon
		w.Payout = w.Stake.Mul(w.Odd)
		agents[w.AgentID].Balance = agents[w.AgentID].Balance.Add(w.Payout)
		recordPayout(stats, *w)
	}
}

// aggregate clamps balances, recomputes net change from the starting
// balance and fills the roster counters of the round statistics
func (s *Session) aggregate(agents []models.Agent, stats *models.RoundStatistics) {
	total := decimal.Zero
	for i := range agents {
		a := &agents[i]
		a.Balance = decimal.Max(decimal.Zero, a.Balance.Round(MoneyScale))
		a.NetChange = a.Balance.Sub(s.cfg.StartingBalance)

		total = total.Add(a.Balance)
		if a.Balance.IsZero() {
			stats.BankruptAgents++
		} else {
			stats.ActiveAgents++
			stats.ActiveByProfile[a.Profile]++
		}
		if a.Balance.GreaterThan(s.cfg.StartingBalance) {
			stats.ProfitableAgents++
		}
	}
	if len(agents) > 0 {
		stats.AverageBalance = total.Div(decimal.NewFromInt(int64(len(agents)))).Round(MoneyScale)
	}
}

// Agents returns a snapshot of the roster
func (s *Session) Agents() []models.Agent {
	return slices.Clone(s.agents)
}

// Ledger returns the cumulative ledger
func (s *Session) Ledger() models.CumulativeLedger {
	return s.ledger
}

// History returns every completed round in order
func (s *Session) History() []models.RoundRecord {
	out := make([]models.RoundRecord, len(s.history))
	for i, r := range s.history {
		out[i] = cloneRecord(r)
	}
	return out
}

// Round returns the record of round n (1-based)
func (s *Session) Round(n int) (models.RoundRecord, error) {
	if n < 1 || n > len(s.history) {
		return models.RoundRecord{}, fmt.Errorf("%w: %d", ErrRoundNotFound, n)
	}
	return cloneRecord(s.history[n-1]), nil
}

// AgentWagers returns every wager an agent placed across the run, oldest first
func (s *Session) AgentWagers(agentID int) ([]models.Wager, error) {
	if agentID < 0 || agentID >= len(s.agents) {
		return nil, fmt.Errorf("%w: %d", ErrAgentNotFound, agentID)
	}
	var out []models.Wager
	for _, r := range s.history {
		for _, w := range r.Wagers {
			if w.AgentID == agentID {
				out = append(out, w)
			}
		}
	}
	return out, nil
}

func cloneRecord(r models.RoundRecord) models.RoundRecord {
	events := make([]models.Event, len(r.Events))
	for i, e := range r.Events {
		if e.ResolvedOutcome != nil {
			o := *e.ResolvedOutcome
			e.ResolvedOutcome = &o
		}
		events[i] = e
	}
	r.Events = events
	r.Wagers = slices.Clone(r.Wagers)
	return r
}
