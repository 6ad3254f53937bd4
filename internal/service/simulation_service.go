package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/house-edge-simulator/internal/metrics"
	"github.com/cypherlabdev/house-edge-simulator/internal/models"
	"github.com/cypherlabdev/house-edge-simulator/pkg/simulator"
)

// ErrInvalidRoundCount is returned when asked to advance by zero or fewer rounds
var ErrInvalidRoundCount = errors.New("round count must be positive")

// SimulationService serializes access to the session and fans settled rounds
// out to the cache, the publisher and the metrics registry
type SimulationService struct {
	mu        sync.RWMutex
	session   *simulator.Session
	cache     Cache     // nil disables caching
	publisher Publisher // nil disables publishing
	logger    zerolog.Logger
}

// NewSimulationService creates a new simulation service
func NewSimulationService(
	session *simulator.Session,
	cache Cache,
	publisher Publisher,
	logger zerolog.Logger,
) *SimulationService {
	return &SimulationService{
		session:   session,
		cache:     cache,
		publisher: publisher,
		logger:    logger.With().Str("component", "simulation_service").Logger(),
	}
}

// Status returns the active session id, progress and settings
func (s *SimulationService) Status(ctx context.Context) Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		SessionID:    s.session.ID(),
		CurrentRound: s.session.CurrentRound(),
		ConfigLocked: s.session.CurrentRound() > 0,
		Config:       s.session.Config(),
		Profiles:     s.session.Profiles(),
	}
}

// Configure replaces the run configuration before the first round
func (s *SimulationService) Configure(ctx context.Context, cfg simulator.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.session.Configure(cfg); err != nil {
		return err
	}

	s.logger.Info().
		Int("agent_count", cfg.AgentCount).
		Str("starting_balance", cfg.StartingBalance.String()).
		Str("house_margin", cfg.HouseMargin.String()).
		Int("events_per_round", cfg.EventsPerRound).
		Msg("simulation configured")

	return nil
}

// UpdateProfile changes a profile's parameters starting with the next round
func (s *SimulationService) UpdateProfile(ctx context.Context, profile models.Profile, cfg models.ProfileConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.session.SetProfileConfig(profile, cfg)
}

// AdvanceRound runs one round. Cache and publish failures are logged and
// never fail the round.
func (s *SimulationService) AdvanceRound(ctx context.Context) (*models.RoundResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.advance(ctx)
}

// AdvanceRounds runs up to n rounds, stopping at the first failure.
// Rounds settled before the failure are returned alongside the error.
func (s *SimulationService) AdvanceRounds(ctx context.Context, n int) ([]*models.RoundResult, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRoundCount, n)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]*models.RoundResult, 0, n)
	for range n {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result, err := s.advance(ctx)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

// advance must be called with the write lock held
func (s *SimulationService) advance(ctx context.Context) (*models.RoundResult, error) {
	start := time.Now()
	result, err := s.session.AdvanceRound()
	if err != nil {
		metrics.ObserveRoundFailure(failureReason(err))
		s.logger.Error().
			Err(err).
			Str("session_id", s.session.ID().String()).
			Int("round", s.session.CurrentRound()+1).
			Msg("round aborted")
		return nil, fmt.Errorf("round %d aborted: %w", s.session.CurrentRound()+1, err)
	}
	metrics.ObserveRound(result, time.Since(start))

	if s.cache != nil {
		if err := s.cache.SetRound(ctx, result.SessionID, result.RoundRecord, result.Ledger); err != nil {
			s.logger.Warn().
				Err(err).
				Int("round", result.Round).
				Msg("failed to cache settled round")
			// Don't fail the round on cache errors
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishRound(ctx, result); err != nil {
			s.logger.Warn().
				Err(err).
				Int("round", result.Round).
				Msg("failed to publish settled round")
			// Don't fail the round on publish errors
		}
	}

	return result, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, simulator.ErrDegenerateProbabilities):
		return "degenerate_probabilities"
	case errors.Is(err, simulator.ErrPoissonExhausted):
		return "poisson_exhausted"
	case errors.Is(err, simulator.ErrInvalidConfig):
		return "invalid_config"
	default:
		return "other"
	}
}

// Reset starts a new session and drops the cached rounds of the old one
func (s *SimulationService) Reset(ctx context.Context) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.session.ID()
	s.session.Reset()
	metrics.ObserveReset()

	if s.cache != nil {
		if err := s.cache.Clear(ctx, previous); err != nil {
			s.logger.Warn().
				Err(err).
				Str("session_id", previous.String()).
				Msg("failed to clear session cache")
		}
	}

	return s.session.ID(), nil
}

// Agents returns the roster as of the last settled round
func (s *SimulationService) Agents(ctx context.Context) []models.Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.session.Agents()
}

// AgentWagers returns every wager an agent placed during the session
func (s *SimulationService) AgentWagers(ctx context.Context, agentID int) ([]models.Wager, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.session.AgentWagers(agentID)
}

// Round retrieves a settled round with cache-first strategy
func (s *SimulationService) Round(ctx context.Context, round int) (*models.RoundRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessionID := s.session.ID()
	if s.cache != nil {
		cached, err := s.cache.GetRound(ctx, sessionID, round)
		if err == nil && cached != nil {
			s.logger.Debug().
				Str("session_id", sessionID.String()).
				Int("round", round).
				Msg("cache hit for round")
			return cached, nil
		}
		s.logger.Debug().
			Err(err).
			Int("round", round).
			Msg("cache miss for round, reading session history")
	}

	record, err := s.session.Round(round)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Ledger returns the cumulative ledger. A cached ledger is used only when it
// is as recent as the session.
func (s *SimulationService) Ledger(ctx context.Context) models.CumulativeLedger {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cache != nil && s.session.CurrentRound() > 0 {
		cached, err := s.cache.GetLedger(ctx, s.session.ID())
		if err == nil && cached != nil && cached.Rounds == s.session.CurrentRound() {
			return *cached
		}
		s.logger.Debug().
			Err(err).
			Msg("cached ledger unavailable or stale, reading session")
	}

	return s.session.Ledger()
}
