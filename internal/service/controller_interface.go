package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/cypherlabdev/house-edge-simulator/internal/models"
	"github.com/cypherlabdev/house-edge-simulator/pkg/simulator"
)

// Status describes the active session
type Status struct {
	SessionID    uuid.UUID                              `json:"session_id"`
	CurrentRound int                                    `json:"current_round"`
	ConfigLocked bool                                   `json:"config_locked"`
	Config       simulator.Config                       `json:"config"`
	Profiles     models.ByProfile[models.ProfileConfig] `json:"profiles"`
}

// Controller drives and inspects the simulation.
// The HTTP handler and the Kafka command consumer depend on it.
type Controller interface {
	Status(ctx context.Context) Status
	Configure(ctx context.Context, cfg simulator.Config) error
	UpdateProfile(ctx context.Context, profile models.Profile, cfg models.ProfileConfig) error
	AdvanceRound(ctx context.Context) (*models.RoundResult, error)
	AdvanceRounds(ctx context.Context, n int) ([]*models.RoundResult, error)
	Reset(ctx context.Context) (uuid.UUID, error)
	Agents(ctx context.Context) []models.Agent
	AgentWagers(ctx context.Context, agentID int) ([]models.Wager, error)
	Round(ctx context.Context, round int) (*models.RoundRecord, error)
	Ledger(ctx context.Context) models.CumulativeLedger
}
