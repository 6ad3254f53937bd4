package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/cypherlabdev/house-edge-simulator/internal/models"
)

// Cache is an interface that abstracts round cache operations
// This allows for easier testing and mocking
type Cache interface {
	SetRound(ctx context.Context, sessionID uuid.UUID, record models.RoundRecord, ledger models.CumulativeLedger) error
	GetRound(ctx context.Context, sessionID uuid.UUID, round int) (*models.RoundRecord, error)
	GetLedger(ctx context.Context, sessionID uuid.UUID) (*models.CumulativeLedger, error)
	Clear(ctx context.Context, sessionID uuid.UUID) error
	Ping(ctx context.Context) error
	Close() error
}
