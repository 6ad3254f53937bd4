package service

import (
	"context"

	"github.com/cypherlabdev/house-edge-simulator/internal/models"
)

// Publisher announces settled rounds to downstream consumers
type Publisher interface {
	PublishRound(ctx context.Context, result *models.RoundResult) error
	Close() error
}
