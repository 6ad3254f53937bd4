package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/house-edge-simulator/internal/models"
)

// ErrNotFound is returned when a key is missing or has expired
var ErrNotFound = errors.New("not found in cache")

// RedisCache caches settled rounds and the running ledger of a session in Redis
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// RedisCacheConfig holds Redis cache configuration
type RedisCacheConfig struct {
	Addr     string // e.g., "localhost:6379"
	Password string
	DB       int
	TTL      time.Duration // e.g., 6 * time.Hour
}

// NewRedisCache creates a new Redis cache
func NewRedisCache(config RedisCacheConfig, logger zerolog.Logger) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	return &RedisCache{
		client: client,
		ttl:    config.TTL,
		logger: logger.With().Str("component", "redis_cache").Logger(),
	}
}

// Key layout: sim:{session_id}:round:{n} and sim:{session_id}:ledger
func roundKey(sessionID uuid.UUID, round int) string {
	return fmt.Sprintf("sim:%s:round:%d", sessionID, round)
}

func ledgerKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("sim:%s:ledger", sessionID)
}

func sessionPattern(sessionID uuid.UUID) string {
	return fmt.Sprintf("sim:%s:*", sessionID)
}

// SetRound caches a settled round together with the ledger it produced
func (c *RedisCache) SetRound(ctx context.Context, sessionID uuid.UUID, record models.RoundRecord, ledger models.CumulativeLedger) error {
	recordData, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal round: %w", err)
	}
	ledgerData, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger: %w", err)
	}

	// Both keys are written in one round trip so readers never see a
	// ledger ahead of its round
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, roundKey(sessionID, record.Round), recordData, c.ttl)
	pipe.Set(ctx, ledgerKey(sessionID), ledgerData, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set in Redis: %w", err)
	}

	c.logger.Debug().
		Str("session_id", sessionID.String()).
		Int("round", record.Round).
		Dur("ttl", c.ttl).
		Msg("cached settled round")

	return nil
}

// GetRound retrieves a cached round
func (c *RedisCache) GetRound(ctx context.Context, sessionID uuid.UUID, round int) (*models.RoundRecord, error) {
	var record models.RoundRecord
	if err := c.get(ctx, roundKey(sessionID, round), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// GetLedger retrieves the cached cumulative ledger
func (c *RedisCache) GetLedger(ctx context.Context, sessionID uuid.UUID) (*models.CumulativeLedger, error) {
	var ledger models.CumulativeLedger
	if err := c.get(ctx, ledgerKey(sessionID), &ledger); err != nil {
		return nil, err
	}
	return &ledger, nil
}

func (c *RedisCache) get(ctx context.Context, key string, dst any) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	} else if err != nil {
		return fmt.Errorf("failed to get from Redis: %w", err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

// Clear removes every key of a session
func (c *RedisCache) Clear(ctx context.Context, sessionID uuid.UUID) error {
	var cursor uint64
	var keys []string

	for {
		var scanKeys []string
		var err error
		scanKeys, cursor, err = c.client.Scan(ctx, cursor, sessionPattern(sessionID), 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan keys: %w", err)
		}

		keys = append(keys, scanKeys...)

		if cursor == 0 {
			break
		}
	}

	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete keys: %w", err)
	}

	c.logger.Info().
		Str("session_id", sessionID.String()).
		Int("count", len(keys)).
		Msg("cleared session cache")

	return nil
}

// Ping checks Redis connection
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
