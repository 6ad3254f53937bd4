package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/cypherlabdev/house-edge-simulator/internal/metrics"
	"github.com/cypherlabdev/house-edge-simulator/internal/models"
	"github.com/cypherlabdev/house-edge-simulator/internal/service"
)

var (
	// ErrUnknownCommand is returned for command types the consumer does not handle
	ErrUnknownCommand = errors.New("unknown command type")

	// ErrMalformedCommand is returned when a command lacks the fields its type requires
	ErrMalformedCommand = errors.New("malformed command")
)

// KafkaConsumer consumes simulation commands from Kafka and applies them to the controller
type KafkaConsumer struct {
	reader     *kafka.Reader
	controller service.Controller
	logger     zerolog.Logger
}

// KafkaConsumerConfig holds Kafka consumer configuration
type KafkaConsumerConfig struct {
	Brokers []string // e.g., ["localhost:9092"]
	Topic   string   // e.g., "simulation_commands"
	GroupID string   // e.g., "house-edge-simulator"
}

// NewKafkaConsumer creates a new Kafka consumer
func NewKafkaConsumer(
	config KafkaConsumerConfig,
	controller service.Controller,
	logger zerolog.Logger,
) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        config.Brokers,
		Topic:          config.Topic,
		GroupID:        config.GroupID,
		MinBytes:       1,    // commands are small and latency matters
		MaxBytes:       10e6, // 10MB
		CommitInterval: 1000, // Commit every 1 second
	})

	return &KafkaConsumer{
		reader:     reader,
		controller: controller,
		logger:     logger.With().Str("component", "kafka_consumer").Logger(),
	}
}

// Start begins consuming messages from Kafka
func (c *KafkaConsumer) Start(ctx context.Context) error {
	c.logger.Info().
		Str("topic", c.reader.Config().Topic).
		Str("group_id", c.reader.Config().GroupID).
		Msg("started consuming from Kafka")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("stopping Kafka consumer")
			return c.reader.Close()

		default:
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				c.logger.Error().Err(err).Msg("failed to fetch message")
				continue
			}

			if err := c.processMessage(ctx, msg); err != nil {
				c.logger.Error().
					Err(err).
					Int64("offset", msg.Offset).
					Str("key", string(msg.Key)).
					Msg("failed to process message")
				// Don't commit if processing failed
				continue
			}

			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				c.logger.Error().Err(err).Msg("failed to commit message")
			}
		}
	}
}

// processMessage decodes a single command and applies it
func (c *KafkaConsumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var cmd models.KafkaCommandMessage
	if err := json.Unmarshal(msg.Value, &cmd); err != nil {
		metrics.CommandsTotal.WithLabelValues("invalid", "error").Inc()
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}

	c.logger.Debug().
		Str("command_id", cmd.ID.String()).
		Str("type", string(cmd.Type)).
		Msg("processing simulation command")

	if err := c.apply(ctx, cmd); err != nil {
		metrics.CommandsTotal.WithLabelValues(string(cmd.Type), "error").Inc()
		return fmt.Errorf("command %s (%s): %w", cmd.ID, cmd.Type, err)
	}
	metrics.CommandsTotal.WithLabelValues(string(cmd.Type), "ok").Inc()

	return nil
}

func (c *KafkaConsumer) apply(ctx context.Context, cmd models.KafkaCommandMessage) error {
	switch cmd.Type {
	case models.CommandConfigure:
		if len(cmd.Config) == 0 {
			return fmt.Errorf("%w: configure requires config", ErrMalformedCommand)
		}
		// Fields absent from the payload keep their current values
		cfg := c.controller.Status(ctx).Config
		if err := json.Unmarshal(cmd.Config, &cfg); err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedCommand, err)
		}
		return c.controller.Configure(ctx, cfg)

	case models.CommandUpdateProfile:
		if cmd.Profile == nil || cmd.Params == nil {
			return fmt.Errorf("%w: update_profile requires profile and params", ErrMalformedCommand)
		}
		return c.controller.UpdateProfile(ctx, *cmd.Profile, *cmd.Params)

	case models.CommandAdvanceRound:
		rounds := cmd.Rounds
		if rounds == 0 {
			rounds = 1
		}
		results, err := c.controller.AdvanceRounds(ctx, rounds)
		if err != nil {
			return err
		}
		c.logger.Info().
			Str("command_id", cmd.ID.String()).
			Int("rounds", len(results)).
			Int("last_round", results[len(results)-1].Round).
			Msg("advanced simulation")
		return nil

	case models.CommandReset:
		sessionID, err := c.controller.Reset(ctx)
		if err != nil {
			return err
		}
		c.logger.Info().
			Str("command_id", cmd.ID.String()).
			Str("session_id", sessionID.String()).
			Msg("simulation reset")
		return nil

	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
	}
}

// Close closes the Kafka reader
func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
