package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/cypherlabdev/house-edge-simulator/internal/models"
)

// KafkaPublisher publishes settled rounds to Kafka
type KafkaPublisher struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

// KafkaPublisherConfig holds Kafka publisher configuration
type KafkaPublisherConfig struct {
	Brokers []string // e.g., ["localhost:9092"]
	Topic   string   // e.g., "simulation_rounds"
}

// NewKafkaPublisher creates a new Kafka publisher
func NewKafkaPublisher(config KafkaPublisherConfig, logger zerolog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic,
		Balancer:     &kafka.Hash{}, // rounds of one session stay ordered on one partition
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}

	return &KafkaPublisher{
		writer: writer,
		logger: logger.With().Str("component", "kafka_publisher").Logger(),
	}
}

// PublishRound publishes a settled round keyed by session id
func (p *KafkaPublisher) PublishRound(ctx context.Context, result *models.RoundResult) error {
	msg, err := roundMessage(result, time.Now().UTC())
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write round %d: %w", result.Round, err)
	}

	p.logger.Debug().
		Str("session_id", result.SessionID.String()).
		Int("round", result.Round).
		Int("bytes", len(msg.Value)).
		Msg("published settled round")

	return nil
}

// roundMessage builds the Kafka message for a settled round
func roundMessage(result *models.RoundResult, publishedAt time.Time) (kafka.Message, error) {
	payload := models.KafkaRoundMessage{
		SessionID:   result.SessionID,
		Round:       result.RoundRecord,
		Agents:      result.Agents,
		Ledger:      result.Ledger,
		PublishedAt: publishedAt,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal round: %w", err)
	}

	return kafka.Message{
		Key:   []byte(result.SessionID.String()),
		Value: data,
		Headers: []kafka.Header{
			{Key: "round", Value: []byte(strconv.Itoa(result.Round))},
		},
		Time: publishedAt,
	}, nil
}

// Close flushes pending messages and closes the Kafka writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
