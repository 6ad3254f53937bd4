package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/cypherlabdev/house-edge-simulator/internal/mocks"
	"github.com/cypherlabdev/house-edge-simulator/internal/models"
	"github.com/cypherlabdev/house-edge-simulator/internal/service"
	"github.com/cypherlabdev/house-edge-simulator/pkg/simulator"
)

// testKafkaConsumerSetup is a helper struct to hold test dependencies
type testKafkaConsumerSetup struct {
	consumer       *KafkaConsumer
	mockController *mocks.MockController
	ctx            context.Context
}

// setupTestKafkaConsumer creates a test consumer with a mocked controller
func setupTestKafkaConsumer(t *testing.T) *testKafkaConsumerSetup {
	ctrl := gomock.NewController(t)
	mockController := mocks.NewMockController(ctrl)

	consumer := NewKafkaConsumer(KafkaConsumerConfig{
		Brokers: []string{"localhost:9092"},
		Topic:   "simulation_commands",
		GroupID: "test-group",
	}, mockController, zerolog.Nop())
	t.Cleanup(func() { consumer.Close() })

	return &testKafkaConsumerSetup{
		consumer:       consumer,
		mockController: mockController,
		ctx:            context.Background(),
	}
}

func commandMessage(t *testing.T, cmd models.KafkaCommandMessage) kafka.Message {
	t.Helper()
	if cmd.ID == uuid.Nil {
		cmd.ID = uuid.New()
	}
	data, err := json.Marshal(cmd)
	require.NoError(t, err)
	return kafka.Message{Key: []byte(cmd.ID.String()), Value: data}
}

// TestNewKafkaConsumer tests consumer creation
func TestNewKafkaConsumer(t *testing.T) {
	setup := setupTestKafkaConsumer(t)

	assert.NotNil(t, setup.consumer.reader)
	assert.NotNil(t, setup.consumer.controller)
	assert.Equal(t, "simulation_commands", setup.consumer.reader.Config().Topic)
	assert.Equal(t, "test-group", setup.consumer.reader.Config().GroupID)
}

// TestProcessMessage_InvalidJSON tests processing with invalid JSON
func TestProcessMessage_InvalidJSON(t *testing.T) {
	setup := setupTestKafkaConsumer(t)

	err := setup.consumer.processMessage(setup.ctx, kafka.Message{Value: []byte("not json")})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal message")
}

// TestProcessMessage_UnknownCommand tests unrecognized command types are rejected
func TestProcessMessage_UnknownCommand(t *testing.T) {
	setup := setupTestKafkaConsumer(t)

	err := setup.consumer.processMessage(setup.ctx, commandMessage(t, models.KafkaCommandMessage{Type: "pause"}))

	assert.ErrorIs(t, err, ErrUnknownCommand)
}

// TestProcessMessage_Configure tests a partial config is merged onto the current one
func TestProcessMessage_Configure(t *testing.T) {
	setup := setupTestKafkaConsumer(t)

	current := simulator.DefaultConfig()
	setup.mockController.EXPECT().Status(gomock.Any()).Return(service.Status{Config: current})
	setup.mockController.EXPECT().
		Configure(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cfg simulator.Config) error {
			assert.Equal(t, 250, cfg.AgentCount)
			assert.True(t, cfg.HouseMargin.Equal(decimal.RequireFromString("0.08")))
			assert.True(t, cfg.StartingBalance.Equal(current.StartingBalance))
			assert.Equal(t, current.EventsPerRound, cfg.EventsPerRound)
			return nil
		})

	err := setup.consumer.processMessage(setup.ctx, commandMessage(t, models.KafkaCommandMessage{
		Type:   models.CommandConfigure,
		Config: json.RawMessage(`{"agent_count": 250, "house_margin": "0.08"}`),
	}))

	assert.NoError(t, err)
}

// TestProcessMessage_ConfigureMissingConfig tests configure without a payload
func TestProcessMessage_ConfigureMissingConfig(t *testing.T) {
	setup := setupTestKafkaConsumer(t)

	err := setup.consumer.processMessage(setup.ctx, commandMessage(t, models.KafkaCommandMessage{Type: models.CommandConfigure}))

	assert.ErrorIs(t, err, ErrMalformedCommand)
}

// TestProcessMessage_ConfigureLocked tests controller rejections are surfaced
func TestProcessMessage_ConfigureLocked(t *testing.T) {
	setup := setupTestKafkaConsumer(t)

	setup.mockController.EXPECT().Status(gomock.Any()).Return(service.Status{Config: simulator.DefaultConfig()})
	setup.mockController.EXPECT().Configure(gomock.Any(), gomock.Any()).Return(simulator.ErrConfigLocked)

	err := setup.consumer.processMessage(setup.ctx, commandMessage(t, models.KafkaCommandMessage{
		Type:   models.CommandConfigure,
		Config: json.RawMessage(`{"agent_count": 5}`),
	}))

	assert.ErrorIs(t, err, simulator.ErrConfigLocked)
}

// TestProcessMessage_UpdateProfile tests profile updates are forwarded
func TestProcessMessage_UpdateProfile(t *testing.T) {
	setup := setupTestKafkaConsumer(t)

	params := models.ProfileConfig{ParticipationProbability: 0.4, WagerRate: 2}
	setup.mockController.EXPECT().UpdateProfile(gomock.Any(), models.ProfileAggressive, params).Return(nil)

	data := []byte(`{"id":"` + uuid.NewString() + `","type":"update_profile","profile":"aggressive","params":{"participation_probability":0.4,"wager_rate":2}}`)
	err := setup.consumer.processMessage(setup.ctx, kafka.Message{Value: data})

	assert.NoError(t, err)
}

// TestProcessMessage_UpdateProfileIncomplete tests update_profile needs both fields
func TestProcessMessage_UpdateProfileIncomplete(t *testing.T) {
	setup := setupTestKafkaConsumer(t)

	profile := models.ProfileModerate
	err := setup.consumer.processMessage(setup.ctx, commandMessage(t, models.KafkaCommandMessage{
		Type:    models.CommandUpdateProfile,
		Profile: &profile,
	}))

	assert.ErrorIs(t, err, ErrMalformedCommand)
}

// TestProcessMessage_UnknownProfile tests an unparseable profile name fails decoding
func TestProcessMessage_UnknownProfile(t *testing.T) {
	setup := setupTestKafkaConsumer(t)

	data := []byte(`{"type":"update_profile","profile":"reckless","params":{"participation_probability":0.4,"wager_rate":2}}`)
	err := setup.consumer.processMessage(setup.ctx, kafka.Message{Value: data})

	assert.ErrorIs(t, err, models.ErrInvalidProfile)
}

// TestProcessMessage_AdvanceRound tests the round count defaults to one
func TestProcessMessage_AdvanceRound(t *testing.T) {
	tests := []struct {
		name   string
		rounds int
		want   int
	}{
		{name: "default count", rounds: 0, want: 1},
		{name: "explicit count", rounds: 4, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup := setupTestKafkaConsumer(t)

			results := make([]*models.RoundResult, tt.want)
			for i := range results {
				results[i] = &models.RoundResult{RoundRecord: models.RoundRecord{Round: i + 1}}
			}
			setup.mockController.EXPECT().AdvanceRounds(gomock.Any(), tt.want).Return(results, nil)

			err := setup.consumer.processMessage(setup.ctx, commandMessage(t, models.KafkaCommandMessage{
				Type:   models.CommandAdvanceRound,
				Rounds: tt.rounds,
			}))

			assert.NoError(t, err)
		})
	}
}

// TestProcessMessage_AdvanceRoundAborted tests aborted rounds fail the message
func TestProcessMessage_AdvanceRoundAborted(t *testing.T) {
	setup := setupTestKafkaConsumer(t)

	setup.mockController.EXPECT().
		AdvanceRounds(gomock.Any(), 1).
		Return(nil, simulator.ErrDegenerateProbabilities)

	err := setup.consumer.processMessage(setup.ctx, commandMessage(t, models.KafkaCommandMessage{Type: models.CommandAdvanceRound}))

	assert.ErrorIs(t, err, simulator.ErrDegenerateProbabilities)
}

// TestProcessMessage_Reset tests reset is forwarded
func TestProcessMessage_Reset(t *testing.T) {
	setup := setupTestKafkaConsumer(t)

	setup.mockController.EXPECT().Reset(gomock.Any()).Return(uuid.New(), nil)

	err := setup.consumer.processMessage(setup.ctx, commandMessage(t, models.KafkaCommandMessage{Type: models.CommandReset}))

	assert.NoError(t, err)
}

// TestProcessMessage_ResetFailure tests reset errors fail the message
func TestProcessMessage_ResetFailure(t *testing.T) {
	setup := setupTestKafkaConsumer(t)

	setup.mockController.EXPECT().Reset(gomock.Any()).Return(uuid.Nil, errors.New("boom"))

	err := setup.consumer.processMessage(setup.ctx, commandMessage(t, models.KafkaCommandMessage{Type: models.CommandReset}))

	assert.Error(t, err)
}

// TestKafkaConsumerConfig tests different configurations
func TestKafkaConsumerConfig(t *testing.T) {
	tests := []struct {
		name   string
		config KafkaConsumerConfig
	}{
		{
			name: "Single broker",
			config: KafkaConsumerConfig{
				Brokers: []string{"localhost:9092"},
				Topic:   "test-topic",
				GroupID: "test-group",
			},
		},
		{
			name: "Multiple brokers",
			config: KafkaConsumerConfig{
				Brokers: []string{"broker1:9092", "broker2:9092", "broker3:9092"},
				Topic:   "test-topic",
				GroupID: "test-group",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			consumer := NewKafkaConsumer(tt.config, mocks.NewMockController(ctrl), zerolog.Nop())

			assert.Equal(t, tt.config.Topic, consumer.reader.Config().Topic)
			assert.Equal(t, tt.config.GroupID, consumer.reader.Config().GroupID)
			assert.Equal(t, tt.config.Brokers, consumer.reader.Config().Brokers)

			assert.NoError(t, consumer.Close())
		})
	}
}

// TestKafkaConsumer_ContextCancellation tests context cancellation handling
func TestKafkaConsumer_ContextCancellation(t *testing.T) {
	setup := setupTestKafkaConsumer(t)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error)
	go func() {
		done <- setup.consumer.Start(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		// Consumer should stop without error on context cancellation
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Consumer did not stop within timeout")
	}
}
