package config

import (
	"math"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabdev/house-edge-simulator/internal/models"
	"github.com/cypherlabdev/house-edge-simulator/pkg/simulator"
)

// writeTempConfig writes YAML content to a temporary file and returns its path
func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	require.NoError(t, err)
	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpFile.Close())
	return tmpFile.Name()
}

// TestLoadConfig_Defaults tests loading configuration with default values
func TestLoadConfig_Defaults(t *testing.T) {
	config, err := LoadConfig("")

	require.NoError(t, err)
	require.NotNil(t, config)

	// Verify server defaults
	assert.Equal(t, 8081, config.Server.Port)
	assert.Equal(t, 30*time.Second, config.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, config.Server.WriteTimeout)

	// Verify Kafka defaults
	assert.False(t, config.Kafka.Enabled)
	assert.Equal(t, []string{"localhost:9092"}, config.Kafka.Brokers)
	assert.Equal(t, "simulation_commands", config.Kafka.CommandTopic)
	assert.Equal(t, "simulation_rounds", config.Kafka.ResultTopic)
	assert.Equal(t, "house-edge-simulator", config.Kafka.GroupID)

	// Verify Redis defaults
	assert.Equal(t, "localhost:6379", config.Redis.Addr)
	assert.Equal(t, "", config.Redis.Password)
	assert.Equal(t, 0, config.Redis.DB)
	assert.Equal(t, 6*time.Hour, config.Redis.TTL)

	// Verify simulation defaults
	assert.Equal(t, 100, config.Simulation.AgentCount)
	assert.Equal(t, 100.0, config.Simulation.StartingBalance)
	assert.Equal(t, 0.05, config.Simulation.HouseMargin)
	assert.Equal(t, 10, config.Simulation.EventsPerRound)
	assert.Equal(t, 5.0, config.Simulation.MinimumStake)
	assert.Equal(t, 0.10, config.Simulation.StakeFraction)
	assert.Equal(t, 1000, config.Simulation.MaxPoissonDraws)
	assert.Equal(t, uint64(0), config.Simulation.Seed)

	// Verify profile defaults
	assert.Equal(t, 0.6, config.Profiles.Conservative.ParticipationProbability)
	assert.Equal(t, 1.5, config.Profiles.Conservative.WagerRate)
	assert.Equal(t, 0.8, config.Profiles.Moderate.ParticipationProbability)
	assert.Equal(t, 2.5, config.Profiles.Moderate.WagerRate)
	assert.Equal(t, 0.95, config.Profiles.Aggressive.ParticipationProbability)
	assert.Equal(t, 3.5, config.Profiles.Aggressive.WagerRate)

	// Verify logging defaults
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "json", config.Logging.Format)
}

// TestLoadConfig_WithFile tests loading configuration from file
func TestLoadConfig_WithFile(t *testing.T) {
	path := writeTempConfig(t, `
server:
  port: 9090
  read_timeout: 45s
  write_timeout: 45s

kafka:
  enabled: true
  brokers:
    - broker1:9092
    - broker2:9092
  command_topic: commands
  result_topic: rounds
  group_id: test_group

redis:
  addr: redis:6379
  password: test_password
  db: 1
  ttl: 30m

simulation:
  agent_count: 250
  starting_balance: 500
  house_margin: 0.12
  events_per_round: 6
  minimum_stake: 2.5
  stake_fraction: 0.2
  max_poisson_draws: 50
  seed: 42

profiles:
  moderate:
    participation_probability: 0.5
    wager_rate: 4

logging:
  level: debug
  format: console
`)

	config, err := LoadConfig(path)

	require.NoError(t, err)
	require.NotNil(t, config)

	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, 45*time.Second, config.Server.ReadTimeout)

	assert.True(t, config.Kafka.Enabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, config.Kafka.Brokers)
	assert.Equal(t, "commands", config.Kafka.CommandTopic)
	assert.Equal(t, "rounds", config.Kafka.ResultTopic)

	assert.Equal(t, "redis:6379", config.Redis.Addr)
	assert.Equal(t, "test_password", config.Redis.Password)
	assert.Equal(t, 1, config.Redis.DB)
	assert.Equal(t, 30*time.Minute, config.Redis.TTL)

	assert.Equal(t, 250, config.Simulation.AgentCount)
	assert.Equal(t, 500.0, config.Simulation.StartingBalance)
	assert.Equal(t, 0.12, config.Simulation.HouseMargin)
	assert.Equal(t, 6, config.Simulation.EventsPerRound)
	assert.Equal(t, 2.5, config.Simulation.MinimumStake)
	assert.Equal(t, 0.2, config.Simulation.StakeFraction)
	assert.Equal(t, 50, config.Simulation.MaxPoissonDraws)
	assert.Equal(t, uint64(42), config.Simulation.Seed)

	// untouched profiles keep their defaults
	assert.Equal(t, 0.5, config.Profiles.Moderate.ParticipationProbability)
	assert.Equal(t, 4.0, config.Profiles.Moderate.WagerRate)
	assert.Equal(t, 0.6, config.Profiles.Conservative.ParticipationProbability)

	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, "console", config.Logging.Format)
}

// TestLoadConfig_InvalidFile tests loading with non-existent file
func TestLoadConfig_InvalidFile(t *testing.T) {
	config, err := LoadConfig("/nonexistent/config.yaml")

	assert.Error(t, err)
	assert.Nil(t, config)
}

// TestLoadConfig_MalformedFile tests loading with values of the wrong type
func TestLoadConfig_MalformedFile(t *testing.T) {
	path := writeTempConfig(t, `
server:
  port: invalid_port
  read_timeout: not_a_duration
`)

	config, err := LoadConfig(path)

	assert.Error(t, err)
	assert.Nil(t, config)
}

// TestLoadConfig_EnvironmentOverride tests environment variables win over defaults
func TestLoadConfig_EnvironmentOverride(t *testing.T) {
	t.Setenv("HOUSE_EDGE_SIM_SIMULATION_AGENT_COUNT", "12")
	t.Setenv("HOUSE_EDGE_SIM_SIMULATION_HOUSE_MARGIN", "0.1")
	t.Setenv("HOUSE_EDGE_SIM_LOGGING_LEVEL", "warn")

	config, err := LoadConfig("")

	require.NoError(t, err)
	assert.Equal(t, 12, config.Simulation.AgentCount)
	assert.Equal(t, 0.1, config.Simulation.HouseMargin)
	assert.Equal(t, "warn", config.Logging.Level)
}

// TestLoadConfig_NonFiniteEnvironment tests that NaN overrides are rejected instead of reaching the engine
func TestLoadConfig_NonFiniteEnvironment(t *testing.T) {
	t.Setenv("HOUSE_EDGE_SIM_SIMULATION_HOUSE_MARGIN", "NaN")
	t.Setenv("HOUSE_EDGE_SIM_PROFILES_MODERATE_WAGER_RATE", "NaN")

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		_, err = config.Simulation.ToSimulatorConfig()
	})
	assert.ErrorIs(t, err, simulator.ErrInvalidConfig)

	_, err = config.Profiles.ToProfileConfigs()
	assert.ErrorIs(t, err, models.ErrInvalidProfile)
}

// TestToSimulatorConfig tests conversion to the engine configuration
func TestToSimulatorConfig(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)

	cfg, err := config.Simulation.ToSimulatorConfig()

	require.NoError(t, err)
	assert.Equal(t, 100, cfg.AgentCount)
	assert.True(t, cfg.StartingBalance.Equal(decimal.NewFromInt(100)))
	assert.True(t, cfg.HouseMargin.Equal(decimal.RequireFromString("0.05")))
	assert.True(t, cfg.MinimumStake.Equal(decimal.NewFromInt(5)))
	assert.True(t, cfg.StakeFraction.Equal(decimal.RequireFromString("0.1")))
	assert.Equal(t, simulator.DefaultEventsPerRound, cfg.EventsPerRound)
}

// TestToSimulatorConfig_Invalid tests rejected run parameters
func TestToSimulatorConfig_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SimulationConfig)
	}{
		{name: "no agents", mutate: func(c *SimulationConfig) { c.AgentCount = 0 }},
		{name: "negative balance", mutate: func(c *SimulationConfig) { c.StartingBalance = -10 }},
		{name: "margin of one", mutate: func(c *SimulationConfig) { c.HouseMargin = 1 }},
		{name: "nan margin", mutate: func(c *SimulationConfig) { c.HouseMargin = math.NaN() }},
		{name: "infinite balance", mutate: func(c *SimulationConfig) { c.StartingBalance = math.Inf(1) }},
		{name: "nan stake fraction", mutate: func(c *SimulationConfig) { c.StakeFraction = math.NaN() }},
		{name: "negative infinite minimum stake", mutate: func(c *SimulationConfig) { c.MinimumStake = math.Inf(-1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfig("")
			require.NoError(t, err)
			tt.mutate(&config.Simulation)

			_, err = config.Simulation.ToSimulatorConfig()

			assert.ErrorIs(t, err, simulator.ErrInvalidConfig)
		})
	}
}

// TestToProfileConfigs tests conversion and validation of profile parameters
func TestToProfileConfigs(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)

	profiles, err := config.Profiles.ToProfileConfigs()
	require.NoError(t, err)
	assert.Equal(t, models.DefaultProfileConfigs(), profiles)

	config.Profiles.Aggressive.WagerRate = 0
	_, err = config.Profiles.ToProfileConfigs()
	assert.ErrorIs(t, err, models.ErrInvalidProfile)
}
