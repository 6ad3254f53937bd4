package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/cypherlabdev/house-edge-simulator/internal/models"
	"github.com/cypherlabdev/house-edge-simulator/pkg/simulator"
)

// Config holds all configuration for the house-edge simulator
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Profiles   ProfilesConfig   `mapstructure:"profiles"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	Brokers      []string `mapstructure:"brokers"`
	CommandTopic string   `mapstructure:"command_topic"` // Topic to consume simulation commands from
	ResultTopic  string   `mapstructure:"result_topic"`  // Topic settled rounds are published to
	GroupID      string   `mapstructure:"group_id"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// SimulationConfig holds the run parameters accepted before round 1
type SimulationConfig struct {
	AgentCount      int     `mapstructure:"agent_count"`
	StartingBalance float64 `mapstructure:"starting_balance"`
	HouseMargin     float64 `mapstructure:"house_margin"` // 0.05 = 5%
	EventsPerRound  int     `mapstructure:"events_per_round"`
	MinimumStake    float64 `mapstructure:"minimum_stake"`
	StakeFraction   float64 `mapstructure:"stake_fraction"`
	MaxPoissonDraws int     `mapstructure:"max_poisson_draws"`
	Seed            uint64  `mapstructure:"seed"` // 0 = seed from the clock
}

// ProfileParams holds the parameters of one bettor profile
type ProfileParams struct {
	ParticipationProbability float64 `mapstructure:"participation_probability"`
	WagerRate                float64 `mapstructure:"wager_rate"`
}

// ProfilesConfig holds per-profile parameters
type ProfilesConfig struct {
	Conservative ProfileParams `mapstructure:"conservative"`
	Moderate     ProfileParams `mapstructure:"moderate"`
	Aggressive   ProfileParams `mapstructure:"aggressive"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 8081)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.command_topic", "simulation_commands")
	v.SetDefault("kafka.result_topic", "simulation_rounds")
	v.SetDefault("kafka.group_id", "house-edge-simulator")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 6*time.Hour)

	v.SetDefault("simulation.agent_count", 100)
	v.SetDefault("simulation.starting_balance", 100.0)
	v.SetDefault("simulation.house_margin", 0.05)
	v.SetDefault("simulation.events_per_round", simulator.DefaultEventsPerRound)
	v.SetDefault("simulation.minimum_stake", 5.0)
	v.SetDefault("simulation.stake_fraction", 0.10)
	v.SetDefault("simulation.max_poisson_draws", simulator.DefaultMaxPoissonDraws)
	v.SetDefault("simulation.seed", 0)

	defaults := models.DefaultProfileConfigs()
	for _, p := range models.Profiles() {
		v.SetDefault("profiles."+p.String()+".participation_probability", defaults[p].ParticipationProbability)
		v.SetDefault("profiles."+p.String()+".wager_rate", defaults[p].WagerRate)
	}

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Override with environment variables
	v.SetEnvPrefix("HOUSE_EDGE_SIM")
	v.AutomaticEnv()
	// Replace . with _ for environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Unmarshal to struct
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// ToSimulatorConfig converts the simulation section into a validated engine config
func (c *SimulationConfig) ToSimulatorConfig() (simulator.Config, error) {
	// decimal.NewFromFloat panics on NaN and Inf
	for name, v := range map[string]float64{
		"starting_balance": c.StartingBalance,
		"house_margin":     c.HouseMargin,
		"minimum_stake":    c.MinimumStake,
		"stake_fraction":   c.StakeFraction,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return simulator.Config{}, fmt.Errorf("%w: %s must be finite, got %v", simulator.ErrInvalidConfig, name, v)
		}
	}

	cfg := simulator.Config{
		AgentCount:      c.AgentCount,
		StartingBalance: decimal.NewFromFloat(c.StartingBalance).Round(simulator.MoneyScale),
		HouseMargin:     decimal.NewFromFloat(c.HouseMargin),
		EventsPerRound:  c.EventsPerRound,
		MinimumStake:    decimal.NewFromFloat(c.MinimumStake).Round(simulator.MoneyScale),
		StakeFraction:   decimal.NewFromFloat(c.StakeFraction),
		MaxPoissonDraws: c.MaxPoissonDraws,
	}
	if err := cfg.Validate(); err != nil {
		return simulator.Config{}, err
	}
	return cfg, nil
}

// ToProfileConfigs converts the profiles section into the engine's profile table
func (c *ProfilesConfig) ToProfileConfigs() (models.ByProfile[models.ProfileConfig], error) {
	var out models.ByProfile[models.ProfileConfig]
	out[models.ProfileConservative] = models.ProfileConfig(c.Conservative)
	out[models.ProfileModerate] = models.ProfileConfig(c.Moderate)
	out[models.ProfileAggressive] = models.ProfileConfig(c.Aggressive)

	for p, pc := range out {
		if err := pc.Validate(); err != nil {
			return out, fmt.Errorf("profile %s: %w", models.Profile(p), err)
		}
	}
	return out, nil
}
