package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CommandType names an operation requested over the command topic
type CommandType string

const (
	CommandConfigure     CommandType = "configure"
	CommandUpdateProfile CommandType = "update_profile"
	CommandAdvanceRound  CommandType = "advance_round"
	CommandReset         CommandType = "reset"
)

// KafkaCommandMessage is a simulation command consumed from Kafka
type KafkaCommandMessage struct {
	ID       uuid.UUID       `json:"id"`
	Type     CommandType     `json:"type"`
	Config   json.RawMessage `json:"config,omitempty"`  // configure: fields to override, the rest are kept
	Profile  *Profile        `json:"profile,omitempty"` // update_profile
	Params   *ProfileConfig  `json:"params,omitempty"`  // update_profile
	Rounds   int             `json:"rounds,omitempty"`  // advance_round, 0 means 1
	IssuedAt time.Time       `json:"issued_at"`
}

// KafkaRoundMessage is published for every settled round
type KafkaRoundMessage struct {
	SessionID   uuid.UUID        `json:"session_id"`
	Round       RoundRecord      `json:"round"`
	Agents      []Agent          `json:"agents"`
	Ledger      CumulativeLedger `json:"ledger"`
	PublishedAt time.Time        `json:"published_at"`
}
