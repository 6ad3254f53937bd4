package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidProfile is returned for unknown profile tags and out-of-range profile parameters
var ErrInvalidProfile = errors.New("invalid profile")

// Profile is the risk-profile tag shared by a cohort of agents
type Profile int

const (
	ProfileConservative Profile = iota
	ProfileModerate
	ProfileAggressive

	// ProfileCount is the number of known profiles; keep it last
	ProfileCount
)

var profileNames = [ProfileCount]string{
	ProfileConservative: "conservative",
	ProfileModerate:     "moderate",
	ProfileAggressive:   "aggressive",
}

// Profiles returns every profile in round-robin assignment order
func Profiles() []Profile {
	profiles := make([]Profile, 0, ProfileCount)
	for p := Profile(0); p < ProfileCount; p++ {
		profiles = append(profiles, p)
	}
	return profiles
}

// ParseProfile converts a tag such as "moderate" into a Profile (case-insensitive)
func ParseProfile(s string) (Profile, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for p, name := range profileNames {
		if name == needle {
			return Profile(p), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown profile %q", ErrInvalidProfile, s)
}

func (p Profile) String() string {
	if !p.Valid() {
		return fmt.Sprintf("profile(%d)", int(p))
	}
	return profileNames[p]
}

// Valid reports whether p is one of the known profiles
func (p Profile) Valid() bool {
	return p >= 0 && p < ProfileCount
}

// MarshalText encodes the profile as its tag
func (p Profile) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidProfile, int(p))
	}
	return []byte(profileNames[p]), nil
}

// UnmarshalText decodes a profile tag
func (p *Profile) UnmarshalText(text []byte) error {
	parsed, err := ParseProfile(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ByProfile is a fixed-size table indexed by Profile.
// It encodes to JSON as an object keyed by profile tag.
type ByProfile[T any] [ProfileCount]T

// MarshalJSON encodes the table as {"conservative": ..., "moderate": ..., "aggressive": ...}
func (b ByProfile[T]) MarshalJSON() ([]byte, error) {
	m := make(map[Profile]T, ProfileCount)
	for p := range b {
		m[Profile(p)] = b[p]
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes an object keyed by profile tag; missing profiles keep their zero value
func (b *ByProfile[T]) UnmarshalJSON(data []byte) error {
	var m map[Profile]T
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	var out ByProfile[T]
	for p, v := range m {
		out[p] = v
	}
	*b = out
	return nil
}

// ProfileConfig holds the behavioural parameters shared by every agent of a profile
type ProfileConfig struct {
	ParticipationProbability float64 `json:"participation_probability"` // chance of wagering in a round, (0,1]
	WagerRate                float64 `json:"wager_rate"`                // Poisson λ for the desired wager count, > 0
}

// Validate checks the parameters guarantee a terminating decision process
func (c ProfileConfig) Validate() error {
	// written so NaN fails both checks
	if !(c.ParticipationProbability > 0 && c.ParticipationProbability <= 1) {
		return fmt.Errorf("%w: participation probability %v outside (0,1]", ErrInvalidProfile, c.ParticipationProbability)
	}
	if !(c.WagerRate > 0) || math.IsInf(c.WagerRate, 0) {
		return fmt.Errorf("%w: wager rate %v must be positive and finite", ErrInvalidProfile, c.WagerRate)
	}
	return nil
}

// DefaultProfileConfigs returns the stock cohort parameters
func DefaultProfileConfigs() ByProfile[ProfileConfig] {
	return ByProfile[ProfileConfig]{
		ProfileConservative: {ParticipationProbability: 0.60, WagerRate: 1.5},
		ProfileModerate:     {ParticipationProbability: 0.80, WagerRate: 2.5},
		ProfileAggressive:   {ParticipationProbability: 0.95, WagerRate: 3.5},
	}
}
