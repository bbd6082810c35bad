// Package config provides pipeline configuration and candidate profile
// loading. A Config is loaded once per invocation, validated, and passed
// into the pipeline as an immutable value; engines never read policy from
// process-wide state.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/job-radar/internal/schemas"
	"github.com/jonathan/job-radar/internal/scoring"
	"github.com/jonathan/job-radar/internal/types"
)

// Config is the per-invocation pipeline policy.
type Config struct {
	// MaxNormalizationErrorRate is the rejected-record ceiling (fraction
	// of input) above which the normalizer fails closed.
	MaxNormalizationErrorRate float64 `json:"max_normalization_error_rate" validate:"gte=0,lte=1"`
	// MaxScoringErrorRate is the per-record scoring failure ceiling.
	MaxScoringErrorRate float64 `json:"max_scoring_error_rate" validate:"gte=0,lte=1"`

	// SemanticEnabled turns the bounded semantic adjustment on.
	SemanticEnabled bool `json:"semantic_enabled"`
	// MaxSemanticDelta bounds the semantic adjustment in points. Kept
	// small relative to 100 so semantic input can never flip a band on
	// its own.
	MaxSemanticDelta float64 `json:"max_semantic_delta" validate:"gte=0,lte=25"`
	// SemanticTimeoutMS bounds one similarity provider call.
	SemanticTimeoutMS int `json:"semantic_timeout_ms" validate:"gte=0"`

	// Workers bounds per-record parallelism inside the normalizer and
	// scoring engine. Zero means serial.
	Workers int `json:"workers" validate:"gte=0"`

	Weights scoring.Weights `json:"weights"`
}

// DefaultConfig returns the standard pipeline policy.
func DefaultConfig() *Config {
	return &Config{
		MaxNormalizationErrorRate: 0.1,
		MaxScoringErrorRate:       0.1,
		SemanticEnabled:           false,
		MaxSemanticDelta:          10,
		SemanticTimeoutMS:         2000,
		Workers:                   4,
		Weights:                   scoring.DefaultWeights(),
	}
}

// LoadConfig loads configuration from a JSON file, applying defaults for
// absent fields.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against its declared constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadProfile loads and validates a candidate profile from a JSON file.
func LoadProfile(path string) (*types.CandidateProfile, error) {
	if path == "" {
		return nil, fmt.Errorf("profile path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file %s: %w", path, err)
	}

	if err := schemas.ValidateProfile(data); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	var profile types.CandidateProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile JSON: %w", err)
	}
	if err := validator.New().Struct(&profile); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	return &profile, nil
}
