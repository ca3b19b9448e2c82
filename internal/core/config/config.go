// Package config provides configuration management for ParcelForge tooling.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/parcelforge/parcelforge/internal/types"
)

// Config holds configuration for the parcelforge CLI and correction loop.
type Config struct {
	Correction CorrectionConfig
	OpenAI     OpenAIConfig
	DB         DBConfig
}

// CorrectionConfig bounds the self-correction loop.
type CorrectionConfig struct {
	MaxAttempts int
	Enabled     bool
	AutoAccept  bool
}

// OpenAIConfig selects the repair collaborator model. The API key is
// deliberately absent: it is environment-only (PF_OPENAI_API_KEY).
type OpenAIConfig struct {
	Model string
}

// DBConfig points at the correction audit store.
type DBConfig struct {
	URL string
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Correction: CorrectionConfig{
			MaxAttempts: types.DefaultAttemptCeiling,
			Enabled:     true,
			AutoAccept:  false,
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		DB: DBConfig{
			URL: "sqlite://parcelforge.db",
		},
	}
}

// OpenAIAPIKey extracts the OpenAI API key from the environment.
// Keys never live in config files; PF_OPENAI_API_KEY is the only source.
func OpenAIAPIKey() (string, error) {
	key := strings.TrimSpace(os.Getenv("PF_OPENAI_API_KEY"))
	if key == "" {
		return "", fmt.Errorf("PF_OPENAI_API_KEY environment variable is not set")
	}
	return key, nil
}
