package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/parcelforge/parcelforge/internal/types"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults matching DefaultConfig
	v.SetDefault("correction.max_attempts", types.DefaultAttemptCeiling)
	v.SetDefault("correction.enabled", true)
	v.SetDefault("correction.auto_accept", false)
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("db.url", "sqlite://parcelforge.db")

	// Bind environment variables with PF_ prefix
	v.SetEnvPrefix("PF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Security check: reject secrets in config files
	// Secrets must be environment-only per 12-factor principles
	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	cfg := &Config{
		Correction: CorrectionConfig{
			MaxAttempts: v.GetInt("correction.max_attempts"),
			Enabled:     v.GetBool("correction.enabled"),
			AutoAccept:  v.GetBool("correction.auto_accept"),
		},
		OpenAI: OpenAIConfig{
			Model: v.GetString("openai.model"),
		},
		DB: DBConfig{
			URL: v.GetString("db.url"),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks the attempt ceiling range and required fields.
func validateConfig(cfg *Config) error {
	if cfg.Correction.MaxAttempts < types.MinAttemptCeiling || cfg.Correction.MaxAttempts > types.MaxAttemptCeiling {
		return fmt.Errorf("correction.max_attempts must be between %d and %d, got %d",
			types.MinAttemptCeiling, types.MaxAttemptCeiling, cfg.Correction.MaxAttempts)
	}
	if cfg.OpenAI.Model == "" {
		return fmt.Errorf("openai.model must not be empty")
	}
	if cfg.DB.URL == "" {
		return fmt.Errorf("db.url must not be empty")
	}
	return nil
}

// validateNoSecretsInConfig enforces environment-only secrets (12-factor principle).
func validateNoSecretsInConfig(v *viper.Viper) error {
	if v.IsSet("api_key") || v.IsSet("openai.api_key") {
		return fmt.Errorf("API keys not allowed in config files (use PF_OPENAI_API_KEY environment variable)")
	}
	return nil
}
