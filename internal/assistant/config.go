package assistant

import (
	"os"
	"strconv"
)

// Config holds all configuration for the assistant subsystem.
type Config struct {
	Enabled    bool
	LogCalls   bool
	Endpoint   string
	Model      string
	TimeoutMs  int
	MaxRetries int
}

// DefaultConfig returns an assistant Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Enabled:    true,
		LogCalls:   false,
		Endpoint:   "http://localhost:9090",
		Model:      "default",
		TimeoutMs:  30000,
		MaxRetries: 1,
	}
}

// LoadConfig reads assistant configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("PROFORMA_AI_ENABLED"); v != "" {
		cfg.Enabled, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("PROFORMA_AI_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("PROFORMA_AI_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("PROFORMA_AI_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("PROFORMA_AI_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("PROFORMA_AI_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}
	return cfg
}
