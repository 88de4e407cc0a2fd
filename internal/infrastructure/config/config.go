package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Rules     RulesConfig
	Limits    LimitsConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// RulesConfig locates the rule data. An empty Path means the embedded
// default rules are used and reloads are disabled. A zero Refresh disables
// polling for changes.
type RulesConfig struct {
	Path    string        `envconfig:"LINKSAN_RULES_PATH"`
	Pattern string        `envconfig:"LINKSAN_RULES_PATTERN"`
	Refresh time.Duration `envconfig:"LINKSAN_RULES_REFRESH" default:"0s"`
}

// LimitsConfig bounds request payloads.
type LimitsConfig struct {
	MaxBatch int `envconfig:"LINKSAN_MAX_BATCH" default:"100"`
	MaxInput int `envconfig:"LINKSAN_MAX_INPUT" default:"8192"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate rejects limits that would disable the API.
func (c *Config) Validate() error {
	if c.Limits.MaxBatch <= 0 {
		return errors.New("LINKSAN_MAX_BATCH must be positive")
	}
	if c.Limits.MaxInput <= 0 {
		return errors.New("LINKSAN_MAX_INPUT must be positive")
	}
	if c.Rules.Refresh < 0 {
		return errors.New("LINKSAN_RULES_REFRESH must not be negative")
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerSecond <= 0 {
		return errors.New("RATE_LIMIT_RPS must be positive when rate limiting is enabled")
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Limits: LimitsConfig{
			MaxBatch: 100,
			MaxInput: 8192,
		},
	}
}
