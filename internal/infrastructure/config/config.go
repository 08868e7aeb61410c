package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	Storage   StorageConfig
	History   HistoryConfig
	RateLimit RateLimitConfig
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

// StorageConfig selects where workspace slots are persisted.
type StorageConfig struct {
	Backend  string `envconfig:"STORAGE_BACKEND" default:"memory"`
	Path     string `envconfig:"STORAGE_PATH" default:"/tmp/webide-storage"`
	Compress bool   `envconfig:"STORAGE_COMPRESS" default:"true"`
}

// HistoryConfig bounds per-tab undo/redo stacks.
type HistoryConfig struct {
	Capacity int `envconfig:"HISTORY_CAPACITY" default:"100"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
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
		Storage: StorageConfig{
			Backend:  "memory",
			Path:     "/tmp/webide-storage",
			Compress: true,
		},
		History: HistoryConfig{
			Capacity: 100,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Storage.Backend) {
	case "memory", "file", "sqlite":
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND %q: want memory, file or sqlite", c.Storage.Backend)
	}
	if c.Storage.Backend != "memory" && c.Storage.Path == "" {
		return fmt.Errorf("STORAGE_PATH is required for the %s backend", c.Storage.Backend)
	}
	if c.History.Capacity <= 0 {
		return fmt.Errorf("invalid HISTORY_CAPACITY %d: must be positive", c.History.Capacity)
	}
	return nil
}
