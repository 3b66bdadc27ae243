// Package config provides configuration loading for allocd.
package config

import (
	"fmt"
	"time"
)

// Config holds the full allocd configuration.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Logging     LoggingConfig     `koanf:"logging"`
	Store       StoreConfig       `koanf:"store"`
	Recommender RecommenderConfig `koanf:"recommender"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	// Host is the listen address (default 127.0.0.1).
	Host string `koanf:"host"`
	// Port is the HTTP listen port (default 8080).
	Port int `koanf:"port"`
	// ShutdownTimeout bounds graceful shutdown (default 10s).
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	// MetricsEnabled exposes Prometheus metrics on /metrics.
	MetricsEnabled bool `koanf:"metrics_enabled"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `koanf:"level"`
	// Format is "json" or "console" (default json).
	Format string `koanf:"format"`
}

// StoreConfig configures persistence.
type StoreConfig struct {
	// NATSURL points at an external NATS server with JetStream enabled.
	// When empty an embedded server is started instead.
	NATSURL string `koanf:"nats_url"`
	// DataDir is the JetStream store directory for the embedded server
	// (default ~/.local/share/allocd).
	DataDir string `koanf:"data_dir"`
	// BucketPrefix namespaces the KV buckets (default "allocd").
	BucketPrefix string `koanf:"bucket_prefix"`
}

// RecommenderConfig configures the selection recommender.
type RecommenderConfig struct {
	// MinSamples is the minimum number of selections before training
	// is attempted (default 5).
	MinSamples int `koanf:"min_samples"`
	// Threshold is the score above which an alternative is flagged as
	// recommended (default 0.6).
	Threshold float64 `koanf:"threshold"`
	// TopN caps how many recommendations are returned (default 3).
	TopN int `koanf:"top_n"`
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive, got %s", c.Server.ShutdownTimeout)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	if c.Store.BucketPrefix == "" {
		return fmt.Errorf("store.bucket_prefix must not be empty")
	}
	if c.Recommender.MinSamples < 1 {
		return fmt.Errorf("recommender.min_samples must be positive, got %d", c.Recommender.MinSamples)
	}
	if c.Recommender.Threshold < 0 || c.Recommender.Threshold > 1 {
		return fmt.Errorf("recommender.threshold must be in [0,1], got %g", c.Recommender.Threshold)
	}
	if c.Recommender.TopN < 1 {
		return fmt.Errorf("recommender.top_n must be positive, got %d", c.Recommender.TopN)
	}
	return nil
}
