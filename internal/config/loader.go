package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// maxConfigFileSize bounds config files to guard against accidental
// loads of huge files.
const maxConfigFileSize = 1024 * 1024

// Load reads configuration from a YAML file, then overrides with
// environment variables.
//
// Precedence (highest to lowest):
//  1. Environment variables (ALLOCD_SERVER_PORT, ALLOCD_LOGGING_LEVEL, ...)
//  2. YAML config file
//  3. Defaults
//
// If configPath is empty the default path ~/.config/allocd/config.yaml
// is used; a missing file is not an error.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, ".config", "allocd", "config.yaml")
	}

	if _, err := os.Stat(configPath); err == nil {
		f, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
		if info.Size() > maxConfigFileSize {
			return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
		}

		content, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Environment variables override the file. ALLOCD_SERVER_PORT maps
	// to server.port, ALLOCD_STORE_NATS_URL to store.nats_url.
	if err := k.Load(env.Provider("ALLOCD_", ".", func(s string) string {
		lower := strings.ToLower(strings.TrimPrefix(s, "ALLOCD_"))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Store.DataDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.Store.DataDir = filepath.Join(home, ".local", "share", "allocd")
		}
	}
	if cfg.Store.BucketPrefix == "" {
		cfg.Store.BucketPrefix = "allocd"
	}

	if cfg.Recommender.MinSamples == 0 {
		cfg.Recommender.MinSamples = 5
	}
	if cfg.Recommender.Threshold == 0 {
		cfg.Recommender.Threshold = 0.6
	}
	if cfg.Recommender.TopN == 0 {
		cfg.Recommender.TopN = 3
	}
}
