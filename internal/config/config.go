// SPDX-FileCopyrightText: 2025 The Flowdeck Authors
// SPDX-License-Identifier: EUPL-1.2

// Package config loads flowdeck's TOML configuration file and applies
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/flowdeck/flowdeck/internal/platform"
	"github.com/pelletier/go-toml/v2"
)

// Defaults applied when the config file is absent or a field is unset.
const (
	DefaultBaseURL          = "http://localhost:7860"
	DefaultStatusInterval   = 3 * time.Second
	DefaultHealthInterval   = 2 * time.Second
	DefaultSettleDelay      = 2 * time.Second
	DefaultOperationTimeout = 60 * time.Second
)

// Lower bounds for configured timings. Anything faster would hammer the
// backend or reconcile a restore before the backend finished booting.
const (
	MinPollInterval = 500 * time.Millisecond
	MinSettleDelay  = time.Second
)

// Environment variables overriding file values.
const (
	EnvServerURL = "FLOWDECK_SERVER_URL"
	EnvAPIKey    = "FLOWDECK_API_KEY"
)

// ErrInvalidConfig indicates the config file could not be parsed.
var ErrInvalidConfig = errors.New("invalid config")

// Duration is a time.Duration that (un)marshals as a TOML string like "3s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}

	*d = Duration(parsed)

	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Server holds backend connection settings.
type Server struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

// Poll holds the coordinator's timing settings.
type Poll struct {
	StatusInterval   Duration `toml:"status_interval"`
	HealthInterval   Duration `toml:"health_interval"`
	SettleDelay      Duration `toml:"settle_delay"`
	OperationTimeout Duration `toml:"operation_timeout"`
}

// Config is flowdeck's complete configuration.
type Config struct {
	Server Server `toml:"server"`
	Poll   Poll   `toml:"poll"`
}

// Path returns the location of the config file.
func Path() string {
	return filepath.Join(platform.GetFlowdeckConfigDir(), "config.toml")
}

// Load reads the config file at the default path. A missing file yields the
// defaults; a malformed file is an error.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config file at an explicit path, applies defaults and
// environment overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)

	switch {
	case errors.Is(err, os.ErrNotExist):
		// No file is fine; run on defaults.
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the config to the default path, creating the directory.
func (c *Config) Save() error {
	return c.SaveTo(Path())
}

// SaveTo writes the config to an explicit path.
func (c *Config) SaveTo(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}

	return nil
}

func (c *Config) applyEnv() {
	if url := os.Getenv(EnvServerURL); url != "" {
		c.Server.BaseURL = url
	}

	if key := os.Getenv(EnvAPIKey); key != "" {
		c.Server.APIKey = key
	}
}

func (c *Config) applyDefaults() {
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = DefaultBaseURL
	}

	c.Server.BaseURL = strings.TrimRight(c.Server.BaseURL, "/")

	switch {
	case c.Poll.StatusInterval <= 0:
		c.Poll.StatusInterval = Duration(DefaultStatusInterval)
	case c.Poll.StatusInterval < Duration(MinPollInterval):
		c.Poll.StatusInterval = Duration(MinPollInterval)
	}

	switch {
	case c.Poll.HealthInterval <= 0:
		c.Poll.HealthInterval = Duration(DefaultHealthInterval)
	case c.Poll.HealthInterval < Duration(MinPollInterval):
		c.Poll.HealthInterval = Duration(MinPollInterval)
	}

	switch {
	case c.Poll.SettleDelay <= 0:
		c.Poll.SettleDelay = Duration(DefaultSettleDelay)
	case c.Poll.SettleDelay < Duration(MinSettleDelay):
		c.Poll.SettleDelay = Duration(MinSettleDelay)
	}

	if c.Poll.OperationTimeout <= 0 {
		c.Poll.OperationTimeout = Duration(DefaultOperationTimeout)
	}
}
