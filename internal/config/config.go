// Package config loads the console configuration from ~/.chatdesk/config.toml,
// with environment variables (optionally via a .env file) taking precedence
// for endpoint selection.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment-variable overrides. CHATDESK_SOCKET_URL beats config and the
// per-environment default; CHATDESK_API_URL beats the configured API base.
const (
	EnvSocketURL = "CHATDESK_SOCKET_URL"
	EnvAPIURL    = "CHATDESK_API_URL"
	EnvMode      = "CHATDESK_ENV"
)

// Push-channel defaults when neither override nor config supplies a URL.
const (
	defaultSocketURLProd = "wss://app-trader.railway.internal/ws"
	defaultSocketURLDev  = "ws://localhost:3000/ws"
)

// Config carries all settings for the admin console.
type Config struct {
	API     APIConfig     `toml:"api"`
	Channel ChannelConfig `toml:"channel"`
	Session SessionConfig `toml:"session"`
	Cache   CacheConfig   `toml:"cache"`
}

// APIConfig selects the backend REST API.
type APIConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// ChannelConfig selects the push-channel endpoint. URL, when set, overrides
// the per-environment default.
type ChannelConfig struct {
	URL         string `toml:"url"`
	Environment string `toml:"environment"` // "production" or "development"
}

// SessionConfig tunes the conversation session manager.
type SessionConfig struct {
	AdminID                int64 `toml:"admin_id"`
	HistoryLimit           int   `toml:"history_limit"`
	RefreshIntervalSeconds int   `toml:"refresh_interval_seconds"`
}

// CacheConfig locates the local conversation cache.
type CacheConfig struct {
	Path string `toml:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "http://localhost:4321",
			TimeoutSeconds: 15,
		},
		Channel: ChannelConfig{
			Environment: "development",
		},
		Session: SessionConfig{
			AdminID:                0,
			HistoryLimit:           50,
			RefreshIntervalSeconds: 5,
		},
		Cache: CacheConfig{
			Path: CachePath(),
		},
	}
}

// Load reads config from the given path, fills unset fields with defaults and
// applies environment overrides. A missing file is not an error; the defaults
// are used.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// .env is a development convenience; absence is fine.
	_ = godotenv.Load()

	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv(EnvSocketURL); v != "" {
		cfg.Channel.URL = v
	}
	if v := os.Getenv(EnvMode); v != "" {
		cfg.Channel.Environment = v
	}

	if cfg.Session.HistoryLimit <= 0 {
		cfg.Session.HistoryLimit = 50
	}
	if cfg.Session.RefreshIntervalSeconds <= 0 {
		cfg.Session.RefreshIntervalSeconds = 5
	}
	if cfg.API.TimeoutSeconds <= 0 {
		cfg.API.TimeoutSeconds = 15
	}
	return cfg, nil
}

// SocketURL resolves the push-channel endpoint: explicit override first,
// else the environment-specific default.
func (c *Config) SocketURL() string {
	if c.Channel.URL != "" {
		return c.Channel.URL
	}
	if c.Channel.Environment == "production" {
		return defaultSocketURLProd
	}
	return defaultSocketURLDev
}

// APITimeout returns the REST request timeout.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// RefreshInterval returns the conversation-list refresh period.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Session.RefreshIntervalSeconds) * time.Second
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
