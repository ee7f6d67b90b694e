// Routinely - Survey-Driven Exercise Routine Recommendation Service
// Copyright 2026 RaiseDev
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/raisedev/routinely

// Package config loads and validates application configuration with
// layered sources: built-in defaults, an optional YAML file, and
// environment variables (highest priority).
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all application configuration.
//
// Thread safety: Config is immutable after Load() and safe for concurrent
// read access from multiple goroutines.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Catalog CatalogConfig `koanf:"catalog"`
	LLM     LLMConfig     `koanf:"llm"`
	Routine RoutineConfig `koanf:"routine"`
	Logging LoggingConfig `koanf:"logging"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// Port is the TCP port to listen on.
	Port int `koanf:"port"`

	// Host is the bind address.
	Host string `koanf:"host"`

	// Timeout is the per-request read/write timeout.
	Timeout time.Duration `koanf:"timeout"`

	// RateLimitReqs is the per-IP request budget within RateLimitWindow.
	// Zero disables rate limiting.
	RateLimitReqs int `koanf:"rate_limit_reqs"`

	// RateLimitWindow is the rate limit accounting window.
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// CORSOrigins lists allowed CORS origins.
	CORSOrigins []string `koanf:"cors_origins"`
}

// CatalogConfig configures the exercise catalog source.
type CatalogConfig struct {
	// Path is the local JSON catalog file.
	Path string `koanf:"path"`

	// FetchURL, when set, is the remote endpoint the reload operation
	// downloads a fresh catalog from before re-reading Path.
	FetchURL string `koanf:"fetch_url"`

	// FetchTimeout bounds the remote catalog download.
	FetchTimeout time.Duration `koanf:"fetch_timeout"`
}

// ProviderConfig configures a single LLM provider backend.
type ProviderConfig struct {
	// Model is the provider-specific model identifier.
	Model string `koanf:"model"`

	// BaseURL is the provider API base URL.
	BaseURL string `koanf:"base_url"`

	// APIKey authenticates requests. Required for hosted providers,
	// unused for local ones.
	APIKey string `koanf:"api_key"`

	// Timeout bounds a single generation call.
	Timeout time.Duration `koanf:"timeout"`

	// MaxRetries is the number of retries after the first attempt (0-5).
	MaxRetries int `koanf:"max_retries"`
}

// LLMConfig configures LLM-backed generation.
type LLMConfig struct {
	// DefaultProvider names the provider used for recommendations.
	DefaultProvider string `koanf:"default_provider"`

	// FallbackEnabled controls whether rule-based generation takes over
	// when the LLM path is exhausted.
	FallbackEnabled bool `koanf:"fallback_enabled"`

	// BreakerEnabled wraps the provider client in a circuit breaker.
	BreakerEnabled bool `koanf:"breaker_enabled"`

	// Providers maps provider names to their backend configuration.
	Providers map[string]ProviderConfig `koanf:"providers"`
}

// Provider returns the configuration for the default provider.
func (c *LLMConfig) Provider() (ProviderConfig, bool) {
	p, ok := c.Providers[c.DefaultProvider]
	return p, ok
}

// RoutineConfig holds the routine time policy in seconds.
type RoutineConfig struct {
	// MinTime is the lower bound a routine is padded up to.
	MinTime int `koanf:"min_time"`

	// MaxTime is the upper bound a routine is trimmed down to.
	MaxTime int `koanf:"max_time"`

	// TargetTime is the duration generators aim for.
	TargetTime int `koanf:"target_time"`
}

// LoggingConfig configures structured logging output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateRoutine(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is outside 1-65535", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if c.Server.RateLimitReqs < 0 {
		return fmt.Errorf("server.rate_limit_reqs must be >= 0, got %d", c.Server.RateLimitReqs)
	}
	if c.Server.RateLimitReqs > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("server.rate_limit_window must be positive when rate limiting is enabled")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.Path == "" {
		return fmt.Errorf("catalog.path is required")
	}
	if c.Catalog.FetchURL != "" {
		if !strings.HasPrefix(c.Catalog.FetchURL, "http://") && !strings.HasPrefix(c.Catalog.FetchURL, "https://") {
			return fmt.Errorf("catalog.fetch_url must start with http:// or https://, got %q", c.Catalog.FetchURL)
		}
		if c.Catalog.FetchTimeout <= 0 {
			return fmt.Errorf("catalog.fetch_timeout must be positive when fetch_url is set")
		}
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.DefaultProvider == "" {
		return fmt.Errorf("llm.default_provider is required")
	}
	p, ok := c.LLM.Provider()
	if !ok {
		return fmt.Errorf("llm.default_provider %q has no entry under llm.providers", c.LLM.DefaultProvider)
	}
	if p.Model == "" {
		return fmt.Errorf("llm.providers.%s.model is required", c.LLM.DefaultProvider)
	}
	if p.BaseURL == "" {
		return fmt.Errorf("llm.providers.%s.base_url is required", c.LLM.DefaultProvider)
	}
	if p.Timeout <= 0 {
		return fmt.Errorf("llm.providers.%s.timeout must be positive", c.LLM.DefaultProvider)
	}
	if p.MaxRetries < 0 || p.MaxRetries > 5 {
		return fmt.Errorf("llm.providers.%s.max_retries %d is outside 0-5", c.LLM.DefaultProvider, p.MaxRetries)
	}
	return nil
}

func (c *Config) validateRoutine() error {
	if c.Routine.MinTime <= 0 {
		return fmt.Errorf("routine.min_time must be positive, got %d", c.Routine.MinTime)
	}
	if c.Routine.MinTime > c.Routine.TargetTime || c.Routine.TargetTime > c.Routine.MaxTime {
		return fmt.Errorf("routine time policy must satisfy min <= target <= max, got %d/%d/%d",
			c.Routine.MinTime, c.Routine.TargetTime, c.Routine.MaxTime)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return fmt.Errorf("logging.level %q is not a valid level", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format %q must be json or console", c.Logging.Format)
	}
	return nil
}
