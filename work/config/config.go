// Package config handles TOML configuration for the parser, its prober and the
// HTTP server. A missing file yields defaults; present keys override them.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/robfig/cron/v3"
)

// DefaultUserAgent is sent on every probe and retrieval request unless overridden.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/113.0.0.0 Safari/537.36"

// Config holds all application configuration values.
type Config struct {
	UserAgent              string `toml:"user_agent"`                // HTTP User-Agent header for probes and retrieval
	TimeoutSeconds         int    `toml:"timeout_seconds"`           // per-request timeout
	MaxAttempts            int    `toml:"max_attempts"`              // probe attempts per link, including the first
	Workers                int    `toml:"workers"`                   // parser pool size
	ProbeRateLimit         int    `toml:"probe_rate_limit"`          // outbound probes per second, 0 = unlimited
	ProbeCacheTTL          string `toml:"probe_cache_ttl"`           // keep verdicts across parses for this long, "0" (default) disables
	LogLevel               string `toml:"log_level"`                 // DEBUG, INFO, WARN or ERROR
	ObfuscateUrls          bool   `toml:"obfuscate_urls"`            // hide URL paths and queries in logs
	LegacyRemoveByCategory bool   `toml:"legacy_remove_by_category"` // RemoveByCategory keeps matches instead of dropping them
	ListenAddr             string `toml:"listen_addr"`               // serve command bind address
	RefreshCron            string `toml:"refresh_cron"`              // schedule for re-parsing the default source
	DefaultSource          string `toml:"default_source"`            // playlist loaded as the "default" session by serve
	DatabasePath           string `toml:"database_path"`             // sqlite snapshot written after scheduled refreshes
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		UserAgent:      DefaultUserAgent,
		TimeoutSeconds: 5,
		MaxAttempts:    3,
		Workers:        64,
		ProbeRateLimit: 0,
		ProbeCacheTTL:  "0",
		LogLevel:       "INFO",
		ListenAddr:     ":8080",
	}
}

// Load reads the TOML file at path and merges it over the defaults.
// An empty path or a missing file returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.UserAgent) == "" {
		return fmt.Errorf("user_agent cannot be empty")
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive, got %d", c.TimeoutSeconds)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.ProbeRateLimit < 0 {
		return fmt.Errorf("probe_rate_limit cannot be negative, got %d", c.ProbeRateLimit)
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}

	validLevels := map[string]bool{
		"DEBUG": true, "INFO": true, "WARN": true, "WARNING": true, "ERROR": true,
	}
	if !validLevels[strings.ToUpper(c.LogLevel)] {
		return fmt.Errorf("unsupported log_level %q (valid: DEBUG, INFO, WARN, ERROR)", c.LogLevel)
	}

	if c.RefreshCron != "" {
		if _, err := cron.ParseStandard(c.RefreshCron); err != nil {
			return fmt.Errorf("invalid refresh_cron %q: %w", c.RefreshCron, err)
		}
	}

	return nil
}

// Timeout returns the per-request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CacheTTL parses probe_cache_ttl. An empty value or "0" disables caching.
func (c *Config) CacheTTL() (time.Duration, error) {
	if c.ProbeCacheTTL == "" || c.ProbeCacheTTL == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.ProbeCacheTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid probe_cache_ttl %q: %w", c.ProbeCacheTTL, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("probe_cache_ttl cannot be negative, got %s", c.ProbeCacheTTL)
	}
	return d, nil
}
