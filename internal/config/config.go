// Package config loads and validates client configuration files.
package config

import (
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the file representation of the client configuration.
type Config struct {
	// URLs lists the backend hosts of the cluster.
	URLs []string `yaml:"urls"`

	// Username and Password enable basic authentication on every
	// request when set.
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// Timeout bounds each dispatch attempt.
	Timeout Duration `yaml:"timeout"`

	// MaxRetries bounds failover attempts. Zero derives the default
	// of host count minus one; -1 disables failover.
	MaxRetries int `yaml:"maxRetries"`

	// BackoffInitial and BackoffMax shape the unhealthy-host
	// cool-down.
	BackoffInitial Duration `yaml:"backoffInitial"`
	BackoffMax     Duration `yaml:"backoffMax"`

	// RandomizeSelection picks hosts uniformly at random instead of
	// round-robin.
	RandomizeSelection bool `yaml:"randomizeSelection"`

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool `yaml:"insecureSkipVerify"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"userAgent"`

	// RateLimit enables a client-side request rate limit (requests
	// per second) when positive.
	RateLimit float64 `yaml:"rateLimit"`
	RateBurst int     `yaml:"rateBurst"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration for structural errors.
func (c *Config) Validate() error {
	if len(c.URLs) == 0 {
		return fmt.Errorf("config: at least one URL is required")
	}
	for _, raw := range c.URLs {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("config: invalid url %q: %w", raw, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("config: invalid url %q: scheme must be http or https", raw)
		}
	}
	if c.Timeout < 0 {
		return fmt.Errorf("config: timeout must not be negative")
	}
	if c.BackoffInitial < 0 || c.BackoffMax < 0 {
		return fmt.Errorf("config: backoff durations must not be negative")
	}
	if c.MaxRetries < -1 {
		return fmt.Errorf("config: maxRetries must be -1, zero, or positive")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("config: rateLimit must not be negative")
	}
	return nil
}
