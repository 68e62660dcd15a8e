// Package loader handles configuration file loading and validation.
//
// Configuration is YAML with environment variable expansion, merged over
// DefaultConfig so a partial file only needs to name what it changes.
package loader

import (
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	// Start with defaults
	cfg := DefaultConfig()

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.Envoy.URL == "" {
		return fmt.Errorf("envoy.url is required")
	}
	if _, err := url.Parse(c.Envoy.URL); err != nil {
		return fmt.Errorf("envoy.url: %w", err)
	}
	if c.Poll.StatusInterval.Duration() <= 0 {
		return fmt.Errorf("poll.status_interval must be positive")
	}
	if c.Poll.InventoryInterval.Duration() <= 0 {
		return fmt.Errorf("poll.inventory_interval must be positive")
	}
	if c.Series.Retention.Duration() <= 0 {
		return fmt.Errorf("series.retention must be positive")
	}
	if c.Series.MaintenanceInterval.Duration() <= 0 {
		return fmt.Errorf("series.maintenance_interval must be positive")
	}
	return nil
}
