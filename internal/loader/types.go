package loader

import (
	"time"
)

// Config is the root configuration structure for gridwatchd.
type Config struct {
	// Listen is the HTTP server listen address.
	// Format: "host:port" or ":port". Default: ":3112".
	Listen string `yaml:"listen"`

	// Logging configures log output.
	Logging LoggingConfig `yaml:"logging"`

	// Envoy configures the connection to the Envoy gateway.
	Envoy EnvoyConfig `yaml:"envoy"`

	// Poll configures the collection intervals.
	Poll PollConfig `yaml:"poll"`

	// Series configures the in-memory rollup engine.
	Series SeriesConfig `yaml:"series"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	// Level is one of: debug, info, warn, error. Default: info.
	Level string `yaml:"level"`

	// JSON switches output from text to JSON.
	JSON bool `yaml:"json"`
}

// EnvoyConfig configures the connection to the Envoy local API.
type EnvoyConfig struct {
	// URL is the base URL of the gateway.
	// Default: "https://envoy.local".
	URL string `yaml:"url"`

	// Token is the bearer token for the local API.
	// Use environment variables: "${GRIDWATCH_TOKEN}".
	Token string `yaml:"token"`

	// InsecureSkipVerify disables TLS certificate verification. The Envoy
	// serves a self-signed certificate, so this defaults to true.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`

	// Timeout is the per-request timeout. Default: 10s.
	Timeout Duration `yaml:"timeout"`
}

// PollConfig configures the collection intervals.
type PollConfig struct {
	// StatusInterval is how often the live meter status and energy totals
	// are fetched. Default: 60s.
	StatusInterval Duration `yaml:"status_interval"`

	// InventoryInterval is how often the device inventory is refreshed.
	// Default: 6h.
	InventoryInterval Duration `yaml:"inventory_interval"`
}

// SeriesConfig configures the in-memory rollup engine.
type SeriesConfig struct {
	// Retention is how long raw points are kept. Default: 336h (14 days).
	Retention Duration `yaml:"retention"`

	// MaintenanceInterval is how often raw points are pruned.
	// Default: 30m.
	MaintenanceInterval Duration `yaml:"maintenance_interval"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Listen: ":3112",

		Logging: LoggingConfig{
			Level: "info",
		},

		Envoy: EnvoyConfig{
			URL:                "https://envoy.local",
			InsecureSkipVerify: true,
			Timeout:            Duration(10 * time.Second),
		},

		Poll: PollConfig{
			StatusInterval:    Duration(60 * time.Second),
			InventoryInterval: Duration(6 * time.Hour),
		},

		Series: SeriesConfig{
			Retention:           Duration(14 * 24 * time.Hour),
			MaintenanceInterval: Duration(30 * time.Minute),
		},
	}
}

// Duration is a time.Duration that can be unmarshaled from YAML, either as a
// duration string ("90s", "336h") or as an integer number of seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		// Try as int (seconds)
		var i int
		if err := unmarshal(&i); err != nil {
			return err
		}
		*d = Duration(time.Duration(i) * time.Second)
		return nil
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// Duration returns the time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
