package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Provision ProvisionConfig
	Metrics   MetricsConfig
	Logging   LogConfig
}

// ProvisionConfig holds the pipe set and how it is created.
type ProvisionConfig struct {
	// Manifest is a YAML, TOML or JSON file listing pipes.
	Manifest string `envconfig:"PIPEPROV_MANIFEST"`
	// Pipes are inline "path:mode" entries, comma separated in the environment.
	Pipes       []string `envconfig:"PIPEPROV_PIPES"`
	UmaskPolicy string   `envconfig:"PIPEPROV_UMASK_POLICY" default:"exact"`
	Strict      bool     `envconfig:"PIPEPROV_STRICT" default:"false"`
}

// MetricsConfig holds metrics export configuration.
type MetricsConfig struct {
	// Textfile is written in the node_exporter textfile collector format.
	Textfile string `envconfig:"PIPEPROV_METRICS_TEXTFILE"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Provision: ProvisionConfig{
			UmaskPolicy: "exact",
			Strict:      false,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}

// HasSources reports whether any pipe source is configured.
func (c *Config) HasSources() bool {
	return c.Provision.Manifest != "" || len(c.Provision.Pipes) > 0
}
