// Package config provides configuration loading and management for semindex.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Config represents the complete semindex configuration
type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Lineage LineageConfig `yaml:"lineage"`
	NATS    NATSConfig    `yaml:"nats"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// SourceConfig configures where batch files are read from
type SourceConfig struct {
	// Patterns are doublestar globs matching batch files
	Patterns []string `yaml:"patterns"`
	// Debounce is how long the watcher waits for writes to settle
	Debounce time.Duration `yaml:"debounce"`
}

// LineageConfig configures version grouping
type LineageConfig struct {
	// CanonicalOrder sorts version groups by smallest member id, making the
	// lineage independent of record order in the input
	CanonicalOrder bool `yaml:"canonical_order"`
}

// NATSConfig configures publishing of translated documents
type NATSConfig struct {
	// URL is the NATS server URL (empty = don't publish)
	URL string `yaml:"url"`
	// Subject is the prefix documents are published under
	Subject string `yaml:"subject"`
	// Bucket is the KV bucket holding the latest documents (empty = don't store)
	Bucket string `yaml:"bucket"`
}

// MetricsConfig configures the Prometheus endpoint
type MetricsConfig struct {
	// Addr is the listen address for /metrics (empty = disabled)
	Addr string `yaml:"addr"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Patterns: []string{"./batches/**/*.json"},
			Debounce: 250 * time.Millisecond,
		},
		Lineage: LineageConfig{
			CanonicalOrder: false,
		},
		NATS: NATSConfig{
			URL:     "",
			Subject: "search.ingest.document",
			Bucket:  "SEMINDEX_DOCUMENTS",
		},
		Metrics: MetricsConfig{
			Addr: "",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if len(c.Source.Patterns) == 0 {
		return fmt.Errorf("source.patterns is required")
	}
	for _, p := range c.Source.Patterns {
		if !doublestar.ValidatePattern(filepath.ToSlash(p)) {
			return fmt.Errorf("source.patterns: invalid glob %q", p)
		}
	}
	if c.Source.Debounce < 0 {
		return fmt.Errorf("source.debounce must not be negative")
	}
	if c.NATS.Subject == "" {
		return fmt.Errorf("nats.subject is required")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Source
	if len(other.Source.Patterns) > 0 {
		c.Source.Patterns = other.Source.Patterns
	}
	if other.Source.Debounce != 0 {
		c.Source.Debounce = other.Source.Debounce
	}

	// Lineage
	if other.Lineage.CanonicalOrder {
		c.Lineage.CanonicalOrder = true
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.Subject != "" {
		c.NATS.Subject = other.NATS.Subject
	}
	if other.NATS.Bucket != "" {
		c.NATS.Bucket = other.NATS.Bucket
	}

	// Metrics
	if other.Metrics.Addr != "" {
		c.Metrics.Addr = other.Metrics.Addr
	}
}
