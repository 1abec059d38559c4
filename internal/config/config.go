package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime configuration for a ccam run.
type Config struct {
	DSN         string // Postgres connection string
	SnapshotDir string // offline snapshot directory, alternative to DSN
	LogFormat   string // "text" or "json"
	Addr        string // serve: listen address

	SearchLimit    int  `yaml:"search_limit"`     // default result cap for search
	MinTokenLen    int  `yaml:"min_token_len"`    // shortest query token kept in multi-word queries
	IncludeRetired bool `yaml:"include_retired"`  // index retired codes for search
	SuggestUnknown bool `yaml:"suggest_unknown"`  // report unrecorded pairs as low-confidence findings
}

// yamlConfig is the on-disk YAML structure.
type yamlConfig struct {
	SearchLimit    *int  `yaml:"search_limit"`
	MinTokenLen    *int  `yaml:"min_token_len"`
	IncludeRetired *bool `yaml:"include_retired"`
	SuggestUnknown *bool `yaml:"suggest_unknown"`
}

// Default returns a Config with the engine defaults applied.
func Default() Config {
	return Config{
		LogFormat:   "text",
		Addr:        ":8080",
		SearchLimit: 10,
		MinTokenLen: 3,
	}
}

// LoadFromFile reads a YAML config file and merges its values into Config.
// Absent keys leave the current values untouched.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if yc.SearchLimit != nil {
		c.SearchLimit = *yc.SearchLimit
	}
	if yc.MinTokenLen != nil {
		c.MinTokenLen = *yc.MinTokenLen
	}
	if yc.IncludeRetired != nil {
		c.IncludeRetired = *yc.IncludeRetired
	}
	if yc.SuggestUnknown != nil {
		c.SuggestUnknown = *yc.SuggestUnknown
	}
	return c.Validate()
}

// Validate checks value ranges and returns an error if the config is invalid.
func (c *Config) Validate() error {
	if c.SearchLimit < 0 {
		return fmt.Errorf("search_limit must be >= 0, got %d", c.SearchLimit)
	}
	if c.MinTokenLen < 0 {
		return fmt.Errorf("min_token_len must be >= 0, got %d", c.MinTokenLen)
	}
	return nil
}

// ValidateSource checks that exactly one snapshot source is configured.
func (c *Config) ValidateSource() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DSN == "" && c.SnapshotDir == "" {
		return fmt.Errorf("--dsn (or CCAM_DB_URL) or --snapshot is required")
	}
	if c.DSN != "" && c.SnapshotDir != "" {
		return fmt.Errorf("--dsn and --snapshot are mutually exclusive")
	}
	return nil
}
