// Package config handles pipeline configuration and workspace paths.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full pipeline configuration, loadable from a YAML file.
// Every threshold mirrors its component's default; a zero value means
// "use the default". API keys come from the environment, never from the
// config file.
type Config struct {
	// External services.
	GrobidURL string `yaml:"grobid_url,omitempty"`

	// Citation-database pacing.
	S2MinDelayMS int `yaml:"s2_min_delay_ms,omitempty"`
	S2WindowCap  int `yaml:"s2_window_cap,omitempty"`
	S2WindowSecs int `yaml:"s2_window_secs,omitempty"`
	S2CooldownMS int `yaml:"s2_cooldown_ms,omitempty"`
	S2MaxRetries int `yaml:"s2_max_retries,omitempty"`

	// Extraction and matching.
	WindowRadius    int     `yaml:"window_radius,omitempty"`
	ConfidenceFloor float64 `yaml:"confidence_floor,omitempty"`

	// Derivative-work discovery.
	SampleCap    int `yaml:"sample_cap,omitempty"`
	MaxCitations int `yaml:"max_citations,omitempty"`

	// Classification oracle.
	OracleModel       string  `yaml:"oracle_model,omitempty"`
	OracleTemperature float64 `yaml:"oracle_temperature,omitempty"`
	OracleMaxTokens   int     `yaml:"oracle_max_tokens,omitempty"`
	BatchSize         int     `yaml:"batch_size,omitempty"`
	BatchDelayMS      int     `yaml:"batch_delay_ms,omitempty"`
}

// Default returns the configuration with every knob at its built-in
// default. The magic thresholds are empirically tuned; they are
// configurable precisely so nobody has to re-derive them.
func Default() *Config {
	return &Config{
		GrobidURL:         "http://localhost:8070",
		S2MinDelayMS:      1000,
		S2WindowCap:       90,
		S2WindowSecs:      300,
		S2CooldownMS:      30000,
		S2MaxRetries:      3,
		WindowRadius:      300,
		ConfidenceFloor:   0.25,
		SampleCap:         50,
		MaxCitations:      500,
		OracleModel:       "gpt-4o-mini",
		OracleTemperature: 0.1,
		OracleMaxTokens:   500,
		BatchSize:         3,
		BatchDelayMS:      1000,
	}
}

// S2MinDelay returns the pacing delay as a duration.
func (c *Config) S2MinDelay() time.Duration {
	return time.Duration(c.S2MinDelayMS) * time.Millisecond
}

// S2WindowSpan returns the rolling-window span as a duration.
func (c *Config) S2WindowSpan() time.Duration {
	return time.Duration(c.S2WindowSecs) * time.Second
}

// S2Cooldown returns the window cooldown as a duration.
func (c *Config) S2Cooldown() time.Duration {
	return time.Duration(c.S2CooldownMS) * time.Millisecond
}

// BatchDelay returns the inter-batch pacing delay as a duration.
func (c *Config) BatchDelay() time.Duration {
	return time.Duration(c.BatchDelayMS) * time.Millisecond
}

// Load reads a YAML config file, layering it over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault reads the config at path, or returns the defaults when
// path is empty or the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	cfg, err := Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Workspace layout: run artifacts live under a .citegraph directory.
const (
	DataDir    = ".citegraph"
	ConfigFile = "config.yml"
	DBFile     = "papers.db"
	GraphFile  = "graph.json"
	PapersFile = "papers.jsonl"
)

// DataPath returns the path to the .citegraph directory from a root.
func DataPath(root string) string {
	return filepath.Join(root, DataDir)
}

// ConfigPath returns the path to config.yml from a root.
func ConfigPath(root string) string {
	return filepath.Join(root, DataDir, ConfigFile)
}

// DBPath returns the path to the paper cache database from a root.
func DBPath(root string) string {
	return filepath.Join(root, DataDir, DBFile)
}

// GraphPath returns the path to the exported graph from a root.
func GraphPath(root string) string {
	return filepath.Join(root, DataDir, GraphFile)
}

// PapersPath returns the path to the JSONL paper export from a root.
func PapersPath(root string) string {
	return filepath.Join(root, DataDir, PapersFile)
}

// EnsureDataDir creates the .citegraph directory if missing.
func EnsureDataDir(root string) error {
	if err := os.MkdirAll(DataPath(root), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
