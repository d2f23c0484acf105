// Package config provides configuration loading and management for
// semdelta.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete semdelta configuration
type Config struct {
	Models ModelsConfig `yaml:"models"`
	Debt   DebtConfig   `yaml:"debt"`
	Merge  MergeConfig  `yaml:"merge"`
	Watch  WatchConfig  `yaml:"watch"`
	Output OutputConfig `yaml:"output"`
}

// ModelsConfig configures where model files live
type ModelsConfig struct {
	// Dir is the directory holding model files (default: current directory)
	Dir string `yaml:"dir"`
	// Pattern is the doublestar glob for model files within Dir
	Pattern string `yaml:"pattern"`
}

// DebtConfig configures the semantic debt analyzer
type DebtConfig struct {
	// SimilarityThreshold is the rule-condition similarity below which a
	// rule conflict is critical (0-1, default: 0.8)
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
}

// MergeConfig configures the merge engine
type MergeConfig struct {
	// Strategy is the default conflict resolution strategy
	// ("ours", "theirs", "union")
	Strategy string `yaml:"strategy"`
}

// WatchConfig configures the watch command
type WatchConfig struct {
	// DebounceDelay is how long to wait for more file changes before
	// re-running analysis
	DebounceDelay time.Duration `yaml:"debounce_delay"`
}

// OutputConfig configures report rendering
type OutputConfig struct {
	// Format is the default report format ("markdown" or "json")
	Format string `yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Models: ModelsConfig{
			Dir:     ".",
			Pattern: "*.json",
		},
		Debt: DebtConfig{
			SimilarityThreshold: 0.8,
		},
		Merge: MergeConfig{
			Strategy: "ours",
		},
		Watch: WatchConfig{
			DebounceDelay: 500 * time.Millisecond,
		},
		Output: OutputConfig{
			Format: "markdown",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Models.Dir == "" {
		return fmt.Errorf("models.dir is required")
	}
	if c.Models.Pattern == "" {
		return fmt.Errorf("models.pattern is required")
	}
	if c.Debt.SimilarityThreshold <= 0 || c.Debt.SimilarityThreshold > 1 {
		return fmt.Errorf("debt.similarity_threshold must be in (0, 1]")
	}
	switch c.Merge.Strategy {
	case "ours", "theirs", "union":
	default:
		return fmt.Errorf("merge.strategy must be one of: ours, theirs, union")
	}
	switch c.Output.Format {
	case "markdown", "json":
	default:
		return fmt.Errorf("output.format must be markdown or json")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
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

// Merge merges another config into this one (other takes precedence
// for non-zero values)
func (c *Config) MergeFrom(other *Config) {
	if other == nil {
		return
	}

	if other.Models.Dir != "" {
		c.Models.Dir = other.Models.Dir
	}
	if other.Models.Pattern != "" {
		c.Models.Pattern = other.Models.Pattern
	}
	if other.Debt.SimilarityThreshold != 0 {
		c.Debt.SimilarityThreshold = other.Debt.SimilarityThreshold
	}
	if other.Merge.Strategy != "" {
		c.Merge.Strategy = other.Merge.Strategy
	}
	if other.Watch.DebounceDelay != 0 {
		c.Watch.DebounceDelay = other.Watch.DebounceDelay
	}
	if other.Output.Format != "" {
		c.Output.Format = other.Output.Format
	}
}
