// Package config loads docgen configuration: built-in defaults, overlaid by
// an optional .docgenrc YAML file, overlaid by environment variables. The
// resolved Config is immutable for the duration of a run and threaded
// explicitly through the pipeline; there is no process-wide mutable state.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file searched for in the working directory.
const DefaultFileName = ".docgenrc"

// Config holds all docgen settings.
type Config struct {
	// Generation settings
	Style            string  `yaml:"style"`             // google, numpy, rst
	MaxIterations    int     `yaml:"max_iterations"`    // refinement loop bound
	QualityThreshold float64 `yaml:"quality_threshold"` // confidence gate in [0,1]
	Overwrite        bool    `yaml:"overwrite"`         // replace existing docstrings

	// Concurrency
	Workers        int `yaml:"workers"`         // files processed in parallel
	ElementWorkers int `yaml:"element_workers"` // elements refined in parallel per file

	// File selection for batch runs
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`

	LLM   LLMConfig   `yaml:"llm"`
	Cache CacheConfig `yaml:"cache"`
}

// LLMConfig configures the completion backend.
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // openai, openrouter, anthropic
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	Timeout     string  `yaml:"timeout"` // Go duration string
}

// CacheConfig configures the batch resume cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Style:            "google",
		MaxIterations:    3,
		QualityThreshold: 0.8,
		Overwrite:        false,
		Workers:          4,
		ElementWorkers:   4,
		Include:          []string{"**/*.py"},
		Exclude:          []string{"**/.venv/**", "**/venv/**", "**/__pycache__/**"},
		LLM: LLMConfig{
			Temperature: 0.2,
			Timeout:     "120s",
		},
		Cache: CacheConfig{
			Enabled: true,
			Path:    ".docgen-cache.db",
		},
	}
}

// Load reads path (when it exists) over the defaults and then applies
// environment overrides. A missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables. API keys follow the provider
// precedence handled in the llm package; only docgen-specific knobs live
// here.
func (c *Config) applyEnv() {
	if v := os.Getenv("DOCGEN_STYLE"); v != "" {
		c.Style = v
	}
	if v := os.Getenv("DOCGEN_MAX_ITERATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxIterations = n
		}
	}
	if v := os.Getenv("DOCGEN_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.QualityThreshold = f
		}
	}
	if v := os.Getenv("DOCGEN_MODEL"); v != "" {
		c.LLM.Model = v
	}
}

// Validate rejects configurations the pipeline cannot honor.
func (c *Config) Validate() error {
	switch c.Style {
	case "google", "numpy", "rst":
	default:
		return fmt.Errorf("unknown style %q (want google, numpy or rst)", c.Style)
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be >= 1, got %d", c.MaxIterations)
	}
	if c.Workers < 1 || c.ElementWorkers < 1 {
		return fmt.Errorf("workers and element_workers must be >= 1")
	}
	return nil
}

// Fingerprint returns the configuration facts that affect generated output,
// serialized for inclusion in the cache key. Concurrency settings are
// deliberately absent: results must be identical regardless of pool size.
func (c *Config) Fingerprint() string {
	return fmt.Sprintf("style=%s;iters=%d;threshold=%.4f;overwrite=%t;provider=%s;model=%s",
		c.Style, c.MaxIterations, c.QualityThreshold, c.Overwrite, c.LLM.Provider, c.LLM.Model)
}
