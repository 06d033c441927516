// Package config holds the mathcourt configuration: where data lives, how to
// reach the Gemini API, and the game tuning knobs. Configuration is loaded
// from <data-dir>/config.yaml with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all mathcourt configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Data directory (database, logs). Defaults to ~/.mathcourt.
	DataDir string `yaml:"data_dir"`

	// LLM configuration
	LLM LLMConfig `yaml:"llm"`

	// Game tuning
	Game GameConfig `yaml:"game"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the Gemini client.
type LLMConfig struct {
	APIKey          string `yaml:"api_key"`
	Model           string `yaml:"model"`
	EmbeddingModel  string `yaml:"embedding_model"`
	BaseURL         string `yaml:"base_url"`
	Timeout         string `yaml:"timeout"`
	MaxOutputTokens int    `yaml:"max_output_tokens"`
}

// GameConfig configures trial pacing and difficulty.
type GameConfig struct {
	// Starting case duration in minutes and the per-level decrement.
	InitialDurationMinutes    float64 `yaml:"initial_duration_minutes"`
	DurationDecrementPerLevel float64 `yaml:"duration_decrement_per_level"`
	MinDurationMinutes        float64 `yaml:"min_duration_minutes"`

	// Level thresholds splitting the three curriculum tiers.
	Tier1MaxLevel int `yaml:"tier1_max_level"`
	Tier2MaxLevel int `yaml:"tier2_max_level"`

	// Delay between narrated dialogue lines.
	NarrationDelay string `yaml:"narration_delay"`
}

// LoggingConfig configures the file logger.
type LoggingConfig struct {
	Level     string `yaml:"level"`      // debug, info, warn, error
	DebugMode bool   `yaml:"debug_mode"` // Master toggle - false = no logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Name:    "mathcourt",
		Version: "1.0.0",
		DataDir: filepath.Join(home, ".mathcourt"),

		LLM: LLMConfig{
			Model:           "gemini-2.5-flash",
			EmbeddingModel:  "gemini-embedding-001",
			BaseURL:         "https://generativelanguage.googleapis.com/v1beta",
			Timeout:         "120s",
			MaxOutputTokens: 8192,
		},

		Game: GameConfig{
			InitialDurationMinutes:    5.0,
			DurationDecrementPerLevel: 0.25,
			MinDurationMinutes:        1.5,
			Tier1MaxLevel:             10,
			Tier2MaxLevel:             20,
			NarrationDelay:            "1200ms",
		},

		Logging: LoggingConfig{
			Level:     "info",
			DebugMode: false,
		},
	}
}

// Path returns the config file location inside the data directory.
func (c *Config) Path() string {
	return filepath.Join(c.DataDir, "config.yaml")
}

// DatabasePath returns the SQLite database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "mathcourt.db")
}

// Load loads configuration from a YAML file.
// Missing file returns defaults; env overrides always apply.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("MATHCOURT_API_KEY"); key != "" {
		c.LLM.APIKey = key
	} else if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if dir := os.Getenv("MATHCOURT_DATA_DIR"); dir != "" {
		c.DataDir = dir
	}
	if model := os.Getenv("MATHCOURT_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if debug := os.Getenv("MATHCOURT_DEBUG"); debug == "1" || debug == "true" {
		c.Logging.DebugMode = true
		c.Logging.Level = "debug"
	}
}

// GetLLMTimeout returns the LLM timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// GetNarrationDelay returns the pause between narrated lines.
func (c *Config) GetNarrationDelay() time.Duration {
	d, err := time.ParseDuration(c.Game.NarrationDelay)
	if err != nil {
		return 1200 * time.Millisecond
	}
	return d
}
