// Package config loads the tagbuilder YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	foundationerrors "git.home.luguber.info/inful/tagbuilder/internal/foundation/errors"
)

// CurrentVersion is the configuration schema version written by Init.
const CurrentVersion = "1.0"

// DefaultPath is the configuration file looked up when --config is not given.
const DefaultPath = "tagbuilder.yaml"

// Config represents the application configuration.
type Config struct {
	Version    string        `yaml:"version"`
	PostsDir   string        `yaml:"posts_dir"`
	TagDir     string        `yaml:"tag_dir"`
	Extensions []string      `yaml:"extensions,omitempty"`
	Recursive  bool          `yaml:"recursive"`
	Extractor  ExtractorKind `yaml:"extractor"`
	Field      string        `yaml:"field"`
	Normalize  bool          `yaml:"normalize"`
	Strict     bool          `yaml:"strict"`
	Page       PageConfig    `yaml:"page"`
	Manifest   string        `yaml:"manifest,omitempty"`
	Metrics    MetricsConfig `yaml:"metrics,omitempty"`
	Watch      WatchConfig   `yaml:"watch,omitempty"`
	Logging    LoggingConfig `yaml:"logging,omitempty"`
}

// PageConfig controls the generated stub pages.
type PageConfig struct {
	Layout    string `yaml:"layout"`
	Robots    string `yaml:"robots"`
	Extension string `yaml:"extension"`
	Template  string `yaml:"template,omitempty"`
}

// MetricsConfig configures Prometheus metric output.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	Debounce string `yaml:"debounce,omitempty"`
	Schedule string `yaml:"schedule,omitempty"`
}

// DebounceDuration parses Debounce, falling back to the default on error.
func (w WatchConfig) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(w.Debounce)
	if err != nil || d <= 0 {
		return defaultDebounce
	}
	return d
}

// LoggingConfig configures slog output.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

// Load reads, normalizes, defaults and validates the configuration at configPath.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, foundationerrors.NotFoundError("configuration file not found").
				WithContext("path", configPath).
				Build()
		}
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "failed to read config file").
			WithContext("path", configPath).
			Build()
	}

	// Expand environment variables in the YAML content
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "failed to parse config file").
			WithContext("path", configPath).
			Build()
	}

	if cfg.Version != "" && cfg.Version != CurrentVersion {
		return nil, foundationerrors.ConfigError(fmt.Sprintf("unsupported configuration version %s (expected %s)", cfg.Version, CurrentVersion)).
			WithContext("path", configPath).
			Build()
	}

	res := Normalize(&cfg)
	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "config normalization: %s\n", w)
	}
	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configPath, or returns Default() when the file does not
// exist and the path was not given explicitly by the user.
func LoadOrDefault(configPath string, explicit bool) (*Config, error) {
	cfg, err := Load(configPath)
	if err == nil {
		return cfg, nil
	}
	if !explicit && foundationerrors.HasCategory(err, foundationerrors.CategoryNotFound) {
		return Default(), nil
	}
	return nil, err
}
