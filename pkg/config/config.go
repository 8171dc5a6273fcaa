// Package config loads run configuration for the cohort engine from a
// .cohort.yaml file, COHORT_* environment variables, and CLI flags, in that
// precedence order (flags highest).
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidSampleDays = errors.New("sample granularity days must be positive")
	ErrInvalidWorkers    = errors.New("worker count must be non-negative")
	ErrMissingRepo       = errors.New("repository path is required")
)

// Default configuration values.
const (
	defaultHead       = "HEAD"
	defaultSampleDays = 7
	defaultOutPath    = "cohorts.json"
)

// Config holds all configuration for a cohort analysis run.
type Config struct {
	Repo          RepoConfig          `mapstructure:"repo"`
	Filter        FilterConfig        `mapstructure:"filter"`
	Sampling      SamplingConfig      `mapstructure:"sampling"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// RepoConfig identifies the repository and output location.
type RepoConfig struct {
	Path string `mapstructure:"path"`
	Head string `mapstructure:"head"`
	Out  string `mapstructure:"out"`
}

// FilterConfig configures the tracked-path predicate.
type FilterConfig struct {
	Languages []string `mapstructure:"languages"`
	Exclude   []string `mapstructure:"exclude"`
	NoVendor  bool     `mapstructure:"no_vendor"`
	Whitelist string   `mapstructure:"whitelist"`
}

// SamplingConfig configures walk granularity and parallelism.
type SamplingConfig struct {
	GranularityDays int `mapstructure:"granularity_days"`
	Workers         int `mapstructure:"workers"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ObservabilityConfig configures the optional Prometheus metrics endpoint.
type ObservabilityConfig struct {
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// Load reads configuration from configPath (if non-empty), the working
// directory's .cohort.yaml (otherwise), and COHORT_* environment variables,
// applying defaults for anything unset. Callers layer CLI flag overrides on
// top of the returned Config themselves (cobra flags take precedence by
// construction, since commands apply them after Load).
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(".cohort")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("COHORT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if readErr := v.ReadInConfig(); readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config file: %w", readErr)
		}
	}

	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("repo.head", defaultHead)
	v.SetDefault("repo.out", defaultOutPath)

	v.SetDefault("filter.no_vendor", true)

	v.SetDefault("sampling.granularity_days", defaultSampleDays)
	v.SetDefault("sampling.workers", 0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks the configuration for consistency once all overrides
// (flags, env, file) have been merged in.
func Validate(cfg *Config) error {
	if cfg.Repo.Path == "" {
		return ErrMissingRepo
	}

	if cfg.Sampling.GranularityDays <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSampleDays, cfg.Sampling.GranularityDays)
	}

	if cfg.Sampling.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, cfg.Sampling.Workers)
	}

	return nil
}
