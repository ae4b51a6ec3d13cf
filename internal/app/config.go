package app

import (
	"errors"
	"fmt"
	"slices"
)

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"text", "json"}
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// Paths are searched recursively for addon manifests.
	Paths []string

	LogFormat   string
	LogLevel    string
	MetricsPort int // serves /health and /metrics; 0 is disabled

	WorkerCount         int // loader pool size; 0 means GOMAXPROCS
	ReadConcurrency     int // parallel manifest reads; 0 means GOMAXPROCS
	FailOnManifestError bool
	Strict              bool // treat error diagnostics as a failed run
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.Paths) == 0 {
		return nil, errors.New("at least one manifest path is required")
	}
	for _, p := range cfg.Paths {
		if p == "" {
			return nil, errors.New("manifest paths cannot be empty")
		}
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if !slices.Contains(validLogLevels, cfg.LogLevel) {
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if !slices.Contains(validLogFormats, cfg.LogFormat) {
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	if cfg.MetricsPort < 0 || cfg.MetricsPort > 65535 {
		return nil, fmt.Errorf("invalid metrics-port %d", cfg.MetricsPort)
	}
	if cfg.WorkerCount < 0 {
		return nil, fmt.Errorf("invalid workers %d: must not be negative", cfg.WorkerCount)
	}
	if cfg.ReadConcurrency < 0 {
		return nil, fmt.Errorf("invalid read-concurrency %d: must not be negative", cfg.ReadConcurrency)
	}

	return &cfg, nil
}
