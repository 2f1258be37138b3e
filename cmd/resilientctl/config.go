package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// fileConfig overlays optional YAML-file defaults for flags the caller
// didn't set explicitly on the command line, the same shape as a real
// service entrypoint's config file layered under its flag parsing.
type fileConfig struct {
	Interval    time.Duration `yaml:"interval"`
	FailureRate float64       `yaml:"failure_rate"`
	MaxRetries  int           `yaml:"max_retries"`
	MetricsAddr string        `yaml:"metrics_addr"`
	Hedge       bool          `yaml:"hedge"`
	CircuitBreaker struct {
		FailureThreshold int           `yaml:"failure_threshold"`
		ResetTimeout     time.Duration `yaml:"reset_timeout"`
	} `yaml:"circuit_breaker"`
}

// loadFileConfig reads path as YAML, expanding environment variables first
// so secrets and per-environment overrides don't need to be baked into the
// file itself.
func loadFileConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg fileConfig
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if cfg.CircuitBreaker.FailureThreshold == 0 {
		cfg.CircuitBreaker.FailureThreshold = 5
	}
	if cfg.CircuitBreaker.ResetTimeout == 0 {
		cfg.CircuitBreaker.ResetTimeout = 10 * time.Second
	}
	return &cfg, nil
}
