// Package config loads the YAML run configuration for the batch CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"raggen"
	"raggen/preamble"
)

// Config is the YAML run configuration bound directly to typed fields.
// Zero fields keep their defaults from Defaults.
type Config struct {
	Model           string         `yaml:"model"`
	ContextSize     int            `yaml:"context_size"`
	MaxOutputTokens int            `yaml:"max_output_tokens"`
	TopK            int            `yaml:"topk"`
	Concurrency     int            `yaml:"concurrency"`
	CharsPerToken   int            `yaml:"chars_per_token"` // 0 disables token estimation
	Preamble        PreambleConfig `yaml:"preamble"`
	Retry           RetryConfig    `yaml:"retry"`
}

// PreambleConfig selects the instruction profile and its override directory.
type PreambleConfig struct {
	Profile string `yaml:"profile"`
	Dir     string `yaml:"dir"`
}

// RetryConfig is the retry policy in file form.
type RetryConfig struct {
	MaxAttempts     int `yaml:"max_attempts"`     // 0 retries forever
	IntervalSeconds int `yaml:"interval_seconds"` // 0 means the default minute
}

// Defaults returns the configuration used when no file is given: Command R+
// with its 128k window, the default instruction profile, sequential
// execution, and unbounded one-minute retry.
func Defaults() Config {
	return Config{
		Model:           "command-r-plus",
		ContextSize:     128000,
		MaxOutputTokens: 1500,
		TopK:            20,
		Concurrency:     1,
		Preamble:        PreambleConfig{Profile: preamble.Default},
		Retry:           RetryConfig{MaxAttempts: 0, IntervalSeconds: 60},
	}
}

// Load reads and parses a configuration file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the caller's flags
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses YAML on top of Defaults and validates the result. Unknown
// keys are rejected, so typos in run files fail fast.
func Parse(data []byte) (Config, error) {
	cfg := Defaults()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", raggen.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field ranges. Errors wrap raggen.ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.Model == "":
		return fmt.Errorf("%w: model must not be empty", raggen.ErrInvalidConfig)
	case c.ContextSize < 1:
		return fmt.Errorf("%w: context_size %d must be positive", raggen.ErrInvalidConfig, c.ContextSize)
	case c.MaxOutputTokens < 1:
		return fmt.Errorf("%w: max_output_tokens %d must be positive", raggen.ErrInvalidConfig, c.MaxOutputTokens)
	case c.MaxOutputTokens >= c.ContextSize:
		return fmt.Errorf("%w: max_output_tokens %d must be below context_size %d", raggen.ErrInvalidConfig, c.MaxOutputTokens, c.ContextSize)
	case c.TopK < 1:
		return fmt.Errorf("%w: topk %d must be at least 1", raggen.ErrInvalidConfig, c.TopK)
	case c.Concurrency < 1:
		return fmt.Errorf("%w: concurrency %d must be at least 1", raggen.ErrInvalidConfig, c.Concurrency)
	case c.CharsPerToken < 0:
		return fmt.Errorf("%w: chars_per_token %d must not be negative", raggen.ErrInvalidConfig, c.CharsPerToken)
	case c.Retry.MaxAttempts < 0:
		return fmt.Errorf("%w: retry.max_attempts %d must not be negative", raggen.ErrInvalidConfig, c.Retry.MaxAttempts)
	case c.Retry.IntervalSeconds < 0:
		return fmt.Errorf("%w: retry.interval_seconds %d must not be negative", raggen.ErrInvalidConfig, c.Retry.IntervalSeconds)
	}
	return nil
}

// RetryPolicy converts the file form into a policy value.
func (c Config) RetryPolicy() raggen.RetryPolicy {
	return raggen.RetryPolicy{
		MaxAttempts: c.Retry.MaxAttempts,
		Interval:    time.Duration(c.Retry.IntervalSeconds) * time.Second,
	}
}

// TokenCounter returns the configured estimator, or nil when estimation is
// disabled.
func (c Config) TokenCounter() raggen.TokenCounter {
	if c.CharsPerToken < 1 {
		return nil
	}
	return &raggen.CharFallbackCounter{CharsPerToken: c.CharsPerToken}
}
