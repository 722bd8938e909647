// Package config loads wordsmith configuration.
//
// Configuration is layered: built-in defaults, then a TOML or YAML file,
// then environment variables prefixed with WORDSMITH_. The result is
// validated before use. Watch reloads the file when it changes.
package config

import (
	"fmt"
	"time"
)

// Duration is a time.Duration that reads and writes as a string such as
// "500ms" in TOML and YAML files.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the complete wordsmith configuration.
type Config struct {
	Server   ServerConfig   `toml:"server" yaml:"server"`
	Analyzer AnalyzerConfig `toml:"analyzer" yaml:"analyzer"`
	OpenAI   OpenAIConfig   `toml:"openai" yaml:"openai"`
	Storage  StorageConfig  `toml:"storage" yaml:"storage"`
	Logging  LoggingConfig  `toml:"logging" yaml:"logging"`
	Metrics  MetricsConfig  `toml:"metrics" yaml:"metrics"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string   `toml:"addr" yaml:"addr" validate:"required"`
	Mode            string   `toml:"mode" yaml:"mode" validate:"oneof=debug release test"`
	ShutdownTimeout Duration `toml:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// AnalyzerConfig selects and tunes the analyzer.
type AnalyzerConfig struct {
	// Backend is "openai" to call the model directly or "http" to post to a
	// remote analyzer endpoint.
	Backend       string   `toml:"backend" yaml:"backend" validate:"oneof=openai http"`
	Endpoint      string   `toml:"endpoint" yaml:"endpoint" validate:"omitempty,url"`
	Debounce      Duration `toml:"debounce" yaml:"debounce"`
	Timeout       Duration `toml:"timeout" yaml:"timeout"`
	ContextRadius int      `toml:"context_radius" yaml:"context_radius" validate:"gte=0"`
}

// OpenAIConfig configures the OpenAI backend.
type OpenAIConfig struct {
	APIKey      string  `toml:"api_key" yaml:"api_key"`
	Model       string  `toml:"model" yaml:"model" validate:"required"`
	BaseURL     string  `toml:"base_url" yaml:"base_url" validate:"omitempty,url"`
	Temperature float32 `toml:"temperature" yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int     `toml:"max_tokens" yaml:"max_tokens" validate:"gte=1"`
}

// StorageConfig selects the document store.
type StorageConfig struct {
	Driver string `toml:"driver" yaml:"driver" validate:"oneof=memory badger sqlite"`
	Path   string `toml:"path" yaml:"path"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level" validate:"oneof=debug info warn warning error"`
	Format string `toml:"format" yaml:"format" validate:"oneof=text json"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Path    string `toml:"path" yaml:"path" validate:"startswith=/"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":3001",
			Mode:            "release",
			ShutdownTimeout: Duration{10 * time.Second},
		},
		Analyzer: AnalyzerConfig{
			Backend:       "openai",
			Debounce:      Duration{500 * time.Millisecond},
			Timeout:       Duration{30 * time.Second},
			ContextRadius: 20,
		},
		OpenAI: OpenAIConfig{
			Model:       "gpt-3.5-turbo",
			Temperature: 0.3,
			MaxTokens:   1000,
		},
		Storage: StorageConfig{
			Driver: "memory",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}
