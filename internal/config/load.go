package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "WORDSMITH_"

// Format is a config file format.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatOf returns the format implied by a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

// Load builds the configuration from defaults, the file at path and the
// environment, then validates it. An empty path or a missing file leaves
// the defaults in place.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			format, err := FormatOf(path)
			if err != nil {
				return nil, err
			}
			if err := Decode(cfg, format, data); err != nil {
				return nil, &ParseError{Path: path, Err: err}
			}
		}
	}

	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode merges data in the given format into cfg. Keys absent from data
// keep their current values.
func Decode(cfg *Config, format Format, data []byte) error {
	switch format {
	case FormatTOML:
		return toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(cfg)
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	default:
		return fmt.Errorf("%s: %w", format, ErrUnsupportedFormat)
	}
}

// Encode writes cfg in the given format.
func Encode(cfg *Config, format Format) ([]byte, error) {
	switch format {
	case FormatTOML:
		return toml.Marshal(cfg)
	case FormatYAML:
		return yaml.Marshal(cfg)
	default:
		return nil, fmt.Errorf("%s: %w", format, ErrUnsupportedFormat)
	}
}

// LookupFunc looks up an environment variable.
type LookupFunc func(key string) (string, bool)

type envSetter func(cfg *Config, value string) error

// envMapping maps environment variables to the settings they override.
var envMapping = map[string]envSetter{
	EnvPrefix + "SERVER_ADDR":             setString(func(c *Config) *string { return &c.Server.Addr }),
	EnvPrefix + "SERVER_MODE":             setString(func(c *Config) *string { return &c.Server.Mode }),
	EnvPrefix + "SERVER_SHUTDOWN_TIMEOUT": setDuration(func(c *Config) *Duration { return &c.Server.ShutdownTimeout }),
	EnvPrefix + "ANALYZER_BACKEND":        setString(func(c *Config) *string { return &c.Analyzer.Backend }),
	EnvPrefix + "ANALYZER_ENDPOINT":       setString(func(c *Config) *string { return &c.Analyzer.Endpoint }),
	EnvPrefix + "ANALYZER_DEBOUNCE":       setDuration(func(c *Config) *Duration { return &c.Analyzer.Debounce }),
	EnvPrefix + "ANALYZER_TIMEOUT":        setDuration(func(c *Config) *Duration { return &c.Analyzer.Timeout }),
	EnvPrefix + "ANALYZER_CONTEXT_RADIUS": setInt(func(c *Config) *int { return &c.Analyzer.ContextRadius }),
	EnvPrefix + "OPENAI_API_KEY":          setString(func(c *Config) *string { return &c.OpenAI.APIKey }),
	EnvPrefix + "OPENAI_MODEL":            setString(func(c *Config) *string { return &c.OpenAI.Model }),
	EnvPrefix + "OPENAI_BASE_URL":         setString(func(c *Config) *string { return &c.OpenAI.BaseURL }),
	EnvPrefix + "OPENAI_TEMPERATURE":      setFloat32(func(c *Config) *float32 { return &c.OpenAI.Temperature }),
	EnvPrefix + "OPENAI_MAX_TOKENS":       setInt(func(c *Config) *int { return &c.OpenAI.MaxTokens }),
	EnvPrefix + "STORAGE_DRIVER":          setString(func(c *Config) *string { return &c.Storage.Driver }),
	EnvPrefix + "STORAGE_PATH":            setString(func(c *Config) *string { return &c.Storage.Path }),
	EnvPrefix + "LOG_LEVEL":               setString(func(c *Config) *string { return &c.Logging.Level }),
	EnvPrefix + "LOG_FORMAT":              setString(func(c *Config) *string { return &c.Logging.Format }),
	EnvPrefix + "METRICS_ENABLED":         setBool(func(c *Config) *bool { return &c.Metrics.Enabled }),
	EnvPrefix + "METRICS_PATH":            setString(func(c *Config) *string { return &c.Metrics.Path }),
}

// apiKeyFallbacks are consulted, in order, when no API key is configured.
var apiKeyFallbacks = []string{"OPENAI_API_KEY", "VITE_OPENAI_API_KEY"}

// ApplyEnv applies environment overrides to cfg.
// Empty values are treated as set.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	for name, set := range envMapping {
		val, ok := lookup(name)
		if !ok {
			continue
		}
		if err := set(cfg, val); err != nil {
			return fmt.Errorf("environment %s: %w", name, err)
		}
	}

	if cfg.OpenAI.APIKey == "" {
		for _, name := range apiKeyFallbacks {
			if val, ok := lookup(name); ok && val != "" {
				cfg.OpenAI.APIKey = val
				break
			}
		}
	}
	return nil
}

func setString(field func(*Config) *string) envSetter {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}

func setInt(field func(*Config) *int) envSetter {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func setFloat32(field func(*Config) *float32) envSetter {
	return func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return err
		}
		*field(c) = float32(f)
		return nil
	}
}

func setBool(field func(*Config) *bool) envSetter {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

func setDuration(field func(*Config) *Duration) envSetter {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*field(c) = Duration{d}
		return nil
	}
}
