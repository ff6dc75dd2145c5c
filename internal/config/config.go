// Package config loads ordinal's runtime configuration.
//
// Configuration comes from an optional YAML file; every field has a default
// and command-line flags override file values.
//
//	driver: postgres
//	dsn: postgres://localhost/ordinal
//	lock_timeout: 2s
//	retry:
//	  attempts: 5
//	  base: 20ms
//	log_level: debug
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultDriver        = "sqlite3"
	DefaultDSN           = "ordinal.db"
	DefaultLockTimeout   = 5 * time.Second
	DefaultRetryAttempts = 3
	DefaultRetryBase     = 50 * time.Millisecond
	DefaultLogLevel      = "info"
)

// Config is the full runtime configuration.
type Config struct {
	// Driver selects the store dialect: "sqlite3" or "postgres".
	Driver string `yaml:"driver"`

	// DSN is a file path for sqlite3 and a connection string for postgres.
	DSN string `yaml:"dsn"`

	// LockTimeout bounds how long a mutation waits for an exclusive scope.
	LockTimeout Duration `yaml:"lock_timeout"`

	Retry Retry `yaml:"retry"`

	LogLevel string `yaml:"log_level"`
}

// Retry controls how the CLI retries a mutation that hit a conflict.
// The engine itself never retries.
type Retry struct {
	// Attempts is the total number of tries, including the first.
	Attempts int `yaml:"attempts"`

	// Base is the first backoff delay; later delays grow exponentially.
	Base Duration `yaml:"base"`
}

// Duration is a time.Duration that reads from YAML strings like "250ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("duration: %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Driver:      DefaultDriver,
		DSN:         DefaultDSN,
		LockTimeout: Duration(DefaultLockTimeout),
		Retry: Retry{
			Attempts: DefaultRetryAttempts,
			Base:     Duration(DefaultRetryBase),
		},
		LogLevel: DefaultLogLevel,
	}
}

// Load reads a YAML config file over the defaults. Fields absent from the
// file keep their default. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := Parse(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, leaving fields the document omits untouched,
// and validates the result. Unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse: %w", err)
	}
	return cfg.Validate()
}

// Validate checks that every field holds a usable value.
func (c Config) Validate() error {
	switch c.Driver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("driver %q: must be sqlite3 or postgres", c.Driver)
	}
	if c.DSN == "" {
		return errors.New("dsn: must not be empty")
	}
	if c.LockTimeout <= 0 {
		return fmt.Errorf("lock_timeout %s: must be positive", c.LockTimeout.Std())
	}
	if c.Retry.Attempts < 1 {
		return fmt.Errorf("retry.attempts %d: must be at least 1", c.Retry.Attempts)
	}
	if c.Retry.Base <= 0 {
		return fmt.Errorf("retry.base %s: must be positive", c.Retry.Base.Std())
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a log_level string to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("log_level %q: must be debug, info, warn or error", s)
}
