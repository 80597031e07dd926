// Package config loads the soundwave TOML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/roach88/soundwave/internal/store"
)

// Config is the top-level configuration.
type Config struct {
	Database Database `toml:"database"`
	Log      Log      `toml:"log"`
}

// Database configures the record store.
type Database struct {
	Path        string   `toml:"path"`
	Driver      string   `toml:"driver"`
	Schema      string   `toml:"schema,omitempty"`
	BusyTimeout Duration `toml:"busy_timeout"`
}

// Log configures logging output.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Log formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Duration is a time.Duration written as a string ("5s") in TOML.
type Duration time.Duration

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Database: Database{
			Path:        "soundwave.db",
			Driver:      store.DriverCGO,
			BusyTimeout: Duration(5 * time.Second),
		},
		Log: Log{
			Level:  "info",
			Format: FormatConsole,
		},
	}
}

// Load reads the file at path over the defaults. Keys absent from the file
// keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated fields.
func (c Config) Validate() error {
	var errs []error
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	switch c.Database.Driver {
	case store.DriverCGO, store.DriverPureGo:
	default:
		errs = append(errs, fmt.Errorf("database.driver %q must be %q or %q",
			c.Database.Driver, store.DriverCGO, store.DriverPureGo))
	}
	if c.Database.BusyTimeout < 0 {
		errs = append(errs, errors.New("database.busy_timeout must not be negative"))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q must be debug, info, warn or error", c.Log.Level))
	}
	switch c.Log.Format {
	case FormatConsole, FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be %q or %q", c.Log.Format, FormatConsole, FormatJSON))
	}
	return errors.Join(errs...)
}

// StoreOptions translates the database section into store options.
func (d Database) StoreOptions() []store.Option {
	opts := []store.Option{
		store.WithDriver(d.Driver),
		store.WithBusyTimeout(time.Duration(d.BusyTimeout)),
	}
	if d.Schema != "" {
		opts = append(opts, store.WithSchemaFile(d.Schema))
	}
	return opts
}

// Encode renders the configuration as TOML.
func (c Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}
