// Package config loads animevent configuration from defaults, an optional
// YAML file and ANIMEVENT_ environment variables, in that order of
// precedence (later wins).
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/roach88/animevent/internal/decoder"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "ANIMEVENT_"

// ConfigPathEnvVar overrides the config file search.
const ConfigPathEnvVar = EnvPrefix + "CONFIG"

// DefaultConfigPaths are searched in order when no path is given.
var DefaultConfigPaths = []string{
	"animevent.yaml",
	"animevent.yml",
}

// Config is the complete configuration.
type Config struct {
	Store   StoreConfig   `koanf:"store"`
	Tracks  TracksConfig  `koanf:"tracks"`
	Logging LoggingConfig `koanf:"logging"`
	IDs     IDConfig      `koanf:"ids"`
}

// StoreConfig locates the SQLite track database.
type StoreConfig struct {
	Path string `koanf:"path"`
}

// TracksConfig controls directory watching.
type TracksConfig struct {
	Dir          string        `koanf:"dir"`
	PollInterval time.Duration `koanf:"poll_interval"`
	Debounce     time.Duration `koanf:"debounce"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// IDConfig selects how event identifiers are generated.
type IDConfig struct {
	Scheme string `koanf:"scheme"` // uuidv7 | sequence
	Prefix string `koanf:"prefix"` // sequence scheme only
}

func defaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Path: "animevent.db",
		},
		Tracks: TracksConfig{
			Dir:          "tracks",
			PollInterval: 500 * time.Millisecond,
			Debounce:     100 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		IDs: IDConfig{
			Scheme: "uuidv7",
			Prefix: "evt",
		},
	}
}

// Default returns the built-in defaults.
func Default() *Config {
	return defaultConfig()
}

// Load builds the configuration. path names a YAML file to load; when it
// is empty, ANIMEVENT_CONFIG names it instead. A named file that does not
// exist is an error. With neither set, DefaultConfigPaths are searched and
// finding none is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = os.Getenv(ConfigPathEnvVar)
	}
	if path == "" {
		path = findConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

var envMappings = map[string]string{
	"db_path":       "store.path",
	"track_dir":     "tracks.dir",
	"poll_interval": "tracks.poll_interval",
	"debounce":      "tracks.debounce",
	"log_level":     "logging.level",
	"log_format":    "logging.format",
	"id_scheme":     "ids.scheme",
	"id_prefix":     "ids.prefix",
}

// envTransformFunc maps ANIMEVENT_DB_PATH and friends onto config keys.
// Unknown variables map to "" and are ignored.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return envMappings[key]
}

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return fmt.Errorf("store.path must not be empty")
	}
	if c.Tracks.PollInterval <= 0 {
		return fmt.Errorf("tracks.poll_interval must be positive, got %s", c.Tracks.PollInterval)
	}
	if c.Tracks.Debounce < 0 {
		return fmt.Errorf("tracks.debounce must not be negative, got %s", c.Tracks.Debounce)
	}
	if _, err := parseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	switch c.IDs.Scheme {
	case "uuidv7", "sequence":
	default:
		return fmt.Errorf("ids.scheme must be uuidv7 or sequence, got %q", c.IDs.Scheme)
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("logging.level must be debug, info, warn or error, got %q", s)
	}
}

// NewLogger builds a logger writing to w. verbose forces debug level.
func (c LoggingConfig) NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level, err := parseLevel(c.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Generator returns the identifier generator the scheme names.
func (c IDConfig) Generator() decoder.IDGenerator {
	if c.Scheme == "sequence" {
		return decoder.NewSequenceGenerator(c.Prefix)
	}
	return decoder.UUIDv7Generator{}
}
