// Package config loads taskplan configuration using Viper.
//
// Values are layered: built-in defaults, then a YAML file (an explicit path
// or $HOME/.taskplan/config.yaml), then TASKPLAN_* environment variables
// such as TASKPLAN_SERVER_PORT or TASKPLAN_STORAGE_DRIVER.
package config

import (
	stderrors "errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/felixgeelhaar/taskplan/internal/apikey"
	"github.com/felixgeelhaar/taskplan/internal/errors"
	"github.com/felixgeelhaar/taskplan/internal/log"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "TASKPLAN"

// Storage drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
)

// Config holds the application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" yaml:"scheduler"`
	Storage   StorageConfig   `mapstructure:"storage" yaml:"storage"`
	Auth      AuthConfig      `mapstructure:"auth" yaml:"auth"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Address         string        `mapstructure:"address" yaml:"address"`
	Port            int           `mapstructure:"port" yaml:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
}

// ListenAddress joins address and port.
func (s ServerConfig) ListenAddress() string {
	return fmt.Sprintf("%s:%d", s.Address, s.Port)
}

// LogConfig selects the log level and format.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// SchedulerConfig holds scheduling defaults.
type SchedulerConfig struct {
	DefaultDailyHours float64 `mapstructure:"default_daily_hours" yaml:"default_daily_hours"`
}

// StorageConfig selects the project store.
type StorageConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	Path   string `mapstructure:"path" yaml:"path"`
}

// AuthConfig lists the API keys accepted by the server.
type AuthConfig struct {
	Keys []KeyConfig `mapstructure:"keys" yaml:"keys"`
}

// KeyConfig is one accepted API key, stored as a bcrypt hash. Prefix is
// the clear-text start of the secret that lets the server skip comparing
// against unrelated hashes.
type KeyConfig struct {
	Owner  string   `mapstructure:"owner" yaml:"owner"`
	Prefix string   `mapstructure:"prefix" yaml:"prefix,omitempty"`
	Hash   string   `mapstructure:"hash" yaml:"hash"`
	Scopes []string `mapstructure:"scopes" yaml:"scopes,omitempty"`
}

// TelemetryConfig controls tracing export.
type TelemetryConfig struct {
	Enabled    bool    `mapstructure:"enabled" yaml:"enabled"`
	Endpoint   string  `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure   bool    `mapstructure:"insecure" yaml:"insecure"`
	SampleRate float64 `mapstructure:"sample_rate" yaml:"sample_rate"`
}

// DefaultDir returns $HOME/.taskplan.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".taskplan"), nil
}

// Load reads configuration from the file at configPath (or the default
// location when empty) and the environment. A missing default file is not
// an error; a missing explicit file is.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		dir, err := DefaultDir()
		if err != nil {
			return nil, errors.NewConfigInvalidError("cannot locate home directory", err)
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case stderrors.As(err, &notFound):
			// defaults and environment only
		case configPath != "" && stderrors.Is(err, os.ErrNotExist):
			return nil, errors.NewFileNotFoundError(configPath)
		default:
			return nil, errors.NewConfigInvalidError("failed to read config file", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.NewConfigInvalidError("failed to decode config", err)
	}

	cfg.Storage.Path = expandHome(cfg.Storage.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration without reading any file.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	dir, err := DefaultDir()
	if err != nil {
		dir = ".taskplan"
	}

	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("scheduler.default_daily_hours", 8.0)

	v.SetDefault("storage.driver", DriverMemory)
	v.SetDefault("storage.path", filepath.Join(dir, "projects.json"))

	v.SetDefault("auth.keys", []KeyConfig{})

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.insecure", false)
	v.SetDefault("telemetry.sample_rate", 1.0)
}

func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// Validate reports every invalid setting in one CONFIG-001 error.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.ShutdownTimeout < 0 {
		problems = append(problems, "server.shutdown_timeout must not be negative")
	}

	if _, err := log.LookupLevel(c.Log.Level); err != nil {
		problems = append(problems, "log.level: "+err.Error())
	}
	if _, err := log.LookupFormat(c.Log.Format); err != nil {
		problems = append(problems, "log.format: "+err.Error())
	}

	hours := c.Scheduler.DefaultDailyHours
	if math.IsNaN(hours) || hours <= 0 || hours > 24 {
		problems = append(problems, fmt.Sprintf("scheduler.default_daily_hours must be in (0, 24], got %v", hours))
	}

	switch c.Storage.Driver {
	case DriverMemory:
	case DriverFile:
		if c.Storage.Path == "" {
			problems = append(problems, "storage.path is required for the file driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("storage.driver must be %q or %q, got %q", DriverMemory, DriverFile, c.Storage.Driver))
	}

	for i, key := range c.Auth.Keys {
		if key.Owner == "" {
			problems = append(problems, fmt.Sprintf("auth.keys[%d].owner is required", i))
		}
		if key.Hash == "" {
			problems = append(problems, fmt.Sprintf("auth.keys[%d].hash is required", i))
		}
		if key.Prefix != "" && apikey.LookupPrefix(key.Prefix) != key.Prefix {
			problems = append(problems, fmt.Sprintf("auth.keys[%d].prefix %q is not a key lookup prefix", i, key.Prefix))
		}
		for _, scope := range key.Scopes {
			if scope != apikey.ScopeRead && scope != apikey.ScopeWrite {
				problems = append(problems, fmt.Sprintf("auth.keys[%d] has unknown scope %q", i, scope))
			}
		}
	}

	if r := c.Telemetry.SampleRate; r < 0 || r > 1 {
		problems = append(problems, fmt.Sprintf("telemetry.sample_rate must be in [0, 1], got %v", r))
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.NewConfigInvalidError(strings.Join(problems, "; "), nil).
		WithSuggestions(problems...)
}

// Save writes cfg as YAML to path, creating parent directories.
func Save(cfg *Config, path string) error {
	v := viper.New()

	v.Set("server.address", cfg.Server.Address)
	v.Set("server.port", cfg.Server.Port)
	v.Set("server.shutdown_timeout", cfg.Server.ShutdownTimeout.String())
	v.Set("server.read_timeout", cfg.Server.ReadTimeout.String())
	v.Set("server.write_timeout", cfg.Server.WriteTimeout.String())
	v.Set("server.idle_timeout", cfg.Server.IdleTimeout.String())
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)
	v.Set("scheduler.default_daily_hours", cfg.Scheduler.DefaultDailyHours)
	v.Set("storage.driver", cfg.Storage.Driver)
	v.Set("storage.path", cfg.Storage.Path)
	v.Set("auth.keys", keyMaps(cfg.Auth.Keys))
	v.Set("telemetry.enabled", cfg.Telemetry.Enabled)
	v.Set("telemetry.endpoint", cfg.Telemetry.Endpoint)
	v.Set("telemetry.insecure", cfg.Telemetry.Insecure)
	v.Set("telemetry.sample_rate", cfg.Telemetry.SampleRate)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeDirectoryFailed, "failed to create config directory", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to write config file", err)
	}
	return nil
}

// keyMaps converts keys to plain maps so the YAML writer emits snake_case keys.
func keyMaps(keys []KeyConfig) []map[string]any {
	out := make([]map[string]any, 0, len(keys))
	for _, k := range keys {
		m := map[string]any{"owner": k.Owner, "hash": k.Hash}
		if k.Prefix != "" {
			m["prefix"] = k.Prefix
		}
		if len(k.Scopes) > 0 {
			m["scopes"] = k.Scopes
		}
		out = append(out, m)
	}
	return out
}
