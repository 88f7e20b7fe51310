// Package config handles YAML configuration loading with environment variable expansion.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"go.yaml.in/yaml/v3"
)

// Cache backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config is the top-level service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Remote    RemoteConfig    `yaml:"remote"`
	Cache     CacheConfig     `yaml:"cache"`
	Database  DatabaseConfig  `yaml:"database"`
	Render    RenderConfig    `yaml:"render"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Workers   WorkersConfig   `yaml:"workers"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// RemoteConfig controls calls to the addons API.
type RemoteConfig struct {
	BaseURL            string        `yaml:"base_url"`
	Timeout            time.Duration `yaml:"timeout"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"` // disables TLS certificate checks
	DNSCache           bool          `yaml:"dns_cache"`
	DNSRefresh         time.Duration `yaml:"dns_refresh"`
}

// CacheConfig selects where fetched payloads are kept.
type CacheConfig struct {
	Backend string `yaml:"backend"`  // "memory" or "sqlite"
	MaxSize int    `yaml:"max_size"` // memory backend only
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"` // file path or ":memory:"
}

// RenderConfig holds view settings.
type RenderConfig struct {
	ViewsDir      string `yaml:"views_dir"`
	StylesheetURL string `yaml:"stylesheet_url"`
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	AdminKey string `yaml:"admin_key"` // required for cache invalidation when set
}

// LogConfig controls the default slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// TelemetryConfig holds observability settings.
type TelemetryConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// MetricsConfig controls Prometheus metrics.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// TracingConfig controls OpenTelemetry tracing.
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Endpoint   string  `yaml:"endpoint"`    // OTLP gRPC endpoint
	Insecure   bool    `yaml:"insecure"`    // plaintext gRPC
	SampleRate float64 `yaml:"sample_rate"` // 0.0 to 1.0
}

// WorkersConfig holds background worker settings.
type WorkersConfig struct {
	SweepInterval time.Duration `yaml:"sweep_interval"` // sqlite backend only
	WarmInterval  time.Duration `yaml:"warm_interval"`
	WarmSlugs     []string      `yaml:"warm_slugs"`
}

var envPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnv replaces ${VAR} patterns with environment variable values.
func expandEnv(data []byte) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		varName := string(match[2 : len(match)-1])
		if val, ok := os.LookupEnv(varName); ok {
			return []byte(val)
		}
		return match
	})
}

// Default returns the configuration used when a file sets nothing.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Remote: RemoteConfig{
			BaseURL:    "https://wpaddons.io/wp-json",
			Timeout:    5 * time.Second,
			DNSCache:   true,
			DNSRefresh: 5 * time.Minute,
		},
		Cache: CacheConfig{
			Backend: BackendSQLite,
			MaxSize: 10_000,
		},
		Database: DatabaseConfig{
			DSN: "wpaddons.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Workers: WorkersConfig{
			SweepInterval: time.Hour,
			WarmInterval:  5 * time.Hour,
		},
	}
}

// Load reads and parses a YAML config file, expanding environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	data = expandEnv(data)

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate reports every inconsistent setting.
func (c *Config) Validate() error {
	var errs []error
	switch c.Cache.Backend {
	case BackendMemory:
		if c.Cache.MaxSize <= 0 {
			errs = append(errs, errors.New("cache.max_size must be positive"))
		}
	case BackendSQLite:
		if c.Database.DSN == "" {
			errs = append(errs, errors.New("database.dsn is required for the sqlite cache backend"))
		}
		if c.Workers.SweepInterval <= 0 {
			errs = append(errs, errors.New("workers.sweep_interval must be positive for the sqlite cache backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.backend %q: want %q or %q", c.Cache.Backend, BackendMemory, BackendSQLite))
	}
	if c.Remote.BaseURL == "" {
		errs = append(errs, errors.New("remote.base_url is required"))
	}
	if c.Remote.Timeout <= 0 {
		errs = append(errs, errors.New("remote.timeout must be positive"))
	}
	if c.Remote.DNSCache && c.Remote.DNSRefresh <= 0 {
		errs = append(errs, errors.New("remote.dns_refresh must be positive when dns_cache is on"))
	}
	if len(c.Workers.WarmSlugs) > 0 && c.Workers.WarmInterval <= 0 {
		errs = append(errs, errors.New("workers.warm_interval must be positive when warm_slugs is set"))
	}
	if c.Telemetry.Tracing.Enabled && c.Telemetry.Tracing.Endpoint == "" {
		errs = append(errs, errors.New("telemetry.tracing.endpoint is required when tracing is enabled"))
	}
	return errors.Join(errs...)
}
