package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = "quill.yml"

// Store backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// QuillConfig represents the top-level quill.yml configuration
type QuillConfig struct {
	Version string        `yaml:"version"`
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StoreConfig selects and configures the post store backend.
type StoreConfig struct {
	Backend  string         `yaml:"backend"` // memory, redis or postgres
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// RedisConfig is used when backend is "redis".
type RedisConfig struct {
	URL      string `yaml:"url"`
	Instance string `yaml:"instance"` // key namespace
}

// PostgresConfig is used when backend is "postgres".
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"max_conns,omitempty"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// Default returns the configuration used when no quill.yml is present.
func Default() *QuillConfig {
	return &QuillConfig{
		Version: "1.0",
		Server: ServerConfig{
			Addr:            ":3000",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			Backend: BackendMemory,
			Redis: RedisConfig{
				URL:      "redis://localhost:6379",
				Instance: "default",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate performs strict validation on the configuration
func (c *QuillConfig) Validate() error {
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	return c.Logging.Validate()
}

// Validate checks the listener address and timeouts.
func (s *ServerConfig) Validate() error {
	if s.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	for name, d := range map[string]time.Duration{
		"read_timeout":     s.ReadTimeout,
		"write_timeout":    s.WriteTimeout,
		"idle_timeout":     s.IdleTimeout,
		"shutdown_timeout": s.ShutdownTimeout,
	} {
		if d < 0 {
			return fmt.Errorf("server.%s must be >= 0, got %s", name, d)
		}
	}
	return nil
}

// Validate checks that the selected backend has what it needs.
func (s *StoreConfig) Validate() error {
	switch s.Backend {
	case BackendMemory:
		return nil
	case BackendRedis:
		if s.Redis.Instance == "" {
			return fmt.Errorf("store.redis.instance is required for the redis backend")
		}
		if err := ValidateInstanceName(s.Redis.Instance); err != nil {
			return fmt.Errorf("store.redis.instance: %w", err)
		}
		if _, err := s.Redis.Options(); err != nil {
			return err
		}
		return nil
	case BackendPostgres:
		if s.Postgres.DSN == "" {
			return fmt.Errorf("store.postgres.dsn is required for the postgres backend")
		}
		if s.Postgres.MaxConns < 0 {
			return fmt.Errorf("store.postgres.max_conns must be >= 0, got %d", s.Postgres.MaxConns)
		}
		return nil
	default:
		return fmt.Errorf("invalid store.backend: %q (must be 'memory', 'redis', or 'postgres')", s.Backend)
	}
}

// Options parses URL into go-redis client options.
func (r RedisConfig) Options() (*redis.Options, error) {
	if r.URL == "" {
		return nil, fmt.Errorf("store.redis.url is required for the redis backend")
	}
	opts, err := redis.ParseURL(r.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid store.redis.url: %w", err)
	}
	return opts, nil
}

// Validate checks the level name and encoder format.
func (l *LoggingConfig) Validate() error {
	if _, err := zapcore.ParseLevel(l.Level); err != nil {
		return fmt.Errorf("invalid logging.level: %q", l.Level)
	}
	if l.Format != "json" && l.Format != "console" {
		return fmt.Errorf("invalid logging.format: %q (must be 'json' or 'console')", l.Format)
	}
	return nil
}

// ApplyEnv overlays environment overrides onto c.
//
// Recognised variables: PORT, QUILL_STORE, REDIS_URL, QUILL_INSTANCE,
// DATABASE_URL, QUILL_LOG_LEVEL. Empty values are ignored.
func (c *QuillConfig) ApplyEnv(getenv func(string) string) error {
	if port := getenv("PORT"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n < 0 || n > 65535 {
			return fmt.Errorf("invalid PORT: %q", port)
		}
		c.Server.Addr = ":" + port
	}
	if v := getenv("QUILL_STORE"); v != "" {
		c.Store.Backend = v
	}
	if v := getenv("REDIS_URL"); v != "" {
		c.Store.Redis.URL = v
	}
	if v := getenv("QUILL_INSTANCE"); v != "" {
		c.Store.Redis.Instance = v
	}
	if v := getenv("DATABASE_URL"); v != "" {
		c.Store.Postgres.DSN = v
	}
	if v := getenv("QUILL_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// Load reads and validates quill.yml from the specified path.
// Keys missing from the file keep their Default values.
func Load(path string) (*QuillConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Resolve builds the effective configuration for a server process.
//
// An explicit path must exist. With an empty path, DefaultPath is used when
// present and Default otherwise. Environment overrides are applied last.
func Resolve(path string, getenv func(string) string) (*QuillConfig, error) {
	var (
		config *QuillConfig
		err    error
	)

	switch {
	case path != "":
		config, err = Load(path)
	default:
		config, err = Load(DefaultPath)
		if errors.Is(err, fs.ErrNotExist) {
			config, err = Default(), nil
		}
	}
	if err != nil {
		return nil, err
	}

	if err := config.ApplyEnv(getenv); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}
