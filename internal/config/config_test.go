package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefault_IsValid(t *testing.T) {
	config := Default()
	require.NoError(t, config.Validate())
	assert.Equal(t, ":3000", config.Server.Addr)
	assert.Equal(t, BackendMemory, config.Store.Backend)
	assert.Equal(t, "info", config.Logging.Level)
}

func TestLoad_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "quill.yml")

	validConfig := `version: "1.0"
server:
  addr: ":8080"
  read_timeout: 5s
store:
  backend: redis
  redis:
    url: "redis://cache:6379/2"
    instance: "blog"
logging:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(configPath, []byte(validConfig), 0644))

	config, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, ":8080", config.Server.Addr)
	assert.Equal(t, 5*time.Second, config.Server.ReadTimeout)
	assert.Equal(t, 10*time.Second, config.Server.WriteTimeout, "unset keys keep defaults")
	assert.Equal(t, BackendRedis, config.Store.Backend)
	assert.Equal(t, "blog", config.Store.Redis.Instance)
	assert.Equal(t, "console", config.Logging.Format)

	opts, err := config.Store.Redis.Options()
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
}

func TestLoad_FileNotFound(t *testing.T) {
	config, err := Load("/nonexistent/quill.yml")
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "quill.yml")

	invalidYAML := `version: "1.0"
server:
  - this is invalid
    yaml syntax
`
	require.NoError(t, os.WriteFile(configPath, []byte(invalidYAML), 0644))

	config, err := Load(configPath)
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *QuillConfig)
		wantErr string
	}{
		{"unsupported version", func(c *QuillConfig) { c.Version = "2.0" }, "unsupported version: 2.0"},
		{"empty addr", func(c *QuillConfig) { c.Server.Addr = "" }, "server.addr is required"},
		{"negative timeout", func(c *QuillConfig) { c.Server.IdleTimeout = -time.Second }, "server.idle_timeout must be >= 0"},
		{"unknown backend", func(c *QuillConfig) { c.Store.Backend = "sqlite" }, "invalid store.backend"},
		{"redis without instance", func(c *QuillConfig) {
			c.Store.Backend = BackendRedis
			c.Store.Redis.Instance = ""
		}, "store.redis.instance is required"},
		{"redis bad instance", func(c *QuillConfig) {
			c.Store.Backend = BackendRedis
			c.Store.Redis.Instance = "Blog:Main"
		}, "invalid instance name"},
		{"redis without url", func(c *QuillConfig) {
			c.Store.Backend = BackendRedis
			c.Store.Redis.URL = ""
		}, "store.redis.url is required"},
		{"redis bad url", func(c *QuillConfig) {
			c.Store.Backend = BackendRedis
			c.Store.Redis.URL = "http://nope"
		}, "invalid store.redis.url"},
		{"postgres without dsn", func(c *QuillConfig) { c.Store.Backend = BackendPostgres }, "store.postgres.dsn is required"},
		{"postgres negative pool", func(c *QuillConfig) {
			c.Store.Backend = BackendPostgres
			c.Store.Postgres.DSN = "postgres://localhost/quill"
			c.Store.Postgres.MaxConns = -1
		}, "max_conns must be >= 0"},
		{"bad level", func(c *QuillConfig) { c.Logging.Level = "loud" }, "invalid logging.level"},
		{"bad format", func(c *QuillConfig) { c.Logging.Format = "xml" }, "invalid logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(config)
			err := config.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	config := Default()
	err := config.ApplyEnv(envMap(map[string]string{
		"PORT":            "8081",
		"QUILL_STORE":     "postgres",
		"REDIS_URL":       "redis://other:6379",
		"QUILL_INSTANCE":  "staging",
		"DATABASE_URL":    "postgres://u:p@db/quill",
		"QUILL_LOG_LEVEL": "warn",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":8081", config.Server.Addr)
	assert.Equal(t, BackendPostgres, config.Store.Backend)
	assert.Equal(t, "redis://other:6379", config.Store.Redis.URL)
	assert.Equal(t, "staging", config.Store.Redis.Instance)
	assert.Equal(t, "postgres://u:p@db/quill", config.Store.Postgres.DSN)
	assert.Equal(t, "warn", config.Logging.Level)
	assert.NoError(t, config.Validate())
}

func TestApplyEnv_RejectsBadPort(t *testing.T) {
	for _, port := range []string{"abc", "70000", "-1"} {
		config := Default()
		err := config.ApplyEnv(envMap(map[string]string{"PORT": port}))
		require.Error(t, err, port)
		assert.Contains(t, err.Error(), "invalid PORT")
	}
}

func TestResolve(t *testing.T) {
	t.Run("falls back to defaults without a config file", func(t *testing.T) {
		chdir(t, t.TempDir())

		config, err := Resolve("", envMap(nil))
		require.NoError(t, err)
		assert.Equal(t, ":3000", config.Server.Addr)
	})

	t.Run("reads quill.yml from the working directory", func(t *testing.T) {
		dir := t.TempDir()
		chdir(t, dir)
		require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultPath), []byte("version: \"1.0\"\nserver:\n  addr: \":9000\"\n"), 0644))

		config, err := Resolve("", envMap(nil))
		require.NoError(t, err)
		assert.Equal(t, ":9000", config.Server.Addr)
	})

	t.Run("explicit path must exist", func(t *testing.T) {
		_, err := Resolve(filepath.Join(t.TempDir(), "missing.yml"), envMap(nil))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config")
	})

	t.Run("env overrides are validated", func(t *testing.T) {
		chdir(t, t.TempDir())

		_, err := Resolve("", envMap(map[string]string{"QUILL_STORE": "postgres"}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "store.postgres.dsn is required")
	})
}
