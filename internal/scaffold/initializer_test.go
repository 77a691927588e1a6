package scaffold

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/quill/internal/config"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name        string
		opts        Options
		existing    string
		wantBackend string
		wantErr     bool
	}{
		{
			name:        "fresh initialization uses memory store",
			opts:        Options{},
			wantBackend: config.BackendMemory,
		},
		{
			name:        "redis backend with instance",
			opts:        Options{Backend: config.BackendRedis, Instance: "blog"},
			wantBackend: config.BackendRedis,
		},
		{
			name:        "force replaces existing config",
			opts:        Options{Force: true, Backend: config.BackendPostgres},
			existing:    "old content: [",
			wantBackend: config.BackendPostgres,
		},
		{
			name:    "invalid backend is rejected after rendering",
			opts:    Options{Backend: "sqlite"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			if tt.existing != "" {
				require.NoError(t, os.WriteFile(config.DefaultPath, []byte(tt.existing), 0644))
			}

			err := Initialize(tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			cfg, err := config.Load(config.DefaultPath)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBackend, cfg.Store.Backend)
			assert.Equal(t, ":3000", cfg.Server.Addr)
			if tt.opts.Instance != "" {
				assert.Equal(t, tt.opts.Instance, cfg.Store.Redis.Instance)
			}
		})
	}
}

func TestRenderConfig_Defaults(t *testing.T) {
	content, err := renderConfig(Options{}.withDefaults())
	require.NoError(t, err)

	s := string(content)
	assert.Contains(t, s, "backend: memory")
	assert.Contains(t, s, "instance: default")
	assert.Contains(t, s, "format: json")
}
