package scaffold

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/quill/internal/config"
)

func TestCheckExisting(t *testing.T) {
	t.Run("no existing files", func(t *testing.T) {
		chdir(t, t.TempDir())
		assert.NoError(t, CheckExisting())
	})

	t.Run("existing quill.yml", func(t *testing.T) {
		chdir(t, t.TempDir())
		require.NoError(t, os.WriteFile(config.DefaultPath, []byte("version: '1.0'"), 0644))

		err := CheckExisting()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "project already initialized")
		assert.Contains(t, err.Error(), "quill init --force")
	})
}
