package scaffold

import (
	"fmt"
	"os"

	"github.com/dyluth/quill/internal/config"
)

// CheckExisting returns an error if quill.yml already exists in the current
// directory, nil otherwise.
func CheckExisting() error {
	if _, err := os.Stat(config.DefaultPath); err == nil {
		return fmt.Errorf("project already initialized\n\nFound existing: %s\n\nUse 'quill init --force' to reinitialize (this will overwrite existing configuration)", config.DefaultPath)
	}
	return nil
}
