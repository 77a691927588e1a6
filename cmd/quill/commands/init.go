package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dyluth/quill/internal/printer"
	"github.com/dyluth/quill/internal/scaffold"
)

var (
	forceInit     bool
	initBackend   string
	initInstance  string
	initDSN       string
	initLogFormat string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a quill.yml in the current directory",
	Long: `Create quill.yml with default server, store and logging settings.

Use --store to pick the backend the generated file selects, and --force to
overwrite an existing quill.yml.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	// Note: Cannot use -f shorthand to stay consistent with other commands
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing quill.yml")
	initCmd.Flags().StringVar(&initBackend, "store", "memory", "Store backend: memory, redis or postgres")
	initCmd.Flags().StringVar(&initInstance, "instance", "", "Redis instance name (key namespace)")
	initCmd.Flags().StringVar(&initDSN, "dsn", "", "PostgreSQL DSN")
	initCmd.Flags().StringVar(&initLogFormat, "log-format", "", "Log format: json or console")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	// Check for existing files (unless --force)
	if !forceInit {
		if err := scaffold.CheckExisting(); err != nil {
			return printer.Error(
				"project already initialized",
				err.Error(),
				[]string{"Reinitialize:\n  quill init --force"},
			)
		}
	}

	opts := scaffold.Options{
		Force:       forceInit,
		Backend:     initBackend,
		Instance:    initInstance,
		PostgresDSN: initDSN,
		LogFormat:   initLogFormat,
	}
	if err := scaffold.Initialize(opts); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	scaffold.PrintSuccess(opts)
	return nil
}
