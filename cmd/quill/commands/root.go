package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dyluth/quill/internal/apiclient"
)

var (
	version string
	commit  string
	date    string

	serverURL string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "Quill - a small blog post publishing service",
	Long: `Quill serves a JSON REST API for creating, reading, updating and
deleting blog posts, backed by memory, Redis or PostgreSQL.

Run "quill serve" to start the API, then use "quill posts" to manage
posts from the command line.`,
	Version: version,
	// Prevent silent success when unknown flags are passed to root command
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// We print formatted colored errors directly in the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	defaultServer := os.Getenv("QUILL_SERVER")
	if defaultServer == "" {
		defaultServer = apiclient.DefaultBaseURL
	}
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", defaultServer, "Quill API base URL (env QUILL_SERVER)")
}

// newClient builds an API client for the --server flag.
func newClient() (*apiclient.Client, error) {
	return apiclient.New(serverURL, nil)
}
