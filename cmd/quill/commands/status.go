package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/dyluth/quill/internal/apiclient"
	"github.com/dyluth/quill/internal/printer"
	"github.com/dyluth/quill/internal/watch"
)

var (
	statusWait     time.Duration
	statusInterval time.Duration
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check that a quill server is up",
	Long: `Call /api/health on the target server and report its uptime.

With --wait, keep polling until the server is healthy or the timeout passes.
Useful in scripts that start "quill serve" in the background.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().DurationVar(&statusWait, "wait", 0, "Poll until healthy, up to this long (e.g. 30s)")
	statusCmd.Flags().DurationVar(&statusInterval, "interval", 500*time.Millisecond, "Polling interval for --wait")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := newClient()
	if err != nil {
		return invalidServerError(err)
	}

	var health apiclient.Health
	check := func(ctx context.Context) error {
		h, err := client.Health(ctx)
		health = h
		return err
	}

	if statusWait > 0 {
		err = watch.WaitHealthy(ctx, check, statusInterval, statusWait)
	} else {
		err = check(ctx)
	}
	if err != nil {
		return printer.ErrorWithContext(
			"server is not healthy",
			err.Error(),
			[][2]string{{"Server", client.BaseURL()}},
			[]string{
				"Start the server:\n  quill serve",
				"Wait for startup:\n  quill status --wait 30s",
			},
		)
	}

	uptime := time.Duration(health.Uptime * float64(time.Second)).Round(time.Second)
	printer.Success("Server %s is %s\n", client.BaseURL(), health.Status)
	printer.Muted("  uptime %s, server time %s\n", uptime, health.Timestamp)
	return nil
}
