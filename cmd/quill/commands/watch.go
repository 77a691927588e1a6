package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dyluth/quill/internal/config"
	"github.com/dyluth/quill/internal/printer"
	"github.com/dyluth/quill/internal/store"
	"github.com/dyluth/quill/internal/store/redisstore"
	"github.com/dyluth/quill/internal/watch"
)

var (
	watchConfigPath   string
	watchRedisURL     string
	watchInstanceName string
	watchOutputFormat string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream post changes from a Redis-backed server",
	Long: `Subscribe to the post event channel of a Redis-backed quill instance and
print every create, update, patch and delete as it happens.

Connection settings come from quill.yml and REDIS_URL / QUILL_INSTANCE,
overridden by --redis-url and --instance.

Output Formats:
  default - One human-readable line per event
  json    - Line-delimited JSON events

Examples:
  quill watch
  quill watch --instance blog --output=json | jq .post.title`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchConfigPath, "config", "c", "", "Path to config file (default quill.yml if present)")
	watchCmd.Flags().StringVar(&watchRedisURL, "redis-url", "", "Redis URL (overrides config)")
	watchCmd.Flags().StringVarP(&watchInstanceName, "instance", "n", "", "Instance name used as the key namespace")
	watchCmd.Flags().StringVarP(&watchOutputFormat, "output", "o", "default", "Output format: default or json")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	var format watch.OutputFormat
	switch watchOutputFormat {
	case "default":
		format = watch.OutputFormatDefault
	case "json":
		format = watch.OutputFormatJSON
	default:
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", watchOutputFormat),
			[]string{"Valid formats: default, json"},
		)
	}

	redisCfg, err := resolveWatchRedis()
	if err != nil {
		return printer.Error(
			"invalid Redis settings",
			err.Error(),
			[]string{"Pass --redis-url redis://host:6379 and --instance <name>"},
		)
	}

	redisOpts, err := redisCfg.Options()
	if err != nil {
		return printer.Error("invalid Redis URL", err.Error(), nil)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := redisstore.New(redisOpts, redisCfg.Instance, store.Options{})
	if err != nil {
		return fmt.Errorf("failed to create redis store: %w", err)
	}
	defer s.Close()

	if err := s.Ping(ctx); err != nil {
		return printer.ErrorWithContext(
			"Redis connection failed",
			fmt.Sprintf("Could not connect to Redis at %s", redisOpts.Addr),
			[][2]string{{"Instance", redisCfg.Instance}},
			[]string{"Check that Redis is running and that the server uses the redis store"},
		)
	}

	sub, err := s.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to post events: %w", err)
	}
	defer sub.Close()

	if format == watch.OutputFormatDefault {
		printer.Info("Watching posts on instance '%s' (Ctrl+C to stop)\n", redisCfg.Instance)
	}
	return watch.Stream(ctx, sub, format, printer.Stdout, printer.Stderr)
}

func resolveWatchRedis() (config.RedisConfig, error) {
	cfg, err := config.Resolve(watchConfigPath, os.Getenv)
	if err != nil {
		return config.RedisConfig{}, err
	}

	rc := cfg.Store.Redis
	if watchRedisURL != "" {
		rc.URL = watchRedisURL
	}
	if watchInstanceName != "" {
		rc.Instance = watchInstanceName
	}
	if err := config.ValidateInstanceName(rc.Instance); err != nil {
		return rc, err
	}
	return rc, nil
}
