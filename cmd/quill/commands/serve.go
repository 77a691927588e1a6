package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dyluth/quill/internal/api"
	"github.com/dyluth/quill/internal/config"
	"github.com/dyluth/quill/internal/logging"
	"github.com/dyluth/quill/internal/printer"
	"github.com/dyluth/quill/internal/store"
)

var (
	serveConfigPath string
	serveAddr       string
	serveBackend    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the posts API server",
	Long: `Run the posts REST API.

Configuration is read from quill.yml in the current directory (or --config),
then overridden by environment variables:

  PORT             listen port (":PORT")
  QUILL_STORE      memory, redis or postgres
  REDIS_URL        Redis connection URL
  QUILL_INSTANCE   Redis key namespace
  DATABASE_URL     PostgreSQL DSN
  QUILL_LOG_LEVEL  debug, info, warn or error

Flags take precedence over both.

Examples:
  # In-memory store on :3000
  quill serve

  # Redis-backed store
  QUILL_STORE=redis REDIS_URL=redis://localhost:6379 quill serve`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "", "Path to config file (default quill.yml if present)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address, e.g. :3000")
	serveCmd.Flags().StringVar(&serveBackend, "store", "", "Store backend: memory, redis or postgres")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadServeConfig()
	if err != nil {
		return printer.Error(
			"invalid configuration",
			err.Error(),
			[]string{fmt.Sprintf("Check %s or the QUILL_* environment variables", configPathOrDefault(serveConfigPath))},
		)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	postStore, cleanup, err := openStore(ctx, cfg.Store, store.Options{}, logger)
	if err != nil {
		return printer.ErrorWithContext(
			"failed to open post store",
			err.Error(),
			[][2]string{{"Backend", cfg.Store.Backend}},
			[]string{
				"Check the store settings in quill.yml",
				"Run with the in-memory store:\n  quill serve --store memory",
			},
		)
	}
	defer cleanup()

	srv := api.NewServer(postStore, api.ServerOptions{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Logger:          logger,
	})

	return runServer(ctx, srv, logger)
}

// runServer serves until ctx is cancelled or the listener fails.
func runServer(ctx context.Context, srv *api.Server, logger *zap.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.ListenAndServe()
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down api server")
		// The parent context is already done; shutdown gets its own deadline.
		if err := srv.Stop(context.Background()); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("failed to stop server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("api server stopped with error", zap.Error(err))
		return err
	}
	logger.Info("api server stopped")
	return nil
}

func loadServeConfig() (*config.QuillConfig, error) {
	cfg, err := config.Resolve(serveConfigPath, os.Getenv)
	if err != nil {
		return nil, err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if serveBackend != "" {
		cfg.Store.Backend = serveBackend
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func configPathOrDefault(path string) string {
	if path == "" {
		return config.DefaultPath
	}
	return path
}
