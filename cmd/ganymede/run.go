package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/alerting"
	"mercator-hq/ganymede/pkg/authlog"
	"mercator-hq/ganymede/pkg/authlog/storage"
	"mercator-hq/ganymede/pkg/backend"
	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/security/auth"
	"mercator-hq/ganymede/pkg/server"
	"mercator-hq/ganymede/pkg/telemetry"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Ganymede admin server",
	Long: `Start the admission-control components and the admin HTTP server.

Examples:
  # Start with default config
  ganymede run

  # Start with custom config
  ganymede run --config /etc/ganymede/config.yaml

  # Override listen address
  ganymede run --listen 0.0.0.0:9090

  # Validate config without starting
  ganymede run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	if _, err := telemetry.SetupLogging(cfg.Telemetry.Logging, os.Stdout); err != nil {
		return err
	}

	if runFlags.dryRun {
		fmt.Println("configuration valid")
		return nil
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Key registry and validator.
	store, err := auth.NewFileKeyStore(cfg.Auth.KeyFile)
	if err != nil {
		return fmt.Errorf("failed to load key registry: %w", err)
	}

	// Audit trail backend and authentication log.
	auditBackend, err := storage.NewBackend(cfg.AuthLog.Audit)
	if err != nil {
		return fmt.Errorf("failed to initialize audit storage: %w", err)
	}
	authLog := authlog.NewAuthLogger(cfg.AuthLog, auditBackend)
	defer authLog.Close()

	// Alerter with configured notification handlers.
	alerter := alerting.NewAlerter(cfg.Alerts)
	defer alerter.Close()
	if cfg.Alerts.Notifications.Console {
		alerter.AddHandler(alerting.NewConsoleHandler())
	}
	if cfg.Alerts.Notifications.WebhookURL != "" {
		alerter.AddHandler(alerting.NewWebhookHandler(
			cfg.Alerts.Notifications.WebhookURL,
			cfg.Alerts.Notifications.WebhookTimeout,
		))
	}

	scheduler := alerting.NewPruneScheduler(alerter)
	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start alert pruning: %w", err)
	}
	defer scheduler.Stop()

	// Admission manager.
	manager := auth.NewManager(cfg, store, backend.SessionFactory(auth.HashKey), alerter, authLog)
	defer manager.Close()

	// Reload the registry on file change and drop stale caches.
	if cfg.Auth.WatchKeyFile {
		watcher, err := auth.NewKeyFileWatcher(store, manager.ClearCaches)
		if err != nil {
			return fmt.Errorf("failed to start key file watcher: %w", err)
		}
		go func() {
			if err := watcher.Watch(ctx); err != nil {
				slog.Error("key file watcher exited", "error", err)
			}
		}()
	}

	return server.NewServer(cfg, manager, alerter, authLog).Start(ctx)
}
