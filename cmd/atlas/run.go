package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"costwise-hq/atlas/pkg/cli"
	"costwise-hq/atlas/pkg/config"
	"costwise-hq/atlas/pkg/currency"
	"costwise-hq/atlas/pkg/scheduler"
	"costwise-hq/atlas/pkg/server"
	"costwise-hq/atlas/pkg/telemetry/health"
	"costwise-hq/atlas/pkg/telemetry/logging"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Atlas API server",
	Long: `Start the Atlas API server with the specified configuration.

The server aggregates costs from the configured provider accounts on
demand, serves budget settings and usage, and runs scheduled alert
sweeps.

Examples:
  # Start with default config
  atlas run

  # Start with custom config
  atlas run --config /etc/atlas/config.yaml

  # Override listen address
  atlas run --listen 0.0.0.0:8080

  # Validate config without starting server
  atlas run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	if _, err := logging.Setup(cfg.Telemetry.Logging, os.Stdout); err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Atlas v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	// Wire the engine
	app, err := buildApp(cfg, true)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer app.close()

	fmt.Printf("✓ Collectors initialized (%d providers, %d accounts)\n",
		len(app.registry.Providers()), len(cfg.AccountRefs()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Watch the exchange rates file for changes
	if cfg.Currency.WatchEnabled() {
		watcher, err := currency.NewWatcher(cfg.Currency.RatesFile, app.converter, logging.Component("currency"))
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("failed to watch rates file: %w", err))
		}
		go func() {
			if err := watcher.Watch(ctx); err != nil {
				slog.Warn("rates watcher stopped", "error", err)
			}
		}()
		defer watcher.Stop()
		fmt.Printf("✓ Watching exchange rates: %s\n", cfg.Currency.RatesFile)
	}

	// Start scheduled alert sweeps
	if cfg.Scheduler.IsEnabled() {
		sched := scheduler.New(app.orch, app.budgets, nil, cfg.Scheduler.CronSpec)
		if err := sched.Start(ctx); err != nil {
			return cli.NewCommandError("run", fmt.Errorf("failed to start alert scheduler: %w", err))
		}
		defer sched.Stop()
		fmt.Printf("✓ Alert scheduler started (%s)\n", cfg.Scheduler.CronSpec)
	}

	// Readiness checks
	checker := health.New(0)
	checker.RegisterCheck("budget_store", func(ctx context.Context) error {
		_, err := app.store.Tenants(ctx)
		return err
	})
	checker.RegisterCheck("exchange_rates", func(ctx context.Context) error {
		if !app.converter.Supported(cfg.Currency.Display) {
			return fmt.Errorf("no exchange rate for display currency %s", cfg.Currency.Display)
		}
		return nil
	})

	serverOpts := server.Options{
		Orchestrator: app.orch,
		Budgets:      app.budgets,
		Checker:      checker,
	}
	if app.metrics != nil {
		serverOpts.Metrics = app.metrics
		serverOpts.MetricsPath = cfg.Telemetry.Metrics.Path
	}
	srv := server.NewServer(&cfg.Server, serverOpts)

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting HTTP server", "address", cfg.Server.ListenAddress)
		if err := srv.Start(ctx); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Server.ListenAddress)
	if app.metrics != nil {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for shutdown signal or server error
	sigChan := cli.WaitForShutdown()

	select {
	case err := <-errChan:
		return cli.NewCommandError("run", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
			return cli.NewCommandError("run", err)
		}

		fmt.Println("✓ Server stopped")
		return nil
	}
}
