package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"costwise-hq/atlas/pkg/cli"
	"costwise-hq/atlas/pkg/config"
	"costwise-hq/atlas/pkg/orchestrator"
	"costwise-hq/atlas/pkg/telemetry/logging"
)

var costsFlags struct {
	from       string
	to         string
	currency   string
	noPrevious bool
	format     string
}

var costsCmd = &cobra.Command{
	Use:   "costs",
	Short: "Run one aggregation pass and print the result",
	Long: `Collect costs from all configured provider accounts once and print
the aggregated result to stdout.

Examples:
  # Current month to date, human-readable
  atlas costs

  # Explicit window as JSON
  atlas costs --from 2026-08-01 --to 2026-08-30 --format json

  # Totals in KRW
  atlas costs --currency KRW

  # Per-account CSV without previous-period deltas
  atlas costs --no-previous --format csv`,
	RunE: runCosts,
}

func init() {
	rootCmd.AddCommand(costsCmd)

	costsCmd.Flags().StringVar(&costsFlags.from, "from", "", "window start (YYYY-MM-DD)")
	costsCmd.Flags().StringVar(&costsFlags.to, "to", "", "window end (YYYY-MM-DD)")
	costsCmd.Flags().StringVar(&costsFlags.currency, "currency", "", "display currency code (defaults to the configured one)")
	costsCmd.Flags().BoolVar(&costsFlags.noPrevious, "no-previous", false, "skip previous-period deltas")
	costsCmd.Flags().StringVar(&costsFlags.format, "format", "text", "output format: text, json, csv")
}

func runCosts(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(costsFlags.format)
	if err != nil {
		return err
	}

	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	// One-shot commands log to stderr so stdout stays parseable.
	if _, err := logging.Setup(cfg.Telemetry.Logging, os.Stderr); err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	period, err := resolvePeriod(costsFlags.from, costsFlags.to)
	if err != nil {
		return err
	}

	app, err := buildApp(cfg, false)
	if err != nil {
		return cli.NewCommandError("costs", err)
	}
	defer app.close()

	ctx := cli.SetupSignalHandler()
	resp, err := app.orch.GetAggregatedCosts(ctx, period, costsFlags.currency, !costsFlags.noPrevious)
	if err != nil {
		return cli.NewCommandError("costs", err)
	}

	return cli.WriteCosts(os.Stdout, format, resp)
}

func resolvePeriod(from, to string) (orchestrator.Period, error) {
	if from == "" && to == "" {
		return orchestrator.MonthWindow(time.Now()), nil
	}
	if from == "" || to == "" {
		return orchestrator.Period{}, fmt.Errorf("--from and --to must be provided together")
	}

	start, err := time.Parse("2006-01-02", from)
	if err != nil {
		return orchestrator.Period{}, fmt.Errorf("invalid --from date %q: %w", from, err)
	}
	end, err := time.Parse("2006-01-02", to)
	if err != nil {
		return orchestrator.Period{}, fmt.Errorf("invalid --to date %q: %w", to, err)
	}
	if end.Before(start) {
		return orchestrator.Period{}, fmt.Errorf("--to must not precede --from")
	}
	return orchestrator.Period{From: start.UTC(), To: end.UTC()}, nil
}
