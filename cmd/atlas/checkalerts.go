package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"costwise-hq/atlas/pkg/cli"
	"costwise-hq/atlas/pkg/config"
	"costwise-hq/atlas/pkg/telemetry/logging"
)

var checkAlertsFlags struct {
	tenant string
	all    bool
	format string
}

var checkAlertsCmd = &cobra.Command{
	Use:   "check-alerts",
	Short: "Evaluate budget thresholds once and print alerts",
	Long: `Collect current-month costs, evaluate them against the stored budget
settings, and print any threshold crossings.

The command exits 0 whether or not alerts fire; it is meant for ad-hoc
checks and external schedulers.

Examples:
  # Check the default tenant
  atlas check-alerts

  # Check one tenant as JSON
  atlas check-alerts --tenant acme --format json

  # Sweep every tenant with stored settings
  atlas check-alerts --all`,
	RunE: runCheckAlerts,
}

func init() {
	rootCmd.AddCommand(checkAlertsCmd)

	checkAlertsCmd.Flags().StringVar(&checkAlertsFlags.tenant, "tenant", "default", "tenant to evaluate")
	checkAlertsCmd.Flags().BoolVar(&checkAlertsFlags.all, "all", false, "evaluate every tenant with stored settings")
	checkAlertsCmd.Flags().StringVar(&checkAlertsFlags.format, "format", "text", "output format: text, json")
}

func runCheckAlerts(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(checkAlertsFlags.format)
	if err != nil {
		return err
	}

	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	if _, err := logging.Setup(cfg.Telemetry.Logging, os.Stderr); err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	app, err := buildApp(cfg, false)
	if err != nil {
		return cli.NewCommandError("check-alerts", err)
	}
	defer app.close()

	ctx := cli.SetupSignalHandler()

	tenants := []string{checkAlertsFlags.tenant}
	if checkAlertsFlags.all {
		tenants, err = app.budgets.Tenants(ctx)
		if err != nil {
			return cli.NewCommandError("check-alerts", fmt.Errorf("failed to list tenants: %w", err))
		}
		if len(tenants) == 0 {
			fmt.Println("No tenants with stored budget settings.")
			return nil
		}
	}

	for _, tenant := range tenants {
		alerts, err := app.orch.CheckBudgetAlerts(ctx, tenant)
		if err != nil {
			return cli.NewCommandError("check-alerts", fmt.Errorf("tenant %s: %w", tenant, err))
		}
		if checkAlertsFlags.all {
			fmt.Printf("Tenant %s:\n", tenant)
		}
		if err := cli.WriteAlerts(os.Stdout, format, alerts); err != nil {
			return err
		}
	}
	return nil
}
