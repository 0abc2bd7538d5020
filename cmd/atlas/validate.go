package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"costwise-hq/atlas/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load a configuration file, apply defaults and environment overrides,
and report every validation failure.

Examples:
  # Validate the default config
  atlas validate

  # Validate a specific file
  atlas validate --config /etc/atlas/config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		var verr config.ValidationError
		if errors.As(err, &verr) {
			fmt.Printf("✗ Configuration invalid (%d error(s)):\n", len(verr.Errors))
			for _, fe := range verr.Errors {
				fmt.Printf("  %s: %s\n", fe.Field, fe.Message)
			}
			return fmt.Errorf("validation failed")
		}
		return err
	}

	fmt.Println("✓ Configuration valid")
	fmt.Printf("  Accounts: %d\n", len(cfg.AccountRefs()))
	fmt.Printf("  Collectors: %d configured\n", len(cfg.Collectors))
	fmt.Printf("  Display currency: %s\n", cfg.Currency.Display)
	fmt.Printf("  Budget backend: %s\n", cfg.Budget.Backend)
	if cfg.Scheduler.IsEnabled() {
		fmt.Printf("  Alert schedule: %s\n", cfg.Scheduler.CronSpec)
	}
	return nil
}
