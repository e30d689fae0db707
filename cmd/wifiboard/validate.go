package main

import (
	"fmt"
	"strings"

	"github.com/jpalmerr/wifiboard/config"
	"github.com/spf13/cobra"
)

// validateCmd validates a config file without starting the server.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a WifiBoard configuration file without starting the server.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  wifiboard validate -c config.yaml
  wifiboard validate --config /etc/wifiboard/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Port:          %d\n", cfg.Port)
	fmt.Printf("  Scan interval: %s\n", cfg.ScanInterval.Duration())
	fmt.Printf("  Scan timeout:  %s\n", cfg.ScanTimeout.Duration())
	fmt.Printf("  History size:  %d\n", cfg.HistorySize)
	fmt.Printf("  Scanner:       %s\n", cfg.Scanner)

	if cfg.Autostart {
		tracked := "all visible networks"
		if len(cfg.Track) > 0 {
			tracked = strings.Join(cfg.Track, ", ")
		}
		fmt.Printf("  Autostart:     %s mode, tracking %s\n", cfg.Mode, tracked)
	}
	if cfg.SurveyDB != "" {
		fmt.Printf("  Survey DB:     %s (k=%d)\n", cfg.SurveyDB, cfg.KNNNeighbors)
	}
	if cfg.ModelFile != "" {
		fmt.Printf("  Model file:    %s\n", cfg.ModelFile)
	}

	return nil
}
