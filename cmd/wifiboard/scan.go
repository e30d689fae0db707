package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/wifiboard/config"
	"github.com/jpalmerr/wifiboard/internal/scan"
	"github.com/spf13/cobra"
)

// scanCmd performs a single scan and prints what is visible right now.
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for visible WiFi networks once",
	Long: `Scan for visible WiFi networks once and print the results.

This is a quick way to check what the monitoring engine would see, and to
verify that the platform scan tool works on this machine. Networks are
printed strongest signal first.

Example:
  wifiboard scan
  wifiboard scan --scanner simulated
  wifiboard scan --json | jq '.[].ssid'`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().String("scanner", config.ScannerAuto, "scan backend: auto, system, or simulated")
	scanCmd.Flags().Duration("timeout", 10*time.Second, "scan timeout")
	scanCmd.Flags().Bool("json", false, "print raw JSON instead of a table")
}

// newScanner maps a config scanner kind to a scan backend. The CLI shares
// the SDK's auto behavior: try the platform tool, fall back to simulated
// data when it is unavailable.
func newScanner(kind string) (scan.Scanner, error) {
	switch kind {
	case config.ScannerSystem:
		return scan.NewSystemScanner(), nil
	case config.ScannerSimulated:
		return scan.NewSimulatedScanner(), nil
	case config.ScannerAuto:
		return scan.NewFallbackScanner(scan.NewSystemScanner(), scan.NewSimulatedScanner(), newLogger("")), nil
	default:
		return nil, fmt.Errorf("scanner must be %q, %q, or %q, got %q",
			config.ScannerAuto, config.ScannerSystem, config.ScannerSimulated, kind)
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	kind, _ := cmd.Flags().GetString("scanner")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	asJSON, _ := cmd.Flags().GetBool("json")

	scanner, err := newScanner(kind)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	networks, err := scanner.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	scan.SortByStrength(networks)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(networks)
	}

	fmt.Printf("Found %d networks\n\n", len(networks))
	fmt.Printf("  %-28s %8s %8s %8s  %-8s %s\n",
		"SSID", "SIGNAL", "QUALITY", "CHANNEL", "BAND", "SECURITY")
	for _, n := range networks {
		fmt.Printf("  %-28s %5d dBm %7d%% %8d  %-8s %s\n",
			n.SSID, n.SignalDBm, n.Quality, n.Channel, n.Band, n.Security)
	}

	return nil
}
