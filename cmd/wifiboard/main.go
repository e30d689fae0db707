// Package main is the entry point for the wifiboard CLI.
//
// WifiBoard can be run either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary approach,
// plus the offline survey and model-training workflow.
//
// Usage:
//
//	wifiboard serve -c config.yaml     # Start the dashboard
//	wifiboard validate -c config.yaml  # Validate configuration
//	wifiboard scan                     # One-shot network scan
//	wifiboard collect --db survey.db   # Collect survey samples
//	wifiboard export --db survey.db    # Export survey data as CSV
//	wifiboard train --db survey.db     # Train a prediction model
//	wifiboard version                  # Show version info
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// verbose is bound to the persistent --verbose flag and lowers the log
// level to debug for every subcommand.
var verbose bool

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "wifiboard",
	Short: "A real-time WiFi signal monitoring dashboard",
	Long: `WifiBoard is a real-time WiFi signal monitoring dashboard.

It scans visible networks at configurable intervals, tracks the ones you
select, and streams per-network signal history to a web UI with
Server-Sent Events for live updates. Collected site-survey data can train
a model that predicts signal strength at floor-plan coordinates.

Quick start:
  1. Create a config file (wifiboard.yaml)
  2. Run: wifiboard serve -c wifiboard.yaml
  3. Open http://localhost:8080 in your browser

Example config:
  port: 8080
  scan_interval: 2s
  scanner: auto
  autostart: true
  mode: multi`,
	SilenceUsage: true,
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// newLogger creates a JSON logger for CLI use. An empty logFile logs to
// stderr, keeping stdout free for command output; otherwise log lines go
// to a size-rotated file.
func newLogger(logFile string) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	if logFile != "" {
		w = &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this wifiboard binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wifiboard %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}
