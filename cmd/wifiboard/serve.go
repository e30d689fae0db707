package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/wifiboard"
	"github.com/jpalmerr/wifiboard/config"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 10 * time.Second
)

// serveCmd starts the WifiBoard dashboard server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard server",
	Long: `Start the WifiBoard dashboard server.

The server will:
  - Load configuration from the specified YAML file, or fall back to
    built-in defaults (port 8080, auto scanner) when no file is given
  - Start the WiFi monitoring engine (immediately when autostart is set,
    otherwise on the first start command from the dashboard)
  - Serve the dashboard UI on the configured port

The server runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  wifiboard serve
  wifiboard serve -c config.yaml
  wifiboard serve --config /etc/wifiboard/config.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("config", "c", "", "path to config file (defaults apply if omitted)")
}

func runServe(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configFile != "" {
		cfg, err = config.Load(configFile)
	} else {
		// no file: an empty document yields the validated defaults
		cfg, err = config.Parse(nil)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg.LogFile)
	logger.Info("config loaded",
		"scanner", cfg.Scanner,
		"autostart", cfg.Autostart,
		"tracked", len(cfg.Track),
	)
	logger.Info("starting server",
		"port", cfg.Port,
		"scan_interval", cfg.ScanInterval.Duration().String(),
	)

	// convert config to SDK options
	opts := append(config.BuildOptions(cfg), wifiboard.WithLogger(logger))

	wb, err := wifiboard.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create WifiBoard: %w", err)
	}

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// start server - blocks until context cancelled
	errChan := make(chan error, 1)
	go func() {
		errChan <- wb.Start(ctx)
	}()

	// wait for server to finish
	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, wait for graceful shutdown with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
