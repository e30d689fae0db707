package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/wifiboard"
)

func main() {
	// build a demo survey and train a model from it (see demo_data.go),
	// so the dashboard's location prediction works out of the box
	modelPath, err := seedDemoModel(context.Background())
	if err != nil {
		slog.Error("failed to seed demo model", "error", err)
		os.Exit(1)
	}

	wb, err := wifiboard.New(
		wifiboard.WithSimulatedScanner(),
		wifiboard.WithPort(8080),
		wifiboard.WithTitle("WifiBoard Demo"),
		wifiboard.WithScanInterval(2*time.Second),
		wifiboard.WithModelFile(modelPath),
		wifiboard.WithAutostart(),
		wifiboard.WithUpdateCallback(func(u wifiboard.Update) {
			if u.Quality < 30 {
				slog.Warn("weak signal", "ssid", u.SSID, "dbm", u.SignalDBm, "quality", u.Quality)
			}
		}),
	)
	if err != nil {
		slog.Error("failed to create wifiboard", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   WifiBoard Demo                                      ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Open http://localhost:8080 in your browser          ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   • simulated scanner (8 mock networks)               ║")
	fmt.Println("  ║   • monitoring autostarts on launch                   ║")
	fmt.Println("  ║   • location prediction from a demo model             ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := wb.Start(ctx); err != nil {
		slog.Error("wifiboard error", "error", err)
		os.Exit(1)
	}
}
