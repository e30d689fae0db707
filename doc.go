// Package wifiboard provides a lightweight, embeddable WiFi monitoring
// dashboard with live signal tracking and location-based prediction.
//
// WifiBoard is designed as an SDK-first library, allowing developers to
// embed a WiFi monitoring engine and its real-time dashboard in their own
// applications. Networks are discovered by scanning rather than configured
// up front; the engine tracks a selectable subset of them, keeps a rolling
// signal history per network, and broadcasts every change over Server-Sent
// Events. Configuration is composable via the functional options pattern.
//
// # Quick Start
//
// Create a board and start it with graceful shutdown:
//
//	wb, _ := wifiboard.New(wifiboard.WithTitle("Home WiFi"))
//
//	// Set up graceful shutdown on SIGINT/SIGTERM
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	wb.Start(ctx) // blocks until context is cancelled
//
// The dashboard is then available at http://localhost:8080, with a REST
// API under /api/ and an SSE event stream at /api/events.
//
// # Configuration
//
// WifiBoard uses the functional options pattern for configuration:
//
//	wb, err := wifiboard.New(
//	    wifiboard.WithTitle("Office WiFi"),
//	    wifiboard.WithPort(9090),
//	    wifiboard.WithScanInterval(5 * time.Second),
//	    wifiboard.WithHistorySize(120),
//	    wifiboard.WithAutostartTarget("OfficeNet-5G"),
//	)
//
// # Scanners
//
// Scans come from the platform WiFi tool by default (nmcli on Linux, netsh
// on Windows, airport on macOS), falling back to simulated data when no
// tool is available. The source is selectable:
//
//   - [WithSystemScanner]: the platform tool only, no fallback
//   - [WithSimulatedScanner]: generated demo networks
//   - [WithScanner]: any custom [Scanner] implementation
//
// # Prediction
//
// The predict API estimates signal strength at floor-plan coordinates from
// a trained model ([WithModelFile]) or directly from surveyed samples
// ([WithSurveyDB]). Without either, it falls back to basic signal math
// over a supplied strength value.
//
// # Architecture
//
// WifiBoard consists of several internal packages (under internal/):
//
//   - internal/scan: Platform scan tools, parsers, and the simulated source
//   - internal/monitor: The monitoring session, selection, and history
//   - internal/stream: Fan-out event hub feeding SSE clients and callbacks
//   - internal/server: HTTP server with REST API and Server-Sent Events
//   - internal/predict: Signal grading and location-based prediction
//   - internal/survey: SQLite-backed survey sample store and collector
//   - internal/metrics: Prometheus instrumentation
//   - dashboard: Embedded web UI assets
//
// The internal packages are not part of the public API and may change
// without notice. The library is designed for single-binary deployment
// using Go's embed directive for static assets.
package wifiboard
