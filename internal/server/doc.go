// Package server provides the HTTP server for the WifiBoard dashboard and API.
//
// This package is internal to WifiBoard and handles all HTTP concerns:
//
//   - Dashboard serving: Serves the embedded HTML/CSS/JS dashboard at "/"
//   - REST API: JSON endpoints under "/api/" mirroring the engine's command
//     and read surface (scan, monitor lifecycle, selection, history, predict)
//   - Server-Sent Events: Real-time engine events at "/api/events"
//   - Prometheus metrics at "/metrics"
//
// Routing is handled by chi; handlers only translate between HTTP and the
// monitor session. The server supports graceful shutdown via context
// cancellation, with a 5-second timeout for in-flight requests.
//
// Users of the wifiboard library should not need to interact with this
// package directly. The server is started automatically by [wifiboard.WifiBoard.Start].
package server
