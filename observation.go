package wifiboard

import (
	"context"
	"time"
)

// Observation is one sighting of a WiFi network: the signal measured for a
// single SSID at a single point in time.
//
// Observation is immutable after creation. It appears in two places in the
// public API: as the result type of custom [Scanner] implementations, and
// inside the [Update] values delivered to update callbacks.
type Observation struct {
	// SSID is the network name, used as the network's identifier
	// throughout the engine.
	SSID string

	// BSSID is the access point hardware address when the scan source
	// reports one. Empty otherwise.
	BSSID string

	// SignalDBm is the received signal strength in dBm. Typical values
	// range from -30 (excellent) down to -90 (unusable).
	SignalDBm int

	// Quality is the derived signal quality on a 0-100 scale.
	Quality int

	// Channel is the WiFi channel number, 0 when unknown.
	Channel int

	// Band is the human-readable band label, e.g. "2.4 GHz (Ch 6)".
	Band string

	// Security is the security label reported by the scan source
	// (e.g. "WPA2", "Open").
	Security string

	// CapturedAt is the time the sample was taken.
	CapturedAt time.Time
}

// Scanner produces a snapshot of currently visible WiFi networks.
//
// Implement Scanner to feed WifiBoard from a custom source: a remote probe,
// a capture replay, a test fixture. Register the implementation with
// [WithScanner]; the engine then polls it at the configured scan interval.
//
// A scan may legitimately return an empty snapshot (no networks in range)
// without an error. Implementations must honor ctx: every call is bounded
// by the configured scan timeout, and a scan that overruns it is treated
// like any other failed scan.
//
// # Panic Safety
//
// Scanner implementations are called within a panic recovery boundary. If a
// scan panics, the tick is treated as a failed scan: an error event carrying
// a correlation ID is published and the next tick retries from scratch. The
// full stack trace is logged server-side for debugging. This ensures that a
// misbehaving scanner cannot crash the entire WifiBoard server.
type Scanner interface {
	Scan(ctx context.Context) ([]Observation, error)
}

// Update is the per-network result of one completed poll, delivered to
// callbacks registered with [WithUpdateCallback].
//
// Update is immutable after creation. It carries the tracked network's
// latest [Observation] plus the current length of that network's rolling
// history buffer. One Update is delivered per tracked network per poll;
// networks that are visible but not tracked produce no Updates.
type Update struct {
	Observation

	// HistoryLength is the number of samples currently held in the
	// network's rolling history, including this one.
	HistoryLength int
}
