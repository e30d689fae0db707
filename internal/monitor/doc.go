// Package monitor implements the polling loop and monitoring session at the
// heart of wifiboard.
//
// A Session owns the monitoring state machine (idle, running, stopping), the
// selection of tracked networks, and a bounded rolling history per network.
// While running, a background loop drives periodic scans through a
// scan.Scanner, applies the results under a single lock, and publishes
// events to a stream.Hub. At most one scan is in flight at any time; a tick
// that would overlap a slow scan is skipped rather than queued.
//
// The main components are:
//
//   - Session: the state machine and the single serialization point for all
//     commands and reads.
//   - selection: the set of tracked network identifiers and its mode.
//   - history: the fixed-capacity FIFO of recent observations per network.
//   - event constructors: stateless translation from tick results to the
//     events consumed by dashboards.
//
// Users of the wifiboard library should not need to import this package
// directly; the root package wraps it behind the public API.
package monitor
