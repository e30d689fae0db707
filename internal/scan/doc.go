// Package scan provides WiFi network snapshot acquisition for wifiboard.
//
// This package is internal to wifiboard and handles the raw scanning of
// currently visible WiFi networks. It wraps the native scan tools of the
// three desktop platforms and provides a simulated scanner for development,
// demos, and tests.
//
// The main components are:
//
//   - [Scanner]: Interface producing a snapshot of visible networks
//   - [SystemScanner]: Runs the platform scan tool (nmcli, netsh, airport)
//   - [SimulatedScanner]: Generates realistic jittered mock networks
//   - [FallbackScanner]: Tries a primary scanner, falls back on failure
//   - [Observation]: One timestamped sample of a network's attributes
//
// All signal strengths are normalized to dBm; platforms that report a
// percentage are converted through [QualityToDBm] so downstream consumers
// see one unit.
//
// Users of the wifiboard library should not need to interact with this
// package directly. Scanner selection is done through the main wifiboard
// package options.
package scan
