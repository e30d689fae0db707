// Package survey collects and stores location-tagged WiFi measurements for
// site surveys.
//
// A Collector walks a set of floor-plan locations, scans several times at
// each, and persists every observation to a Store backed by SQLite. Stored
// samples feed signal model training and can be exported as CSV for
// external analysis.
package survey
