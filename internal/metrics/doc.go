// Package metrics exposes Prometheus instrumentation for the wifiboard
// engine: scanner counters and timings, poll loop health, and event stream
// fan-out gauges. Each Set carries its own registry so multiple engines in
// one process (or in tests) scrape independently and never collide on
// registration.
package metrics
