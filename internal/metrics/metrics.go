package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Set bundles the Prometheus instruments for one engine instance.
//
// The recorder methods are safe to call on a nil Set, so components that
// treat instrumentation as optional can skip the nil checks at every call
// site.
type Set struct {
	registry *prometheus.Registry

	scansTotal      prometheus.Counter
	scanFailures    prometheus.Counter
	ticksSkipped    prometheus.Counter
	networksVisible prometheus.Gauge
	scanDuration    prometheus.Histogram
}

// New builds a Set backed by a fresh registry. subscribers and dropped are
// sampled at scrape time to report event stream fan-out state; either may be
// nil to omit the corresponding metric.
func New(subscribers func() int, dropped func() int64) *Set {
	reg := prometheus.NewRegistry()

	s := &Set{
		registry: reg,
		scansTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wifiboard_scans_total",
			Help: "Total scanner invocations, including failed ones.",
		}),
		scanFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wifiboard_scan_failures_total",
			Help: "Scanner invocations that failed or returned no networks.",
		}),
		ticksSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wifiboard_ticks_skipped_total",
			Help: "Poll ticks skipped because a scan was still in flight.",
		}),
		networksVisible: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wifiboard_networks_visible",
			Help: "Number of networks in the most recent successful scan.",
		}),
		scanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wifiboard_scan_duration_seconds",
			Help:    "Wall-clock duration of scanner invocations.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(s.scansTotal, s.scanFailures, s.ticksSkipped, s.networksVisible, s.scanDuration)
	reg.MustRegister(collectors.NewGoCollector())

	if subscribers != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "wifiboard_stream_subscribers",
			Help: "Currently connected event stream subscribers.",
		}, func() float64 { return float64(subscribers()) }))
	}
	if dropped != nil {
		reg.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "wifiboard_stream_dropped_events_total",
			Help: "Events dropped because a subscriber's buffer was full.",
		}, func() float64 { return float64(dropped()) }))
	}
	return s
}

// RecordScan counts one scanner invocation and its duration.
func (s *Set) RecordScan(d time.Duration) {
	if s == nil {
		return
	}
	s.scansTotal.Inc()
	s.scanDuration.Observe(d.Seconds())
}

// RecordFailure counts a scan that produced no usable data.
func (s *Set) RecordFailure() {
	if s == nil {
		return
	}
	s.scanFailures.Inc()
}

// RecordSkippedTick counts a poll tick skipped due to an in-flight scan.
func (s *Set) RecordSkippedTick() {
	if s == nil {
		return
	}
	s.ticksSkipped.Inc()
}

// SetNetworksVisible records the size of the latest successful snapshot.
func (s *Set) SetNetworksVisible(n int) {
	if s == nil {
		return
	}
	s.networksVisible.Set(float64(n))
}

// Handler serves the set's registry in the Prometheus text exposition
// format.
func (s *Set) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
