package wifiboard

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jpalmerr/wifiboard/dashboard"
	"github.com/jpalmerr/wifiboard/internal/metrics"
	"github.com/jpalmerr/wifiboard/internal/monitor"
	"github.com/jpalmerr/wifiboard/internal/predict"
	"github.com/jpalmerr/wifiboard/internal/scan"
	"github.com/jpalmerr/wifiboard/internal/server"
	"github.com/jpalmerr/wifiboard/internal/stream"
	"github.com/jpalmerr/wifiboard/internal/survey"
)

const (
	defaultPort         = 8080
	defaultScanInterval = 2 * time.Second
	defaultScanTimeout  = 10 * time.Second
	defaultHistorySize  = 30
)

// WifiBoard is the main orchestrator for WiFi monitoring and dashboard
// serving.
//
// WifiBoard coordinates periodic scanning of visible networks, tracks
// per-network signal history, and serves a real-time dashboard via HTTP
// with a REST control API and an SSE event stream. It is created using
// [New] with functional options and started with [WifiBoard.Start].
//
// The typical lifecycle is:
//
//	wb, err := wifiboard.New(wifiboard.WithTitle("Home WiFi"))
//	if err != nil {
//	    slog.Error("failed to create wifiboard", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	wb.Start(ctx) // blocks until context cancelled
//
// The caller controls the lifecycle via the context. Cancel the context to
// trigger graceful shutdown.
type WifiBoard struct {
	title            string
	port             int
	scanInterval     time.Duration
	scanTimeout      time.Duration
	historySize      int
	scannerKind      string
	scanner          Scanner
	logger           *slog.Logger
	modelFile        string
	surveyDB         string
	knnNeighbors     int
	autostart        bool
	autostartTarget  string
	autostartTargets []string
	updateCallbacks  []func(Update)
}

// New creates a new [WifiBoard] instance with the given options.
//
// Every option has a sensible default:
//   - Port: 8080
//   - Scan interval: 2 seconds
//   - Scan timeout: 10 seconds
//   - History size: 30 samples per network
//   - Scanner: the platform tool, falling back to simulated data
//
// Returns an error if any option is invalid.
//
// Example:
//
//	wb, err := wifiboard.New(
//	    wifiboard.WithTitle("Office WiFi"),
//	    wifiboard.WithScanInterval(5 * time.Second),
//	    wifiboard.WithPort(9090),
//	)
func New(opts ...Option) (*WifiBoard, error) {
	cfg := &wbConfig{
		port:         defaultPort,
		scanInterval: defaultScanInterval,
		scanTimeout:  defaultScanTimeout,
		historySize:  defaultHistorySize,
		scannerKind:  scannerAuto,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.port < 1 || cfg.port > 65535 {
		return nil, fmt.Errorf("port must be between 1 and 65535, got %d", cfg.port)
	}

	// default to slog.Default() if no logger provided
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &WifiBoard{
		title:            cfg.title,
		port:             cfg.port,
		scanInterval:     cfg.scanInterval,
		scanTimeout:      cfg.scanTimeout,
		historySize:      cfg.historySize,
		scannerKind:      cfg.scannerKind,
		scanner:          cfg.scanner,
		logger:           logger,
		modelFile:        cfg.modelFile,
		surveyDB:         cfg.surveyDB,
		knnNeighbors:     cfg.knnNeighbors,
		autostart:        cfg.autostart,
		autostartTarget:  cfg.autostartTarget,
		autostartTargets: cfg.autostartTargets,
		updateCallbacks:  cfg.updateCallbacks,
	}, nil
}

// Start begins serving the dashboard and, when autostart is configured,
// monitoring networks.
//
// Start is a blocking call that runs until the provided context is
// cancelled. During execution:
//
//   - The HTTP server starts on the configured port
//   - The dashboard is available at http://localhost:<port>
//   - Monitoring starts immediately with autostart, and otherwise waits
//     for a start command from the dashboard or the API
//   - Tracked-network updates are delivered to registered callbacks
//
// The caller controls the lifecycle via context cancellation. For signal
// handling, use [signal.NotifyContext]:
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//	wb.Start(ctx)
//
// Returns nil on graceful shutdown. Returns an error if the HTTP server
// fails to start.
func (wb *WifiBoard) Start(ctx context.Context) error {
	wb.logger.Info("wifiboard starting",
		"scanner", wb.scannerKind,
		"scan_interval", wb.scanInterval.String(),
	)
	wb.logger.Info("dashboard available", "url", fmt.Sprintf("http://localhost:%d", wb.port))

	// check if context already cancelled
	if ctx.Err() != nil {
		return nil
	}

	hub := stream.NewHub(wb.logger)
	met := metrics.New(hub.SubscriberCount, hub.Dropped)
	session := monitor.NewSession(wb.logger, wb.buildScanner(), hub, monitor.Config{
		Interval: wb.scanInterval,
		Timeout:  wb.scanTimeout,
		Capacity: wb.historySize,
		Metrics:  met,
	})

	// track the callback consumer goroutine to ensure clean shutdown
	var wg sync.WaitGroup
	cleanup := func() {}
	if len(wb.updateCallbacks) > 0 {
		subID, events := hub.Subscribe()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ev := range events {
				payload, ok := ev.Payload.(monitor.SignalPayload)
				if !ok {
					continue
				}
				update := Update{
					Observation:   toPublicObservation(payload.Observation),
					HistoryLength: payload.HistoryLength,
				}
				for _, cb := range wb.updateCallbacks {
					invokeCallbackSafe(cb, update, wb.logger)
				}
			}
		}()
		// unsubscribing closes the channel, which ends the consumer
		cleanup = func() {
			hub.Unsubscribe(subID)
			wg.Wait()
		}
	}

	// start the HTTP server
	srv := server.NewServer(wb.logger, session, hub, server.Config{
		Port:    wb.port,
		Title:   wb.title,
		Assets:  dashboard.Assets,
		Metrics: met,
		Model:   wb.loadModel(ctx),
	})
	if err := srv.Start(ctx); err != nil {
		cleanup()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	if wb.autostart {
		opts := monitor.StartOptions{Target: wb.autostartTarget, Targets: wb.autostartTargets}
		if err := session.Start(ctx, opts); err != nil {
			wb.logger.Warn("autostart failed", "error", err.Error())
		}
	}

	<-ctx.Done()
	if session.State() == monitor.StateRunning {
		session.Stop()
	}
	cleanup()
	wb.logger.Info("wifiboard stopped")
	return nil
}

// buildScanner resolves the configured scanner choice into a concrete
// engine scanner.
func (wb *WifiBoard) buildScanner() scan.Scanner {
	switch wb.scannerKind {
	case scannerCustom:
		return scannerAdapter{scanner: wb.scanner, logger: wb.logger}
	case scannerSystem:
		return scan.NewSystemScanner()
	case scannerSimulated:
		return scan.NewSimulatedScanner()
	default:
		// auto: try the platform tool, fall back to simulated data
		return scan.NewFallbackScanner(scan.NewSystemScanner(), scan.NewSimulatedScanner(), wb.logger)
	}
}

// loadModel resolves the prediction model: an explicit model file wins,
// otherwise a survey database yields a nearest-neighbor model over its
// samples. Returns nil when neither is configured or loading fails; the
// predict API then falls back to basic signal math.
func (wb *WifiBoard) loadModel(ctx context.Context) *predict.Model {
	if wb.modelFile != "" {
		m, err := predict.Load(wb.modelFile)
		if err != nil {
			wb.logger.Warn("prediction model unavailable",
				"file", wb.modelFile,
				"error", err.Error(),
			)
			return nil
		}
		wb.logger.Info("prediction model loaded",
			"file", wb.modelFile,
			"model", m.DisplayName(),
			"training_samples", m.Samples,
		)
		return m
	}
	if wb.surveyDB != "" {
		m, err := wb.surveyModel(ctx)
		if err != nil {
			wb.logger.Warn("survey model unavailable",
				"db", wb.surveyDB,
				"error", err.Error(),
			)
			return nil
		}
		wb.logger.Info("prediction model built from survey data",
			"db", wb.surveyDB,
			"training_samples", m.Samples,
			"neighbors", m.Neighbors,
		)
		return m
	}
	return nil
}

// surveyModel builds a nearest-neighbor model over every sample in the
// survey database.
func (wb *WifiBoard) surveyModel(ctx context.Context) (*predict.Model, error) {
	st, err := survey.Open(wb.surveyDB, wb.logger)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	samples, err := st.Samples(ctx, "")
	if err != nil {
		return nil, err
	}
	train := make([]predict.Sample, len(samples))
	for i, smp := range samples {
		train[i] = predict.Sample{
			X:    smp.Location.X,
			Y:    smp.Location.Y,
			RSSI: float64(smp.SignalDBm),
		}
	}
	return predict.KNN(train, wb.knnNeighbors)
}

// Port returns the configured HTTP port for the dashboard server.
func (wb *WifiBoard) Port() int {
	return wb.port
}

// ScanInterval returns the configured interval between scans.
func (wb *WifiBoard) ScanInterval() time.Duration {
	return wb.scanInterval
}

// ScanTimeout returns the configured bound on a single scanner call.
func (wb *WifiBoard) ScanTimeout() time.Duration {
	return wb.scanTimeout
}

// HistorySize returns the configured per-network history capacity.
func (wb *WifiBoard) HistorySize() int {
	return wb.historySize
}

// scannerAdapter bridges a user-supplied [Scanner] into the engine with a
// panic recovery boundary, so a misbehaving scanner cannot crash the
// server.
type scannerAdapter struct {
	scanner Scanner
	logger  *slog.Logger
}

// Scan delegates to the custom scanner and converts its output. A panic in
// the scanner is logged with a correlation ID and surfaces as a failed
// scan.
func (a scannerAdapter) Scan(ctx context.Context) (obs []scan.Observation, err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()

			// log full context server-side for debugging
			a.logger.Error("scanner panic",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)

			obs = nil
			err = fmt.Errorf("scanner panic (correlation_id: %s)", correlationID)
		}
	}()

	public, err := a.scanner.Scan(ctx)
	if err != nil {
		return nil, err
	}
	return toInternalObservations(public), nil
}

// toInternalObservations converts custom scanner output to the engine type.
func toInternalObservations(obs []Observation) []scan.Observation {
	out := make([]scan.Observation, len(obs))
	for i, o := range obs {
		out[i] = scan.Observation{
			SSID:       o.SSID,
			BSSID:      o.BSSID,
			SignalDBm:  o.SignalDBm,
			Quality:    o.Quality,
			Channel:    o.Channel,
			Band:       o.Band,
			Security:   o.Security,
			CapturedAt: o.CapturedAt,
		}
	}
	return out
}

// toPublicObservation converts an engine observation to the public API type.
func toPublicObservation(o scan.Observation) Observation {
	return Observation{
		SSID:       o.SSID,
		BSSID:      o.BSSID,
		SignalDBm:  o.SignalDBm,
		Quality:    o.Quality,
		Channel:    o.Channel,
		Band:       o.Band,
		Security:   o.Security,
		CapturedAt: o.CapturedAt,
	}
}

// invokeCallbackSafe calls an update callback with panic recovery.
// Panics are logged with a correlation ID but do not propagate.
func invokeCallbackSafe(cb func(Update), u Update, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("update callback panicked",
				"correlation_id", uuid.NewString(),
				"panic", fmt.Sprintf("%v", r),
				"network", u.SSID,
			)
		}
	}()
	cb(u)
}
