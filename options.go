package wifiboard

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Scanner choices resolved during [WifiBoard.Start].
const (
	scannerAuto      = "auto"
	scannerSystem    = "system"
	scannerSimulated = "simulated"
	scannerCustom    = "custom"
)

// wbConfig holds mutable state during WifiBoard construction.
type wbConfig struct {
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

// Option is a function that configures a [WifiBoard] instance during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
//
// Built-in options: [WithTitle], [WithPort], [WithScanInterval],
// [WithScanTimeout], [WithHistorySize], [WithScanner], [WithSystemScanner],
// [WithSimulatedScanner], [WithLogger], [WithModelFile], [WithSurveyDB],
// [WithKNNNeighbors], [WithAutostart], [WithAutostartTarget],
// [WithAutostartTargets], [WithUpdateCallback].
type Option func(*wbConfig) error

// WithTitle sets the dashboard title displayed in the browser tab and header.
//
// If not specified, defaults to "WifiBoard".
//
// Example:
//
//	wb, err := wifiboard.New(
//	    wifiboard.WithTitle("Office WiFi Coverage"),
//	)
func WithTitle(title string) Option {
	return func(cfg *wbConfig) error {
		cfg.title = title
		return nil
	}
}

// WithPort sets the HTTP port for the dashboard server.
//
// The dashboard UI, the REST API, and the SSE event stream will be
// available at http://localhost:<port>. Defaults to 8080 if not specified.
//
// Example:
//
//	wb, err := wifiboard.New(
//	    wifiboard.WithPort(9090),
//	)
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *wbConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithScanInterval sets how often the engine scans for networks while
// monitoring is active.
//
// Each poll runs one scan and applies the snapshot to every tracked
// network. A scan still in flight when the next tick fires causes that
// tick to be skipped, so a slow platform tool degrades the sample rate
// rather than queueing work. Defaults to 2 seconds if not specified.
//
// Example:
//
//	wb, err := wifiboard.New(
//	    wifiboard.WithScanInterval(5 * time.Second),
//	)
//
// Returns an error if the duration is zero or negative.
func WithScanInterval(d time.Duration) Option {
	return func(cfg *wbConfig) error {
		if d <= 0 {
			return errors.New("scan interval must be positive")
		}
		cfg.scanInterval = d
		return nil
	}
}

// WithScanTimeout bounds a single scanner call.
//
// A scan that exceeds the timeout is abandoned and treated like any other
// failed scan: one error event is published and the next tick retries.
// Defaults to 10 seconds if not specified.
//
// Example:
//
//	wb, err := wifiboard.New(
//	    wifiboard.WithScanTimeout(3 * time.Second),
//	)
//
// Returns an error if the duration is zero or negative.
func WithScanTimeout(d time.Duration) Option {
	return func(cfg *wbConfig) error {
		if d <= 0 {
			return errors.New("scan timeout must be positive")
		}
		cfg.scanTimeout = d
		return nil
	}
}

// WithHistorySize sets the per-network rolling history capacity.
//
// Each tracked network keeps its most recent observations in a bounded
// buffer; once full, the oldest sample is evicted for each new one. The
// history backs the dashboard sparklines and the history API. Defaults to
// 30 samples if not specified.
//
// Example:
//
//	wb, err := wifiboard.New(
//	    wifiboard.WithHistorySize(120),
//	)
//
// Returns an error if the size is zero or negative.
func WithHistorySize(n int) Option {
	return func(cfg *wbConfig) error {
		if n <= 0 {
			return errors.New("history size must be positive")
		}
		cfg.historySize = n
		return nil
	}
}

// WithScanner supplies a custom [Scanner] implementation.
//
// The engine polls the given scanner instead of the platform WiFi tool.
// Use this to feed WifiBoard from a remote probe, a capture replay, or a
// test fixture. Overrides [WithSystemScanner] and [WithSimulatedScanner].
//
// Example:
//
//	wb, err := wifiboard.New(
//	    wifiboard.WithScanner(probe),
//	)
//
// Returns an error if the scanner is nil.
func WithScanner(s Scanner) Option {
	return func(cfg *wbConfig) error {
		if s == nil {
			return errors.New("scanner cannot be nil")
		}
		cfg.scanner = s
		cfg.scannerKind = scannerCustom
		return nil
	}
}

// WithSystemScanner forces use of the platform WiFi tool (nmcli on Linux,
// netsh on Windows, airport on macOS), with no fallback.
//
// By default WifiBoard tries the platform tool and falls back to simulated
// data when the tool is missing or fails. With this option a missing tool
// surfaces as a failed scan instead.
func WithSystemScanner() Option {
	return func(cfg *wbConfig) error {
		cfg.scannerKind = scannerSystem
		return nil
	}
}

// WithSimulatedScanner uses generated demo networks instead of real scans.
//
// The simulated scanner emits a fixed set of eight networks with gently
// jittering signal strengths. Useful for demos, development on machines
// without WiFi hardware, and tests.
func WithSimulatedScanner() Option {
	return func(cfg *wbConfig) error {
		cfg.scannerKind = scannerSimulated
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the WifiBoard instance.
//
// This allows SDK consumers to control where logs are written and in what
// format. If not specified, [slog.Default] is used.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
//	wb, err := wifiboard.New(
//	    wifiboard.WithLogger(logger),
//	)
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *wbConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithModelFile loads a trained prediction model from the given JSON file
// at startup.
//
// The model powers the location-based half of the predict API: given
// floor-plan coordinates, it estimates signal strength at that spot. Model
// files are produced by the train command from survey data. If the file
// cannot be loaded the server logs a warning and serves predictions from
// basic signal math instead.
//
// Example:
//
//	wb, err := wifiboard.New(
//	    wifiboard.WithModelFile("wifi_model.json"),
//	)
//
// Returns an error if the path is empty.
func WithModelFile(path string) Option {
	return func(cfg *wbConfig) error {
		if strings.TrimSpace(path) == "" {
			return errors.New("model file path cannot be empty")
		}
		cfg.modelFile = path
		return nil
	}
}

// WithSurveyDB builds a nearest-neighbor prediction model from the survey
// samples stored in the given SQLite database.
//
// The database is read once at startup; predictions then average the k
// nearest surveyed samples in scaled coordinate space. [WithModelFile]
// takes precedence when both are configured. If the database cannot be
// read or holds no samples the server logs a warning and serves
// predictions from basic signal math instead.
//
// Example:
//
//	wb, err := wifiboard.New(
//	    wifiboard.WithSurveyDB("wifi_survey.db"),
//	    wifiboard.WithKNNNeighbors(3),
//	)
//
// Returns an error if the path is empty.
func WithSurveyDB(path string) Option {
	return func(cfg *wbConfig) error {
		if strings.TrimSpace(path) == "" {
			return errors.New("survey database path cannot be empty")
		}
		cfg.surveyDB = path
		return nil
	}
}

// WithKNNNeighbors sets k for the nearest-neighbor model built by
// [WithSurveyDB]. Defaults to 5 if not specified. Has no effect on models
// loaded from a file, which carry their own k.
//
// Returns an error if k is zero or negative.
func WithKNNNeighbors(k int) Option {
	return func(cfg *wbConfig) error {
		if k <= 0 {
			return errors.New("neighbor count must be positive")
		}
		cfg.knnNeighbors = k
		return nil
	}
}

// WithAutostart starts monitoring as soon as [WifiBoard.Start] is called,
// rather than waiting for a start command from the dashboard or API.
//
// Monitoring begins with the default selection: every visible network is
// tracked. Use [WithAutostartTarget] or [WithAutostartTargets] to start
// with a narrower selection.
func WithAutostart() Option {
	return func(cfg *wbConfig) error {
		cfg.autostart = true
		return nil
	}
}

// WithAutostartTarget starts monitoring at boot, tracking the single named
// network.
//
// The engine runs in single-network mode: selecting another network later
// replaces this one. Implies [WithAutostart].
//
// Example:
//
//	wb, err := wifiboard.New(
//	    wifiboard.WithAutostartTarget("HomeNet-5G"),
//	)
//
// Returns an error if the name is empty.
func WithAutostartTarget(ssid string) Option {
	return func(cfg *wbConfig) error {
		if strings.TrimSpace(ssid) == "" {
			return errors.New("autostart target cannot be empty")
		}
		cfg.autostart = true
		cfg.autostartTarget = ssid
		cfg.autostartTargets = nil
		return nil
	}
}

// WithAutostartTargets starts monitoring at boot, tracking the named set
// of networks.
//
// The engine runs in multi-network mode: selecting networks later toggles
// their membership in the set. Calling with no names tracks every visible
// network. Implies [WithAutostart].
//
// Example:
//
//	wb, err := wifiboard.New(
//	    wifiboard.WithAutostartTargets("HomeNet", "HomeNet-5G"),
//	)
//
// Returns an error if any name is empty.
func WithAutostartTargets(ssids ...string) Option {
	return func(cfg *wbConfig) error {
		for i, ssid := range ssids {
			if strings.TrimSpace(ssid) == "" {
				return fmt.Errorf("autostart target %d cannot be empty", i)
			}
		}
		cfg.autostart = true
		cfg.autostartTarget = ""
		cfg.autostartTargets = append([]string{}, ssids...)
		return nil
	}
}

// WithUpdateCallback registers a function to be called for every tracked
// network on every completed poll.
//
// The callback receives an [Update] containing the network's latest
// observation and its current history length.
//
// Multiple callbacks may be registered by calling WithUpdateCallback
// multiple times; they execute in registration order.
//
// IMPORTANT: Callbacks must be non-blocking. Long-running operations should
// dispatch work to a separate goroutine. Blocking callbacks will delay
// subsequent update processing and can cause events to be dropped.
//
// Callbacks are invoked synchronously from a single goroutine. Panics
// within callbacks are recovered and logged; they do not crash the engine.
//
// Example:
//
//	wb, err := wifiboard.New(
//	    wifiboard.WithAutostartTarget("HomeNet"),
//	    wifiboard.WithUpdateCallback(func(u wifiboard.Update) {
//	        if u.SignalDBm < -80 {
//	            log.Printf("ALERT: %s signal critical (%d dBm)", u.SSID, u.SignalDBm)
//	        }
//	    }),
//	)
//
// Nil callbacks are silently ignored.
func WithUpdateCallback(cb func(Update)) Option {
	return func(cfg *wbConfig) error {
		if cb == nil {
			return nil // no-op for nil callback (safe to call)
		}
		cfg.updateCallbacks = append(cfg.updateCallbacks, cb)
		return nil
	}
}
