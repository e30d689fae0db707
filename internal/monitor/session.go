package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/jpalmerr/wifiboard/internal/metrics"
	"github.com/jpalmerr/wifiboard/internal/scan"
	"github.com/jpalmerr/wifiboard/internal/stream"
)

// Sentinel errors for commands issued in the wrong state or with a bad
// payload. None of them is fatal: callers translate them into status or
// error events and the session keeps serving.
var (
	ErrAlreadyRunning   = errors.New("monitor: already running")
	ErrNotRunning       = errors.New("monitor: not running")
	ErrInvalidSelection = errors.New("monitor: invalid selection")
)

// State is the lifecycle state of a Session.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateStopping State = "stopping"
)

const (
	defaultInterval = 2 * time.Second
	defaultTimeout  = 10 * time.Second
	defaultCapacity = 30
)

// Config carries the tunables for a Session. Zero values fall back to the
// defaults above.
type Config struct {
	// Interval is the spacing between polls.
	Interval time.Duration

	// Timeout bounds a single scanner call. A scan that exceeds it is
	// treated like any other adapter failure.
	Timeout time.Duration

	// Capacity bounds the per-network rolling history.
	Capacity int

	// Metrics, when non-nil, receives scan counters and durations.
	Metrics *metrics.Set
}

// sourceRecord is the per-network state: the latest observation and a
// bounded history of recent ones.
type sourceRecord struct {
	latest  scan.Observation
	history *history
}

// StartOptions seeds the selection when monitoring starts. Target selects a
// single network; Targets selects an explicit set, where an empty but
// non-nil slice means "track every visible network". When neither is given
// the selection from the previous run is kept.
type StartOptions struct {
	Target  string
	Targets []string
}

// StatusSnapshot is a point-in-time view of a Session, shaped for JSON read
// endpoints.
type StatusSnapshot struct {
	State       State     `json:"state"`
	Mode        Mode      `json:"mode"`
	Targets     []string  `json:"targets"`
	TrackingAll bool      `json:"tracking_all"`
	Interval    string    `json:"interval"`
	Sources     []string  `json:"sources"`
	LastScan    time.Time `json:"last_scan"`
}

// Session owns the monitoring state machine, the tracked-network selection,
// and the per-network history buffers.
//
// All mutable state sits behind one lock, taken only for short sections;
// the scanner is never called with it held. A second lock, pollMu, admits
// at most one scanner call at a time across the poll loop and ScanOnce.
type Session struct {
	logger  *slog.Logger
	scanner scan.Scanner
	hub     *stream.Hub
	cfg     Config

	mu       sync.Mutex
	state    State
	sel      *selection
	records  map[string]*sourceRecord
	lastScan []scan.Observation
	lastAt   time.Time
	cancel   context.CancelFunc

	wg sync.WaitGroup

	// pollMu serializes scanner calls. Loop ticks that cannot take it are
	// skipped, not queued.
	pollMu sync.Mutex
}

// NewSession builds an idle Session. scanner and hub must be non-nil; a nil
// logger falls back to slog.Default.
func NewSession(logger *slog.Logger, scanner scan.Scanner, hub *stream.Hub, cfg Config) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = defaultCapacity
	}
	return &Session{
		logger:  logger,
		scanner: scanner,
		hub:     hub,
		cfg:     cfg,
		state:   StateIdle,
		sel:     newSelection(),
		records: make(map[string]*sourceRecord),
	}
}

// Start transitions the session from idle to running and launches the poll
// loop. The first poll fires immediately rather than after a full interval.
//
// ctx is the lifetime anchor for the whole run: Stop cancels the loop it
// spawned, but a scan already in flight keeps running against ctx (bounded
// by the scan timeout) so it can finish and deliver its results.
//
// Starting a session that is not idle publishes an "already_running" status
// event and returns ErrAlreadyRunning.
func (s *Session) Start(ctx context.Context, opts StartOptions) error {
	s.mu.Lock()
	if s.state != StateIdle {
		targets, mode, all := s.sel.ids(), s.sel.mode, s.sel.all
		s.mu.Unlock()
		s.hub.Publish(statusEvent(StatusAlreadyRunning, targets, mode, all, time.Now().UTC()))
		return ErrAlreadyRunning
	}
	switch {
	case opts.Target != "":
		s.sel.mode = ModeSingle
		s.sel.replace(opts.Target)
	case opts.Targets != nil:
		s.sel.mode = ModeMulti
		if len(opts.Targets) == 0 {
			s.sel.setAll()
		} else {
			s.sel.set(opts.Targets)
		}
	}
	s.state = StateRunning
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	targets, mode, all := s.sel.ids(), s.sel.mode, s.sel.all
	s.mu.Unlock()

	s.logger.Info("monitoring started",
		"mode", mode,
		"targets", targets,
		"interval", s.cfg.Interval,
	)
	s.hub.Publish(statusEvent(StatusStarted, targets, mode, all, time.Now().UTC()))

	s.wg.Add(1)
	go s.loop(loopCtx, ctx)
	return nil
}

// Stop cancels the poll loop, waits for any in-flight scan to drain, and
// returns the session to idle. History buffers and the selection survive a
// stop; a later Start resumes appending to the same buffers.
//
// Stopping a session that is not running publishes a "not_running" status
// event and returns ErrNotRunning.
func (s *Session) Stop() error {
	s.mu.Lock()
	if s.state != StateRunning {
		targets, mode, all := s.sel.ids(), s.sel.mode, s.sel.all
		s.mu.Unlock()
		s.hub.Publish(statusEvent(StatusNotRunning, targets, mode, all, time.Now().UTC()))
		return ErrNotRunning
	}
	s.state = StateStopping
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	cancel()
	s.wg.Wait()

	s.mu.Lock()
	s.state = StateIdle
	targets, mode, all := s.sel.ids(), s.sel.mode, s.sel.all
	s.mu.Unlock()

	s.logger.Info("monitoring stopped")
	s.hub.Publish(statusEvent(StatusStopped, targets, mode, all, time.Now().UTC()))
	return nil
}

// Select mutates the tracked-network selection. With no action the mode
// decides what happens: single mode replaces the tracked network, multi
// mode toggles membership. Action "all" tracks every visible network and
// "clear" empties the selection; both ignore id.
//
// Selections are not validated against visibility: a network that has never
// appeared in a scan is tracked all the same and produces updates once
// seen. A missing id or unknown action publishes a warning error event and
// returns ErrInvalidSelection.
//
// If monitoring is active the next tick uses the updated selection; no
// restart is needed.
func (s *Session) Select(id, action string) error {
	now := time.Now().UTC()

	s.mu.Lock()
	switch action {
	case "all":
		s.sel.setAll()
	case "clear":
		s.sel.clear()
	case "", "toggle":
		if id == "" {
			s.mu.Unlock()
			s.hub.Publish(errorEvent("select_network: missing network id"))
			return ErrInvalidSelection
		}
		if s.sel.mode == ModeSingle {
			s.sel.replace(id)
		} else {
			s.sel.toggle(id)
		}
	default:
		s.mu.Unlock()
		s.hub.Publish(errorEvent(fmt.Sprintf("select_network: unknown action %q", action)))
		return ErrInvalidSelection
	}
	targets, mode, all := s.sel.ids(), s.sel.mode, s.sel.all
	s.mu.Unlock()

	s.logger.Info("selection changed", "mode", mode, "targets", targets)
	s.hub.Publish(statusEvent(StatusSelectionChanged, targets, mode, all, now))
	return nil
}

// ScanOnce performs a single scan in any state without touching the state
// machine. It publishes one discovery event and returns the snapshot,
// strongest network first.
//
// A one-shot scan refreshes the latest observation for networks that
// already have records but never appends to history or creates records, so
// an idle session accumulates nothing.
func (s *Session) ScanOnce(ctx context.Context) ([]scan.Observation, error) {
	s.pollMu.Lock()
	defer s.pollMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	obs, err := s.scanner.Scan(ctx)
	s.cfg.Metrics.RecordScan(time.Since(start))
	if err != nil {
		s.cfg.Metrics.RecordFailure()
		s.logger.Warn("one-shot scan failed", "error", err)
		s.hub.Publish(errorEvent("scan failed: " + err.Error()))
		return nil, fmt.Errorf("scan once: %w", err)
	}

	now := time.Now().UTC()
	s.mu.Lock()
	s.lastScan = obs
	s.lastAt = now
	for _, o := range obs {
		if rec, ok := s.records[o.SSID]; ok {
			rec.latest = o
		}
	}
	s.mu.Unlock()

	if len(obs) > 0 {
		s.cfg.Metrics.SetNetworksVisible(len(obs))
	}
	s.hub.Publish(discoveryEvent(obs, now))

	sorted := make([]scan.Observation, len(obs))
	copy(sorted, obs)
	scan.SortByStrength(sorted)
	return sorted, nil
}

// Refresh empties every network's rolling history while keeping the latest
// observations. Unlike Stop it does not touch the state machine: a running
// session keeps polling and accumulates into fresh buffers.
func (s *Session) Refresh() {
	s.mu.Lock()
	for _, rec := range s.records {
		rec.history.clear()
	}
	targets, mode, all := s.sel.ids(), s.sel.mode, s.sel.all
	s.mu.Unlock()

	s.logger.Info("history cleared")
	s.hub.Publish(statusEvent(StatusRefreshed, targets, mode, all, time.Now().UTC()))
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Mode returns the current selection mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.mode
}

// Targets returns the explicitly selected identifiers in sorted order. It
// is empty both when everything is tracked and when nothing is; Mode
// disambiguates.
func (s *Session) Targets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.ids()
}

// Latest returns the most recent full snapshot and when it was taken. The
// zero time means no scan has completed yet.
func (s *Session) Latest() ([]scan.Observation, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]scan.Observation, len(s.lastScan))
	copy(out, s.lastScan)
	return out, s.lastAt
}

// History returns a copy of the rolling history for id. ok is false when
// the network has no record.
func (s *Session) History(id string) ([]scan.Observation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, false
	}
	return rec.history.snapshot(), true
}

// Tracked returns the latest observation for each currently selected
// network that has appeared in a scan, strongest first.
func (s *Session) Tracked() []scan.Observation {
	s.mu.Lock()
	out := make([]scan.Observation, 0, len(s.records))
	for id, rec := range s.records {
		if s.sel.matches(id) {
			out = append(out, rec.latest)
		}
	}
	s.mu.Unlock()
	scan.SortByStrength(out)
	return out
}

// Status returns a point-in-time view of the session for read APIs.
func (s *Session) Status() StatusSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	sources := make([]string, 0, len(s.records))
	for id := range s.records {
		sources = append(sources, id)
	}
	sort.Strings(sources)
	return StatusSnapshot{
		State:       s.state,
		Mode:        s.sel.mode,
		Targets:     s.sel.ids(),
		TrackingAll: s.sel.all,
		Interval:    s.cfg.Interval.String(),
		Sources:     sources,
		LastScan:    s.lastAt,
	}
}

// loop drives periodic polling. loopCtx ends the loop; base outlives it and
// parents the per-scan timeout, so cancellation by Stop never aborts a scan
// that is already in flight.
func (s *Session) loop(loopCtx, base context.Context) {
	defer s.wg.Done()

	// the activation poll fires immediately so viewers are not staring at
	// an empty dashboard for a full interval
	s.tryPoll(base)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-loopCtx.Done():
			return
		case <-ticker.C:
			if loopCtx.Err() != nil {
				return
			}
			s.tryPoll(base)
		}
	}
}

// tryPoll runs one poll unless a scanner call is already in flight, in
// which case the tick is skipped entirely rather than queued.
func (s *Session) tryPoll(base context.Context) {
	if !s.pollMu.TryLock() {
		s.logger.Debug("tick skipped, scan still in flight")
		s.cfg.Metrics.RecordSkippedTick()
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.pollMu.Unlock()
		s.poll(base)
	}()
}

// poll performs one scanner call and applies the results. A failed or empty
// scan publishes exactly one error event and leaves all records untouched;
// the loop retries from scratch on the next tick.
func (s *Session) poll(base context.Context) {
	ctx, cancel := context.WithTimeout(base, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	obs, err := s.scanner.Scan(ctx)
	elapsed := time.Since(start)
	s.cfg.Metrics.RecordScan(elapsed)

	if err != nil {
		msg := "scan failed: " + err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			msg = fmt.Sprintf("scan timed out after %s", s.cfg.Timeout)
		}
		s.logger.Warn("scan failed", "error", err, "elapsed", elapsed)
		s.cfg.Metrics.RecordFailure()
		s.hub.Publish(errorEvent(msg))
		return
	}
	if len(obs) == 0 {
		s.logger.Warn("scan returned no networks")
		s.cfg.Metrics.RecordFailure()
		s.hub.Publish(errorEvent("no networks detected"))
		return
	}

	s.apply(obs)
}

// apply records a successful snapshot and publishes the resulting events:
// one discovery event carrying the full snapshot, then one update per
// tracked network that appears in it.
func (s *Session) apply(obs []scan.Observation) {
	now := time.Now().UTC()

	s.mu.Lock()
	s.lastScan = obs
	s.lastAt = now
	updates := make([]stream.Event, 0, len(obs))
	for _, o := range obs {
		if !s.sel.matches(o.SSID) {
			continue
		}
		rec, ok := s.records[o.SSID]
		if !ok {
			rec = &sourceRecord{history: newHistory(s.cfg.Capacity)}
			s.records[o.SSID] = rec
		}
		rec.latest = o
		rec.history.add(o)
		updates = append(updates, signalEvent(o, rec.history.size()))
	}
	s.mu.Unlock()

	s.cfg.Metrics.SetNetworksVisible(len(obs))
	s.hub.Publish(discoveryEvent(obs, now))
	for _, ev := range updates {
		s.hub.Publish(ev)
	}
}
