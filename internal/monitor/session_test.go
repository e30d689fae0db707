package monitor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jpalmerr/wifiboard/internal/scan"
	"github.com/jpalmerr/wifiboard/internal/stream"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func obs(ssid string, dbm int) scan.Observation {
	return scan.Observation{
		SSID:       ssid,
		SignalDBm:  dbm,
		Quality:    scan.Quality(dbm),
		Channel:    6,
		Band:       scan.BandLabel(6),
		Security:   "WPA2",
		CapturedAt: time.Now().UTC(),
	}
}

// scanFunc adapts a function to the scan.Scanner interface.
type scanFunc func(ctx context.Context) ([]scan.Observation, error)

func (f scanFunc) Scan(ctx context.Context) ([]scan.Observation, error) { return f(ctx) }

func staticScanner(list ...scan.Observation) scanFunc {
	return func(context.Context) ([]scan.Observation, error) { return list, nil }
}

func newTestSession(t *testing.T, sc scan.Scanner, cfg Config) (*Session, <-chan stream.Event) {
	t.Helper()
	hub := stream.NewHub(testLogger())
	s := NewSession(testLogger(), sc, hub, cfg)
	id, ch := hub.Subscribe()
	t.Cleanup(func() { hub.Unsubscribe(id) })
	return s, ch
}

func nextEvent(t *testing.T, ch <-chan stream.Event) stream.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return stream.Event{}
	}
}

func expectEvent(t *testing.T, ch <-chan stream.Event, typ string) stream.Event {
	t.Helper()
	ev := nextEvent(t, ch)
	if ev.Type != typ {
		t.Fatalf("event type = %q, want %q (payload %+v)", ev.Type, typ, ev.Payload)
	}
	return ev
}

func expectNoEvent(t *testing.T, ch <-chan stream.Event) {
	t.Helper()
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %q (payload %+v)", ev.Type, ev.Payload)
	case <-time.After(100 * time.Millisecond):
	}
}

// waitForStatus reads events until a monitoring_status with the given status
// value arrives.
func waitForStatus(t *testing.T, ch <-chan stream.Event, status string) StatusPayload {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev.Type != EventStatus {
				continue
			}
			p := ev.Payload.(StatusPayload)
			if p.Status == status {
				return p
			}
		case <-deadline:
			t.Fatalf("timed out waiting for status %q", status)
		}
	}
}

func waitUntil(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestNewSession_Defaults(t *testing.T) {
	s, _ := newTestSession(t, staticScanner(), Config{})

	st := s.Status()
	if st.State != StateIdle {
		t.Errorf("initial state = %q, want %q", st.State, StateIdle)
	}
	if st.Mode != ModeSingle {
		t.Errorf("initial mode = %q, want %q", st.Mode, ModeSingle)
	}
	if st.Interval != "2s" {
		t.Errorf("default interval = %q, want 2s", st.Interval)
	}
}

func TestSession_StartTriggersImmediatePoll(t *testing.T) {
	var calls atomic.Int32
	sc := scanFunc(func(context.Context) ([]scan.Observation, error) {
		calls.Add(1)
		return []scan.Observation{obs("NetA", -50)}, nil
	})
	// a huge interval proves the first poll does not wait for a tick
	s, _ := newTestSession(t, sc, Config{Interval: time.Hour})

	if err := s.Start(context.Background(), StartOptions{}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	waitUntil(t, func() bool { return calls.Load() >= 1 }, "no poll fired after Start")
	if got := s.State(); got != StateRunning {
		t.Errorf("State() = %q, want %q", got, StateRunning)
	}
}

func TestSession_PollsAtInterval(t *testing.T) {
	var calls atomic.Int32
	sc := scanFunc(func(context.Context) ([]scan.Observation, error) {
		calls.Add(1)
		return []scan.Observation{obs("NetA", -50)}, nil
	})
	s, _ := newTestSession(t, sc, Config{Interval: 30 * time.Millisecond})

	if err := s.Start(context.Background(), StartOptions{}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	waitUntil(t, func() bool { return calls.Load() >= 3 }, "periodic polls did not continue")
}

func TestSession_StartWhileRunning(t *testing.T) {
	s, ch := newTestSession(t, staticScanner(obs("NetA", -50)), Config{Interval: time.Hour})

	if err := s.Start(context.Background(), StartOptions{}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	err := s.Start(context.Background(), StartOptions{})
	if !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second Start() error = %v, want ErrAlreadyRunning", err)
	}
	waitForStatus(t, ch, StatusAlreadyRunning)

	if got := s.State(); got != StateRunning {
		t.Errorf("State() = %q, want %q", got, StateRunning)
	}
}

func TestSession_StopWhenIdle(t *testing.T) {
	s, ch := newTestSession(t, staticScanner(), Config{})

	if err := s.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("Stop() error = %v, want ErrNotRunning", err)
	}
	waitForStatus(t, ch, StatusNotRunning)
}

// TestSession_SingleTargetScenario walks the canonical single-target flow:
// two networks are visible, one is tracked. Only the tracked network's
// history grows, one update event is emitted for it, and the discovery
// event lists both.
func TestSession_SingleTargetScenario(t *testing.T) {
	sc := staticScanner(obs("NetA", -50), obs("NetB", -60))
	s, ch := newTestSession(t, sc, Config{Interval: time.Hour})

	if err := s.Start(context.Background(), StartOptions{Target: "NetA"}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	started := expectEvent(t, ch, EventStatus).Payload.(StatusPayload)
	if started.Status != StatusStarted || started.Mode != ModeSingle {
		t.Errorf("start status = %+v, want started/single", started)
	}
	if len(started.Targets) != 1 || started.Targets[0] != "NetA" {
		t.Errorf("start targets = %v, want [NetA]", started.Targets)
	}

	discovery := expectEvent(t, ch, EventNetworks).Payload.(NetworksPayload)
	if discovery.Count != 2 {
		t.Errorf("discovery count = %d, want 2", discovery.Count)
	}
	if discovery.Networks[0].SSID != "NetA" || discovery.Networks[1].SSID != "NetB" {
		t.Errorf("discovery order = [%s, %s], want [NetA, NetB]",
			discovery.Networks[0].SSID, discovery.Networks[1].SSID)
	}

	update := expectEvent(t, ch, EventSignal).Payload.(SignalPayload)
	if update.SSID != "NetA" {
		t.Errorf("update SSID = %q, want NetA", update.SSID)
	}
	if update.HistoryLength != 1 {
		t.Errorf("update history length = %d, want 1", update.HistoryLength)
	}
	expectNoEvent(t, ch)

	if hist, ok := s.History("NetA"); !ok || len(hist) != 1 {
		t.Errorf("History(NetA) = %d samples, ok=%v, want 1 sample", len(hist), ok)
	}
	if _, ok := s.History("NetB"); ok {
		t.Error("History(NetB) exists, untracked network must not accumulate")
	}
}

func TestSession_AdapterFailure(t *testing.T) {
	tests := []struct {
		name    string
		scanner scanFunc
		wantMsg string
	}{
		{
			name: "scanner error",
			scanner: func(context.Context) ([]scan.Observation, error) {
				return nil, errors.New("nmcli not found")
			},
			wantMsg: "scan failed: nmcli not found",
		},
		{
			name: "empty snapshot",
			scanner: func(context.Context) ([]scan.Observation, error) {
				return nil, nil
			},
			wantMsg: "no networks detected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ch := newTestSession(t, tt.scanner, Config{Interval: time.Hour})

			if err := s.Start(context.Background(), StartOptions{}); err != nil {
				t.Fatalf("Start() error = %v", err)
			}
			defer s.Stop()

			expectEvent(t, ch, EventStatus)
			errEv := expectEvent(t, ch, EventError).Payload.(ErrorPayload)
			if errEv.Message != tt.wantMsg {
				t.Errorf("error message = %q, want %q", errEv.Message, tt.wantMsg)
			}
			// exactly one error event per failed tick, and the session
			// stays running with no records touched
			expectNoEvent(t, ch)
			if got := s.State(); got != StateRunning {
				t.Errorf("State() = %q, want %q", got, StateRunning)
			}
			if sources := s.Status().Sources; len(sources) != 0 {
				t.Errorf("sources after failed tick = %v, want none", sources)
			}
		})
	}
}

func TestSession_ScanOnceWhileIdle(t *testing.T) {
	sc := staticScanner(obs("NetB", -60), obs("NetA", -50))
	s, ch := newTestSession(t, sc, Config{})

	got, err := s.ScanOnce(context.Background())
	if err != nil {
		t.Fatalf("ScanOnce() error = %v", err)
	}
	if len(got) != 2 || got[0].SSID != "NetA" {
		t.Errorf("ScanOnce() = %v, want NetA first of 2", got)
	}

	discovery := expectEvent(t, ch, EventNetworks).Payload.(NetworksPayload)
	if discovery.Count != 2 {
		t.Errorf("discovery count = %d, want 2", discovery.Count)
	}
	expectNoEvent(t, ch)

	// a one-shot scan never accumulates history or records
	if got := s.State(); got != StateIdle {
		t.Errorf("State() = %q, want %q", got, StateIdle)
	}
	if sources := s.Status().Sources; len(sources) != 0 {
		t.Errorf("sources after idle scan = %v, want none", sources)
	}
}

func TestSession_ScanOnceRefreshesLatestOnly(t *testing.T) {
	var mu sync.Mutex
	current := []scan.Observation{obs("NetA", -50)}
	sc := scanFunc(func(context.Context) ([]scan.Observation, error) {
		mu.Lock()
		defer mu.Unlock()
		return current, nil
	})
	s, _ := newTestSession(t, sc, Config{Interval: time.Hour})

	if err := s.Start(context.Background(), StartOptions{Target: "NetA"}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()
	waitUntil(t, func() bool {
		hist, _ := s.History("NetA")
		return len(hist) == 1
	}, "first poll did not record NetA")

	mu.Lock()
	current = []scan.Observation{obs("NetA", -40)}
	mu.Unlock()

	if _, err := s.ScanOnce(context.Background()); err != nil {
		t.Fatalf("ScanOnce() error = %v", err)
	}

	if hist, _ := s.History("NetA"); len(hist) != 1 {
		t.Errorf("history length after one-shot scan = %d, want 1", len(hist))
	}
	tracked := s.Tracked()
	if len(tracked) != 1 || tracked[0].SignalDBm != -40 {
		t.Errorf("Tracked() = %v, want latest refreshed to -40", tracked)
	}
}

func TestSession_StopPreservesBuffersAndSelection(t *testing.T) {
	sc := staticScanner(obs("NetA", -50), obs("NetB", -60), obs("NetC", -70))
	s, _ := newTestSession(t, sc, Config{Interval: time.Hour})

	if err := s.Start(context.Background(), StartOptions{Targets: []string{"NetA", "NetB"}}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitUntil(t, func() bool {
		a, _ := s.History("NetA")
		b, _ := s.History("NetB")
		return len(a) == 1 && len(b) == 1
	}, "first poll did not record both targets")

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if got := s.State(); got != StateIdle {
		t.Fatalf("State() after Stop = %q, want %q", got, StateIdle)
	}
	if hist, ok := s.History("NetA"); !ok || len(hist) != 1 {
		t.Errorf("History(NetA) after stop = %d samples, ok=%v, want 1 preserved", len(hist), ok)
	}

	// restarting without a selection keeps mode and targets, and resumes
	// appending to the preserved buffers
	if err := s.Start(context.Background(), StartOptions{}); err != nil {
		t.Fatalf("restart error = %v", err)
	}
	defer s.Stop()

	if got := s.Mode(); got != ModeMulti {
		t.Errorf("Mode() after restart = %q, want %q", got, ModeMulti)
	}
	if targets := s.Targets(); len(targets) != 2 {
		t.Errorf("Targets() after restart = %v, want [NetA NetB]", targets)
	}
	waitUntil(t, func() bool {
		a, _ := s.History("NetA")
		return len(a) == 2
	}, "restart did not resume appending to the preserved buffer")
}

// TestSession_SlowScanSkipsTicks pins the overlap rule: while a scan is in
// flight, due ticks are skipped entirely instead of queueing, and polling
// resumes once the slow scan returns.
func TestSession_SlowScanSkipsTicks(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var calls atomic.Int32
	sc := scanFunc(func(context.Context) ([]scan.Observation, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-release
		}
		return []scan.Observation{obs("NetA", -50)}, nil
	})
	s, _ := newTestSession(t, sc, Config{Interval: 40 * time.Millisecond, Timeout: 5 * time.Second})

	if err := s.Start(context.Background(), StartOptions{}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	<-started
	// several intervals elapse while the first scan hangs
	time.Sleep(150 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Fatalf("scanner calls during a hanging scan = %d, want 1 (ticks must be skipped)", got)
	}

	close(release)
	waitUntil(t, func() bool { return calls.Load() >= 2 }, "polling did not resume after the slow scan")
}

// TestSession_StopWaitsForInFlightScan verifies the shutdown contract: a
// scan that already started is allowed to finish and deliver its results,
// and Stop does not return until it has.
func TestSession_StopWaitsForInFlightScan(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	sc := scanFunc(func(context.Context) ([]scan.Observation, error) {
		once.Do(func() {
			close(started)
			<-release
		})
		return []scan.Observation{obs("NetA", -50)}, nil
	})
	s, _ := newTestSession(t, sc, Config{Interval: time.Hour})

	if err := s.Start(context.Background(), StartOptions{Target: "NetA"}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	<-started

	stopDone := make(chan error, 1)
	go func() { stopDone <- s.Stop() }()

	select {
	case <-stopDone:
		t.Fatal("Stop() returned while a scan was still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case err := <-stopDone:
		if err != nil {
			t.Fatalf("Stop() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() did not return after the scan finished")
	}

	// the in-flight results were delivered before the session went idle
	if hist, ok := s.History("NetA"); !ok || len(hist) != 1 {
		t.Errorf("History(NetA) = %d samples, ok=%v, want the in-flight result recorded", len(hist), ok)
	}
	if got := s.State(); got != StateIdle {
		t.Errorf("State() = %q, want %q", got, StateIdle)
	}
}

func TestSession_Select(t *testing.T) {
	t.Run("single mode replaces", func(t *testing.T) {
		s, ch := newTestSession(t, staticScanner(), Config{})

		if err := s.Select("NetB", ""); err != nil {
			t.Fatalf("Select() error = %v", err)
		}
		p := waitForStatus(t, ch, StatusSelectionChanged)
		if len(p.Targets) != 1 || p.Targets[0] != "NetB" {
			t.Errorf("targets = %v, want [NetB]", p.Targets)
		}

		if err := s.Select("NetC", ""); err != nil {
			t.Fatalf("Select() error = %v", err)
		}
		if targets := s.Targets(); len(targets) != 1 || targets[0] != "NetC" {
			t.Errorf("Targets() = %v, want [NetC]", targets)
		}
	})

	t.Run("multi mode toggles", func(t *testing.T) {
		s, _ := newTestSession(t, staticScanner(obs("NetA", -50)), Config{Interval: time.Hour})
		if err := s.Start(context.Background(), StartOptions{Targets: []string{"NetA"}}); err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		defer s.Stop()

		if err := s.Select("NetB", ""); err != nil {
			t.Fatalf("Select() error = %v", err)
		}
		if targets := s.Targets(); len(targets) != 2 {
			t.Errorf("Targets() after toggle on = %v, want [NetA NetB]", targets)
		}
		if err := s.Select("NetB", ""); err != nil {
			t.Fatalf("Select() error = %v", err)
		}
		if targets := s.Targets(); len(targets) != 1 || targets[0] != "NetA" {
			t.Errorf("Targets() after toggle off = %v, want [NetA]", targets)
		}
	})

	t.Run("missing id rejected", func(t *testing.T) {
		s, ch := newTestSession(t, staticScanner(), Config{})

		if err := s.Select("", ""); !errors.Is(err, ErrInvalidSelection) {
			t.Fatalf("Select() error = %v, want ErrInvalidSelection", err)
		}
		expectEvent(t, ch, EventError)
	})

	t.Run("unknown action rejected", func(t *testing.T) {
		s, _ := newTestSession(t, staticScanner(), Config{})

		if err := s.Select("NetA", "bogus"); !errors.Is(err, ErrInvalidSelection) {
			t.Fatalf("Select() error = %v, want ErrInvalidSelection", err)
		}
	})

	t.Run("all and clear", func(t *testing.T) {
		s, ch := newTestSession(t, staticScanner(), Config{})

		if err := s.Select("", "all"); err != nil {
			t.Fatalf("Select(all) error = %v", err)
		}
		p := waitForStatus(t, ch, StatusSelectionChanged)
		if !p.TrackingAll {
			t.Error("TrackingAll = false after Select(all), want true")
		}
		if err := s.Select("", "clear"); err != nil {
			t.Fatalf("Select(clear) error = %v", err)
		}
		p = waitForStatus(t, ch, StatusSelectionChanged)
		if p.TrackingAll {
			t.Error("TrackingAll = true after Select(clear), want false")
		}
		if targets := s.Targets(); len(targets) != 0 {
			t.Errorf("Targets() after clear = %v, want none", targets)
		}
	})
}

// TestSession_SelectionChangeAffectsNextTick verifies a selection change on
// a running session takes effect without a restart.
func TestSession_SelectionChangeAffectsNextTick(t *testing.T) {
	sc := staticScanner(obs("NetA", -50), obs("NetB", -60))
	s, _ := newTestSession(t, sc, Config{Interval: 30 * time.Millisecond})

	if err := s.Start(context.Background(), StartOptions{Target: "NetA"}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()
	waitUntil(t, func() bool {
		hist, _ := s.History("NetA")
		return len(hist) >= 1
	}, "initial target never recorded")

	if err := s.Select("NetB", ""); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	waitUntil(t, func() bool {
		hist, ok := s.History("NetB")
		return ok && len(hist) >= 1
	}, "new target not picked up by the next tick")
}

func TestSession_RefreshClearsHistoryKeepsLatest(t *testing.T) {
	sc := staticScanner(obs("NetA", -50))
	s, ch := newTestSession(t, sc, Config{Interval: time.Hour})

	if err := s.Start(context.Background(), StartOptions{Target: "NetA"}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()
	waitUntil(t, func() bool {
		hist, _ := s.History("NetA")
		return len(hist) == 1
	}, "first poll did not record NetA")

	s.Refresh()
	waitForStatus(t, ch, StatusRefreshed)

	if hist, ok := s.History("NetA"); !ok || len(hist) != 0 {
		t.Errorf("History(NetA) after refresh = %d samples, ok=%v, want empty but known", len(hist), ok)
	}
	if tracked := s.Tracked(); len(tracked) != 1 || tracked[0].SSID != "NetA" {
		t.Errorf("Tracked() after refresh = %v, want latest observation kept", tracked)
	}
}
