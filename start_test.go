package wifiboard

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"
)

// TestStart_BlocksUntilContextCancelled verifies that Start blocks until the
// provided context is cancelled.
func TestStart_BlocksUntilContextCancelled(t *testing.T) {
	// use a high port to avoid conflicts
	wb, err := New(
		WithSimulatedScanner(),
		WithPort(19001),
		WithScanInterval(100*time.Millisecond),
		WithLogger(testLogger()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		close(started)
		done <- wb.Start(ctx)
	}()

	// wait for Start to begin
	<-started
	time.Sleep(50 * time.Millisecond)

	// verify Start is still blocking (channel should be empty)
	select {
	case err := <-done:
		t.Fatalf("Start() returned early with error: %v", err)
	default:
		// expected: still blocking
	}

	// cancel context
	cancel()

	// Start should return within reasonable time
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after context cancellation")
	}
}

// TestStart_ReturnsImmediatelyIfContextAlreadyCancelled verifies that Start
// returns immediately if the context is already cancelled.
func TestStart_ReturnsImmediatelyIfContextAlreadyCancelled(t *testing.T) {
	wb, err := New(
		WithSimulatedScanner(),
		WithPort(19002),
		WithLogger(testLogger()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// create already-cancelled context
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() {
		done <- wb.Start(ctx)
	}()

	// should return quickly since context is already cancelled
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() error = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start() did not return with already-cancelled context")
	}
}

// TestStart_CleanShutdown verifies shutdown drains the callback consumer and
// stops an autostarted monitoring session.
func TestStart_CleanShutdown(t *testing.T) {
	wb, err := New(
		WithScanner(staticScanner{networks: []Observation{{SSID: "NetA", SignalDBm: -45}}}),
		WithAutostart(),
		WithUpdateCallback(func(Update) {}),
		WithPort(19003),
		WithScanInterval(50*time.Millisecond),
		WithLogger(testLogger()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- wb.Start(ctx)
	}()

	// let it run for a bit
	time.Sleep(200 * time.Millisecond)

	// shutdown
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after context cancellation")
	}
}

// TestStart_MultipleSequentialRuns verifies that a new WifiBoard can be
// started after the previous one shuts down.
func TestStart_MultipleSequentialRuns(t *testing.T) {
	for i := 0; i < 3; i++ {
		wb, err := New(
			WithSimulatedScanner(),
			WithPort(19004+i),
			WithScanInterval(50*time.Millisecond),
			WithLogger(testLogger()),
		)
		if err != nil {
			t.Fatalf("iteration %d: New() error = %v", i, err)
		}

		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() {
			done <- wb.Start(ctx)
		}()

		time.Sleep(100 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			if err != nil {
				t.Errorf("iteration %d: Start() returned error: %v", i, err)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("iteration %d: Start() did not return", i)
		}
	}
}

// TestStart_PortInUse verifies a bind failure surfaces as an error rather
// than a hang.
func TestStart_PortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", 19008))
	if err != nil {
		t.Skipf("could not reserve port: %v", err)
	}
	defer ln.Close()

	wb, err := New(
		WithSimulatedScanner(),
		WithPort(19008),
		WithLogger(testLogger()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err = wb.Start(ctx)
	if err == nil {
		t.Fatal("Start() on an occupied port returned nil error")
	}
	if !strings.Contains(err.Error(), "failed to start HTTP server") {
		t.Errorf("Start() error = %v, want HTTP server failure", err)
	}
}

// TestStart_ConcurrentAccess verifies Start is safe with concurrent access patterns.
func TestStart_ConcurrentAccess(t *testing.T) {
	wb, err := New(
		WithSimulatedScanner(),
		WithPort(19010),
		WithScanInterval(50*time.Millisecond),
		WithLogger(testLogger()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup

	// start the server
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = wb.Start(ctx)
	}()

	time.Sleep(100 * time.Millisecond)

	// concurrent calls to read accessors shouldn't panic
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = wb.Port()
			_ = wb.ScanInterval()
			_ = wb.ScanTimeout()
			_ = wb.HistorySize()
		}()
	}

	time.Sleep(50 * time.Millisecond)
	cancel()

	// wait for all goroutines with timeout
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		// success
	case <-time.After(5 * time.Second):
		t.Fatal("goroutines did not complete")
	}
}

// TestStart_WithTimeoutContext verifies Start respects deadline contexts.
func TestStart_WithTimeoutContext(t *testing.T) {
	wb, err := New(
		WithSimulatedScanner(),
		WithPort(19011),
		WithScanInterval(50*time.Millisecond),
		WithLogger(testLogger()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// context with 200ms timeout
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = wb.Start(ctx)
	elapsed := time.Since(start)

	// should have run for approximately 200ms (with some tolerance)
	if elapsed < 150*time.Millisecond || elapsed > 500*time.Millisecond {
		t.Errorf("Start() ran for %v, expected ~200ms", elapsed)
	}

	if err != nil {
		t.Errorf("Start() returned error: %v", err)
	}
}
