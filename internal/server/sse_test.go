package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jpalmerr/wifiboard/internal/monitor"
	"github.com/jpalmerr/wifiboard/internal/stream"
)

func TestHandleEvents_SeedsClient(t *testing.T) {
	srv, session := newTestServer(t, staticScanner(obs("NetA", -50)), Config{})

	// populate the latest snapshot so the seed has something to carry
	if _, err := session.ScanOnce(context.Background()); err != nil {
		t.Fatalf("ScanOnce() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	body := rec.Body.String()
	idxStatus := strings.Index(body, "event: monitoring_status")
	idxNetworks := strings.Index(body, "event: networks_update")
	if idxStatus < 0 || idxNetworks < 0 {
		t.Fatalf("seed events missing, got: %s", body)
	}
	if idxStatus > idxNetworks {
		t.Error("monitoring_status should be seeded before networks_update")
	}
	if !strings.Contains(body, `"status":"stopped"`) {
		t.Errorf("idle session should seed a stopped status, got: %s", body)
	}
	if !strings.Contains(body, "NetA") {
		t.Errorf("seed should carry the latest snapshot, got: %s", body)
	}
}

func TestHandleEvents_StreamsPublishedEvents(t *testing.T) {
	srv, _ := newTestServer(t, staticScanner(), Config{})

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		srv.handleEvents(rec, req)
		close(done)
	}()

	// give handler time to subscribe
	time.Sleep(50 * time.Millisecond)

	srv.hub.Publish(stream.Event{
		Type:    monitor.EventError,
		Payload: monitor.ErrorPayload{Message: "scan failed: boom"},
	})

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("handler did not exit after context cancellation")
	}

	body := rec.Body.String()
	if !strings.Contains(body, "event: error") {
		t.Errorf("expected a named error event, got: %s", body)
	}
	if !strings.Contains(body, "boom") {
		t.Errorf("expected the published message, got: %s", body)
	}
}

func TestHandleEvents_ClientDisconnect(t *testing.T) {
	srv, _ := newTestServer(t, staticScanner(), Config{})

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		srv.handleEvents(rec, req)
		close(done)
	}()

	// simulate client disconnect
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("handler did not exit after client disconnect")
	}
}

func TestHandleEvents_Headers(t *testing.T) {
	srv, _ := newTestServer(t, staticScanner(), Config{})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	srv.handleEvents(rec, req)

	expectedHeaders := map[string]string{
		"Content-Type":                "text/event-stream",
		"Cache-Control":               "no-cache",
		"Connection":                  "keep-alive",
		"Access-Control-Allow-Origin": "*",
	}
	for key, expected := range expectedHeaders {
		if got := rec.Header().Get(key); got != expected {
			t.Errorf("header %s = %q, want %q", key, got, expected)
		}
	}
}

// nonFlushWriter is a ResponseWriter without Flusher support.
type nonFlushWriter struct {
	header     http.Header
	statusCode int
	body       []byte
}

func (n *nonFlushWriter) Header() http.Header {
	return n.header
}

func (n *nonFlushWriter) Write(b []byte) (int, error) {
	n.body = append(n.body, b...)
	return len(b), nil
}

func (n *nonFlushWriter) WriteHeader(statusCode int) {
	n.statusCode = statusCode
}

func TestHandleEvents_SSENotSupported(t *testing.T) {
	srv, _ := newTestServer(t, staticScanner(), Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	w := &nonFlushWriter{header: make(http.Header)}
	srv.handleEvents(w, req)

	if w.statusCode != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.statusCode)
	}
}

// TestHandleEvents_ServerShutdownIntegration tests that SSE handlers exit
// cleanly when the server is shut down, using a real HTTP connection.
func TestHandleEvents_ServerShutdownIntegration(t *testing.T) {
	srv, _ := newTestServer(t, staticScanner(obs("NetA", -50)), Config{})

	serverCtx, serverCancel := context.WithCancel(context.Background())

	// derive request contexts from the server context, simulating BaseContext
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = r.WithContext(serverCtx)
		srv.handleEvents(w, r)
	})

	ts := httptest.NewServer(handler)
	defer ts.Close()

	client := ts.Client()
	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	connDone := make(chan error, 1)
	go func() {
		resp, err := client.Do(req)
		if err != nil {
			connDone <- err
			return
		}
		defer func() { _ = resp.Body.Close() }()

		// read until connection closes
		buf := make([]byte, 1024)
		for {
			if _, err := resp.Body.Read(buf); err != nil {
				connDone <- nil // expected, connection closed
				return
			}
		}
	}()

	// give connection time to establish
	time.Sleep(100 * time.Millisecond)

	serverCancel()

	select {
	case <-connDone:
	case <-time.After(3 * time.Second):
		t.Fatal("SSE connection did not close after server shutdown")
	}
}
