package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jpalmerr/wifiboard/internal/monitor"
	"github.com/jpalmerr/wifiboard/internal/scan"
)

// handleEvents streams engine events via Server-Sent Events.
//
// Each event is written as a named SSE event whose name is the engine event
// type, so dashboard clients can dispatch with addEventListener. On connect
// the client is seeded with one monitoring_status and one networks_update
// built from current session state before live events flow.
//
// The handler uses write deadlines to prevent goroutine leaks when clients
// are slow or disconnected. Without deadlines, a blocked Fprintf call would
// prevent the handler from detecting context cancellation or channel
// closure.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	// check if flushing is supported
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	// ResponseController provides deadline-aware write and flush operations.
	rc := http.NewResponseController(w)

	// track if write deadlines are supported (may not be for some ResponseWriter impls)
	deadlinesSupported := true

	// writeEvent writes one named SSE event with a deadline to prevent
	// blocking forever. If the client is slow or disconnected, the write
	// will timeout rather than blocking indefinitely, allowing the handler
	// to detect shutdown signals.
	writeEvent := func(name string, payload any) error {
		data, err := json.Marshal(payload)
		if err != nil {
			s.logger.Error("failed to encode event", "event", name, "error", err)
			return nil
		}

		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				// deadline not supported by underlying connection, continue without
				s.logger.Warn("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}

		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data); err != nil {
			return err
		}

		// ResponseController.Flush respects the write deadline
		return rc.Flush()
	}

	// set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// subscribe before seeding so no event falls between snapshot and stream
	id, ch := s.hub.Subscribe()
	defer s.hub.Unsubscribe(id)

	if err := s.seedClient(writeEvent); err != nil {
		return
	}

	// stream events
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := writeEvent(ev.Type, ev.Payload); err != nil {
				return
			}

		case <-r.Context().Done():
			// request context is derived from server context via BaseContext,
			// so this fires on both client disconnect AND server shutdown
			return
		}
	}
}

// seedClient sends the current session state to a freshly connected client:
// a monitoring_status reflecting the state machine and a networks_update
// with the latest snapshot.
func (s *Server) seedClient(writeEvent func(string, any) error) error {
	st := s.session.Status()
	status := monitor.StatusStopped
	if st.State == monitor.StateRunning {
		status = monitor.StatusStarted
	}
	err := writeEvent(monitor.EventStatus, monitor.StatusPayload{
		Status:      status,
		Targets:     st.Targets,
		Mode:        st.Mode,
		TrackingAll: st.TrackingAll,
		Timestamp:   time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	networks, at := s.session.Latest()
	if at.IsZero() {
		at = time.Now().UTC()
	}
	scan.SortByStrength(networks)
	return writeEvent(monitor.EventNetworks, monitor.NetworksPayload{
		Networks:  networks,
		Count:     len(networks),
		Timestamp: at,
	})
}
