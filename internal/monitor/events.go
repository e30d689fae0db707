package monitor

import (
	"time"

	"github.com/jpalmerr/wifiboard/internal/scan"
	"github.com/jpalmerr/wifiboard/internal/stream"
)

// Wire names for the events published to the stream hub. Dashboard clients
// dispatch on these.
const (
	EventNetworks = "networks_update"
	EventSignal   = "signal_update"
	EventStatus   = "monitoring_status"
	EventError    = "error"
)

// Status values carried by monitoring_status events.
const (
	StatusStarted          = "started"
	StatusStopped          = "stopped"
	StatusSelectionChanged = "selection_changed"
	StatusAlreadyRunning   = "already_running"
	StatusNotRunning       = "not_running"
	StatusRefreshed        = "refreshed"
)

// NetworksPayload is the discovery event: the full unfiltered snapshot of
// visible networks, strongest first.
type NetworksPayload struct {
	Networks  []scan.Observation `json:"networks"`
	Count     int                `json:"count"`
	Timestamp time.Time          `json:"timestamp"`
}

// SignalPayload is the per-network update for a tracked network. It carries
// the latest observation plus the current length of that network's rolling
// history.
type SignalPayload struct {
	scan.Observation
	HistoryLength int `json:"history_length"`
}

// StatusPayload reports a monitoring state or selection change. Targets
// lists explicit members only; TrackingAll disambiguates the empty list,
// which otherwise means "everything" in single mode and "nothing" in multi.
type StatusPayload struct {
	Status      string    `json:"status"`
	Targets     []string  `json:"targets"`
	Mode        Mode      `json:"mode"`
	TrackingAll bool      `json:"tracking_all"`
	Timestamp   time.Time `json:"timestamp"`
}

// ErrorPayload reports a failed tick or a rejected command.
type ErrorPayload struct {
	Message string `json:"message"`
}

// discoveryEvent builds a networks_update event from an unfiltered snapshot.
// The snapshot is copied before sorting so callers keep their ordering.
func discoveryEvent(obs []scan.Observation, at time.Time) stream.Event {
	networks := make([]scan.Observation, len(obs))
	copy(networks, obs)
	scan.SortByStrength(networks)
	return stream.Event{Type: EventNetworks, Payload: NetworksPayload{
		Networks:  networks,
		Count:     len(networks),
		Timestamp: at,
	}}
}

func signalEvent(o scan.Observation, historyLength int) stream.Event {
	return stream.Event{Type: EventSignal, Payload: SignalPayload{
		Observation:   o,
		HistoryLength: historyLength,
	}}
}

func statusEvent(status string, targets []string, mode Mode, all bool, at time.Time) stream.Event {
	return stream.Event{Type: EventStatus, Payload: StatusPayload{
		Status:      status,
		Targets:     targets,
		Mode:        mode,
		TrackingAll: all,
		Timestamp:   at,
	}}
}

func errorEvent(message string) stream.Event {
	return stream.Event{Type: EventError, Payload: ErrorPayload{Message: message}}
}
