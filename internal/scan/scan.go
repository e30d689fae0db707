package scan

import (
	"context"
	"sort"
	"time"
)

// Observation is one timestamped sample of a WiFi network's attributes.
//
// Observations are immutable once produced. JSON field names follow the
// dashboard wire contract; note that Band marshals as "frequency" because it
// carries the human-readable band label (e.g. "2.4 GHz (Ch 6)").
type Observation struct {
	// SSID is the network name, used as the logical source identifier.
	SSID string `json:"ssid"`

	// BSSID is the access point hardware address when the platform tool
	// reports one. Empty otherwise.
	BSSID string `json:"bssid,omitempty"`

	// SignalDBm is the received signal strength in dBm (roughly -100..0).
	SignalDBm int `json:"signal_strength"`

	// Quality is the derived 0-100 quality percentage. See [Quality].
	Quality int `json:"signal_quality"`

	// Channel is the WiFi channel number, 0 when unknown.
	Channel int `json:"channel"`

	// Band is the human-readable band label derived from Channel.
	Band string `json:"frequency"`

	// Security is the security label reported by the platform tool
	// (e.g. "WPA2", "Open").
	Security string `json:"security"`

	// CapturedAt is the time the sample was taken.
	CapturedAt time.Time `json:"timestamp"`
}

// Scanner produces a snapshot of currently visible WiFi networks.
//
// Implementations may block on external tools; callers are expected to bound
// calls with a context deadline. A scan may legitimately return an empty
// snapshot (no networks in range) without an error; callers decide how to
// treat that.
type Scanner interface {
	Scan(ctx context.Context) ([]Observation, error)
}

// SortByStrength orders observations strongest signal first, in place.
// Equal signals keep their relative order.
func SortByStrength(obs []Observation) {
	sort.SliceStable(obs, func(i, j int) bool {
		return obs[i].SignalDBm > obs[j].SignalDBm
	})
}
