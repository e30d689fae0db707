package scan

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// mockNetwork is one entry in the simulated neighborhood roster.
type mockNetwork struct {
	ssid     string
	baseDBm  int
	security string
}

// The simulated neighborhood: a fixed roster spanning the realistic signal
// range from a strong neighbor (-55 dBm) down to a barely-visible one.
var mockNetworks = []mockNetwork{
	{"Neighbor_WiFi_5G", -55, "WPA2"},
	{"TP-Link_Home", -62, "WPA2"},
	{"Office_Network", -68, "WPA2-Enterprise"},
	{"Guest_Hotspot", -72, "Open"},
	{"Netgear_2.4G", -75, "WPA2"},
	{"Linksys_5GHz", -78, "WPA2"},
	{"CoffeeShop_Free", -81, "Open"},
	{"Apartment_203", -84, "WPA2"},
}

// Channel pools per band; even roster indexes get 2.4 GHz channels, odd
// indexes get 5 GHz channels.
var (
	channels24 = []int{1, 6, 11}
	channels5  = []int{36, 40, 44, 48, 149, 153, 157, 161}
)

// SimulatedScanner produces mock snapshots that behave like a real
// neighborhood: stable SSIDs with up to ±3 dBm of per-scan signal jitter
// and plausible per-band channels.
//
// It serves demos, development on machines without a WiFi adapter, and the
// fallback side of [FallbackScanner].
type SimulatedScanner struct {
	mu  sync.Mutex
	rng *rand.Rand
}

var _ Scanner = (*SimulatedScanner)(nil)

// NewSimulatedScanner creates a [SimulatedScanner] with its own random
// source. Safe for concurrent use.
func NewSimulatedScanner() *SimulatedScanner {
	return &SimulatedScanner{
		rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// Scan returns the mock roster with fresh jitter. It only fails when the
// context is already cancelled.
func (s *SimulatedScanner) Scan(ctx context.Context) ([]Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	capturedAt := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	networks := make([]Observation, 0, len(mockNetworks))
	for i, mock := range mockNetworks {
		signal := mock.baseDBm + s.rng.IntN(7) - 3

		var channel int
		if i%2 == 0 {
			channel = channels24[s.rng.IntN(len(channels24))]
		} else {
			channel = channels5[s.rng.IntN(len(channels5))]
		}

		networks = append(networks, Observation{
			SSID:       mock.ssid,
			SignalDBm:  signal,
			Quality:    Quality(signal),
			Channel:    channel,
			Band:       BandLabel(channel),
			Security:   mock.security,
			CapturedAt: capturedAt,
		})
	}

	return networks, nil
}
