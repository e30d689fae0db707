package monitor

import "github.com/jpalmerr/wifiboard/internal/scan"

// history is a fixed-capacity FIFO of observations for one network. When a
// sample arrives at capacity the oldest is evicted, so the buffer always
// holds the most recently captured samples in arrival order. It is owned by
// the Session and must only be touched with the session lock held.
type history struct {
	capacity int
	samples  []scan.Observation
}

func newHistory(capacity int) *history {
	return &history{capacity: capacity, samples: make([]scan.Observation, 0, capacity)}
}

// add appends o, evicting the oldest sample when the buffer is full.
func (h *history) add(o scan.Observation) {
	if len(h.samples) == h.capacity {
		copy(h.samples, h.samples[1:])
		h.samples[len(h.samples)-1] = o
		return
	}
	h.samples = append(h.samples, o)
}

func (h *history) size() int { return len(h.samples) }

// snapshot returns a copy safe to read while the session keeps appending.
func (h *history) snapshot() []scan.Observation {
	out := make([]scan.Observation, len(h.samples))
	copy(out, h.samples)
	return out
}

// clear empties the buffer. Only an explicit refresh clears history;
// stopping the session preserves it.
func (h *history) clear() {
	h.samples = h.samples[:0]
}
