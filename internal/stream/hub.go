package stream

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// subscriberBuffer is the per-subscriber channel capacity. A subscriber
// that falls this far behind starts losing events rather than blocking the
// engine.
const subscriberBuffer = 100

// Event is one engine event bound for all subscribers.
//
// Type carries the wire event name ("networks_update", "signal_update",
// "monitoring_status", "error"); Payload is the JSON-marshalable body.
type Event struct {
	Type    string
	Payload any
}

// Hub fans engine events out to subscribers.
//
// Hub is the delivery half of the broadcast path: the monitoring engine
// publishes each tick's events once and every subscriber receives them on
// its own buffered channel. Sends are non-blocking; a full subscriber
// buffer drops that event for that subscriber only.
type Hub struct {
	logger *slog.Logger

	mu   sync.RWMutex
	subs map[string]chan Event

	dropped atomic.Int64
}

// NewHub creates an empty [Hub].
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger: logger,
		subs:   make(map[string]chan Event),
	}
}

// Subscribe registers a new subscriber and returns its id and channel.
//
// The channel has a buffer of 100 events. Callers must pass the returned id
// to [Hub.Unsubscribe] when done to release the subscription and close the
// channel.
func (h *Hub) Subscribe() (string, <-chan Event) {
	id := uuid.NewString()
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()

	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel. Safe to call
// with an unknown id or more than once.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

// Publish delivers an event to every subscriber without blocking.
//
// Full subscriber buffers drop the event for that subscriber; drops are
// counted and logged at debug level.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			h.dropped.Add(1)
			h.logger.Debug("subscriber buffer full, event dropped",
				"subscriber", id,
				"event", ev.Type,
			)
		}
	}
}

// SubscriberCount reports the number of active subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped reports the total number of events dropped on full subscriber
// buffers since the hub was created.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}
