package httpserver

import (
	"sync"
	"time"

	"github.com/hwmond/hwmond/internal/power"
	"github.com/hwmond/hwmond/internal/probe"
)

// Status is the enriched view of one sampling cycle: the raw snapshot plus
// the derived fan animation state and power source.
type Status struct {
	Snapshot    probe.Snapshot
	CPUFan      FanState
	GPUFan      FanState
	PowerSource power.Source
}

type FanState struct {
	RPM      int
	Duration time.Duration
}

// Hub caches the latest status and fans it out to websocket subscribers.
// Publishing never blocks: a subscriber that falls behind loses the oldest
// buffered status, not the publisher's cycle.
type Hub struct {
	mu          sync.RWMutex
	latest      *Status
	subscribers map[chan Status]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[chan Status]struct{}),
	}
}

// Publish stores the status as the latest and offers it to every subscriber.
func (h *Hub) Publish(status Status) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest = &status
	for ch := range h.subscribers {
		select {
		case ch <- status:
		default:
			// Drop the stale entry and replace it with the fresh one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- status:
			default:
			}
		}
	}
}

// Latest returns the most recently published status, if any cycle has
// completed yet.
func (h *Hub) Latest() (Status, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.latest == nil {
		return Status{}, false
	}

	return *h.latest, true
}

// Subscribe registers a new listener. The returned cancel func must be called
// when the listener goes away.
func (h *Hub) Subscribe() (<-chan Status, func()) {
	ch := make(chan Status, 1)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	if h.latest != nil {
		ch <- *h.latest
	}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subscribers, ch)
		h.mu.Unlock()
	}

	return ch, cancel
}
