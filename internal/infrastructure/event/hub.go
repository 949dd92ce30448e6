package event

import (
	"context"
	"sync"

	"github.com/pot-code/focus-tracker/internal/infrastructure/metrics"
)

// Hub fans events out to in-process subscribers of the event's user
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscriber]struct{}
	buffer int
}

type subscriber struct {
	ch chan *ActivityEvent
}

var _ Publisher = (*Hub)(nil)

// NewHub buffer is the per subscriber queue length
func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{subs: make(map[string]map[*subscriber]struct{}), buffer: buffer}
}

// Subscribe returns a channel receiving userID's events and a cancel func that closes it.
func (h *Hub) Subscribe(userID string) (<-chan *ActivityEvent, func()) {
	sub := &subscriber{ch: make(chan *ActivityEvent, h.buffer)}

	h.mu.Lock()
	set, ok := h.subs[userID]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[userID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()
	metrics.AddLiveSubscribers(1)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[userID], sub)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			close(sub.ch)
			h.mu.Unlock()
			metrics.AddLiveSubscribers(-1)
		})
	}
	return sub.ch, cancel
}

// Publish never blocks, a subscriber with a full queue misses the event
func (h *Hub) Publish(ctx context.Context, evt *ActivityEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[evt.UserID] {
		select {
		case sub.ch <- evt:
		default:
		}
	}
	metrics.IncEventPublished("hub", nil)
	return nil
}

// Subscribers number of open subscriptions of userID
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}
