// Package hub provides in-memory fan-out of device-state notifications to
// every connected session.
package hub

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/tusharNova/hgr/internal/device"
	"github.com/tusharNova/hgr/internal/metrics"
)

// subscriberBufferSize is the channel buffer for each subscriber. A session
// that falls this far behind is evicted rather than allowed to stall the
// publishing mutation.
const subscriberBufferSize = 64

// Hub delivers device updates to all subscribed sessions. Publish never
// blocks: per-subscriber delivery goes through a bounded channel, and a full
// or closed channel deregisters that subscriber only.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]chan device.Update
	closed      bool
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// New creates a hub. Pass nil logger for the default.
func New(logger *slog.Logger, m *metrics.Metrics) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subscribers: make(map[string]chan device.Update),
		logger:      logger.With("component", "hub"),
		metrics:     m,
	}
}

// Subscribe registers a subscriber and returns its update channel and a
// subscription id. The subscription is cleaned up automatically when ctx is
// cancelled; the channel is closed on deregistration.
func (h *Hub) Subscribe(ctx context.Context) (<-chan device.Update, string) {
	subID := uuid.New().String()
	ch := make(chan device.Update, subscriberBufferSize)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, subID
	}
	h.subscribers[subID] = ch
	h.mu.Unlock()

	h.logger.Debug("subscriber added", "sub_id", subID)

	go func() {
		<-ctx.Done()
		h.Unsubscribe(subID)
	}()

	return ch, subID
}

// Publish delivers an update to every subscriber. Sends are non-blocking;
// subscribers whose channel is full are deregistered after the send pass so
// that a slow session never delays the mutation that triggered the update.
func (h *Hub) Publish(u device.Update) {
	// The read lock is held across the send pass: Unsubscribe closes
	// subscriber channels under the write lock, so a send outside the lock
	// could hit a channel closed by a concurrent disconnect. Sends are
	// non-blocking, which bounds the hold.
	h.mu.RLock()
	var evicted []string
	for id, ch := range h.subscribers {
		select {
		case ch <- u:
		default:
			evicted = append(evicted, id)
		}
	}
	h.mu.RUnlock()

	for _, id := range evicted {
		h.logger.Warn("evicting slow subscriber", "sub_id", id, "device_id", u.DeviceID)
		h.metrics.RecordEviction()
		h.Unsubscribe(id)
	}
}

// Unsubscribe removes a subscription and closes its channel. Safe to call
// more than once.
func (h *Hub) Unsubscribe(subID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch, ok := h.subscribers[subID]
	if !ok {
		return
	}

	delete(h.subscribers, subID)
	close(ch)

	h.logger.Debug("subscriber removed", "sub_id", subID)
}

// Count returns the number of active subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close shuts down the hub and closes all subscriber channels.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for subID, ch := range h.subscribers {
		close(ch)
		delete(h.subscribers, subID)
	}

	h.logger.Debug("hub closed")
}
