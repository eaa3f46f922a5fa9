package stream

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/rickgao/delivery-planner/internal/metrics"
	"github.com/rickgao/delivery-planner/internal/model"
)

// ErrHubClosed is returned by Subscribe after Close.
var ErrHubClosed = errors.New("stream hub closed")

// Subscription receives plans published after it was created. C is closed
// on Unsubscribe or when the hub closes.
type Subscription struct {
	ID uint64
	C  <-chan *model.DeliveryPlan

	ch      chan *model.DeliveryPlan
	dropped atomic.Int64
}

// Dropped returns how many plans this subscriber missed.
func (s *Subscription) Dropped() int64 {
	return s.dropped.Load()
}

// HubStats reports hub activity.
type HubStats struct {
	Subscribers int
	Published   int64
	Dropped     int64
}

// Hub broadcasts plans to subscribers.
type Hub struct {
	bufferSize int
	logger     *slog.Logger

	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64
	closed bool

	published atomic.Int64
	dropped   atomic.Int64
}

// NewHub creates a hub whose subscribers buffer up to bufferSize plans.
func NewHub(bufferSize int, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Hub{
		bufferSize: bufferSize,
		logger:     logger.With("component", "stream_hub"),
		subs:       make(map[uint64]*Subscription),
	}
}

// Publish delivers plan to every subscriber without blocking.
func (h *Hub) Publish(plan *model.DeliveryPlan) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}
	h.published.Add(1)

	for _, sub := range h.subs {
		select {
		case sub.ch <- plan:
		default:
			sub.dropped.Add(1)
			h.dropped.Add(1)
			metrics.StreamDropped.Inc()
			h.logger.Debug("subscriber buffer full, dropping plan",
				"subscriber", sub.ID,
				"plan_id", plan.ID,
			)
		}
	}
}

// Subscribe registers a new subscriber.
func (h *Hub) Subscribe() (*Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}

	h.nextID++
	ch := make(chan *model.DeliveryPlan, h.bufferSize)
	sub := &Subscription{ID: h.nextID, C: ch, ch: ch}
	h.subs[sub.ID] = sub

	metrics.StreamSubscribers.Inc()
	return sub, nil
}

// Unsubscribe removes sub and closes its channel. It is safe to call more
// than once.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[sub.ID]; !ok {
		return
	}
	delete(h.subs, sub.ID)
	close(sub.ch)
	metrics.StreamSubscribers.Dec()
}

// Close disconnects every subscriber. Later publishes are ignored.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for id, sub := range h.subs {
		delete(h.subs, id)
		close(sub.ch)
		metrics.StreamSubscribers.Dec()
	}

	h.logger.Info("stream hub closed",
		"published", h.published.Load(),
		"dropped", h.dropped.Load(),
	)
}

// Stats returns current counters.
func (h *Hub) Stats() HubStats {
	h.mu.RLock()
	n := len(h.subs)
	h.mu.RUnlock()

	return HubStats{
		Subscribers: n,
		Published:   h.published.Load(),
		Dropped:     h.dropped.Load(),
	}
}
