package engine

import (
	"sync"
	"sync/atomic"
)

// Hub is a game's broadcast stream. Every subscriber receives its own copy
// of everything published after it subscribed and filters by addressee.
type Hub struct {
	buffer int

	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	closed bool

	published atomic.Int64
	dropped   atomic.Int64
}

type Subscription struct {
	C <-chan Outgoing

	ch  chan Outgoing
	hub *Hub
}

func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{buffer: buffer, subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a new receiver. Subscribing to a closed hub yields a
// subscription whose channel is already closed.
func (h *Hub) Subscribe() *Subscription {
	ch := make(chan Outgoing, h.buffer)
	s := &Subscription{C: ch, ch: ch, hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return s
	}
	h.subs[s] = struct{}{}
	return s
}

// Publish hands msg to every subscriber without blocking. A subscriber whose
// buffer is full misses this message.
func (h *Hub) Publish(msg Outgoing) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return 0
	}
	h.published.Add(1)
	delivered := 0
	for s := range h.subs {
		select {
		case s.ch <- msg:
			delivered++
		default:
			h.dropped.Add(1)
		}
	}
	return delivered
}

// Close ends every subscription. Later publishes are discarded.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for s := range h.subs {
		close(s.ch)
		delete(h.subs, s)
	}
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) Dropped() int64 { return h.dropped.Load() }

func (s *Subscription) Close() {
	h := s.hub
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		close(s.ch)
	}
}
