package ws

import (
	"sync"
)

type Conn interface {
	Send(msg Message) error
	Close() error
	MeetingKey() string
}

// Hub tracks which connections watch which meeting.
type Hub struct {
	mu       sync.RWMutex
	meetings map[string]map[Conn]struct{} // meeting key -> set of connections
}

func NewHub() *Hub {
	return &Hub{meetings: make(map[string]map[Conn]struct{})}
}

func (h *Hub) Add(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ms, ok := h.meetings[c.MeetingKey()]
	if !ok {
		ms = make(map[Conn]struct{})
		h.meetings[c.MeetingKey()] = ms
	}
	ms[c] = struct{}{}
}

func (h *Hub) Remove(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ms, ok := h.meetings[c.MeetingKey()]; ok {
		delete(ms, c)
		if len(ms) == 0 {
			delete(h.meetings, c.MeetingKey())
		}
	}
}

// HasWatchers reports whether anyone is subscribed to a meeting, so callers
// can skip building a snapshot nobody would receive.
func (h *Hub) HasWatchers(meetingKey string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.meetings[meetingKey]) > 0
}

func (h *Hub) Broadcast(meetingKey string, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if ms, ok := h.meetings[meetingKey]; ok {
		for c := range ms {
			_ = c.Send(msg) // best-effort
		}
	}
}
