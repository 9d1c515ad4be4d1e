package gateway

import (
	"log/slog"
	"sync"

	"realchat/domain/event"
)

// Hub tracks every live session, so presence transitions can be
// announced to all connections regardless of group membership.
// It implements contract.Announcer.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	log      *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{sessions: make(map[string]*Session), log: log}
}

func (h *Hub) Register(session *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[session.ID()] = session
}

func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, connID)
}

// Announce frames the event once and queues it on every session.
// Delivery is best effort and never blocks; PresenceRegistry calls this
// while holding its lock.
func (h *Hub) Announce(e event.DomainEvent) {
	data, err := marshalEvent(e)
	if err != nil {
		h.log.Error("Failed to frame announcement", "event", e.EventName(), "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, session := range h.sessions {
		if err := session.enqueue(data); err != nil {
			h.log.Debug("Announcement dropped", "conn_id", session.ID(), "event", e.EventName())
		}
	}
}
