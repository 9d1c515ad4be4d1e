package runtime

import (
	"context"
	"log/slog"
	"sync"

	"realchat/contract"
	"realchat/domain/event"
)

// Groups maps broadcast groups (one per conversation) to the sinks of
// their subscribed connections. Readers never observe a half-updated
// set; broadcast fan-out is best effort and per-sink failures are
// isolated from each other.
type Groups struct {
	mu      sync.RWMutex
	members map[string]map[string]contract.EventSink // group -> conn -> sink
	log     *slog.Logger
}

func NewGroups(log *slog.Logger) *Groups {
	return &Groups{
		members: make(map[string]map[string]contract.EventSink),
		log:     log,
	}
}

// Subscribe adds a connection's sink to a group, creating the group on
// first use. Subscribing twice replaces the previous sink.
func (g *Groups) Subscribe(groupID, connID string, sink contract.EventSink) {
	g.mu.Lock()
	defer g.mu.Unlock()

	conns, ok := g.members[groupID]
	if !ok {
		conns = make(map[string]contract.EventSink)
		g.members[groupID] = conns
	}
	conns[connID] = sink
}

// Unsubscribe removes a connection from one group. Empty groups are
// removed entirely to avoid leaking entries over time.
func (g *Groups) Unsubscribe(groupID, connID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.remove(groupID, connID)
}

// UnsubscribeAll removes a connection from every group it joined.
// Called when the connection closes.
func (g *Groups) UnsubscribeAll(connID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for groupID := range g.members {
		g.remove(groupID, connID)
	}
}

func (g *Groups) remove(groupID, connID string) {
	conns, ok := g.members[groupID]
	if !ok {
		return
	}
	delete(conns, connID)
	if len(conns) == 0 {
		delete(g.members, groupID)
	}
}

// Broadcast fans an event out to every connection subscribed to the
// group. Delivery happens on a membership snapshot taken under the read
// lock, so a sink that fails or unsubscribes mid-delivery never affects
// the others.
func (g *Groups) Broadcast(ctx context.Context, groupID string, e event.DomainEvent) {
	g.mu.RLock()
	sinks := make([]contract.EventSink, 0, len(g.members[groupID]))
	for _, sink := range g.members[groupID] {
		sinks = append(sinks, sink)
	}
	g.mu.RUnlock()

	for _, sink := range sinks {
		if err := sink.Consume(ctx, e); err != nil {
			g.log.Debug("Event delivery failed", "group_id", groupID, "event", e.EventName(), "error", err)
		}
	}
}

// Subscribed reports whether a connection currently belongs to a group.
func (g *Groups) Subscribed(groupID, connID string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.members[groupID][connID]
	return ok
}
