// Package runtime owns the shared mutable state of the server: presence
// and broadcast-group membership, plus the supervised background workers.
package runtime

import (
	"log/slog"
	"sync"

	"realchat/contract"
	"realchat/domain/event"
)

type Set map[string]struct{}

// PresenceRegistry tracks which connections are bound to which users.
// A user is online iff at least one connection is bound to it. All
// mutations are atomic; online/offline announcements happen under the
// lock so transitions are published exactly once and in order. The
// Announcer must therefore never block.
type PresenceRegistry struct {
	mu         sync.RWMutex
	connToUser map[string]string
	userConns  map[string]Set
	announcer  contract.Announcer
	log        *slog.Logger
}

func NewPresenceRegistry(announcer contract.Announcer, log *slog.Logger) *PresenceRegistry {
	return &PresenceRegistry{
		connToUser: make(map[string]string),
		userConns:  make(map[string]Set),
		announcer:  announcer,
		log:        log,
	}
}

// Bind registers a connection under a user. Binding the user's first
// connection announces UserOnline; further connections are silent.
// Rebinding an already-bound connection to another user detaches it
// first, keeping the connection in exactly one user's set.
func (p *PresenceRegistry) Bind(connID, userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if previous, ok := p.connToUser[connID]; ok {
		if previous == userID {
			return
		}
		p.detach(connID, previous)
	}

	p.connToUser[connID] = userID
	conns, ok := p.userConns[userID]
	if !ok {
		conns = make(Set)
		p.userConns[userID] = conns
	}
	conns[connID] = struct{}{}

	if len(conns) == 1 {
		p.log.Debug("User came online", "user_id", userID)
		p.announcer.Announce(event.UserOnline{UserID: userID})
	}
}

// Unbind removes a connection. Removing the user's last connection
// announces UserOffline. Unbinding an unknown connection is a no-op.
func (p *PresenceRegistry) Unbind(connID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	userID, ok := p.connToUser[connID]
	if !ok {
		return
	}
	delete(p.connToUser, connID)
	p.detach(connID, userID)
}

// detach removes connID from userID's set and announces the offline
// transition when the set drains. Callers must hold the write lock.
func (p *PresenceRegistry) detach(connID, userID string) {
	conns, ok := p.userConns[userID]
	if !ok {
		return
	}
	delete(conns, connID)
	if len(conns) == 0 {
		delete(p.userConns, userID)
		p.log.Debug("User went offline", "user_id", userID)
		p.announcer.Announce(event.UserOffline{UserID: userID})
	}
}

func (p *PresenceRegistry) IsOnline(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.userConns[userID]) > 0
}

// OnlineUsers returns a snapshot of every user with at least one bound
// connection.
func (p *PresenceRegistry) OnlineUsers() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	users := make([]string, 0, len(p.userConns))
	for userID := range p.userConns {
		users = append(users, userID)
	}
	return users
}
