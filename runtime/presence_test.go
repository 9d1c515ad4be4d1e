package runtime

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"realchat/domain/event"
)

// recordingAnnouncer captures announced events for assertions.
type recordingAnnouncer struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func (r *recordingAnnouncer) Announce(e event.DomainEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingAnnouncer) snapshot() []event.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event.DomainEvent{}, r.events...)
}

func TestPresenceRegistry_Transitions(t *testing.T) {
	req := require.New(t)
	announcer := &recordingAnnouncer{}
	presence := NewPresenceRegistry(announcer, slog.Default())

	req.False(presence.IsOnline("alice"))

	// First connection: exactly one UserOnline.
	presence.Bind("conn-1", "alice")
	req.True(presence.IsOnline("alice"))
	req.Equal([]event.DomainEvent{event.UserOnline{UserID: "alice"}}, announcer.snapshot())

	// Second connection of the same user: no event.
	presence.Bind("conn-2", "alice")
	req.Len(announcer.snapshot(), 1)

	// Intermediate unbind while another connection remains: no event.
	presence.Unbind("conn-1")
	req.True(presence.IsOnline("alice"))
	req.Len(announcer.snapshot(), 1)

	// Last connection gone: exactly one UserOffline.
	presence.Unbind("conn-2")
	req.False(presence.IsOnline("alice"))
	req.Equal([]event.DomainEvent{
		event.UserOnline{UserID: "alice"},
		event.UserOffline{UserID: "alice"},
	}, announcer.snapshot())
}

func TestPresenceRegistry_BindIsIdempotentPerConnection(t *testing.T) {
	req := require.New(t)
	announcer := &recordingAnnouncer{}
	presence := NewPresenceRegistry(announcer, slog.Default())

	presence.Bind("conn-1", "alice")
	presence.Bind("conn-1", "alice")
	req.Len(announcer.snapshot(), 1)

	presence.Unbind("conn-1")
	req.False(presence.IsOnline("alice"))
	req.Len(announcer.snapshot(), 2)
}

func TestPresenceRegistry_RebindMovesConnection(t *testing.T) {
	req := require.New(t)
	announcer := &recordingAnnouncer{}
	presence := NewPresenceRegistry(announcer, slog.Default())

	presence.Bind("conn-1", "alice")
	presence.Bind("conn-1", "bob")

	req.False(presence.IsOnline("alice"))
	req.True(presence.IsOnline("bob"))
	req.Equal([]event.DomainEvent{
		event.UserOnline{UserID: "alice"},
		event.UserOffline{UserID: "alice"},
		event.UserOnline{UserID: "bob"},
	}, announcer.snapshot())
}

func TestPresenceRegistry_UnbindUnknownConnection(t *testing.T) {
	announcer := &recordingAnnouncer{}
	presence := NewPresenceRegistry(announcer, slog.Default())

	presence.Unbind("ghost")
	require.Empty(t, announcer.snapshot())
}

// Whatever the interleaving, a user flapping through concurrent binds
// and unbinds must end with balanced online/offline announcements.
func TestPresenceRegistry_ConcurrentBindUnbind(t *testing.T) {
	req := require.New(t)
	announcer := &recordingAnnouncer{}
	presence := NewPresenceRegistry(announcer, slog.Default())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			connID := string(rune('a' + n%26))
			presence.Bind(connID, "alice")
			presence.Unbind(connID)
		}(i)
	}
	wg.Wait()

	req.False(presence.IsOnline("alice"))

	var online, offline int
	for _, e := range announcer.snapshot() {
		switch e.(type) {
		case event.UserOnline:
			online++
		case event.UserOffline:
			offline++
		}
	}
	req.Equal(online, offline)
	req.Positive(online)
}

func TestPresenceRegistry_OnlineUsers(t *testing.T) {
	req := require.New(t)
	presence := NewPresenceRegistry(&recordingAnnouncer{}, slog.Default())

	presence.Bind("conn-1", "alice")
	presence.Bind("conn-2", "bob")
	presence.Bind("conn-3", "bob")

	req.ElementsMatch([]string{"alice", "bob"}, presence.OnlineUsers())
}
