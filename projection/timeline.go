// Package projection builds local conversation timelines from observed
// events. Handles ordering, deduplication, and read-state tracking.
// Does not emit events or interact with the transport directly.
package projection

import (
	"sort"

	"github.com/google/uuid"

	"realchat/domain"
	"realchat/domain/event"
)

// Timeline holds the local view of one conversation. Feeding it the
// event stream of a session (history snapshot plus live events) yields
// the same ordered message list the server would serve.
type Timeline struct {
	ConvID   string
	Messages []domain.Message
	seen     map[uuid.UUID]int
}

func NewTimeline(convID string) *Timeline {
	return &Timeline{
		ConvID: convID,
		seen:   make(map[uuid.UUID]int),
	}
}

// Consume folds one event into the timeline. Events for other
// conversations and duplicate messages are ignored.
func (t *Timeline) Consume(e event.DomainEvent) {
	switch evt := e.(type) {
	case event.History:
		if evt.ConvID != t.ConvID {
			return
		}
		for _, message := range evt.Messages {
			t.add(message)
		}
	case event.NewMessage:
		if evt.Message.ConvID != t.ConvID {
			return
		}
		t.add(evt.Message)
	case event.MessageRead:
		if evt.ConvID != t.ConvID {
			return
		}
		t.markRead(evt.MessageID, evt.UserID)
	}
}

func (t *Timeline) add(message domain.Message) {
	if _, ok := t.seen[message.ID]; ok {
		return
	}
	t.Messages = append(t.Messages, message)
	sort.SliceStable(t.Messages, func(i, j int) bool {
		return t.Messages[i].CreatedAt.Before(t.Messages[j].CreatedAt)
	})
	for i, m := range t.Messages {
		t.seen[m.ID] = i
	}
}

func (t *Timeline) markRead(messageID, userID string) {
	id, err := uuid.Parse(messageID)
	if err != nil {
		return
	}
	index, ok := t.seen[id]
	if !ok {
		return
	}
	for _, reader := range t.Messages[index].ReadBy {
		if reader == userID {
			return
		}
	}
	t.Messages[index].ReadBy = append(t.Messages[index].ReadBy, userID)
}
