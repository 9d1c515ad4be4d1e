package projection

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"realchat/domain"
	"realchat/domain/event"
)

func newMessage(convID, sender, text string, at time.Time) domain.Message {
	return domain.Message{
		ID:        uuid.New(),
		ConvID:    convID,
		SenderID:  sender,
		Text:      lo.ToPtr(text),
		CreatedAt: at,
		ReadBy:    []string{sender},
	}
}

func TestTimeline_OrdersAndDeduplicates(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline("conv-1")
	now := time.Now()

	first := newMessage("conv-1", "alice", "hello", now)
	second := newMessage("conv-1", "bob", "hi", now.Add(time.Second))

	// Live event arrives before the history snapshot that contains it.
	timeline.Consume(event.NewMessage{Message: second})
	timeline.Consume(event.History{ConvID: "conv-1", Messages: []domain.Message{first, second}})
	timeline.Consume(event.NewMessage{Message: second})

	req.Len(timeline.Messages, 2)
	req.Equal("hello", *timeline.Messages[0].Text)
	req.Equal("hi", *timeline.Messages[1].Text)
}

func TestTimeline_IgnoresOtherConversations(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline("conv-1")

	timeline.Consume(event.NewMessage{Message: newMessage("conv-2", "alice", "elsewhere", time.Now())})
	req.Empty(timeline.Messages)
}

func TestTimeline_TracksReadState(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline("conv-1")

	message := newMessage("conv-1", "alice", "hello", time.Now())
	timeline.Consume(event.NewMessage{Message: message})

	receipt := event.MessageRead{ConvID: "conv-1", MessageID: message.ID.String(), UserID: "bob"}
	timeline.Consume(receipt)
	timeline.Consume(receipt)

	req.ElementsMatch([]string{"alice", "bob"}, timeline.Messages[0].ReadBy)

	// Receipts for unknown messages are dropped, not buffered.
	timeline.Consume(event.MessageRead{ConvID: "conv-1", MessageID: uuid.NewString(), UserID: "clara"})
	req.Len(timeline.Messages, 1)
}
