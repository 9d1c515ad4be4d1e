package domain

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is a group of participants sharing a message log.
// Membership is fixed at creation; there is no add/remove operation.
type Conversation struct {
	ID           string
	Title        *string
	Participants []string
	CreatedAt    time.Time
}

// NewConversation builds a conversation owned by creatorID. The creator
// is always a participant, even when absent from the requested list.
func NewConversation(creatorID string, participantIDs []string, title *string) Conversation {
	participants := participantIDs
	if !contains(participants, creatorID) {
		participants = append([]string{creatorID}, participants...)
	}
	return Conversation{
		ID:           uuid.NewString(),
		Title:        title,
		Participants: participants,
		CreatedAt:    time.Now().UTC(),
	}
}

func (c Conversation) HasParticipant(userID string) bool {
	return contains(c.Participants, userID)
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
