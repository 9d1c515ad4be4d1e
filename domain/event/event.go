// Package event defines the domain events delivered to connections.
// Event names match the wire protocol consumed by clients.
package event

import (
	"realchat/domain"
)

type DomainEvent interface {
	EventName() string
}

// ConversationEvent is a DomainEvent routed to a conversation's
// broadcast group rather than to every connection.
type ConversationEvent interface {
	DomainEvent
	ConversationID() string
}

type UserOnline struct {
	UserID string
}

func (UserOnline) EventName() string { return "user_online" }

type UserOffline struct {
	UserID string
}

func (UserOffline) EventName() string { return "user_offline" }

type NewMessage struct {
	Message domain.Message
}

func (NewMessage) EventName() string { return "new_message" }

func (e NewMessage) ConversationID() string { return e.Message.ConvID }

type MessageRead struct {
	ConvID    string
	MessageID string
	UserID    string
}

func (MessageRead) EventName() string { return "message_read" }

func (e MessageRead) ConversationID() string { return e.ConvID }

type ConversationCreated struct {
	Conversation domain.Conversation
}

func (ConversationCreated) EventName() string { return "conv_created" }

type History struct {
	ConvID   string
	Messages []domain.Message
}

func (History) EventName() string { return "conv_history" }
