package gateway

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"realchat/domain"
	"realchat/domain/event"
)

// Inbound payloads.

type authenticatePayload struct {
	Token string `json:"token"`
}

type joinConvPayload struct {
	ConvID string `json:"convId"`
}

type createConvPayload struct {
	Title          *string  `json:"title"`
	ParticipantIDs []string `json:"participantIds"`
}

type sendMessagePayload struct {
	ConvID string `json:"convId"`
	Text   string `json:"text"`
}

type markReadPayload struct {
	ConvID    string `json:"convId"`
	MessageID string `json:"messageId"`
}

// Outbound payloads. Field names match what clients already consume.

type authOkPayload struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type presencePayload struct {
	UserID string `json:"userId"`
}

type wireMessage struct {
	ID        string    `json:"_id"`
	ConvID    string    `json:"convId"`
	SenderID  string    `json:"senderId"`
	Text      *string   `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	ReadBy    []string  `json:"readBy"`
}

type wireConversation struct {
	ID           string    `json:"id"`
	Title        *string   `json:"title"`
	Participants []string  `json:"participants"`
	CreatedAt    time.Time `json:"createdAt"`
}

type convHistoryPayload struct {
	ConvID   string        `json:"convId"`
	Messages []wireMessage `json:"messages"`
}

type convCreatedPayload struct {
	ConvID string           `json:"convId"`
	Conv   wireConversation `json:"conv"`
}

type messageReadPayload struct {
	MessageID string `json:"messageId"`
	UserID    string `json:"userId"`
}

type errorPayload struct {
	Op     string `json:"op"`
	Reason string `json:"reason"`
}

func toWireMessage(message domain.Message) wireMessage {
	return wireMessage{
		ID:        message.ID.String(),
		ConvID:    message.ConvID,
		SenderID:  message.SenderID,
		Text:      message.Text,
		CreatedAt: message.CreatedAt,
		ReadBy:    message.ReadBy,
	}
}

func toWireConversation(conv domain.Conversation) wireConversation {
	return wireConversation{
		ID:           conv.ID,
		Title:        conv.Title,
		Participants: conv.Participants,
		CreatedAt:    conv.CreatedAt,
	}
}

// marshalEvent turns a domain event into its wire envelope.
func marshalEvent(e event.DomainEvent) ([]byte, error) {
	switch evt := e.(type) {
	case event.UserOnline:
		return marshalEnvelope(evt.EventName(), presencePayload{UserID: evt.UserID})
	case event.UserOffline:
		return marshalEnvelope(evt.EventName(), presencePayload{UserID: evt.UserID})
	case event.NewMessage:
		return marshalEnvelope(evt.EventName(), toWireMessage(evt.Message))
	case event.MessageRead:
		return marshalEnvelope(evt.EventName(), messageReadPayload{MessageID: evt.MessageID, UserID: evt.UserID})
	case event.ConversationCreated:
		return marshalEnvelope(evt.EventName(), convCreatedPayload{
			ConvID: evt.Conversation.ID,
			Conv:   toWireConversation(evt.Conversation),
		})
	case event.History:
		return marshalEnvelope(evt.EventName(), convHistoryPayload{
			ConvID: evt.ConvID,
			Messages: lo.Map(evt.Messages, func(item domain.Message, _ int) wireMessage {
				return toWireMessage(item)
			}),
		})
	default:
		return nil, fmt.Errorf("no wire mapping for event %q", e.EventName())
	}
}
