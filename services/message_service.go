package services

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"realchat/codec"
	"realchat/domain"
	"realchat/errors"
	"realchat/moderation"
	"realchat/repositories"
)

// IMessageService is the message store: it owns encryption at rest,
// history retrieval, and read markers.
type IMessageService interface {
	Append(convID, senderID, text string) (domain.Message, error)
	History(convID string, limit int) ([]domain.Message, error)
	MarkRead(messageID uuid.UUID, userID string) (domain.Message, error)
}

type MessageService struct {
	messages      repositories.IMessageRepository
	conversations repositories.IConversationRepository
	moderator     *moderation.Moderator
	secret        string
	log           *slog.Logger
}

func NewMessageService(messages repositories.IMessageRepository,
	conversations repositories.IConversationRepository,
	moderator *moderation.Moderator, secret string, log *slog.Logger) *MessageService {
	return &MessageService{
		messages:      messages,
		conversations: conversations,
		moderator:     moderator,
		secret:        secret,
		log:           log,
	}
}

// Append censors, encrypts, and persists a message. The read-set starts
// as {sender}. The conversation is validated to exist so a bad convID
// surfaces ErrConversationNotFound instead of writing an orphan record.
func (s *MessageService) Append(convID, senderID, text string) (domain.Message, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Message{}, errors.ErrEmptyMessage
	}
	if _, err := s.conversations.GetConversation(convID); err != nil {
		return domain.Message{}, err
	}

	if s.moderator != nil {
		text = s.moderator.Censor(text)
	}

	encrypted, err := codec.Encrypt(text, s.secret)
	if err != nil {
		return domain.Message{}, fmt.Errorf("encryption failed: %w", err)
	}

	disk := repositories.DiskMessage{
		ID:            uuid.New(),
		ConvID:        convID,
		SenderID:      senderID,
		TextEncrypted: encrypted,
		CreatedAt:     time.Now().UTC(),
		ReadBy:        []string{senderID},
	}
	if err = s.messages.StoreMessage(disk); err != nil {
		return domain.Message{}, err
	}

	message := s.toMessage(disk)
	message.Text = &text // skip the decrypt round-trip for the fresh message
	return message, nil
}

// History returns up to limit messages, oldest first. A body that fails
// to decrypt degrades to a nil Text for that message only; the fetch
// itself never fails because of one unreadable blob.
func (s *MessageService) History(convID string, limit int) ([]domain.Message, error) {
	disk, err := s.messages.GetMessages(convID, limit)
	if err != nil {
		return nil, err
	}
	return lo.Map(disk, func(item repositories.DiskMessage, _ int) domain.Message {
		return s.toMessage(item)
	}), nil
}

// MarkRead idempotently adds userID to the message's read-set and
// returns the updated message.
func (s *MessageService) MarkRead(messageID uuid.UUID, userID string) (domain.Message, error) {
	disk, err := s.messages.AddReader(messageID, userID)
	if err != nil {
		return domain.Message{}, err
	}
	return s.toMessage(disk), nil
}

func (s *MessageService) toMessage(disk repositories.DiskMessage) domain.Message {
	message := domain.Message{
		ID:        disk.ID,
		ConvID:    disk.ConvID,
		SenderID:  disk.SenderID,
		CreatedAt: disk.CreatedAt,
		ReadBy:    disk.ReadBy,
	}
	text, err := codec.Decrypt(disk.TextEncrypted, s.secret)
	if err != nil {
		// Corrupted blob, tampering, or a rotated secret: the body is
		// unavailable but the message envelope is still served.
		s.log.Warn("Message body unavailable", "message_id", disk.ID, "error", err)
		return message
	}
	message.Text = &text
	return message
}
