package services

import (
	"realchat/domain"
	"realchat/errors"
	"realchat/repositories"
)

// IDirectoryService creates conversations and resolves their membership.
// Participant lists are immutable after creation; there is deliberately
// no add/remove operation.
type IDirectoryService interface {
	Create(creatorID string, participantIDs []string, title *string) (domain.Conversation, error)
	Get(conversationID string) (domain.Conversation, error)
}

type DirectoryService struct {
	conversations repositories.IConversationRepository
}

func NewDirectoryService(repo repositories.IConversationRepository) IDirectoryService {
	return &DirectoryService{conversations: repo}
}

func (s *DirectoryService) Create(creatorID string, participantIDs []string, title *string) (domain.Conversation, error) {
	if creatorID == "" {
		return domain.Conversation{}, errors.ErrUnauthenticated
	}

	conv := domain.NewConversation(creatorID, participantIDs, title)
	err := s.conversations.StoreConversation(repositories.DiskConversation{
		ID:           conv.ID,
		Title:        conv.Title,
		Participants: conv.Participants,
		CreatedAt:    conv.CreatedAt,
	})
	if err != nil {
		return domain.Conversation{}, err
	}
	return conv, nil
}

func (s *DirectoryService) Get(conversationID string) (domain.Conversation, error) {
	disk, err := s.conversations.GetConversation(conversationID)
	if err != nil {
		return domain.Conversation{}, err
	}
	return domain.Conversation{
		ID:           disk.ID,
		Title:        disk.Title,
		Participants: disk.Participants,
		CreatedAt:    disk.CreatedAt,
	}, nil
}
