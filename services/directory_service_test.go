package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"realchat/errors"
	"realchat/repositories"
)

func TestDirectoryService_Create(t *testing.T) {
	svc := NewDirectoryService(repositories.NewConversationRepository(openTestDB(t)))

	t.Run("creator is always a participant", func(t *testing.T) {
		req := require.New(t)
		conv, err := svc.Create("alice-id", []string{"bob-id"}, lo.ToPtr("plans"))
		req.NoError(err)
		req.ElementsMatch([]string{"alice-id", "bob-id"}, conv.Participants)
		req.True(conv.HasParticipant("alice-id"))

		fetched, err := svc.Get(conv.ID)
		req.NoError(err)
		req.Equal(conv.ID, fetched.ID)
		req.Equal(conv.Participants, fetched.Participants)
	})

	t.Run("creator already listed is not duplicated", func(t *testing.T) {
		req := require.New(t)
		conv, err := svc.Create("alice-id", []string{"alice-id", "bob-id"}, nil)
		req.NoError(err)
		req.Equal([]string{"alice-id", "bob-id"}, conv.Participants)
		req.Nil(conv.Title)
	})

	t.Run("empty creator is rejected", func(t *testing.T) {
		req := require.New(t)
		_, err := svc.Create("", []string{"bob-id"}, nil)
		req.ErrorIs(err, errors.ErrUnauthenticated)
	})
}

func TestDirectoryService_GetNotFound(t *testing.T) {
	svc := NewDirectoryService(repositories.NewConversationRepository(openTestDB(t)))
	_, err := svc.Get(uuid.NewString())
	require.ErrorIs(t, err, errors.ErrConversationNotFound)
}
