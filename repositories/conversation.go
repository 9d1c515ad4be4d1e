//go:generate go run go.uber.org/mock/mockgen -source=conversation.go -destination=../mocks/mock_conversation_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"realchat/errors"
)

type IConversationRepository interface {
	StoreConversation(conv DiskConversation) error
	GetConversation(id string) (DiskConversation, error)
}

// DiskConversation is the persisted record shape. The participant list
// is immutable after creation; there is no update operation.
type DiskConversation struct {
	ID           string    `json:"id"`
	Title        *string   `json:"title"`
	Participants []string  `json:"participants"`
	CreatedAt    time.Time `json:"createdAt"`
}

type ConversationRepository struct {
	db *badger.DB
}

func NewConversationRepository(db *badger.DB) ConversationRepository {
	return ConversationRepository{db: db}
}

func conversationKey(id string) []byte {
	return []byte("conv:" + id)
}

func (r ConversationRepository) StoreConversation(conv DiskConversation) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(conversationKey(conv.ID), data)
	})
}

func (r ConversationRepository) GetConversation(id string) (DiskConversation, error) {
	var conv DiskConversation
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(conversationKey(id))
		if err == badger.ErrKeyNotFound {
			return errors.ErrConversationNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &conv)
		})
	})
	return conv, err
}
