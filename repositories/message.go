//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"realchat/errors"
)

type IMessageRepository interface {
	StoreMessage(message DiskMessage) error
	GetMessages(convID string, limit int) ([]DiskMessage, error)
	AddReader(messageID uuid.UUID, userID string) (DiskMessage, error)
}

// DiskMessage is the persisted record shape. The body is stored as the
// codec's opaque blob and is never written to disk unencrypted.
type DiskMessage struct {
	ID            uuid.UUID `json:"id"`
	ConvID        string    `json:"convId"`
	SenderID      string    `json:"senderId"`
	TextEncrypted string    `json:"textEncrypted"`
	CreatedAt     time.Time `json:"createdAt"`
	ReadBy        []string  `json:"readBy"`
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

// messageKey builds the primary key "msg:{conv_id}:{timestamp_padded}:{uuid}":
//  1. The 19-digit zero padding makes lexicographic order chronological.
//  2. The UUID suffix disambiguates two messages stored in the same nanosecond.
func messageKey(message DiskMessage) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s",
		message.ConvID,
		message.CreatedAt.UnixNano(),
		message.ID,
	))
}

// locatorKey points from a message ID back to its primary key, so that
// read-marker updates do not need the conversation and timestamp.
func locatorKey(messageID uuid.UUID) []byte {
	return []byte("msgref:" + messageID.String())
}

// StoreMessage persists a message and its locator in a single transaction.
func (m MessageRepository) StoreMessage(message DiskMessage) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return m.db.Update(func(txn *badger.Txn) error {
		key := messageKey(message)
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(locatorKey(message.ID), key)
	})
}

// GetMessages returns up to limit most recent messages of a conversation
// in ascending creation order. A non-positive limit returns everything.
func (m MessageRepository) GetMessages(convID string, limit int) ([]DiskMessage, error) {
	var raw [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("msg:%s:", convID))

		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the newest possible key for this prefix, then walk
		// backwards so the limit keeps the most recent entries.
		seekKey := append(append([]byte{}, prefix...), 0xff)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(raw) == limit {
				m.log.Debug(fmt.Sprintf("History limit of %d messages reached", limit))
				break
			}
			err := it.Item().Value(func(value []byte) error {
				raw = append(raw, append([]byte{}, value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Reverse iteration collected newest first; flip to oldest first.
	messages := make([]DiskMessage, len(raw))
	for i, data := range raw {
		var message DiskMessage
		if err = json.Unmarshal(data, &message); err != nil {
			return nil, fmt.Errorf("unmarshal failed: %w", err)
		}
		messages[len(raw)-1-i] = message
	}
	return messages, nil
}

// AddReader idempotently adds userID to the message's read-set and
// returns the updated record. Concurrent calls for different users on
// the same message are retried on transaction conflict, so the
// read-set behaves as a growing union with no lost updates.
func (m MessageRepository) AddReader(messageID uuid.UUID, userID string) (DiskMessage, error) {
	var updated DiskMessage
	for {
		err := m.db.Update(func(txn *badger.Txn) error {
			locator, err := txn.Get(locatorKey(messageID))
			if err == badger.ErrKeyNotFound {
				return errors.ErrMessageNotFound
			}
			if err != nil {
				return err
			}

			var key []byte
			if key, err = locator.ValueCopy(nil); err != nil {
				return err
			}

			item, err := txn.Get(key)
			if err != nil {
				return err
			}
			if err = item.Value(func(value []byte) error {
				return json.Unmarshal(value, &updated)
			}); err != nil {
				return err
			}

			for _, reader := range updated.ReadBy {
				if reader == userID {
					return nil // already read, nothing to write
				}
			}
			updated.ReadBy = append(updated.ReadBy, userID)

			data, err := json.Marshal(updated)
			if err != nil {
				return err
			}
			return txn.Set(key, data)
		})
		if err == badger.ErrConflict {
			continue
		}
		return updated, err
	}
}
