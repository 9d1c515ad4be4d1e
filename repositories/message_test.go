package repositories

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"realchat/errors"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testMessage(convID, sender string, at time.Time) DiskMessage {
	return DiskMessage{
		ID:            uuid.New(),
		ConvID:        convID,
		SenderID:      sender,
		TextEncrypted: "b64-opaque-blob",
		CreatedAt:     at,
		ReadBy:        []string{sender},
	}
}

func TestMessageRepository_StoreAndGet_OldestFirst(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	convID := uuid.NewString()
	at := time.Now().UTC()
	stored := []DiskMessage{
		testMessage(convID, "alice", at),
		testMessage(convID, "bob", at.Add(1*time.Minute)),
		testMessage(convID, "clara", at.Add(2*time.Minute)),
	}
	for _, dm := range stored {
		req.NoError(repository.StoreMessage(dm))
	}
	// Another conversation must not leak into the scan.
	req.NoError(repository.StoreMessage(testMessage(uuid.NewString(), "mallory", at)))

	fetched, err := repository.GetMessages(convID, 0)
	req.NoError(err)
	req.Len(fetched, len(stored))
	req.Equal(stored, fetched)
}

func TestMessageRepository_LimitKeepsMostRecent(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	convID := uuid.NewString()
	at := time.Now().UTC()
	var stored []DiskMessage
	for i := 0; i < 5; i++ {
		dm := testMessage(convID, "alice", at.Add(time.Duration(i)*time.Second))
		stored = append(stored, dm)
		req.NoError(repository.StoreMessage(dm))
	}

	fetched, err := repository.GetMessages(convID, 2)
	req.NoError(err)
	req.Len(fetched, 2)
	// The two newest, still in ascending order.
	req.Equal(stored[3:], fetched)
}

func TestMessageRepository_AddReader(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	message := testMessage(uuid.NewString(), "alice", time.Now().UTC())
	req.NoError(repository.StoreMessage(message))

	t.Run("adds a new reader", func(t *testing.T) {
		updated, err := repository.AddReader(message.ID, "bob")
		req.NoError(err)
		req.ElementsMatch([]string{"alice", "bob"}, updated.ReadBy)
	})

	t.Run("is idempotent", func(t *testing.T) {
		updated, err := repository.AddReader(message.ID, "bob")
		req.NoError(err)
		req.ElementsMatch([]string{"alice", "bob"}, updated.ReadBy)
	})

	t.Run("persists across reads", func(t *testing.T) {
		fetched, err := repository.GetMessages(message.ConvID, 0)
		req.NoError(err)
		req.Len(fetched, 1)
		req.ElementsMatch([]string{"alice", "bob"}, fetched[0].ReadBy)
	})

	t.Run("unknown message", func(t *testing.T) {
		_, err := repository.AddReader(uuid.New(), "bob")
		req.ErrorIs(err, errors.ErrMessageNotFound)
	})
}

// Concurrent read markers from different users must behave as a set
// union: every user ends up in ReadBy regardless of interleaving.
func TestMessageRepository_AddReader_Concurrent(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	message := testMessage(uuid.NewString(), "alice", time.Now().UTC())
	req.NoError(repository.StoreMessage(message))

	readers := []string{"bob", "clara", "dave", "erin"}
	var wg sync.WaitGroup
	for _, reader := range readers {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			_, err := repository.AddReader(message.ID, userID)
			require.NoError(t, err)
		}(reader)
	}
	wg.Wait()

	fetched, err := repository.GetMessages(message.ConvID, 0)
	req.NoError(err)
	req.Len(fetched, 1)
	req.ElementsMatch(append([]string{"alice"}, readers...), fetched[0].ReadBy)
}
