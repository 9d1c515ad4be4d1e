package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is the decrypted, in-flight form of a stored message.
// Text is nil when the stored blob could not be decrypted; callers must
// treat that as "body unavailable", never as an empty string.
// ReadBy only ever grows and always contains the sender.
type Message struct {
	ID        uuid.UUID
	ConvID    string
	SenderID  string
	Text      *string
	CreatedAt time.Time
	ReadBy    []string
}
