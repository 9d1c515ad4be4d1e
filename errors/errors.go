package errors

import "fmt"

var (
	ErrUnauthenticated      = fmt.Errorf("no authenticated user bound to this connection")
	ErrConversationNotFound = fmt.Errorf("conversation not found")
	ErrMessageNotFound      = fmt.Errorf("message not found")
	ErrDecryptFailure       = fmt.Errorf("message body unavailable")
	ErrEmptyMessage         = fmt.Errorf("message text is empty")
	ErrNotParticipant       = fmt.Errorf("user is not a participant of this conversation")

	ErrUserAlreadyExists  = fmt.Errorf("username already taken")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity rules")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")

	ErrWorkerPanic = fmt.Errorf("worker panic")
)
