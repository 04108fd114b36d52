// internal/types/ids.go
package types

import (
	"github.com/google/uuid"
)

type SessionID string
type MessageID string
type TagID string
type AttachmentID string
type UserID string

// NewSessionID mints a session identifier on the client before the row
// exists. Two views navigating to the same chat share one SessionID, which
// is why session creation must tolerate duplicate inserts.
func NewSessionID() SessionID {
	return SessionID(uuid.New().String())
}

func NewMessageID() MessageID {
	return MessageID(uuid.New().String())
}

func NewTagID() TagID {
	return TagID(uuid.New().String())
}

func NewAttachmentID() AttachmentID {
	return AttachmentID(uuid.New().String())
}

// ParseSessionID validates that raw is a well-formed session identifier.
func ParseSessionID(raw string) (SessionID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", err
	}
	return SessionID(id.String()), nil
}
