// internal/types/models.go
package types

import (
	"time"
)

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// DefaultSessionTitle is assigned when a session is created lazily or a
// settings save leaves the title blank.
const DefaultSessionTitle = "New Chat"

// Session is a single conversation thread. The ID is minted by the caller
// before the row exists; at most one row may ever exist per ID.
type Session struct {
	ID           SessionID `json:"id"`
	UserID       UserID    `json:"user_id"`
	Title        string    `json:"title"`
	ChatType     string    `json:"chat_type,omitempty"`
	ContactID    string    `json:"contact_id,omitempty"`
	Description  string    `json:"description,omitempty"`
	VoiceEnabled bool      `json:"voice_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Message is one turn of a conversation. Immutable once persisted. Seq is
// assigned by storage and breaks creation-time ties for ordering.
type Message struct {
	ID        MessageID `json:"id"`
	SessionID SessionID `json:"session_id"`
	Seq       int64     `json:"seq"`
	Sender    Sender    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionFields carries the editable session attributes for a settings save.
type SessionFields struct {
	Title        string `json:"title"`
	ChatType     string `json:"chat_type"`
	ContactID    string `json:"contact_id"`
	Description  string `json:"description"`
	VoiceEnabled bool   `json:"voice_enabled"`
}

// Tag labels sessions; many-to-many via session_tags.
type Tag struct {
	ID     TagID  `json:"id"`
	Name   string `json:"name"`
	UserID UserID `json:"user_id"`
}

// Attachment records a file uploaded alongside a session. Attachments are
// scoped to the session, not ordered with messages.
type Attachment struct {
	ID        AttachmentID `json:"id"`
	SessionID SessionID    `json:"session_id"`
	FileName  string       `json:"file_name"`
	FilePath  string       `json:"file_path"`
	FileSize  int64        `json:"file_size"`
	MimeType  string       `json:"mime_type,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// Upload is the caller-side shape of a file attached to a send.
type Upload struct {
	Name     string
	MimeType string
	Data     []byte
}
