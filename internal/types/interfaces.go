// internal/types/interfaces.go
package types

import (
	"context"
)

// SessionStore is the session-row half of the record store. Implementations
// must enforce uniqueness of the session ID and report duplicate inserts
// with store.ErrSessionExists so the resolve-or-create protocol can recover.
type SessionStore interface {
	GetSession(ctx context.Context, id SessionID) (*Session, error)
	InsertSession(ctx context.Context, session *Session) error
	UpdateSession(ctx context.Context, id SessionID, fields SessionFields) error
	ListSessions(ctx context.Context, userID UserID) ([]*Session, error)
}

// MessageStore persists turns. ListMessages returns messages in
// non-decreasing creation-time order with storage sequence breaking ties.
type MessageStore interface {
	InsertMessage(ctx context.Context, msg *Message) (*Message, error)
	ListMessages(ctx context.Context, sessionID SessionID) ([]*Message, error)
}

// TagStore manages tags and the session/tag association table.
type TagStore interface {
	ListTags(ctx context.Context, userID UserID) ([]*Tag, error)
	ListSessionTags(ctx context.Context, sessionID SessionID) ([]TagID, error)
	InsertSessionTag(ctx context.Context, sessionID SessionID, tagID TagID) error
	DeleteSessionTag(ctx context.Context, sessionID SessionID, tagID TagID) error
}

// AttachmentStore records file metadata scoped to a session.
type AttachmentStore interface {
	InsertAttachment(ctx context.Context, att *Attachment) error
	ListAttachments(ctx context.Context, sessionID SessionID) ([]*Attachment, error)
}

// FileStore holds uploaded blobs and hands back a public URL.
type FileStore interface {
	UploadFile(ctx context.Context, bucket, path string, data []byte) (string, error)
}

// RecordStore bundles the full record-store contract the pipeline consumes.
type RecordStore interface {
	SessionStore
	MessageStore
	TagStore
	AttachmentStore
}
