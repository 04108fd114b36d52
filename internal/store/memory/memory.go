// internal/store/memory/memory.go
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dnaweav/tradesman-ai-assist/internal/store"
	"github.com/dnaweav/tradesman-ai-assist/internal/types"
)

// Store is an in-memory record store. It implements the same contract as
// the SQLite store, including duplicate-insert reporting, so pipeline and
// settings tests can run without a database file.
type Store struct {
	mu          sync.RWMutex
	sessions    map[types.SessionID]*types.Session
	messages    map[types.SessionID][]*types.Message
	tags        map[types.TagID]*types.Tag
	sessionTags map[types.SessionID]map[types.TagID]bool
	attachments map[types.SessionID][]*types.Attachment
	nextSeq     int64
	now         func() time.Time

	// InsertSessionHook, when set, runs inside InsertSession before the
	// row is written. Tests use it to interleave a racing insert.
	InsertSessionHook func()
}

func New() *Store {
	return &Store{
		sessions:    make(map[types.SessionID]*types.Session),
		messages:    make(map[types.SessionID][]*types.Message),
		tags:        make(map[types.TagID]*types.Tag),
		sessionTags: make(map[types.SessionID]map[types.TagID]bool),
		attachments: make(map[types.SessionID][]*types.Attachment),
		now:         time.Now,
	}
}

// SetClock overrides the timestamp source.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Store) GetSession(_ context.Context, id types.SessionID) (*types.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("get session %s: %w", id, store.ErrNotFound)
	}
	copied := *sess
	return &copied, nil
}

func (s *Store) InsertSession(_ context.Context, session *types.Session) error {
	if s.InsertSessionHook != nil {
		s.InsertSessionHook()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.ID]; exists {
		return fmt.Errorf("insert session %s: %w", session.ID, store.ErrSessionExists)
	}

	if session.Title == "" {
		session.Title = types.DefaultSessionTitle
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = s.now()
	}
	session.UpdatedAt = session.CreatedAt

	copied := *session
	s.sessions[session.ID] = &copied
	return nil
}

func (s *Store) UpdateSession(_ context.Context, id types.SessionID, fields types.SessionFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("update session %s: %w", id, store.ErrNotFound)
	}

	title := fields.Title
	if title == "" {
		title = types.DefaultSessionTitle
	}
	sess.Title = title
	sess.ChatType = fields.ChatType
	sess.ContactID = fields.ContactID
	sess.Description = fields.Description
	sess.VoiceEnabled = fields.VoiceEnabled
	sess.UpdatedAt = s.now()
	return nil
}

func (s *Store) ListSessions(_ context.Context, userID types.UserID) ([]*types.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*types.Session
	for _, sess := range s.sessions {
		if sess.UserID == userID {
			copied := *sess
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

func (s *Store) InsertMessage(_ context.Context, msg *types.Message) (*types.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.ID == "" {
		msg.ID = types.NewMessageID()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.now()
	}
	s.nextSeq++

	stored := *msg
	stored.Seq = s.nextSeq
	s.messages[msg.SessionID] = append(s.messages[msg.SessionID], &stored)

	copied := stored
	return &copied, nil
}

func (s *Store) ListMessages(_ context.Context, sessionID types.SessionID) ([]*types.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[sessionID]
	result := make([]*types.Message, len(msgs))
	for i, m := range msgs {
		copied := *m
		result[i] = &copied
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].Seq < result[j].Seq
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) InsertTag(_ context.Context, tag *types.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tag.ID == "" {
		tag.ID = types.NewTagID()
	}
	copied := *tag
	s.tags[tag.ID] = &copied
	return nil
}

func (s *Store) ListTags(_ context.Context, userID types.UserID) ([]*types.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*types.Tag
	for _, tag := range s.tags {
		if tag.UserID == userID {
			copied := *tag
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *Store) ListSessionTags(_ context.Context, sessionID types.SessionID) ([]types.TagID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []types.TagID
	for id := range s.sessionTags[sessionID] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *Store) InsertSessionTag(_ context.Context, sessionID types.SessionID, tagID types.TagID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.sessionTags[sessionID]
	if !ok {
		set = make(map[types.TagID]bool)
		s.sessionTags[sessionID] = set
	}
	if set[tagID] {
		return fmt.Errorf("insert session tag: %w", store.ErrDuplicateTag)
	}
	set[tagID] = true
	return nil
}

func (s *Store) DeleteSessionTag(_ context.Context, sessionID types.SessionID, tagID types.TagID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessionTags[sessionID], tagID)
	return nil
}

func (s *Store) InsertAttachment(_ context.Context, att *types.Attachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if att.ID == "" {
		att.ID = types.NewAttachmentID()
	}
	if att.CreatedAt.IsZero() {
		att.CreatedAt = s.now()
	}
	copied := *att
	s.attachments[att.SessionID] = append(s.attachments[att.SessionID], &copied)
	return nil
}

func (s *Store) ListAttachments(_ context.Context, sessionID types.SessionID) ([]*types.Attachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	atts := s.attachments[sessionID]
	result := make([]*types.Attachment, len(atts))
	for i, a := range atts {
		copied := *a
		result[i] = &copied
	}
	return result, nil
}
