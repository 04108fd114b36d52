// internal/store/sessions.go
package store

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/dnaweav/tradesman-ai-assist/internal/types"
)

const sessionColumns = "id, user_id, title, chat_type, contact_id, description, voice_enabled, created_at, updated_at"

func scanSession(stmt *sqlite.Stmt) *types.Session {
	return &types.Session{
		ID:           types.SessionID(stmt.ColumnText(0)),
		UserID:       types.UserID(stmt.ColumnText(1)),
		Title:        stmt.ColumnText(2),
		ChatType:     stmt.ColumnText(3),
		ContactID:    stmt.ColumnText(4),
		Description:  stmt.ColumnText(5),
		VoiceEnabled: stmt.ColumnInt64(6) != 0,
		CreatedAt:    parseTime(stmt.ColumnText(7)),
		UpdatedAt:    parseTime(stmt.ColumnText(8)),
	}
}

// GetSession returns the session row for id, or ErrNotFound.
func (s *SQLite) GetSession(ctx context.Context, id types.SessionID) (*types.Session, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	defer s.pool.Put(conn)

	var session *types.Session
	err = sqlitex.Execute(conn, "SELECT "+sessionColumns+" FROM sessions WHERE id = ?", &sqlitex.ExecOptions{
		Args: []any{string(id)},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			session = scanSession(stmt)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("get session %s: %w", id, ErrNotFound)
	}
	return session, nil
}

// InsertSession creates the session row. A duplicate ID returns
// ErrSessionExists; the row is never overwritten.
func (s *SQLite) InsertSession(ctx context.Context, session *types.Session) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	defer s.pool.Put(conn)

	if session.Title == "" {
		session.Title = types.DefaultSessionTitle
	}
	now := s.now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = session.CreatedAt

	err = sqlitex.Execute(conn,
		"INSERT INTO sessions ("+sessionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		&sqlitex.ExecOptions{
			Args: []any{
				string(session.ID),
				string(session.UserID),
				session.Title,
				session.ChatType,
				session.ContactID,
				session.Description,
				boolToInt(session.VoiceEnabled),
				s.formatTime(session.CreatedAt),
				s.formatTime(session.UpdatedAt),
			},
		})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert session %s: %w", session.ID, ErrSessionExists)
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// UpdateSession applies the editable fields to the session row and bumps
// updated_at. Returns ErrNotFound if the row does not exist.
func (s *SQLite) UpdateSession(ctx context.Context, id types.SessionID, fields types.SessionFields) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	defer s.pool.Put(conn)

	title := fields.Title
	if title == "" {
		title = types.DefaultSessionTitle
	}

	err = sqlitex.Execute(conn,
		`UPDATE sessions
		 SET title = ?, chat_type = ?, contact_id = ?, description = ?, voice_enabled = ?, updated_at = ?
		 WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{
				title,
				fields.ChatType,
				fields.ContactID,
				fields.Description,
				boolToInt(fields.VoiceEnabled),
				s.formatTime(s.now()),
				string(id),
			},
		})
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if conn.Changes() == 0 {
		return fmt.Errorf("update session %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListSessions returns the user's sessions, most recently updated first.
func (s *SQLite) ListSessions(ctx context.Context, userID types.UserID) ([]*types.Session, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer s.pool.Put(conn)

	var sessions []*types.Session
	err = sqlitex.Execute(conn,
		"SELECT "+sessionColumns+" FROM sessions WHERE user_id = ? ORDER BY updated_at DESC",
		&sqlitex.ExecOptions{
			Args: []any{string(userID)},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				sessions = append(sessions, scanSession(stmt))
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
