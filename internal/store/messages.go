// internal/store/messages.go
package store

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/dnaweav/tradesman-ai-assist/internal/types"
)

// InsertMessage appends a turn and returns it with the storage-assigned
// sequence number filled in. Messages are never updated after this point.
func (s *SQLite) InsertMessage(ctx context.Context, msg *types.Message) (*types.Message, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	defer s.pool.Put(conn)

	if msg.ID == "" {
		msg.ID = types.NewMessageID()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.now()
	}

	err = sqlitex.Execute(conn,
		"INSERT INTO messages (id, session_id, sender, content, created_at) VALUES (?, ?, ?, ?, ?)",
		&sqlitex.ExecOptions{
			Args: []any{
				string(msg.ID),
				string(msg.SessionID),
				string(msg.Sender),
				msg.Content,
				s.formatTime(msg.CreatedAt),
			},
		})
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	stored := *msg
	stored.Seq = conn.LastInsertRowID()
	return &stored, nil
}

// ListMessages returns the session's transcript in non-decreasing
// creation-time order. Equal timestamps fall back to insertion order via
// the autoincrement sequence, so readers never observe a reordering.
func (s *SQLite) ListMessages(ctx context.Context, sessionID types.SessionID) ([]*types.Message, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer s.pool.Put(conn)

	var messages []*types.Message
	err = sqlitex.Execute(conn,
		`SELECT seq, id, session_id, sender, content, created_at
		 FROM messages WHERE session_id = ? ORDER BY created_at ASC, seq ASC`,
		&sqlitex.ExecOptions{
			Args: []any{string(sessionID)},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				messages = append(messages, &types.Message{
					Seq:       stmt.ColumnInt64(0),
					ID:        types.MessageID(stmt.ColumnText(1)),
					SessionID: types.SessionID(stmt.ColumnText(2)),
					Sender:    types.Sender(stmt.ColumnText(3)),
					Content:   stmt.ColumnText(4),
					CreatedAt: parseTime(stmt.ColumnText(5)),
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}
