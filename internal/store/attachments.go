// internal/store/attachments.go
package store

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/dnaweav/tradesman-ai-assist/internal/types"
)

// InsertAttachment records uploaded-file metadata against a session.
func (s *SQLite) InsertAttachment(ctx context.Context, att *types.Attachment) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("insert attachment: %w", err)
	}
	defer s.pool.Put(conn)

	if att.ID == "" {
		att.ID = types.NewAttachmentID()
	}
	if att.CreatedAt.IsZero() {
		att.CreatedAt = s.now()
	}

	err = sqlitex.Execute(conn,
		`INSERT INTO attachments (id, session_id, file_name, file_path, file_size, mime_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{
				string(att.ID),
				string(att.SessionID),
				att.FileName,
				att.FilePath,
				att.FileSize,
				att.MimeType,
				s.formatTime(att.CreatedAt),
			},
		})
	if err != nil {
		return fmt.Errorf("insert attachment: %w", err)
	}
	return nil
}

// ListAttachments returns the session's attachments, oldest first.
func (s *SQLite) ListAttachments(ctx context.Context, sessionID types.SessionID) ([]*types.Attachment, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer s.pool.Put(conn)

	var atts []*types.Attachment
	err = sqlitex.Execute(conn,
		`SELECT id, session_id, file_name, file_path, file_size, mime_type, created_at
		 FROM attachments WHERE session_id = ? ORDER BY created_at ASC`,
		&sqlitex.ExecOptions{
			Args: []any{string(sessionID)},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				atts = append(atts, &types.Attachment{
					ID:        types.AttachmentID(stmt.ColumnText(0)),
					SessionID: types.SessionID(stmt.ColumnText(1)),
					FileName:  stmt.ColumnText(2),
					FilePath:  stmt.ColumnText(3),
					FileSize:  stmt.ColumnInt64(4),
					MimeType:  stmt.ColumnText(5),
					CreatedAt: parseTime(stmt.ColumnText(6)),
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return atts, nil
}
