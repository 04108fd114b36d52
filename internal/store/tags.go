// internal/store/tags.go
package store

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/dnaweav/tradesman-ai-assist/internal/types"
)

// InsertTag creates a tag owned by a user.
func (s *SQLite) InsertTag(ctx context.Context, tag *types.Tag) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("insert tag: %w", err)
	}
	defer s.pool.Put(conn)

	if tag.ID == "" {
		tag.ID = types.NewTagID()
	}
	err = sqlitex.Execute(conn,
		"INSERT INTO tags (id, name, user_id) VALUES (?, ?, ?)",
		&sqlitex.ExecOptions{
			Args: []any{string(tag.ID), tag.Name, string(tag.UserID)},
		})
	if err != nil {
		return fmt.Errorf("insert tag: %w", err)
	}
	return nil
}

// ListTags returns all tags owned by the user, by name.
func (s *SQLite) ListTags(ctx context.Context, userID types.UserID) ([]*types.Tag, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer s.pool.Put(conn)

	var tags []*types.Tag
	err = sqlitex.Execute(conn,
		"SELECT id, name, user_id FROM tags WHERE user_id = ? ORDER BY name ASC",
		&sqlitex.ExecOptions{
			Args: []any{string(userID)},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				tags = append(tags, &types.Tag{
					ID:     types.TagID(stmt.ColumnText(0)),
					Name:   stmt.ColumnText(1),
					UserID: types.UserID(stmt.ColumnText(2)),
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// ListSessionTags returns the tag IDs associated with the session.
func (s *SQLite) ListSessionTags(ctx context.Context, sessionID types.SessionID) ([]types.TagID, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("list session tags: %w", err)
	}
	defer s.pool.Put(conn)

	var ids []types.TagID
	err = sqlitex.Execute(conn,
		"SELECT tag_id FROM session_tags WHERE session_id = ?",
		&sqlitex.ExecOptions{
			Args: []any{string(sessionID)},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				ids = append(ids, types.TagID(stmt.ColumnText(0)))
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("list session tags: %w", err)
	}
	return ids, nil
}

// InsertSessionTag adds the association. A duplicate pair returns
// ErrDuplicateTag.
func (s *SQLite) InsertSessionTag(ctx context.Context, sessionID types.SessionID, tagID types.TagID) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("insert session tag: %w", err)
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn,
		"INSERT INTO session_tags (session_id, tag_id) VALUES (?, ?)",
		&sqlitex.ExecOptions{
			Args: []any{string(sessionID), string(tagID)},
		})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert session tag: %w", ErrDuplicateTag)
		}
		return fmt.Errorf("insert session tag: %w", err)
	}
	return nil
}

// DeleteSessionTag removes the association. Deleting a missing pair is not
// an error.
func (s *SQLite) DeleteSessionTag(ctx context.Context, sessionID types.SessionID, tagID types.TagID) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("delete session tag: %w", err)
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn,
		"DELETE FROM session_tags WHERE session_id = ? AND tag_id = ?",
		&sqlitex.ExecOptions{
			Args: []any{string(sessionID), string(tagID)},
		})
	if err != nil {
		return fmt.Errorf("delete session tag: %w", err)
	}
	return nil
}
