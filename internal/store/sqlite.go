// internal/store/sqlite.go
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// SQLite is the record store backed by a SQLite database. Uniqueness of
// session IDs is enforced by the schema, so concurrent creation races
// surface as constraint violations rather than duplicate rows.
//
// SQLite is safe for concurrent use; each call borrows a pooled
// connection for its duration.
type SQLite struct {
	pool   *sqlitex.Pool
	logger *slog.Logger
	now    func() time.Time
}

// Config holds the parameters for opening the record store.
type Config struct {
	// Path is the database file. ":memory:" is allowed for tests, in
	// which case PoolSize must be 1.
	Path string

	// PoolSize is the number of pooled connections. Defaults to 4.
	PoolSize int

	// Logger receives operational messages. If nil, logs are discarded.
	Logger *slog.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	title         TEXT NOT NULL DEFAULT 'New Chat',
	chat_type     TEXT NOT NULL DEFAULT '',
	contact_id    TEXT NOT NULL DEFAULT '',
	description   TEXT NOT NULL DEFAULT '',
	voice_enabled INTEGER NOT NULL DEFAULT 0,
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	session_id TEXT NOT NULL,
	sender     TEXT NOT NULL CHECK (sender IN ('user', 'assistant')),
	content    TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_session ON messages (session_id, created_at, seq);

CREATE TABLE IF NOT EXISTS tags (
	id      TEXT PRIMARY KEY,
	name    TEXT NOT NULL,
	user_id TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS session_tags (
	session_id TEXT NOT NULL,
	tag_id     TEXT NOT NULL,
	PRIMARY KEY (session_id, tag_id)
);

CREATE TABLE IF NOT EXISTS attachments (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	file_name  TEXT NOT NULL,
	file_path  TEXT NOT NULL,
	file_size  INTEGER NOT NULL DEFAULT 0,
	mime_type  TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_attachments_session ON attachments (session_id);
`

// Open creates the connection pool, applies pragmas to every connection,
// and ensures the schema exists. The caller must Close the store.
func Open(cfg Config) (*SQLite, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("store: Path is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 4
	}

	pool, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize:    poolSize,
		PrepareConn: prepareConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", cfg.Path, err)
	}

	s := &SQLite{pool: pool, logger: logger, now: time.Now}
	if err := s.ensureSchema(); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("record store opened", "path", cfg.Path, "pool_size", poolSize)
	return s, nil
}

// Close closes all pooled connections. Blocks until borrowed connections
// are returned.
func (s *SQLite) Close() error {
	if err := s.pool.Close(); err != nil {
		return fmt.Errorf("store: close: %w", err)
	}
	return nil
}

// SetClock overrides the timestamp source. Tests use this to get
// deterministic created_at values.
func (s *SQLite) SetClock(now func() time.Time) {
	s.now = now
}

func prepareConnection(conn *sqlite.Conn) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=OFF",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("store: %s: %w", pragma, err)
		}
	}
	return nil
}

func (s *SQLite) ensureSchema() error {
	conn, err := s.pool.Take(context.Background())
	if err != nil {
		return fmt.Errorf("store: take for schema: %w", err)
	}
	defer s.pool.Put(conn)

	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("store: ensure schema: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a SQLite unique or primary key
// constraint failure.
func isUniqueViolation(err error) bool {
	code := sqlite.ErrCode(err)
	return code == sqlite.ResultConstraintPrimaryKey || code == sqlite.ResultConstraintUnique
}

const timeLayout = time.RFC3339Nano

func (s *SQLite) formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
