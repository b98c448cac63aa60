package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/tonitangpotato/engram-ai/internal/encoding"
)

// Logger is the narrow logging surface SQLiteStore needs; satisfied by
// engram.Logger without importing the root package (avoids a cycle).
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// SQLiteStore is the shipped embedded backend: pure-Go SQLite in WAL mode,
// FTS5 for full-text search, driven through database/sql.
type SQLiteStore struct {
	db       *sql.DB
	logger   Logger
	path     string
	semantic *SemanticIndex // nil unless AttachSemanticIndex was called
}

// Open opens (creating if necessary) the database at path and ensures the
// schema exists.
func Open(ctx context.Context, path string, logger Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = nopLogger{}
	}
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_cache_size=-2000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(2 * time.Hour)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: enable foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logger, path: path}
	if err := s.createSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("store initialized", "path", path)
	return s, nil
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS memories (
	id TEXT PRIMARY KEY,
	content TEXT NOT NULL,
	memory_type TEXT NOT NULL,
	layer TEXT NOT NULL,
	importance REAL NOT NULL DEFAULT 0.5,
	working_strength REAL NOT NULL DEFAULT 0,
	core_strength REAL NOT NULL DEFAULT 0,
	access_count INTEGER NOT NULL DEFAULT 0,
	consolidation_count INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	last_accessed DATETIME NOT NULL,
	last_consolidated DATETIME,
	pinned INTEGER NOT NULL DEFAULT 0,
	context TEXT,
	vector BLOB,
	contradicts TEXT REFERENCES memories(id) ON DELETE SET NULL,
	contradicted_by TEXT REFERENCES memories(id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_memories_layer ON memories(layer);
CREATE INDEX IF NOT EXISTS idx_memories_type ON memories(memory_type);

CREATE TABLE IF NOT EXISTS access_log (
	memory_id TEXT NOT NULL REFERENCES memories(id) ON DELETE CASCADE,
	accessed_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_access_log_memory_id ON access_log(memory_id);

CREATE TABLE IF NOT EXISTS graph_links (
	memory_id TEXT NOT NULL REFERENCES memories(id) ON DELETE CASCADE,
	node_id TEXT NOT NULL,
	relation TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_graph_links_memory_id ON graph_links(memory_id);
CREATE INDEX IF NOT EXISTS idx_graph_links_node_id ON graph_links(node_id);

CREATE TABLE IF NOT EXISTS hebbian_links (
	source_id TEXT NOT NULL REFERENCES memories(id) ON DELETE CASCADE,
	target_id TEXT NOT NULL REFERENCES memories(id) ON DELETE CASCADE,
	strength REAL NOT NULL DEFAULT 1.0,
	coactivation_count INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL,
	PRIMARY KEY (source_id, target_id)
);

-- FTS5 virtual table mirroring memories.content, kept in sync by triggers.
CREATE VIRTUAL TABLE IF NOT EXISTS memories_fts USING fts5(content, content='memories', content_rowid='rowid');

CREATE TRIGGER IF NOT EXISTS memories_ai AFTER INSERT ON memories BEGIN
  INSERT INTO memories_fts(rowid, content) VALUES (new.rowid, new.content);
END;
CREATE TRIGGER IF NOT EXISTS memories_ad AFTER DELETE ON memories BEGIN
  INSERT INTO memories_fts(memories_fts, rowid, content) VALUES('delete', old.rowid, old.content);
END;
CREATE TRIGGER IF NOT EXISTS memories_au AFTER UPDATE ON memories BEGIN
  INSERT INTO memories_fts(memories_fts, rowid, content) VALUES('delete', old.rowid, old.content);
  INSERT INTO memories_fts(rowid, content) VALUES (new.rowid, new.content);
END;
`

func (s *SQLiteStore) createSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("store: create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Export writes a copy of the database to path via VACUUM INTO, which is
// safe to run against a live WAL-mode connection. The copy holds the same
// rows but is a freshly compacted file, not a byte-for-byte image of the
// original.
func (s *SQLiteStore) Export(path string) error {
	_, err := s.db.Exec("VACUUM INTO ?", path)
	if err != nil {
		return fmt.Errorf("store: export: %w", err)
	}
	return nil
}

// encodeVector/decodeVector adapt the little-endian float32 blob codec
// used to persist embedding vectors alongside each memory row.
func encodeVector(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	b, err := encoding.EncodeVector(v)
	if err != nil {
		return nil
	}
	return b
}

func decodeVector(b []byte) []float32 {
	if len(b) == 0 {
		return nil
	}
	v, err := encoding.DecodeVector(b)
	if err != nil {
		return nil
	}
	return v
}
