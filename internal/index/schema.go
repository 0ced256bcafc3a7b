// Package index provides the SQLite-backed snapshot archive with optional
// FTS5 full-text search over the living vocabulary.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS snapshots (
	id              TEXT PRIMARY KEY,
	generation      INTEGER NOT NULL,
	checksum        TEXT NOT NULL,
	total_compounds INTEGER NOT NULL DEFAULT 0,
	total_words     INTEGER NOT NULL DEFAULT 0,
	concepts        INTEGER NOT NULL DEFAULT 0,
	edges           INTEGER NOT NULL DEFAULT 0,
	recorded_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_snapshots_generation ON snapshots(generation);

CREATE TABLE IF NOT EXISTS words (
	word       TEXT PRIMARY KEY,
	meaning    TEXT NOT NULL DEFAULT '',
	category   TEXT NOT NULL DEFAULT '',
	fitness    REAL NOT NULL DEFAULT 0,
	born       INTEGER NOT NULL DEFAULT 0,
	generation INTEGER NOT NULL DEFAULT 0
);
`

// DB wraps a sql.DB with archive-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
