//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS words_fts USING fts5(
			word,
			meaning,
			category,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsReset(tx *sql.Tx) error {
	if _, err := tx.Exec(`DELETE FROM words_fts`); err != nil {
		return fmt.Errorf("index: reset fts: %w", err)
	}
	return nil
}

func ftsInsert(tx *sql.Tx, w WordRow) error {
	_, err := tx.Exec(`INSERT INTO words_fts (word, meaning, category) VALUES (?, ?, ?)`,
		w.Word, w.Meaning, w.Category)
	if err != nil {
		return fmt.Errorf("index: insert fts: %w", err)
	}
	return nil
}

// Search performs an FTS5 full-text search over the vocabulary.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := db.conn.Query(`
		SELECT w.word,
		       w.meaning,
		       w.category,
		       w.fitness,
		       snippet(words_fts, 1, '<b>', '</b>', '...', 16)
		FROM words_fts
		JOIN words w ON w.word = words_fts.word
		WHERE words_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	out := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Word, &r.Meaning, &r.Category, &r.Fitness, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
