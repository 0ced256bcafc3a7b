package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/lexicon/internal/apperr"
)

const defaultLimit = 20

// SnapshotRow represents a row in the snapshots table.
type SnapshotRow struct {
	ID             string    `json:"id"`
	Generation     int64     `json:"generation"`
	Checksum       string    `json:"checksum"`
	TotalCompounds int       `json:"totalCompounds"`
	TotalWords     int       `json:"totalWords"`
	Concepts       int       `json:"concepts"`
	Edges          int       `json:"edges"`
	RecordedAt     time.Time `json:"recordedAt"`
}

// WordRow represents a row in the words table.
type WordRow struct {
	Word     string
	Meaning  string
	Category string
	Fitness  float64
	Born     int64
}

// SearchResult represents one word search hit.
type SearchResult struct {
	Word     string  `json:"word"`
	Meaning  string  `json:"meaning"`
	Category string  `json:"category"`
	Fitness  float64 `json:"fitness"`
	Snippet  string  `json:"snippet"`
}

// RecordSnapshot appends row to the history and replaces the vocabulary with
// words, in one transaction. Empty ID and RecordedAt are filled in.
func (db *DB) RecordSnapshot(row *SnapshotRow, words []WordRow) error {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.RecordedAt.IsZero() {
		row.RecordedAt = time.Now().UTC()
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO snapshots (id, generation, checksum, total_compounds, total_words, concepts, edges, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, row.ID, row.Generation, row.Checksum, row.TotalCompounds, row.TotalWords, row.Concepts, row.Edges, row.RecordedAt)
	if err != nil {
		return fmt.Errorf("index: insert snapshot: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM words`); err != nil {
		return fmt.Errorf("index: clear words: %w", err)
	}
	if err := ftsReset(tx); err != nil {
		return err
	}

	if len(words) > 0 {
		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO words (word, meaning, category, fitness, born, generation)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("index: prepare word insert: %w", err)
		}
		defer stmt.Close()
		for _, w := range words {
			if _, err := stmt.Exec(w.Word, w.Meaning, w.Category, w.Fitness, w.Born, row.Generation); err != nil {
				return fmt.Errorf("index: insert word: %w", err)
			}
			if err := ftsInsert(tx, w); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

const snapshotColumns = `id, generation, checksum, total_compounds, total_words, concepts, edges, recorded_at`

func scanSnapshot(s interface{ Scan(...any) error }) (SnapshotRow, error) {
	var r SnapshotRow
	err := s.Scan(&r.ID, &r.Generation, &r.Checksum, &r.TotalCompounds, &r.TotalWords, &r.Concepts, &r.Edges, &r.RecordedAt)
	return r, err
}

// Latest returns the most recently recorded snapshot, or apperr.ErrNotFound
// when the archive is empty.
func (db *DB) Latest() (*SnapshotRow, error) {
	r, err := scanSnapshot(db.conn.QueryRow(`SELECT ` + snapshotColumns + ` FROM snapshots ORDER BY rowid DESC LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: latest: %w", err)
	}
	return &r, nil
}

// History returns recorded snapshots, newest first.
func (db *DB) History(limit int) ([]SnapshotRow, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := db.conn.Query(`SELECT `+snapshotColumns+` FROM snapshots ORDER BY rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("index: history: %w", err)
	}
	defer rows.Close()

	out := []SnapshotRow{}
	for rows.Next() {
		r, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
