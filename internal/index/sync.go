package index

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/lexicon/internal/apperr"
	"github.com/starford/lexicon/internal/checksum"
	"github.com/starford/lexicon/internal/models"
	"github.com/starford/lexicon/internal/network"
	"github.com/starford/lexicon/internal/parser"
	"github.com/starford/lexicon/internal/storage"
)

// Sync brings the archive up to date with the snapshot file. It returns the
// recorded row when the file differs from the latest archived snapshot and
// nil when nothing changed.
func Sync(db *DB, store storage.Provider, file string, logger *slog.Logger) (*SnapshotRow, error) {
	data, err := store.Read(file)
	if err != nil {
		return nil, fmt.Errorf("sync: %w: %w", apperr.ErrSourceUnavailable, err)
	}
	cs := checksum.Sum(data)

	latest, err := db.Latest()
	switch {
	case err == nil && latest.Checksum == cs:
		logger.Debug("sync: snapshot unchanged", slog.Int64("generation", latest.Generation))
		return nil, nil
	case err != nil && !errors.Is(err, apperr.ErrNotFound):
		return nil, err
	}

	snap, err := parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("sync: %w", err)
	}
	return Record(db, snap, cs, logger)
}

// Record archives an already parsed snapshot under the given checksum.
func Record(db *DB, snap *models.Snapshot, cs string, logger *slog.Logger) (*SnapshotRow, error) {
	payload, err := network.Build(snap)
	if err != nil {
		return nil, fmt.Errorf("sync: %w", err)
	}

	row := &SnapshotRow{
		Generation:     payload.Generation,
		Checksum:       cs,
		TotalCompounds: payload.TotalCompounds,
		TotalWords:     len(payload.Living),
		Concepts:       len(payload.Nodes),
		Edges:          len(payload.Edges),
	}
	words := make([]WordRow, 0, len(snap.Words))
	for _, w := range snap.Words {
		words = append(words, WordRow{
			Word:     w.Word,
			Meaning:  w.Meaning,
			Category: w.Category,
			Fitness:  w.Fitness,
			Born:     w.Born,
		})
	}
	if err := db.RecordSnapshot(row, words); err != nil {
		return nil, err
	}

	logger.Info("sync: snapshot recorded",
		slog.Int64("generation", row.Generation),
		slog.String("checksum", row.Checksum),
		slog.Int("concepts", row.Concepts),
		slog.Int("edges", row.Edges))
	return row, nil
}
