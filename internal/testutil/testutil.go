// Package testutil provides shared test helpers for setting up data
// directories, snapshots, and archives.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/lexicon/internal/index"
	"github.com/starford/lexicon/internal/storage"
)

// SnapshotFile is the file name used for snapshots in tests.
const SnapshotFile = "snapshot.json"

// SampleSnapshot is a small, well-formed snapshot document: two compounds
// linking wind and sound, one linking echo and flow, and one unusable entry.
const SampleSnapshot = `{
  "generation": 42,
  "stats": {"population": 3},
  "compounds": {
    "windsong":  {"meanings": ["wind", "sound"], "compound_meaning": "song of wind", "born": 40},
    "soundwind": {"meanings": ["sound", "wind"], "compound_meaning": "wind of sound", "born": 41},
    "echoflow":  {"meanings": ["echo", "flow"], "compound_meaning": "returning stream", "born": 30},
    "lonepath":  {"meanings": ["path"]}
  },
  "words": {
    "windsong":  {"meaning": "melody of moving air", "category": "sound", "fitness": 5, "born": 40},
    "echoflow":  {"meaning": "returning stream", "category": "motion", "fitness": 9, "born": 30},
    "stillwave": {"meaning": "calm water", "category": "water", "fitness": 5, "born": 12}
  },
  "sound_shifts": [{"from": "a", "to": "e"}]
}`

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "lexicon-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestData creates a temporary data directory with a storage.Provider.
// When snapshot is non-empty it is written to SnapshotFile.
func TestData(t *testing.T, snapshot string) (string, storage.Provider) {
	t.Helper()
	dataDir := t.TempDir()
	store, err := storage.NewFS(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	if snapshot != "" {
		if err := store.Write(SnapshotFile, []byte(snapshot)); err != nil {
			t.Fatal(err)
		}
	}
	return dataDir, store
}
