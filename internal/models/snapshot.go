// Package models defines the domain types for the lexicon service.
package models

import (
	"encoding/json"
	"time"
)

// Snapshot is one point-in-time state of the lexicon as produced by the
// simulation. Mapping fields are kept as ordered slices so that iteration
// follows the key order of the source document.
type Snapshot struct {
	Generation  int64
	Stats       json.RawMessage
	Compounds   []Compound
	Words       []Word
	SoundShifts []json.RawMessage
}

// Compound is a word formed by pairing concepts.
// Meanings is nil when the source entry carried no usable meanings list.
type Compound struct {
	Word            string
	Meanings        []string
	CompoundMeaning string
	Born            int64
}

// Word is an entry of the living vocabulary.
type Word struct {
	Word     string
	Meaning  string
	Category string
	Fitness  float64
	Born     int64
}

// SnapshotMeta describes a stored snapshot file.
type SnapshotMeta struct {
	Name      string    `json:"name"`
	Checksum  string    `json:"checksum"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}
