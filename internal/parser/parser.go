// Package parser decodes lexicon snapshot documents.
package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"unicode/utf8"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/starford/lexicon/internal/apperr"
	"github.com/starford/lexicon/internal/models"
)

type rawSnapshot struct {
	Generation  json.RawMessage `json:"generation"`
	Stats       json.RawMessage `json:"stats"`
	Compounds   json.RawMessage `json:"compounds"`
	Words       json.RawMessage `json:"words"`
	SoundShifts json.RawMessage `json:"sound_shifts"`
}

type rawCompound struct {
	Meanings        json.RawMessage `json:"meanings"`
	CompoundMeaning json.RawMessage `json:"compound_meaning"`
	Born            json.RawMessage `json:"born"`
}

type rawWord struct {
	Meaning  json.RawMessage `json:"meaning"`
	Category json.RawMessage `json:"category"`
	Fitness  json.RawMessage `json:"fitness"`
	Born     json.RawMessage `json:"born"`
}

// Parse decodes a snapshot document.
//
// Undecodable input (invalid UTF-8 or JSON) wraps apperr.ErrSourceUnavailable.
// A document whose shape is wrong wraps apperr.ErrMalformedSnapshot. Missing
// optional sections decode as empty. A compound whose meanings are not a list
// of strings is kept with nil Meanings.
func Parse(data []byte) (*models.Snapshot, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("parser: invalid utf-8: %w", apperr.ErrSourceUnavailable)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("parser: invalid json: %w", apperr.ErrSourceUnavailable)
	}
	if kind(data) != '{' {
		return nil, malformed("document must be an object")
	}

	var raw rawSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parser: decode: %w", apperr.ErrSourceUnavailable)
	}

	snap := &models.Snapshot{
		Stats:       json.RawMessage("{}"),
		Compounds:   []models.Compound{},
		Words:       []models.Word{},
		SoundShifts: []json.RawMessage{},
	}

	if !isNull(raw.Generation) {
		gen, ok := parseInt(raw.Generation)
		if !ok {
			return nil, malformed("generation must be an integer")
		}
		snap.Generation = gen
	}

	if !isNull(raw.Stats) {
		snap.Stats = raw.Stats
	}

	if !isNull(raw.SoundShifts) {
		if kind(raw.SoundShifts) != '[' {
			return nil, malformed("sound_shifts must be an array")
		}
		if err := json.Unmarshal(raw.SoundShifts, &snap.SoundShifts); err != nil {
			return nil, malformed("sound_shifts: " + err.Error())
		}
	}

	if !isNull(raw.Compounds) {
		entries, err := objectEntries(raw.Compounds, "compounds")
		if err != nil {
			return nil, err
		}
		for pair := entries.Oldest(); pair != nil; pair = pair.Next() {
			snap.Compounds = append(snap.Compounds, decodeCompound(pair.Key, pair.Value))
		}
	}

	if !isNull(raw.Words) {
		entries, err := objectEntries(raw.Words, "words")
		if err != nil {
			return nil, err
		}
		for pair := entries.Oldest(); pair != nil; pair = pair.Next() {
			w, err := decodeWord(pair.Key, pair.Value)
			if err != nil {
				return nil, err
			}
			snap.Words = append(snap.Words, w)
		}
	}

	return snap, nil
}

// objectEntries decodes a JSON object keeping the document order of its keys.
func objectEntries(raw json.RawMessage, field string) (*orderedmap.OrderedMap[string, json.RawMessage], error) {
	if kind(raw) != '{' {
		return nil, malformed(field + " must be an object")
	}
	entries := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(raw, entries); err != nil {
		return nil, malformed(field + ": " + err.Error())
	}
	return entries, nil
}

func decodeCompound(word string, raw json.RawMessage) models.Compound {
	c := models.Compound{Word: word}
	if kind(raw) != '{' {
		return c
	}
	var rc rawCompound
	if err := json.Unmarshal(raw, &rc); err != nil {
		return c
	}

	if kind(rc.Meanings) == '[' {
		var meanings []string
		if err := json.Unmarshal(rc.Meanings, &meanings); err == nil {
			c.Meanings = meanings
		}
	}
	_ = json.Unmarshal(rc.CompoundMeaning, &c.CompoundMeaning)
	if born, ok := parseInt(rc.Born); ok {
		c.Born = born
	}
	return c
}

func decodeWord(word string, raw json.RawMessage) (models.Word, error) {
	w := models.Word{Word: word}
	if kind(raw) != '{' {
		return w, malformed(fmt.Sprintf("word %q must be an object", word))
	}
	var rw rawWord
	if err := json.Unmarshal(raw, &rw); err != nil {
		return w, malformed(fmt.Sprintf("word %q: %v", word, err))
	}

	if !isNull(rw.Fitness) {
		if err := json.Unmarshal(rw.Fitness, &w.Fitness); err != nil {
			return w, malformed(fmt.Sprintf("word %q: fitness must be a number", word))
		}
	}
	_ = json.Unmarshal(rw.Meaning, &w.Meaning)
	_ = json.Unmarshal(rw.Category, &w.Category)
	if born, ok := parseInt(rw.Born); ok {
		w.Born = born
	}
	return w, nil
}

// parseInt accepts JSON numbers with an integral value.
func parseInt(raw json.RawMessage) (int64, bool) {
	if isNull(raw) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(f), true
}

// kind returns the first significant byte of a JSON value, or 0 when empty.
func kind(raw []byte) byte {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func malformed(msg string) error {
	return fmt.Errorf("parser: %s: %w", msg, apperr.ErrMalformedSnapshot)
}
