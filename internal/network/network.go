// Package network derives the concept graph and the fitness ranking of living
// words from a lexicon snapshot.
//
// Build is a pure function of its input: it allocates its own working state,
// never mutates the snapshot, and is safe to call concurrently.
package network

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/starford/lexicon/internal/apperr"
	"github.com/starford/lexicon/internal/models"
)

// Node is a concept in the rendered graph.
type Node struct {
	ID       string   `json:"id"`
	Count    int      `json:"count"`
	Partners int      `json:"partners"`
	Category Category `json:"category"`
}

// EdgeCompound is one compound contributing to an edge.
type EdgeCompound struct {
	Word            string `json:"word"`
	CompoundMeaning string `json:"compound_meaning"`
	Born            int64  `json:"born"`
}

// Edge is an undirected relation between two concepts. Source and Target
// are in lexicographic order.
type Edge struct {
	Source    string         `json:"source"`
	Target    string         `json:"target"`
	Weight    int            `json:"weight"`
	Compounds []EdgeCompound `json:"compounds"`
}

// LivingWord is an entry of the fitness ranking.
type LivingWord struct {
	Word     string  `json:"word"`
	Meaning  string  `json:"meaning"`
	Category string  `json:"category"`
	Fitness  float64 `json:"fitness"`
	Age      int64   `json:"age"`
}

// Payload is the response consumed by the visualization client.
type Payload struct {
	Generation     int64             `json:"generation"`
	Stats          json.RawMessage   `json:"stats"`
	Nodes          []Node            `json:"nodes"`
	Edges          []Edge            `json:"edges"`
	Living         []LivingWord      `json:"living"`
	SoundShifts    []json.RawMessage `json:"soundShifts"`
	TotalCompounds int               `json:"totalCompounds"`
}

// Build derives the network payload from snap.
func Build(snap *models.Snapshot) (*Payload, error) {
	if snap == nil {
		return nil, fmt.Errorf("network: nil snapshot: %w", apperr.ErrMalformedSnapshot)
	}

	g := Aggregate(snap.Compounds)

	stats := snap.Stats
	if len(stats) == 0 {
		stats = json.RawMessage("{}")
	}
	shifts := snap.SoundShifts
	if shifts == nil {
		shifts = []json.RawMessage{}
	}

	return &Payload{
		Generation:     snap.Generation,
		Stats:          stats,
		Nodes:          g.Nodes(),
		Edges:          g.Edges(),
		Living:         RankLiving(snap.Generation, snap.Words),
		SoundShifts:    shifts,
		TotalCompounds: len(snap.Compounds),
	}, nil
}

// RankLiving returns the living words sorted by fitness, highest first.
// Equal fitness falls back to the word in ascending order.
func RankLiving(generation int64, words []models.Word) []LivingWord {
	out := make([]LivingWord, 0, len(words))
	for _, w := range words {
		out = append(out, LivingWord{
			Word:     w.Word,
			Meaning:  w.Meaning,
			Category: w.Category,
			Fitness:  w.Fitness,
			Age:      generation - w.Born,
		})
	}
	slices.SortStableFunc(out, func(a, b LivingWord) int {
		if c := cmp.Compare(b.Fitness, a.Fitness); c != 0 {
			return c
		}
		return cmp.Compare(a.Word, b.Word)
	})
	return out
}
