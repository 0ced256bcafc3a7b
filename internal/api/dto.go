package api

import (
	"github.com/starford/lexicon/internal/index"
	"github.com/starford/lexicon/internal/models"
	"github.com/starford/lexicon/internal/network"
)

// Payload is the full network response (aliased from the builder).
type Payload = network.Payload

// ConceptDetail is the single concept response (aliased from the builder).
type ConceptDetail = network.ConceptDetail

// SnapshotMeta describes the stored snapshot file.
type SnapshotMeta = models.SnapshotMeta

// SearchResponse wraps word search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// HistoryResponse wraps archived snapshots, newest first.
type HistoryResponse struct {
	Snapshots []index.SnapshotRow `json:"snapshots" validate:"required"`
}
