// Package storage defines the snapshot file-system abstraction.
package storage

import "github.com/starford/lexicon/internal/models"

// Provider is the interface for snapshot file operations.
type Provider interface {
	// Read returns the raw bytes of the file at name (relative to the data root).
	Read(name string) ([]byte, error)
	// Write atomically replaces the file at name (relative to the data root).
	Write(name string, content []byte) error
	// Stat returns size, checksum and modification time of the file at name.
	Stat(name string) (*models.SnapshotMeta, error)
	// Root returns the absolute data directory.
	Root() string
}
