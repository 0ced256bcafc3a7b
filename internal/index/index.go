package index

// Archive defines the operations consumers need from the snapshot archive.
type Archive interface {
	RecordSnapshot(row *SnapshotRow, words []WordRow) error
	Latest() (*SnapshotRow, error)
	History(limit int) ([]SnapshotRow, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

var _ Archive = (*DB)(nil)
