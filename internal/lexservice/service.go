// Package lexservice coordinates the snapshot source, the concept network
// builder and the archive.
package lexservice

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/lexicon/internal/apperr"
	"github.com/starford/lexicon/internal/checksum"
	"github.com/starford/lexicon/internal/index"
	"github.com/starford/lexicon/internal/metrics"
	"github.com/starford/lexicon/internal/models"
	"github.com/starford/lexicon/internal/network"
	"github.com/starford/lexicon/internal/parser"
	"github.com/starford/lexicon/internal/storage"
)

// Service coordinates storage, builder and index operations.
type Service struct {
	store   storage.Provider
	db      *index.DB
	file    string
	metrics *metrics.Collector
	logger  *slog.Logger

	onRecord index.RecordCallback

	// ingestMu serializes the check-then-write of Ingest.
	ingestMu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records build and archive metrics on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Service) { s.metrics = c }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithRecordCallback registers fn to run whenever a snapshot is archived.
func WithRecordCallback(fn index.RecordCallback) Option {
	return func(s *Service) { s.onRecord = fn }
}

// NewService creates a service reading the snapshot named file from store.
func NewService(store storage.Provider, db *index.DB, file string, opts ...Option) *Service {
	s := &Service{
		store:  store,
		db:     db,
		file:   file,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// File returns the snapshot file name.
func (s *Service) File() string {
	return s.file
}

// Network reads the current snapshot and builds its payload. Every call is a
// full rebuild.
func (s *Service) Network(_ context.Context) (*network.Payload, error) {
	start := time.Now()
	payload, err := s.build()
	s.observeBuild(err, time.Since(start))
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.SetNetwork(payload.Generation, len(payload.Nodes), len(payload.Edges))
	}
	return payload, nil
}

// Summary builds the current payload and condenses it, keeping the top
// living words.
func (s *Service) Summary(ctx context.Context, top int) (*network.Summary, error) {
	payload, err := s.Network(ctx)
	if err != nil {
		return nil, err
	}
	sum := payload.Summary(top)
	return &sum, nil
}

// Concept returns one concept of the current snapshot.
func (s *Service) Concept(_ context.Context, id string) (*network.ConceptDetail, error) {
	snap, err := s.load()
	if err != nil {
		return nil, err
	}
	detail, ok := network.Aggregate(snap.Compounds).Concept(id)
	if !ok {
		return nil, fmt.Errorf("concept %q: %w", id, apperr.ErrNotFound)
	}
	return detail, nil
}

// Meta describes the stored snapshot file.
func (s *Service) Meta(_ context.Context) (*models.SnapshotMeta, error) {
	meta, err := s.store.Stat(s.file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return meta, nil
}

// Search delegates word search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// History returns archived snapshots, newest first.
func (s *Service) History(_ context.Context, limit int) ([]index.SnapshotRow, error) {
	return s.db.History(limit)
}

// Ingest replaces the stored snapshot with data. A non-empty ifMatch must
// name the checksum of the snapshot currently stored. The upload is parsed
// before anything is written, so a rejected upload leaves the store as is.
func (s *Service) Ingest(_ context.Context, data []byte, ifMatch string) (*models.SnapshotMeta, error) {
	if _, err := parser.Parse(data); err != nil {
		return nil, err
	}

	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	if ifMatch != "" {
		existing, err := s.store.Read(s.file)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("ingest: %w: %w", apperr.ErrSourceUnavailable, err)
		}
		if err != nil || !checksum.Matches(existing, ifMatch) {
			return nil, apperr.ErrConflict
		}
	}

	if err := s.store.Write(s.file, data); err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}

	if _, err := s.Sync(); err != nil {
		// The file is stored; the watcher or the next sync archives it.
		s.logger.Warn("ingest: archive sync failed", slog.String("error", err.Error()))
	}

	return s.store.Stat(s.file)
}

// Sync archives the stored snapshot if it changed since the last recorded
// one.
func (s *Service) Sync() (*index.SnapshotRow, error) {
	row, err := index.Sync(s.db, s.store, s.file, s.logger)
	if err != nil {
		return nil, err
	}
	if row != nil {
		s.Recorded(*row)
	}
	return row, nil
}

// Recorded is the archive callback: it updates metrics and forwards the
// row to the registered callback. The watcher calls it directly.
func (s *Service) Recorded(row index.SnapshotRow) {
	if s.metrics != nil {
		s.metrics.Recorded.Inc()
	}
	if s.onRecord != nil {
		s.onRecord(row)
	}
}

func (s *Service) load() (*models.Snapshot, error) {
	data, err := s.store.Read(s.file)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w: %w", apperr.ErrSourceUnavailable, err)
	}
	return parser.Parse(data)
}

func (s *Service) build() (*network.Payload, error) {
	snap, err := s.load()
	if err != nil {
		return nil, err
	}
	return network.Build(snap)
}

func (s *Service) observeBuild(err error, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	result := metrics.ResultOK
	switch {
	case errors.Is(err, apperr.ErrMalformedSnapshot):
		result = metrics.ResultMalformed
	case err != nil:
		result = metrics.ResultUnavailable
	}
	s.metrics.ObserveBuild(result, elapsed)
}
