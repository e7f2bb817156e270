// Package memory provides a non-durable store.RecordStore kept in process
// memory. It backs tests and the "memory" store backend.
package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/juju/clock"
	"github.com/petcare/catalog-api/internal/domain"
	"github.com/petcare/catalog-api/internal/platform/logger"
	"github.com/petcare/catalog-api/internal/store"
)

// RecordStore is an in-memory store.RecordStore.
type RecordStore struct {
	mu         sync.RWMutex
	collection string
	records    []domain.Record
	index      map[string]int
	clock      clock.Clock
	newID      store.IDFunc
	logger     *slog.Logger
}

// Option configures a RecordStore.
type Option func(*RecordStore)

// WithIDFunc replaces the UUID generator.
func WithIDFunc(fn store.IDFunc) Option {
	return func(s *RecordStore) { s.newID = fn }
}

// NewRecordStore returns an empty store for collection.
func NewRecordStore(collection string, clk clock.Clock, log *slog.Logger, opts ...Option) *RecordStore {
	if clk == nil {
		clk = clock.WallClock
	}
	if log == nil {
		log = slog.Default()
	}
	s := &RecordStore{
		collection: collection,
		index:      make(map[string]int),
		clock:      clk,
		newID:      store.NewUUID,
		logger:     log.With(slog.String("component", "memory_store"), slog.String("collection", collection)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ensure RecordStore implements store.RecordStore.
var _ store.RecordStore = (*RecordStore)(nil)

// ListAll implements store.RecordStore.
func (s *RecordStore) ListAll(ctx context.Context) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Record, len(s.records))
	for i, r := range s.records {
		out[i] = r.Clone()
	}
	return out, nil
}

// GetByID implements store.RecordStore.
func (s *RecordStore) GetByID(ctx context.Context, id string) (domain.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return domain.Record{}, false, nil
	}
	return s.records[i].Clone(), true, nil
}

// Create implements store.RecordStore.
func (s *RecordStore) Create(ctx context.Context, fields domain.Record) (domain.Record, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	if err := fields.Validate(); err != nil {
		return domain.Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := store.UniqueID(s.newID, func(id string) bool {
		_, taken := s.index[id]
		return taken
	})
	if err != nil {
		return domain.Record{}, store.NewStoreError(s.collection, "create", "failed to generate record id", err)
	}

	record := domain.Stamp(fields, id, s.clock.Now())
	s.index[id] = len(s.records)
	s.records = append(s.records, record)

	log.Debug("record created", slog.String("record_id", id))
	return record.Clone(), nil
}

// Update implements store.RecordStore.
func (s *RecordStore) Update(ctx context.Context, id string, partial domain.Record) error {
	if err := partial.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return store.ErrNotFound
	}
	s.records[i].Merge(partial)
	return nil
}

// Delete implements store.RecordStore.
func (s *RecordStore) Delete(ctx context.Context, id string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return store.ErrNotFound
	}
	s.records = append(s.records[:i], s.records[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.records); j++ {
		s.index[s.records[j].ID()] = j
	}

	log.Debug("record deleted", slog.String("record_id", id))
	return nil
}
