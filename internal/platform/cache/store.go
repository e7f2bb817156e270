package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/petcare/catalog-api/internal/domain"
	"github.com/petcare/catalog-api/internal/platform/logger"
	"github.com/petcare/catalog-api/internal/redact"
	"github.com/petcare/catalog-api/internal/store"
)

// RecordStore caches GetByID results of the wrapped store. Mutations go to
// the wrapped store first and then invalidate the cached entry. Cache
// failures are logged and never fail an operation; a failed invalidation
// can leave a stale entry until it expires.
//
// A read that misses registers a fill before asking the wrapped store. A
// mutation of the same id marks every open fill stale, and a stale fill is
// never written to the cache. This only covers mutations made through this
// RecordStore value.
type RecordStore struct {
	next       store.RecordStore
	cache      Cache
	collection string
	logger     *slog.Logger

	mu    sync.Mutex
	fills map[string]map[*fill]struct{} // open fills by record id
}

// fill is one read-through in flight.
type fill struct {
	stale bool
}

// Ensure RecordStore implements store.RecordStore.
var _ store.RecordStore = (*RecordStore)(nil)

// NewRecordStore wraps next with c.
func NewRecordStore(next store.RecordStore, c Cache, collection string, log *slog.Logger) *RecordStore {
	if c == nil {
		c = NoOpCache{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &RecordStore{
		next:       next,
		cache:      c,
		collection: collection,
		logger:     log.With(slog.String("component", "record_cache"), slog.String("collection", collection)),
		fills:      make(map[string]map[*fill]struct{}),
	}
}

// ListAll implements store.RecordStore. Lists are not cached.
func (s *RecordStore) ListAll(ctx context.Context) ([]domain.Record, error) {
	return s.next.ListAll(ctx)
}

// GetByID implements store.RecordStore.
func (s *RecordStore) GetByID(ctx context.Context, id string) (domain.Record, bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	r, err := s.cache.Get(ctx, s.collection, id)
	switch {
	case err == nil:
		return r, true, nil
	case !errors.Is(err, ErrMiss):
		log.Warn("cache read failed", slog.String("record_id", id), slog.String("error", redact.Error(err)))
	}

	f := s.startFill(id)
	r, found, err := s.next.GetByID(ctx, id)
	if err != nil || !found {
		s.finishFill(ctx, id, f, nil)
		return r, found, err
	}
	s.finishFill(ctx, id, f, &r)
	return r, true, nil
}

func (s *RecordStore) startFill(id string) *fill {
	f := &fill{}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fills[id] == nil {
		s.fills[id] = make(map[*fill]struct{})
	}
	s.fills[id][f] = struct{}{}
	return f
}

// finishFill closes f and caches r unless a mutation of id happened while f
// was open. The check and the write share the lock with markStale.
func (s *RecordStore) finishFill(ctx context.Context, id string, f *fill, r *domain.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fills[id], f)
	if len(s.fills[id]) == 0 {
		delete(s.fills, id)
	}
	if r == nil || f.stale {
		return
	}
	if err := s.cache.Set(ctx, s.collection, *r); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("cache write failed",
			slog.String("record_id", id), slog.String("error", redact.Error(err)))
	}
}

func (s *RecordStore) markStale(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for f := range s.fills[id] {
		f.stale = true
	}
}

// Create implements store.RecordStore.
func (s *RecordStore) Create(ctx context.Context, fields domain.Record) (domain.Record, error) {
	r, err := s.next.Create(ctx, fields)
	if err != nil {
		return r, err
	}
	if err := s.cache.Set(ctx, s.collection, r); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("cache write failed",
			slog.String("record_id", r.ID()), slog.String("error", redact.Error(err)))
	}
	return r, nil
}

// Update implements store.RecordStore.
func (s *RecordStore) Update(ctx context.Context, id string, partial domain.Record) error {
	err := s.next.Update(ctx, id, partial)
	s.markStale(id)
	s.invalidate(ctx, id)
	return err
}

// Delete implements store.RecordStore.
func (s *RecordStore) Delete(ctx context.Context, id string) error {
	err := s.next.Delete(ctx, id)
	s.markStale(id)
	s.invalidate(ctx, id)
	return err
}

func (s *RecordStore) invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, s.collection, id); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("cache invalidation failed",
			slog.String("record_id", id), slog.String("error", redact.Error(err)))
	}
}
