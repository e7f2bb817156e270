package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/juju/clock"
	"github.com/petcare/catalog-api/internal/domain"
	"github.com/petcare/catalog-api/internal/store"
)

// Operation labels.
const (
	OpListAll = "list_all"
	OpGetByID = "get_by_id"
	OpCreate  = "create"
	OpUpdate  = "update"
	OpDelete  = "delete"
)

// RecordStore records the count, outcome and latency of every call to the
// wrapped store.
type RecordStore struct {
	next       store.RecordStore
	collector  *Collector
	collection string
	clock      clock.Clock
}

// Ensure RecordStore implements store.RecordStore.
var _ store.RecordStore = (*RecordStore)(nil)

// NewRecordStore wraps next. A nil clk uses the wall clock.
func NewRecordStore(next store.RecordStore, c *Collector, collection string, clk clock.Clock) *RecordStore {
	if clk == nil {
		clk = clock.WallClock
	}
	return &RecordStore{next: next, collector: c, collection: collection, clock: clk}
}

func (s *RecordStore) observe(op string, start time.Time, err error) {
	result := ResultOK
	switch {
	case errors.Is(err, store.ErrNotFound):
		result = ResultNotFound
	case err != nil:
		result = ResultError
	}
	s.collector.operations.WithLabelValues(s.collection, op, result).Inc()
	s.collector.duration.WithLabelValues(s.collection, op).Observe(s.clock.Now().Sub(start).Seconds())
}

// ListAll implements store.RecordStore.
func (s *RecordStore) ListAll(ctx context.Context) ([]domain.Record, error) {
	start := s.clock.Now()
	records, err := s.next.ListAll(ctx)
	s.observe(OpListAll, start, err)
	if err == nil {
		s.collector.records.WithLabelValues(s.collection).Set(float64(len(records)))
	}
	return records, err
}

// GetByID implements store.RecordStore. An absent record counts as
// not_found.
func (s *RecordStore) GetByID(ctx context.Context, id string) (domain.Record, bool, error) {
	start := s.clock.Now()
	r, found, err := s.next.GetByID(ctx, id)
	if err == nil && !found {
		s.observe(OpGetByID, start, store.ErrNotFound)
	} else {
		s.observe(OpGetByID, start, err)
	}
	return r, found, err
}

// Create implements store.RecordStore.
func (s *RecordStore) Create(ctx context.Context, fields domain.Record) (domain.Record, error) {
	start := s.clock.Now()
	r, err := s.next.Create(ctx, fields)
	s.observe(OpCreate, start, err)
	return r, err
}

// Update implements store.RecordStore.
func (s *RecordStore) Update(ctx context.Context, id string, partial domain.Record) error {
	start := s.clock.Now()
	err := s.next.Update(ctx, id, partial)
	s.observe(OpUpdate, start, err)
	return err
}

// Delete implements store.RecordStore.
func (s *RecordStore) Delete(ctx context.Context, id string) error {
	start := s.clock.Now()
	err := s.next.Delete(ctx, id)
	s.observe(OpDelete, start, err)
	return err
}
