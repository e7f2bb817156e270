package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/petcare/catalog-api/internal/domain"
	"github.com/petcare/catalog-api/internal/platform/logger"
	"github.com/petcare/catalog-api/internal/query"
	"github.com/petcare/catalog-api/internal/redact"
	"github.com/petcare/catalog-api/internal/store"
)

// RecordService provides CRUD and search over one record collection.
type RecordService interface {
	// List returns every record in store order
	List(ctx context.Context) ([]domain.Record, error)

	// GetByID returns the record with id, or ErrRecordNotFound
	GetByID(ctx context.Context, id string) (domain.Record, error)

	// Create stores fields as a new record and returns it with id and created_at set
	Create(ctx context.Context, fields domain.Record) (domain.Record, error)

	// Update merges partial into the record with id
	Update(ctx context.Context, id string, partial domain.Record) error

	// Delete removes the record with id
	Delete(ctx context.Context, id string) error

	// Search returns the records matching a flat search request (see BuildFilter)
	Search(ctx context.Context, raw map[string]string) ([]domain.Record, error)
}

// recordServiceImpl implements the RecordService interface
type recordServiceImpl struct {
	store      store.RecordStore
	engine     *query.Engine
	collection string
	logger     *slog.Logger
}

// NewRecordService creates a new RecordService for collection.
// It returns an error if the store is nil. A nil engine searches s with
// the built-in operators.
func NewRecordService(
	s store.RecordStore,
	engine *query.Engine,
	collection string,
	logger *slog.Logger,
) (RecordService, error) {
	if s == nil {
		return nil, &RecordServiceError{
			Collection: collection,
			Operation:  "create_service",
			Message:    "store cannot be nil",
		}
	}

	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "record_service"), slog.String("collection", collection))

	if engine == nil {
		engine = query.NewEngine(s, nil, logger)
	}

	return &recordServiceImpl{
		store:      s,
		engine:     engine,
		collection: collection,
		logger:     logger,
	}, nil
}

func (s *recordServiceImpl) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, s.logger)
}

// logFailure logs a failed store call. Missing records and rejected input
// are expected outcomes and go to Debug; everything else is an Error.
func (s *recordServiceImpl) logFailure(ctx context.Context, err error, msg string, args ...any) {
	args = append(args, "error", redact.Error(err))
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, domain.ErrValidation) {
		s.log(ctx).Debug(msg, args...)
		return
	}
	s.log(ctx).Error(msg, args...)
}

// List returns every record in store order
func (s *recordServiceImpl) List(ctx context.Context) ([]domain.Record, error) {
	records, err := s.store.ListAll(ctx)
	if err != nil {
		s.log(ctx).Error("failed to list records", "error", redact.Error(err))
		return nil, NewRecordServiceError(s.collection, "list", "failed to list records", err)
	}

	s.log(ctx).Debug("listed records", "count", len(records))
	return records, nil
}

// GetByID returns the record with id
func (s *recordServiceImpl) GetByID(ctx context.Context, id string) (domain.Record, error) {
	r, found, err := s.store.GetByID(ctx, id)
	if err != nil {
		s.log(ctx).Error("failed to retrieve record", "error", redact.Error(err), "record_id", id)
		return domain.Record{}, NewRecordServiceError(s.collection, "get", "failed to retrieve record", err)
	}
	if !found {
		s.log(ctx).Debug("record not found", "record_id", id)
		return domain.Record{}, ErrRecordNotFound
	}
	return r, nil
}

// Create stores fields as a new record
func (s *recordServiceImpl) Create(ctx context.Context, fields domain.Record) (domain.Record, error) {
	r, err := s.store.Create(ctx, fields)
	if err != nil {
		s.logFailure(ctx, err, "failed to create record")
		return domain.Record{}, NewRecordServiceError(s.collection, "create", "failed to save record", err)
	}

	s.log(ctx).Info("record created", "record_id", r.ID())
	return r, nil
}

// Update merges partial into the record with id. A partial naming id or
// created_at is rejected before the store is touched.
func (s *recordServiceImpl) Update(ctx context.Context, id string, partial domain.Record) error {
	for _, key := range []string{domain.FieldID, domain.FieldCreatedAt} {
		if partial.Has(key) {
			s.log(ctx).Warn("rejected update of reserved field", "record_id", id, "field", key)
			return domain.NewValidationError(key, ErrReservedField.Error(), errors.Join(ErrReservedField, domain.ErrValidation))
		}
	}

	if err := s.store.Update(ctx, id, partial); err != nil {
		s.logFailure(ctx, err, "failed to update record", "record_id", id)
		return NewRecordServiceError(s.collection, "update", "failed to update record", err)
	}

	s.log(ctx).Info("record updated", "record_id", id, "fields", partial.Len())
	return nil
}

// Delete removes the record with id
func (s *recordServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		s.logFailure(ctx, err, "failed to delete record", "record_id", id)
		return NewRecordServiceError(s.collection, "delete", "failed to delete record", err)
	}

	s.log(ctx).Info("record deleted", "record_id", id)
	return nil
}

// Search returns the records matching raw
func (s *recordServiceImpl) Search(ctx context.Context, raw map[string]string) ([]domain.Record, error) {
	f := BuildFilter(raw)
	records, err := s.engine.Search(ctx, f)
	if err != nil {
		s.log(ctx).Warn("search failed", "error", redact.Error(err), "logic", f.Logic)
		return nil, NewRecordServiceError(s.collection, "search", "failed to search records", err)
	}

	s.log(ctx).Debug("search completed", "criteria", len(f.Criteria), "matched", len(records))
	return records, nil
}
