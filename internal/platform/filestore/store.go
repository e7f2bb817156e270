// Package filestore provides a durable store.RecordStore backed by one CSV
// file per collection.
//
// Every operation reads the whole file. Mutations hold an in-process write
// lock and a machine-wide named mutex across read, verify and write, and
// replace the file atomically, so several processes can share a data
// directory without losing each other's writes.
package filestore

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/juju/mutex/v2"
	"github.com/juju/utils/v4"
	"github.com/petcare/catalog-api/internal/domain"
	"github.com/petcare/catalog-api/internal/platform/logger"
	"github.com/petcare/catalog-api/internal/redact"
	"github.com/petcare/catalog-api/internal/store"
)

const (
	fileExt  = ".csv"
	filePerm = 0o600

	// lockDelay is how often a waiting writer retries the named mutex.
	lockDelay = 20 * time.Millisecond
)

// AcquireFunc acquires a named machine-wide mutex.
type AcquireFunc func(mutex.Spec) (mutex.Releaser, error)

// Config holds the settings of a RecordStore.
type Config struct {
	// Dir is the data directory. It is created if missing.
	Dir string

	// Collection names the data file, <Dir>/<Collection>.csv.
	Collection string

	// LockTimeout bounds the wait for the named mutex. Zero waits forever.
	LockTimeout time.Duration

	// Clock stamps created_at. Defaults to the wall clock. Lock retries
	// always run on the wall clock.
	Clock clock.Clock

	// NewID generates record ids. Defaults to random UUIDs.
	NewID store.IDFunc

	// Acquire takes the named mutex. Defaults to mutex.Acquire.
	Acquire AcquireFunc

	Logger *slog.Logger
}

// Validate checks the required settings.
func (c Config) Validate() error {
	if c.Dir == "" {
		return errors.New("filestore: empty data directory")
	}
	if c.Collection == "" {
		return errors.New("filestore: empty collection")
	}
	if c.LockTimeout < 0 {
		return errors.New("filestore: negative lock timeout")
	}
	return nil
}

// RecordStore is a store.RecordStore persisted to a CSV file.
type RecordStore struct {
	mu          sync.RWMutex
	path        string
	collection  string
	lockName    string
	lockTimeout time.Duration
	clock       clock.Clock
	newID       store.IDFunc
	acquire     AcquireFunc
	logger      *slog.Logger
}

// Ensure RecordStore implements store.RecordStore.
var _ store.RecordStore = (*RecordStore)(nil)

// NewRecordStore returns a store over <cfg.Dir>/<cfg.Collection>.csv. A
// missing file is an empty collection; it is created by the first write.
func NewRecordStore(cfg Config) (*RecordStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, store.NewStoreError(cfg.Collection, "open", "failed to create data directory", err)
	}

	path, err := filepath.Abs(filepath.Join(cfg.Dir, cfg.Collection+fileExt))
	if err != nil {
		return nil, store.NewStoreError(cfg.Collection, "open", "failed to resolve data file path", err)
	}

	s := &RecordStore{
		path:        path,
		collection:  cfg.Collection,
		lockName:    lockName(path),
		lockTimeout: cfg.LockTimeout,
		clock:       cfg.Clock,
		newID:       cfg.NewID,
		acquire:     cfg.Acquire,
		logger:      cfg.Logger,
	}
	if s.clock == nil {
		s.clock = clock.WallClock
	}
	if s.newID == nil {
		s.newID = store.NewUUID
	}
	if s.acquire == nil {
		s.acquire = mutex.Acquire
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With(
		slog.String("component", "file_store"),
		slog.String("collection", cfg.Collection),
	)
	return s, nil
}

// lockName derives a valid mutex name from the data file path. Mutex names
// are limited to 40 characters of [a-z0-9.-], so the path is hashed.
func lockName(path string) string {
	sum := sha1.Sum([]byte(path))
	return "catalog-" + hex.EncodeToString(sum[:8])
}

// Path returns the data file path.
func (s *RecordStore) Path() string {
	return s.path
}

// ListAll implements store.RecordStore.
func (s *RecordStore) ListAll(ctx context.Context) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.load()
	if err != nil {
		return nil, s.storeError(ctx, "list", err)
	}
	return records, nil
}

// GetByID implements store.RecordStore.
func (s *RecordStore) GetByID(ctx context.Context, id string) (domain.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.load()
	if err != nil {
		return domain.Record{}, false, s.storeError(ctx, "get", err)
	}
	if i := indexOf(records, id); i >= 0 {
		return records[i], true, nil
	}
	return domain.Record{}, false, nil
}

// Create implements store.RecordStore.
func (s *RecordStore) Create(ctx context.Context, fields domain.Record) (domain.Record, error) {
	if err := fields.Validate(); err != nil {
		return domain.Record{}, err
	}

	var created domain.Record
	err := s.mutate(ctx, "create", func(records []domain.Record) ([]domain.Record, error) {
		id, err := store.UniqueID(s.newID, func(id string) bool {
			return indexOf(records, id) >= 0
		})
		if err != nil {
			return nil, err
		}
		created = domain.Stamp(fields, id, s.clock.Now())
		return append(records, created), nil
	})
	if err != nil {
		return domain.Record{}, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("record created",
		slog.String("record_id", created.ID()))
	return created.Clone(), nil
}

// Update implements store.RecordStore.
func (s *RecordStore) Update(ctx context.Context, id string, partial domain.Record) error {
	if err := partial.Validate(); err != nil {
		return err
	}
	return s.mutate(ctx, "update", func(records []domain.Record) ([]domain.Record, error) {
		i := indexOf(records, id)
		if i < 0 {
			return nil, store.ErrNotFound
		}
		records[i].Merge(partial)
		return records, nil
	})
}

// Delete implements store.RecordStore.
func (s *RecordStore) Delete(ctx context.Context, id string) error {
	err := s.mutate(ctx, "delete", func(records []domain.Record) ([]domain.Record, error) {
		i := indexOf(records, id)
		if i < 0 {
			return nil, store.ErrNotFound
		}
		return append(records[:i], records[i+1:]...), nil
	})
	if err != nil {
		return err
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("record deleted", slog.String("record_id", id))
	return nil
}

// mutate runs fn over the current file contents while holding both locks,
// then writes the result back atomically. ErrNotFound from fn is returned
// as is; every other failure becomes a *store.StoreError.
func (s *RecordStore) mutate(
	ctx context.Context,
	operation string,
	fn func([]domain.Record) ([]domain.Record, error),
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	releaser, err := s.acquire(mutex.Spec{
		Name:    s.lockName,
		Clock:   clock.WallClock,
		Delay:   lockDelay,
		Timeout: s.lockTimeout,
		Cancel:  ctx.Done(),
	})
	if err != nil {
		return s.storeError(ctx, operation, fmt.Errorf("failed to acquire file lock: %w", err))
	}
	defer releaser.Release()

	records, err := s.load()
	if err != nil {
		return s.storeError(ctx, operation, err)
	}

	records, err = fn(records)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return err
		}
		return s.storeError(ctx, operation, err)
	}

	data, err := encode(records)
	if err != nil {
		return s.storeError(ctx, operation, err)
	}
	if err := utils.AtomicWriteFile(s.path, data, filePerm); err != nil {
		return s.storeError(ctx, operation, fmt.Errorf("failed to write data file: %w", err))
	}
	return nil
}

// load reads the data file. A missing file is an empty collection.
func (s *RecordStore) load() ([]domain.Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	return decode(data)
}

func (s *RecordStore) storeError(ctx context.Context, operation string, err error) error {
	logger.FromContextOrDefault(ctx, s.logger).Error("file store operation failed",
		slog.String("operation", operation),
		slog.String("error", redact.Error(err)))
	return store.NewStoreError(s.collection, operation, "file store operation failed", err)
}

func indexOf(records []domain.Record, id string) int {
	for i, r := range records {
		if r.ID() == id {
			return i
		}
	}
	return -1
}
