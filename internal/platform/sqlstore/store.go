// Package sqlstore provides a durable store.RecordStore over SQLite or
// PostgreSQL.
//
// All collections share one records table. Each row holds a record as an
// ordered JSON object; the seq column gives store order.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/juju/clock"
	"github.com/petcare/catalog-api/internal/domain"
	"github.com/petcare/catalog-api/internal/platform/logger"
	"github.com/petcare/catalog-api/internal/redact"
	"github.com/petcare/catalog-api/internal/store"
)

// maxCreateAttempts bounds id redraws after unique violations.
const maxCreateAttempts = 8

// Config holds the settings of a RecordStore.
type Config struct {
	Dialect    Dialect
	Collection string

	// Clock stamps created_at. Defaults to the wall clock.
	Clock clock.Clock

	// NewID generates record ids. Defaults to random UUIDs.
	NewID store.IDFunc

	Logger *slog.Logger
}

// RecordStore is a store.RecordStore persisted in a SQL database.
type RecordStore struct {
	db         *sql.DB
	dialect    Dialect
	collection string
	clock      clock.Clock
	newID      store.IDFunc
	logger     *slog.Logger
	owned      bool
}

// Ensure RecordStore implements store.RecordStore.
var _ store.RecordStore = (*RecordStore)(nil)

// New returns a store over an open, migrated database. The caller keeps
// ownership of db.
func New(db *sql.DB, cfg Config) *RecordStore {
	if db == nil {
		panic("db cannot be nil")
	}
	s := &RecordStore{
		db:         db,
		dialect:    cfg.Dialect,
		collection: cfg.Collection,
		clock:      cfg.Clock,
		newID:      cfg.NewID,
		logger:     cfg.Logger,
	}
	if s.clock == nil {
		s.clock = clock.WallClock
	}
	if s.newID == nil {
		s.newID = store.NewUUID
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With(
		slog.String("component", "sql_store"),
		slog.String("dialect", cfg.Dialect.name),
		slog.String("collection", cfg.Collection),
	)
	return s
}

// Open connects to dsn, applies the schema and returns a store that owns
// the connection. Close releases it.
func Open(ctx context.Context, dsn string, cfg Config) (*RecordStore, error) {
	if cfg.Collection == "" {
		return nil, errors.New("sqlstore: empty collection")
	}

	db, err := sql.Open(cfg.Dialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	switch cfg.Dialect.name {
	case SQLite.name:
		// One writer at a time; busy_timeout covers other processes.
		db.SetMaxOpenConns(1)
	default:
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Migrate(ctx, db, cfg.Dialect, cfg.Logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := New(db, cfg)
	s.owned = true
	return s, nil
}

// SQLiteDSN returns a DSN for the SQLite file at path with a busy timeout
// and WAL journaling.
func SQLiteDSN(path string) string {
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Close closes the database if the store opened it.
func (s *RecordStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying database.
func (s *RecordStore) DB() *sql.DB {
	return s.db
}

// ListAll implements store.RecordStore.
func (s *RecordStore) ListAll(ctx context.Context) ([]domain.Record, error) {
	query := s.dialect.rebind(`SELECT fields FROM records WHERE collection = ? ORDER BY seq`)

	rows, err := s.db.QueryContext(ctx, query, s.collection)
	if err != nil {
		return nil, s.storeError(ctx, "list", err)
	}
	defer func() { _ = rows.Close() }()

	var records []domain.Record
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, s.storeError(ctx, "list", err)
		}
		r, err := decodeFields(raw)
		if err != nil {
			return nil, s.storeError(ctx, "list", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, s.storeError(ctx, "list", err)
	}
	return records, nil
}

// GetByID implements store.RecordStore.
func (s *RecordStore) GetByID(ctx context.Context, id string) (domain.Record, bool, error) {
	r, err := s.get(ctx, s.db, id, false)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Record{}, false, nil
	}
	if err != nil {
		return domain.Record{}, false, s.storeError(ctx, "get", err)
	}
	return r, true, nil
}

// Create implements store.RecordStore.
func (s *RecordStore) Create(ctx context.Context, fields domain.Record) (domain.Record, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	if err := fields.Validate(); err != nil {
		return domain.Record{}, err
	}
	query := s.dialect.rebind(`INSERT INTO records (collection, id, fields, created_at) VALUES (?, ?, ?, ?)`)

	for range maxCreateAttempts {
		id := s.newID()
		if id == "" {
			continue
		}
		createdAt := s.clock.Now()
		record := domain.Stamp(fields, id, createdAt)

		raw, err := json.Marshal(record)
		if err != nil {
			return domain.Record{}, s.storeError(ctx, "create", err)
		}

		_, err = s.db.ExecContext(ctx, query, s.collection, id, string(raw), s.dialect.timeArg(createdAt))
		if err != nil {
			if s.dialect.isUnique(err) {
				log.Warn("record id collision, drawing a new id", slog.String("record_id", id))
				continue
			}
			return domain.Record{}, s.storeError(ctx, "create", err)
		}

		log.Debug("record created", slog.String("record_id", id))
		return record, nil
	}
	return domain.Record{}, s.storeError(ctx, "create", store.ErrDuplicate)
}

// Update implements store.RecordStore.
func (s *RecordStore) Update(ctx context.Context, id string, partial domain.Record) error {
	if err := partial.Validate(); err != nil {
		return err
	}
	ctx = logger.WithContext(ctx, logger.FromContextOrDefault(ctx, s.logger))
	query := s.dialect.rebind(`UPDATE records SET fields = ? WHERE collection = ? AND id = ?`)

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		current, err := s.get(ctx, tx, id, true)
		if err != nil {
			return err
		}
		current.Merge(partial)

		raw, err := json.Marshal(current)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, query, string(raw), s.collection, id)
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return store.ErrNotFound
	}
	if err != nil {
		return s.storeError(ctx, "update", err)
	}
	return nil
}

// Delete implements store.RecordStore.
func (s *RecordStore) Delete(ctx context.Context, id string) error {
	query := s.dialect.rebind(`DELETE FROM records WHERE collection = ? AND id = ?`)

	result, err := s.db.ExecContext(ctx, query, s.collection, id)
	if err != nil {
		return s.storeError(ctx, "delete", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return s.storeError(ctx, "delete", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("record deleted", slog.String("record_id", id))
	return nil
}

// get reads one record through q. lock selects the row for update on
// dialects that support it.
func (s *RecordStore) get(ctx context.Context, q store.DBTX, id string, lock bool) (domain.Record, error) {
	query := `SELECT fields FROM records WHERE collection = ? AND id = ?`
	if lock {
		query += s.dialect.lockSuffix
	}

	var raw string
	err := q.QueryRowContext(ctx, s.dialect.rebind(query), s.collection, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Record{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Record{}, err
	}
	return decodeFields(raw)
}

func decodeFields(raw string) (domain.Record, error) {
	var r domain.Record
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return domain.Record{}, fmt.Errorf("failed to decode stored record: %w", err)
	}
	return r, nil
}

func (s *RecordStore) storeError(ctx context.Context, operation string, err error) error {
	logger.FromContextOrDefault(ctx, s.logger).Error("sql store operation failed",
		slog.String("operation", operation),
		slog.String("error", redact.Error(err)))
	return store.NewStoreError(s.collection, operation, "database operation failed", err)
}
