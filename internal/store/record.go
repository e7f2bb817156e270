package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/petcare/catalog-api/internal/domain"
)

// RecordStore defines the interface for persisting the records of one
// collection. Records are kept in insertion order, which is the order
// ListAll returns them in.
//
// Implementations are safe for concurrent use. A mutation returns only
// after the new state is durable for the implementation's medium, and a
// reader never observes a partially applied mutation.
type RecordStore interface {
	// ListAll returns every record in store order. Callers own the returned
	// records.
	ListAll(ctx context.Context) ([]domain.Record, error)

	// GetByID returns the record with the given id. The boolean is false
	// when no such record exists; that is not an error.
	GetByID(ctx context.Context, id string) (domain.Record, bool, error)

	// Create stores fields as a new record and returns it. The store
	// generates a unique id and stamps created_at; any id or created_at in
	// fields is ignored. Fields that fail domain.Record.Validate are
	// rejected with an error matching domain.ErrValidation.
	Create(ctx context.Context, fields domain.Record) (domain.Record, error)

	// Update merges partial into the record with the given id. The id and
	// created_at fields never change. Returns ErrNotFound if the record
	// does not exist, and a domain.ErrValidation error if partial fails
	// domain.Record.Validate.
	Update(ctx context.Context, id string, partial domain.Record) error

	// Delete removes the record with the given id.
	// Returns ErrNotFound if the record does not exist.
	Delete(ctx context.Context, id string) error
}

// IDFunc generates candidate record identifiers.
type IDFunc func() string

// NewUUID is the default IDFunc: a random UUIDv4 string.
func NewUUID() string {
	return uuid.NewString()
}

// maxIDAttempts bounds the number of ids drawn for one record.
const maxIDAttempts = 8

// UniqueID draws ids from gen until one is not taken. Collisions are only
// expected from non-random generators, so a generator that keeps colliding
// is reported as ErrDuplicate.
func UniqueID(gen IDFunc, taken func(id string) bool) (string, error) {
	for range maxIDAttempts {
		id := gen()
		if id != "" && !taken(id) {
			return id, nil
		}
	}
	return "", ErrDuplicate
}
