// Package cache provides a read-through record cache in front of a
// store.RecordStore.
package cache

import (
	"context"
	"errors"

	"github.com/petcare/catalog-api/internal/domain"
)

// ErrMiss is returned by Cache.Get when the record is not cached.
var ErrMiss = errors.New("cache miss")

// Cache holds records by collection and id.
type Cache interface {
	// Get returns ErrMiss when the record is not cached.
	Get(ctx context.Context, collection, id string) (domain.Record, error)
	Set(ctx context.Context, collection string, record domain.Record) error
	Delete(ctx context.Context, collection, id string) error
}

// NoOpCache implements the Cache interface but does nothing
type NoOpCache struct{}

// Get always misses.
func (NoOpCache) Get(ctx context.Context, collection, id string) (domain.Record, error) {
	return domain.Record{}, ErrMiss
}

// Set does nothing
func (NoOpCache) Set(ctx context.Context, collection string, record domain.Record) error {
	return nil
}

// Delete does nothing
func (NoOpCache) Delete(ctx context.Context, collection, id string) error {
	return nil
}
