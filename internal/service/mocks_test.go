package service

import (
	"context"

	"github.com/petcare/catalog-api/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockRecordStore mocks the store.RecordStore interface
type MockRecordStore struct {
	mock.Mock
}

func (m *MockRecordStore) ListAll(ctx context.Context) ([]domain.Record, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]domain.Record)
	return records, args.Error(1)
}

func (m *MockRecordStore) GetByID(ctx context.Context, id string) (domain.Record, bool, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(domain.Record)
	return r, args.Bool(1), args.Error(2)
}

func (m *MockRecordStore) Create(ctx context.Context, fields domain.Record) (domain.Record, error) {
	args := m.Called(ctx, fields)
	r, _ := args.Get(0).(domain.Record)
	return r, args.Error(1)
}

func (m *MockRecordStore) Update(ctx context.Context, id string, partial domain.Record) error {
	args := m.Called(ctx, id, partial)
	return args.Error(0)
}

func (m *MockRecordStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
