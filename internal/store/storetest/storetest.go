// Package storetest holds the behavioral tests every store.RecordStore
// implementation must pass.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/juju/clock"
	"github.com/juju/clock/testclock"
	"github.com/petcare/catalog-api/internal/domain"
	"github.com/petcare/catalog-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Epoch is the time the test clock starts at.
var Epoch = time.Date(2025, 4, 1, 12, 0, 0, 123456000, time.UTC)

// Factory returns an empty store for a single test. Timestamps must come
// from clk.
type Factory func(t *testing.T, clk clock.Clock) store.RecordStore

// Offering returns create fields for a "service" record.
func Offering(name, description string, value float64) domain.Record {
	r := domain.NewRecord(3)
	r.Set(domain.OfferingFieldName, domain.StringValue(name))
	r.Set(domain.OfferingFieldDescription, domain.StringValue(description))
	r.Set(domain.OfferingFieldValue, domain.NumberValue(value))
	return r
}

// RunRecordStoreTests runs the contract suite against stores built by newStore.
func RunRecordStoreTests(t *testing.T, newStore Factory) {
	t.Run("CreateThenGet", func(t *testing.T) { testCreateThenGet(t, newStore) })
	t.Run("EmptyFieldNameRejected", func(t *testing.T) { testEmptyFieldName(t, newStore) })
	t.Run("MixedKindsSurviveRewrite", func(t *testing.T) { testMixedKinds(t, newStore) })
	t.Run("CreateIgnoresReservedFields", func(t *testing.T) { testCreateIgnoresReserved(t, newStore) })
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, newStore) })
	t.Run("ListAllKeepsInsertionOrder", func(t *testing.T) { testListOrder(t, newStore) })
	t.Run("UpdateMerges", func(t *testing.T) { testUpdateMerges(t, newStore) })
	t.Run("UpdateEmptyIsNoOp", func(t *testing.T) { testUpdateEmpty(t, newStore) })
	t.Run("UpdateKeepsReservedFields", func(t *testing.T) { testUpdateReserved(t, newStore) })
	t.Run("UpdateMissing", func(t *testing.T) { testUpdateMissing(t, newStore) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, newStore) })
	t.Run("ReturnedRecordsAreCopies", func(t *testing.T) { testCopies(t, newStore) })
	t.Run("ConcurrentCreates", func(t *testing.T) { testConcurrentCreates(t, newStore) })
}

func testCreateThenGet(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t, testclock.NewClock(Epoch))

	fields := Offering("Banho e Tosa", "Completo com corte de unhas", 80)
	fields.Set("note", domain.StringValue(""))
	fields.Set("available_from", domain.StringValue("2025-04-01 12:00:00.000000"))

	created, err := s.Create(ctx, fields)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID())

	createdAt, ok := created.CreatedAt()
	require.True(t, ok)
	assert.True(t, createdAt.Equal(Epoch), "created_at should come from the clock, got %s", createdAt)

	keys := created.Keys()
	assert.Equal(t, []string{"id", "name", "description", "value", "note", "available_from", "created_at"}, keys)

	got, found, err := s.GetByID(ctx, created.ID())
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, created.Equal(got), "expected %v, got %v", created, got)

	note, ok := got.Get("note")
	require.True(t, ok, "empty string must not read back as absent")
	assert.Equal(t, domain.KindString, note.Kind())
	assert.Empty(t, note.Text())
	from, ok := got.Get("available_from")
	require.True(t, ok)
	assert.Equal(t, domain.KindString, from.Kind(), "timestamp shaped strings stay strings")
}

func testEmptyFieldName(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t, testclock.NewClock(Epoch))

	existing, err := s.Create(ctx, Offering("Banho", "Simples", 50))
	require.NoError(t, err)

	bad := Offering("Tosa", "Simples", 40)
	bad.Set("", domain.StringValue("x"))
	_, err = s.Create(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorIs(t, err, domain.ErrEmptyFieldName)

	partial := domain.NewRecord(1)
	partial.Set("", domain.StringValue("x"))
	err = s.Update(ctx, existing.ID(), partial)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorIs(t, err, domain.ErrEmptyFieldName)

	// The store keeps working after the rejected writes.
	_, err = s.Create(ctx, Offering("Vacina", "V10", 120))
	require.NoError(t, err)
	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	got, _, err := s.GetByID(ctx, existing.ID())
	require.NoError(t, err)
	assert.True(t, existing.Equal(got), "expected %v, got %v", existing, got)
}

func testMixedKinds(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t, testclock.NewClock(Epoch))

	priced, err := s.Create(ctx, Offering("Banho", "Simples", 100))
	require.NoError(t, err)

	onRequest := domain.NewRecord(2)
	onRequest.Set(domain.OfferingFieldName, domain.StringValue("Cirurgia"))
	onRequest.Set(domain.OfferingFieldValue, domain.StringValue("sob consulta"))
	other, err := s.Create(ctx, onRequest)
	require.NoError(t, err)

	partial := domain.NewRecord(1)
	partial.Set(domain.OfferingFieldDescription, domain.StringValue("Avaliação prévia"))
	require.NoError(t, s.Update(ctx, other.ID(), partial))

	got, found, err := s.GetByID(ctx, priced.ID())
	require.NoError(t, err)
	require.True(t, found)
	value, _ := got.Get(domain.OfferingFieldValue)
	assert.Equal(t, domain.KindNumber, value.Kind())
	assert.Equal(t, float64(100), value.Number())

	got, _, err = s.GetByID(ctx, other.ID())
	require.NoError(t, err)
	value, _ = got.Get(domain.OfferingFieldValue)
	assert.Equal(t, domain.KindString, value.Kind())
	assert.Equal(t, "sob consulta", value.Text())
}

func testCreateIgnoresReserved(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t, testclock.NewClock(Epoch))

	fields := Offering("Vacina", "V10", 120)
	fields.Set(domain.FieldID, domain.StringValue("chosen-by-caller"))
	fields.Set(domain.FieldCreatedAt, domain.TimeValue(Epoch.Add(-time.Hour)))

	created, err := s.Create(ctx, fields)
	require.NoError(t, err)
	assert.NotEqual(t, "chosen-by-caller", created.ID())
	createdAt, _ := created.CreatedAt()
	assert.True(t, createdAt.Equal(Epoch))
}

func testGetMissing(t *testing.T, newStore Factory) {
	s := newStore(t, testclock.NewClock(Epoch))

	_, found, err := s.GetByID(context.Background(), "does-not-exist")
	require.NoError(t, err)
	assert.False(t, found)
}

func testListOrder(t *testing.T, newStore Factory) {
	ctx := context.Background()
	clk := testclock.NewClock(Epoch)
	s := newStore(t, clk)

	empty, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	var ids []string
	for i, name := range []string{"Banho", "Tosa", "Vacina", "Consulta"} {
		clk.Advance(time.Duration(i) * time.Second)
		r, err := s.Create(ctx, Offering(name, "desc", float64(10*(i+1))))
		require.NoError(t, err)
		ids = append(ids, r.ID())
	}

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, len(ids))
	for i, r := range all {
		assert.Equal(t, ids[i], r.ID())
	}
}

func testUpdateMerges(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t, testclock.NewClock(Epoch))

	created, err := s.Create(ctx, Offering("Banho", "Simples", 50))
	require.NoError(t, err)

	partial := domain.NewRecord(2)
	partial.Set(domain.OfferingFieldValue, domain.NumberValue(55.5))
	partial.Set("category", domain.StringValue("higiene"))
	require.NoError(t, s.Update(ctx, created.ID(), partial))

	got, found, err := s.GetByID(ctx, created.ID())
	require.NoError(t, err)
	require.True(t, found)

	name, _ := got.Get(domain.OfferingFieldName)
	assert.Equal(t, "Banho", name.Text())
	value, _ := got.Get(domain.OfferingFieldValue)
	assert.Equal(t, 55.5, value.Number())
	category, ok := got.Get("category")
	require.True(t, ok)
	assert.Equal(t, "higiene", category.Text())
}

func testUpdateEmpty(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t, testclock.NewClock(Epoch))

	created, err := s.Create(ctx, Offering("Banho", "Simples", 50))
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, created.ID(), domain.NewRecord(0)))

	got, _, err := s.GetByID(ctx, created.ID())
	require.NoError(t, err)
	assert.True(t, created.Equal(got))
}

func testUpdateReserved(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t, testclock.NewClock(Epoch))

	created, err := s.Create(ctx, Offering("Banho", "Simples", 50))
	require.NoError(t, err)

	partial := domain.NewRecord(3)
	partial.Set(domain.FieldID, domain.StringValue("hijacked"))
	partial.Set(domain.FieldCreatedAt, domain.TimeValue(Epoch.Add(24*time.Hour)))
	partial.Set(domain.OfferingFieldName, domain.StringValue("Banho Premium"))
	require.NoError(t, s.Update(ctx, created.ID(), partial))

	got, found, err := s.GetByID(ctx, created.ID())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, created.ID(), got.ID())
	createdAt, _ := got.CreatedAt()
	assert.True(t, createdAt.Equal(Epoch))
	name, _ := got.Get(domain.OfferingFieldName)
	assert.Equal(t, "Banho Premium", name.Text())

	_, found, err = s.GetByID(ctx, "hijacked")
	require.NoError(t, err)
	assert.False(t, found)
}

func testUpdateMissing(t *testing.T, newStore Factory) {
	s := newStore(t, testclock.NewClock(Epoch))

	err := s.Update(context.Background(), "missing", Offering("x", "y", 1))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testDelete(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t, testclock.NewClock(Epoch))

	keep, err := s.Create(ctx, Offering("Banho", "Simples", 50))
	require.NoError(t, err)
	gone, err := s.Create(ctx, Offering("Tosa", "Simples", 40))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, gone.ID()))

	_, found, err := s.GetByID(ctx, gone.ID())
	require.NoError(t, err)
	assert.False(t, found)

	assert.ErrorIs(t, s.Delete(ctx, gone.ID()), store.ErrNotFound)

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, keep.ID(), all[0].ID())
}

func testCopies(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t, testclock.NewClock(Epoch))

	created, err := s.Create(ctx, Offering("Banho", "Simples", 50))
	require.NoError(t, err)
	created.Set(domain.OfferingFieldName, domain.StringValue("mutated"))

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	all[0].Set(domain.OfferingFieldName, domain.StringValue("mutated"))

	got, _, err := s.GetByID(ctx, created.ID())
	require.NoError(t, err)
	name, _ := got.Get(domain.OfferingFieldName)
	assert.Equal(t, "Banho", name.Text())
}

func testConcurrentCreates(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t, testclock.NewClock(Epoch))

	const writers = 8
	const perWriter = 5

	var wg sync.WaitGroup
	errs := make(chan error, writers*perWriter)
	for w := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perWriter {
				_, err := s.Create(ctx, Offering(fmt.Sprintf("svc-%d-%d", w, i), "desc", float64(i)))
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, writers*perWriter)
	AssertUniqueIDs(t, all)
}

// AssertUniqueIDs fails the test if two records share an id.
func AssertUniqueIDs(t *testing.T, records []domain.Record) {
	t.Helper()
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		assert.False(t, seen[r.ID()], "duplicate id %s", r.ID())
		seen[r.ID()] = true
	}
}
