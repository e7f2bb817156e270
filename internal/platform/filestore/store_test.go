package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sync"
	"testing"

	"github.com/juju/clock"
	"github.com/juju/clock/testclock"
	"github.com/juju/mutex/v2"
	"github.com/petcare/catalog-api/internal/domain"
	"github.com/petcare/catalog-api/internal/platform/logger"
	"github.com/petcare/catalog-api/internal/store"
	"github.com/petcare/catalog-api/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type releaserFunc func()

func (f releaserFunc) Release() { f() }

// sharedLock stands in for the machine-wide mutex so tests do not touch
// host-global lock names.
type sharedLock struct {
	mu    sync.Mutex
	specs []mutex.Spec
	seen  sync.Mutex
}

func (l *sharedLock) acquire(spec mutex.Spec) (mutex.Releaser, error) {
	l.seen.Lock()
	l.specs = append(l.specs, spec)
	l.seen.Unlock()

	l.mu.Lock()
	return releaserFunc(l.mu.Unlock), nil
}

func newTestStore(t *testing.T, dir string, clk clock.Clock, lock *sharedLock) *RecordStore {
	t.Helper()
	log, _ := logger.NewTestLogger(t)
	s, err := NewRecordStore(Config{
		Dir:        dir,
		Collection: "services",
		Clock:      clk,
		Acquire:    lock.acquire,
		Logger:     log,
	})
	require.NoError(t, err)
	return s
}

func TestRecordStoreContract(t *testing.T) {
	t.Parallel()

	storetest.RunRecordStoreTests(t, func(t *testing.T, clk clock.Clock) store.RecordStore {
		return newTestStore(t, t.TempDir(), clk, &sharedLock{})
	})
}

func TestRecordsSurviveReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	clk := testclock.NewClock(storetest.Epoch)

	first := newTestStore(t, dir, clk, &sharedLock{})
	banho, err := first.Create(ctx, storetest.Offering("Banho e Tosa", "Completo, com \"perfume\"", 80))
	require.NoError(t, err)
	vacina, err := first.Create(ctx, storetest.Offering("Vacina", "V10\nimportada", 120.5))
	require.NoError(t, err)

	reopened := newTestStore(t, dir, clk, &sharedLock{})
	all, err := reopened.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, banho.Equal(all[0]), "expected %v, got %v", banho, all[0])
	assert.True(t, vacina.Equal(all[1]), "expected %v, got %v", vacina, all[1])

	value, _ := all[1].Get(domain.OfferingFieldValue)
	assert.Equal(t, domain.KindNumber, value.Kind())
}

func TestMixedKindsAndEmptyStringsSurviveReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	clk := testclock.NewClock(storetest.Epoch)

	first := newTestStore(t, dir, clk, &sharedLock{})
	priced, err := first.Create(ctx, storetest.Offering("Banho", "", 100))
	require.NoError(t, err)
	onRequest := domain.NewRecord(2)
	onRequest.Set(domain.OfferingFieldName, domain.StringValue("Cirurgia"))
	onRequest.Set(domain.OfferingFieldValue, domain.StringValue("sob consulta"))
	other, err := first.Create(ctx, onRequest)
	require.NoError(t, err)

	partial := domain.NewRecord(1)
	partial.Set("note", domain.StringValue("x"))
	require.NoError(t, first.Update(ctx, other.ID(), partial))

	reopened := newTestStore(t, dir, clk, &sharedLock{})
	got, found, err := reopened.GetByID(ctx, priced.ID())
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, priced.Equal(got), "expected %v, got %v", priced, got)

	value, _ := got.Get(domain.OfferingFieldValue)
	assert.Equal(t, domain.KindNumber, value.Kind())
	description, ok := got.Get(domain.OfferingFieldDescription)
	require.True(t, ok)
	assert.Empty(t, description.Text())
	assert.False(t, got.Has("note"))
}

func TestEmptyFieldNameLeavesFileReadable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	s := newTestStore(t, dir, testclock.NewClock(storetest.Epoch), &sharedLock{})

	bad := storetest.Offering("Banho", "Simples", 50)
	bad.Set("", domain.StringValue("x"))
	_, err := s.Create(ctx, bad)
	require.ErrorIs(t, err, domain.ErrEmptyFieldName)

	reopened := newTestStore(t, dir, testclock.NewClock(storetest.Epoch), &sharedLock{})
	_, err = reopened.Create(ctx, storetest.Offering("Tosa", "Simples", 40))
	require.NoError(t, err)
	all, err := reopened.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestTwoInstancesInterleaveCreates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	clk := testclock.NewClock(storetest.Epoch)
	lock := &sharedLock{}

	a := newTestStore(t, dir, clk, lock)
	b := newTestStore(t, dir, clk, lock)

	const perStore = 10
	var wg sync.WaitGroup
	for _, s := range []*RecordStore{a, b} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perStore {
				_, err := s.Create(ctx, storetest.Offering(fmt.Sprintf("svc-%d", i), "d", float64(i)))
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	for _, s := range []*RecordStore{a, b} {
		all, err := s.ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2*perStore)
		storetest.AssertUniqueIDs(t, all)
	}

	require.NotEmpty(t, lock.specs)
	assert.Equal(t, lockName(a.Path()), lock.specs[0].Name)
}

func TestCorruptFileIsStoreError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	s := newTestStore(t, dir, clock.WallClock, &sharedLock{})
	require.NoError(t, os.WriteFile(s.Path(), []byte("id,value\nstring:1,number:cheap\n"), 0o600))

	_, err := s.ListAll(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrStore)
	assert.ErrorIs(t, err, ErrCorrupt)

	_, _, err = s.GetByID(ctx, "1")
	assert.ErrorIs(t, err, store.ErrStore)

	_, err = s.Create(ctx, storetest.Offering("Banho", "d", 1))
	assert.ErrorIs(t, err, store.ErrStore)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "id,value\nstring:1,number:cheap\n", string(data), "a failed write must leave the file untouched")
}

func TestLockFailureIsStoreError(t *testing.T) {
	t.Parallel()

	lockErr := errors.New("timeout acquiring mutex")
	s, err := NewRecordStore(Config{
		Dir:        t.TempDir(),
		Collection: "services",
		Acquire: func(mutex.Spec) (mutex.Releaser, error) {
			return nil, lockErr
		},
	})
	require.NoError(t, err)

	_, err = s.Create(context.Background(), storetest.Offering("Banho", "d", 1))
	assert.ErrorIs(t, err, store.ErrStore)
	assert.ErrorIs(t, err, lockErr)

	_, statErr := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(statErr))
}

func TestUpdateAndDeleteMissingLeaveFileUntouched(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t, t.TempDir(), clock.WallClock, &sharedLock{})

	assert.ErrorIs(t, s.Update(ctx, "nope", storetest.Offering("a", "b", 1)), store.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "nope"), store.ErrNotFound)

	_, statErr := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(statErr))
}

func TestRealNamedMutex(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := NewRecordStore(Config{Dir: t.TempDir(), Collection: "services"})
	require.NoError(t, err)

	created, err := s.Create(ctx, storetest.Offering("Banho", "d", 1))
	require.NoError(t, err)
	require.NoError(t, s.Update(ctx, created.ID(), storetest.Offering("Banho e Tosa", "d", 2)))

	got, found, err := s.GetByID(ctx, created.ID())
	require.NoError(t, err)
	require.True(t, found)
	name, _ := got.Get(domain.OfferingFieldName)
	assert.Equal(t, "Banho e Tosa", name.Text())
}

func TestLockName(t *testing.T) {
	t.Parallel()

	valid := regexp.MustCompile(`^[a-z]+[a-z0-9.-]*$`)
	name := lockName("/var/lib/catalog/data/services.csv")
	assert.Regexp(t, valid, name)
	assert.LessOrEqual(t, len(name), 40)
	assert.NotEqual(t, name, lockName("/var/lib/catalog/data/other.csv"))
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing dir", Config{Collection: "services"}},
		{"missing collection", Config{Dir: "data"}},
		{"negative timeout", Config{Dir: "data", Collection: "services", LockTimeout: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRecordStore(tt.cfg)
			assert.Error(t, err)
		})
	}
}
