package sqlstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/clock/testclock"
	"github.com/petcare/catalog-api/internal/domain"
	"github.com/petcare/catalog-api/internal/platform/logger"
	"github.com/petcare/catalog-api/internal/store"
	"github.com/petcare/catalog-api/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDatabaseURLEnv names a PostgreSQL database the postgres tests may use.
const testDatabaseURLEnv = "CATALOG_TEST_DATABASE_URL"

func openSQLite(t *testing.T, path, collection string, clk clock.Clock) *RecordStore {
	t.Helper()
	log, _ := logger.NewTestLogger(t)
	s, err := Open(context.Background(), SQLiteDSN(path), Config{
		Dialect:    SQLite,
		Collection: collection,
		Clock:      clk,
		Logger:     log,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteRecordStoreContract(t *testing.T) {
	t.Parallel()

	storetest.RunRecordStoreTests(t, func(t *testing.T, clk clock.Clock) store.RecordStore {
		return openSQLite(t, filepath.Join(t.TempDir(), "catalog.db"), "services", clk)
	})
}

func TestPostgresRecordStoreContract(t *testing.T) {
	dsn := os.Getenv(testDatabaseURLEnv)
	if dsn == "" {
		t.Skipf("%s not set", testDatabaseURLEnv)
	}

	storetest.RunRecordStoreTests(t, func(t *testing.T, clk clock.Clock) store.RecordStore {
		// A fresh collection per test keeps runs independent on a shared database.
		collection := "test" + strings.ReplaceAll(uuid.NewString(), "-", "")
		s, err := Open(context.Background(), dsn, Config{
			Dialect:    Postgres,
			Collection: collection,
			Clock:      clk,
		})
		require.NoError(t, err)
		t.Cleanup(func() {
			_, _ = s.DB().Exec(`DELETE FROM records WHERE collection = $1`, collection)
			_ = s.Close()
		})
		return s
	})
}

func TestSQLiteRecordsSurviveReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")
	clk := testclock.NewClock(storetest.Epoch)

	first := openSQLite(t, path, "services", clk)
	created, err := first.Create(ctx, storetest.Offering("Banho e Tosa", "Completo", 80))
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := openSQLite(t, path, "services", clk)
	got, found, err := second.GetByID(ctx, created.ID())
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, created.Equal(got), "expected %v, got %v", created, got)
}

func TestCollectionsAreIsolated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")
	services := openSQLite(t, path, "services", clock.WallClock)
	products := New(services.DB(), Config{Dialect: SQLite, Collection: "products"})

	created, err := services.Create(ctx, storetest.Offering("Banho", "d", 1))
	require.NoError(t, err)

	all, err := products.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	_, found, err := products.GetByID(ctx, created.ID())
	require.NoError(t, err)
	assert.False(t, found)
	assert.ErrorIs(t, products.Delete(ctx, created.ID()), store.ErrNotFound)
}

func TestCreateRedrawsOnUniqueViolation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ids := []string{"fixed", "fixed", "other"}
	next := 0
	s := openSQLite(t, filepath.Join(t.TempDir(), "catalog.db"), "services", clock.WallClock)
	s.newID = func() string {
		id := ids[next]
		next++
		return id
	}

	first, err := s.Create(ctx, storetest.Offering("Banho", "d", 1))
	require.NoError(t, err)
	second, err := s.Create(ctx, storetest.Offering("Tosa", "d", 2))
	require.NoError(t, err)

	assert.Equal(t, "fixed", first.ID())
	assert.Equal(t, "other", second.ID())
}

func TestUndecodableRowIsStoreError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openSQLite(t, filepath.Join(t.TempDir(), "catalog.db"), "services", clock.WallClock)
	_, err := s.DB().Exec(
		`INSERT INTO records (collection, id, fields, created_at) VALUES ('services', 'x', '{"nested":{}}', '')`)
	require.NoError(t, err)

	_, err = s.ListAll(ctx)
	assert.ErrorIs(t, err, store.ErrStore)

	_, _, err = s.GetByID(ctx, "x")
	assert.ErrorIs(t, err, store.ErrStore)

	err = s.Update(ctx, "x", storetest.Offering("a", "b", 1))
	assert.ErrorIs(t, err, store.ErrStore)
}

func TestStoredFieldsKeepTheirKinds(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openSQLite(t, filepath.Join(t.TempDir(), "catalog.db"), "services", clock.WallClock)
	_, err := s.DB().Exec(`INSERT INTO records (collection, id, fields, created_at) VALUES ('services', 'x', ?, '')`,
		`{"id":"x","note":"2025-04-01 12:00:00.000000","value":100,"created_at":{"time":"2025-04-01 12:00:00.000000"}}`)
	require.NoError(t, err)

	got, found, err := s.GetByID(ctx, "x")
	require.NoError(t, err)
	require.True(t, found)

	note, _ := got.Get("note")
	assert.Equal(t, domain.KindString, note.Kind())
	value, _ := got.Get("value")
	assert.Equal(t, domain.KindNumber, value.Kind())
	createdAt, ok := got.CreatedAt()
	require.True(t, ok)
	assert.Equal(t, 2025, createdAt.Year())
}

func TestMigrateIsIdempotent(t *testing.T) {
	t.Parallel()

	s := openSQLite(t, filepath.Join(t.TempDir(), "catalog.db"), "services", clock.WallClock)
	assert.NoError(t, Migrate(context.Background(), s.DB(), SQLite, nil))
}

func TestOpenRequiresCollection(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), SQLiteDSN(filepath.Join(t.TempDir(), "x.db")), Config{Dialect: SQLite})
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	t.Parallel()

	q := `UPDATE records SET fields = ? WHERE collection = ? AND id = ?`
	assert.Equal(t, q, SQLite.rebind(q))
	assert.Equal(t, `UPDATE records SET fields = $1 WHERE collection = $2 AND id = $3`, Postgres.rebind(q))
}

func TestDialectByName(t *testing.T) {
	t.Parallel()

	d, err := DialectByName("postgres")
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	_, err = DialectByName("mysql")
	assert.Error(t, err)
}
