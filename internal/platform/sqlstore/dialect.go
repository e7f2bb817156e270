package sqlstore

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/petcare/catalog-api/internal/domain"
	"github.com/pressly/goose/v3"

	// database/sql drivers
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect captures what differs between the supported databases.
type Dialect struct {
	name          string
	driver        string
	goose         goose.Dialect
	migrationsDir string
	numbered      bool   // $1 placeholders instead of ?
	lockSuffix    string // appended to the read of a read-modify-write
	timeArg       func(time.Time) any
	isUnique      func(error) bool
}

// Supported dialects
var (
	SQLite = Dialect{
		name:          "sqlite",
		driver:        "sqlite",
		goose:         goose.DialectSQLite3,
		migrationsDir: "migrations/sqlite",
		timeArg: func(t time.Time) any {
			return t.UTC().Format(domain.TimestampLayout)
		},
		isUnique: func(err error) bool {
			return strings.Contains(err.Error(), "UNIQUE constraint failed")
		},
	}

	Postgres = Dialect{
		name:          "postgres",
		driver:        "pgx",
		goose:         goose.DialectPostgres,
		migrationsDir: "migrations/postgres",
		numbered:      true,
		lockSuffix:    " FOR UPDATE",
		timeArg: func(t time.Time) any {
			return t.UTC()
		},
		isUnique: func(err error) bool {
			var pgErr *pgconn.PgError
			return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
		},
	}
)

// uniqueViolationCode is the PostgreSQL error code for unique constraint violations
const uniqueViolationCode = "23505"

// DialectByName returns the dialect for "sqlite" or "postgres".
func DialectByName(name string) (Dialect, error) {
	switch name {
	case SQLite.name:
		return SQLite, nil
	case Postgres.name:
		return Postgres, nil
	default:
		return Dialect{}, fmt.Errorf("sqlstore: unknown dialect %q", name)
	}
}

// Name returns the dialect name.
func (d Dialect) Name() string {
	return d.name
}

// rebind rewrites ? placeholders for dialects that number them.
func (d Dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
