package database

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// Dialect adapts the stores' statement constants, which are written with
// '?' placeholders, to the driver in use.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "pgx":
		return Postgres, nil
	case "sqlite3":
		return SQLite, nil
	}

	return 0, fmt.Errorf("unsupported driver %q", driver)
}

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}

	return "sqlite"
}

// Rebind rewrites '?' placeholders as $1..$n for PostgreSQL. Statements
// must not contain '?' inside string literals.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}

	var (
		sb strings.Builder
		n  int
	)

	sb.Grow(len(query) + 8)

	for i := 0; i < len(query); i++ {
		if query[i] != '?' {
			sb.WriteByte(query[i])
			continue
		}

		n++

		sb.WriteByte('$')
		sb.WriteString(strconv.Itoa(n))
	}

	return sb.String()
}

// IsForeignKeyViolation reports whether err was raised by a foreign key
// constraint in either supported driver.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}

	return false
}
