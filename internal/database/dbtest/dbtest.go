// Package dbtest opens throwaway in-memory SQLite databases with the ledger
// schema applied, for store and end-to-end tests.
package dbtest

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/smartcity/internal/database"
)

func New(t testing.TB) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())

	db, err := database.New("sqlite3", dsn)
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(context.Background(), db, database.SQLite))

	return db
}

// Seed runs raw statements, for fixtures the stores under test do not own.
func Seed(t testing.TB, db *sql.DB, stmts ...string) {
	t.Helper()

	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
}
