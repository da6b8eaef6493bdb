package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// New opens a pool for the given driver ("pgx" or "sqlite3") and checks it
// is reachable.
func New(driver, connStr string) (*sql.DB, error) {
	if _, err := DialectFor(driver); err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if driver == "sqlite3" {
		// SQLite serializes writers; a single connection also keeps
		// in-memory databases alive for the lifetime of the pool.
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)

		return db, nil
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}
