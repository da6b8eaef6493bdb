package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// schema is written for SQLite and translated for PostgreSQL by schemaFor.
const schema = `
CREATE TABLE IF NOT EXISTS organizations (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	address    TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS organization_members (
	organization_id BIGINT NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
	user_id         BIGINT NOT NULL,
	role            TEXT NOT NULL,
	created_at      TIMESTAMP NOT NULL,
	PRIMARY KEY (organization_id, user_id, role)
);

CREATE INDEX IF NOT EXISTS idx_organization_members_user
	ON organization_members(user_id);

CREATE TABLE IF NOT EXISTS tasks (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	title           TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	deadline_date   DATE NOT NULL,
	task_status     TEXT NOT NULL,
	budget          BIGINT NOT NULL CHECK (budget >= 0),
	approved_budget BIGINT NOT NULL DEFAULT 0 CHECK (approved_budget >= 0),
	organization_id BIGINT NOT NULL REFERENCES organizations(id),
	created_at      TIMESTAMP NOT NULL,
	updated_at      TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_organization_created
	ON tasks(organization_id, created_at);

CREATE TABLE IF NOT EXISTS transactions (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	task_id            BIGINT NOT NULL REFERENCES tasks(id),
	current_budget     BIGINT NOT NULL,
	transaction_budget BIGINT NOT NULL,
	created_at         TIMESTAMP NOT NULL,
	updated_at         TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_task_created
	ON transactions(task_id, created_at);
`

func schemaFor(d Dialect) []string {
	ddl := schema
	if d == Postgres {
		ddl = strings.NewReplacer(
			"INTEGER PRIMARY KEY AUTOINCREMENT", "BIGSERIAL PRIMARY KEY",
			"TIMESTAMP", "TIMESTAMPTZ",
		).Replace(ddl)
	}

	var stmts []string

	for _, stmt := range strings.Split(ddl, ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			stmts = append(stmts, s)
		}
	}

	return stmts
}

// Migrate creates the ledger tables when they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) error {
	for _, stmt := range schemaFor(d) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}

	return nil
}
