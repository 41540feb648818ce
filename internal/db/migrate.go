package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Statements are idempotent; the
// whole list re-runs on every open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS clients (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		tax_id     TEXT NOT NULL DEFAULT '',
		address    TEXT NOT NULL DEFAULT '',
		phone      TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_clients_name ON clients(name)`,

	// Tax identifiers are unique when present; walk-in clients without
	// one are still allowed.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_clients_tax_id ON clients(tax_id) WHERE tax_id != ''`,

	// Added after the initial release.
	`ALTER TABLE clients ADD COLUMN email TEXT NOT NULL DEFAULT ''`,

	// Single-row table holding the issuing business identity used to
	// pre-fill new drafts.
	`CREATE TABLE IF NOT EXISTS issuer_profile (
		id         INTEGER PRIMARY KEY CHECK (id = 1),
		name       TEXT NOT NULL DEFAULT '',
		tax_id     TEXT NOT NULL DEFAULT '',
		address    TEXT NOT NULL DEFAULT '',
		logo_ref   TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL
	)`,
}
