package db

import (
	"database/sql"
	"fmt"
)

// migrations are idempotent schema statements. The store keeps whole JSON
// documents keyed by (collection, key), so the schema is a single table
// plus an index for collection scans.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS records (
		collection  TEXT NOT NULL,
		key         TEXT NOT NULL,
		value       TEXT NOT NULL,
		updated_at  TEXT NOT NULL,
		PRIMARY KEY (collection, key)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_records_collection ON records(collection)`,
}

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
