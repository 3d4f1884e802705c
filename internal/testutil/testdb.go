package testutil

import (
	"database/sql"
	"testing"

	"github.com/Butros55/studysync-ai-study-c-sub002/internal/db"
	"github.com/Butros55/studysync-ai-study-c-sub002/internal/store"
)

// NewTestDB creates an in-memory SQLite database with all migrations
// applied. The database is closed when the test completes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// NewTestStore creates a KeyedDocumentStore backed by an in-memory SQLite
// database.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	return store.NewSQLiteStore(NewTestDB(t))
}
