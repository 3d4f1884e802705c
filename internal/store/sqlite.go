package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Butros55/studysync-ai-study-c-sub002/internal/db"
)

// SQLiteStore implements KeyedDocumentStore on a single records table.
type SQLiteStore struct {
	db db.DBTX
}

// NewSQLiteStore creates a KeyedDocumentStore backed by the given connection.
func NewSQLiteStore(conn db.DBTX) *SQLiteStore {
	return &SQLiteStore{db: conn}
}

func (s *SQLiteStore) Get(ctx context.Context, collection, key string, out any) error {
	row := s.db.QueryRowContext(ctx,
		`SELECT value FROM records WHERE collection = ? AND key = ?`, collection, key)

	var raw string
	if err := row.Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("%s/%s: %w", collection, key, ErrNotFound)
		}
		return fmt.Errorf("scanning record %s/%s: %w", collection, key, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("decoding record %s/%s: %w", collection, key, err)
	}
	return nil
}

func (s *SQLiteStore) Set(ctx context.Context, collection, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding record %s/%s: %w", collection, key, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO records (collection, key, value, updated_at) VALUES (?, ?, ?, ?)`,
		collection, key, string(raw), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("writing record %s/%s: %w", collection, key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, collection, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE collection = ? AND key = ?`, collection, key)
	if err != nil {
		return fmt.Errorf("deleting record %s/%s: %w", collection, key, err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, collection string, each func(key string, raw []byte) error) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM records WHERE collection = ? ORDER BY key`, collection)
	if err != nil {
		return fmt.Errorf("listing collection %s: %w", collection, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return fmt.Errorf("scanning collection %s: %w", collection, err)
		}
		if err := each(key, []byte(raw)); err != nil {
			return err
		}
	}
	return rows.Err()
}
