// Package sqlite provides a KVStore backed by an embedded SQLite database,
// with all collections sharing one two-column-keyed table. Use it when the
// index should live next to other relational data in a single file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/adammck/ixstore/pkg/api"
	_ "modernc.org/sqlite"
)

const tableName = "kv"

type Store struct {
	db *sql.DB
}

var _ api.KVStore = (*Store)(nil) // Type check: implements interface

// Open opens the database at path, creating it (and the kv table) if it
// doesn't exist. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) init() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("Exec: %w", err)
		}
	}

	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			collection TEXT NOT NULL,
			key        TEXT NOT NULL,
			value      BLOB NOT NULL,
			PRIMARY KEY (collection, key)
		)`, tableName)
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("Exec: %w", err)
	}

	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, collection, key string) ([]byte, bool, error) {
	var val []byte

	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT value FROM %s WHERE collection = ? AND key = ?", tableName),
		collection, key).Scan(&val)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("QueryRow: %w", err)
	}

	return val, true, nil
}

func (s *Store) Put(ctx context.Context, collection, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf("INSERT OR REPLACE INTO %s (collection, key, value) VALUES (?, ?, ?)", tableName),
		collection, key, value)
	if err != nil {
		return fmt.Errorf("Exec: %w", err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, collection, key string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE collection = ? AND key = ?", tableName),
		collection, key)
	if err != nil {
		return false, fmt.Errorf("Exec: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("RowsAffected: %w", err)
	}

	return n > 0, nil
}

func (s *Store) GetAll(ctx context.Context, collection string) (map[string][]byte, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT key, value FROM %s WHERE collection = ?", tableName),
		collection)
	if err != nil {
		return nil, fmt.Errorf("Query: %w", err)
	}
	defer rows.Close()

	out := map[string][]byte{}
	for rows.Next() {
		var key string
		var val []byte
		if err := rows.Scan(&key, &val); err != nil {
			return nil, fmt.Errorf("Scan: %w", err)
		}
		out[key] = val
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Rows: %w", err)
	}

	return out, nil
}
