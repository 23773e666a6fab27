// Package bolt provides a KVStore backed by a local bbolt file, with one
// bucket per collection. This is the embedded zero-dependency backend; use it
// when the index and its consumers share a single process.
package bolt

import (
	"context"
	"fmt"
	"time"

	"github.com/adammck/ixstore/pkg/api"
	bbolt "go.etcd.io/bbolt"
)

const openTimeout = 10 * time.Second

type Store struct {
	db *bbolt.DB
}

var _ api.KVStore = (*Store)(nil) // Type check: implements interface

// Open opens the database at path, creating it if it doesn't exist.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("bbolt.Open: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, collection, key string) ([]byte, bool, error) {
	var val []byte
	var ok bool

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(collection))
		if b == nil {
			return nil
		}

		v := b.Get([]byte(key))
		if v == nil {
			return nil
		}

		// v is only valid inside the transaction.
		val = make([]byte, len(v))
		copy(val, v)
		ok = true
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("View: %w", err)
	}

	return val, ok, nil
}

func (s *Store) Put(ctx context.Context, collection, key string, value []byte) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(collection))
		if err != nil {
			return fmt.Errorf("CreateBucketIfNotExists: %w", err)
		}

		return b.Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, collection, key string) (bool, error) {
	var deleted bool

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(collection))
		if b == nil {
			return nil
		}

		if b.Get([]byte(key)) == nil {
			return nil
		}

		deleted = true
		return b.Delete([]byte(key))
	})
	if err != nil {
		return false, fmt.Errorf("Update: %w", err)
	}

	return deleted, nil
}

func (s *Store) GetAll(ctx context.Context, collection string) (map[string][]byte, error) {
	out := map[string][]byte{}

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(collection))
		if b == nil {
			return nil
		}

		return b.ForEach(func(k, v []byte) error {
			val := make([]byte, len(v))
			copy(val, v)
			out[string(k)] = val
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("View: %w", err)
	}

	return out, nil
}
