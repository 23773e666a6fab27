// Package memory provides a map-backed KVStore, for tests and for callers
// that want an ephemeral store.
package memory

import (
	"context"
	"sync"

	"github.com/adammck/ixstore/pkg/api"
)

type Store struct {
	mu sync.Mutex

	// Contents is exported so tests can inspect and prepare state directly.
	// Hold no references across calls.
	Contents map[string]map[string][]byte
}

var _ api.KVStore = (*Store)(nil) // Type check: implements interface

func New() *Store {
	return &Store{
		Contents: make(map[string]map[string][]byte),
	}
}

func (s *Store) Get(ctx context.Context, collection, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	val, ok := s.Contents[collection][key]
	if !ok {
		return nil, false, nil
	}

	out := make([]byte, len(val))
	copy(out, val)
	return out, true, nil
}

func (s *Store) Put(ctx context.Context, collection, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.Contents[collection]
	if !ok {
		c = make(map[string][]byte)
		s.Contents[collection] = c
	}

	val := make([]byte, len(value))
	copy(val, value)
	c[key] = val

	return nil
}

func (s *Store) Delete(ctx context.Context, collection, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.Contents[collection]
	if !ok {
		return false, nil
	}

	_, ok = c[key]
	delete(c, key)
	return ok, nil
}

func (s *Store) GetAll(ctx context.Context, collection string) (map[string][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string][]byte, len(s.Contents[collection]))
	for k, v := range s.Contents[collection] {
		val := make([]byte, len(v))
		copy(val, v)
		out[k] = val
	}

	return out, nil
}
