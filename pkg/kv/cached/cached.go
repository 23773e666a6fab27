// Package cached provides a read-through KVStore decorator with a TTL'd LRU
// over point reads. Listing always goes to the backend. The index store never
// caches on its own; wrap the backend with this when the caller decides stale
// reads within the TTL are acceptable.
package cached

import (
	"context"
	"fmt"
	"time"

	"github.com/adammck/ixstore/pkg/api"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jonboulle/clockwork"
)

type cacheEntry struct {
	val    []byte
	expiry time.Time
}

type Store struct {
	inner api.KVStore
	cache *lru.Cache[string, cacheEntry]
	ttl   time.Duration
	clock clockwork.Clock
}

var _ api.KVStore = (*Store)(nil) // Type check: implements interface

func New(inner api.KVStore, size int, ttl time.Duration, clock clockwork.Clock) (*Store, error) {
	cache, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, fmt.Errorf("lru.New: %w", err)
	}

	return &Store{
		inner: inner,
		cache: cache,
		ttl:   ttl,
		clock: clock,
	}, nil
}

func (s *Store) Get(ctx context.Context, collection, key string) ([]byte, bool, error) {
	ck := cacheKey(collection, key)

	if e, ok := s.cache.Get(ck); ok {
		if s.clock.Now().Before(e.expiry) {
			return e.val, true, nil
		}
		s.cache.Remove(ck)
	}

	val, ok, err := s.inner.Get(ctx, collection, key)
	if err != nil || !ok {
		return val, ok, err
	}

	s.cache.Add(ck, cacheEntry{
		val:    val,
		expiry: s.clock.Now().Add(s.ttl),
	})

	return val, true, nil
}

func (s *Store) Put(ctx context.Context, collection, key string, value []byte) error {
	err := s.inner.Put(ctx, collection, key, value)
	if err != nil {
		return err
	}

	s.cache.Add(cacheKey(collection, key), cacheEntry{
		val:    value,
		expiry: s.clock.Now().Add(s.ttl),
	})

	return nil
}

func (s *Store) Delete(ctx context.Context, collection, key string) (bool, error) {
	deleted, err := s.inner.Delete(ctx, collection, key)
	if err != nil {
		return false, err
	}

	s.cache.Remove(cacheKey(collection, key))
	return deleted, nil
}

// GetAll bypasses the cache; listing must see the backend's truth.
func (s *Store) GetAll(ctx context.Context, collection string) (map[string][]byte, error) {
	return s.inner.GetAll(ctx, collection)
}

func cacheKey(collection, key string) string {
	// NUL separator, since collections contain slashes.
	return collection + "\x00" + key
}
