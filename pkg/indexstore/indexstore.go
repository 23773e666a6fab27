// Package indexstore persists index structs on top of any api.KVStore. The
// store owns the serialization format; the backend owns physical persistence.
package indexstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/adammck/ixstore/pkg/api"
)

type Store struct {
	kv         api.KVStore
	collection string
}

var _ api.IndexStore = (*Store)(nil) // Type check: implements interface

// New returns a store over kv using the default collection.
func New(kv api.KVStore) *Store {
	return NewWithCollection(kv, api.DefaultCollection)
}

// NewWithCollection returns a store over kv using the given collection as its
// namespace. Two stores sharing a backend but using different collections are
// fully independent.
func NewWithCollection(kv api.KVStore, collection string) *Store {
	return &Store{
		kv:         kv,
		collection: collection,
	}
}

// envelope is the persisted representation of an index struct. The type tag
// is kept outside the record so readers can dispatch on it without decoding
// the payload.
type envelope struct {
	Type string          `json:"__type__"`
	Data json.RawMessage `json:"__data__"`
}

type record struct {
	ID      string          `json:"index_id"`
	Summary string          `json:"summary,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (s *Store) AddIndexStruct(ctx context.Context, is *api.IndexStruct) error {
	if is.ID == "" {
		return fmt.Errorf("index struct has empty ID")
	}

	val, err := encode(is)
	if err != nil {
		return &api.SerializationError{ID: is.ID, Cause: err}
	}

	err = s.kv.Put(ctx, s.collection, is.ID, val)
	if err != nil {
		return fmt.Errorf("Put: %w", err)
	}

	return nil
}

func (s *Store) GetIndexStruct(ctx context.Context, id string) (*api.IndexStruct, error) {
	val, ok, err := s.kv.Get(ctx, s.collection, id)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	if !ok {
		return nil, &api.IndexStructNotFound{ID: id}
	}

	is, err := decode(val)
	if err != nil {
		return nil, &api.SerializationError{ID: id, Cause: err}
	}

	return is, nil
}

func (s *Store) DeleteIndexStruct(ctx context.Context, id string) error {
	// The backend reports whether anything was removed, but deleting a
	// missing ID is not an error here.
	_, err := s.kv.Delete(ctx, s.collection, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}

	return nil
}

func (s *Store) IndexStructs(ctx context.Context) (api.StructIterator, error) {
	vals, err := s.kv.GetAll(ctx, s.collection)
	if err != nil {
		return nil, fmt.Errorf("GetAll: %w", err)
	}

	entries := make([]entry, 0, len(vals))
	for k, v := range vals {
		entries = append(entries, entry{key: k, val: v})
	}

	return &structIterator{entries: entries}, nil
}

func encode(is *api.IndexStruct) ([]byte, error) {
	data, err := json.Marshal(record{
		ID:      is.ID,
		Summary: is.Summary,
		Data:    is.Data,
	})
	if err != nil {
		return nil, err
	}

	return json.Marshal(envelope{
		Type: is.Type,
		Data: data,
	})
}

func decode(val []byte) (*api.IndexStruct, error) {
	var env envelope
	if err := json.Unmarshal(val, &env); err != nil {
		return nil, err
	}

	var rec record
	if err := json.Unmarshal(env.Data, &rec); err != nil {
		return nil, err
	}

	return &api.IndexStruct{
		ID:      rec.ID,
		Type:    env.Type,
		Summary: rec.Summary,
		Data:    rec.Data,
	}, nil
}
