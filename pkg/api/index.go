package api

import "context"

// IndexStore persists index structs by ID on top of some storage medium.
// It's defined here so test doubles can implement it too.
type IndexStore interface {

	// AddIndexStruct stores the given struct under its ID.
	// If a struct with the same ID already exists, it will be overwritten.
	AddIndexStruct(ctx context.Context, is *IndexStruct) error

	// GetIndexStruct retrieves the struct with the given ID.
	// If no such struct exists, IndexStructNotFound is returned.
	GetIndexStruct(ctx context.Context, id string) (*IndexStruct, error)

	// DeleteIndexStruct deletes the struct with the given ID.
	// If no such struct exists, the call is a no-op.
	DeleteIndexStruct(ctx context.Context, id string) error

	// IndexStructs returns an iterator over every struct in the store. Each
	// call returns a fresh iterator; ordering is backend-defined and not
	// guaranteed stable between calls.
	IndexStructs(ctx context.Context) (StructIterator, error)
}

// StructIterator provides access to a sequence of index structs.
type StructIterator interface {
	// Next advances the iterator and returns true if a struct is available.
	Next(ctx context.Context) bool

	// Struct returns the current struct. Only valid after Next() returns true.
	Struct() *IndexStruct

	// Err returns any error encountered during iteration.
	Err() error

	// Close releases resources associated with the iterator.
	Close() error
}
