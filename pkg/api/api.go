// This package contains only interfaces and shared types to be used by other
// packages. The implementations of these should be in pkg/impl/whatever. To
// avoid circular deps, this package should import nothing from pkg.
package api

import (
	"context"
	"encoding/json"
)

// DefaultCollection is the namespace under which index structs are stored
// unless the caller overrides it.
const DefaultCollection = "index_store/data"

// IndexStruct is the metadata record describing a built index. The payload is
// opaque to the store; only ID and Type are interpreted.
type IndexStruct struct {

	// ID uniquely identifies the struct within its collection. Writing a
	// struct with an existing ID overwrites the previous record.
	ID string

	// Type tags the kind of index this struct describes, e.g. "vector" or
	// "list". It round-trips through storage unchanged.
	Type string

	// Summary is an optional human-readable description.
	Summary string

	// Data is the serialized index payload. May be nil.
	Data json.RawMessage
}

// KVStore is the backend capability consumed by the index store: namespaced
// get/put/delete/list-all over byte values. Implementations must treat
// collections as independent namespaces.
type KVStore interface {

	// Get retrieves the value stored under key in collection. The second
	// return distinguishes a missing key from an empty value.
	Get(ctx context.Context, collection, key string) ([]byte, bool, error)

	// Put stores value under key in collection, overwriting any existing
	// value.
	Put(ctx context.Context, collection, key string, value []byte) error

	// Delete removes the value stored under key in collection. Returns
	// whether a value was removed; deleting a missing key is not an error.
	Delete(ctx context.Context, collection, key string) (bool, error)

	// GetAll retrieves every key and value in collection. Enumeration order
	// is backend-defined.
	GetAll(ctx context.Context, collection string) (map[string][]byte, error)
}
