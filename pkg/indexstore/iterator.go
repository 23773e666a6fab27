package indexstore

import (
	"context"

	"github.com/adammck/ixstore/pkg/api"
)

type entry struct {
	key string
	val []byte
}

// structIterator walks a snapshot of the collection, decoding records as the
// caller advances. A decode failure stops iteration and is reported via Err.
type structIterator struct {
	entries []entry
	pos     int
	current *api.IndexStruct
	err     error
	closed  bool
}

var _ api.StructIterator = (*structIterator)(nil)

func (it *structIterator) Next(ctx context.Context) bool {
	if it.closed || it.err != nil {
		return false
	}

	if err := ctx.Err(); err != nil {
		it.err = err
		return false
	}

	if it.pos >= len(it.entries) {
		return false
	}

	e := it.entries[it.pos]
	it.pos++

	is, err := decode(e.val)
	if err != nil {
		it.err = &api.SerializationError{ID: e.key, Cause: err}
		return false
	}

	it.current = is
	return true
}

func (it *structIterator) Struct() *api.IndexStruct {
	return it.current
}

func (it *structIterator) Err() error {
	return it.err
}

func (it *structIterator) Close() error {
	it.closed = true
	return nil
}
