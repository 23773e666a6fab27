package api

import (
	"fmt"
)

// IndexStructNotFound is returned by IndexStore implementations when the
// given ID is not found.
type IndexStructNotFound struct {
	ID string
}

func (e *IndexStructNotFound) Error() string {
	return fmt.Sprintf("index struct not found: %s", e.ID)
}

func (e *IndexStructNotFound) Is(err error) bool {
	_, ok := err.(*IndexStructNotFound)
	return ok
}

// SerializationError is returned when an index struct cannot be encoded for
// storage, or a stored record cannot be decoded. It is distinct from backend
// I/O errors, which propagate unchanged.
type SerializationError struct {
	ID    string
	Cause error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialization failed for %s: %v", e.ID, e.Cause)
}

func (e *SerializationError) Is(err error) bool {
	_, ok := err.(*SerializationError)
	return ok
}

func (e *SerializationError) Unwrap() error {
	return e.Cause
}
