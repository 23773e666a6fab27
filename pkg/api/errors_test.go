package api

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndexStructNotFound(t *testing.T) {
	err := &IndexStructNotFound{ID: "idx1"}

	require.Equal(t, "index struct not found: idx1", err.Error())

	require.True(t, errors.Is(err, &IndexStructNotFound{}))
	require.False(t, errors.Is(err, errors.New("other error")))
}

func TestSerializationError(t *testing.T) {
	cause := errors.New("bad json")
	err := &SerializationError{ID: "idx1", Cause: cause}

	require.Equal(t, "serialization failed for idx1: bad json", err.Error())

	require.True(t, errors.Is(err, &SerializationError{}))
	require.ErrorIs(t, err, cause)

	// Wrapping must be transparent so callers can still match.
	wrapped := fmt.Errorf("GetIndexStruct: %w", err)
	require.True(t, errors.Is(wrapped, &SerializationError{}))
}
