package indexstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/adammck/ixstore/pkg/api"
	"github.com/adammck/ixstore/pkg/impl/kv/memory"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (context.Context, *memory.Store, *Store) {
	ctx := context.Background()
	kv := memory.New()
	store := New(kv)
	return ctx, kv, store
}

func TestAddAndGet(t *testing.T) {
	ctx, _, store := setup(t)
	is := &api.IndexStruct{
		ID:      "idx1",
		Type:    "vector",
		Summary: "embeddings over corpus a",
		Data:    json.RawMessage(`{"nodes":["n1","n2"]}`),
	}

	err := store.AddIndexStruct(ctx, is)
	require.NoError(t, err)

	got, err := store.GetIndexStruct(ctx, "idx1")
	require.NoError(t, err)
	require.Equal(t, is, got)
}

func TestGetMissing(t *testing.T) {
	ctx, _, store := setup(t)

	_, err := store.GetIndexStruct(ctx, "nope")
	require.Error(t, err)
	require.ErrorIs(t, err, &api.IndexStructNotFound{})

	var nf *api.IndexStructNotFound
	require.True(t, errors.As(err, &nf))
	require.Equal(t, "nope", nf.ID)
}

func TestAddOverwrites(t *testing.T) {
	ctx, _, store := setup(t)

	err := store.AddIndexStruct(ctx, &api.IndexStruct{ID: "idx1", Type: "list"})
	require.NoError(t, err)

	err = store.AddIndexStruct(ctx, &api.IndexStruct{ID: "idx1", Type: "vector"})
	require.NoError(t, err)

	got, err := store.GetIndexStruct(ctx, "idx1")
	require.NoError(t, err)
	require.Equal(t, "vector", got.Type)

	it, err := store.IndexStructs(ctx)
	require.NoError(t, err)
	defer it.Close()

	n := 0
	for it.Next(ctx) {
		n++
	}
	require.NoError(t, it.Err())
	require.Equal(t, 1, n)
}

func TestAddEmptyID(t *testing.T) {
	ctx, _, store := setup(t)

	err := store.AddIndexStruct(ctx, &api.IndexStruct{Type: "vector"})
	require.Error(t, err)
}

func TestAddInvalidPayload(t *testing.T) {
	ctx, _, store := setup(t)

	// RawMessage which is not valid JSON fails to encode.
	err := store.AddIndexStruct(ctx, &api.IndexStruct{
		ID:   "idx1",
		Type: "vector",
		Data: json.RawMessage(`{nope`),
	})
	require.Error(t, err)
	require.ErrorIs(t, err, &api.SerializationError{})
}

func TestDelete(t *testing.T) {
	ctx, _, store := setup(t)

	err := store.AddIndexStruct(ctx, &api.IndexStruct{ID: "idx1", Type: "vector"})
	require.NoError(t, err)

	err = store.DeleteIndexStruct(ctx, "idx1")
	require.NoError(t, err)

	_, err = store.GetIndexStruct(ctx, "idx1")
	require.ErrorIs(t, err, &api.IndexStructNotFound{})

	// deleting again is a no-op
	err = store.DeleteIndexStruct(ctx, "idx1")
	require.NoError(t, err)
}

func TestIndexStructs(t *testing.T) {
	ctx, _, store := setup(t)

	want := map[string]bool{}
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("idx%d", i)
		want[id] = true
		err := store.AddIndexStruct(ctx, &api.IndexStruct{ID: id, Type: "list"})
		require.NoError(t, err)
	}

	it, err := store.IndexStructs(ctx)
	require.NoError(t, err)
	defer it.Close()

	got := map[string]bool{}
	for it.Next(ctx) {
		got[it.Struct().ID] = true
	}
	require.NoError(t, it.Err())
	require.Equal(t, want, got)
}

func TestIndexStructsEmpty(t *testing.T) {
	ctx, _, store := setup(t)

	it, err := store.IndexStructs(ctx)
	require.NoError(t, err)
	defer it.Close()

	require.False(t, it.Next(ctx))
	require.NoError(t, it.Err())
}

func TestIndexStructsRestartable(t *testing.T) {
	ctx, _, store := setup(t)

	err := store.AddIndexStruct(ctx, &api.IndexStruct{ID: "idx1", Type: "vector"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		it, err := store.IndexStructs(ctx)
		require.NoError(t, err)

		require.True(t, it.Next(ctx))
		require.Equal(t, "idx1", it.Struct().ID)
		require.False(t, it.Next(ctx))
		require.NoError(t, it.Err())
		require.NoError(t, it.Close())
	}
}

func TestIndexStructsDecodeError(t *testing.T) {
	ctx, kv, store := setup(t)

	err := kv.Put(ctx, api.DefaultCollection, "bad", []byte("not json"))
	require.NoError(t, err)

	it, err := store.IndexStructs(ctx)
	require.NoError(t, err)
	defer it.Close()

	require.False(t, it.Next(ctx))
	require.ErrorIs(t, it.Err(), &api.SerializationError{})
}

func TestGetCorruptRecord(t *testing.T) {
	ctx, kv, store := setup(t)

	err := kv.Put(ctx, api.DefaultCollection, "idx1", []byte("{"))
	require.NoError(t, err)

	_, err = store.GetIndexStruct(ctx, "idx1")
	require.Error(t, err)
	require.ErrorIs(t, err, &api.SerializationError{})
	require.False(t, errors.Is(err, &api.IndexStructNotFound{}))
}

func TestCustomCollection(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	a := NewWithCollection(kv, "index_store/a")
	b := NewWithCollection(kv, "index_store/b")

	err := a.AddIndexStruct(ctx, &api.IndexStruct{ID: "idx1", Type: "vector"})
	require.NoError(t, err)

	_, err = b.GetIndexStruct(ctx, "idx1")
	require.ErrorIs(t, err, &api.IndexStructNotFound{})
}

func TestEnvelopeFormat(t *testing.T) {
	ctx, kv, store := setup(t)

	err := store.AddIndexStruct(ctx, &api.IndexStruct{
		ID:   "idx1",
		Type: "vector",
		Data: json.RawMessage(`{"k":1}`),
	})
	require.NoError(t, err)

	raw, ok, err := kv.Get(ctx, api.DefaultCollection, "idx1")
	require.NoError(t, err)
	require.True(t, ok)

	var env map[string]json.RawMessage
	err = json.Unmarshal(raw, &env)
	require.NoError(t, err)
	require.Contains(t, env, "__type__")
	require.Contains(t, env, "__data__")
}
