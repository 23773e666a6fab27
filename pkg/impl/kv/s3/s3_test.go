package s3

import (
	"context"
	"testing"

	"github.com/adammck/ixstore/pkg/testdeps"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (context.Context, *Store) {
	ctx := context.Background()
	env := testdeps.New(ctx, t, testdeps.WithMinio())

	s := New(env.S3Bucket)
	err := s.Ping(ctx)
	require.NoError(t, err)

	return ctx, s
}

func TestPutGet(t *testing.T) {
	ctx, s := setup(t)

	err := s.Put(ctx, "index_store/data", "k1", []byte("v1"))
	require.NoError(t, err)

	val, ok, err := s.Get(ctx, "index_store/data", "k1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v1"), val)
}

func TestGetMissing(t *testing.T) {
	ctx, s := setup(t)

	_, ok, err := s.Get(ctx, "index_store/data", "nope")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestOverwrite(t *testing.T) {
	ctx, s := setup(t)

	err := s.Put(ctx, "c1", "k1", []byte("old"))
	require.NoError(t, err)
	err = s.Put(ctx, "c1", "k1", []byte("new"))
	require.NoError(t, err)

	val, ok, err := s.Get(ctx, "c1", "k1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("new"), val)
}

func TestDelete(t *testing.T) {
	ctx, s := setup(t)

	err := s.Put(ctx, "c1", "k1", []byte("v1"))
	require.NoError(t, err)

	deleted, err := s.Delete(ctx, "c1", "k1")
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = s.Delete(ctx, "c1", "k1")
	require.NoError(t, err)
	require.False(t, deleted)

	_, ok, err := s.Get(ctx, "c1", "k1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGetAll(t *testing.T) {
	ctx, s := setup(t)

	err := s.Put(ctx, "c1", "k1", []byte("v1"))
	require.NoError(t, err)
	err = s.Put(ctx, "c1", "k2", []byte("v2"))
	require.NoError(t, err)
	err = s.Put(ctx, "c2", "other", []byte("v3"))
	require.NoError(t, err)

	all, err := s.GetAll(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, map[string][]byte{
		"k1": []byte("v1"),
		"k2": []byte("v2"),
	}, all)

	all, err = s.GetAll(ctx, "empty")
	require.NoError(t, err)
	require.Empty(t, all)
}
