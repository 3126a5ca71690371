// Package blobtest holds the behavioral contract every blob.BlobStore backend
// must satisfy.
package blobtest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmax-ai/docgraph/pkg/blob"
)

// RunBlobStoreTests exercises store against the BlobStore contract. The store
// must start empty.
func RunBlobStoreTests(t *testing.T, store blob.BlobStore) {
	ctx := context.Background()

	t.Run("Get missing", func(t *testing.T) {
		_, err := store.Get(ctx, "missing.json")
		assert.ErrorIs(t, err, blob.ErrNotFound)
	})

	t.Run("Put and Get", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "knowledge-graph.json", strings.NewReader(`{"n":[],"e":[]}`)))
		data, err := blob.ReadAll(ctx, store, "knowledge-graph.json")
		require.NoError(t, err)
		assert.Equal(t, `{"n":[],"e":[]}`, string(data))
	})

	t.Run("Put overwrites", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "knowledge-graph.json", strings.NewReader(`{"n":[["a","A"]],"e":[]}`)))
		data, err := blob.ReadAll(ctx, store, "knowledge-graph.json")
		require.NoError(t, err)
		assert.Equal(t, `{"n":[["a","A"]],"e":[]}`, string(data))
	})

	t.Run("List by prefix", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "archive/one.json", strings.NewReader("1")))
		require.NoError(t, store.Put(ctx, "archive/two.json", strings.NewReader("2")))

		keys, err := store.List(ctx, "archive/")
		require.NoError(t, err)
		assert.Equal(t, []string{"archive/one.json", "archive/two.json"}, keys)

		all, err := store.List(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "archive/one.json"))
		_, err := store.Get(ctx, "archive/one.json")
		assert.ErrorIs(t, err, blob.ErrNotFound)
		assert.ErrorIs(t, store.Delete(ctx, "archive/one.json"), blob.ErrNotFound)

		keys, err := store.List(ctx, "archive/")
		require.NoError(t, err)
		assert.Equal(t, []string{"archive/two.json"}, keys)
	})
}
