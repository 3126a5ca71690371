package redis

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmax-ai/docgraph/pkg/blob/blobtest"
)

func newTestStore(t *testing.T) (*RedisBlobStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisBlobStore(client), mr
}

func TestRedisBlobStore_Contract(t *testing.T) {
	store, _ := newTestStore(t)
	blobtest.RunBlobStoreTests(t, store)
}

func TestRedisBlobStore_KeyLayout(t *testing.T) {
	store, mr := newTestStore(t)

	require.NoError(t, store.Put(context.Background(), "knowledge-graph.json", strings.NewReader(`{"n":[],"e":[]}`)))

	got, err := mr.Get("docgraph:blob:knowledge-graph.json")
	require.NoError(t, err)
	assert.Equal(t, `{"n":[],"e":[]}`, got)

	members, err := mr.SMembers("docgraph:blobs")
	require.NoError(t, err)
	assert.Equal(t, []string{"knowledge-graph.json"}, members)
}

func TestRedisBlobStore_ServerDown(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	_, err := store.Get(context.Background(), "knowledge-graph.json")
	assert.Error(t, err)
	assert.NotContains(t, err.Error(), "blob not found")
}
