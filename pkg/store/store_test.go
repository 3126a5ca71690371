package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmax-ai/docgraph/pkg/blob/blobtest"
)

func TestNewStore_CreatesSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "docgraph.db")

	store, err := NewStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	assert.FileExists(t, dbPath)

	var tableName string
	err = store.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='blobs'").Scan(&tableName)
	require.NoError(t, err)
	assert.Equal(t, "blobs", tableName)
}

func TestStore_BlobContract(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "docgraph.db"))
	require.NoError(t, err)
	defer store.Close()

	blobtest.RunBlobStoreTests(t, store)
}

func TestStore_ReopenKeepsArtifact(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "docgraph.db")

	first, err := NewStore(dbPath)
	require.NoError(t, err)
	blobtest.RunBlobStoreTests(t, first)
	require.NoError(t, first.Close())

	second, err := NewStore(dbPath)
	require.NoError(t, err)
	defer second.Close()

	keys, err := second.List(t.Context(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"archive/two.json", "knowledge-graph.json"}, keys)
}
