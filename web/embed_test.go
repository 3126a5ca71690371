package web

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssets(t *testing.T) {
	fsys, err := Assets()
	require.NoError(t, err)

	index, err := fs.ReadFile(fsys, "index.html")
	require.NoError(t, err)
	assert.Contains(t, string(index), "/app.js")

	_, err = fs.Stat(fsys, "app.js")
	assert.NoError(t, err)
}
