package blob_test

import (
	"testing"

	"github.com/rmax-ai/docgraph/pkg/blob"
	"github.com/rmax-ai/docgraph/pkg/blob/blobtest"
)

func TestLocalBlobStore_Contract(t *testing.T) {
	blobtest.RunBlobStoreTests(t, blob.NewLocalBlobStore(t.TempDir()))
}
