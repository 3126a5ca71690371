package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmax-ai/docgraph/pkg/manifest"
)

func newBuilderWith(ids ...string) *Builder {
	b := NewBuilder(nil)
	for _, id := range ids {
		b.AddNode(&Node{ID: id, Title: id})
	}
	return b
}

func TestBuilder_DedupsOnTriple(t *testing.T) {
	b := newBuilderWith("a", "b")

	assert.True(t, b.AddEdge("a", "b", EdgeLink))
	assert.False(t, b.AddEdge("a", "b", EdgeLink))
	assert.True(t, b.AddEdge("a", "b", EdgeHierarchy), "same endpoints, different kind")
	assert.True(t, b.AddEdge("b", "a", EdgeLink), "reverse direction is distinct")

	seen := make(map[EdgeKey]int)
	for _, e := range b.Graph().Edges {
		seen[e.Key()]++
	}
	for k, n := range seen {
		assert.Equal(t, 1, n, "duplicate edge %v", k)
	}
	assert.Len(t, b.Graph().Edges, 3)
}

func TestBuilder_IsolatedSets(t *testing.T) {
	first := newBuilderWith("a", "b")
	second := newBuilderWith("a", "b")

	assert.True(t, first.AddEdge("a", "b", EdgeLink))
	assert.True(t, second.AddEdge("a", "b", EdgeLink), "builders must not share dedup state")
}

func TestBuilder_SharedSetIsExplicit(t *testing.T) {
	seen := NewEdgeSet()
	first := NewBuilder(seen)
	first.AddEdge("a", "b", EdgeLink)

	second := NewBuilder(first.Seen())
	assert.False(t, second.AddEdge("a", "b", EdgeLink))
}

func TestBuilder_KeepsDanglingTargets(t *testing.T) {
	b := newBuilderWith("a")
	assert.True(t, b.AddEdge("a", "missing", EdgeLink))
	assert.Len(t, b.Graph().Edges, 1)
}

func TestAddPathHierarchy(t *testing.T) {
	b := newBuilderWith("index", "intro", "a/index", "a/b/index", "a/b/c", "x/orphan")

	assert.False(t, b.AddPathHierarchy("intro"), "depth one has no parent")
	assert.False(t, b.AddPathHierarchy("index"))
	assert.True(t, b.AddPathHierarchy("a/index"))
	assert.True(t, b.AddPathHierarchy("a/b/index"))
	assert.True(t, b.AddPathHierarchy("a/b/c"))
	assert.False(t, b.AddPathHierarchy("x/orphan"), "x/index is not a node")
	assert.False(t, b.AddPathHierarchy("a/b/c"), "already emitted")

	assert.Equal(t, []*Edge{
		{Source: "index", Target: "a/index", Kind: EdgeHierarchy},
		{Source: "a/index", Target: "a/b/index", Kind: EdgeHierarchy},
		{Source: "a/b/index", Target: "a/b/c", Kind: EdgeHierarchy},
	}, b.Graph().Edges)
}

func TestAddManifestHierarchy_AutogeneratedDirectories(t *testing.T) {
	b := newBuilderWith("index", "intro", "guides/index", "guides/setup", "guides/deep/x", "ops/run")
	m := &manifest.Manifest{Groups: []manifest.Entry{
		{Dir: "guides"},
		{Dir: "ops"}, // no ops/index node
		{Dir: "."},
	}}

	added := b.AddManifestHierarchy(m)
	assert.Equal(t, 2, added)
	assert.Equal(t, []*Edge{
		{Source: "guides/index", Target: "guides/setup", Kind: EdgeHierarchy},
		{Source: "index", Target: "intro", Kind: EdgeHierarchy},
	}, b.Graph().Edges, "only direct children; nested and index documents are skipped")
}

func TestAddManifestHierarchy_ExplicitChildren(t *testing.T) {
	b := newBuilderWith("api/index", "api/auth", "api/users", "api/v2/x")
	m := &manifest.Manifest{Groups: []manifest.Entry{
		{Dir: "api", Children: []string{"api/users", "api/v2/x", "api/missing", "api/index"}},
	}}

	assert.Equal(t, 2, b.AddManifestHierarchy(m))
	assert.Equal(t, []*Edge{
		{Source: "api/index", Target: "api/users", Kind: EdgeHierarchy},
		{Source: "api/index", Target: "api/v2/x", Kind: EdgeHierarchy},
	}, b.Graph().Edges)
}

func TestAddManifestHierarchy_UnionWithPathEdges(t *testing.T) {
	b := newBuilderWith("g/index", "g/a")
	require.True(t, b.AddPathHierarchy("g/a"))

	added := b.AddManifestHierarchy(&manifest.Manifest{Groups: []manifest.Entry{{Dir: "g"}}})
	assert.Equal(t, 0, added, "manifest edge duplicates the path edge")
	assert.Len(t, b.Graph().Edges, 1)
}

func TestAddManifestHierarchy_Nil(t *testing.T) {
	assert.Equal(t, 0, newBuilderWith("a").AddManifestHierarchy(nil))
}

func TestGraph_AddNodeKeepsFirst(t *testing.T) {
	g := NewGraph()
	assert.True(t, g.AddNode(&Node{ID: "a", Title: "first"}))
	assert.True(t, g.AddNode(&Node{ID: "b", Title: "b"}))
	assert.False(t, g.AddNode(&Node{ID: "a", Title: "second"}))

	require.Len(t, g.Nodes, 2)
	assert.Equal(t, "first", g.Nodes[0].Title)
	n, ok := g.Node("a")
	require.True(t, ok)
	assert.Equal(t, "first", n.Title)
}

func TestEdgeKindCodes(t *testing.T) {
	assert.Equal(t, "l", EdgeLink.Code())
	assert.Equal(t, "h", EdgeHierarchy.Code())
	assert.Equal(t, EdgeLink, KindFromCode("l"))
	assert.Equal(t, EdgeHierarchy, KindFromCode("h"))
	assert.Equal(t, EdgeKind("x"), KindFromCode("x"))
}
