package explore

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmax-ai/docgraph/pkg/graph"
)

const artifact = `{"n":[` +
	`["intro","Welcome"],` +
	`["infrastructure/index","Infra","Clusters and networks"],` +
	`["infrastructure/dns","DNS","",["Route53","Zones"]],` +
	`["projects/alpha","Alpha","Project alpha uses DNS"]` +
	`],"e":[` +
	`["infrastructure/index","infrastructure/dns","h"],` +
	`["projects/alpha","infrastructure/dns","l"],` +
	`["intro","missing/page","l"],` +
	`["ghost","intro","l"]` +
	`]}`

func loadTestGraph(t *testing.T) *Graph {
	t.Helper()
	g, err := Load([]byte(artifact), DefaultPalette)
	require.NoError(t, err)
	return g
}

func TestTransform_DropsDanglingEdges(t *testing.T) {
	g := loadTestGraph(t)

	assert.Len(t, g.Nodes, 4)
	require.Len(t, g.Links, 2)
	assert.Equal(t, "infrastructure/index", g.Links[0].Source.ID)
	assert.Equal(t, graph.EdgeHierarchy, g.Links[0].Kind)
	assert.Equal(t, graph.EdgeLink, g.Links[1].Kind)

	for _, l := range g.Links {
		_, ok := g.Node(l.Source.ID)
		assert.True(t, ok)
		_, ok = g.Node(l.Target.ID)
		assert.True(t, ok)
	}
}

func TestTransform_DefaultsOptionalFields(t *testing.T) {
	g := loadTestGraph(t)

	n, ok := g.Node("intro")
	require.True(t, ok)
	assert.Equal(t, "", n.Summary)
	assert.Empty(t, n.Keywords)

	n, ok = g.Node("infrastructure/dns")
	require.True(t, ok)
	assert.Equal(t, []string{"Route53", "Zones"}, n.Keywords)
}

func TestPalette_Classify(t *testing.T) {
	p := Palette{
		Clusters: []Cluster{
			{Key: "infra", Label: "Infra"},
			{Key: "infra/net", Label: "Network"},
			{Key: "misc", Label: "Misc"},
		},
		Fallback: "misc",
	}

	tests := []struct {
		id   string
		want string
	}{
		{"infra/net/dns", "infra/net"},
		{"infra/compute", "infra"},
		{"infrastructure", "infra"},
		{"other/page", "misc"},
		{"", "misc"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Classify(tt.id))
		})
	}

	assert.Equal(t, "intro", DefaultPalette.Classify("random/page"))
	assert.Equal(t, "governance-and-legal", DefaultPalette.Classify("governance-and-legal/privacy"))
	assert.Equal(t, "Intro", DefaultPalette.Cluster("unknown").Label)
	assert.Equal(t, "#fbbf24", DefaultPalette.Cluster("infrastructure").Color(true))
	assert.Equal(t, "#d97706", DefaultPalette.Cluster("infrastructure").Color(false))
}

func TestMatchSet(t *testing.T) {
	g := loadTestGraph(t)

	assert.Nil(t, MatchSet(g.Nodes, ""))

	set := MatchSet(g.Nodes, "dns")
	assert.Len(t, set, 2)
	assert.Contains(t, set, "infrastructure/dns")
	assert.Contains(t, set, "projects/alpha") // summary

	set = MatchSet(g.Nodes, "ROUTE")
	assert.Len(t, set, 1)
	assert.Contains(t, set, "infrastructure/dns") // keyword

	assert.Empty(t, MatchSet(g.Nodes, "nothing-like-this"))
}

func TestNeighborhood(t *testing.T) {
	g := loadTestGraph(t)

	assert.Nil(t, Neighborhood(g.Links, ""))

	set := Neighborhood(g.Links, "infrastructure/dns")
	assert.Len(t, set, 3)
	assert.Contains(t, set, "infrastructure/dns")
	assert.Contains(t, set, "infrastructure/index")
	assert.Contains(t, set, "projects/alpha")

	assert.Equal(t, map[string]struct{}{"intro": {}}, Neighborhood(g.Links, "intro"))
}

func TestView_SearchDimsButKeepsNodes(t *testing.T) {
	g := loadTestGraph(t)
	v := NewView(g, DefaultPalette)

	for _, n := range g.Nodes {
		assert.Equal(t, FullAlpha, v.NodeAlpha(n.ID))
		assert.Equal(t, RadiusDefault, v.NodeRadius(n.ID))
	}

	v.SetSearch("alpha")
	assert.True(t, v.Searching())
	assert.Equal(t, 1, v.MatchCount())
	assert.Equal(t, FullAlpha, v.NodeAlpha("projects/alpha"))
	assert.Equal(t, RadiusMatched, v.NodeRadius("projects/alpha"))
	assert.Equal(t, DimAlpha, v.NodeAlpha("intro"))
	assert.Len(t, v.Graph().Nodes, 4)

	v.SetSearch("")
	assert.False(t, v.Searching())
	assert.Equal(t, 4, v.MatchCount())
	assert.Equal(t, FullAlpha, v.NodeAlpha("intro"))
}

func TestView_HoverComposesWithSearch(t *testing.T) {
	g := loadTestGraph(t)
	v := NewView(g, DefaultPalette)

	v.SetHovered("infrastructure/dns")
	assert.Equal(t, RadiusHovered, v.NodeRadius("infrastructure/dns"))
	assert.Equal(t, FullAlpha, v.NodeAlpha("projects/alpha"))
	assert.Equal(t, DimAlpha, v.NodeAlpha("intro"))
	for _, l := range g.Links {
		assert.True(t, v.LinkActive(l))
	}

	v.SetSearch("infra")
	assert.Equal(t, FullAlpha, v.NodeAlpha("infrastructure/index"))
	assert.Equal(t, DimAlpha, v.NodeAlpha("projects/alpha"))
	assert.True(t, v.LinkActive(g.Links[0]))
	assert.False(t, v.LinkActive(g.Links[1]))

	tip, ok := v.Tooltip()
	require.True(t, ok)
	assert.Equal(t, Tooltip{Title: "DNS", Cluster: "Infra"}, tip)

	v.SetHovered("not-a-node")
	assert.Equal(t, "", v.Hovered())
	_, ok = v.Tooltip()
	assert.False(t, ok)
}

func TestIndex_Search(t *testing.T) {
	g := loadTestGraph(t)
	ix, err := NewIndex(g, 0)
	require.NoError(t, err)

	results := ix.Search("DNS", 0)
	require.Len(t, results, 2)
	assert.Equal(t, "infrastructure/dns", results[0].ID)
	assert.Equal(t, "projects/alpha", results[1].ID)

	// cached path returns the same ranking
	again := ix.Search("dns", 1)
	require.Len(t, again, 1)
	assert.Equal(t, "infrastructure/dns", again[0].ID)

	assert.Nil(t, ix.Search("   ", 10))
}

func TestIndex_SearchResultsDoNotAliasCache(t *testing.T) {
	ix, err := NewIndex(loadTestGraph(t), 0)
	require.NoError(t, err)

	top := ix.Search("dns", 1)
	top = append(top, &Node{ID: "intruder"})
	require.Len(t, top, 2)

	all := ix.Search("dns", 0)
	require.Len(t, all, 2)
	assert.Equal(t, "projects/alpha", all[1].ID)

	all[0] = nil
	again := ix.Search("dns", 0)
	require.NotNil(t, again[0])
	assert.Equal(t, "infrastructure/dns", again[0].ID)
}

func TestIndex_Neighbors(t *testing.T) {
	g := loadTestGraph(t)
	ix, err := NewIndex(g, 4)
	require.NoError(t, err)

	nb, ok := ix.Neighbors("infrastructure/dns")
	require.True(t, ok)
	require.Len(t, nb, 2)
	assert.Equal(t, Incoming, nb[0].Direction)
	assert.Equal(t, "infrastructure/index", nb[0].Node.ID)
	assert.Equal(t, graph.EdgeHierarchy, nb[0].Kind)
	assert.Equal(t, "projects/alpha", nb[1].Node.ID)

	nb, ok = ix.Neighbors("intro")
	require.True(t, ok)
	assert.Empty(t, nb)

	_, ok = ix.Neighbors("ghost")
	assert.False(t, ok)
}

func TestGraph_JSON(t *testing.T) {
	g := loadTestGraph(t)
	data, err := json.Marshal(g)
	require.NoError(t, err)
	assert.Contains(t, string(data), `{"source":"infrastructure/index","target":"infrastructure/dns","kind":"hierarchy"}`)
	assert.Contains(t, string(data), `{"id":"intro","title":"Welcome","cluster":"intro"}`)
}

func TestRoute(t *testing.T) {
	assert.Equal(t, "/docs/a/b", Route("docs", "a/b"))
	assert.Equal(t, "/a/b", Route("", "a/b"))
}
