// Package explore turns a decoded artifact into the runtime graph used by the
// explorers, and holds the search and hover semantics they share.
package explore

import (
	"encoding/json"

	"github.com/rmax-ai/docgraph/pkg/graph"
)

// Node is a renderable document.
type Node struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Summary  string   `json:"summary,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	Cluster  string   `json:"cluster"`
}

// Link is an edge whose endpoints both exist.
type Link struct {
	Source *Node
	Target *Node
	Kind   graph.EdgeKind
}

// MarshalJSON writes endpoints by id.
func (l *Link) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Source string         `json:"source"`
		Target string         `json:"target"`
		Kind   graph.EdgeKind `json:"kind"`
	}{l.Source.ID, l.Target.ID, l.Kind})
}

// Graph is the runtime graph. It is rebuilt for every artifact load and not
// mutated afterwards.
type Graph struct {
	Nodes []*Node `json:"nodes"`
	Links []*Link `json:"links"`

	byID map[string]*Node
}

// Transform classifies every node and drops edges with a missing endpoint.
func Transform(g *graph.Graph, p Palette) *Graph {
	out := &Graph{
		Nodes: make([]*Node, 0, len(g.Nodes)),
		Links: make([]*Link, 0, len(g.Edges)),
		byID:  make(map[string]*Node, len(g.Nodes)),
	}

	for _, n := range g.Nodes {
		node := &Node{
			ID:       n.ID,
			Title:    n.Title,
			Summary:  n.Summary,
			Keywords: n.Keywords,
			Cluster:  p.Classify(n.ID),
		}
		if _, dup := out.byID[n.ID]; dup {
			continue
		}
		out.Nodes = append(out.Nodes, node)
		out.byID[n.ID] = node
	}

	for _, e := range g.Edges {
		src, ok := out.byID[e.Source]
		if !ok {
			continue
		}
		dst, ok := out.byID[e.Target]
		if !ok {
			continue
		}
		out.Links = append(out.Links, &Link{Source: src, Target: dst, Kind: e.Kind})
	}

	return out
}

// Load decodes an artifact and transforms it.
func Load(data []byte, p Palette) (*Graph, error) {
	g, err := graph.Decode(data)
	if err != nil {
		return nil, err
	}
	return Transform(g, p), nil
}

// Node returns the node with id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// IDs returns node ids in artifact order.
func (g *Graph) IDs() []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// Route is the site route of a document.
func Route(docsPrefix, id string) string {
	if docsPrefix == "" {
		return "/" + id
	}
	return "/" + docsPrefix + "/" + id
}
