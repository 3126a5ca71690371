package graph

// EdgeKind represents the relationship an edge encodes.
type EdgeKind string

const (
	EdgeLink      EdgeKind = "link"      // explicit inline link, source -> target
	EdgeHierarchy EdgeKind = "hierarchy" // containment, parent index -> child
)

// Code returns the single-letter wire code used in the compact artifact.
func (k EdgeKind) Code() string {
	switch k {
	case EdgeLink:
		return "l"
	case EdgeHierarchy:
		return "h"
	default:
		return string(k)
	}
}

// KindFromCode maps a wire code back to an EdgeKind. Unknown codes are kept
// verbatim so newer artifacts still decode.
func KindFromCode(code string) EdgeKind {
	switch code {
	case "l":
		return EdgeLink
	case "h":
		return EdgeHierarchy
	default:
		return EdgeKind(code)
	}
}

// Node represents one document in the graph.
type Node struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Summary  string   `json:"summary,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// Edge represents a directed connection between two document identifiers.
// Target may name a document that is not in the graph.
type Edge struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Kind   EdgeKind `json:"kind"`
}

// Graph holds nodes in insertion (scan) order plus an id index.
type Graph struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`

	index map[string]*Node
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes: make([]*Node, 0),
		Edges: make([]*Edge, 0),
		index: make(map[string]*Node),
	}
}

// AddNode appends n unless its ID is already present; the first node with a
// given ID wins. It reports whether n was added.
func (g *Graph) AddNode(n *Node) bool {
	if _, ok := g.index[n.ID]; ok {
		return false
	}
	g.Nodes = append(g.Nodes, n)
	g.index[n.ID] = n
	return true
}

// AddEdge appends e without any dedup; use a Builder for deduplicated graphs.
func (g *Graph) AddEdge(e *Edge) {
	g.Edges = append(g.Edges, e)
}

// Node looks up a node by identifier.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.index[id]
	return n, ok
}

// HasNode reports whether id is a known node.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.index[id]
	return ok
}

// CountEdges returns the number of edges of kind k.
func (g *Graph) CountEdges(k EdgeKind) int {
	n := 0
	for _, e := range g.Edges {
		if e.Kind == k {
			n++
		}
	}
	return n
}
