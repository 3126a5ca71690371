package graph

// Builder assembles a graph while enforcing edge uniqueness through an
// explicit EdgeSet.
type Builder struct {
	graph *Graph
	seen  EdgeSet
}

// NewBuilder creates a builder. A nil seen set starts a fresh one; passing a
// set lets callers carry dedup state across passes deliberately.
func NewBuilder(seen EdgeSet) *Builder {
	if seen == nil {
		seen = NewEdgeSet()
	}
	return &Builder{graph: NewGraph(), seen: seen}
}

// AddNode adds a document node in scan order. It reports false when a node
// with the same ID was already added.
func (b *Builder) AddNode(n *Node) bool {
	return b.graph.AddNode(n)
}

// HasNode reports whether id has been added.
func (b *Builder) HasNode(id string) bool {
	return b.graph.HasNode(id)
}

// AddEdge adds the edge unless the same (source, target, kind) triple was
// already emitted. It reports whether the edge was added.
func (b *Builder) AddEdge(source, target string, kind EdgeKind) bool {
	e := Edge{Source: source, Target: target, Kind: kind}
	if !b.seen.Add(e) {
		return false
	}
	b.graph.AddEdge(&e)
	return true
}

// Seen returns the dedup set backing this builder.
func (b *Builder) Seen() EdgeSet {
	return b.seen
}

// Graph returns the graph built so far.
func (b *Builder) Graph() *Graph {
	return b.graph
}
