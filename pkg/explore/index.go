package explore

import (
	"slices"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rmax-ai/docgraph/pkg/graph"
)

// DefaultCacheSize bounds the number of cached search queries.
const DefaultCacheSize = 256

// Direction of a neighbor relative to the queried node.
const (
	Outgoing = "out"
	Incoming = "in"
)

// Neighbor is one adjacent node.
type Neighbor struct {
	Node      *Node          `json:"node"`
	Kind      graph.EdgeKind `json:"kind"`
	Direction string         `json:"direction"`
}

// Index answers ranked search and adjacency queries over an immutable graph.
// It is safe for concurrent use.
type Index struct {
	graph *Graph
	out   map[string][]*Link
	in    map[string][]*Link
	cache *lru.Cache[string, []*Node]
}

// NewIndex builds adjacency lists and a search cache of cacheSize entries
// (DefaultCacheSize when <= 0).
func NewIndex(g *Graph, cacheSize int) (*Index, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, []*Node](cacheSize)
	if err != nil {
		return nil, err
	}

	ix := &Index{
		graph: g,
		out:   make(map[string][]*Link),
		in:    make(map[string][]*Link),
		cache: cache,
	}
	for _, l := range g.Links {
		ix.out[l.Source.ID] = append(ix.out[l.Source.ID], l)
		ix.in[l.Target.ID] = append(ix.in[l.Target.ID], l)
	}
	return ix, nil
}

// Graph returns the indexed graph.
func (ix *Index) Graph() *Graph {
	return ix.graph
}

// Search returns nodes matching query, best first: title hits, then id and
// keyword hits, then summary hits. Ties keep artifact order. A limit <= 0
// returns every match.
func (ix *Index) Search(query string, limit int) []*Node {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	results, ok := ix.cache.Get(q)
	if !ok {
		results = ix.rank(q)
		ix.cache.Add(q, results)
	}

	// Callers get their own slice; the cached one is shared across queries.
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return slices.Clone(results)
}

func (ix *Index) rank(q string) []*Node {
	type scored struct {
		node  *Node
		score int
	}
	var hits []scored
	for _, n := range ix.graph.Nodes {
		if !Matches(n, q) {
			continue
		}
		hits = append(hits, scored{node: n, score: score(n, q)})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})

	nodes := make([]*Node, len(hits))
	for i, h := range hits {
		nodes[i] = h.node
	}
	return nodes
}

func score(n *Node, q string) int {
	s := 0
	if strings.Contains(strings.ToLower(n.Title), q) {
		s += 4
	}
	if strings.Contains(strings.ToLower(n.ID), q) {
		s += 2
	}
	for _, kw := range n.Keywords {
		if strings.Contains(strings.ToLower(kw), q) {
			s += 2
			break
		}
	}
	if strings.Contains(strings.ToLower(n.Summary), q) {
		s++
	}
	return s
}

// Neighbors lists outgoing then incoming links of id. ok is false when id is
// not in the graph.
func (ix *Index) Neighbors(id string) (neighbors []Neighbor, ok bool) {
	if _, ok := ix.graph.Node(id); !ok {
		return nil, false
	}
	neighbors = []Neighbor{}
	for _, l := range ix.out[id] {
		neighbors = append(neighbors, Neighbor{Node: l.Target, Kind: l.Kind, Direction: Outgoing})
	}
	for _, l := range ix.in[id] {
		neighbors = append(neighbors, Neighbor{Node: l.Source, Kind: l.Kind, Direction: Incoming})
	}
	return neighbors, true
}
