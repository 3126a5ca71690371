package graph

// EdgeKey is the identity of an edge: no two edges in a graph share one.
type EdgeKey struct {
	Source string
	Target string
	Kind   EdgeKind
}

// Key returns the dedup key of e.
func (e Edge) Key() EdgeKey {
	return EdgeKey{Source: e.Source, Target: e.Target, Kind: e.Kind}
}

// EdgeSet records which edge triples have been emitted. Each build owns its
// own set; nothing is shared between builds.
type EdgeSet map[EdgeKey]struct{}

// NewEdgeSet creates an empty set.
func NewEdgeSet() EdgeSet {
	return make(EdgeSet)
}

// Add inserts e and reports whether it was new.
func (s EdgeSet) Add(e Edge) bool {
	k := e.Key()
	if _, ok := s[k]; ok {
		return false
	}
	s[k] = struct{}{}
	return true
}

// Has reports whether e was already added.
func (s EdgeSet) Has(e Edge) bool {
	_, ok := s[e.Key()]
	return ok
}
