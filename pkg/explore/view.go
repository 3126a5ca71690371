package explore

import "strings"

const (
	// DimAlpha is the opacity of nodes outside the search or hover focus.
	DimAlpha = 0.08
	// FullAlpha is the opacity of focused nodes.
	FullAlpha = 1.0
)

// Node radii in layout units.
const (
	RadiusDefault = 4
	RadiusMatched = 5
	RadiusHovered = 6
)

// Matches reports whether n contains query (already lower-cased) in its
// title, id, summary or keywords.
func Matches(n *Node, query string) bool {
	if strings.Contains(strings.ToLower(n.Title), query) ||
		strings.Contains(strings.ToLower(n.ID), query) ||
		strings.Contains(strings.ToLower(n.Summary), query) {
		return true
	}
	for _, kw := range n.Keywords {
		if strings.Contains(strings.ToLower(kw), query) {
			return true
		}
	}
	return false
}

// MatchSet returns the ids matching text case-insensitively, or nil when text
// is empty (no filter).
func MatchSet(nodes []*Node, text string) map[string]struct{} {
	if text == "" {
		return nil
	}
	query := strings.ToLower(text)
	set := make(map[string]struct{})
	for _, n := range nodes {
		if Matches(n, query) {
			set[n.ID] = struct{}{}
		}
	}
	return set
}

// Neighborhood returns id plus every node sharing a link with it, or nil when
// id is empty.
func Neighborhood(links []*Link, id string) map[string]struct{} {
	if id == "" {
		return nil
	}
	set := map[string]struct{}{id: {}}
	for _, l := range links {
		if l.Source.ID == id {
			set[l.Target.ID] = struct{}{}
		}
		if l.Target.ID == id {
			set[l.Source.ID] = struct{}{}
		}
	}
	return set
}

// Tooltip is shown for the hovered node.
type Tooltip struct {
	Title   string
	Summary string
	Cluster string
}

// View holds the interactive state over one runtime graph: the search text
// and the hovered node. Search and hover focus compose by logical AND.
type View struct {
	graph   *Graph
	palette Palette

	search  string
	hovered string

	matched   map[string]struct{}
	connected map[string]struct{}
}

// NewView starts with no search and nothing hovered.
func NewView(g *Graph, p Palette) *View {
	return &View{graph: g, palette: p}
}

// Graph returns the graph the view was built over.
func (v *View) Graph() *Graph {
	return v.graph
}

// SetSearch replaces the search text and recomputes the match set.
func (v *View) SetSearch(text string) {
	if text == v.search {
		return
	}
	v.search = text
	v.matched = MatchSet(v.graph.Nodes, text)
}

// Search returns the current search text.
func (v *View) Search() string {
	return v.search
}

// Searching reports whether a search filter is active.
func (v *View) Searching() bool {
	return v.matched != nil
}

// MatchCount returns the number of matched nodes, or all nodes when no
// search is active.
func (v *View) MatchCount() int {
	if v.matched == nil {
		return len(v.graph.Nodes)
	}
	return len(v.matched)
}

// SetHovered focuses id and its neighbors. An empty or unknown id clears it.
func (v *View) SetHovered(id string) {
	if _, ok := v.graph.Node(id); !ok {
		id = ""
	}
	if id == v.hovered {
		return
	}
	v.hovered = id
	v.connected = Neighborhood(v.graph.Links, id)
}

// Hovered returns the hovered node id, or "".
func (v *View) Hovered() string {
	return v.hovered
}

// Matched reports whether id passes the search filter.
func (v *View) Matched(id string) bool {
	if v.matched == nil {
		return true
	}
	_, ok := v.matched[id]
	return ok
}

// Connected reports whether id is in the hovered neighborhood.
func (v *View) Connected(id string) bool {
	if v.connected == nil {
		return true
	}
	_, ok := v.connected[id]
	return ok
}

// Focused reports whether id is rendered at full opacity.
func (v *View) Focused(id string) bool {
	return v.Matched(id) && v.Connected(id)
}

// NodeAlpha returns FullAlpha for focused nodes and DimAlpha otherwise.
func (v *View) NodeAlpha(id string) float64 {
	if v.Focused(id) {
		return FullAlpha
	}
	return DimAlpha
}

// NodeRadius grows hovered and matched nodes.
func (v *View) NodeRadius(id string) int {
	switch {
	case id == v.hovered:
		return RadiusHovered
	case v.matched != nil && v.Matched(id):
		return RadiusMatched
	default:
		return RadiusDefault
	}
}

// LinkActive reports whether both endpoints are connected and matched.
func (v *View) LinkActive(l *Link) bool {
	return v.Focused(l.Source.ID) && v.Focused(l.Target.ID)
}

// ShowLabel reports whether a node's title is drawn regardless of zoom.
func (v *View) ShowLabel(id string) bool {
	return id == v.hovered || (v.matched != nil && v.Matched(id))
}

// Tooltip describes the hovered node.
func (v *View) Tooltip() (Tooltip, bool) {
	n, ok := v.graph.Node(v.hovered)
	if !ok {
		return Tooltip{}, false
	}
	return Tooltip{
		Title:   n.Title,
		Summary: n.Summary,
		Cluster: v.palette.Cluster(n.Cluster).Label,
	}, true
}
