package graph

import (
	"strings"

	"github.com/rmax-ai/docgraph/pkg/manifest"
	"github.com/rmax-ai/docgraph/pkg/resolve"
)

// AddPathHierarchy links id to its structural parent when the parent is a
// known node. It reports whether an edge was added.
func (b *Builder) AddPathHierarchy(id string) bool {
	parent, ok := resolve.Parent(id)
	if !ok || parent == id || !b.HasNode(parent) {
		return false
	}
	return b.AddEdge(parent, id, EdgeHierarchy)
}

// AddManifestHierarchy adds hierarchy edges declared by m and returns how many
// were new. Directories without an index node are skipped.
func (b *Builder) AddManifestHierarchy(m *manifest.Manifest) int {
	if m == nil {
		return 0
	}

	added := 0
	for _, group := range m.Groups {
		parent := resolve.IndexOf(group.Dir)
		if !b.HasNode(parent) {
			continue
		}
		for _, child := range b.groupChildren(group, parent) {
			if b.AddEdge(parent, child, EdgeHierarchy) {
				added++
			}
		}
	}
	return added
}

// groupChildren lists the nodes grouped under parent: the explicit children
// when given, otherwise every node exactly one segment below the directory.
func (b *Builder) groupChildren(group manifest.Entry, parent string) []string {
	var children []string

	if len(group.Children) > 0 {
		for _, id := range group.Children {
			if id != parent && b.HasNode(id) {
				children = append(children, id)
			}
		}
		return children
	}

	prefix, depth := "", 1
	if group.Dir != "." {
		prefix = group.Dir + "/"
		depth = resolve.Depth(group.Dir) + 1
	}
	for _, n := range b.graph.Nodes {
		if n.ID == parent || !strings.HasPrefix(n.ID, prefix) || resolve.Depth(n.ID) != depth {
			continue
		}
		children = append(children, n.ID)
	}
	return children
}
