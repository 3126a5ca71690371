package reports

import (
	"context"
	"io"
	"sort"

	"github.com/rmax-ai/docgraph/pkg/explore"
	"github.com/rmax-ai/docgraph/pkg/graph"
	"github.com/rmax-ai/docgraph/pkg/resolve"
)

// DocumentReport lists one row per document with its degree counts.
type DocumentReport struct {
	graph   *graph.Graph
	palette explore.Palette
}

func NewDocumentReport(g *graph.Graph, p explore.Palette) *DocumentReport {
	return &DocumentReport{graph: g, palette: p}
}

func (r *DocumentReport) Generate(ctx context.Context, params ReportParams) (io.Reader, error) {
	type counts struct {
		out, in, dangling, children int
		parent                      string
	}
	byID := make(map[string]*counts, len(r.graph.Nodes))
	for _, n := range r.graph.Nodes {
		byID[n.ID] = &counts{}
	}

	for _, e := range r.graph.Edges {
		src, ok := byID[e.Source]
		if !ok {
			continue
		}
		dst, known := byID[e.Target]
		switch e.Kind {
		case graph.EdgeLink:
			src.out++
			if known {
				dst.in++
			} else {
				src.dangling++
			}
		case graph.EdgeHierarchy:
			if known {
				src.children++
				if dst.parent == "" {
					dst.parent = e.Source
				}
			}
		}
	}

	t := table{headers: []string{"id", "title", "cluster", "depth", "parent", "children", "out_links", "in_links", "dangling_links"}}
	for _, n := range r.graph.Nodes {
		cluster := r.palette.Classify(n.ID)
		if params.Cluster != "" && cluster != params.Cluster {
			continue
		}
		c := byID[n.ID]
		t.rows = append(t.rows, []any{n.ID, n.Title, cluster, resolve.Depth(n.ID), c.parent, c.children, c.out, c.in, c.dangling})
	}
	return render(params.Format, t)
}

// LinkReport lists every edge, flagging targets that are not documents.
type LinkReport struct {
	graph   *graph.Graph
	palette explore.Palette
}

func NewLinkReport(g *graph.Graph, p explore.Palette) *LinkReport {
	return &LinkReport{graph: g, palette: p}
}

func (r *LinkReport) Generate(ctx context.Context, params ReportParams) (io.Reader, error) {
	t := table{headers: []string{"source", "target", "kind", "dangling"}}
	for _, e := range r.graph.Edges {
		if params.Cluster != "" && r.palette.Classify(e.Source) != params.Cluster {
			continue
		}
		t.rows = append(t.rows, []any{e.Source, e.Target, string(e.Kind), !r.graph.HasNode(e.Target)})
	}
	return render(params.Format, t)
}

// ClusterReport aggregates documents and links per cluster. A link is
// internal when both ends share a cluster.
type ClusterReport struct {
	graph   *graph.Graph
	palette explore.Palette
}

func NewClusterReport(g *graph.Graph, p explore.Palette) *ClusterReport {
	return &ClusterReport{graph: g, palette: p}
}

func (r *ClusterReport) Generate(ctx context.Context, params ReportParams) (io.Reader, error) {
	type agg struct{ documents, internal, external int }
	byKey := make(map[string]*agg)
	get := func(key string) *agg {
		a, ok := byKey[key]
		if !ok {
			a = &agg{}
			byKey[key] = a
		}
		return a
	}

	for _, n := range r.graph.Nodes {
		get(r.palette.Classify(n.ID)).documents++
	}
	for _, e := range r.graph.Edges {
		if e.Kind != graph.EdgeLink || !r.graph.HasNode(e.Source) || !r.graph.HasNode(e.Target) {
			continue
		}
		src, dst := r.palette.Classify(e.Source), r.palette.Classify(e.Target)
		if src == dst {
			get(src).internal++
		} else {
			get(src).external++
		}
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		if params.Cluster == "" || k == params.Cluster {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	t := table{headers: []string{"cluster", "label", "documents", "internal_links", "external_links"}}
	for _, k := range keys {
		a := byKey[k]
		t.rows = append(t.rows, []any{k, r.palette.Cluster(k).Label, a.documents, a.internal, a.external})
	}
	return render(params.Format, t)
}
