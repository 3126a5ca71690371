// Package build runs the offline extraction: it scans a document tree, builds
// the knowledge graph and writes the compact artifact.
package build

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/rmax-ai/docgraph/pkg/blob"
	"github.com/rmax-ai/docgraph/pkg/extract"
	"github.com/rmax-ai/docgraph/pkg/graph"
	"github.com/rmax-ai/docgraph/pkg/manifest"
	"github.com/rmax-ai/docgraph/pkg/resolve"
	"github.com/rmax-ai/docgraph/pkg/scanner"
)

// ManifestDisabled turns manifest discovery off when used as Options.ManifestPath.
const ManifestDisabled = "none"

// Options configures a build.
type Options struct {
	// DocsDir is the root of the document tree.
	DocsDir string
	// ManifestPath points at a navigation manifest. Empty means discover one in
	// DocsDir or its parent; ManifestDisabled skips manifests entirely.
	ManifestPath string
	// DocsPrefix is the site route prefix used to rebase absolute links.
	DocsPrefix string
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Result summarizes a build.
type Result struct {
	Graph          *graph.Graph
	Documents      int
	LinkEdges      int
	HierarchyEdges int
	// Warnings lists degraded, non-fatal conditions such as a bad manifest.
	Warnings []string
	Bytes    int
	Duration time.Duration
}

type parsedDoc struct {
	id    string
	links []string
}

// Build extracts the graph from opts.DocsDir. Any unreadable directory or
// document aborts the build; nothing is returned in that case.
func Build(ctx context.Context, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	docs, err := scanner.Scan(opts.DocsDir)
	if err != nil {
		BuildFailuresTotal.WithLabelValues("scan").Inc()
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	b := graph.NewBuilder(nil)
	result := &Result{Documents: len(docs)}
	parsed := make([]parsedDoc, 0, len(docs))
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := os.ReadFile(doc.Path)
		if err != nil {
			BuildFailuresTotal.WithLabelValues("read").Inc()
			return nil, fmt.Errorf("failed to read %s: %w", doc.Path, err)
		}

		res := extract.Parse(string(content))
		title := res.Title
		if title == "" {
			title = path.Base(doc.ID)
		}
		added := b.AddNode(&graph.Node{
			ID:       doc.ID,
			Title:    title,
			Summary:  res.Summary,
			Keywords: res.Keywords,
		})
		if !added {
			warning := fmt.Sprintf("%s: identifier %q already used by another document, skipped", doc.Path, doc.ID)
			logger.Warn("duplicate_document_id", "id", doc.ID, "path", doc.Path)
			result.Warnings = append(result.Warnings, warning)
			continue
		}
		parsed = append(parsed, parsedDoc{id: doc.ID, links: res.Links})
	}

	resolver := resolve.Resolver{DocsPrefix: opts.DocsPrefix}
	for _, doc := range parsed {
		for _, link := range doc.links {
			target, ok := resolver.Resolve(link, doc.id)
			if !ok {
				continue
			}
			b.AddEdge(doc.id, target, graph.EdgeLink)
		}
		b.AddPathHierarchy(doc.id)
	}

	if m, warning := loadManifest(opts); warning != "" {
		logger.Warn("manifest_ignored", "reason", warning)
		result.Warnings = append(result.Warnings, warning)
	} else if m != nil {
		added := b.AddManifestHierarchy(m)
		logger.Debug("manifest_applied", "groups", len(m.Groups), "edges_added", added)
	}

	g := b.Graph()
	result.Graph = g
	result.LinkEdges = g.CountEdges(graph.EdgeLink)
	result.HierarchyEdges = g.CountEdges(graph.EdgeHierarchy)
	result.Duration = time.Since(start)

	DocumentsScanned.Set(float64(result.Documents))
	EdgesEmitted.WithLabelValues(string(graph.EdgeLink)).Set(float64(result.LinkEdges))
	EdgesEmitted.WithLabelValues(string(graph.EdgeHierarchy)).Set(float64(result.HierarchyEdges))
	BuildDuration.Observe(result.Duration.Seconds())

	return result, nil
}

// loadManifest returns the manifest to apply, or a warning explaining why none
// is applied. Both are empty when no manifest exists.
func loadManifest(opts Options) (*manifest.Manifest, string) {
	p := opts.ManifestPath
	switch p {
	case ManifestDisabled:
		return nil, ""
	case "":
		p = manifest.Discover(opts.DocsDir, filepath.Dir(filepath.Clean(opts.DocsDir)))
		if p == "" {
			return nil, ""
		}
	}

	m, err := manifest.Load(p)
	if err != nil {
		return nil, fmt.Sprintf("could not parse manifest %s: %v", p, err)
	}
	return m, ""
}

// Write encodes the graph and stores it under key in one Put.
func Write(ctx context.Context, store blob.BlobStore, key string, g *graph.Graph) (int, error) {
	data, err := graph.Encode(g)
	if err != nil {
		return 0, err
	}
	if err := store.Put(ctx, key, bytes.NewReader(data)); err != nil {
		BuildFailuresTotal.WithLabelValues("write").Inc()
		return 0, fmt.Errorf("failed to write artifact: %w", err)
	}
	ArtifactBytes.Set(float64(len(data)))
	return len(data), nil
}

// Run builds the graph and writes it to target (see OpenTarget). The artifact
// is only written after the whole graph is built, so a failed run leaves any
// previous artifact untouched.
func Run(ctx context.Context, opts Options, target string) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("graph_build_started", "docs_dir", opts.DocsDir, "target", target)

	result, err := Build(ctx, opts)
	if err != nil {
		return nil, err
	}

	t, err := OpenTarget(target)
	if err != nil {
		return nil, err
	}
	defer t.Close()

	n, err := Write(ctx, t.Store, t.Key, result.Graph)
	if err != nil {
		return nil, err
	}
	result.Bytes = n

	logger.Info("graph_build_completed",
		"nodes", len(result.Graph.Nodes),
		"link_edges", result.LinkEdges,
		"hierarchy_edges", result.HierarchyEdges,
		"bytes", result.Bytes,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}
