package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rmax-ai/docgraph/pkg/blob"
	"github.com/rmax-ai/docgraph/pkg/build"
	"github.com/rmax-ai/docgraph/pkg/explore"
	"github.com/rmax-ai/docgraph/pkg/graph"
)

// Stats summarizes an artifact.
type Stats struct {
	Nodes          int            `json:"nodes"`
	LinkEdges      int            `json:"link_edges"`
	HierarchyEdges int            `json:"hierarchy_edges"`
	DanglingEdges  int            `json:"dangling_edges"`
	Clusters       map[string]int `json:"clusters"`
	Bytes          int            `json:"bytes"`
}

func newStatsCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize an existing artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readArtifact(cmd.Context(), v.GetString("artifact"))
			if err != nil {
				return err
			}
			stats, err := computeStats(data)
			if err != nil {
				return err
			}

			if v.GetBool("json") {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "nodes:            %d\n", stats.Nodes)
			fmt.Fprintf(out, "link edges:       %d\n", stats.LinkEdges)
			fmt.Fprintf(out, "hierarchy edges:  %d\n", stats.HierarchyEdges)
			fmt.Fprintf(out, "dangling edges:   %d\n", stats.DanglingEdges)
			fmt.Fprintf(out, "bytes:            %d\n", stats.Bytes)

			keys := make([]string, 0, len(stats.Clusters))
			for k := range stats.Clusters {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(out, "cluster %-20s %d\n", k, stats.Clusters[k])
			}
			return nil
		},
	}
	cmd.Flags().String("artifact", "static/knowledge-graph.json", "artifact target (path, sqlite://, redis://)")
	cmd.Flags().Bool("json", false, "print machine-readable output")
	return cmd
}

func computeStats(data []byte) (Stats, error) {
	g, err := graph.Decode(data)
	if err != nil {
		return Stats{}, err
	}
	rt := explore.Transform(g, explore.DefaultPalette)

	stats := Stats{
		Nodes:          len(g.Nodes),
		LinkEdges:      g.CountEdges(graph.EdgeLink),
		HierarchyEdges: g.CountEdges(graph.EdgeHierarchy),
		DanglingEdges:  len(g.Edges) - len(rt.Links),
		Clusters:       make(map[string]int),
		Bytes:          len(data),
	}
	for _, n := range rt.Nodes {
		stats.Clusters[n.Cluster]++
	}
	return stats, nil
}

func readArtifact(ctx context.Context, dsn string) ([]byte, error) {
	target, err := build.OpenTarget(dsn)
	if err != nil {
		return nil, err
	}
	defer target.Close()

	data, err := blob.ReadAll(ctx, target.Store, target.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	return data, nil
}
