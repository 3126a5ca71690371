package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rmax-ai/docgraph/pkg/build"
)

func newBuildCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Scan the docs and write the graph artifact",
		Long: `Scan every .md/.mdx file under --docs-dir and write the compact graph.

--out accepts a file path, sqlite://<db-path> or redis://host:port/db
(append ?key=<name> to choose the key). The artifact is written once, after
the whole graph is built; a failed run leaves any previous artifact in place.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manifestPath := v.GetString("manifest")
			if v.GetBool("no-manifest") {
				manifestPath = build.ManifestDisabled
			}
			opts := build.Options{
				DocsDir:      v.GetString("docs-dir"),
				ManifestPath: manifestPath,
				DocsPrefix:   v.GetString("docs-prefix"),
			}

			out := v.GetString("out")
			res, err := build.Run(cmd.Context(), opts, out)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d nodes, %d link edges, %d hierarchy edges (%d bytes) to %s\n",
				len(res.Graph.Nodes), res.LinkEdges, res.HierarchyEdges, res.Bytes, out)
			for _, w := range res.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
			}
			return nil
		},
	}
	cmd.Flags().String("docs-dir", "docs", "root of the document tree")
	cmd.Flags().String("out", "static/knowledge-graph.json", "artifact target")
	cmd.Flags().String("manifest", "", "navigation manifest (default: discover docgraph.yaml or sidebars.js)")
	cmd.Flags().Bool("no-manifest", false, "ignore any navigation manifest")
	cmd.Flags().String("docs-prefix", "docs", "site route prefix used by absolute links")
	return cmd
}
