package main

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rmax-ai/docgraph/pkg/explore"
	"github.com/rmax-ai/docgraph/pkg/graph"
	"github.com/rmax-ai/docgraph/pkg/reports"
)

func newReportCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export a documents, links or clusters report from an artifact",
		Long: `Export a tabular report from an existing artifact.

Types:
  documents  one row per document with parent, children and link counts
  links      every edge, with a dangling flag for unknown targets
  clusters   documents and internal/external links per cluster`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readArtifact(cmd.Context(), v.GetString("artifact"))
			if err != nil {
				return err
			}
			g, err := graph.Decode(data)
			if err != nil {
				return err
			}

			gen, err := reports.NewReportGenerator(reports.ReportType(v.GetString("type")), g, explore.DefaultPalette)
			if err != nil {
				return err
			}
			r, err := gen.Generate(cmd.Context(), reports.ReportParams{
				Format:  reports.ReportFormat(v.GetString("format")),
				Cluster: v.GetString("cluster"),
			})
			if err != nil {
				return err
			}
			_, err = io.Copy(cmd.OutOrStdout(), r)
			return err
		},
	}
	cmd.Flags().String("artifact", "static/knowledge-graph.json", "artifact target (path, sqlite://, redis://)")
	cmd.Flags().String("type", "documents", "report type: documents|links|clusters")
	cmd.Flags().String("format", "csv", "output format: csv|json")
	cmd.Flags().String("cluster", "", "only include rows from this cluster")
	return cmd
}
