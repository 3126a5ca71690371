package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rmax-ai/docgraph/pkg/mcp"
)

func newMCPCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the graph to agents over MCP (stdio)",
		Long: `Start a Model Context Protocol server on stdin/stdout backed by docgraph-d.

Tools: search_docs, get_doc. Resource: docgraph://artifact.
Logs go to stderr; stdout carries the protocol.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiURL := v.GetString("api-url")
			slog.Info("mcp_server_starting", "api_url", apiURL)
			return mcp.NewServer(apiURL, v.GetString("docs-prefix")).Serve()
		},
	}
	cmd.Flags().String("api-url", "http://127.0.0.1:8090", "docgraph-d base URL")
	cmd.Flags().String("docs-prefix", "docs", "site route prefix reported for documents")
	return cmd
}
