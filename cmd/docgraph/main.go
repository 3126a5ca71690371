package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	Version   = "v0.1.0"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// newRootCmd wires every subcommand to one viper instance. Flags win over
// DOCGRAPH_* environment variables, which win over the optional config file.
func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("DOCGRAPH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "docgraph",
		Short: "Build and query the documentation knowledge graph",
		Long: `docgraph extracts a knowledge graph from a Markdown/MDX document tree.

Subcommands:
  build    - scan the docs and write the compact graph artifact
  stats    - summarize an existing artifact
  report   - export per-document, link or cluster tables
  mcp      - expose a running docgraph-d to agents over MCP (stdio)
  version  - print build information

Every flag can also be set through DOCGRAPH_<FLAG> (dashes become
underscores), e.g. DOCGRAPH_DOCS_DIR=site/docs.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			if cfgFile := v.GetString("config"); cfgFile != "" {
				v.SetConfigFile(cfgFile)
				if err := v.ReadInConfig(); err != nil {
					return fmt.Errorf("error reading config file %s: %w", cfgFile, err)
				}
			}
			return setupLogging(cmd.ErrOrStderr(), v.GetString("log-level"))
		},
	}
	root.PersistentFlags().String("config", "", "optional YAML config file with flag values")
	root.PersistentFlags().String("log-level", "info", "log level: debug|info|warn|error")

	root.AddCommand(newBuildCmd(v))
	root.AddCommand(newStatsCmd(v))
	root.AddCommand(newReportCmd(v))
	root.AddCommand(newMCPCmd(v))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "docgraph %s (commit %s, built %s)\n", Version, Commit, BuildTime)
		},
	})
	return root
}

func setupLogging(w io.Writer, level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q", level)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})))
	return nil
}
