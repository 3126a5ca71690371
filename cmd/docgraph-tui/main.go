package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rmax-ai/docgraph/pkg/client"
	"github.com/rmax-ai/docgraph/pkg/explore"
	"github.com/rmax-ai/docgraph/pkg/layout"
	"github.com/rmax-ai/docgraph/pkg/tui"
)

type options struct {
	baseURL       string
	artifactRoute string
	docsPrefix    string
	theme         string
	siteURL       string
	logFile       string
}

func parseOptions(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("docgraph-tui", flag.ContinueOnError)
	fs.StringVar(&o.baseURL, "base-url", envOrDefault("DOCGRAPH_BASE_URL", client.DefaultEndpoint), "docgraph-d base URL")
	fs.StringVar(&o.artifactRoute, "artifact-route", envOrDefault("DOCGRAPH_ARTIFACT_ROUTE", client.DefaultArtifactRoute), "route of the raw artifact")
	fs.StringVar(&o.docsPrefix, "docs-prefix", envOrDefault("DOCGRAPH_DOCS_PREFIX", "docs"), "site route prefix")
	fs.StringVar(&o.theme, "theme", "auto", "color scheme: auto|dark|light")
	fs.StringVar(&o.siteURL, "site-url", os.Getenv("DOCGRAPH_SITE_URL"), "open activated documents in a browser under this URL")
	fs.StringVar(&o.logFile, "log-file", "", "write logs to this file")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	switch o.theme {
	case "auto", "dark", "light":
	default:
		return options{}, fmt.Errorf("unsupported theme: %s", o.theme)
	}
	o.docsPrefix = strings.Trim(o.docsPrefix, "/")
	return o, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func isDark(theme string) bool {
	switch theme {
	case "dark":
		return true
	case "light":
		return false
	default:
		return lipgloss.HasDarkBackground()
	}
}

// siteLink joins the site base with a document route.
func siteLink(base, route string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(route, "/")
}

func openerCommand(goos, url string) *exec.Cmd {
	switch goos {
	case "darwin":
		return exec.Command("open", url)
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return exec.Command("xdg-open", url)
	}
}

// browserNavigator opens routes under siteURL. Without a site URL it only
// reports the route back to the explorer.
func browserNavigator(siteURL string) tui.Navigator {
	return func(route string) tea.Cmd {
		return func() tea.Msg {
			if siteURL == "" {
				return tui.NavigatedMsg{Route: route}
			}
			err := openerCommand(runtime.GOOS, siteLink(siteURL, route)).Start()
			return tui.NavigatedMsg{Route: route, Err: err}
		}
	}
}

func newLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		// stdout and stderr belong to the terminal UI
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(slog.NewJSONHandler(f, nil)), func() { f.Close() }, nil
}

func main() {
	o, err := parseOptions(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "docgraph-tui: %v\n", err)
		os.Exit(2)
	}

	logger, closeLog, err := newLogger(o.logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "docgraph-tui: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	c := client.NewClient(o.baseURL)
	c.SetArtifactRoute(o.artifactRoute)
	palette := explore.DefaultPalette

	model := tui.New(tui.Options{
		Load: func(ctx context.Context) (*explore.Graph, error) {
			return c.FetchGraph(ctx, palette)
		},
		Navigate:   browserNavigator(o.siteURL),
		Palette:    palette,
		DocsPrefix: o.docsPrefix,
		Dark:       isDark(o.theme),
		Layout:     layout.DefaultConfig(),
		Logger:     logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		fmt.Printf("docgraph-tui: %v\n", err)
		os.Exit(1)
	}
}
