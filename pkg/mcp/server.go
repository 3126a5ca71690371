// Package mcp exposes the knowledge graph to agents over the Model Context
// Protocol, backed by a running docgraph-d.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rmax-ai/docgraph/pkg/client"
	"github.com/rmax-ai/docgraph/pkg/explore"
)

const (
	artifactURI = "docgraph://artifact"
	promptName  = "docgraph-aware"

	defaultLimit = 10
	maxLimit     = 50
)

// Server adapts docgraph-d to the Model Context Protocol.
type Server struct {
	mcpServer  *server.MCPServer
	apiClient  *client.Client
	docsPrefix string
}

// NewServer creates a new MCP server instance. docsPrefix is used to report
// the site route of each document.
func NewServer(apiURL, docsPrefix string) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"docgraph",
			"1.0.0",
		),
		apiClient:  client.NewClient(apiURL),
		docsPrefix: docsPrefix,
	}
	s.registerResources()
	s.registerTools()
	s.registerPrompts()
	return s
}

// Serve starts the MCP server on stdio.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(
		artifactURI,
		"Documentation Knowledge Graph",
		mcp.WithResourceDescription("Compact graph of every document: n = [id, title, summary, keywords], e = [source, target, l|h]"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadArtifact)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(
		"search_docs",
		mcp.WithDescription("Search documents by title, id, summary and bold keywords. Returns ids, titles and routes, best match first."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Case-insensitive text to look for")),
		mcp.WithNumber("limit", mcp.Description("Maximum results (default 10, max 50)")),
	), s.handleSearchDocs)

	s.mcpServer.AddTool(mcp.NewTool(
		"get_doc",
		mcp.WithDescription("Describe one document and list the documents it links to, is linked from, and its place in the hierarchy."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Document id, e.g. 'infrastructure/dns'")),
	), s.handleGetDoc)
}

func (s *Server) registerPrompts() {
	s.mcpServer.AddPrompt(mcp.NewPrompt(
		promptName,
		mcp.WithPromptDescription("Explains how the documentation graph is organized and how to navigate it"),
	), s.handleGetPrompt)
}

func (s *Server) handleReadArtifact(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := s.apiClient.FetchArtifact(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch artifact: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleSearchDocs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(mcp.ParseString(request, "query", ""))
	if query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}
	limit := int(mcp.ParseFloat64(request, "limit", defaultLimit))
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	docs, err := s.apiClient.Search(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API error: %v", err)), nil
	}
	if len(docs) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No documents match %q.", query)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d result(s) for %q:\n", len(docs), query)
	for _, d := range docs {
		fmt.Fprintf(&b, "- %s (%s) %s", d.Title, d.ID, explore.Route(s.docsPrefix, d.ID))
		if d.Summary != "" {
			fmt.Fprintf(&b, "\n  %s", d.Summary)
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

// docView is the get_doc result.
type docView struct {
	*client.Doc
	Route    string   `json:"route"`
	Parent   *docRef  `json:"parent,omitempty"`
	Children []docRef `json:"children,omitempty"`
	LinksTo  []docRef `json:"links_to,omitempty"`
	LinkedBy []docRef `json:"linked_by,omitempty"`
}

type docRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func (s *Server) handleGetDoc(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(mcp.ParseString(request, "id", ""))
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	nb, err := s.apiClient.Neighbors(ctx, id)
	if errors.Is(err, client.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("no document with id %q; use search_docs to find ids", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API error: %v", err)), nil
	}

	view := docView{Doc: nb.Node, Route: explore.Route(s.docsPrefix, id)}
	for _, n := range nb.Neighbors {
		ref := docRef{ID: n.Node.ID, Title: n.Node.Title}
		switch {
		case n.Kind == "hierarchy" && n.Direction == explore.Incoming:
			view.Parent = &ref
		case n.Kind == "hierarchy":
			view.Children = append(view.Children, ref)
		case n.Direction == explore.Outgoing:
			view.LinksTo = append(view.LinksTo, ref)
		default:
			view.LinkedBy = append(view.LinkedBy, ref)
		}
	}

	data, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleGetPrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Name
	if name != promptName {
		return nil, fmt.Errorf("prompt not found: %s", name)
	}

	promptText := `You have access to a knowledge graph of the project documentation.

Concepts:
- Document id: the path of a page without its extension, e.g. 'infrastructure/dns'.
- Link edge: one page references another in its text.
- Hierarchy edge: a section index page contains the page.
- Cluster: the top-level area a page belongs to (Strategy, Product, Infra, ...).

Use 'search_docs' to find candidate pages, then 'get_doc' to read a page's
summary and walk to its parent, children and linked pages. Cite pages by route.
`

	return mcp.NewGetPromptResult(
		promptName,
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(promptText)),
		},
	), nil
}
