// Package client talks to docgraph-d: it fetches the artifact and queries the
// read API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rmax-ai/docgraph/pkg/explore"
)

// DefaultEndpoint is used when NewClient gets an empty endpoint.
const DefaultEndpoint = "http://127.0.0.1:8090"

// DefaultArtifactRoute is the artifact path relative to the endpoint.
const DefaultArtifactRoute = "/knowledge-graph.json"

// ErrNotFound is returned for unknown documents.
var ErrNotFound = errors.New("document not found")

// StatusError is returned for unexpected HTTP statuses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.Code, e.Body)
}

// Client is the docgraph-d client.
type Client struct {
	endpoint      string
	artifactRoute string
	http          *http.Client
	// download has no timeout; artifact fetches are bounded by ctx only.
	download *http.Client
}

// NewClient creates a new client.
// endpoint defaults to DefaultEndpoint if empty.
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint:      strings.TrimRight(endpoint, "/"),
		artifactRoute: DefaultArtifactRoute,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		download: &http.Client{},
	}
}

// SetArtifactRoute changes the artifact path (relative to the endpoint).
func (c *Client) SetArtifactRoute(route string) {
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	c.artifactRoute = route
}

// ArtifactURL returns the full artifact URL.
func (c *Client) ArtifactURL() string {
	return c.endpoint + c.artifactRoute
}

// FetchArtifact downloads the raw artifact. It does not retry.
func (c *Client) FetchArtifact(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ArtifactURL(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.download.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}
	return io.ReadAll(resp.Body)
}

// FetchGraph downloads the artifact and builds the runtime graph.
func (c *Client) FetchGraph(ctx context.Context, p explore.Palette) (*explore.Graph, error) {
	data, err := c.FetchArtifact(ctx)
	if err != nil {
		return nil, err
	}
	return explore.Load(data, p)
}

// Ping checks the health of the daemon.
func (c *Client) Ping(ctx context.Context) (Status, error) {
	var status Status
	if err := c.getJSON(ctx, "/v1/health", &status); err != nil {
		return Status{}, err
	}
	return status, nil
}

// Search returns up to limit documents matching query, best first.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]*Doc, error) {
	q := url.Values{}
	q.Set("q", query)
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}

	var resp searchResponse
	if err := c.getJSON(ctx, "/v1/search?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Neighbors returns the document and its adjacent documents.
func (c *Client) Neighbors(ctx context.Context, id string) (Neighborhood, error) {
	q := url.Values{}
	q.Set("id", id)

	var resp Neighborhood
	if err := c.getJSON(ctx, "/v1/neighbors?"+q.Encode(), &resp); err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return Neighborhood{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return Neighborhood{}, err
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}
