package api

import "github.com/rmax-ai/docgraph/pkg/explore"

// HealthResponse is returned by GET /v1/health.
type HealthResponse struct {
	Status   string `json:"status"` // ok, loading
	Nodes    int    `json:"nodes,omitempty"`
	Links    int    `json:"links,omitempty"`
	LoadedAt string `json:"loaded_at,omitempty"` // RFC3339
}

// SearchResponse is returned by GET /v1/search.
type SearchResponse struct {
	Query   string          `json:"query"`
	Results []*explore.Node `json:"results"`
}

// NeighborsResponse is returned by GET /v1/neighbors.
type NeighborsResponse struct {
	Node      *explore.Node      `json:"node"`
	Neighbors []explore.Neighbor `json:"neighbors"`
}
