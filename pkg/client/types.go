package client

// Doc is a document as returned by the daemon's read API.
type Doc struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Summary  string   `json:"summary,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	Cluster  string   `json:"cluster"`
}

// Neighbor is a document adjacent to the queried one.
type Neighbor struct {
	Node *Doc `json:"node"`
	// Kind is "link" or "hierarchy".
	Kind string `json:"kind"`
	// Direction is "out" for edges leaving the queried document, "in" otherwise.
	Direction string `json:"direction"`
}

// Neighborhood is the response of GET /v1/neighbors.
type Neighborhood struct {
	Node      *Doc       `json:"node"`
	Neighbors []Neighbor `json:"neighbors"`
}

// Status is the daemon health.
type Status struct {
	Status   string `json:"status"` // ok, loading
	Nodes    int    `json:"nodes,omitempty"`
	Links    int    `json:"links,omitempty"`
	LoadedAt string `json:"loaded_at,omitempty"`
}

type searchResponse struct {
	Query   string `json:"query"`
	Results []*Doc `json:"results"`
}
