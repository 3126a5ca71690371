package explore

import "strings"

// Cluster is a display group assigned from an identifier prefix.
type Cluster struct {
	Key   string
	Label string
	Light string
	Dark  string
}

// Color returns the cluster color for the active color mode.
func (c Cluster) Color(dark bool) string {
	if dark {
		return c.Dark
	}
	return c.Light
}

// Palette is an ordered cluster list plus the catch-all key.
type Palette struct {
	Clusters []Cluster
	Fallback string
}

// DefaultPalette groups the top-level sections of the documentation site.
var DefaultPalette = Palette{
	Clusters: []Cluster{
		{Key: "business-planning", Label: "Strategy", Light: "#0d9488", Dark: "#2dd4bf"},
		{Key: "app-documentation", Label: "Product", Light: "#4f46e5", Dark: "#818cf8"},
		{Key: "infrastructure", Label: "Infra", Light: "#d97706", Dark: "#fbbf24"},
		{Key: "projects", Label: "Projects", Light: "#059669", Dark: "#34d399"},
		{Key: "governance-and-legal", Label: "Governance", Light: "#e11d48", Dark: "#fb7185"},
		{Key: "compliance", Label: "Compliance", Light: "#7c3aed", Dark: "#a78bfa"},
		{Key: "intro", Label: "Intro", Light: "#6366f1", Dark: "#a5b4fc"},
	},
	Fallback: "intro",
}

// Classify returns the key of the cluster with the longest prefix of id, or
// the fallback key when no prefix matches.
func (p Palette) Classify(id string) string {
	best := ""
	for _, c := range p.Clusters {
		if strings.HasPrefix(id, c.Key) && len(c.Key) > len(best) {
			best = c.Key
		}
	}
	if best == "" {
		return p.Fallback
	}
	return best
}

// Cluster looks up key, falling back to the catch-all cluster.
func (p Palette) Cluster(key string) Cluster {
	for _, c := range p.Clusters {
		if c.Key == key {
			return c
		}
	}
	for _, c := range p.Clusters {
		if c.Key == p.Fallback {
			return c
		}
	}
	return Cluster{Key: key, Label: key}
}
