package api

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ArtifactReloadsTotal counts artifact loads by result (ok, error, invalid).
	ArtifactReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docgraph_artifact_reloads_total",
			Help: "Artifact loads by result",
		},
		[]string{"result"},
	)

	ArtifactNodes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "docgraph_artifact_nodes",
			Help: "Nodes in the served artifact",
		},
	)

	ArtifactLinks = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "docgraph_artifact_links",
			Help: "Non-dangling edges in the served artifact",
		},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docgraph_http_requests_total",
			Help: "HTTP requests served, by method and status",
		},
		[]string{"method", "status"},
	)
)

func init() {
	prometheus.MustRegister(ArtifactReloadsTotal)
	prometheus.MustRegister(ArtifactNodes)
	prometheus.MustRegister(ArtifactLinks)
	prometheus.MustRegister(HTTPRequestsTotal)
}
