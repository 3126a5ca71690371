package build

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// DocumentsScanned is the document count of the latest build.
	DocumentsScanned = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "docgraph_documents_scanned",
			Help: "Documents found by the latest graph build",
		},
	)

	// EdgesEmitted is the deduplicated edge count of the latest build, by kind.
	EdgesEmitted = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "docgraph_edges_emitted",
			Help: "Edges emitted by the latest graph build",
		},
		[]string{"kind"},
	)

	// ArtifactBytes is the size of the last artifact written.
	ArtifactBytes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "docgraph_artifact_bytes",
			Help: "Size of the last written graph artifact",
		},
	)

	BuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "docgraph_build_duration_seconds",
			Help:    "Time spent building the graph",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		},
	)

	// BuildFailuresTotal counts aborted builds by stage (scan, read, write).
	BuildFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docgraph_build_failures_total",
			Help: "Builds aborted, by failing stage",
		},
		[]string{"stage"},
	)
)

func init() {
	prometheus.MustRegister(DocumentsScanned)
	prometheus.MustRegister(EdgesEmitted)
	prometheus.MustRegister(ArtifactBytes)
	prometheus.MustRegister(BuildDuration)
	prometheus.MustRegister(BuildFailuresTotal)
}
