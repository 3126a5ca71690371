package reports

import (
	"context"
	"io"
)

type ReportType string

const (
	ReportTypeDocuments ReportType = "documents"
	ReportTypeLinks     ReportType = "links"
	ReportTypeClusters  ReportType = "clusters"
)

type ReportFormat string

const (
	ReportFormatCSV  ReportFormat = "csv"
	ReportFormatJSON ReportFormat = "json"
)

// ReportParams narrows a report. Cluster keeps only rows whose document (or
// link source) belongs to that cluster.
type ReportParams struct {
	Format  ReportFormat
	Cluster string
}

type Generator interface {
	Generate(ctx context.Context, params ReportParams) (io.Reader, error)
}

// table is the format-independent shape every report produces.
type table struct {
	headers []string
	rows    [][]any
}
