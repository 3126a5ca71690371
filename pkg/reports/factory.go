package reports

import (
	"fmt"

	"github.com/rmax-ai/docgraph/pkg/explore"
	"github.com/rmax-ai/docgraph/pkg/graph"
)

// NewReportGenerator creates a report generator based on the report type.
func NewReportGenerator(reportType ReportType, g *graph.Graph, p explore.Palette) (Generator, error) {
	switch reportType {
	case ReportTypeDocuments:
		return NewDocumentReport(g, p), nil
	case ReportTypeLinks:
		return NewLinkReport(g, p), nil
	case ReportTypeClusters:
		return NewClusterReport(g, p), nil
	default:
		return nil, fmt.Errorf("unknown report type: %s", reportType)
	}
}
