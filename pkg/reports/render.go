package reports

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
)

func render(format ReportFormat, t table) (io.Reader, error) {
	switch format {
	case "", ReportFormatCSV:
		return renderCSV(t)
	case ReportFormatJSON:
		return renderJSON(t)
	default:
		return nil, fmt.Errorf("unknown report format: %s", format)
	}
}

func renderCSV(t table) (io.Reader, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	if err := writer.Write(t.headers); err != nil {
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}

	record := make([]string, len(t.headers))
	for _, row := range t.rows {
		for i, v := range row {
			record[i] = fmt.Sprint(v)
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush writer: %w", err)
	}
	return buf, nil
}

func renderJSON(t table) (io.Reader, error) {
	out := make([]map[string]any, 0, len(t.rows))
	for _, row := range t.rows {
		obj := make(map[string]any, len(t.headers))
		for i, h := range t.headers {
			obj[h] = row[i]
		}
		out = append(out, obj)
	}

	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return buf, nil
}
