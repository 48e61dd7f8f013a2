package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/schema"
)

// writeJSONRunSummary marshals the schema.RunSummary to JSON and writes it.
func writeJSONRunSummary(w io.Writer, summary schema.RunSummary) error {
	return writeJSON(w, summary)
}

// writeCSVRunSummary writes one row per (repo, metric) outcome to a CSV writer.
func writeCSVRunSummary(w *csv.Writer, summary schema.RunSummary) error {
	// 1. Write Header Row
	header := []string{
		"repo",
		"metric",
		"source",
		"status",
		"points_merged",
		"detail",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	// 2. Write Data Rows
	for _, o := range summary.Outcomes {
		row := []string{
			o.Repo,
			string(o.Metric),
			string(o.Source),
			contract.GetPlainStatus(o.Status),
			strconv.Itoa(o.PointsMerged),
			o.Detail,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
