package outwriter

import (
	"encoding/csv"
	"io"

	"github.com/repotally/repotally/schema"
)

// writeJSONTimeseries marshals the schema.Timeseries to JSON and writes it.
func writeJSONTimeseries(w io.Writer, ts schema.Timeseries) error {
	return writeJSON(w, ts)
}

// writeCSVTimeseries writes the series in the same date,value layout the
// flat-file store uses, so the output can be re-imported directly.
func writeCSVTimeseries(w *csv.Writer, ts schema.Timeseries, fmtFloat func(float64) string) error {
	if err := w.Write([]string{"date", "value"}); err != nil {
		return err
	}

	for _, p := range ts.Points {
		row := []string{
			p.Date.Format(schema.DateFormat),
			fmtFloat(p.Value),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
