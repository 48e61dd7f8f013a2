package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintTimeseries outputs one stored timeseries, dispatching based on the output format configured.
func PrintTimeseries(ts schema.Timeseries, cfg *contract.Config) error {
	fmtFloat := createFloatFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := printJSONTimeseries(ts, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := printCSVTimeseries(ts, cfg, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTimeseriesTable(ts, fmtFloat, w)
		}, "Wrote timeseries table")
	}
	return nil
}

// printJSONTimeseries handles opening the file and calling the JSON writer.
func printJSONTimeseries(ts schema.Timeseries, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSONTimeseries(w, ts)
	}, "Wrote JSON timeseries")
}

// printCSVTimeseries handles opening the file and calling the CSV writer.
func printCSVTimeseries(ts schema.Timeseries, cfg *contract.Config, fmtFloat func(float64) string) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		csvWriter := csv.NewWriter(w)
		defer csvWriter.Flush()
		return writeCSVTimeseries(csvWriter, ts, fmtFloat)
	}, "Wrote CSV timeseries")
}

// writeTimeseriesTable prints the series in a two-column table.
func writeTimeseriesTable(ts schema.Timeseries, fmtFloat func(float64) string, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	table.Header([]string{"Date", "Value"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, p := range ts.Points {
		data = append(data, []string{
			p.Date.Format(schema.DateFormat),
			fmtFloat(p.Value),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "%s/%s: %d points\n", ts.Repo, ts.Metric, ts.Len()); err != nil {
		return err
	}
	return nil
}
