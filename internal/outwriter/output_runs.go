package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintRunHistory outputs stored fetch-run records, dispatching based on the output format configured.
func PrintRunHistory(runs []schema.FetchRunRecord, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := printJSONRunHistory(runs, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := printCSVRunHistory(runs, cfg); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRunHistoryTable(runs, w)
		}, "Wrote run history table")
	}
	return nil
}

// printJSONRunHistory handles opening the file and calling the JSON writer.
func printJSONRunHistory(runs []schema.FetchRunRecord, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSONRunHistory(w, runs)
	}, "Wrote JSON run history")
}

// printCSVRunHistory handles opening the file and calling the CSV writer.
func printCSVRunHistory(runs []schema.FetchRunRecord, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		csvWriter := csv.NewWriter(w)
		defer csvWriter.Flush()
		return writeCSVRunHistory(csvWriter, runs)
	}, "Wrote CSV run history")
}

// writeRunHistoryTable generates and writes the human-readable table.
func writeRunHistoryTable(runs []schema.FetchRunRecord, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	table.Header([]string{"Run", "Start", "Duration", "Repos", "Points"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, r := range runs {
		duration := "-"
		if r.RunDurationMs != nil {
			duration = fmt.Sprintf("%dms", *r.RunDurationMs)
		}
		data = append(data, []string{
			strconv.FormatInt(r.RunID, 10),
			r.StartTime.Format("2006-01-02 15:04:05"),
			duration,
			strconv.Itoa(int(r.ReposProcessed)),
			strconv.Itoa(int(r.ObservationsMerged)),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "Showing %d fetch runs\n", len(runs)); err != nil {
		return err
	}
	return nil
}
