package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintRunSummary outputs the batch fetch summary, dispatching based on the output format configured.
func PrintRunSummary(summary schema.RunSummary, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := printJSONRunSummary(summary, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := printCSVRunSummary(summary, cfg); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRunSummaryTable(summary, cfg, duration, w)
		}, "Wrote run summary table")
	}
	return nil
}

// printJSONRunSummary handles opening the file and calling the JSON writer.
func printJSONRunSummary(summary schema.RunSummary, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSONRunSummary(w, summary)
	}, "Wrote JSON run summary")
}

// printCSVRunSummary handles opening the file and calling the CSV writer.
func printCSVRunSummary(summary schema.RunSummary, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		csvWriter := csv.NewWriter(w)
		defer csvWriter.Flush()
		return writeCSVRunSummary(csvWriter, summary)
	}, "Wrote CSV run summary")
}

// writeRunSummaryTable generates and writes the human-readable table.
func writeRunSummaryTable(summary schema.RunSummary, cfg *contract.Config, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	// 1. Define Headers
	headers := []string{"Repo", "Metric", "Source", "Status", "Points"}
	if summary.Skipped() > 0 {
		headers = append(headers, "Detail")
	}
	table.Header(headers)

	// 2. Configure Alignment
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	nameWidth := getMaxTableNameWidth(cfg)
	var data [][]string
	for _, o := range summary.Outcomes {
		row := []string{
			contract.TruncateName(o.Repo, nameWidth),
			contract.TruncateName(string(o.Metric), nameWidth),
			string(o.Source),
			contract.GetColorStatus(o.Status),
			strconv.Itoa(o.PointsMerged),
		}
		if summary.Skipped() > 0 {
			row = append(row, o.Detail)
		}
		data = append(data, row)
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	// Summary footer
	if _, err := fmt.Fprintf(writer, "Fetched %d, skipped %d, merged %d points across %d repos\n",
		summary.Fetched(), summary.Skipped(), summary.TotalPoints(), len(summary.Repos())); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Fetch run completed in %v. Cache backend: %s\n", duration, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}
