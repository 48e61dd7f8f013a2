package iocache

import (
	"errors"
	"fmt"

	"github.com/repotally/repotally/internal/parquet"
)

// ExecuteRunsExport performs the actual export of run-history data to Parquet files.
func ExecuteRunsExport(outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	// Get the runs store
	store := Manager.GetRunsStore()
	if store == nil {
		return errors.New("run tracking is not enabled. Set --runs-backend to a database backend")
	}

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get runs status: %w", err)
	}

	if status.TotalRuns == 0 {
		return errors.New("no run history found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total fetch runs: %d\n", status.TotalRuns)
	fmt.Printf("Total metric results: %d\n", status.TotalResults)

	// Retrieve all fetch runs
	runs, err := store.ListRuns(0)
	if err != nil {
		return fmt.Errorf("failed to retrieve fetch runs: %w", err)
	}

	// Retrieve the per-metric rows for each run
	var results []parquet.MetricResult
	for _, run := range runs {
		records, err := store.ListMetricResults(run.RunID)
		if err != nil {
			return fmt.Errorf("failed to retrieve metric results for run %d: %w", run.RunID, err)
		}
		results = append(results, parquet.ConvertMetricResultRecords(records)...)
	}

	// Write fetch runs to Parquet
	runsFile := outputFile + ".fetch_runs.parquet"
	if err := parquet.WriteFetchRunsParquet(parquet.ConvertFetchRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write fetch runs: %w", err)
	}
	fmt.Printf("Exported %d fetch runs to: %s\n", len(runs), runsFile)

	// Write metric results to Parquet
	resultsFile := outputFile + ".metric_results.parquet"
	if err := parquet.WriteMetricResultsParquet(results, resultsFile); err != nil {
		return fmt.Errorf("failed to write metric results: %w", err)
	}
	fmt.Printf("Exported %d metric results to: %s\n", len(results), resultsFile)

	return nil
}
