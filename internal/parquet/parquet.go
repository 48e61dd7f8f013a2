// Package parquet provides data structures and functions for exporting
// repotally timeseries and run-history data to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/repotally/repotally/schema"
)

// FetchRun represents a single fetch run with metadata.
// This struct maps to the repotally_fetch_runs database table.
type FetchRun struct {
	// RunID is the unique identifier for this fetch run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// ReposProcessed is the number of repositories processed in this run
	ReposProcessed int32 `parquet:"repos_processed,snappy"`

	// ObservationsMerged is the number of observations merged across all series
	ObservationsMerged int32 `parquet:"observations_merged,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// MetricResult represents the outcome of one (repo, metric) fetch within a run.
// This struct maps to the repotally_metric_results database table.
type MetricResult struct {
	// RunID references the parent fetch run
	RunID int64 `parquet:"run_id,snappy"`

	// RepoName is the configured repository name
	RepoName string `parquet:"repo_name,snappy"`

	// MetricName identifies the tracked metric
	MetricName string `parquet:"metric_name,snappy"`

	// FetchStatus is "fetched" or "skipped"
	FetchStatus string `parquet:"fetch_status,snappy"`

	// PointsMerged is the number of observations merged for this metric
	PointsMerged int32 `parquet:"points_merged,snappy"`

	// FetchedAt is when the fetch was attempted
	FetchedAt time.Time `parquet:"fetched_at,snappy"`

	// Detail carries the skip reason (nullable)
	Detail *string `parquet:"detail,optional,snappy"`
}

// ObservationRow is one dated metric value for a repository, flattened for
// columnar export of stored timeseries.
type ObservationRow struct {
	// RepoName is the configured repository name
	RepoName string `parquet:"repo_name,snappy"`

	// MetricName identifies the tracked metric
	MetricName string `parquet:"metric_name,snappy"`

	// Date is the observation date, midnight UTC
	Date time.Time `parquet:"date,snappy"`

	// Value is the metric value on that date
	Value float64 `parquet:"value,snappy"`
}

// WriteFetchRunsParquet writes a slice of FetchRun structs to a Parquet file.
func WriteFetchRunsParquet(data []FetchRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteMetricResultsParquet writes a slice of MetricResult structs to a Parquet file.
func WriteMetricResultsParquet(data []MetricResult, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteObservationsParquet writes a slice of ObservationRow structs to a Parquet file.
func WriteObservationsParquet(data []ObservationRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet creates the output file and writes all records with a writer
// whose schema is inferred from the struct tags.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// ConvertFetchRunRecords converts schema.FetchRunRecord to FetchRun for Parquet export.
func ConvertFetchRunRecords(records []schema.FetchRunRecord) []FetchRun {
	result := make([]FetchRun, len(records))
	for i, record := range records {
		result[i] = FetchRun{
			RunID:              record.RunID,
			StartTime:          record.StartTime,
			EndTime:            record.EndTime,
			RunDurationMs:      record.RunDurationMs,
			ReposProcessed:     record.ReposProcessed,
			ObservationsMerged: record.ObservationsMerged,
			ConfigParams:       record.ConfigParams,
		}
	}
	return result
}

// ConvertMetricResultRecords converts schema.MetricResultRecord to MetricResult for Parquet export.
func ConvertMetricResultRecords(records []schema.MetricResultRecord) []MetricResult {
	result := make([]MetricResult, len(records))
	for i, record := range records {
		result[i] = MetricResult{
			RunID:        record.RunID,
			RepoName:     record.Repo,
			MetricName:   record.Metric,
			FetchStatus:  record.Status,
			PointsMerged: record.PointsMerged,
			FetchedAt:    record.FetchedAt,
			Detail:       record.Detail,
		}
	}
	return result
}

// ConvertTimeseries flattens stored timeseries into ObservationRow records.
func ConvertTimeseries(series []schema.Timeseries) []ObservationRow {
	var result []ObservationRow
	for _, ts := range series {
		for _, p := range ts.Points {
			result = append(result, ObservationRow{
				RepoName:   ts.Repo,
				MetricName: string(ts.Metric),
				Date:       p.Date,
				Value:      p.Value,
			})
		}
	}
	return result
}
