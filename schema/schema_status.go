package schema

import "time"

// CacheStatus holds status information about the response cache store.
type CacheStatus struct {
	Backend         string
	Connected       bool
	TotalEntries    int64
	LastEntryTime   time.Time
	OldestEntryTime time.Time
	TableSizeBytes  int64
}

// RunsStatus holds status information about the run-history store.
type RunsStatus struct {
	Backend       string
	Connected     bool
	TotalRuns     int64
	TotalResults  int64
	LastRunTime   time.Time
	OldestRunTime time.Time
}

// FetchRunRecord represents a row from the repotally_fetch_runs table.
type FetchRunRecord struct {
	RunID              int64
	StartTime          time.Time
	EndTime            *time.Time
	RunDurationMs      *int32
	ReposProcessed     int32
	ObservationsMerged int32
	ConfigParams       *string
}

// MetricResultRecord represents a row from the repotally_metric_results table.
type MetricResultRecord struct {
	RunID        int64
	Repo         string
	Metric       string
	Status       string
	PointsMerged int32
	FetchedAt    time.Time
	Detail       *string
}
