// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/repotally/repotally/schema"
)

// SourceClient defines the fetch operations for one upstream API.
// This allows the pipeline to be tested without real network calls.
type SourceClient interface {
	// Kind returns the upstream this client talks to.
	Kind() schema.SourceKind

	// Metrics returns the metrics this client can produce for the given
	// repository spec, in fetch order. An empty slice means the repo is not
	// configured for this source (e.g. no pypi package name).
	Metrics(spec RepoSpec) []schema.MetricName

	// Fetch returns the freshly observed batch for one (repo, metric) pair.
	// Errors follow the schema taxonomy: NetworkError for transport and
	// non-200 failures, MissingCredentialError when the source needs a token,
	// ValidationError when the upstream payload cannot be parsed.
	Fetch(ctx context.Context, spec RepoSpec, metric schema.MetricName) ([]schema.Observation, error)
}

// StoredSeries identifies one persisted (repository, metric) timeseries.
type StoredSeries struct {
	Repo   string
	Metric schema.MetricName
}

// TimeseriesStore defines flat-file persistence for merged timeseries.
// One logical dataset per (repository, metric); single-writer semantics.
type TimeseriesStore interface {
	// Load returns the persisted series, or an empty one if no file exists.
	Load(repo string, metric schema.MetricName) (schema.Timeseries, error)

	// Save overwrites the series file. Write-then-rename, so a crashed run
	// never leaves a half-written file behind.
	Save(ts schema.Timeseries) error

	// List returns every stored (repo, metric) pair.
	List() ([]StoredSeries, error)
}

// ResponseCache defines durable key/value storage for raw API responses.
// This allows mocking the store for testing.
type ResponseCache interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// RunsStore defines the interface for tracking fetch runs and their
// per-metric results.
type RunsStore interface {
	// BeginRun creates a new run row and returns its unique ID.
	BeginRun(startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the run row with completion data.
	EndRun(runID int64, endTime time.Time, reposProcessed, observationsMerged int) error

	// RecordMetricResult stores the outcome of one (repo, metric) fetch.
	RecordMetricResult(runID int64, outcome schema.MetricOutcome) error

	// ListRuns returns the most recent runs, newest first.
	ListRuns(limit int) ([]schema.FetchRunRecord, error)

	// ListMetricResults returns the per-metric rows for one run.
	ListMetricResults(runID int64) ([]schema.MetricResultRecord, error)

	// GetStatus returns status information about the runs store.
	GetStatus() (schema.RunsStatus, error)

	// Close closes the underlying connection.
	Close() error
}

// StoreManager defines the interface for accessing the persistence stores.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetResponseCache() ResponseCache
	GetRunsStore() RunsStore
}
