package contract

import (
	"context"
	"time"

	"github.com/repotally/repotally/schema"
	"github.com/stretchr/testify/mock"
)

// MockSourceClient is a mock implementation of SourceClient for testing.
type MockSourceClient struct {
	mock.Mock
}

var _ SourceClient = &MockSourceClient{} // Compile-time check

// Kind implements the SourceClient interface.
func (m *MockSourceClient) Kind() schema.SourceKind {
	ret := m.Called()
	return ret.Get(0).(schema.SourceKind)
}

// Metrics implements the SourceClient interface.
func (m *MockSourceClient) Metrics(spec RepoSpec) []schema.MetricName {
	ret := m.Called(spec)
	metrics, _ := ret.Get(0).([]schema.MetricName)
	return metrics
}

// Fetch implements the SourceClient interface.
func (m *MockSourceClient) Fetch(ctx context.Context, spec RepoSpec, metric schema.MetricName) ([]schema.Observation, error) {
	ret := m.Called(ctx, spec, metric)
	obs, _ := ret.Get(0).([]schema.Observation)
	return obs, ret.Error(1)
}

// MockTimeseriesStore is a mock implementation of TimeseriesStore for testing.
type MockTimeseriesStore struct {
	mock.Mock
}

var _ TimeseriesStore = &MockTimeseriesStore{} // Compile-time check

// Load implements the TimeseriesStore interface.
func (m *MockTimeseriesStore) Load(repo string, metric schema.MetricName) (schema.Timeseries, error) {
	ret := m.Called(repo, metric)
	return ret.Get(0).(schema.Timeseries), ret.Error(1)
}

// Save implements the TimeseriesStore interface.
func (m *MockTimeseriesStore) Save(ts schema.Timeseries) error {
	ret := m.Called(ts)
	return ret.Error(0)
}

// List implements the TimeseriesStore interface.
func (m *MockTimeseriesStore) List() ([]StoredSeries, error) {
	ret := m.Called()
	series, _ := ret.Get(0).([]StoredSeries)
	return series, ret.Error(1)
}

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ StoreManager = &MockStoreManager{} // Compile-time check

// GetResponseCache implements the StoreManager interface.
func (m *MockStoreManager) GetResponseCache() ResponseCache {
	ret := m.Called()
	cache, _ := ret.Get(0).(ResponseCache)
	return cache
}

// GetRunsStore implements the StoreManager interface.
func (m *MockStoreManager) GetRunsStore() RunsStore {
	ret := m.Called()
	store, _ := ret.Get(0).(RunsStore)
	return store
}

// MockRunsStore is a mock implementation of RunsStore for testing.
type MockRunsStore struct {
	mock.Mock
}

var _ RunsStore = &MockRunsStore{} // Compile-time check

// BeginRun implements the RunsStore interface.
func (m *MockRunsStore) BeginRun(startTime time.Time, configParams map[string]any) (int64, error) {
	ret := m.Called(startTime, configParams)
	return ret.Get(0).(int64), ret.Error(1)
}

// EndRun implements the RunsStore interface.
func (m *MockRunsStore) EndRun(runID int64, endTime time.Time, reposProcessed, observationsMerged int) error {
	ret := m.Called(runID, endTime, reposProcessed, observationsMerged)
	return ret.Error(0)
}

// RecordMetricResult implements the RunsStore interface.
func (m *MockRunsStore) RecordMetricResult(runID int64, outcome schema.MetricOutcome) error {
	ret := m.Called(runID, outcome)
	return ret.Error(0)
}

// ListRuns implements the RunsStore interface.
func (m *MockRunsStore) ListRuns(limit int) ([]schema.FetchRunRecord, error) {
	ret := m.Called(limit)
	runs, _ := ret.Get(0).([]schema.FetchRunRecord)
	return runs, ret.Error(1)
}

// ListMetricResults implements the RunsStore interface.
func (m *MockRunsStore) ListMetricResults(runID int64) ([]schema.MetricResultRecord, error) {
	ret := m.Called(runID)
	results, _ := ret.Get(0).([]schema.MetricResultRecord)
	return results, ret.Error(1)
}

// GetStatus implements the RunsStore interface.
func (m *MockRunsStore) GetStatus() (schema.RunsStatus, error) {
	ret := m.Called()
	return ret.Get(0).(schema.RunsStatus), ret.Error(1)
}

// Close implements the RunsStore interface.
func (m *MockRunsStore) Close() error {
	ret := m.Called()
	return ret.Error(0)
}
