package core

import (
	"context"
	"errors"
	"testing"

	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/internal/tsfile"
	"github.com/repotally/repotally/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testRepoSpec() contract.RepoSpec {
	return contract.RepoSpec{Name: "reV", GitOwner: "NREL", GitRepo: "reV", PypiName: "NREL-reV"}
}

func TestRunFetch(t *testing.T) {
	spec := testRepoSpec()
	cfg := &contract.Config{Repos: []contract.RepoSpec{spec}}

	store, err := tsfile.NewStore(t.TempDir())
	require.NoError(t, err)

	client := &contract.MockSourceClient{}
	client.On("Kind").Return(schema.GithubSource)
	client.On("Metrics", spec).Return([]schema.MetricName{schema.MetricStargazers, schema.MetricViews})
	client.On("Fetch", mock.Anything, spec, schema.MetricStargazers).Return([]schema.Observation{
		{Repo: "reV", Metric: schema.MetricStargazers, Date: day(2024, 6, 1), Value: 100},
		{Repo: "reV", Metric: schema.MetricStargazers, Date: day(2024, 6, 2), Value: 105},
	}, nil)
	client.On("Fetch", mock.Anything, spec, schema.MetricViews).Return(nil,
		&schema.NetworkError{URL: "https://api.github.com", Status: 403})

	summary, err := RunFetch(context.Background(), cfg, []contract.SourceClient{client}, store, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Fetched())
	assert.Equal(t, 1, summary.Skipped())
	assert.Equal(t, 2, summary.TotalPoints())
	assert.Equal(t, []string{"reV"}, summary.Repos())

	require.Len(t, summary.Outcomes, 2)
	assert.Equal(t, schema.FetchedStatus, summary.Outcomes[0].Status)
	assert.Equal(t, schema.SkippedStatus, summary.Outcomes[1].Status)
	assert.Equal(t, "rate limited", summary.Outcomes[1].Detail)

	// Successful fetch must be persisted
	ts, err := store.Load("reV", schema.MetricStargazers)
	require.NoError(t, err)
	assert.Equal(t, 2, ts.Len())

	client.AssertExpectations(t)
}

func TestRunFetchMetricFilter(t *testing.T) {
	spec := testRepoSpec()
	cfg := &contract.Config{
		Repos:   []contract.RepoSpec{spec},
		Metrics: []schema.MetricName{schema.MetricForks},
	}

	store, err := tsfile.NewStore(t.TempDir())
	require.NoError(t, err)

	client := &contract.MockSourceClient{}
	client.On("Kind").Return(schema.GithubSource)
	client.On("Metrics", spec).Return([]schema.MetricName{schema.MetricStargazers, schema.MetricForks})
	client.On("Fetch", mock.Anything, spec, schema.MetricForks).Return([]schema.Observation{
		{Repo: "reV", Metric: schema.MetricForks, Date: day(2024, 6, 1), Value: 12},
	}, nil)

	summary, err := RunFetch(context.Background(), cfg, []contract.SourceClient{client}, store, nil)
	require.NoError(t, err)

	// Filtered metrics never appear in the summary
	require.Len(t, summary.Outcomes, 1)
	assert.Equal(t, schema.MetricForks, summary.Outcomes[0].Metric)
	assert.Equal(t, schema.FetchedStatus, summary.Outcomes[0].Status)
	client.AssertNotCalled(t, "Fetch", mock.Anything, spec, schema.MetricStargazers)
}

func TestRunFetchMergesWithExisting(t *testing.T) {
	spec := testRepoSpec()
	cfg := &contract.Config{Repos: []contract.RepoSpec{spec}}

	store, err := tsfile.NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Save(schema.Timeseries{
		Repo:   "reV",
		Metric: schema.MetricStargazers,
		Points: []schema.Point{
			{Date: day(2024, 6, 1), Value: 90},
			{Date: day(2024, 6, 2), Value: 95},
		},
	}))

	client := &contract.MockSourceClient{}
	client.On("Kind").Return(schema.GithubSource)
	client.On("Metrics", spec).Return([]schema.MetricName{schema.MetricStargazers})
	client.On("Fetch", mock.Anything, spec, schema.MetricStargazers).Return([]schema.Observation{
		{Repo: "reV", Metric: schema.MetricStargazers, Date: day(2024, 6, 2), Value: 100},
		{Repo: "reV", Metric: schema.MetricStargazers, Date: day(2024, 6, 3), Value: 104},
	}, nil)

	summary, err := RunFetch(context.Background(), cfg, []contract.SourceClient{client}, store, nil)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Fetched())

	ts, err := store.Load("reV", schema.MetricStargazers)
	require.NoError(t, err)
	require.Equal(t, 3, ts.Len())
	// Freshly fetched value wins for the overlapping date
	assert.Equal(t, 100.0, ts.Points[1].Value)
	assert.Equal(t, 104.0, ts.Points[2].Value)
}

func TestRunFetchMetricMismatchSkips(t *testing.T) {
	spec := testRepoSpec()
	cfg := &contract.Config{Repos: []contract.RepoSpec{spec}}

	store, err := tsfile.NewStore(t.TempDir())
	require.NoError(t, err)

	// Batch tagged with the wrong metric must not reach storage
	client := &contract.MockSourceClient{}
	client.On("Kind").Return(schema.GithubSource)
	client.On("Metrics", spec).Return([]schema.MetricName{schema.MetricStargazers})
	client.On("Fetch", mock.Anything, spec, schema.MetricStargazers).Return([]schema.Observation{
		{Repo: "reV", Metric: schema.MetricViews, Date: day(2024, 6, 1), Value: 100},
	}, nil)

	summary, err := RunFetch(context.Background(), cfg, []contract.SourceClient{client}, store, nil)
	require.NoError(t, err)

	require.Len(t, summary.Outcomes, 1)
	assert.Equal(t, schema.SkippedStatus, summary.Outcomes[0].Status)
	assert.Contains(t, summary.Outcomes[0].Detail, "merge failed")

	ts, err := store.Load("reV", schema.MetricStargazers)
	require.NoError(t, err)
	assert.True(t, ts.IsEmpty())
}

func TestRunFetchSaveFailureSkips(t *testing.T) {
	spec := testRepoSpec()
	cfg := &contract.Config{Repos: []contract.RepoSpec{spec}}

	store := &contract.MockTimeseriesStore{}
	store.On("Load", "reV", schema.MetricStargazers).Return(
		schema.Timeseries{Repo: "reV", Metric: schema.MetricStargazers}, nil)
	store.On("Save", mock.Anything).Return(errors.New("disk full"))

	client := &contract.MockSourceClient{}
	client.On("Kind").Return(schema.GithubSource)
	client.On("Metrics", spec).Return([]schema.MetricName{schema.MetricStargazers})
	client.On("Fetch", mock.Anything, spec, schema.MetricStargazers).Return([]schema.Observation{
		{Repo: "reV", Metric: schema.MetricStargazers, Date: day(2024, 6, 1), Value: 100},
	}, nil)

	summary, err := RunFetch(context.Background(), cfg, []contract.SourceClient{client}, store, nil)
	require.NoError(t, err)

	// A failed save downgrades to a skipped outcome; the run keeps going
	require.Len(t, summary.Outcomes, 1)
	assert.Equal(t, schema.SkippedStatus, summary.Outcomes[0].Status)
	assert.Contains(t, summary.Outcomes[0].Detail, "save failed")
	assert.Equal(t, 0, summary.TotalPoints())
}

func TestRunFetchRecordsRuns(t *testing.T) {
	spec := testRepoSpec()
	cfg := &contract.Config{Repos: []contract.RepoSpec{spec}}

	store, err := tsfile.NewStore(t.TempDir())
	require.NoError(t, err)

	client := &contract.MockSourceClient{}
	client.On("Kind").Return(schema.GithubSource)
	client.On("Metrics", spec).Return([]schema.MetricName{schema.MetricStargazers})
	client.On("Fetch", mock.Anything, spec, schema.MetricStargazers).Return([]schema.Observation{
		{Repo: "reV", Metric: schema.MetricStargazers, Date: day(2024, 6, 1), Value: 100},
	}, nil)

	runs := &contract.MockRunsStore{}
	runs.On("BeginRun", mock.Anything, mock.Anything).Return(int64(7), nil)
	runs.On("RecordMetricResult", int64(7), mock.Anything).Return(nil)
	runs.On("EndRun", int64(7), mock.Anything, 1, 1).Return(nil)

	_, err = RunFetch(context.Background(), cfg, []contract.SourceClient{client}, store, runs)
	require.NoError(t, err)
	runs.AssertExpectations(t)
}

func TestRunFetchContinuesWhenRunTrackingFails(t *testing.T) {
	spec := testRepoSpec()
	cfg := &contract.Config{Repos: []contract.RepoSpec{spec}}

	store, err := tsfile.NewStore(t.TempDir())
	require.NoError(t, err)

	client := &contract.MockSourceClient{}
	client.On("Kind").Return(schema.GithubSource)
	client.On("Metrics", spec).Return([]schema.MetricName{schema.MetricStargazers})
	client.On("Fetch", mock.Anything, spec, schema.MetricStargazers).Return([]schema.Observation{
		{Repo: "reV", Metric: schema.MetricStargazers, Date: day(2024, 6, 1), Value: 100},
	}, nil)

	runs := &contract.MockRunsStore{}
	runs.On("BeginRun", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))

	summary, err := RunFetch(context.Background(), cfg, []contract.SourceClient{client}, store, runs)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Fetched())
	runs.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSkipDetail(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"rate limited", &schema.NetworkError{URL: "u", Status: 429}, "rate limited"},
		{"server error", &schema.NetworkError{URL: "u", Status: 502}, "network failure (502)"},
		{"unreachable", &schema.NetworkError{URL: "u", Err: errors.New("dial tcp")}, "network failure"},
		{"missing token", &schema.MissingCredentialError{Var: "GITHUB_TOKEN"}, "missing credential"},
		{"bad payload", &schema.ValidationError{Field: "date", Value: "junk", Reason: "not a valid YYYY-MM-DD date"}, `bad payload: invalid date "junk": not a valid YYYY-MM-DD date`},
		{"other", errors.New("boom"), "boom"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, skipDetail(tc.err))
		})
	}
}
