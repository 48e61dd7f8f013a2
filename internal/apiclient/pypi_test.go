package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pypiSpec = contract.RepoSpec{Name: "rev", GitOwner: "nrel", GitRepo: "rev", PypiName: "nrel-rev"}

func newTestPypi(t *testing.T, handler http.Handler) *Pypi {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := NewPypi(srv.Client())
	p.baseURL = srv.URL
	p.now = func() time.Time { return fixedNow }
	return p
}

func TestPypi_Daily(t *testing.T) {
	p := newTestPypi(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/packages/nrel-rev/overall", r.URL.Path)
		assert.Equal(t, "false", r.URL.Query().Get("mirrors"))
		fmt.Fprint(w, `{"data":[
			{"category":"without_mirrors","date":"2024-06-13","downloads":120},
			{"category":"without_mirrors","date":"2024-06-14","downloads":95},
			{"category":"with_mirrors","date":"2024-06-14","downloads":999}]}`)
	}))

	obs, err := p.Fetch(context.Background(), pypiSpec, schema.MetricPypiDaily)
	require.NoError(t, err)
	require.Len(t, obs, 2)

	byDate := make(map[string]float64)
	for _, o := range obs {
		assert.Equal(t, schema.MetricPypiDaily, o.Metric)
		byDate[o.Date.Format(schema.DateFormat)] = o.Value
	}
	// Mirror rows are excluded.
	assert.Equal(t, 120.0, byDate["2024-06-13"])
	assert.Equal(t, 95.0, byDate["2024-06-14"])
}

func TestPypi_RollingCumulative(t *testing.T) {
	p := newTestPypi(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"data":[
			{"category":"without_mirrors","date":"2024-06-13","downloads":120},
			{"category":"without_mirrors","date":"2024-06-14","downloads":95},
			{"category":"without_mirrors","date":"2023-01-01","downloads":50000}]}`)
	}))

	obs, err := p.Fetch(context.Background(), pypiSpec, schema.MetricPypi180Cumulative)
	require.NoError(t, err)
	require.Len(t, obs, 1)
	// The 2023 row falls outside the trailing window.
	assert.Equal(t, 215.0, obs[0].Value)
	assert.Equal(t, time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC), obs[0].Date)
}

func TestPypi_BadPayload(t *testing.T) {
	p := newTestPypi(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `not json`)
	}))

	_, err := p.Fetch(context.Background(), pypiSpec, schema.MetricPypiDaily)
	var valErr *schema.ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestPypi_MetricsRequirePackageName(t *testing.T) {
	p := NewPypi(http.DefaultClient)
	assert.Nil(t, p.Metrics(contract.RepoSpec{Name: "rev"}))
	assert.Equal(t, schema.PypiMetrics, p.Metrics(pypiSpec))
}
