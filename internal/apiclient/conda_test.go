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

var condaSpec = contract.RepoSpec{
	Name: "rev", GitOwner: "nrel", GitRepo: "rev",
	CondaOrg: "nrel", CondaName: "nrel-rev",
}

func newTestConda(t *testing.T, handler http.Handler) *Conda {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewConda(srv.Client())
	c.baseURL = srv.URL
	c.now = func() time.Time { return fixedNow }
	return c
}

func TestConda_TotalDownloads(t *testing.T) {
	c := newTestConda(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/nrel/nrel-rev", r.URL.Path)
		fmt.Fprint(w, `<html><body><span>48213</span> total downloads</body></html>`)
	}))

	obs, err := c.Fetch(context.Background(), condaSpec, schema.MetricCondaTotal)
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.Equal(t, 48213.0, obs[0].Value)
	assert.Equal(t, time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC), obs[0].Date)
}

func TestConda_CountNotFound(t *testing.T) {
	c := newTestConda(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body>no stats here</body></html>`)
	}))

	_, err := c.Fetch(context.Background(), condaSpec, schema.MetricCondaTotal)
	var valErr *schema.ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestConda_MetricsRequireOrgAndName(t *testing.T) {
	c := NewConda(http.DefaultClient)
	assert.Nil(t, c.Metrics(contract.RepoSpec{Name: "rev", CondaOrg: "nrel"}))
	assert.Equal(t, schema.CondaMetrics, c.Metrics(condaSpec))
}
