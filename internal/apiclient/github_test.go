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

var testSpec = contract.RepoSpec{Name: "rev", GitOwner: "nrel", GitRepo: "rev"}

// fixedNow pins observation dates for deterministic assertions.
var fixedNow = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

func newTestGithub(t *testing.T, handler http.Handler) *Github {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g := NewGithub(srv.Client(), "test-token", nil)
	g.baseURL = srv.URL
	g.now = func() time.Time { return fixedNow }
	return g
}

func TestGithub_MissingToken(t *testing.T) {
	g := NewGithub(http.DefaultClient, "", nil)

	_, err := g.Fetch(context.Background(), testSpec, schema.MetricClones)
	var credErr *schema.MissingCredentialError
	require.ErrorAs(t, err, &credErr)
}

func TestGithub_Traffic(t *testing.T) {
	g := newTestGithub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/nrel/rev/traffic/clones", r.URL.Path)
		assert.Equal(t, "token test-token", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"count":22,"uniques":8,"clones":[
			{"timestamp":"2024-06-13T00:00:00Z","count":14,"uniques":5},
			{"timestamp":"2024-06-14T00:00:00Z","count":8,"uniques":3}]}`)
	}))

	obs, err := g.Fetch(context.Background(), testSpec, schema.MetricClones)
	require.NoError(t, err)
	require.Len(t, obs, 2)
	assert.Equal(t, schema.MetricClones, obs[0].Metric)
	assert.Equal(t, time.Date(2024, 6, 13, 0, 0, 0, 0, time.UTC), obs[0].Date)
	assert.Equal(t, 14.0, obs[0].Value)

	unique, err := g.Fetch(context.Background(), testSpec, schema.MetricClonesUnique)
	require.NoError(t, err)
	require.Len(t, unique, 2)
	assert.Equal(t, 5.0, unique[0].Value)
	assert.Equal(t, 3.0, unique[1].Value)
}

func TestGithub_TrafficUnreachable(t *testing.T) {
	g := newTestGithub(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))

	_, err := g.Fetch(context.Background(), testSpec, schema.MetricViews)
	var netErr *schema.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, http.StatusForbidden, netErr.Status)
	assert.True(t, netErr.RateLimited())
}

func TestGithub_SnapshotCountSinglePage(t *testing.T) {
	g := newTestGithub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/nrel/rev/forks", r.URL.Path)
		fmt.Fprint(w, `[{},{},{}]`)
	}))

	obs, err := g.Fetch(context.Background(), testSpec, schema.MetricForks)
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.Equal(t, 3.0, obs[0].Value)
	assert.Equal(t, time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC), obs[0].Date)
}

func TestGithub_SnapshotCountPaginated(t *testing.T) {
	g := newTestGithub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "3" {
			fmt.Fprint(w, `[{},{}]`) // partial last page
			return
		}
		w.Header().Set("Link", fmt.Sprintf(
			`<http://example.com%s?per_page=100&page=3>; rel="last"`, r.URL.Path))
		fmt.Fprint(w, fullPage(100))
	}))

	obs, err := g.Fetch(context.Background(), testSpec, schema.MetricStargazers)
	require.NoError(t, err)
	require.Len(t, obs, 1)
	// 2 full pages of 100 plus 2 on the last page.
	assert.Equal(t, 202.0, obs[0].Value)
}

func TestGithub_IssueCountSubtractsPulls(t *testing.T) {
	g := newTestGithub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/nrel/rev/issues":
			assert.Equal(t, "open", r.URL.Query().Get("state"))
			fmt.Fprint(w, `[{},{},{},{},{}]`)
		case "/repos/nrel/rev/pulls":
			fmt.Fprint(w, `[{},{}]`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	obs, err := g.Fetch(context.Background(), testSpec, schema.MetricIssuesOpen)
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.Equal(t, 3.0, obs[0].Value)
}

func TestGithub_DailyCommits(t *testing.T) {
	g := newTestGithub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/nrel/rev/commits", r.URL.Path)
		if r.URL.Query().Get("page") != "1" {
			fmt.Fprint(w, `[]`)
			return
		}
		fmt.Fprint(w, `[
			{"commit":{"committer":{"date":"2024-06-14T09:00:00Z"}}},
			{"commit":{"committer":{"date":"2024-06-14T17:00:00Z"}}},
			{"commit":{"committer":{"date":"2024-06-10T12:00:00Z"}}}]`)
	}))

	obs, err := g.Fetch(context.Background(), testSpec, schema.MetricCommits)
	require.NoError(t, err)
	// Zero-filled window: 13 days back through yesterday.
	require.Len(t, obs, 13)
	byDate := make(map[string]float64)
	for _, o := range obs {
		byDate[o.Date.Format(schema.DateFormat)] = o.Value
	}
	assert.Equal(t, 2.0, byDate["2024-06-14"])
	assert.Equal(t, 1.0, byDate["2024-06-10"])
	assert.Equal(t, 0.0, byDate["2024-06-08"])
}

func TestGithub_MetricsRequireOwnerRepo(t *testing.T) {
	g := NewGithub(http.DefaultClient, "tok", nil)
	assert.Nil(t, g.Metrics(contract.RepoSpec{Name: "x"}))
	assert.Equal(t, schema.GithubMetrics, g.Metrics(testSpec))
}

// fullPage renders a JSON array of n empty objects.
func fullPage(n int) string {
	out := "["
	for i := range n {
		if i > 0 {
			out += ","
		}
		out += "{}"
	}
	return out + "]"
}
