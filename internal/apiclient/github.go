package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/schema"
)

// githubBaseURL is the default GitHub REST endpoint.
const githubBaseURL = "https://api.github.com"

// githubTimeFormat is the timestamp representation in GitHub payloads.
const githubTimeFormat = "2006-01-02T15:04:05Z"

// githubPerPage is the API page-size maximum; using it minimizes the number
// of requests spent on count queries.
const githubPerPage = 100

// lastPageRe extracts the page number from the rel="last" link.
var lastPageRe = regexp.MustCompile(`[?&]page=(\d+)[^>]*>;\s*rel="last"`)

// Github fetches traffic and repository statistics from the GitHub REST API.
// Traffic endpoints (clones, views) require push access to the repo and only
// cover a trailing 14-day window.
type Github struct {
	client  *http.Client
	cache   contract.ResponseCache // may be nil
	baseURL string
	token   string
	now     func() time.Time
}

var _ contract.SourceClient = &Github{} // Compile-time check

// NewGithub returns a GitHub client. The token may be empty; any fetch will
// then fail with MissingCredentialError so the pipeline can skip GitHub
// metrics while other sources continue.
func NewGithub(client *http.Client, token string, cache contract.ResponseCache) *Github {
	return &Github{
		client:  client,
		cache:   cache,
		baseURL: githubBaseURL,
		token:   token,
		now:     time.Now,
	}
}

// Kind implements the SourceClient interface.
func (g *Github) Kind() schema.SourceKind { return schema.GithubSource }

// Metrics implements the SourceClient interface.
func (g *Github) Metrics(spec contract.RepoSpec) []schema.MetricName {
	if spec.GitOwner == "" || spec.GitRepo == "" {
		return nil
	}
	return schema.GithubMetrics
}

// Fetch implements the SourceClient interface.
func (g *Github) Fetch(ctx context.Context, spec contract.RepoSpec, metric schema.MetricName) ([]schema.Observation, error) {
	if g.token == "" {
		return nil, &schema.MissingCredentialError{Var: contract.GithubTokenEnvVar}
	}

	switch metric {
	case schema.MetricClones, schema.MetricClonesUnique:
		return g.traffic(ctx, spec, "clones", metric)
	case schema.MetricViews, schema.MetricViewsUnique:
		return g.traffic(ctx, spec, "views", metric)
	case schema.MetricCommits:
		return g.dailyCommits(ctx, spec)
	case schema.MetricForks:
		return g.snapshotCount(ctx, spec, metric, "/forks", "")
	case schema.MetricStargazers:
		return g.snapshotCount(ctx, spec, metric, "/stargazers", "")
	case schema.MetricSubscribers:
		return g.snapshotCount(ctx, spec, metric, "/subscribers", "")
	case schema.MetricContributors:
		return g.snapshotCount(ctx, spec, metric, "/contributors", "")
	case schema.MetricTotalCommits:
		return g.snapshotCount(ctx, spec, metric, "/commits", "")
	case schema.MetricIssuesOpen:
		return g.issueCount(ctx, spec, metric, "open")
	case schema.MetricIssuesClosed:
		return g.issueCount(ctx, spec, metric, "closed")
	case schema.MetricPullsOpen:
		return g.snapshotCount(ctx, spec, metric, "/pulls", "open")
	case schema.MetricPullsClosed:
		return g.snapshotCount(ctx, spec, metric, "/pulls", "closed")
	default:
		return nil, fmt.Errorf("github client cannot fetch metric %q", metric)
	}
}

// repoURL builds an API URL under /repos/{owner}/{repo}.
func (g *Github) repoURL(spec contract.RepoSpec, suffix string) string {
	return fmt.Sprintf("%s/repos/%s/%s%s", g.baseURL, spec.GitOwner, spec.GitRepo, suffix)
}

// authHeaders returns the request headers for authenticated calls.
func (g *Github) authHeaders() map[string]string {
	return map[string]string{
		"Authorization": "token " + g.token,
		"Accept":        "application/vnd.github+json",
	}
}

// trafficPayload mirrors the /traffic/{clones,views} response shape.
type trafficPayload struct {
	Clones []trafficEntry `json:"clones"`
	Views  []trafficEntry `json:"views"`
}

type trafficEntry struct {
	Timestamp string `json:"timestamp"`
	Count     int    `json:"count"`
	Uniques   int    `json:"uniques"`
}

// traffic fetches the daily clone or view series for the last two weeks.
// One HTTP response feeds both the count metric and its _unique sibling;
// the response cache makes the second fetch free.
func (g *Github) traffic(ctx context.Context, spec contract.RepoSpec, option string, metric schema.MetricName) ([]schema.Observation, error) {
	url := g.repoURL(spec, "/traffic/"+option)
	body, err := cachedGetBody(ctx, g.client, g.cache, url, g.authHeaders())
	if err != nil {
		return nil, err
	}

	var payload trafficPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &schema.ValidationError{Field: "value", Value: url, Reason: "traffic payload is not valid JSON"}
	}
	entries := payload.Clones
	if option == "views" {
		entries = payload.Views
	}

	unique := metric == schema.MetricClonesUnique || metric == schema.MetricViewsUnique
	obs := make([]schema.Observation, 0, len(entries))
	for _, e := range entries {
		t, err := time.Parse(githubTimeFormat, e.Timestamp)
		if err != nil {
			return nil, &schema.ValidationError{Field: "date", Value: e.Timestamp, Reason: "unparsable traffic timestamp"}
		}
		value := float64(e.Count)
		if unique {
			value = float64(e.Uniques)
		}
		obs = append(obs, schema.Observation{
			Repo:   spec.Slug(),
			Metric: metric,
			Date:   time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC),
			Value:  value,
		})
	}
	return obs, nil
}

// commitPayload mirrors the subset of the /commits entry we read.
type commitPayload struct {
	Commit struct {
		Committer struct {
			Date string `json:"date"`
		} `json:"committer"`
	} `json:"commit"`
}

// dailyCommits counts commits per day over the fetch window using the
// paginated commits listing bounded by since/until.
func (g *Github) dailyCommits(ctx context.Context, spec contract.RepoSpec) ([]schema.Observation, error) {
	start, end := fetchWindow(g.now())
	perDay := make(map[string]int)

	url := fmt.Sprintf("%s?since=%s&until=%s&per_page=%d",
		g.repoURL(spec, "/commits"),
		start.Format(githubTimeFormat),
		end.AddDate(0, 0, 1).Format(githubTimeFormat),
		githubPerPage)

	for page := 1; ; page++ {
		pageURL := fmt.Sprintf("%s&page=%d", url, page)
		body, _, err := getBody(ctx, g.client, pageURL, g.authHeaders())
		if err != nil {
			return nil, err
		}
		var commits []commitPayload
		if err := json.Unmarshal(body, &commits); err != nil {
			return nil, &schema.ValidationError{Field: "value", Value: pageURL, Reason: "commits payload is not valid JSON"}
		}
		if len(commits) == 0 {
			break
		}
		for _, c := range commits {
			t, err := time.Parse(githubTimeFormat, c.Commit.Committer.Date)
			if err != nil {
				continue // commits with odd committer dates do not sink the batch
			}
			perDay[t.Format(schema.DateFormat)]++
		}
		if len(commits) < githubPerPage {
			break
		}
	}

	// Zero-fill the window so quiet days are recorded explicitly.
	var obs []schema.Observation
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		obs = append(obs, schema.Observation{
			Repo:   spec.Slug(),
			Metric: schema.MetricCommits,
			Date:   d,
			Value:  float64(perDay[d.Format(schema.DateFormat)]),
		})
	}
	return obs, nil
}

// snapshotCount returns a single-observation batch holding the total item
// count of a paginated listing, dated at the last full day.
func (g *Github) snapshotCount(ctx context.Context, spec contract.RepoSpec, metric schema.MetricName, suffix, state string) ([]schema.Observation, error) {
	count, err := g.totalCount(ctx, g.listURL(spec, suffix, state))
	if err != nil {
		return nil, err
	}
	return []schema.Observation{{
		Repo:   spec.Slug(),
		Metric: metric,
		Date:   snapshotDate(g.now()),
		Value:  float64(count),
	}}, nil
}

// issueCount counts issues in a state. The issues listing includes pull
// requests but not the other way around, so pulls are subtracted out.
func (g *Github) issueCount(ctx context.Context, spec contract.RepoSpec, metric schema.MetricName, state string) ([]schema.Observation, error) {
	issues, err := g.totalCount(ctx, g.listURL(spec, "/issues", state))
	if err != nil {
		return nil, err
	}
	pulls, err := g.totalCount(ctx, g.listURL(spec, "/pulls", state))
	if err != nil {
		return nil, err
	}
	return []schema.Observation{{
		Repo:   spec.Slug(),
		Metric: metric,
		Date:   snapshotDate(g.now()),
		Value:  float64(issues - pulls),
	}}, nil
}

// listURL builds a listing URL with the maximum page size and optional state.
func (g *Github) listURL(spec contract.RepoSpec, suffix, state string) string {
	url := fmt.Sprintf("%s?per_page=%d", g.repoURL(spec, suffix), githubPerPage)
	if state != "" {
		url += "&state=" + state
	}
	return url
}

// totalCount counts the items of a paginated listing without walking every
// page: the rel="last" link gives the page count, and only the final page
// is fetched to size the remainder.
func (g *Github) totalCount(ctx context.Context, url string) (int, error) {
	body, headers, err := getBody(ctx, g.client, url, g.authHeaders())
	if err != nil {
		return 0, err
	}
	var first []json.RawMessage
	if err := json.Unmarshal(body, &first); err != nil {
		return 0, &schema.ValidationError{Field: "value", Value: url, Reason: "listing payload is not a JSON array"}
	}

	match := lastPageRe.FindStringSubmatch(headers.Get("Link"))
	if match == nil {
		return len(first), nil
	}
	lastPage, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, &schema.ValidationError{Field: "value", Value: match[1], Reason: "unparsable last page number"}
	}

	lastBody, _, err := getBody(ctx, g.client, fmt.Sprintf("%s&page=%d", url, lastPage), g.authHeaders())
	if err != nil {
		return 0, err
	}
	var last []json.RawMessage
	if err := json.Unmarshal(lastBody, &last); err != nil {
		return 0, &schema.ValidationError{Field: "value", Value: url, Reason: "last page payload is not a JSON array"}
	}
	return len(first)*(lastPage-1) + len(last), nil
}
