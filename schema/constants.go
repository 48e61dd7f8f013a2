package schema

// Custom string types for type safety.
type (
	// MetricName identifies one tracked metric within a repository.
	MetricName string

	// SourceKind identifies which upstream API produces a metric.
	SourceKind string

	// OutputMode represents the format of the output.
	OutputMode string

	// FetchStatus represents the outcome of fetching one (repo, metric) batch.
	FetchStatus string

	// DatabaseBackend represents the database backend for the response cache
	// and the run-history store.
	DatabaseBackend string
)

// GitHub traffic metrics (daily, 14-day lookback, push access required).
const (
	MetricClones       MetricName = "clones"
	MetricClonesUnique MetricName = "clones_unique"
	MetricViews        MetricName = "views"
	MetricViewsUnique  MetricName = "views_unique"
	MetricCommits      MetricName = "commits"
)

// GitHub snapshot metrics (single value, valid at fetch date).
const (
	MetricForks        MetricName = "forks"
	MetricStargazers   MetricName = "stargazers"
	MetricSubscribers  MetricName = "subscribers"
	MetricContributors MetricName = "contributors"
	MetricTotalCommits MetricName = "total_commits"
	MetricIssuesOpen   MetricName = "issues_open"
	MetricIssuesClosed MetricName = "issues_closed"
	MetricPullsOpen    MetricName = "pulls_open"
	MetricPullsClosed  MetricName = "pulls_closed"
)

// Package download metrics.
const (
	MetricPypiDaily         MetricName = "pypi_daily"
	MetricPypi180Cumulative MetricName = "pypi_180_cumulative"
	MetricCondaTotal        MetricName = "conda_total"
)

// All source kinds supported.
const (
	GithubSource SourceKind = "github"
	PypiSource   SourceKind = "pypi"
	CondaSource  SourceKind = "conda"
)

// All output modes supported.
const (
	TextOut OutputMode = "text" // default
	CSVOut  OutputMode = "csv"
	JSONOut OutputMode = "json"
)

// All fetch statuses supported.
const (
	FetchedStatus FetchStatus = "fetched"
	SkippedStatus FetchStatus = "skipped"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Source returns the upstream API that produces the given metric.
func (m MetricName) Source() SourceKind {
	switch m {
	case MetricPypiDaily, MetricPypi180Cumulative:
		return PypiSource
	case MetricCondaTotal:
		return CondaSource
	default:
		return GithubSource
	}
}

// GithubMetrics lists every GitHub-sourced metric in fetch order.
var GithubMetrics = []MetricName{
	MetricClones, MetricClonesUnique, MetricViews, MetricViewsUnique,
	MetricCommits, MetricForks, MetricStargazers, MetricSubscribers,
	MetricContributors, MetricTotalCommits,
	MetricIssuesOpen, MetricIssuesClosed, MetricPullsOpen, MetricPullsClosed,
}

// PypiMetrics lists every PyPI-sourced metric in fetch order.
var PypiMetrics = []MetricName{MetricPypiDaily, MetricPypi180Cumulative}

// CondaMetrics lists every conda-sourced metric in fetch order.
var CondaMetrics = []MetricName{MetricCondaTotal}
