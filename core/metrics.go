package core

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/repotally/repotally/schema"
)

// metricDescriptions maps each metric to a short explanation shown in the
// catalog. Keep these to one line.
var metricDescriptions = map[schema.MetricName]string{
	schema.MetricClones:            "Daily repository clones (14-day traffic window)",
	schema.MetricClonesUnique:      "Daily unique cloners (14-day traffic window)",
	schema.MetricViews:             "Daily repository page views (14-day traffic window)",
	schema.MetricViewsUnique:       "Daily unique visitors (14-day traffic window)",
	schema.MetricCommits:           "Daily commits to the default branch (14-day window)",
	schema.MetricForks:             "Total forks at fetch time",
	schema.MetricStargazers:        "Total stargazers at fetch time",
	schema.MetricSubscribers:       "Total watchers at fetch time",
	schema.MetricContributors:      "Total contributors at fetch time",
	schema.MetricTotalCommits:      "Total commits on the default branch at fetch time",
	schema.MetricIssuesOpen:        "Open issues at fetch time (pull requests excluded)",
	schema.MetricIssuesClosed:      "Closed issues at fetch time (pull requests excluded)",
	schema.MetricPullsOpen:         "Open pull requests at fetch time",
	schema.MetricPullsClosed:       "Closed pull requests at fetch time",
	schema.MetricPypiDaily:         "Daily PyPI downloads (last 180 days)",
	schema.MetricPypi180Cumulative: "Rolling 180-day cumulative PyPI downloads",
	schema.MetricCondaTotal:        "Total conda downloads at fetch time",
}

// ExecuteMetricsCatalog prints every supported metric with its source and a
// short description. It serves as the main entry point for the 'metrics'
// command. No network calls are made.
func ExecuteMetricsCatalog() error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Metric", "Source", "Description"})

	var data [][]string
	for _, group := range [][]schema.MetricName{schema.GithubMetrics, schema.PypiMetrics, schema.CondaMetrics} {
		for _, m := range group {
			data = append(data, []string{string(m), string(m.Source()), metricDescriptions[m]})
		}
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Printf("%d metrics across %d sources\n", len(data), 3)
	return err
}
