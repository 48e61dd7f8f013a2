package schema

import "time"

// MetricOutcome records the fate of one (repo, metric) fetch within a run.
type MetricOutcome struct {
	Repo         string      `json:"repo"`
	Metric       MetricName  `json:"metric"`
	Source       SourceKind  `json:"source"`
	Status       FetchStatus `json:"status"`
	PointsMerged int         `json:"points_merged"`
	Detail       string      `json:"detail,omitempty"` // skip reason, empty when fetched
}

// RunSummary reports a whole batch run: one outcome per (repo, metric),
// in processing order. A run with skips is still a successful run.
type RunSummary struct {
	StartTime time.Time       `json:"start_time"`
	EndTime   time.Time       `json:"end_time"`
	Outcomes  []MetricOutcome `json:"outcomes"`
}

// Fetched counts the outcomes that merged successfully.
func (s *RunSummary) Fetched() int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Status == FetchedStatus {
			n++
		}
	}
	return n
}

// Skipped counts the outcomes that were skipped.
func (s *RunSummary) Skipped() int {
	return len(s.Outcomes) - s.Fetched()
}

// TotalPoints sums the merged point counts across all outcomes.
func (s *RunSummary) TotalPoints() int {
	n := 0
	for _, o := range s.Outcomes {
		n += o.PointsMerged
	}
	return n
}

// Repos returns the distinct repository names in processing order.
func (s *RunSummary) Repos() []string {
	seen := make(map[string]bool)
	var repos []string
	for _, o := range s.Outcomes {
		if !seen[o.Repo] {
			seen[o.Repo] = true
			repos = append(repos, o.Repo)
		}
	}
	return repos
}
