// Package schema has configs, models and shared types for all parts of repotally.
package schema

import (
	"math"
	"sort"
	"time"
)

// DateFormat is the canonical on-disk and wire representation of a metric date.
const DateFormat = "2006-01-02"

// Observation is a single dated metric value for one repository.
// Observations are immutable once produced by a fetcher.
type Observation struct {
	Repo   string     `json:"repo"`
	Metric MetricName `json:"metric"`
	Date   time.Time  `json:"date"`
	Value  float64    `json:"value"`
}

// Validate checks that the observation carries a usable date and value.
func (o Observation) Validate() error {
	if o.Date.IsZero() {
		return &ValidationError{Field: "date", Value: "", Reason: "date is missing or unparsable"}
	}
	if math.IsNaN(o.Value) || math.IsInf(o.Value, 0) {
		return &ValidationError{Field: "value", Value: o.Date.Format(DateFormat), Reason: "value is not a finite number"}
	}
	return nil
}

// Timeseries is an ordered, deduplicated sequence of observations for one
// (repository, metric) pair. Dates are strictly increasing.
type Timeseries struct {
	Repo   string     `json:"repo"`
	Metric MetricName `json:"metric"`
	Points []Point    `json:"points"`
}

// Point is one (date, value) entry within a timeseries.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Len returns the number of points in the series.
func (ts Timeseries) Len() int { return len(ts.Points) }

// IsEmpty reports whether the series holds no points.
func (ts Timeseries) IsEmpty() bool { return len(ts.Points) == 0 }

// Last returns the most recent point. Callers must check IsEmpty first.
func (ts Timeseries) Last() Point { return ts.Points[len(ts.Points)-1] }

// Clone returns a deep copy of the series. Merging never mutates its inputs,
// so callers hand out clones when the original must stay intact on error.
func (ts Timeseries) Clone() Timeseries {
	out := Timeseries{Repo: ts.Repo, Metric: ts.Metric}
	out.Points = make([]Point, len(ts.Points))
	copy(out.Points, ts.Points)
	return out
}

// SortByDate orders the points by ascending date in place.
func (ts *Timeseries) SortByDate() {
	sort.Slice(ts.Points, func(i, j int) bool {
		return ts.Points[i].Date.Before(ts.Points[j].Date)
	})
}

// Dataset maps repository name to the set of timeseries covering its
// tracked metrics.
type Dataset map[string]map[MetricName]Timeseries

// Add inserts or replaces the series for its (repo, metric) pair.
func (d Dataset) Add(ts Timeseries) {
	if _, ok := d[ts.Repo]; !ok {
		d[ts.Repo] = make(map[MetricName]Timeseries)
	}
	d[ts.Repo][ts.Metric] = ts
}

// Get returns the series for a (repo, metric) pair, or an empty series.
func (d Dataset) Get(repo string, metric MetricName) Timeseries {
	if metrics, ok := d[repo]; ok {
		if ts, ok := metrics[metric]; ok {
			return ts
		}
	}
	return Timeseries{Repo: repo, Metric: metric}
}
