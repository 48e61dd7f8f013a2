// Package core holds the merge pipeline and command orchestration for repotally.
package core

import (
	"github.com/repotally/repotally/schema"
)

// Merge combines an existing timeseries with a newly fetched observation
// batch into a single consistent series.
//
// For any date present in both inputs the freshly fetched value wins:
// rolling-window metrics (e.g. 180-day downloads) are only valid as of the
// most recent pull, so stale values must be overwritten. Dates present only
// in the existing series are retained. The result is sorted by ascending
// date with unique dates.
//
// Merge never mutates its inputs. On error the existing series is returned
// unchanged alongside the error.
func Merge(existing schema.Timeseries, batch []schema.Observation) (schema.Timeseries, error) {
	// An empty batch merges to the original series.
	if len(batch) == 0 {
		return existing.Clone(), nil
	}

	for _, obs := range batch {
		if obs.Metric != existing.Metric {
			return existing, &schema.SchemaError{Want: existing.Metric, Got: obs.Metric}
		}
		if err := obs.Validate(); err != nil {
			return existing, err
		}
	}

	// Index existing points by date, then overwrite with the new batch.
	byDate := make(map[string]schema.Point, len(existing.Points)+len(batch))
	for _, p := range existing.Points {
		byDate[p.Date.Format(schema.DateFormat)] = p
	}
	for _, obs := range batch {
		day := obs.Date.Format(schema.DateFormat)
		byDate[day] = schema.Point{Date: obs.Date, Value: obs.Value}
	}

	merged := schema.Timeseries{Repo: existing.Repo, Metric: existing.Metric}
	merged.Points = make([]schema.Point, 0, len(byDate))
	for _, p := range byDate {
		merged.Points = append(merged.Points, p)
	}
	merged.SortByDate()
	return merged, nil
}
