// Package tsfile persists merged timeseries as flat CSV files, one file per
// (repository, metric) pair under the data directory.
package tsfile

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/schema"
)

// Store reads and writes timeseries CSV files under a data directory.
// Layout: <dir>/<repo>/<metric>.csv with a "date,value" header row.
// Single-writer semantics; saves go through a temp file plus rename so a
// crashed run never leaves a torn file.
type Store struct {
	dir string
}

var _ contract.TimeseriesStore = &Store{} // Compile-time check

// NewStore returns a Store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %q: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the root data directory.
func (s *Store) Dir() string { return s.dir }

// seriesPath returns the CSV path for a (repo, metric) pair.
func (s *Store) seriesPath(repo string, metric schema.MetricName) string {
	return filepath.Join(s.dir, repo, string(metric)+".csv")
}

// Load returns the persisted timeseries, or an empty one if no file exists.
func (s *Store) Load(repo string, metric schema.MetricName) (schema.Timeseries, error) {
	ts := schema.Timeseries{Repo: repo, Metric: metric}

	f, err := os.Open(s.seriesPath(repo, metric))
	if os.IsNotExist(err) {
		return ts, nil
	}
	if err != nil {
		return ts, fmt.Errorf("failed to open series file: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return ts, fmt.Errorf("failed to read series file for %s/%s: %w", repo, metric, err)
	}

	for i, row := range rows {
		if i == 0 && isHeaderRow(row) {
			continue
		}
		if len(row) < 2 {
			return ts, &schema.ValidationError{Field: "row", Value: strings.Join(row, ","), Reason: "expected date,value columns"}
		}
		date, err := time.Parse(schema.DateFormat, strings.TrimSpace(row[0]))
		if err != nil {
			return ts, &schema.ValidationError{Field: "date", Value: row[0], Reason: "not a valid YYYY-MM-DD date"}
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return ts, &schema.ValidationError{Field: "value", Value: row[1], Reason: "not a number"}
		}
		ts.Points = append(ts.Points, schema.Point{Date: date, Value: value})
	}

	ts.SortByDate()
	return ts, nil
}

// Save overwrites the series file for ts. The parent repo directory is
// created on first save.
func (s *Store) Save(ts schema.Timeseries) error {
	path := s.seriesPath(ts.Repo, ts.Metric)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create repo directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+string(ts.Metric)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	w := csv.NewWriter(tmp)
	writeErr := w.Write([]string{"date", "value"})
	for _, p := range ts.Points {
		if writeErr != nil {
			break
		}
		writeErr = w.Write([]string{p.Date.Format(schema.DateFormat), formatValue(p.Value)})
	}
	w.Flush()
	if writeErr == nil {
		writeErr = w.Error()
	}
	if closeErr := tmp.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write series file for %s/%s: %w", ts.Repo, ts.Metric, writeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace series file: %w", err)
	}
	return nil
}

// List returns every stored (repo, metric) pair, sorted by repo then metric.
func (s *Store) List() ([]contract.StoredSeries, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	var out []contract.StoredSeries
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		repo := entry.Name()
		files, err := os.ReadDir(filepath.Join(s.dir, repo))
		if err != nil {
			return nil, fmt.Errorf("failed to read repo directory %q: %w", repo, err)
		}
		for _, f := range files {
			name := f.Name()
			if f.IsDir() || !strings.HasSuffix(name, ".csv") {
				continue
			}
			out = append(out, contract.StoredSeries{
				Repo:   repo,
				Metric: schema.MetricName(strings.TrimSuffix(name, ".csv")),
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Repo != out[j].Repo {
			return out[i].Repo < out[j].Repo
		}
		return out[i].Metric < out[j].Metric
	})
	return out, nil
}

// isHeaderRow detects the "date,value" header so old files without one
// still load.
func isHeaderRow(row []string) bool {
	return len(row) >= 2 && strings.EqualFold(strings.TrimSpace(row[0]), "date")
}

// formatValue renders values without trailing zeros so counts stay integral
// on disk.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
