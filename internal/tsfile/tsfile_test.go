package tsfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/repotally/repotally/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LoadMissingFile(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	ts, err := store.Load("rev", schema.MetricClones)
	require.NoError(t, err)
	assert.Equal(t, "rev", ts.Repo)
	assert.Equal(t, schema.MetricClones, ts.Metric)
	assert.True(t, ts.IsEmpty())
}

func TestStore_SaveLoadRoundtrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	ts := schema.Timeseries{
		Repo:   "rev",
		Metric: schema.MetricViews,
		Points: []schema.Point{
			{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Value: 10},
			{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Value: 12.5},
		},
	}
	require.NoError(t, store.Save(ts))

	loaded, err := store.Load("rev", schema.MetricViews)
	require.NoError(t, err)
	assert.Equal(t, ts.Points, loaded.Points)

	// Saving again replaces the file rather than appending.
	ts.Points = append(ts.Points, schema.Point{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Value: 9})
	require.NoError(t, store.Save(ts))
	loaded, err = store.Load("rev", schema.MetricViews)
	require.NoError(t, err)
	assert.Len(t, loaded.Points, 3)
}

func TestStore_LoadMalformedRows(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	repoDir := filepath.Join(dir, "rev")
	require.NoError(t, os.MkdirAll(repoDir, 0o755))

	t.Run("bad date", func(t *testing.T) {
		path := filepath.Join(repoDir, "clones.csv")
		require.NoError(t, os.WriteFile(path, []byte("date,value\nnot-a-date,10\n"), 0o644))
		_, err := store.Load("rev", schema.MetricClones)
		var valErr *schema.ValidationError
		require.ErrorAs(t, err, &valErr)
		assert.Equal(t, "date", valErr.Field)
	})

	t.Run("bad value", func(t *testing.T) {
		path := filepath.Join(repoDir, "views.csv")
		require.NoError(t, os.WriteFile(path, []byte("date,value\n2024-01-01,oops\n"), 0o644))
		_, err := store.Load("rev", schema.MetricViews)
		var valErr *schema.ValidationError
		require.ErrorAs(t, err, &valErr)
		assert.Equal(t, "value", valErr.Field)
	})
}

func TestStore_LoadHeaderlessFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	repoDir := filepath.Join(dir, "rev")
	require.NoError(t, os.MkdirAll(repoDir, 0o755))
	path := filepath.Join(repoDir, "forks.csv")
	require.NoError(t, os.WriteFile(path, []byte("2024-01-02,5\n2024-01-01,4\n"), 0o644))

	ts, err := store.Load("rev", schema.MetricForks)
	require.NoError(t, err)
	require.Len(t, ts.Points, 2)
	// Rows arrive unsorted on disk; Load sorts them.
	assert.True(t, ts.Points[0].Date.Before(ts.Points[1].Date))
}

func TestStore_List(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	save := func(repo string, metric schema.MetricName) {
		require.NoError(t, store.Save(schema.Timeseries{
			Repo:   repo,
			Metric: metric,
			Points: []schema.Point{{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Value: 1}},
		}))
	}
	save("rev", schema.MetricClones)
	save("rev", schema.MetricViews)
	save("sup3r", schema.MetricPypiDaily)

	series, err := store.List()
	require.NoError(t, err)
	require.Len(t, series, 3)
	assert.Equal(t, "rev", series[0].Repo)
	assert.Equal(t, schema.MetricClones, series[0].Metric)
	assert.Equal(t, "sup3r", series[2].Repo)
}
