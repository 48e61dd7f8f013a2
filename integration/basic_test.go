//go:build basic

package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedDataDir writes one stored series so offline commands have data to read.
func seedDataDir(t *testing.T) string {
	t.Helper()
	dataDir := t.TempDir()
	repoDir := filepath.Join(dataDir, "reV")
	require.NoError(t, os.MkdirAll(repoDir, 0o755))

	csv := "date,value\n2024-06-01,100\n2024-06-02,105\n2024-06-03,110\n"
	require.NoError(t, os.WriteFile(filepath.Join(repoDir, "stargazers.csv"), []byte(csv), 0o644))
	return dataDir
}

// TestRepotallyOffline exercises the commands that never touch the network.
func TestRepotallyOffline(t *testing.T) {
	repotallyPath := getRepotallyBinary()
	dataDir := seedDataDir(t)

	t.Run("version", func(t *testing.T) {
		out, err := exec.Command(repotallyPath, "version").CombinedOutput()
		require.NoError(t, err, string(out))
		assert.Contains(t, string(out), "repotally CLI")
	})

	t.Run("metrics", func(t *testing.T) {
		out, err := exec.Command(repotallyPath, "metrics").CombinedOutput()
		require.NoError(t, err, string(out))
		assert.Contains(t, string(out), "stargazers")
		assert.Contains(t, string(out), "pypi_daily")
		assert.Contains(t, string(out), "conda_total")
	})

	t.Run("show", func(t *testing.T) {
		out, err := exec.Command(repotallyPath, "show",
			"--data-dir", dataDir,
			"--repo", "reV",
			"--metric", "stargazers",
			"--output", "csv",
			"--cache-backend", "none").CombinedOutput()
		require.NoError(t, err, string(out))
		assert.Contains(t, string(out), "2024-06-03,110")
	})

	t.Run("export", func(t *testing.T) {
		outBase := filepath.Join(t.TempDir(), "usage")
		out, err := exec.Command(repotallyPath, "export",
			"--data-dir", dataDir,
			"--output-file", outBase,
			"--cache-backend", "none").CombinedOutput()
		require.NoError(t, err, string(out))

		info, err := os.Stat(outBase + ".observations.parquet")
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	})
}
