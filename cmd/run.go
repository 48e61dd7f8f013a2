package cmd

import (
	"github.com/repotally/repotally/core"
	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/internal/iocache"
	"github.com/spf13/cobra"
)

// runCmd fetches all configured metrics and merges them into storage.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch all configured metrics and merge them into the data directory.",
	Long: `Fetch usage and contribution metrics for every configured repository.

For each repository, repotally pulls:
- GitHub traffic (clones, views, commits) over the last 14 days
- GitHub snapshots (stars, forks, issues, pull requests, contributors)
- PyPI daily and 180-day cumulative download counts
- Conda total download counts

Fetched batches are merged into the stored per-metric timeseries. When a
fetched date already exists in storage, the fresh value overwrites the old
one, so re-running within the same day is safe.

Failures are per-metric: an unreachable API or a missing token skips that
metric and the run continues. The summary lists every skip with its reason.

Examples:
  # Fetch everything configured in .repotally.yaml
  repotally run

  # Fetch only star counts
  repotally run --metrics stargazers

  # Track run history in SQLite for later inspection
  repotally run --runs-backend sqlite

  # Emit the summary as JSON for scripting
  repotally run --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteFetchRun(rootCtx, cfg, iocache.Manager); err != nil {
			contract.LogFatal("Cannot run metric fetch", err)
		}
	},
}
