package cmd

import (
	"github.com/repotally/repotally/core"
	"github.com/repotally/repotally/internal/contract"
	"github.com/spf13/cobra"
)

// plotCmd renders stored timeseries as PNG charts.
var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Render stored timeseries as PNG line charts.",
	Long: `Render one PNG chart per configured repository for the selected metric.

Charts are written to the plots directory as <repo>_<metric>.png. The
y-axis label template supports a {name} placeholder replaced with the
repository name. Repositories without stored data for the metric are
skipped.

Reads from the data directory only; no network calls are made.

Examples:
  # Plot cumulative PyPI downloads (the default metric)
  repotally plot

  # Plot star history instead
  repotally plot --plot-metric stargazers --ylabel "{name} GitHub stars"

  # Write charts somewhere else
  repotally plot --plots-dir /tmp/charts`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecutePlot(cfg); err != nil {
			contract.LogFatal("Cannot render plots", err)
		}
	},
}
