package cmd

import (
	"github.com/repotally/repotally/core"
	"github.com/repotally/repotally/internal/contract"
	"github.com/spf13/cobra"
)

// metricsCmd displays the catalog of supported metrics.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display every supported metric with its source and meaning",
	Long: `Show the full catalog of metrics repotally can track.

Lists each metric with the upstream API that produces it (GitHub, PyPI,
conda) and a short description of what it measures.

No network calls are made - this is purely informational.

Examples:
  # Show the metric catalog
  repotally metrics`,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteMetricsCatalog(); err != nil {
			contract.LogFatal("Cannot display metrics", err)
		}
	},
}
