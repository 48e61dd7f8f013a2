package cmd

import (
	"github.com/repotally/repotally/core"
	"github.com/repotally/repotally/internal/contract"
	"github.com/spf13/cobra"
)

// showCmd prints one stored timeseries.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored timeseries for one repository and metric.",
	Long: `Display the stored daily values for a single (repository, metric) pair.

Reads from the data directory only; no network calls are made.

Examples:
  # Show star history as a table
  repotally show --repo reV --metric stargazers

  # Pipe download counts into other tools
  repotally show --repo reV --metric pypi_daily --output csv

  # Write the series to a file
  repotally show --repo reV --metric views --output json --output-file views.json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteShow(cfg); err != nil {
			contract.LogFatal("Cannot show timeseries", err)
		}
	},
}
