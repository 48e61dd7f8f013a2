package cmd

import (
	"github.com/repotally/repotally/core"
	"github.com/repotally/repotally/internal/contract"
	"github.com/spf13/cobra"
)

// exportCmd exports all stored timeseries to Parquet.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all stored timeseries to Parquet for analytics",
	Long: `Export every stored (repository, metric) series to a single Parquet file.

Parquet format enables:
- Fast querying with DuckDB, Apache Spark, pandas
- Efficient storage with columnar compression
- Direct import into BI tools (Tableau, Metabase, etc.)

Requires: --output-file parameter

Examples:
  # Export all stored observations
  repotally export --output-file usage

  # Query the export with DuckDB
  duckdb -c "SELECT * FROM read_parquet('usage.observations.parquet') LIMIT 10"`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteExport(cfg); err != nil {
			contract.LogFatal("Cannot export timeseries", err)
		}
	},
}
