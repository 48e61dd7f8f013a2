package cmd

import (
	"fmt"

	"github.com/repotally/repotally/core"
	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/internal/iocache"
	"github.com/repotally/repotally/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runsSetup loads minimal configuration needed for run-history operations.
// This is used by commands that need runs access without full shared setup.
func runsSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get runs-related config values
	backendStr := viper.GetString("runs-backend")
	connStr := viper.GetString("runs-db-connect")

	// Handle empty backend as NoneBackend
	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.NoneBackend
	} else {
		backend = schema.DatabaseBackend(backendStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Get output-related config values (used by export and list commands)
	outputFile := viper.GetString("output-file")
	runsLimit := viper.GetInt("runs-limit")
	if runsLimit <= 0 {
		runsLimit = contract.DefaultRunsLimit
	}

	// Initialize stores with the loaded config (no response cache for runs commands)
	if err := iocache.InitStores(schema.NoneBackend, "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run tracking: %w", err)
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr
	cfg.OutputFile = outputFile
	cfg.RunsLimit = runsLimit
	cfg.Output = schema.OutputMode(viper.GetString("output"))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}

	return nil
}

// runsSetupWrapper wraps runsSetup to provide PreRunE for runs commands.
func runsSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsSetup()
}

// runsMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize stores or create tables,
// allowing migrations to run on a fresh database.
func runsMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get runs-related config values
	backendStr := viper.GetString("runs-backend")
	connStr := viper.GetString("runs-db-connect")

	// Handle empty backend as NoneBackend
	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.NoneBackend
	} else {
		backend = schema.DatabaseBackend(backendStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetRunsDBFilePath()
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr

	return nil
}

// runsMigrateSetupWrapper wraps runsMigrateSetup to provide PreRunE for migrate command.
func runsMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsMigrateSetup()
}

// runsCmd focused on run-history management.
//
// Note: Runs subcommands use minimal initialization (runsSetup) instead of
// the full sharedSetup used by fetch commands. This avoids repo config
// validation for simple history operations.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage fetch run history and exports",
	Long: `Manage historical fetch run data used for trend tracking and reporting.

When enabled, repotally tracks every fetch run, storing:
- Run metadata (timestamp, configuration, duration)
- Per-metric outcomes (fetched or skipped, points merged, skip reason)

This enables longitudinal analysis of fetch health and data export for BI tools.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  list    - Show recent fetch runs
  status  - Show run tracking statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all tracking data
  migrate - Run database schema migrations

Examples:
  # Show recent runs
  repotally runs list --runs-backend sqlite

  # Export for analysis in pandas/DuckDB
  repotally runs export --runs-backend sqlite --output-file runs-data`,
}

// runsListCmd lists recent fetch runs.
var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the most recent tracked fetch runs",
	Long: `List recent fetch runs with their duration and merge totals.

Displays:
- Run ID and start time
- Run duration
- Repositories processed and observations merged

Examples:
  # Show the default number of recent runs
  repotally runs list --runs-backend sqlite

  # Show more history as JSON
  repotally runs list --runs-backend sqlite --runs-limit 100 --output json`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRunHistory(cfg, iocache.Manager); err != nil {
			contract.LogFatal("Cannot list fetch runs", err)
		}
	},
}

// runsClearCmd clears the run-history data.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all tracked fetch run data",
	Long: `Delete all stored fetch runs and per-metric outcomes.

WARNING: This action cannot be undone. Consider exporting data first.

Use this when:
- Resetting trend tracking
- Database storage is full
- Starting fresh run history

Examples:
  # Export before clearing
  repotally runs export --runs-backend sqlite --output-file backup
  repotally runs clear --runs-backend sqlite`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearRuns(cfg.RunsBackend, contract.GetRunsDBFilePath(), cfg.RunsDBConnect); err != nil {
			contract.LogFatal("Failed to clear run data", err)
		}
		fmt.Println("Run data cleared successfully.")
	},
}

// runsStatusCmd shows run-tracking status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run tracking statistics and connection details",
	Long: `Show detailed information about fetch run tracking.

Displays:
- Backend type and connection status
- Total number of fetch runs stored
- Last and oldest run timestamps
- Total per-metric outcomes recorded

Examples:
  # Check run tracking status
  repotally runs status --runs-backend sqlite`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetRunsStore()
		if store == nil {
			contract.LogFatal("Run tracking is not enabled", fmt.Errorf("set --runs-backend to a database backend"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get runs status", err)
		}
		iocache.PrintRunsStatus(status)
	},
}

// runsExportCmd exports run-history data to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all stored run-history data to Parquet format.

Exports two datasets:
- Fetch runs - metadata about each run
- Metric results - per-metric outcomes within each run

Requires: --output-file parameter

Examples:
  # Export all run history
  repotally runs export --runs-backend sqlite --output-file runs-data

  # Use with DuckDB for analysis
  duckdb -c "SELECT * FROM read_parquet('runs-data.fetch_runs.parquet') LIMIT 10"`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteRunsExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run data", err)
		}
	},
}

// runsMigrateCmd runs database migrations for the runs store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run-history store.

Migrations allow:
- Upgrading to new schema versions when repotally is updated
- Safely modifying database structure without data loss
- Rolling back schema changes if needed

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  repotally runs migrate --runs-backend sqlite

  # Migrate to specific version
  repotally runs migrate --runs-backend sqlite --target-version 1

  # Rollback to initial state
  repotally runs migrate --runs-backend sqlite --target-version 0`,
	PreRunE: runsMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateRuns(cfg.RunsBackend, cfg.RunsDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
