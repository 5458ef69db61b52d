package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/supplelab/tierank/internal/contract"
	"github.com/supplelab/tierank/internal/store"
	"github.com/supplelab/tierank/schema"
)

// runsSetup loads minimal configuration needed for rank run operations.
// This is used by commands that need rank store access without full shared setup.
func runsSetup() error {
	backend, connStr, err := backendConfig("rank")
	if err != nil {
		return err
	}

	// No snapshot access for run commands
	if err := store.InitStores("", "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize rank store: %w", err)
	}

	cfg.RankBackend = backend
	cfg.RankDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// runsSetupWrapper wraps runsSetup to provide PreRunE for runs commands.
func runsSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsSetup()
}

// runsMigrateSetup loads minimal configuration needed for migrate operations.
// It does NOT initialize stores or create tables, allowing migrations to run
// on a fresh database.
func runsMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := backendConfig("rank")
	if err != nil {
		return err
	}
	if backend == schema.SQLiteBackend {
		connStr = sqliteFilePath(connStr, contract.GetRankDBFilePath())
	}

	cfg.RankBackend = backend
	cfg.RankDBConnect = connStr
	return nil
}

// runsCmd focused on rank run management.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage persisted rank runs and exports",
	Long: `Manage the rank runs recorded by every rank invocation.

Each run stores:
- Run metadata (token, snapshot ID, algorithm version, settings, duration)
- One rank record per product with the grade and percentile of every axis

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show rank run statistics
  export  - Export runs and records to Parquet
  clear   - Remove all runs
  migrate - Run database schema migrations

Examples:
  # Check run status
  tierank runs status

  # Export for analysis in pandas/DuckDB
  tierank runs export --output-file ranks.parquet`,
}

// runsClearCmd clears the rank runs.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all persisted rank runs",
	Long: `Delete all rank runs and their records.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  tierank runs export --output-file backup.parquet
  tierank runs clear`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store.CloseStores()
		path := sqliteFilePath(cfg.RankDBConnect, contract.GetRankDBFilePath())
		if err := store.ClearRanks(cfg.RankBackend, path, cfg.RankDBConnect); err != nil {
			contract.LogFatal("Failed to clear rank runs", err)
		}
		fmt.Println("Rank runs cleared successfully.")
	},
}

// runsStatusCmd shows rank store status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display rank run statistics and connection details",
	Long: `Show detailed information about the rank store.

Displays:
- Backend type and connection status
- Total number of rank runs stored
- Last and oldest run timestamps
- Total products ranked across all runs
- Database table sizes

Examples:
  # Check rank store status
  tierank runs status`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		ranks := store.Manager.GetRankStore()
		if ranks == nil {
			contract.LogFatal("Failed to get rank run status", fmt.Errorf("rank store is not configured"))
		}
		status, err := ranks.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get rank run status", err)
		}
		store.PrintRankStatus(os.Stdout, status)
	},
}

// runsExportCmd exports rank runs to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export rank runs and records to Parquet",
	Long: `Export all stored rank runs and records to Parquet for analytics tools.

Exports two datasets:
- Rank runs - metadata about each batch
- Rank records - grades and percentiles per product and run

Requires: --output-file parameter

Examples:
  # Export all data
  tierank runs export --output-file tierank.parquet

  # Use with DuckDB
  duckdb -c "SELECT * FROM read_parquet('tierank.parquet.rank_records.parquet') LIMIT 10"`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := store.ExportRanks(store.Manager.GetRankStore(), cfg.OutputFile, os.Stdout); err != nil {
			contract.LogFatal("Failed to export rank runs", err)
		}
	},
}

// runsMigrateCmd runs database migrations for the rank store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the rank store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  tierank runs migrate

  # Rollback to initial state
  tierank runs migrate --target-version 0`,
	PreRunE: runsMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := store.MigrateRanks(cfg.RankBackend, cfg.RankDBConnect, targetVersion, os.Stdout); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
