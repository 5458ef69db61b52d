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

// backendConfig reads and validates the backend and connection string stored under
// the "<prefix>-backend" and "<prefix>-db-connect" keys.
func backendConfig(prefix string) (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}
	backend, err := contract.ParseBackend(viper.GetString(prefix + "-backend"))
	if err != nil {
		return "", "", fmt.Errorf("%s-backend: %w", prefix, err)
	}
	connStr := viper.GetString(prefix + "-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// sqliteFilePath returns the SQLite file a store uses: the connection string when
// set, otherwise the default path.
func sqliteFilePath(connStr, defaultPath string) string {
	if connStr != "" {
		return connStr
	}
	return defaultPath
}

// snapshotSetup loads minimal configuration needed for snapshot operations.
// This is used by commands that need snapshot access without full shared setup.
func snapshotSetup() error {
	backend, connStr, err := backendConfig("snapshot")
	if err != nil {
		return err
	}

	// No rank tracking for snapshot commands
	if err := store.InitStores(backend, connStr, "", ""); err != nil {
		return fmt.Errorf("failed to initialize snapshot store: %w", err)
	}

	cfg.SnapshotBackend = backend
	cfg.SnapshotDBConnect = connStr
	return nil
}

// snapshotSetupWrapper wraps snapshotSetup to provide PreRunE for snapshot commands.
func snapshotSetupWrapper(_ *cobra.Command, _ []string) error {
	return snapshotSetup()
}

// snapshotCmd focused on snapshot management.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage retained catalog snapshots",
	Long: `Manage the catalog snapshots retained by every rank run.

A snapshot holds the exact catalog a run graded, so its records can be explained
and regenerated later (audit --fix).

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status - Show snapshot statistics and connection info
  clear  - Remove all retained snapshots

Examples:
  # Check snapshot status
  tierank snapshot status

  # Clear snapshots
  tierank snapshot clear`,
}

// snapshotClearCmd clears the retained snapshots.
var snapshotClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all retained catalog snapshots",
	Long: `Delete all retained catalog snapshots from the configured backend.

Runs whose snapshot is gone can still be audited but no longer fixed.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the snapshot table

Examples:
  # Clear SQLite snapshots (default)
  tierank snapshot clear

  # Clear MySQL snapshots (set connection string via env variable)
  TIERANK_SNAPSHOT_BACKEND=mysql TIERANK_SNAPSHOT_DB_CONNECT="..." tierank snapshot clear`,
	PreRunE: snapshotSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store.CloseStores()
		path := sqliteFilePath(cfg.SnapshotDBConnect, contract.GetSnapshotDBFilePath())
		if err := store.ClearSnapshots(cfg.SnapshotBackend, path, cfg.SnapshotDBConnect); err != nil {
			contract.LogFatal("Failed to clear snapshots", err)
		}
		fmt.Println("Snapshots cleared successfully.")
	},
}

// snapshotStatusCmd shows snapshot store status.
var snapshotStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display snapshot statistics and connection details",
	Long: `Show detailed information about the snapshot store.

Displays:
- Backend type and connection status
- Total number of retained snapshots
- Last and oldest snapshot timestamps
- Snapshot table size

Examples:
  # Check snapshot status
  tierank snapshot status`,
	PreRunE: snapshotSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		snapshots := store.Manager.GetSnapshotStore()
		if snapshots == nil {
			contract.LogFatal("Failed to get snapshot status", fmt.Errorf("snapshot store is not configured"))
		}
		status, err := snapshots.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get snapshot status", err)
		}
		store.PrintSnapshotStatus(os.Stdout, status)
	},
}
