// Package cmd defines the command-line interface for tierank.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/supplelab/tierank/internal/contract"
	"github.com/supplelab/tierank/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the snapshot subcommands to the parent snapshot command
	snapshotCmd.AddCommand(snapshotClearCmd)
	snapshotCmd.AddCommand(snapshotStatusCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("catalog", "", "Comma-separated catalog files or globs (positional arguments take precedence)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent partition workers")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored grades in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Float64("trim-percent", contract.DefaultTrimPercent, "Share of values dropped from each tail of a population of 10 or more")
	rootCmd.PersistentFlags().String("raw-score-fallback", "no", "Use the absolute value of evidence and safety when the comparison group has one product")
	rootCmd.PersistentFlags().Float64("distribution-target", contract.DefaultDistributionTarget, "Expected share of S grades per axis, in percent")
	rootCmd.PersistentFlags().Float64("distribution-tolerance", contract.DefaultDistributionTolerance, "Allowed deviation from the S share target, in percentage points")
	rootCmd.PersistentFlags().Int("distribution-min-products", contract.DefaultDistributionMinProducts, "Axes with fewer graded products skip the distribution check")
	rootCmd.PersistentFlags().String("snapshot-backend", string(schema.SQLiteBackend), "Snapshot backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("snapshot-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("rank-backend", string(schema.SQLiteBackend), "Rank run backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("rank-db-connect", "", "Database connection string for rank runs (must differ from snapshot-db-connect)")
	rootCmd.PersistentFlags().String("metrics-dir", "", "Directory for node_exporter textfile metrics of each batch")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of auditCmd to Viper
	auditCmd.Flags().Bool("verbose", false, "Print the S share per axis and the affected products per issue type")
	auditCmd.Flags().Bool("fix", false, "Regenerate corrupt records from the retained snapshot of the audited run")
	auditCmd.Flags().Bool("strict", false, "Fail the audit on distribution warnings")
	auditCmd.Flags().Int64("run-id", 0, "Rank run to audit (0 means the latest completed run)")
	if err := viper.BindPFlags(auditCmd.Flags()); err != nil {
		contract.LogFatal("Error binding audit flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
