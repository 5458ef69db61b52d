package cmd

import (
	"github.com/spf13/cobra"
	"github.com/supplelab/tierank/core"
	"github.com/supplelab/tierank/internal/contract"
)

// auditCmd validates the persisted grades of a rank run.
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Check persisted grades for consistency (fails on critical issues)",
	Long: `Audit the rank records of a persisted run without recomputing percentiles.

Reports every issue found, never just the first:
- invalid_rank: a grade outside S, A, B, C, D (or S+ for the overall grade)
- impossible_combination: S+ without five S axes, or five S axes without S+
- missing_data: missing or non-positive price or servings
- distribution_anomaly: an axis whose S share strays from the expected band

Exits non-zero when critical issues remain. With --strict, distribution warnings
fail the audit as well.

Examples:
  # Audit the latest run
  tierank audit

  # Show S shares and affected products
  tierank audit --verbose

  # Regenerate corrupt records from the run's retained snapshot
  tierank audit --fix

  # Audit an older run as JSON
  tierank audit --run-id 12 --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAudit(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot audit rank run", err)
		}
	},
}
