package cmd

import (
	"github.com/spf13/cobra"
	"github.com/supplelab/tierank/core"
	"github.com/supplelab/tierank/internal/contract"
)

// rankCmd runs one ranking batch over the catalog.
var rankCmd = &cobra.Command{
	Use:   "rank [catalog-glob...]",
	Short: "Grade every catalog product from S+ to D.",
	Long: `Load the catalog, retain a snapshot of it, grade every product and record the run.

Each product is ranked against the products sharing its primary ingredient group on:
- price: what a day of use costs (lower is better)
- costEffectiveness: what one mg of the primary ingredient costs (lower is better)
- content: primary ingredient per serving
- evidence: strength of the clinical evidence
- safety: freedom from side effects and interactions

Percentiles map to S (>= 90), A (>= 80), B (>= 70), C (>= 60) and D.
The overall grade is S+ only when all five axes are S.

Examples:
  # Rank every YAML catalog file
  tierank rank 'catalog/**/*.yaml'

  # Disable tail trimming
  tierank rank catalog.json --trim-percent 0

  # Export grades to Parquet and write batch metrics
  tierank rank catalog.json --output parquet --output-file ranks.parquet --metrics-dir /var/lib/node_exporter`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRank(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot rank catalog", err)
		}
	},
}
