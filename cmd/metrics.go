package cmd

import (
	"github.com/spf13/cobra"
	"github.com/supplelab/tierank/core"
	"github.com/supplelab/tierank/internal/contract"
)

// metricsCmd displays the ranking rules in effect.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display grade bands, axis formulas and weights",
	Long: `Show how products are graded, including:
- Axis purpose, formula and direction
- Grade percentile bands
- Overall weights, including custom weights from .tierank.yaml
- Evidence level scores

No catalog is read - this is purely informational.

Examples:
  # Show the default rules
  tierank metrics

  # View with custom weights from config file
  tierank metrics --config .tierank.yaml`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteMetrics(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot display metrics", err)
		}
	},
}
