package cmd

import (
	"github.com/spf13/cobra"
	"github.com/supplelab/tierank/core"
	"github.com/supplelab/tierank/internal/contract"
)

// explainCmd prints how one product earned its grades.
var explainCmd = &cobra.Command{
	Use:   "explain <product-id> [catalog-glob...]",
	Short: "Show the per-axis breakdown of one product's grade.",
	Long: `Rank the catalog and print, for one product, the raw value, comparison group size,
percentile, grade and effective weight of every axis.

Axes that cannot be computed are listed as unset and carry no weight.
Without catalog arguments the latest retained snapshot is used.

Examples:
  # Explain a product from the catalog files
  tierank explain mg-glycinate-120 'catalog/**/*.yaml'

  # Explain against the snapshot of the last rank run
  tierank explain mg-glycinate-120`,
	Args: cobra.MinimumNArgs(1),
	PreRunE: func(_ *cobra.Command, args []string) error {
		return sharedSetup(rootCtx, args[1:])
	},
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteExplain(rootCtx, cfg, storeManager, args[0]); err != nil {
			contract.LogFatal("Cannot explain product", err)
		}
	},
}
