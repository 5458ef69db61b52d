package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
	"github.com/supplelab/tierank/schema"
)

// versionCmd shows the verbose version for diagnostic purposes.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of tierank.",
	Long: `Display version information including build details.

Shows:
- Release version
- Git commit hash
- Build timestamp
- Ranking algorithm version stored with every run
- Go runtime version`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("tierank CLI\n")
		cmd.Printf("  Version:   %s\n", version)
		cmd.Printf("  Commit:    %s\n", commit)
		cmd.Printf("  Built:     %s\n", date)
		cmd.Printf("  Algorithm: v%d\n", schema.AlgorithmVersion)
		cmd.Printf("  Runtime:   %s\n", runtime.Version())
	},
}
