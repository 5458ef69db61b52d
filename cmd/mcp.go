package cmd

import (
	"github.com/spf13/cobra"
	"github.com/supplelab/tierank/internal/mcp"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:     "mcp",
	Short:   "Start the tierank MCP server",
	Long:    `Launch an MCP server on stdio that lets AI agents rank catalogs, audit runs and explain grades.`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager)
	},
}
