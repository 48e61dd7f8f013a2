package cmd

import (
	"github.com/repotally/repotally/internal/mcp"
	"github.com/repotally/repotally/internal/tsfile"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the repotally MCP server",
	Long:  `Launch an MCP server that allows AI agents to query stored usage metrics via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Suppress the normal header logs when running in MCP mode
		// to avoid polluting stdio which is used for the protocol.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		store, err := tsfile.NewStore(cfg.DataDir)
		if err != nil {
			return err
		}
		return mcp.StartMCPServer(rootCtx, cfg, store)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
