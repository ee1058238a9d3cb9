package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/stevehiehn/calcengine/internal/mcp"
)

var (
	mcpSSEPort        int
	mcpDefinitionsDir string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server (stdio, or SSE with --sse-port)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wd, _ := os.Getwd()
		opts := mcp.Options{
			WorkDir:        wd,
			DefinitionsDir: cfg.Engine.DefinitionsDir,
			ArtifactsDir:   cfg.Engine.ArtifactsDir,
			SaveRuns:       cfg.Engine.SaveRuns,
			Logger:         logger,
		}
		if mcpDefinitionsDir != "" {
			opts.DefinitionsDir = mcpDefinitionsDir
		}
		port := cfg.MCP.SSEPort
		if cmd.Flags().Changed("sse-port") {
			port = mcpSSEPort
		}
		if port > 0 {
			return mcp.ServeSSE(cfg.MCP.Host, port, opts)
		}
		return mcp.Serve(opts)
	},
}

func init() {
	mcpCmd.Flags().IntVar(&mcpSSEPort, "sse-port", 0, "Serve MCP over SSE on this port instead of stdio")
	mcpCmd.Flags().StringVar(&mcpDefinitionsDir, "definitions-dir", "", "Expose each definition in this directory as a tool")
	rootCmd.AddCommand(mcpCmd)
}
