package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/insert-this/internal/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for coding assistants",
	Long: `Start the Model Context Protocol (MCP) server that lets LLM-powered coding
assistants insert references to project files into JavaScript and TypeScript
sources.

The MCP server:
- Provides the insert_file_reference tool
- Resolves relative paths against the current directory
- Reloads .insertthis/config.yml when it changes
- Communicates via stdio (standard MCP transport)

Example:
  insertthis mcp`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	projectPath, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	fmt.Fprintf(os.Stderr, "insertthis MCP server %s\n", Version)
	fmt.Fprintf(os.Stderr, "Project: %s\n\n", projectPath)

	return mcp.NewMCPServer(projectPath, appConfig, Version).Serve(context.Background())
}
