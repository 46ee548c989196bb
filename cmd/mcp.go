package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/xvierd/pomo/internal/adapters/mcp"
	"github.com/xvierd/pomo/internal/ports"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol (MCP) server for integration with AI assistants.
The server exposes the timer controls and stats as tools over stdio and keeps
the countdown ticking while it runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !app.config.MCP.Enabled {
			return errors.New("the MCP server is disabled; set mcp.enabled = true in ~/.pomo/config.toml")
		}

		// stdout carries the protocol, so status goes to stderr.
		fmt.Fprintln(os.Stderr, "🚀 Starting MCP server on stdio (Ctrl+C to stop)")

		ctx, cancel := setupSignalHandler(cmd.Context())
		defer cancel()

		srv := mcp.NewServer(app.timer, newTicker(time.Duration(app.config.MCP.TickInterval)))
		srv.SetLogger(app.logger)

		var server ports.MCPHandler = srv
		if err := server.Start(ctx); err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
