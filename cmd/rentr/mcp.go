package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/rentr/internal/logger"
	"github.com/mark3labs/rentr/internal/mcpserver"
	"github.com/spf13/cobra"
)

var mcpFlags struct {
	port int
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the listing wizard as MCP tools",
	Long: `Serve one listing wizard over MCP (streamable HTTP) so an agent can
fill in the steps, upload photos and read the preview. The server runs
until interrupted and acts as the signed-in user.`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().IntVarP(&mcpFlags.port, "port", "p", -1, "Port to listen on, 0 picks a free port (default: mcp_port)")
}

func runMCP(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	ctrl, err := rt.newController(cmd.Context())
	if err != nil {
		return err
	}

	port := rt.cfg.MCPPort
	if mcpFlags.port >= 0 {
		port = mcpFlags.port
	}

	srv := mcpserver.New(ctrl, port)
	if _, err := srv.Start(cmd.Context()); err != nil {
		return fmt.Errorf("failed to start MCP server: %w", err)
	}
	defer func() {
		if err := srv.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on %s\n", srv.URL())
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop.")

	// Wait for shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	select {
	case <-sigChan:
		fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down gracefully...")
	case <-cmd.Context().Done():
	}

	if id := ctrl.PropertyID(); id != "" {
		logger.Info("MCP session ended with listing %s", id)
		fmt.Fprintf(cmd.OutOrStdout(), "Listing %s was saved up to step %s.\n", id, ctrl.Current().Title())
	}
	return nil
}
