package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/Epistemic-Technology/pdf-mindmap/server"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run as an MCP server over stdio",
	Args:  cobra.NoArgs,
	RunE:  runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	generator, renderer, err := newGenerator(cfg, log)
	if err != nil {
		return err
	}
	defer renderer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Info("Starting pdf-mindmap MCP server")

	srv := server.CreateServer(log, generator, cfg.Zotero)
	return srv.Run(ctx, &mcp.StdioTransport{})
}
