package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/promptflow/pkg/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes conversations as MCP tools and resources so that agents can
answer the questions.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig(cmd)
		transport, _ := cmd.Flags().GetString("transport")
		addr, _ := cmd.Flags().GetString("addr")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app := openApp(ctx, cfg)
		defer app.Close(context.Background())

		srv := mcp.NewServer(app.Sessions, app.Engine.Sequence(), mcp.WithLogger(app.Logger),
			mcp.WithSanitizer(cfg.Sanitizer()),
		)

		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			app.Logger.Info("Starting promptflow MCP Server (Stdio)")
			if err := srv.ServeStdio(); err != nil {
				app.Logger.Error("MCP Server execution failed", "err", err)
				os.Exit(1)
			}
		case "sse":
			baseURL, _ := cmd.Flags().GetString("base-url")
			if baseURL == "" {
				baseURL = "http://localhost" + addr
			}
			if err := srv.ServeSSE(ctx, addr, baseURL); err != nil {
				app.Logger.Error("MCP Server execution failed", "err", err)
				os.Exit(1)
			}
			app.Logger.Info("MCP Server stopped gracefully")
		default:
			fmt.Fprintf(os.Stderr, "Unknown transport: %s. Supported: stdio, sse\n", transport)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().String("addr", ":8081", "Listen address (only for SSE)")
	mcpCmd.Flags().String("base-url", "", "Public base URL advertised to SSE clients")
}
