package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/promptflow/internal/cli"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves conversations over HTTP.

  POST /conversations/{id}/messages   send a message, receive the replies
  GET  /conversations/{id}/events     stream turn results (SSE)
  GET  /metrics                       Prometheus metrics`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig(cmd)
		if cmd.Flags().Changed("addr") {
			cfg.HTTPAddr, _ = cmd.Flags().GetString("addr")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app := openApp(ctx, cfg)
		defer app.Close(context.Background())

		ln, err := net.Listen("tcp", cfg.HTTPAddr)
		if err != nil {
			app.Logger.Error("Failed to listen", "address", cfg.HTTPAddr, "err", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "promptflow listening on %s\n", ln.Addr())

		if err := cli.Serve(ctx, app, ln); err != nil {
			app.Logger.Error("Server failed", "err", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default PROMPTFLOW_HTTP_ADDR or :8080)")
}
