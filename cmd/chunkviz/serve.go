package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shivavenkatesh/chunkviz/internal/server"
)

var (
	servePort  int
	serveHost  string
	serveNoMCP bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server for front ends and other clients.

The server exposes a JSON API for computing chunks, listing separators and
fetching the highlight stylesheet, Prometheus metrics at /metrics and an MCP
endpoint at /mcp so assistants can call the chunker as a tool.

Examples:
  chunkviz serve
  chunkviz serve --port 3456
  chunkviz serve --host 0.0.0.0 --port 8080 --no-mcp`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default: from config, 3456)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default: from config, 127.0.0.1)")
	serveCmd.Flags().BoolVar(&serveNoMCP, "no-mcp", false, "Disable the MCP endpoint")
}

func runServe(cmd *cobra.Command, args []string) error {
	svc, cfg, log, err := initService()
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serveHost
	}
	if serveNoMCP {
		cfg.Server.EnableMCP = false
	}

	srv := server.New(svc, server.Config{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		EnableMCP:       cfg.Server.EnableMCP,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Version:         Version,
		MaxInputLength:  cfg.Engine.MaxInputLength,
	}, log)

	// Handle graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-done
		log.Info().Msg("shutting down")
		if err := srv.Shutdown(); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "chunkviz server listening on http://%s\n", cfg.Addr())
	fmt.Fprintln(out, "Press Ctrl+C to stop")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Endpoints:")
	fmt.Fprintln(out, "  POST /chunks          - Compute chunks, offsets, highlights and statistics")
	fmt.Fprintln(out, "  GET  /separators      - Separators for ?content_type=")
	fmt.Fprintln(out, "  GET  /content-types   - Known content types")
	fmt.Fprintln(out, "  GET  /palette.css     - Highlight stylesheet")
	fmt.Fprintln(out, "  GET  /samples         - Built-in sample names")
	fmt.Fprintln(out, "  GET  /samples/:name   - Built-in sample document")
	fmt.Fprintln(out, "  GET  /health          - Health check")
	fmt.Fprintln(out, "  GET  /metrics         - Prometheus metrics")
	if cfg.Server.EnableMCP {
		fmt.Fprintln(out, "  /mcp                  - MCP streamable HTTP endpoint")
	}

	return srv.Start()
}
