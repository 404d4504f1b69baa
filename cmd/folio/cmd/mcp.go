package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/folio/internal/build"
	"github.com/Aman-CERP/folio/internal/logging"
	"github.com/Aman-CERP/folio/internal/mcp"
	"github.com/Aman-CERP/folio/internal/store"
)

func newMCPCmd() *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the search index to AI clients over MCP (stdio)",
		Long: `Run a Model Context Protocol server on stdin/stdout exposing the
search_site, get_document and index_status tools.

The index is read from the output directory on each request and reloaded
whenever 'folio build' rewrites it. Logs go to ~/.folio/logs/folio.log;
nothing but JSON-RPC is written to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			root, cfg, err := loadSite()
			if err != nil {
				return err
			}

			level := cfg.Server.LogLevel
			if debugMode {
				level = "debug"
			}
			cleanup, err := logging.SetupMCPMode(level)
			if err != nil {
				return err
			}
			defer cleanup()

			opts := []mcp.Option{mcp.WithLogger(slog.Default())}
			if backend != "" {
				b, err := store.ParseBackend(backend)
				if err != nil {
					return err
				}
				opts = append(opts, mcp.WithBackend(b))
			}

			srv, err := mcp.NewServer(build.New(root, cfg).IndexPath(), opts...)
			if err != nil {
				return err
			}
			defer func() { _ = srv.Close() }()

			return srv.Serve(ctx)
		},
	}

	cmd.Flags().StringVar(&backend, "backend", "", "Override the index backend: bleve, sqlite")

	return cmd
}
