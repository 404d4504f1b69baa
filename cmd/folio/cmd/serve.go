package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// shutdownTimeout bounds graceful shutdown of `folio serve`.
const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the output directory over HTTP",
		Long: `Serve the built site, including the search index, so pages can fetch
the index from the same origin. Run 'folio build' first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			root, cfg, err := loadSite()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			dir := cfg.OutputPath(root)
			if _, err := os.Stat(dir); err != nil {
				return fmt.Errorf("output directory %s not found: run 'folio build' first", dir)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on http://%s\n", dir, addr)
			return runServe(ctx, addr, dir)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, 127.0.0.1:8080)")

	return cmd
}

func runServe(ctx context.Context, addr, dir string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           newSiteHandler(dir),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("serve_started", slog.String("addr", addr), slog.String("dir", dir))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	slog.Info("serve_stopped")
	return nil
}

// newSiteHandler serves dir and logs each request at debug level.
func newSiteHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("serve_request", slog.String("method", r.Method), slog.String("path", r.URL.Path))
		files.ServeHTTP(w, r)
	})
}
