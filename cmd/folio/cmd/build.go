package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/folio/internal/build"
	"github.com/Aman-CERP/folio/internal/config"
	"github.com/Aman-CERP/folio/internal/ui"
	"github.com/Aman-CERP/folio/internal/watcher"
)

type buildOptions struct {
	watch bool
	noTUI bool
}

func newBuildCmd() *cobra.Command {
	var opts buildOptions

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate tag pages and the search index",
		Long: `Load the content directory, group posts into paginated tag pages and
write the search index.

Artifacts are written to a staging directory and moved into the output
directory only when every one of them succeeded, so a failed run leaves
the previous build in place.

Use --watch to rebuild whenever the content directory changes.`,
		Example: `  # Build once
  folio build

  # Rebuild on every change
  folio build --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runBuild(ctx, cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Rebuild when content changes")
	cmd.Flags().BoolVar(&opts.noTUI, "no-tui", false, "Disable TUI mode, use plain text output")

	return cmd
}

func runBuild(ctx context.Context, cmd *cobra.Command, opts buildOptions) error {
	root, cfg, err := loadSite()
	if err != nil {
		return err
	}

	// The TUI owns the terminal until it stops, so watch mode prints plain
	// progress lines for every rebuild.
	uiCfg := ui.NewConfig(cmd.OutOrStdout(),
		ui.WithForcePlain(opts.noTUI || opts.watch),
		ui.WithSiteDir(root))

	if _, err := buildOnce(ctx, root, cfg, uiCfg); err != nil && !opts.watch {
		return err
	}
	if !opts.watch {
		return nil
	}

	return watchAndRebuild(ctx, root, cfg, uiCfg)
}

// buildOnce performs one generation run and reports it through a renderer.
func buildOnce(ctx context.Context, root string, cfg *config.Config, uiCfg ui.Config) (*build.Report, error) {
	renderer := ui.NewRenderer(uiCfg)
	if err := renderer.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start renderer: %w", err)
	}

	b := build.New(root, cfg,
		build.WithLogger(slog.Default()),
		build.WithObserver(func(step build.Step, detail string) {
			renderer.UpdateProgress(ui.ProgressEvent{Stage: stageFor(step), Message: detail})
		}))

	report, err := b.Run(ctx)
	if err != nil {
		renderer.AddError(ui.ErrorEvent{Err: err})
		_ = renderer.Stop()
		return nil, err
	}

	renderer.Complete(statsFor(report))
	if err := renderer.Stop(); err != nil {
		return report, fmt.Errorf("failed to stop renderer: %w", err)
	}
	return report, nil
}

func watchAndRebuild(ctx context.Context, root string, cfg *config.Config, uiCfg ui.Config) error {
	w, err := watcher.New(watcher.Options{Debounce: cfg.WatchDebounce()}, slog.Default())
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	contentDir := cfg.ContentPath(root)
	startErr := make(chan error, 1)
	go func() { startErr <- w.Start(ctx, contentDir) }()

	_, _ = fmt.Fprintf(uiCfg.Output, "Watching %s for changes (Ctrl+C to stop)\n", contentDir)

	rebuildErr := make(chan error, 1)
	go func() {
		rebuildErr <- watcher.Rebuild(ctx, w, func(ctx context.Context, batch []watcher.FileEvent) error {
			_, _ = fmt.Fprintf(uiCfg.Output, "\n%d change(s) detected, rebuilding\n", len(batch))
			_, err := buildOnce(ctx, root, cfg, uiCfg)
			return err
		})
	}()

	select {
	case err := <-startErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	case err := <-rebuildErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}
}

func stageFor(step build.Step) ui.Stage {
	switch step {
	case build.StepLoad:
		return ui.StageLoading
	case build.StepPaginate:
		return ui.StagePaginating
	case build.StepIndex:
		return ui.StageIndexing
	default:
		return ui.StageWriting
	}
}

func statsFor(r *build.Report) ui.BuildStats {
	stats := ui.BuildStats{
		Items:    r.Posts,
		Keys:     r.Keys,
		Pages:    r.Pages,
		Duration: r.Duration,
	}
	if r.Index != nil {
		stats.Documents = r.Index.Documents
		stats.IndexBytes = r.Index.Bytes
		stats.Backend = string(r.Index.Backend)
	}
	return stats
}
