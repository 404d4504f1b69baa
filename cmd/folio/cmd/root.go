// Package cmd provides the CLI commands for folio.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/folio/internal/config"
	"github.com/Aman-CERP/folio/internal/logging"
	"github.com/Aman-CERP/folio/internal/profiling"
	"github.com/Aman-CERP/folio/pkg/version"
)

// Global flags.
var (
	debugMode      bool
	siteDir        string
	loggingCleanup func()
	profileOpts    profiling.Options
	profile        *profiling.Session
)

// NewRootCmd creates the root command for the folio CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folio",
		Short: "Tag-paginated site generator with client-side search",
		Long: `folio turns a directory of Markdown posts into tag listing pages and a
prebuilt search index that pages query without a server round-trip.

Run 'folio build' in your site directory to get started.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.SetVersionTemplate("folio version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.folio/logs/")
	cmd.PersistentFlags().StringVarP(&siteDir, "dir", "C", ".", "Site directory")

	cmd.PersistentFlags().StringVar(&profileOpts.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&profileOpts.Heap, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&profileOpts.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.PersistentPreRunE = startProfilingAndLogging
	cmd.PersistentPostRunE = stopProfilingAndLogging

	cmd.AddCommand(newBuildCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newBrowseCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMCPCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startProfilingAndLogging starts the requested profiles and enables file
// logging when --debug is set. `folio mcp` installs its own file-only logger.
func startProfilingAndLogging(cmd *cobra.Command, _ []string) error {
	if profileOpts.Enabled() {
		s, err := profiling.Start(profileOpts)
		if err != nil {
			return err
		}
		profile = s
	}

	if !debugMode || cmd.Name() == "mcp" {
		return nil
	}

	logger, cleanup, err := logging.Setup(logging.DebugConfig())
	if err != nil {
		return fmt.Errorf("failed to setup debug logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	slog.Info("debug_logging_enabled",
		slog.String("log_file", logging.DefaultLogPath()),
		slog.String("version", version.Version))
	return nil
}

func stopProfilingAndLogging(_ *cobra.Command, _ []string) error {
	err := profile.Stop()
	profile = nil

	if loggingCleanup != nil {
		slog.Info("debug_logging_stopped")
		loggingCleanup()
		loggingCleanup = nil
	}
	if err != nil {
		return fmt.Errorf("failed to write profiles: %w", err)
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// loadSite finds the site root from --dir and loads its configuration.
func loadSite() (string, *config.Config, error) {
	dir := siteDir
	if dir == "" {
		dir = "."
	}
	root, err := config.FindProjectRoot(dir)
	if err != nil {
		return "", nil, err
	}
	cfg, err := config.Load(root)
	if err != nil {
		return "", nil, err
	}
	return root, cfg, nil
}
