package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/folio/configs"
	"github.com/Aman-CERP/folio/internal/config"
	"github.com/Aman-CERP/folio/internal/output"
)

// ProjectConfigFile is the file written by `folio config init`.
const ProjectConfigFile = ".folio.yaml"

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage site configuration",
		Long: `Inspect and create folio configuration.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/folio/config.yaml)
  3. Project config (.folio.yaml)
  4. Environment variables (FOLIO_*)`,
		Example: `  # Create .folio.yaml with the defaults
  folio config init

  # Show effective configuration
  folio config show --json`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create .folio.yaml in the site directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing .folio.yaml")

	return cmd
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	out := output.New(cmd.OutOrStdout())

	dir, err := filepath.Abs(siteDir)
	if err != nil {
		return fmt.Errorf("failed to resolve site directory: %w", err)
	}
	path := filepath.Join(dir, ProjectConfigFile)

	if _, err := os.Stat(path); err == nil && !force {
		out.Warning("Configuration already exists")
		out.Statusf("•", "Location: %s", path)
		out.Status("•", "Use --force to overwrite it with the defaults")
		return nil
	}

	if err := os.WriteFile(path, []byte(configs.ProjectConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out.Success("Created site configuration")
	out.Statusf("•", "Location: %s", path)
	out.Newline()
	out.Status("•", "Next: edit the file, then run 'folio build'")
	return nil
}

func newConfigShowCmd() *cobra.Command {
	var (
		jsonOutput bool
		source     string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var cfg *config.Config
			switch source {
			case "merged":
				_, loaded, err := loadSite()
				if err != nil {
					return err
				}
				cfg = loaded
			case "defaults":
				cfg = config.NewConfig()
			default:
				return fmt.Errorf("unknown source %q (supported: merged, defaults)", source)
			}

			if jsonOutput {
				return output.New(cmd.OutOrStdout()).JSON(cfg)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&source, "source", "merged", "Config source: merged, defaults")

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print user config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.GetUserConfigPath())
			return err
		},
	}
}
