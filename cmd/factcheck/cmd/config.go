package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/factcheck/configs"
	"github.com/Aman-CERP/factcheck/internal/config"
	ferrors "github.com/Aman-CERP/factcheck/internal/errors"
	"github.com/Aman-CERP/factcheck/internal/output"
)

// configOptional marks commands that must work even when the configuration
// on disk is broken, so they can repair or report it.
var configOptional = map[string]string{"config": "optional"}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage factcheck configuration files.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/factcheck/config.yaml)
  3. Project config (.factcheck.yaml)
  4. Environment variables (FACTCHECK_*, REACT_APP_ENDPOINT_URL)
  5. Command-line flags (--base-url, --no-color, --debug)`,
		Example: `  # Create user config from template
  factcheck config init

  # Show effective configuration
  factcheck config show

  # Print user config file path
  factcheck config path`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd(a))
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force, project bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file from the template",
		Long: `Create the user configuration file from a template, or with --project
a .factcheck.yaml in the current directory. An existing user config is backed
up before --force overwrites it.`,
		Example: `  factcheck config init
  factcheck config init --force
  factcheck config init --project`,
		Annotations: configOptional,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if project {
				return runConfigInitProject(cmd, force)
			}
			return runConfigInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().BoolVar(&project, "project", false, "Create .factcheck.yaml in the current directory")

	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	var jsonOutput bool
	var source string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Long: `Show the configuration after merging all sources, or only the
built-in defaults with --source defaults.`,
		Example: `  factcheck config show
  factcheck config show --json
  factcheck config show --source defaults`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var cfg *config.Config
			switch source {
			case "merged":
				cfg = a.cfg
			case "defaults":
				cfg = config.NewConfig()
			default:
				return ferrors.ValidationError("--source must be merged or defaults, got "+source, nil)
			}

			out := output.New(cmd.OutOrStdout())
			if jsonOutput {
				return out.JSON(cfg)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return ferrors.InternalError("failed to marshal config", err)
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
		Use:         "path",
		Short:       "Print user config file path",
		Annotations: configOptional,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.GetUserConfigPath())
			return err
		},
	}
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	out := output.New(cmd.OutOrStdout())
	configPath := config.GetUserConfigPath()

	if config.UserConfigExists() {
		if !force {
			out.Warning("User configuration already exists")
			out.Statusf("📁", "Location: %s", configPath)
			out.Status("", "Use --force to overwrite it")
			return nil
		}
		backup, err := config.BackupUserConfig()
		if err != nil {
			return err
		}
		out.Statusf("💾", "Backed up existing config to %s", backup)
	}

	if err := writeTemplate(configPath, configs.UserConfigTemplate); err != nil {
		return err
	}
	out.Successf("Created %s", configPath)
	return nil
}

func runConfigInitProject(cmd *cobra.Command, force bool) error {
	out := output.New(cmd.OutOrStdout())
	wd, err := os.Getwd()
	if err != nil {
		return ferrors.InternalError("failed to get working directory", err)
	}
	path := filepath.Join(wd, config.ProjectFileName)

	if _, err := os.Stat(path); err == nil && !force {
		out.Warningf("%s already exists", config.ProjectFileName)
		out.Status("", "Use --force to overwrite it")
		return nil
	}

	if err := writeTemplate(path, configs.ProjectConfigTemplate); err != nil {
		return err
	}
	out.Successf("Created %s", path)
	return nil
}

func writeTemplate(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ferrors.ConfigError("failed to create config directory", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return ferrors.ConfigError("failed to write config file", err).WithDetail("path", path)
	}
	return nil
}
