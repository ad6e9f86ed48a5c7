package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/trustlink/internal/config"
	"github.com/mrz1836/trustlink/internal/crypto/keys"
	"github.com/mrz1836/trustlink/internal/errors"
	"github.com/mrz1836/trustlink/internal/flock"
)

// AddConfigCommand adds the config command to the root command.
func AddConfigCommand(root *cobra.Command, global *GlobalFlags) {
	root.AddCommand(newConfigCmd(global))
}

// newConfigCmd creates the 'config' parent command.
func newConfigCmd(global *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage trustlink configuration",
		Long: `Manage trustlink configuration settings.

Subcommands:
  show      Display effective configuration with sources
  validate  Check the effective configuration and key
  init      Write a configuration file with default values

Example:
  trustlink config show          # Show current config with source annotations
  trustlink config validate      # Fail if the config or key is unusable
  trustlink config init --global # Write ~/.trustlink/config.yaml`,
	}

	cmd.AddCommand(newConfigShowCmd(global))
	cmd.AddCommand(newConfigValidateCmd(global))
	cmd.AddCommand(newConfigInitCmd(&ConfigInitFlags{}))

	return cmd
}

// configStyles contains styling for config command output.
type configStyles struct {
	header    lipgloss.Style
	section   lipgloss.Style
	key       lipgloss.Style
	value     lipgloss.Style
	sourceEnv lipgloss.Style
	sourcePrj lipgloss.Style
	sourceGbl lipgloss.Style
	sourceDef lipgloss.Style
	success   lipgloss.Style
	dim       lipgloss.Style
}

func newConfigStyles() *configStyles {
	return &configStyles{
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00D7FF")).
			MarginBottom(1),
		section: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")),
		key:       lipgloss.NewStyle().Foreground(lipgloss.Color("#00D7FF")),
		value:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")),
		sourceEnv: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")),
		sourcePrj: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")),
		sourceGbl: lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF87")),
		sourceDef: lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
		success:   lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF87")),
		dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
	}
}

func newConfigValidateCmd(global *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the effective configuration and public key",
		Long: `Load the effective configuration, validate it and import the public key.

Exits non-zero when the configuration is invalid or the key cannot be used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd.Context(), cmd.OutOrStdout(), global)
		},
		SilenceUsage: true,
	}
}

func runConfigValidate(ctx context.Context, w io.Writer, global *GlobalFlags) error {
	cfg, err := loadConfig(ctx, global, nil)
	if err != nil {
		return err
	}
	if _, err := loadKey(ctx, keys.NewLoader(), &cfg.Verifier); err != nil {
		return err
	}

	if global.Output == OutputJSON {
		return encodeJSONIndented(w, map[string]bool{"valid": true})
	}
	_, _ = fmt.Fprintln(w, newConfigStyles().success.Render("✓ configuration is valid"))
	return nil
}

// ConfigInitFlags holds flags specific to the config init command.
type ConfigInitFlags struct {
	// Global writes ~/.trustlink/config.yaml instead of the project file.
	Global bool
	// Force overwrites an existing file.
	Force bool
}

func newConfigInitCmd(flags *ConfigInitFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with default values",
		Long: `Write the built-in defaults to .trustlink/config.yaml, or to
~/.trustlink/config.yaml with --global. An existing file is left alone
unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd.Context(), cmd.OutOrStdout(), flags)
		},
		SilenceUsage: true,
	}

	cmd.Flags().BoolVar(&flags.Global, "global", false, "write the global config file")
	cmd.Flags().BoolVar(&flags.Force, "force", false, "overwrite an existing file")
	return cmd
}

func runConfigInit(ctx context.Context, w io.Writer, flags *ConfigInitFlags) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	path := config.ProjectConfigPath()
	if flags.Global {
		p, err := config.GlobalConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	data, err := yaml.Marshal(config.DefaultConfig())
	if err != nil {
		return errors.Wrap(err, "failed to marshal default configuration")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	release, err := flock.Acquire(path + ".lock")
	if err != nil {
		return err
	}
	defer func() { _ = release() }()

	if _, err := os.Stat(path); err == nil && !flags.Force {
		return errors.NewExitCode2Error(errors.Wrapf(errors.ErrInvalidArgument,
			"%s already exists (use --force to overwrite)", path))
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}

	_, _ = fmt.Fprintln(w, newConfigStyles().success.Render("✓ wrote "+path))
	return nil
}
