package commands

import (
	"fmt"
	"io"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/doeshing/infernav/assets"
	"github.com/doeshing/infernav/internal/app"
	configapp "github.com/doeshing/infernav/internal/application/config"
	"github.com/doeshing/infernav/internal/infrastructure/cli/helpers"
	configinfra "github.com/doeshing/infernav/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with all subcommands
func NewConfigCommand(containerFn ContainerFunc) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage infernav configuration",
	}

	configCmd.AddCommand(
		newConfigShowCommand(containerFn),
		newConfigPathCommand(containerFn),
		newConfigGetCommand(containerFn),
		newConfigSetCommand(containerFn),
		newConfigValidateCommand(containerFn),
		newConfigDiffCommand(containerFn),
	)

	return configCmd
}

func newConfigShowCommand(containerFn ContainerFunc) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := containerFn()
			if err != nil {
				return err
			}
			raw, err := configinfra.Encode(container.Config, format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(raw)
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "Output format: yaml, json or toml")
	return cmd
}

func newConfigPathCommand(containerFn ContainerFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := containerFn()
			if err != nil {
				return err
			}
			loader, err := helpers.GetConfigLoader(container)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), loader.Path())
			return nil
		},
	}
}

func newConfigGetCommand(containerFn ContainerFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one effective configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := containerFn()
			if err != nil {
				return err
			}
			value, err := helpers.GetConfigValue(container.Config, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
}

func newConfigSetCommand(containerFn ContainerFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Update one value in the configuration file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := containerFn()
			if err != nil {
				return err
			}
			return setConfigValue(cmd.OutOrStdout(), container, args[0], args[1])
		},
	}
}

func newConfigValidateCommand(containerFn ContainerFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration file for errors",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := containerFn()
			if err != nil {
				return err
			}
			if err := configapp.Validate(container.Config); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msgConfigurationValid)
			return nil
		},
	}
}

func newConfigDiffCommand(containerFn ContainerFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "diff",
		Short: "Show how the configuration file differs from the defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := containerFn()
			if err != nil {
				return err
			}
			return diffConfig(cmd.OutOrStdout(), container)
		},
	}
}

// setConfigValue edits the file as written, without env overrides or defaults,
// so neither leaks into the saved document.
func setConfigValue(out io.Writer, container *app.Container, key, value string) error {
	loader, err := helpers.GetConfigLoader(container)
	if err != nil {
		return err
	}
	cfg, err := loader.LoadFile()
	if err != nil {
		return err
	}
	updated, err := helpers.SetConfigValue(cfg, key, value)
	if err != nil {
		return err
	}
	if err := helpers.SaveConfigWithValidation(container, updated); err != nil {
		return err
	}
	fmt.Fprintf(out, "Set %s = %s\n", key, value)
	return nil
}

func diffConfig(out io.Writer, container *app.Container) error {
	loader, err := helpers.GetConfigLoader(container)
	if err != nil {
		return err
	}
	current, err := loader.LoadFile()
	if err != nil {
		return err
	}
	defaults, err := configinfra.Decode(assets.DefaultConfigYAML, "yaml")
	if err != nil {
		return fmt.Errorf("decode embedded defaults: %w", err)
	}
	diff := cmp.Diff(defaults, current)
	if diff == "" {
		fmt.Fprintln(out, "Configuration matches the defaults.")
		return nil
	}
	fmt.Fprintln(out, "Differences from defaults (-default +current):")
	fmt.Fprint(out, diff)
	return nil
}
