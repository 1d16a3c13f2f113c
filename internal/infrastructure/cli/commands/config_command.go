package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/apex/internal/app"
	appconfig "github.com/doeshing/apex/internal/application/config"
	"github.com/doeshing/apex/internal/infrastructure/cli/helpers"
)

// NewConfigCommand creates the config command with all subcommands.
func NewConfigCommand(load Loader) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect APEX configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, load, func(c *app.Container) error {
				return showConfiguration(cmd.OutOrStdout(), c)
			})
		},
	}

	configCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the effective configuration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withContainer(cmd, load, func(c *app.Container) error {
					return showConfiguration(cmd.OutOrStdout(), c)
				})
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the configuration file path",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withContainer(cmd, load, func(c *app.Container) error {
					fmt.Fprintln(cmd.OutOrStdout(), c.ConfigLoader.Path())
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print one value, e.g. knowledge.strategy",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withContainer(cmd, load, func(c *app.Container) error {
					value, err := helpers.LookupKey(c.Config, args[0])
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), value)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Set one value (YAML syntax) and save with a backup",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withContainer(cmd, load, func(c *app.Container) error {
					updated, err := helpers.SetKey(c.Config, args[0], args[1])
					if err != nil {
						return err
					}
					if err := helpers.SaveConfig(c, updated); err != nil {
						return err
					}
					c.Config = updated
					fmt.Fprintf(cmd.OutOrStdout(), "%s updated\n", args[0])
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "validate",
			Short: "Validate the configuration file",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withContainer(cmd, load, func(c *app.Container) error {
					if err := appconfig.Validate(c.Config); err != nil {
						return fmt.Errorf("configuration validation failed: %w", err)
					}
					fmt.Fprintln(cmd.OutOrStdout(), msgConfigurationValid)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Restore the default configuration (the old file is backed up)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withContainer(cmd, load, func(c *app.Container) error {
					backup, err := c.ConfigLoader.Reset()
					if err != nil {
						return fmt.Errorf("reset configuration: %w", err)
					}
					if backup != "" {
						fmt.Fprintf(cmd.OutOrStdout(), "Previous configuration saved to %s\n", backup)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Defaults written to %s\n", c.ConfigLoader.Path())
					return nil
				})
			},
		},
	)

	return configCmd
}

func withContainer(cmd *cobra.Command, load Loader, fn func(*app.Container) error) error {
	container, err := load(cmd.Context())
	if err != nil {
		return err
	}
	if container.ConfigLoader == nil {
		return errors.New("config loader unavailable")
	}
	return fn(container)
}

func showConfiguration(out io.Writer, container *app.Container) error {
	fmt.Fprintf(out, "# %s\n", container.ConfigLoader.Path())
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(container.Config); err != nil {
		return err
	}
	return enc.Close()
}
