package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/devdot/churchsync/internal/config"
)

// newConfigCmd builds the `churchsync config` command group.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the settings file",
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

// newConfigInitCmd writes a settings file with defaults for the operator to
// fill in. Refuses to overwrite an existing file.
func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default settings file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path := configPath()

			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config file %s already exists", path)
			}

			if err := config.Save(path, config.DefaultConfig()); err != nil {
				return err
			}

			fmt.Printf("Wrote %s — set url and api_token before running a sync.\n", path)

			return nil
		},
	}
}

// newConfigShowCmd prints the effective settings with the standing API token
// redacted.
func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadOrDefault(configPath())
			if err != nil {
				return err
			}

			if cfg.APIToken != "" {
				cfg.APIToken = "(redacted)"
			}

			return toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
		},
	}
}
