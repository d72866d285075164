package main

import (
	"github.com/spf13/cobra"

	"github.com/devdot/churchsync/internal/config"
)

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath string
	flagVerbose    bool
	flagQuiet      bool
)

// defaultConfigPath is used when --config is not given.
const defaultConfigPath = "churchsync.toml"

// loadedCfg holds the effective configuration loaded by PersistentPreRunE.
// It is available to all subcommands after the root pre-run phase completes.
var loadedCfg *config.Config

// skipConfigCommands lists commands that run without a validated config file,
// either because they bootstrap one (config init) or only print it
// (config show). Uses CommandPath() for explicit matching.
var skipConfigCommands = map[string]bool{
	"churchsync config init": true,
	"churchsync config show": true,
}

// newRootCmd builds and returns the fully-assembled root command with all
// subcommands registered. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "churchsync",
		Short:   "ChurchTools directory sync",
		Long:    "Synchronizes ChurchTools groups and memberships into local groups, shared folders, and ACLs.",
		Version: version,
		// Silence Cobra's default error/usage printing — main handles it.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			setupLogger()

			if skipConfigCommands[cmd.CommandPath()] {
				return nil
			}

			cfg, err := config.Load(configPath())
			if err != nil {
				return err
			}

			loadedCfg = cfg

			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path (default "+defaultConfigPath+")")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "warnings and errors only")

	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newPersonCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// configPath resolves the effective config file path: flag, then environment,
// then the default in the working directory.
func configPath() string {
	if flagConfigPath != "" {
		return flagConfigPath
	}

	if env := getenv("CHURCHSYNC_CONFIG"); env != "" {
		return env
	}

	return defaultConfigPath
}
