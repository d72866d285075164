package main

import (
	"github.com/spf13/cobra"
)

// newSyncCmd builds the `churchsync sync` command: one full reconciliation
// pass, exactly once, then exit.
func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one full reconciliation pass",
		Long: "Authenticates against the remote directory, reconciles groups and " +
			"shared folders, then reconciles every managed account's memberships.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(loadedCfg)
			if err != nil {
				return err
			}
			defer a.close()

			return a.engine.RunFullSync(cmd.Context())
		},
	}
}

// newPersonCmd builds the `churchsync person` command: reconcile a single
// account's memberships. This is the post-login hook surface — the host
// platform invokes it after a successful login so membership is fresh without
// waiting for the scheduled full pass.
func newPersonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "person <uid>",
		Short: "Reconcile a single account's memberships",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(loadedCfg)
			if err != nil {
				return err
			}
			defer a.close()

			return a.engine.RunSingleSync(cmd.Context(), args[0])
		},
	}
}
