package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

// hourlySchedule runs the full pass once an hour. The pass is idempotent and
// time-insensitive, so top-of-hour drift does not matter.
const hourlySchedule = "@hourly"

// newServeCmd builds the `churchsync serve` command: a long-running scheduler
// that executes the full reconciliation pass hourly until interrupted.
func newServeCmd() *cobra.Command {
	var immediate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the hourly sync scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(loadedCfg)
			if err != nil {
				return err
			}
			defer a.close()

			return runScheduler(cmd.Context(), a, immediate)
		},
	}

	cmd.Flags().BoolVar(&immediate, "immediate", false, "run a full pass at startup before scheduling")

	return cmd
}

// runScheduler blocks until the context is canceled or a termination signal
// arrives. Scheduled passes share one engine; caches are invalidated before
// each pass so role-type staleness is bounded to a single run.
func runScheduler(ctx context.Context, a *app, immediate bool) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runPass := func() {
		a.engine.InvalidateCaches()

		if err := a.engine.RunFullSync(ctx); err != nil {
			slog.Error("scheduled sync failed", "error", err.Error())
		}
	}

	if immediate {
		runPass()
	}

	c := cron.New()

	if _, err := c.AddFunc(hourlySchedule, runPass); err != nil {
		return err
	}

	c.Start()
	slog.Info("scheduler started", "schedule", hourlySchedule)

	<-ctx.Done()

	slog.Info("shutting down scheduler")

	// Let an in-flight pass finish before returning.
	<-c.Stop().Done()

	return nil
}
