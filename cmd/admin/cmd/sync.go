package cmd

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"fleetreport/internal/domain/sync"

	"github.com/spf13/cobra"
)

var (
	syncLoop     bool
	syncInterval time.Duration
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch every provider and persist the result",
	Long: `sync runs one fetch, persist and publish cycle. With --loop it keeps
running every --interval until interrupted, logging failed runs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer closeApp(cmd.ErrOrStderr(), app)

		out := cmd.OutOrStdout()
		if syncLoop {
			interval := syncInterval
			if interval <= 0 {
				interval = cfg.Sync.Interval
			}
			ok(out, "Syncing every %s, press Ctrl+C to stop\n", interval)
			app.Sync.Loop(ctx, interval)
			return nil
		}

		snap, report, err := app.Sync.Run(ctx)
		if errors.Is(err, sync.ErrInProgress) {
			warn(out, "Another sync is running, nothing to do\n")
			return nil
		}
		if err != nil {
			return err
		}

		ok(out, "Snapshot %s stored\n", snap.ID)
		fmt.Fprintf(cmd.OutOrStdout(), "  providers:      %d\n", report.Providers)
		fmt.Fprintf(cmd.OutOrStdout(), "  clients:        %d\n", report.Clients)
		fmt.Fprintf(cmd.OutOrStdout(), "  sites:          %d\n", report.Sites)
		fmt.Fprintf(cmd.OutOrStdout(), "  devices:        %d\n", report.Devices)
		fmt.Fprintf(cmd.OutOrStdout(), "  failing checks: %d\n", report.FailingChecks)
		fmt.Fprintf(cmd.OutOrStdout(), "  device extras:  %d\n", report.Extras)
		if report.Skipped > 0 {
			warn(out, "  skipped:        %d\n", report.Skipped)
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncLoop, "loop", false, "keep syncing on an interval")
	syncCmd.Flags().DurationVar(&syncInterval, "interval", 0, "loop interval (default SYNC_INTERVAL)")
}
