package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/alghazaly/partsync/internal/core/domain"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one full-sync cycle",
	Long: `Refreshes the cached collections from the storefront API.
Queued actions are replayed first when the agent was offline before.
Elevated actors also refresh orders, customers, suppliers and distributors.`,
	RunE: runSync,
}

var drainCmd = &cobra.Command{
	Use:   "drain",
	Short: "Replay queued offline actions",
	Long: `Replays every pending action in insertion order. Failed actions are
retried on later drains until their retry budget is exhausted.`,
	RunE: runDrain,
}

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(drainCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if syncDriver == nil {
		return errNotConfigured("sync")
	}
	ctx := commandContext(cmd)
	started := time.Now()

	if connectivity != nil {
		if !connectivity.Check(ctx) {
			return errOffline
		}
		// A reconnect observed by the check has already drained and synced.
		if syncDriver.SyncState().LastSyncAt.After(started) {
			return renderSyncState(cmd)
		}
	}

	if err := syncDriver.SyncNow(ctx); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	return renderSyncState(cmd)
}

func renderSyncState(cmd *cobra.Command) error {
	state := syncDriver.SyncState()
	return render(cmd, state, func(w io.Writer) {
		fprintf(w, "Sync %s at %s\n", state.Status, formatWhen(state.LastSyncAt))
		if state.LastError != "" {
			fprintf(w, "Last error: %s\n", state.LastError)
		}
	})
}

func runDrain(cmd *cobra.Command, _ []string) error {
	if syncDriver == nil {
		return errNotConfigured("sync")
	}
	ctx := commandContext(cmd)

	if connectivity != nil && !connectivity.Check(ctx) {
		return errOffline
	}

	report, err := syncDriver.DrainQueue(ctx)
	if err != nil {
		return fmt.Errorf("drain failed: %w", err)
	}
	return render(cmd, report, func(w io.Writer) {
		printDrainReport(w, report)
	})
}

func printDrainReport(w io.Writer, report *domain.DrainReport) {
	if report.Attempted == 0 {
		fprintf(w, "Nothing to replay.\n")
		return
	}
	fprintf(w, "Replayed %d actions: %d succeeded, %d requeued, %d failed.\n",
		report.Attempted, report.Succeeded, report.Requeued, report.Failed)
}
