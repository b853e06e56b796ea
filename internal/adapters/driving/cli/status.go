package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/alghazaly/partsync/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync and queue status",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// statusReport is the combined view printed by the status command.
type statusReport struct {
	Driver domain.DriverState `json:"driver" yaml:"driver"`
	Sync   domain.SyncState   `json:"sync" yaml:"sync"`
	Queue  *domain.QueueStats `json:"queue,omitempty" yaml:"queue,omitempty"`
	Actor  *domain.Actor      `json:"actor,omitempty" yaml:"actor,omitempty"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if syncDriver == nil {
		return errNotConfigured("sync")
	}
	ctx := commandContext(cmd)

	report := statusReport{
		Driver: syncDriver.State(),
		Sync:   syncDriver.SyncState(),
	}
	if queueService != nil {
		stats, err := queueService.Stats(ctx)
		if err != nil {
			return fmt.Errorf("queue stats: %w", err)
		}
		report.Queue = stats
	}
	if actorService != nil {
		actor, err := actorService.Current(ctx)
		if err != nil {
			return fmt.Errorf("current actor: %w", err)
		}
		report.Actor = actor
	}

	return render(cmd, report, func(w io.Writer) {
		connectivity := "online"
		if !report.Sync.Online {
			connectivity = "offline"
		}
		fprintf(w, "Driver:     %s\n", report.Driver)
		fprintf(w, "Network:    %s\n", connectivity)
		fprintf(w, "Sync:       %s\n", report.Sync.Status)
		fprintf(w, "Last sync:  %s\n", formatWhen(report.Sync.LastSyncAt))
		if report.Sync.LastError != "" {
			fprintf(w, "Last error: %s\n", report.Sync.LastError)
		}
		if report.Queue != nil {
			fprintf(w, "Queue:      %d/%d (%d pending, %d processing, %d failed)\n",
				report.Queue.Total, report.Queue.Capacity,
				report.Queue.Pending, report.Queue.Processing, report.Queue.Failed)
		}
		if report.Actor != nil {
			fprintf(w, "Actor:      %s (%s)\n", report.Actor.ID, report.Actor.Role)
		} else {
			fprintf(w, "Actor:      (logged out)\n")
		}
	})
}
