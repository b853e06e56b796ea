package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/alghazaly/partsync/internal/core/domain"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent sync cycles and drains",
	RunE:  runHistory,
}

// Flags for history.
var (
	historyKind  string
	historyLimit int
)

func init() {
	historyCmd.Flags().StringVarP(&historyKind, "kind", "k", "", "Only runs of this kind: full_sync or drain")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum runs to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errNotConfigured("history")
	}

	kind := domain.RunKind(historyKind)
	switch kind {
	case "", domain.RunFullSync, domain.RunDrain:
	default:
		return fmt.Errorf("unknown run kind %q", historyKind)
	}

	runs, err := historyService.Recent(commandContext(cmd), kind, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	return render(cmd, runs, func(w io.Writer) {
		if len(runs) == 0 {
			fprintf(w, "No runs recorded.\n")
			return
		}
		fprintf(w, "%-20s  %-9s  %-7s  %5s  %8s  %s\n", "STARTED", "KIND", "OUTCOME", "ITEMS", "DURATION", "ERROR")
		for _, r := range runs {
			fprintf(w, "%-20s  %-9s  %-7s  %5d  %8s  %s\n",
				formatWhen(r.StartedAt), r.Kind, r.Outcome, r.ItemsProcessed,
				r.Duration().Round(time.Millisecond), truncate(r.Error, 60))
		}
	})
}
